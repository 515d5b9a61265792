package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ensmesh/ensmesh/internal/db"
)

// ErrDuplicateConnection is returned when a relationship between the same
// unordered pair of nodes (with the same type) already exists.
var ErrDuplicateConnection = errors.New("this connection already exists")

// Store manages persistence of nodes and relationships.
type Store struct {
	db *db.DB
}

// NewStore creates a new graph store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// GetNodes returns all nodes, newest-created first.
func (s *Store) GetNodes(ctx context.Context) ([]Node, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ens_name, eth_address, cached_profile, last_resolved, created_at
		 FROM nodes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *n)
	}
	return nodes, rows.Err()
}

// CreateNode upserts a node keyed by its lowercased ENS name. A conflicting
// name updates the existing row in place; the later call's fields win.
// last_resolved is always stamped to now.
func (s *Store) CreateNode(ctx context.Context, ensName, ethAddress string, profile *Profile) (*Node, error) {
	name := strings.ToLower(strings.TrimSpace(ensName))
	if name == "" {
		return nil, fmt.Errorf("ens name is required")
	}

	profileJSON, err := marshalProfile(profile)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO nodes (id, ens_name, eth_address, cached_profile, last_resolved, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(ens_name) DO UPDATE SET
		   eth_address = excluded.eth_address,
		   cached_profile = excluded.cached_profile,
		   last_resolved = excluded.last_resolved`,
		uuid.New().String(), name, nullString(ethAddress), profileJSON, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting node: %w", err)
	}

	return s.GetNodeByName(ctx, name)
}

// GetNodeByName looks up a node by its normalized name. A missing node is
// a non-error (nil, nil) result.
func (s *Store) GetNodeByName(ctx context.Context, ensName string) (*Node, error) {
	name := strings.ToLower(strings.TrimSpace(ensName))
	row := s.db.QueryRowContext(ctx,
		`SELECT id, ens_name, eth_address, cached_profile, last_resolved, created_at
		 FROM nodes WHERE ens_name = ?`, name)

	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// UpdateProfile caches resolved profile data on an existing node record
// and stamps last_resolved.
func (s *Store) UpdateProfile(ctx context.Context, id, ethAddress string, profile *Profile) error {
	profileJSON, err := marshalProfile(profile)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE nodes SET eth_address = ?, cached_profile = ?, last_resolved = ? WHERE id = ?`,
		nullString(ethAddress), profileJSON, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating node profile: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("node not found: %s", id)
	}
	return nil
}

// CreateRelationship inserts a relationship between two nodes. The pair is
// treated as unordered: if a relationship of the same type already exists in
// either direction, ErrDuplicateConnection is returned and no row is added.
func (s *Store) CreateRelationship(ctx context.Context, sourceID, targetID, relType string) (*Relationship, error) {
	if relType == "" {
		relType = DefaultRelationshipType
	}
	if sourceID == targetID {
		return nil, fmt.Errorf("cannot connect a node to itself")
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM relationships
		 WHERE relationship_type = ?
		   AND ((source_id = ? AND target_id = ?) OR (source_id = ? AND target_id = ?))`,
		relType, sourceID, targetID, targetID, sourceID,
	).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("checking existing relationship: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateConnection
	}

	r := Relationship{
		ID:        uuid.New().String(),
		SourceID:  sourceID,
		TargetID:  targetID,
		Type:      relType,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO relationships (id, source_id, target_id, relationship_type, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.SourceID, r.TargetID, r.Type, r.CreatedAt,
	)
	if err != nil {
		// The DB constraint is order-sensitive; it backstops the unordered
		// pre-check above for the stored ordering.
		if isUniqueViolation(err) {
			return nil, ErrDuplicateConnection
		}
		return nil, fmt.Errorf("inserting relationship: %w", err)
	}
	return &r, nil
}

// DeleteRelationship removes a relationship by ID.
func (s *Store) DeleteRelationship(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM relationships WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting relationship: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("relationship not found: %s", id)
	}
	return nil
}

// GetRelationships returns all relationships, each including a denormalized
// snapshot of its two endpoint nodes for display.
func (s *Store) GetRelationships(ctx context.Context) ([]Relationship, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.source_id, r.target_id, r.relationship_type, r.created_at,
		        s.id, s.ens_name, s.eth_address, s.cached_profile, s.last_resolved, s.created_at,
		        t.id, t.ens_name, t.eth_address, t.cached_profile, t.last_resolved, t.created_at
		 FROM relationships r
		 JOIN nodes s ON r.source_id = s.id
		 JOIN nodes t ON r.target_id = t.id
		 ORDER BY r.created_at ASC, r.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}
	defer rows.Close()

	var rels []Relationship
	for rows.Next() {
		var r Relationship
		var src, tgt Node
		var srcAddr, srcProfile, tgtAddr, tgtProfile sql.NullString
		var srcResolved, tgtResolved sql.NullTime
		if err := rows.Scan(
			&r.ID, &r.SourceID, &r.TargetID, &r.Type, &r.CreatedAt,
			&src.ID, &src.ENSName, &srcAddr, &srcProfile, &srcResolved, &src.CreatedAt,
			&tgt.ID, &tgt.ENSName, &tgtAddr, &tgtProfile, &tgtResolved, &tgt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}
		if err := fillNode(&src, srcAddr, srcProfile, srcResolved); err != nil {
			return nil, err
		}
		if err := fillNode(&tgt, tgtAddr, tgtProfile, tgtResolved); err != nil {
			return nil, err
		}
		r.Source = &src
		r.Target = &tgt
		rels = append(rels, r)
	}
	return rels, rows.Err()
}

// GetGraphData is a convenience join of GetNodes and GetRelationships, with
// relationships flattened to layout-facing edges.
func (s *Store) GetGraphData(ctx context.Context) (*GraphData, error) {
	nodes, err := s.GetNodes(ctx)
	if err != nil {
		return nil, err
	}
	rels, err := s.GetRelationships(ctx)
	if err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = []Node{}
	}

	data := &GraphData{Nodes: nodes, Edges: make([]Edge, 0, len(rels))}
	for _, r := range rels {
		data.Edges = append(data.Edges, Edge{
			ID:         r.ID,
			Source:     r.SourceID,
			Target:     r.TargetID,
			Type:       r.Type,
			SourceNode: r.Source,
			TargetNode: r.Target,
		})
	}
	return data, nil
}

// CreateEdgeByNames resolves-or-creates both endpoint nodes by name, then
// creates the relationship between them. This is the primary mutation entry
// point used by the UI.
func (s *Store) CreateEdgeByNames(ctx context.Context, sourceName, targetName, relType string) (*Relationship, error) {
	source, err := s.GetNodeByName(ctx, sourceName)
	if err != nil {
		return nil, err
	}
	if source == nil {
		if source, err = s.CreateNode(ctx, sourceName, "", nil); err != nil {
			return nil, err
		}
	}

	target, err := s.GetNodeByName(ctx, targetName)
	if err != nil {
		return nil, err
	}
	if target == nil {
		if target, err = s.CreateNode(ctx, targetName, "", nil); err != nil {
			return nil, err
		}
	}

	return s.CreateRelationship(ctx, source.ID, target.ID, relType)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(row rowScanner) (*Node, error) {
	var n Node
	var addr, profile sql.NullString
	var resolved sql.NullTime
	if err := row.Scan(&n.ID, &n.ENSName, &addr, &profile, &resolved, &n.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning node: %w", err)
	}
	if err := fillNode(&n, addr, profile, resolved); err != nil {
		return nil, err
	}
	return &n, nil
}

func fillNode(n *Node, addr, profile sql.NullString, resolved sql.NullTime) error {
	n.EthAddress = addr.String
	if resolved.Valid {
		t := resolved.Time
		n.LastResolved = &t
	}
	if profile.Valid && profile.String != "" {
		var p Profile
		if err := json.Unmarshal([]byte(profile.String), &p); err != nil {
			return fmt.Errorf("decoding cached profile for %s: %w", n.ENSName, err)
		}
		n.CachedProfile = &p
	}
	return nil
}

func marshalProfile(p *Profile) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding cached profile: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
