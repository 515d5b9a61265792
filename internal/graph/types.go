package graph

import "time"

// Profile is the cached display metadata for a node, populated lazily by
// the enrichment adapter and not guaranteed fresh.
type Profile struct {
	Avatar      string `json:"avatar,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Node is a graph vertex representing one ENS identity.
type Node struct {
	ID            string     `json:"id"`
	ENSName       string     `json:"ens_name"`
	EthAddress    string     `json:"eth_address,omitempty"`
	CachedProfile *Profile   `json:"cached_profile,omitempty"`
	LastResolved  *time.Time `json:"last_resolved,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Relationship is a declared connection between two identities. It is
// stored directionally but treated as unordered for display purposes.
type Relationship struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"source_id"`
	TargetID  string    `json:"target_id"`
	Type      string    `json:"relationship_type"`
	CreatedAt time.Time `json:"created_at"`
	Source    *Node     `json:"source,omitempty"`
	Target    *Node     `json:"target,omitempty"`
}

// Edge is the layout-facing view of a relationship: endpoint node IDs plus
// denormalized node snapshots for rendering.
type Edge struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Target     string `json:"target"`
	Type       string `json:"type"`
	SourceNode *Node  `json:"source_node,omitempty"`
	TargetNode *Node  `json:"target_node,omitempty"`
}

// GraphData is the combined result of a full graph fetch.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// ConnectsPair reports whether the edge joins the two given node IDs,
// in either direction.
func (e Edge) ConnectsPair(a, b string) bool {
	return (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a)
}

// DefaultRelationshipType is used when a caller does not specify one.
const DefaultRelationshipType = "connection"
