package graph

import (
	"context"
	"errors"
	"log"
)

// DefaultPairs are the bootstrap connections seeded into an empty graph.
var DefaultPairs = [][2]string{
	{"vitalik.eth", "nick.eth"},
	{"vitalik.eth", "brantly.eth"},
	{"nick.eth", "ens.eth"},
}

// Seed creates the default relationship pairs. Pairs that already exist
// (fully or partially) are logged and skipped, not fatal: seeding is
// eventually consistent with whatever subset succeeds.
func (s *Store) Seed(ctx context.Context) error {
	for _, pair := range DefaultPairs {
		if _, err := s.CreateEdgeByNames(ctx, pair[0], pair[1], DefaultRelationshipType); err != nil {
			if errors.Is(err, ErrDuplicateConnection) {
				log.Printf("graph: seed edge %s-%s already exists", pair[0], pair[1])
				continue
			}
			return err
		}
	}
	return nil
}
