package live

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/ensmesh/ensmesh/internal/ens"
	"github.com/ensmesh/ensmesh/internal/graph"
)

// enrichConcurrency bounds parallel profile lookups against the ENS API.
const enrichConcurrency = 4

// EnrichAll resolves profiles for every node that has none cached and
// writes the results back to the store. Individual lookup failures are
// logged and skipped so one dead name never blocks the rest of the graph;
// only context cancellation aborts the pass.
func EnrichAll(ctx context.Context, store *graph.Store, resolver ens.Resolver, nodes []graph.Node) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)

	for _, n := range nodes {
		if n.CachedProfile != nil {
			continue
		}
		n := n
		g.Go(func() error {
			resolved, err := resolver.Resolve(ctx, n.ENSName)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("live: resolving %s: %v", n.ENSName, err)
				return nil
			}
			profile := &graph.Profile{
				Avatar:      resolved.Avatar,
				DisplayName: resolved.DisplayName,
				Description: resolved.Description,
			}
			if err := store.UpdateProfile(ctx, n.ID, resolved.Address, profile); err != nil {
				log.Printf("live: caching profile for %s: %v", n.ENSName, err)
			}
			return nil
		})
	}
	return g.Wait()
}
