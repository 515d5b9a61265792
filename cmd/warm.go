package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ensmesh/ensmesh/internal/config"
	"github.com/ensmesh/ensmesh/internal/db"
	"github.com/ensmesh/ensmesh/internal/ens"
	"github.com/ensmesh/ensmesh/internal/graph"
	"github.com/ensmesh/ensmesh/internal/progress"
)

var warmForce bool

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Resolve and cache profiles for every stored identity",
	Long:  `Walks every node in the graph database, resolves its ENS profile, and stores the result, so the next serve starts with a fully enriched graph.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		database, err := db.Open(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		store := graph.NewStore(database)
		resolver := ens.NewHTTPResolver(cfg.ResolverBase)

		ctx := context.Background()
		nodes, err := store.GetNodes(ctx)
		if err != nil {
			return fmt.Errorf("listing nodes: %w", err)
		}

		var pending []graph.Node
		for _, n := range nodes {
			if warmForce || n.CachedProfile == nil {
				pending = append(pending, n)
			}
		}
		if len(pending) == 0 {
			fmt.Println("All profiles already cached.")
			return nil
		}

		reporter := progress.NewReporter()
		reporter.Start(len(pending))
		resolved, failed := 0, 0
		for i, n := range pending {
			reporter.Update(i+1, n.ENSName)
			p, err := resolver.Resolve(ctx, n.ENSName)
			if err != nil {
				failed++
				continue
			}
			profile := &graph.Profile{
				Avatar:      p.Avatar,
				DisplayName: p.DisplayName,
				Description: p.Description,
			}
			if err := store.UpdateProfile(ctx, n.ID, p.Address, profile); err != nil {
				failed++
				continue
			}
			resolved++
		}
		reporter.Finish()

		fmt.Printf("Resolved %d of %d profiles", resolved, len(pending))
		if failed > 0 {
			fmt.Printf(" (%d failed)", failed)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	warmCmd.Flags().BoolVar(&warmForce, "force", false, "re-resolve profiles that are already cached")
	rootCmd.AddCommand(warmCmd)
}
