package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ensmesh/ensmesh/internal/config"
	"github.com/ensmesh/ensmesh/internal/db"
	"github.com/ensmesh/ensmesh/internal/ens"
	"github.com/ensmesh/ensmesh/internal/graph"
	"github.com/ensmesh/ensmesh/internal/live"
	"github.com/ensmesh/ensmesh/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the graph server",
	Long:  `Starts the ensmesh server: the REST graph API, the live WebSocket view, and the embedded browser page.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if servePort > 0 {
			cfg.Port = servePort
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		database, err := db.Open(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		store := graph.NewStore(database)
		resolver := ens.NewCachedResolver(
			ens.NewHTTPResolver(cfg.ResolverBase),
			ens.NewCache(cfg.CacheTTL()),
		)

		session := live.NewSession(store, resolver, cfg.ViewportWidth, cfg.ViewportHeight)
		hub := live.NewHub(session)

		srv := server.New(server.Config{
			Port:     cfg.Port,
			AllowAll: cfg.AllowAllOrigins,
		}, database, store, hub)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go hub.Run(ctx)

		// Load in the background so the page is reachable immediately;
		// clients see a loading state until the first load lands.
		go func() {
			if err := session.Load(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: initial graph load failed: %v\n", err)
				fmt.Fprintln(os.Stderr, "The next client connection will retry.")
			}
		}()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "ensmesh v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", cfg.DatabasePath())
		fmt.Fprintf(os.Stderr, "  Resolver: %s\n", cfg.ResolverBase)

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
