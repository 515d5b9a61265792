package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ensmesh",
	Short: "Self-hosted ENS identity graph server",
	Long: `ensmesh serves an interactive graph of ENS identities and the
connections between them. The graph lives in a local SQLite database,
profiles are enriched from a public ENS profile API, and the browser
view is driven by a server-side force layout over WebSocket.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".ensmesh.yml", "config file path")
}
