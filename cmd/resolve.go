package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ensmesh/ensmesh/internal/config"
	"github.com/ensmesh/ensmesh/internal/ens"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Resolve one ENS profile and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		name := ens.NormalizeName(args[0])
		if !ens.IsValidName(name) {
			return fmt.Errorf("invalid ENS name %q", args[0])
		}

		resolver := ens.NewHTTPResolver(cfg.ResolverBase)
		profile, err := resolver.Resolve(context.Background(), name)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", name, err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
