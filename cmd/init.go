package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ensmesh/ensmesh/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize ensmesh configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure ensmesh and generates a .ensmesh.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
