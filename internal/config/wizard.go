package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"

	"github.com/ensmesh/ensmesh/internal/ens"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .ensmesh.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to ensmesh! Let's configure your graph server.")
	fmt.Println()

	defaults := DefaultConfig()

	// 1. Port.
	portPrompt := promptui.Prompt{
		Label:   "Server port",
		Default: strconv.Itoa(defaults.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	// 2. Data directory.
	dataDirPrompt := promptui.Prompt{
		Label:   "Data directory (SQLite database location)",
		Default: defaults.DataDir,
	}
	dataDir, err := dataDirPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 3. Profile resolver.
	resolverPrompt := promptui.Prompt{
		Label:   "ENS profile API base URL",
		Default: ens.DefaultAPIBase,
	}
	resolverBase, err := resolverPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("resolver base: %w", err)
	}

	// 4. CORS mode.
	corsPrompt := promptui.Select{
		Label: "Allowed origins",
		Items: []string{
			"localhost only (recommended)",
			"all origins (dev mode)",
		},
	}
	corsIdx, _, err := corsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("origins: %w", err)
	}

	cfg := &Config{
		Port:            port,
		DataDir:         dataDir,
		ResolverBase:    resolverBase,
		CacheTTLMinutes: defaults.CacheTTLMinutes,
		ViewportWidth:   defaults.ViewportWidth,
		ViewportHeight:  defaults.ViewportHeight,
		AllowAllOrigins: corsIdx == 1,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configPath := ".ensmesh.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}
