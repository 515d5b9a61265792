package config

import (
	"path/filepath"
	"time"

	"github.com/ensmesh/ensmesh/internal/ens"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:            8480,
		DataDir:         "data",
		ResolverBase:    ens.DefaultAPIBase,
		CacheTTLMinutes: 5,
		ViewportWidth:   1280,
		ViewportHeight:  800,
	}
}

// DatabasePath returns the SQLite file path under the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "ensmesh.db")
}

// CacheTTL returns the profile cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}
