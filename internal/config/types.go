package config

// Config is the top-level ensmesh configuration, corresponding to .ensmesh.yml.
type Config struct {
	Port            int     `yaml:"port" koanf:"port"`
	DataDir         string  `yaml:"data_dir" koanf:"data_dir"`
	ResolverBase    string  `yaml:"resolver_base" koanf:"resolver_base"`
	CacheTTLMinutes int     `yaml:"cache_ttl_minutes" koanf:"cache_ttl_minutes"`
	ViewportWidth   float64 `yaml:"viewport_width" koanf:"viewport_width"`
	ViewportHeight  float64 `yaml:"viewport_height" koanf:"viewport_height"`
	AllowAllOrigins bool    `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
