package config

// Config holds docent configuration.
type Config struct {
	Backends  map[string]BackendCfg `mapstructure:"backends" yaml:"backends"`
	Defaults  DefaultsCfg           `mapstructure:"defaults" yaml:"defaults"`
	Retriever RetrieverCfg          `mapstructure:"retriever" yaml:"retriever"`
	Parser    ParserCfg             `mapstructure:"parser" yaml:"parser"`
	Server    ServerCfg             `mapstructure:"server" yaml:"server"`
}

// BackendCfg configures one model backend.
type BackendCfg struct {
	Type              string `mapstructure:"type" yaml:"type"`   // "openrouter", "openai", "ollama", "mock"
	Model             string `mapstructure:"model" yaml:"model"` // default completion model
	VisionModel       string `mapstructure:"vision_model" yaml:"vision_model"`
	APIKey            string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	BaseURL           string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries        int    `mapstructure:"max_retries" yaml:"max_retries"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg selects the default backend.
type DefaultsCfg struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
}

// RetrieverCfg configures source retrieval.
type RetrieverCfg struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxAttempts    int    `mapstructure:"max_attempts" yaml:"max_attempts"`
	UserAgent      string `mapstructure:"user_agent" yaml:"user_agent"`
}

// ParserCfg configures document chunking.
type ParserCfg struct {
	ChunkSize    int `mapstructure:"chunk_size" yaml:"chunk_size"`       // characters per chunk
	ChunkOverlap int `mapstructure:"chunk_overlap" yaml:"chunk_overlap"` // overlap between chunks
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Backends: map[string]BackendCfg{
			"openrouter": {
				Type:    "openrouter",
				Model:   "anthropic/claude-3.5-sonnet",
				APIKey:  "${OPENROUTER_API_KEY}",
				Enabled: true,
			},
			"ollama": {
				Type:        "ollama",
				Model:       "granite3.1-dense:8b",
				VisionModel: "granite3.2-vision",
				Enabled:     false,
			},
			"mock": {
				Type:    "mock",
				Enabled: true,
			},
		},
		Defaults: DefaultsCfg{
			Backend: "openrouter",
		},
		Retriever: RetrieverCfg{
			TimeoutSeconds: 30,
			MaxAttempts:    3,
			UserAgent:      "Docent/1.0 (+https://github.com/docentlabs/docent)",
		},
		Parser: ParserCfg{
			ChunkSize:    1000,
			ChunkOverlap: 100,
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
	}
}

// GetBackend returns a backend config by name.
func (c *Config) GetBackend(name string) (BackendCfg, bool) {
	cfg, ok := c.Backends[name]
	return cfg, ok
}

// EnabledBackends returns all enabled backend configs.
func (c *Config) EnabledBackends() map[string]BackendCfg {
	result := make(map[string]BackendCfg)
	for name, cfg := range c.Backends {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
