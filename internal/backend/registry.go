package backend

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// BackendConfig describes one backend instance for config-driven setup.
type BackendConfig struct {
	Type              string // "openrouter", "openai", "ollama", "mock"
	Model             string
	APIKey            string
	BaseURL           string
	TimeoutSeconds    int
	MaxRetries        int
	RequestsPerMinute int
	Enabled           bool
}

// RegistryConfig holds all backend configs keyed by name.
type RegistryConfig struct {
	Backends map[string]BackendConfig
}

// Registry holds named model backends. It supports config-driven
// instantiation and hot reload, and is safe for concurrent access.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]ModelBackend
	logger   *slog.Logger
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]ModelBackend),
		logger:   slog.Default(),
	}
}

// SetLogger sets the registry logger.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register registers a backend by name.
func (r *Registry) Register(name string, b ModelBackend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[name] = b
	if r.logger != nil {
		r.logger.Info("registered model backend", "name", name, "type", b.Name())
	}
}

// Get returns a backend by name.
func (r *Registry) Get(name string) (ModelBackend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("model backend not found: %s", name)
	}
	return b, nil
}

// Has reports whether a backend is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.backends[name]
	return ok
}

// List returns all registered backend names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	return names
}

// Reload replaces the registered backends from config. Disabled entries and
// entries with unknown types are skipped with a log line rather than
// failing the reload.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]ModelBackend, len(cfg.Backends))
	for name, bc := range cfg.Backends {
		if !bc.Enabled {
			continue
		}
		b, err := newFromConfig(name, bc)
		if err != nil {
			if r.logger != nil {
				r.logger.Warn("skipping model backend", "name", name, "error", err)
			}
			continue
		}
		next[name] = b
		if r.logger != nil {
			r.logger.Info("configured model backend", "name", name, "type", bc.Type, "model", bc.Model)
		}
	}
	r.backends = next
}

func newFromConfig(name string, bc BackendConfig) (ModelBackend, error) {
	timeout := time.Duration(bc.TimeoutSeconds) * time.Second

	switch bc.Type {
	case "openrouter":
		return NewOpenRouterBackend(OpenRouterConfig{
			APIKey:            bc.APIKey,
			BaseURL:           bc.BaseURL,
			DefaultModel:      bc.Model,
			Timeout:           timeout,
			MaxRetries:        bc.MaxRetries,
			RequestsPerMinute: bc.RequestsPerMinute,
		}), nil
	case "openai":
		return NewOpenAIBackend(OpenAIConfig{
			Name:              name,
			APIKey:            bc.APIKey,
			BaseURL:           bc.BaseURL,
			DefaultModel:      bc.Model,
			Timeout:           timeout,
			MaxRetries:        bc.MaxRetries,
			RequestsPerMinute: bc.RequestsPerMinute,
		}), nil
	case "ollama":
		baseURL := bc.BaseURL
		if baseURL == "" {
			baseURL = OllamaBaseURL
		}
		return NewOpenAIBackend(OpenAIConfig{
			Name:              name,
			APIKey:            "ollama", // Ollama ignores the key but the client requires one
			BaseURL:           baseURL,
			DefaultModel:      bc.Model,
			Timeout:           timeout,
			MaxRetries:        bc.MaxRetries,
			RequestsPerMinute: bc.RequestsPerMinute,
		}), nil
	case "mock":
		return NewMockBackend(), nil
	default:
		return nil, fmt.Errorf("unknown backend type: %q", bc.Type)
	}
}
