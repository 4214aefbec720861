// Package models provides chat-completion clients for the supported LLM
// providers. Each client speaks its provider's native tool-calling protocol
// and tracks per-model usage for the benchmark report. Providers register
// themselves through a factory map so configuration can select them by name.
package models

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/olib-ai/bizcon/internal/ports"
)

var validate = validator.New()

// Config carries the settings needed to construct a provider client.
type Config struct {
	// Provider selects the registered client factory ("openai",
	// "anthropic", or "google").
	Provider string `yaml:"provider" validate:"required"`
	// Model is the provider-side model identifier.
	Model string `yaml:"model" validate:"required"`
	// Name is the display name used in results. Defaults to Model.
	Name string `yaml:"name"`
	// APIKey authenticates against the provider.
	APIKey string `yaml:"api_key" validate:"required"`
	// BaseURL overrides the provider endpoint, for proxies and gateways.
	BaseURL string `yaml:"base_url"`
	// Temperature, when set, overrides the provider default.
	Temperature *float64 `yaml:"temperature" validate:"omitempty,min=0,max=2"`
	// MaxTokens caps the completion length. Zero uses the provider default.
	MaxTokens int `yaml:"max_tokens" validate:"min=0"`
	// Timeout bounds a single request. Zero disables the client-side bound.
	Timeout time.Duration `yaml:"timeout"`
	// RequestsPerMinute throttles the client when positive.
	RequestsPerMinute float64 `yaml:"requests_per_minute" validate:"min=0"`
}

// DisplayName returns the name results should report for this client.
func (c Config) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Model
}

// Factory constructs a provider client from a validated Config.
type Factory func(Config) (ports.ModelClient, error)

var (
	factoryMu sync.RWMutex
	factories = make(map[string]Factory)
)

// RegisterFactory makes a provider constructor available under the given
// name. Providers call this from init.
func RegisterFactory(provider string, factory Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factories[provider] = factory
}

// New builds the client selected by cfg.Provider, wrapped with rate
// limiting when the config requests it.
func New(cfg Config) (ports.ModelClient, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid model config: %w", err)
	}

	factoryMu.RLock()
	factory, ok := factories[cfg.Provider]
	factoryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (registered: %v)", cfg.Provider, registeredProviders())
	}

	client, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.RequestsPerMinute > 0 {
		client = WithRateLimit(client, cfg.RequestsPerMinute)
	}
	return client, nil
}

func registeredProviders() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
