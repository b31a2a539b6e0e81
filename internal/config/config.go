// Package config loads parley configuration from an optional YAML file
// overlaid with PARLEY_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level configuration.
type Config struct {
	// DefaultProvider names the entry in Providers used when the caller
	// does not pick one explicitly.
	DefaultProvider string `koanf:"default_provider"`

	// HistoryPath is the SQLite transcript database. Empty disables
	// persistence.
	HistoryPath string `koanf:"history_path"`

	Providers map[string]ProviderConfig `koanf:"providers"`
}

// ProviderConfig configures one backend. It is read-only during a
// request and may be hot-swapped by the caller between requests.
type ProviderConfig struct {
	// Kind selects the protocol family: openai, openrouter, anthropic,
	// gemini, or ollama.
	Kind string `koanf:"kind"`

	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`

	// Model is the default model for requests that do not name one.
	Model string `koanf:"model"`

	Temperature *float32 `koanf:"temperature"`
	MaxTokens   int      `koanf:"max_tokens"`

	// MaxHistoryPairs bounds the context window in role-alternating
	// pairs. Zero means unlimited.
	MaxHistoryPairs int `koanf:"max_history_pairs"`

	// MaxContextTokens bounds the context window by token count.
	// Zero means unlimited.
	MaxContextTokens int `koanf:"max_context_tokens"`

	// ReasoningHeader overrides the <think> reasoning delimiter. The
	// footer is derived from the header.
	ReasoningHeader string `koanf:"reasoning_header"`

	// VisibleModels filters ListModels output when non-empty.
	VisibleModels []string `koanf:"visible_models"`
}

// Load reads the config file at path (skipped when missing) and applies
// environment overrides. Double underscores separate hierarchy levels so
// single underscores survive inside field names:
// PARLEY_PROVIDERS__LOCAL__API_KEY maps to providers.local.api_key.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider("PARLEY_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "PARLEY_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Provider returns the named provider config, falling back to the
// default when name is empty.
func (c *Config) Provider(name string) (ProviderConfig, error) {
	if name == "" {
		name = c.DefaultProvider
	}
	if name == "" {
		return ProviderConfig{}, fmt.Errorf("no provider selected and no default_provider configured")
	}
	pc, ok := c.Providers[name]
	if !ok {
		return ProviderConfig{}, fmt.Errorf("provider %q not configured", name)
	}
	return pc, nil
}
