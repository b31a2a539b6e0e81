// Package openrouter implements the provider client for OpenRouter,
// which speaks the OpenAI chat protocol behind its own base URL.
package openrouter

import (
	"log/slog"

	openaiapi "github.com/parley-llm/parley/internal/api/openai"
	"github.com/parley-llm/parley/internal/config"
	"github.com/parley-llm/parley/internal/domain"
	"github.com/parley-llm/parley/internal/provider/openai"
	"github.com/parley-llm/parley/internal/provider/registry"
	"github.com/parley-llm/parley/internal/telemetry"
)

// Kind is the configuration identifier for this provider.
const Kind = "openrouter"

const defaultBaseURL = "https://openrouter.ai/api/v1"

func init() {
	registry.Register(registry.Factory{
		Kind:        Kind,
		Description: "OpenRouter (OpenAI-compatible, SSE streaming)",
		Create:      CreateFromConfig,
		Validate:    ValidateConfig,
	})
}

// CreateFromConfig instantiates the provider from configuration.
func CreateFromConfig(cfg config.ProviderConfig, logger *slog.Logger) (domain.Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	// OpenRouter asks clients to identify themselves for rankings.
	return openai.NewCompatible(Kind, cfg, logger, telemetry.NewHTTPClient(),
		openaiapi.WithHeader("HTTP-Referer", "https://github.com/parley-llm/parley"),
		openaiapi.WithHeader("X-Title", "parley"),
	), nil
}

// ValidateConfig checks the provider-specific configuration.
func ValidateConfig(cfg config.ProviderConfig) error {
	if cfg.APIKey == "" {
		return domain.ErrConfiguration("openrouter provider requires api_key")
	}
	return nil
}
