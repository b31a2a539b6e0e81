package gemini

import (
	"log/slog"

	"github.com/parley-llm/parley/internal/config"
	"github.com/parley-llm/parley/internal/domain"
	"github.com/parley-llm/parley/internal/provider/registry"
	"github.com/parley-llm/parley/internal/telemetry"
)

func init() {
	registry.Register(registry.Factory{
		Kind:        Kind,
		Description: "Google Gemini generateContent (whole-body)",
		Create:      CreateFromConfig,
		Validate:    ValidateConfig,
	})
}

// CreateFromConfig instantiates the provider from configuration.
func CreateFromConfig(cfg config.ProviderConfig, logger *slog.Logger) (domain.Provider, error) {
	return New(cfg, logger, telemetry.NewHTTPClient()), nil
}

// ValidateConfig checks the provider-specific configuration.
func ValidateConfig(cfg config.ProviderConfig) error {
	if cfg.APIKey == "" {
		return domain.ErrConfiguration("gemini provider requires api_key")
	}
	return nil
}
