// Package provider holds the pieces shared by all backend clients:
// request parameter resolution against provider configuration and model
// list filtering.
package provider

import (
	"slices"

	"github.com/parley-llm/parley/internal/config"
	"github.com/parley-llm/parley/internal/conversation"
	"github.com/parley-llm/parley/internal/domain"
)

// ResolveModel picks the request model over the configured default.
// Absence of both is a fatal precondition failure, never a retry.
func ResolveModel(req *domain.ChatRequest, cfg config.ProviderConfig) (string, error) {
	if req.Model != "" {
		return req.Model, nil
	}
	if cfg.Model != "" {
		return cfg.Model, nil
	}
	return "", domain.ErrConfiguration("no model specified and no default configured")
}

// ResolveTag picks the request reasoning tag, the configured one, or the
// <think> default, in that order.
func ResolveTag(req *domain.ChatRequest, cfg config.ProviderConfig) domain.ReasoningTag {
	if !req.Tag.IsZero() {
		return req.Tag
	}
	if cfg.ReasoningHeader != "" {
		return domain.NewReasoningTag(cfg.ReasoningHeader)
	}
	return domain.DefaultReasoningTag()
}

// ResolveTemperature picks the request temperature over the configured
// default; nil means backend default.
func ResolveTemperature(req *domain.ChatRequest, cfg config.ProviderConfig) *float32 {
	if req.Temperature != nil {
		return req.Temperature
	}
	return cfg.Temperature
}

// ResolveMaxTokens picks the request limit over the configured default.
func ResolveMaxTokens(req *domain.ChatRequest, cfg config.ProviderConfig) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return cfg.MaxTokens
}

// WindowOptions derives the conversation window settings for a model.
func WindowOptions(cfg config.ProviderConfig, model string) conversation.Options {
	return conversation.Options{
		MaxPairs:         cfg.MaxHistoryPairs,
		MaxContextTokens: cfg.MaxContextTokens,
		Model:            model,
	}
}

// FilterModels restricts a listing to the configured visible set. An
// empty set means everything is visible.
func FilterModels(models []domain.Model, visible []string) []domain.Model {
	if len(visible) == 0 {
		return models
	}
	out := make([]domain.Model, 0, len(models))
	for _, m := range models {
		if slices.Contains(visible, m.ID) {
			out = append(out, m)
		}
	}
	return out
}

// AssembleResult folds finalized stream state into the chat result.
func AssembleResult(answer string, blocks []string, truncated bool) *domain.ChatResult {
	msg := domain.NewMessage(domain.RoleAssistant, answer)
	msg.ReasoningBlocks = blocks
	return &domain.ChatResult{Message: msg, Truncated: truncated}
}
