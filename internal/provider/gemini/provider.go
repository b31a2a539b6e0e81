// Package gemini implements the provider client for the Google Gemini
// generateContent API. Gemini has no incremental transport here; every
// call is decoded as a single whole-body document and the answer is
// replayed through the sink in one piece.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	geminiapi "github.com/parley-llm/parley/internal/api/gemini"
	"github.com/parley-llm/parley/internal/config"
	"github.com/parley-llm/parley/internal/conversation"
	"github.com/parley-llm/parley/internal/domain"
	"github.com/parley-llm/parley/internal/provider"
	"github.com/parley-llm/parley/internal/request"
	"github.com/parley-llm/parley/internal/stream"
	"github.com/parley-llm/parley/internal/wire"
)

// Kind is the configuration identifier for this provider.
const Kind = "gemini"

// profile: Gemini wants user-first alternating turns and carries the
// system prompt as a separate systemInstruction.
var profile = conversation.Profile{
	RequireUserFirst:  true,
	StrictAlternation: true,
	SystemOutOfBand:   true,
}

// Provider implements domain.Provider over the Gemini API.
type Provider struct {
	cfg    config.ProviderConfig
	client *geminiapi.Client
	ctrl   request.Controller
	logger *slog.Logger
}

// New creates a Gemini provider.
func New(cfg config.ProviderConfig, logger *slog.Logger, httpClient *http.Client) *Provider {
	opts := []geminiapi.ClientOption{geminiapi.WithBaseURL(cfg.BaseURL)}
	if httpClient != nil {
		opts = append(opts, geminiapi.WithHTTPClient(httpClient))
	}
	return &Provider{
		cfg:    cfg,
		client: geminiapi.NewClient(cfg.APIKey, opts...),
		logger: logger,
	}
}

func (p *Provider) Name() string {
	return Kind
}

func (p *Provider) Cancel() {
	p.ctrl.Cancel()
}

func (p *Provider) SendMessage(ctx context.Context, req *domain.ChatRequest, sink domain.TokenSink) (*domain.ChatResult, error) {
	model, err := provider.ResolveModel(req, p.cfg)
	if err != nil {
		return nil, err
	}

	ctx, release := p.ctrl.Begin(ctx)
	defer release()

	built := conversation.Build(req.History, req.Prompt, profile, provider.WindowOptions(p.cfg, model))

	apiReq := &geminiapi.GenerateContentRequest{
		Contents: toContents(built.Messages),
	}
	if built.System != "" {
		apiReq.SystemInstruction = &geminiapi.Content{
			Parts: []geminiapi.Part{{Text: built.System}},
		}
	}
	temp := provider.ResolveTemperature(req, p.cfg)
	maxTokens := provider.ResolveMaxTokens(req, p.cfg)
	if temp != nil || maxTokens > 0 {
		apiReq.GenerationConfig = &geminiapi.GenerationConfig{
			Temperature:     temp,
			MaxOutputTokens: maxTokens,
		}
	}

	p.logger.Info("sending chat request",
		slog.String("provider", Kind),
		slog.String("model", model))

	body, err := p.client.GenerateContent(ctx, model, apiReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.ErrCancelled("request cancelled before response")
		}
		return nil, err
	}
	defer body.Close()

	pipe := &stream.Pipeline{
		Decoder: wire.NewBodyDecoder(),
		Extract: ExtractResponse,
		Tag:     provider.ResolveTag(req, p.cfg),
		Sink:    sink,
		Logger:  p.logger,
		Strict:  true,
	}
	res, err := pipe.Run(ctx, body)
	if err != nil {
		return nil, err
	}
	return provider.AssembleResult(res.Answer, res.ReasoningBlocks, res.Truncated), nil
}

func (p *Provider) ListModels(ctx context.Context) ([]domain.Model, error) {
	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	models := make([]domain.Model, len(list.Models))
	for i, m := range list.Models {
		models[i] = domain.Model{ID: strings.TrimPrefix(m.Name, "models/")}
	}
	return provider.FilterModels(models, p.cfg.VisibleModels), nil
}

// ExtractResponse pulls the answer text out of a generateContent body,
// concatenating the first candidate's parts.
func ExtractResponse(payload []byte) (stream.Delta, error) {
	var resp geminiapi.GenerateContentResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return stream.Delta{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return stream.Delta{}, fmt.Errorf("response has no candidates")
	}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return stream.Delta{Text: text.String(), Done: true}, nil
}

// toContents maps domain messages onto Gemini's user/model vocabulary.
func toContents(msgs []domain.Message) []geminiapi.Content {
	out := make([]geminiapi.Content, len(msgs))
	for i, m := range msgs {
		role := "user"
		if m.Role == domain.RoleAssistant {
			role = "model"
		}
		out[i] = geminiapi.Content{
			Role:  role,
			Parts: []geminiapi.Part{{Text: m.Content}},
		}
	}
	return out
}
