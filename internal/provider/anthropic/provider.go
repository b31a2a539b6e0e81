// Package anthropic implements the provider client for the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	anthropicapi "github.com/parley-llm/parley/internal/api/anthropic"
	"github.com/parley-llm/parley/internal/config"
	"github.com/parley-llm/parley/internal/conversation"
	"github.com/parley-llm/parley/internal/domain"
	"github.com/parley-llm/parley/internal/provider"
	"github.com/parley-llm/parley/internal/request"
	"github.com/parley-llm/parley/internal/stream"
	"github.com/parley-llm/parley/internal/wire"
)

// Kind is the configuration identifier for this provider.
const Kind = "anthropic"

// defaultMaxTokens is used when neither request nor config set a limit;
// the Messages API requires max_tokens.
const defaultMaxTokens = 1024

// profile: Anthropic requires the first message to be from the user,
// strict role alternation, and carries system prompts out of band.
var profile = conversation.Profile{
	RequireUserFirst:  true,
	StrictAlternation: true,
	SystemOutOfBand:   true,
}

// Provider implements domain.Provider over the Anthropic Messages API.
type Provider struct {
	cfg    config.ProviderConfig
	client *anthropicapi.Client
	ctrl   request.Controller
	logger *slog.Logger
}

// New creates an Anthropic provider.
func New(cfg config.ProviderConfig, logger *slog.Logger, httpClient *http.Client) *Provider {
	opts := []anthropicapi.ClientOption{anthropicapi.WithBaseURL(cfg.BaseURL)}
	if httpClient != nil {
		opts = append(opts, anthropicapi.WithHTTPClient(httpClient))
	}
	return &Provider{
		cfg:    cfg,
		client: anthropicapi.NewClient(cfg.APIKey, opts...),
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

	maxTokens := provider.ResolveMaxTokens(req, p.cfg)
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	apiReq := &anthropicapi.MessagesRequest{
		Model:       model,
		Messages:    toAPIMessages(built.Messages),
		MaxTokens:   maxTokens,
		Temperature: provider.ResolveTemperature(req, p.cfg),
		System:      built.System,
		Stream:      req.Stream,
	}

	p.logger.Info("sending chat request",
		slog.String("provider", Kind),
		slog.String("model", model),
		slog.Bool("stream", req.Stream))

	body, err := p.client.CreateMessage(ctx, apiReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.ErrCancelled("request cancelled before response")
		}
		return nil, err
	}
	defer body.Close()

	var decoder wire.Decoder
	var extract stream.Extractor
	if req.Stream {
		decoder = wire.NewSSEDecoder(p.logger)
		extract = ExtractEvent
	} else {
		decoder = wire.NewBodyDecoder()
		extract = ExtractResponse
	}

	pipe := &stream.Pipeline{
		Decoder: decoder,
		Extract: extract,
		Tag:     provider.ResolveTag(req, p.cfg),
		Sink:    sink,
		Logger:  p.logger,
		Strict:  !req.Stream,
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
	models := make([]domain.Model, len(list.Data))
	for i, m := range list.Data {
		var created int64
		if m.CreatedAt != "" {
			if t, err := time.Parse(time.RFC3339, m.CreatedAt); err == nil {
				created = t.Unix()
			}
		}
		models[i] = domain.Model{ID: m.ID, Created: created}
	}
	return provider.FilterModels(models, p.cfg.VisibleModels), nil
}

// ExtractEvent pulls the text delta out of one SSE event payload. Only
// content_block_delta events with text deltas contribute text;
// message_stop ends the stream.
func ExtractEvent(payload []byte) (stream.Delta, error) {
	var event anthropicapi.StreamEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return stream.Delta{}, fmt.Errorf("unmarshal event: %w", err)
	}
	switch event.Type {
	case "content_block_delta":
		if event.Delta != nil && event.Delta.Type == "text_delta" {
			return stream.Delta{Text: event.Delta.Text}, nil
		}
		return stream.Delta{}, nil
	case "message_stop":
		return stream.Delta{Done: true}, nil
	default:
		// message_start, ping, content_block_start/stop, message_delta.
		return stream.Delta{}, nil
	}
}

// ExtractResponse pulls the whole answer out of a non-streaming body.
func ExtractResponse(payload []byte) (stream.Delta, error) {
	var resp anthropicapi.MessagesResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return stream.Delta{}, fmt.Errorf("unmarshal response: %w", err)
	}
	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return stream.Delta{Text: text, Done: true}, nil
}

func toAPIMessages(msgs []domain.Message) []anthropicapi.Message {
	out := make([]anthropicapi.Message, len(msgs))
	for i, m := range msgs {
		out[i] = anthropicapi.Message{Role: string(m.Role), Content: m.Content}
	}
	return out
}
