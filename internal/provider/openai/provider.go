// Package openai implements the provider client for OpenAI-style chat
// completion backends.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	openaiapi "github.com/parley-llm/parley/internal/api/openai"
	"github.com/parley-llm/parley/internal/config"
	"github.com/parley-llm/parley/internal/conversation"
	"github.com/parley-llm/parley/internal/domain"
	"github.com/parley-llm/parley/internal/provider"
	"github.com/parley-llm/parley/internal/request"
	"github.com/parley-llm/parley/internal/stream"
	"github.com/parley-llm/parley/internal/wire"
)

// Kind is the configuration identifier for this provider.
const Kind = "openai"

// profile: OpenAI accepts any role ordering and inline system messages.
var profile = conversation.Profile{}

// Provider implements domain.Provider over the OpenAI chat protocol.
type Provider struct {
	name   string
	cfg    config.ProviderConfig
	client *openaiapi.Client
	ctrl   request.Controller
	logger *slog.Logger
}

// New creates an OpenAI provider.
func New(cfg config.ProviderConfig, logger *slog.Logger, httpClient *http.Client) *Provider {
	return NewCompatible(Kind, cfg, logger, httpClient)
}

// NewCompatible creates a provider for any backend that speaks the
// OpenAI chat protocol (OpenRouter and self-hosted gateways).
func NewCompatible(name string, cfg config.ProviderConfig, logger *slog.Logger, httpClient *http.Client, extra ...openaiapi.ClientOption) *Provider {
	opts := []openaiapi.ClientOption{openaiapi.WithBaseURL(cfg.BaseURL)}
	if httpClient != nil {
		opts = append(opts, openaiapi.WithHTTPClient(httpClient))
	}
	opts = append(opts, extra...)
	return &Provider{
		name:   name,
		cfg:    cfg,
		client: openaiapi.NewClient(cfg.APIKey, opts...),
		logger: logger,
	}
}

func (p *Provider) Name() string {
	return p.name
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

	apiReq := &openaiapi.ChatCompletionRequest{
		Model:       model,
		Messages:    toAPIMessages(built.Messages),
		Temperature: provider.ResolveTemperature(req, p.cfg),
		MaxTokens:   provider.ResolveMaxTokens(req, p.cfg),
		Stream:      req.Stream,
	}

	p.logger.Info("sending chat request",
		slog.String("provider", p.name),
		slog.String("model", model),
		slog.Bool("stream", req.Stream))

	body, err := p.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.ErrCancelled("request cancelled before response")
		}
		return nil, err
	}
	defer body.Close()

	pipe := &stream.Pipeline{
		Decoder: decoderFor(req.Stream, p.logger),
		Extract: extractorFor(req.Stream),
		Tag:     provider.ResolveTag(req, p.cfg),
		Sink:    sink,
		Logger:  p.logger,
		Strict:  !req.Stream,
	}
	res, err := pipe.Run(ctx, body)
	if err != nil {
		return nil, err
	}

	out := provider.AssembleResult(res.Answer, res.ReasoningBlocks, res.Truncated)
	return out, nil
}

func (p *Provider) ListModels(ctx context.Context) ([]domain.Model, error) {
	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	models := make([]domain.Model, len(list.Data))
	for i, m := range list.Data {
		models[i] = domain.Model{ID: m.ID, OwnedBy: m.OwnedBy, Created: m.Created}
	}
	return provider.FilterModels(models, p.cfg.VisibleModels), nil
}

func decoderFor(streaming bool, logger *slog.Logger) wire.Decoder {
	if streaming {
		return wire.NewSSEDecoder(logger)
	}
	return wire.NewBodyDecoder()
}

func extractorFor(streaming bool) stream.Extractor {
	if streaming {
		return ExtractChunk
	}
	return ExtractResponse
}

// ExtractChunk pulls the text delta out of one streaming SSE frame.
func ExtractChunk(payload []byte) (stream.Delta, error) {
	var chunk openaiapi.ChatCompletionChunk
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return stream.Delta{}, fmt.Errorf("unmarshal chunk: %w", err)
	}
	if len(chunk.Choices) == 0 {
		// Usage-only or metadata frames carry no text.
		return stream.Delta{}, nil
	}
	choice := chunk.Choices[0]
	return stream.Delta{
		Text: choice.Delta.Content,
		Done: choice.FinishReason != nil && *choice.FinishReason != "",
	}, nil
}

// ExtractResponse pulls the whole answer out of a non-streaming body.
func ExtractResponse(payload []byte) (stream.Delta, error) {
	var resp openaiapi.ChatCompletionResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return stream.Delta{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return stream.Delta{}, fmt.Errorf("response has no choices")
	}
	return stream.Delta{Text: resp.Choices[0].Message.Content, Done: true}, nil
}

func toAPIMessages(msgs []domain.Message) []openaiapi.ChatCompletionMessage {
	out := make([]openaiapi.ChatCompletionMessage, len(msgs))
	for i, m := range msgs {
		out[i] = openaiapi.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}
