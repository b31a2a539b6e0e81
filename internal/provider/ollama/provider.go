// Package ollama implements the provider client for a local or remote
// Ollama server, which streams newline-delimited JSON.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	ollamaapi "github.com/parley-llm/parley/internal/api/ollama"
	"github.com/parley-llm/parley/internal/config"
	"github.com/parley-llm/parley/internal/conversation"
	"github.com/parley-llm/parley/internal/domain"
	"github.com/parley-llm/parley/internal/provider"
	"github.com/parley-llm/parley/internal/request"
	"github.com/parley-llm/parley/internal/stream"
	"github.com/parley-llm/parley/internal/wire"
)

// Kind is the configuration identifier for this provider.
const Kind = "ollama"

// profile: Ollama accepts any role ordering and inline system messages.
var profile = conversation.Profile{}

// Provider implements domain.Provider over the Ollama chat API.
type Provider struct {
	cfg    config.ProviderConfig
	client *ollamaapi.Client
	ctrl   request.Controller
	logger *slog.Logger
}

// New creates an Ollama provider.
func New(cfg config.ProviderConfig, logger *slog.Logger, httpClient *http.Client) *Provider {
	opts := []ollamaapi.ClientOption{ollamaapi.WithBaseURL(cfg.BaseURL)}
	if httpClient != nil {
		opts = append(opts, ollamaapi.WithHTTPClient(httpClient))
	}
	return &Provider{
		cfg:    cfg,
		client: ollamaapi.NewClient(opts...),
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

	apiReq := &ollamaapi.ChatRequest{
		Model:    model,
		Messages: toAPIMessages(built.Messages),
		Stream:   req.Stream,
		Context:  req.Context,
	}
	temp := provider.ResolveTemperature(req, p.cfg)
	maxTokens := provider.ResolveMaxTokens(req, p.cfg)
	if temp != nil || maxTokens > 0 {
		apiReq.Options = &ollamaapi.Options{
			Temperature: temp,
			NumPredict:  maxTokens,
		}
	}

	p.logger.Info("sending chat request",
		slog.String("provider", Kind),
		slog.String("model", model),
		slog.Bool("stream", req.Stream))

	body, err := p.client.Chat(ctx, apiReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.ErrCancelled("request cancelled before response")
		}
		return nil, err
	}
	defer body.Close()

	var decoder wire.Decoder
	if req.Stream {
		decoder = wire.NewNDJSONDecoder(p.logger)
	} else {
		decoder = wire.NewBodyDecoder()
	}

	pipe := &stream.Pipeline{
		Decoder: decoder,
		Extract: ExtractChunk,
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
	out.Context = res.Context
	return out, nil
}

func (p *Provider) ListModels(ctx context.Context) ([]domain.Model, error) {
	list, err := p.client.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	models := make([]domain.Model, len(list.Models))
	for i, m := range list.Models {
		models[i] = domain.Model{ID: m.Name}
	}
	return provider.FilterModels(models, p.cfg.VisibleModels), nil
}

// ExtractChunk pulls the text delta out of one NDJSON line. The same
// shape covers the non-streaming body, which is a single such line. The
// terminal line may carry the opaque continuation context.
func ExtractChunk(payload []byte) (stream.Delta, error) {
	var chunk ollamaapi.ChatChunk
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return stream.Delta{}, fmt.Errorf("unmarshal chunk: %w", err)
	}
	if chunk.Error != "" {
		return stream.Delta{}, fmt.Errorf("upstream error: %s", chunk.Error)
	}
	return stream.Delta{
		Text:    chunk.Message.Content,
		Done:    chunk.Done,
		Context: chunk.Context,
	}, nil
}

func toAPIMessages(msgs []domain.Message) []ollamaapi.Message {
	out := make([]ollamaapi.Message, len(msgs))
	for i, m := range msgs {
		out[i] = ollamaapi.Message{Role: string(m.Role), Content: m.Content}
	}
	return out
}
