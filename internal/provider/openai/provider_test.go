package openai

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/parley-llm/parley/internal/config"
	"github.com/parley-llm/parley/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func sseWrite(t *testing.T, w http.ResponseWriter, data string) {
	t.Helper()
	fmt.Fprintf(w, "data: %s\n\n", data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func TestSendMessageStreaming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		sseWrite(t, w, `{"choices":[{"delta":{"role":"assistant"}}]}`)
		sseWrite(t, w, `{"choices":[{"delta":{"content":"Hello"}}]}`)
		sseWrite(t, w, `{"choices":[{"delta":{"content":" world"}}]}`)
		sseWrite(t, w, `{"choices":[{"delta":{},"finish_reason":"stop"}]}`)
		sseWrite(t, w, "[DONE]")
	}))
	defer server.Close()

	p := New(config.ProviderConfig{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4"}, testLogger(), nil)

	var streamed strings.Builder
	result, err := p.SendMessage(context.Background(), &domain.ChatRequest{
		Prompt: "hi",
		Stream: true,
	}, func(ev domain.StreamEvent) {
		if ev.Kind == domain.KindAnswer {
			streamed.WriteString(ev.Text)
		}
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if result.Message.Content != "Hello world" {
		t.Errorf("content = %q", result.Message.Content)
	}
	if streamed.String() != "Hello world" {
		t.Errorf("streamed = %q", streamed.String())
	}
	if result.Truncated {
		t.Error("unexpected truncation")
	}
}

func TestSendMessageStreamingReasoning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		sseWrite(t, w, `{"choices":[{"delta":{"content":"<think>pla"}}]}`)
		sseWrite(t, w, `{"choices":[{"delta":{"content":"nning</think>answer"}}]}`)
		sseWrite(t, w, "[DONE]")
	}))
	defer server.Close()

	p := New(config.ProviderConfig{APIKey: "k", BaseURL: server.URL, Model: "m"}, testLogger(), nil)

	result, err := p.SendMessage(context.Background(), &domain.ChatRequest{Prompt: "hi", Stream: true}, nil)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if result.Message.Content != "answer" {
		t.Errorf("content = %q", result.Message.Content)
	}
	blocks := result.Message.ReasoningBlocks
	if len(blocks) != 1 || blocks[0] != "planning" {
		t.Errorf("reasoning = %v", blocks)
	}
}

func TestSendMessageNonStreaming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"whole answer"},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	p := New(config.ProviderConfig{APIKey: "k", BaseURL: server.URL, Model: "m"}, testLogger(), nil)

	result, err := p.SendMessage(context.Background(), &domain.ChatRequest{Prompt: "hi"}, nil)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if result.Message.Content != "whole answer" {
		t.Errorf("content = %q", result.Message.Content)
	}
}

func TestSendMessageCancelMidStream(t *testing.T) {
	firstToken := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		sseWrite(t, w, `{"choices":[{"delta":{"content":"partial"}}]}`)
		// Hold the stream open until the client gives up.
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	p := New(config.ProviderConfig{APIKey: "k", BaseURL: server.URL, Model: "m"}, testLogger(), nil)

	go func() {
		<-firstToken
		p.Cancel()
	}()

	var once bool
	result, err := p.SendMessage(context.Background(), &domain.ChatRequest{Prompt: "hi", Stream: true},
		func(ev domain.StreamEvent) {
			if !once {
				once = true
				close(firstToken)
			}
		})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if !result.Truncated {
		t.Error("expected truncated result")
	}
	if result.Message.Content != "partial" {
		t.Errorf("content = %q", result.Message.Content)
	}
}

func TestSendMessageCancelBeforeContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server starts its background read and can
		// observe the client disconnect; otherwise r.Context() is never
		// cancelled and Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	p := New(config.ProviderConfig{APIKey: "k", BaseURL: server.URL, Model: "m"}, testLogger(), nil)

	go func() {
		time.Sleep(50 * time.Millisecond)
		p.Cancel()
	}()

	_, err := p.SendMessage(context.Background(), &domain.ChatRequest{Prompt: "hi", Stream: true}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsErrorType(err, domain.ErrorTypeCancelled) {
		t.Errorf("error type = %v", err)
	}
}

func TestSendMessageUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error","code":"invalid_api_key"}}`)
	}))
	defer server.Close()

	p := New(config.ProviderConfig{APIKey: "bad", BaseURL: server.URL, Model: "m"}, testLogger(), nil)

	_, err := p.SendMessage(context.Background(), &domain.ChatRequest{Prompt: "hi"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsErrorType(err, domain.ErrorTypeNetwork) {
		t.Errorf("error type = %v", err)
	}
	if !strings.Contains(err.Error(), "bad key") {
		t.Errorf("error message lost: %v", err)
	}
}

func TestSendMessageNoModelConfigured(t *testing.T) {
	p := New(config.ProviderConfig{APIKey: "k"}, testLogger(), nil)

	_, err := p.SendMessage(context.Background(), &domain.ChatRequest{Prompt: "hi"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsErrorType(err, domain.ErrorTypeConfiguration) {
		t.Errorf("error type = %v", err)
	}
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"object":"list","data":[{"id":"gpt-4","owned_by":"openai"},{"id":"gpt-3.5-turbo","owned_by":"openai"}]}`)
	}))
	defer server.Close()

	p := New(config.ProviderConfig{APIKey: "k", BaseURL: server.URL}, testLogger(), nil)

	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 || models[0].ID != "gpt-4" {
		t.Errorf("models = %v", models)
	}
}

func TestListModelsVisibleFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":"a"},{"id":"b"},{"id":"c"}]}`)
	}))
	defer server.Close()

	p := New(config.ProviderConfig{APIKey: "k", BaseURL: server.URL, VisibleModels: []string{"b"}}, testLogger(), nil)

	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 1 || models[0].ID != "b" {
		t.Errorf("models = %v", models)
	}
}
