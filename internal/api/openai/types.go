// Package openai provides wire types and the raw HTTP client for
// OpenAI-style chat completion APIs. OpenRouter speaks the same
// protocol and reuses this package with a different base URL.
package openai

import (
	"encoding/json"
)

// ChatCompletionRequest is the POST body for /chat/completions.
type ChatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []ChatCompletionMessage `json:"messages"`
	Temperature *float32                `json:"temperature,omitempty"`
	MaxTokens   int                     `json:"max_tokens,omitempty"`
	Stream      bool                    `json:"stream,omitempty"`
}

// ChatCompletionMessage is one message in the request or response.
type ChatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
}

// ChatCompletionResponse is the whole-body response shape.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

// Choice is one completion choice.
type Choice struct {
	Index        int                   `json:"index"`
	Message      ChatCompletionMessage `json:"message"`
	FinishReason string                `json:"finish_reason"`
}

// ChatCompletionChunk is one streaming SSE frame.
type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

// ChunkChoice is one choice inside a streaming chunk.
type ChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

// ChunkDelta is the incremental content of a streaming chunk.
type ChunkDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// Model is one entry in the model listing.
type Model struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelList is the /models response.
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// ErrorResponse is the error body shape.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// APIError carries the upstream error details.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// ParseErrorMessage extracts a human-readable message from an error
// body, returning false when the body does not match the error shape.
func ParseErrorMessage(data []byte) (string, bool) {
	var resp ErrorResponse
	if err := json.Unmarshal(data, &resp); err != nil || resp.Error == nil {
		return "", false
	}
	if resp.Error.Code != "" {
		return resp.Error.Code + ": " + resp.Error.Message, true
	}
	return resp.Error.Message, true
}
