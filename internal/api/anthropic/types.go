// Package anthropic provides wire types and the raw HTTP client for the
// Anthropic Messages API.
package anthropic

import (
	"encoding/json"
)

// MessagesRequest is the POST body for /v1/messages.
type MessagesRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float32  `json:"temperature,omitempty"`
	System      string    `json:"system,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessagesResponse is the whole-body response shape.
type MessagesResponse struct {
	ID         string         `json:"id"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// ContentBlock is one block of response content.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// StreamEvent is the shape shared by all SSE payloads; Type selects
// which fields are meaningful.
type StreamEvent struct {
	Type  string       `json:"type"`
	Delta *StreamDelta `json:"delta,omitempty"`
}

// StreamDelta carries the incremental text of a content_block_delta.
type StreamDelta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ModelInfo is one entry in the model listing.
type ModelInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
	Type        string `json:"type"`
}

// ModelList is the /v1/models response.
type ModelList struct {
	Data []ModelInfo `json:"data"`
}

// ErrorResponse is the error body shape.
type ErrorResponse struct {
	Type  string    `json:"type"`
	Error *APIError `json:"error"`
}

// APIError carries the upstream error details.
type APIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ParseErrorMessage extracts a human-readable message from an error
// body, returning false when the body does not match the error shape.
func ParseErrorMessage(data []byte) (string, bool) {
	var resp ErrorResponse
	if err := json.Unmarshal(data, &resp); err != nil || resp.Error == nil {
		return "", false
	}
	if resp.Error.Type != "" {
		return resp.Error.Type + ": " + resp.Error.Message, true
	}
	return resp.Error.Message, true
}
