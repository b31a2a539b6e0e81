// Package ollama provides wire types and the raw HTTP client for the
// Ollama chat API, which streams newline-delimited JSON.
package ollama

import (
	"encoding/json"
)

// ChatRequest is the POST body for /api/chat.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`

	// Context is the opaque continuation state returned by a previous
	// call; resending it lets the server reuse its conversation state.
	Context json.RawMessage `json:"context,omitempty"`

	Options *Options `json:"options,omitempty"`
}

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options carries sampling parameters.
type Options struct {
	Temperature *float32 `json:"temperature,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
}

// ChatChunk is one NDJSON line of the response. The terminal line sets
// Done and may carry the continuation context.
type ChatChunk struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`

	Context json.RawMessage `json:"context,omitempty"`

	Error string `json:"error,omitempty"`
}

// TagInfo is one entry in the local model listing.
type TagInfo struct {
	Name       string `json:"name"`
	ModifiedAt string `json:"modified_at"`
}

// TagList is the /api/tags response.
type TagList struct {
	Models []TagInfo `json:"models"`
}

// ParseErrorMessage extracts a human-readable message from an error
// body, returning false when the body does not match the error shape.
func ParseErrorMessage(data []byte) (string, bool) {
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &resp); err != nil || resp.Error == "" {
		return "", false
	}
	return resp.Error, true
}
