// Package gemini provides wire types and the raw HTTP client for the
// Google Gemini generateContent API. Gemini returns a single JSON body
// with no partial output.
package gemini

import (
	"encoding/json"
)

// GenerateContentRequest is the POST body for :generateContent.
type GenerateContentRequest struct {
	Contents          []Content         `json:"contents"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
}

// Content is one conversation turn; Gemini's role vocabulary is
// user/model.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is one piece of turn content.
type Part struct {
	Text string `json:"text"`
}

// GenerationConfig carries sampling parameters.
type GenerationConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float32 `json:"temperature,omitempty"`
}

// GenerateContentResponse is the whole-body response shape.
type GenerateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one generated answer.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

// ModelInfo is one entry in the model listing; Name is prefixed with
// "models/".
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// ModelList is the /models response.
type ModelList struct {
	Models []ModelInfo `json:"models"`
}

// ErrorResponse is the error body shape.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// APIError carries the upstream error details.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ParseErrorMessage extracts a human-readable message from an error
// body, returning false when the body does not match the error shape.
func ParseErrorMessage(data []byte) (string, bool) {
	var resp ErrorResponse
	if err := json.Unmarshal(data, &resp); err != nil || resp.Error == nil {
		return "", false
	}
	if resp.Error.Status != "" {
		return resp.Error.Status + ": " + resp.Error.Message, true
	}
	return resp.Error.Message, true
}
