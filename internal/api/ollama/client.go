package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/parley-llm/parley/internal/domain"
)

const defaultBaseURL = "http://localhost:11434"

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client is the raw HTTP client for a local or remote Ollama server.
// Ollama requires no credential.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an Ollama API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat opens a chat call and returns the NDJSON response body.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (io.ReadCloser, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", "parley/1.0")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.ErrNetwork("request failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		if msg, ok := ParseErrorMessage(respBody); ok {
			return nil, domain.ErrNetwork(msg, fmt.Errorf("status %d", resp.StatusCode))
		}
		return nil, domain.ErrNetwork(fmt.Sprintf("API error (status %d): %s", resp.StatusCode, respBody), nil)
	}
	return resp.Body, nil
}

// ListTags retrieves the locally available models.
func (c *Client) ListTags(ctx context.Context) (*TagList, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "parley/1.0")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.ErrNetwork("request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ErrNetwork("failed to read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		if msg, ok := ParseErrorMessage(respBody); ok {
			return nil, domain.ErrNetwork(msg, fmt.Errorf("status %d", resp.StatusCode))
		}
		return nil, domain.ErrNetwork(fmt.Sprintf("API error (status %d): %s", resp.StatusCode, respBody), nil)
	}

	var result TagList
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}
