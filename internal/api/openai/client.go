package openai

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

const defaultBaseURL = "https://api.openai.com/v1"

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

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.extraHeaders[key] = value
	}
}

// Client is the raw HTTP client for OpenAI-style APIs.
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	extraHeaders map[string]string
}

// NewClient creates a client for the OpenAI-style API.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		httpClient:   http.DefaultClient,
		extraHeaders: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateChatCompletion opens a chat completion call and returns the
// response body. Streaming and non-streaming calls differ only in the
// request's stream flag; the caller decodes the body either way.
func (c *Client) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (io.ReadCloser, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

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

// ListModels retrieves the available models.
func (c *Client) ListModels(ctx context.Context) (*ModelList, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

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

	var result ModelList
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", "parley/1.0")
	for k, v := range c.extraHeaders {
		req.Header.Set(k, v)
	}
}
