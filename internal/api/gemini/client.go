package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/parley-llm/parley/internal/domain"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

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

// Client is the raw HTTP client for the Gemini API. The API key travels
// as a query parameter rather than a header.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Gemini API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateContent opens a generateContent call and returns the response
// body: a single JSON document carrying the whole answer.
func (c *Client) GenerateContent(ctx context.Context, model string, req *GenerateContentRequest) (io.ReadCloser, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(model), url.QueryEscape(c.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
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

// ListModels retrieves the available models.
func (c *Client) ListModels(ctx context.Context) (*ModelList, error) {
	endpoint := fmt.Sprintf("%s/models?key=%s", c.baseURL, url.QueryEscape(c.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
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

	var result ModelList
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}
