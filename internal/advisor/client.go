package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://gigachat.devices.sberbank.ru/api/v1"
	DefaultModel   = "GigaChat"
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrUnauthorized indicates the API key was rejected.
	ErrUnauthorized = errors.New("advisor: unauthorized (api key expired or invalid)")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("advisor: rate limited")
	// ErrEmptyResponse indicates the model returned no usable content.
	ErrEmptyResponse = errors.New("advisor: empty response")
)

// placeholders are values shipped in sample configs that must never be
// sent to the live service.
var placeholders = []string{
	"changeme", "change-me", "xxx", "todo", "none", "demo",
	"your_api_key", "your_api_key_here", "your-api-key", "<api-key>",
}

// IsPlaceholderKey reports whether key is empty or an obvious placeholder.
func IsPlaceholderKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" || strings.HasPrefix(k, "your_") || strings.HasPrefix(k, "<") {
		return true
	}
	for _, p := range placeholders {
		if k == p {
			return true
		}
	}
	return false
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
	http    *http.Client
}

// ClientOptions configures NewClient. Zero values pick the defaults.
type ClientOptions struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewClient creates a client for the given API key.
// Returns nil if the key is empty or a placeholder.
func NewClient(apiKey string, opts ClientOptions) *Client {
	apiKey = strings.TrimSpace(apiKey)
	if IsPlaceholderKey(apiKey) {
		return nil
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		model:   opts.Model,
		timeout: opts.Timeout,
		http:    opts.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.timeout <= 0 {
		c.timeout = requestTimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends one system+user exchange and returns the reply text.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("advisor: encoding request: %w", err)
	}

	body, err := c.post(ctx, "/chat/completions", payload)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("advisor: parsing response: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// post performs an authenticated POST request and returns the response body.
func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("advisor: creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/unitecon/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("advisor: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("advisor: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("advisor: reading response: %w", err)
	}
	return body, nil
}
