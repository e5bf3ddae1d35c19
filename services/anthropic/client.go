package anthropic

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
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-haiku-4-5-20251001"
	apiVersion     = "2023-06-01"
	maxTokens      = 2048
)

// Upstream failure classes. Messages are written to be shown to the end user
// verbatim, so callers should not re-map them.
var (
	ErrAuth          = errors.New("Invalid API key. Please check your key in the settings.")
	ErrRateLimited   = errors.New("Rate limited. Please wait a moment and try again.")
	ErrNotConfigured = errors.New("No API key configured. Add your Anthropic API key in the settings first.")
)

// APIError is any other non-success response, carrying the status code and raw
// body for diagnostics.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

// Client talks to the Anthropic Messages API. One outbound call per Complete
// invocation, no retries: failures propagate immediately to the caller.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	httpc   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests and by deployments that
// front the API with a proxy.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithModel overrides the model identifier.
func WithModel(m string) Option {
	return func(c *Client) {
		if strings.TrimSpace(m) != "" {
			c.model = m
		}
	}
}

// NewClient creates a messages client. A nil httpc gets a 30 second timeout,
// which bounds every call made through this client.
func NewClient(apiKey string, httpc *http.Client, opts ...Option) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	c := &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: defaultBaseURL,
		model:   defaultModel,
		httpc:   httpc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsConfigured reports whether a credential is present.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Complete sends a single user-role prompt and returns the text of the first
// content element of the reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal messages request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create messages request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("messages request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return "", ErrAuth
		case http.StatusTooManyRequests:
			return "", ErrRateLimited
		default:
			return "", &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		}
	}

	var mr messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return "", fmt.Errorf("decode messages response: %w", err)
	}
	if len(mr.Content) == 0 {
		return "", errors.New("messages response has no content")
	}

	return mr.Content[0].Text, nil
}
