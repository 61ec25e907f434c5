package chat

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

const DefaultTimeout = 120 * time.Second

// ErrEmptyResponse is returned when a completion carries no content.
var ErrEmptyResponse = errors.New("no content in response")

// APIError is a non-2xx response from an OpenAI-compatible endpoint.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Body)
}

// Config controls an OpenAI-compatible HTTP client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	Headers    map[string]string
	HTTPClient *http.Client
}

// Client talks to an OpenAI-compatible API (chat completions, audio, models).
type Client struct {
	baseURL string
	apiKey  string
	headers map[string]string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		headers: cfg.Headers,
		http:    httpClient,
	}
}

// Message is one chat message. Content is a string or a slice of Part.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// Part is one element of a multimodal message.
type Part struct {
	Type       string      `json:"type"`
	Text       string      `json:"text,omitempty"`
	InputAudio *InputAudio `json:"input_audio,omitempty"`
}

// InputAudio carries base64 audio inline.
type InputAudio struct {
	Data   string `json:"data"`
	Format string `json:"format"`
}

// Routing is OpenRouter's provider preference block.
type Routing struct {
	AllowFallbacks bool     `json:"allow_fallbacks"`
	Ignore         []string `json:"ignore,omitempty"`
}

// Request is a chat completion request.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Provider    *Routing  `json:"provider,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete runs a chat completion and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := c.NewRequest(ctx, http.MethodPost, "/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	body, err := c.Do(httpReq)
	if err != nil {
		return "", err
	}

	var resp completionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("API error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return "", ErrEmptyResponse
	}
	return *resp.Choices[0].Message.Content, nil
}

// ListModels calls GET /models and reports how long the round trip took.
func (c *Client) ListModels(ctx context.Context) (time.Duration, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	if _, err := c.Do(req); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// NewRequest builds an authenticated request for path under the base URL.
func (c *Client) NewRequest(ctx context.Context, method string, path string, body io.Reader) (*http.Request, error) {
	if c.baseURL == "" {
		return nil, errors.New("base url is not configured")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	return req, nil
}

// Do sends req and returns the body of a 2xx response.
func (c *Client) Do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
