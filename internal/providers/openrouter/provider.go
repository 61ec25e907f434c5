package openrouter

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"aitotype/internal/providers/chat"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	transcribePrompt = "Transcribe this audio precisely. Keep the original meaning and language, do not translate. " +
		"Output only the transcript without any explanation."
)

// ErrRegionBlocked is returned when the upstream routed the model to a provider
// that rejects the caller's location.
var ErrRegionBlocked = errors.New("the model was routed to Google AI Studio, which is not available in your region; " +
	"pick another provider for this model in the OpenRouter dashboard or use a supported network")

// Config controls the OpenRouter transcriber.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Provider transcribes WAV files through OpenRouter chat completions with inline audio.
type Provider struct {
	model  string
	client *chat.Client
}

func NewProvider(cfg Config) *Provider {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Provider{
		model:  cfg.Model,
		client: NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
	}
}

// NewClient returns a chat client carrying OpenRouter's attribution headers.
func NewClient(baseURL string, apiKey string, timeout time.Duration) *chat.Client {
	return chat.NewClient(chat.Config{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Timeout: timeout,
		Headers: map[string]string{
			"HTTP-Referer": "https://github.com/aitotype",
			"X-Title":      "AItoType",
		},
	})
}

func (p *Provider) Name() string { return "openrouter" }

func (p *Provider) Model() string { return p.model }

func (p *Provider) Transcribe(ctx context.Context, wavPath string) (string, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}

	text, err := p.client.Complete(ctx, transcriptionRequest(p.model, base64.StdEncoding.EncodeToString(data)))
	if err != nil {
		var apiErr *chat.APIError
		if errors.As(err, &apiErr) && locationRejected(apiErr.Body) {
			return "", ErrRegionBlocked
		}
		return "", err
	}
	return text, nil
}

func transcriptionRequest(model string, audio string) chat.Request {
	return chat.Request{
		Model: model,
		// Google AI Studio rejects some regions outright; let OpenRouter route elsewhere.
		Provider: &chat.Routing{AllowFallbacks: true, Ignore: []string{"Google AI Studio"}},
		Messages: []chat.Message{{
			Role: "user",
			Content: []chat.Part{
				{Type: "text", Text: transcribePrompt},
				{Type: "input_audio", InputAudio: &chat.InputAudio{Data: audio, Format: "wav"}},
			},
		}},
	}
}

func locationRejected(body string) bool {
	return strings.Contains(strings.ToLower(body), "location is not supported")
}
