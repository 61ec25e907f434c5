package providers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"aitotype/internal/domain"
	"aitotype/internal/providers/chat"
	"aitotype/internal/providers/openrouter"
	"aitotype/internal/providers/siliconflow"
)

// Transcriber turns a WAV file into text.
type Transcriber interface {
	Name() string
	Model() string
	Transcribe(ctx context.Context, wavPath string) (string, error)
}

// Options carries the endpoints and timeout shared by every provider.
type Options struct {
	OpenRouterBaseURL  string
	SiliconFlowBaseURL string
	Timeout            time.Duration
}

// BaseURL returns the configured endpoint of provider.
func (o Options) BaseURL(provider domain.Provider) string {
	if provider == domain.ProviderSiliconFlow {
		return firstNonEmpty(o.SiliconFlowBaseURL, siliconflow.DefaultBaseURL)
	}
	return firstNonEmpty(o.OpenRouterBaseURL, openrouter.DefaultBaseURL)
}

// CredentialEnv names the environment variable that supplies provider's key.
func CredentialEnv(provider domain.Provider) string {
	if provider == domain.ProviderSiliconFlow {
		return "SILICONFLOW_API_KEY"
	}
	return "OPENROUTER_API_KEY"
}

// ResolveAPIKey returns key, or the provider's environment credential when key is blank.
func ResolveAPIKey(provider domain.Provider, key string) string {
	if key = strings.TrimSpace(key); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv(CredentialEnv(provider)))
}

// NewTranscriber builds the transcriber selected by cfg.
func NewTranscriber(cfg domain.SttConfig, opts Options) Transcriber {
	baseURL := firstNonEmpty(cfg.BaseURL, opts.BaseURL(cfg.Provider))
	apiKey := ResolveAPIKey(cfg.Provider, cfg.APIKey)
	if cfg.Provider == domain.ProviderSiliconFlow {
		return siliconflow.NewProvider(siliconflow.Config{APIKey: apiKey, BaseURL: baseURL, Model: cfg.Model, Timeout: opts.Timeout})
	}
	return openrouter.NewProvider(openrouter.Config{APIKey: apiKey, BaseURL: baseURL, Model: cfg.Model, Timeout: opts.Timeout})
}

// NewChatClient returns an OpenAI-compatible client for provider.
func NewChatClient(provider domain.Provider, baseURL string, apiKey string, opts Options) *chat.Client {
	baseURL = firstNonEmpty(baseURL, opts.BaseURL(provider))
	apiKey = ResolveAPIKey(provider, apiKey)
	if provider == domain.ProviderSiliconFlow {
		return siliconflow.NewClient(baseURL, apiKey, opts.Timeout)
	}
	return openrouter.NewClient(baseURL, apiKey, opts.Timeout)
}

// TestConnection checks that cfg has a usable credential and that the endpoint answers.
func TestConnection(ctx context.Context, cfg domain.SttConfig, opts Options) domain.ConnectionResult {
	result := domain.ConnectionResult{Provider: cfg.Provider, Model: cfg.Model}
	if ResolveAPIKey(cfg.Provider, cfg.APIKey) == "" {
		result.Message = fmt.Sprintf("API key is required (or set %s)", CredentialEnv(cfg.Provider))
		return result
	}

	latency, err := NewChatClient(cfg.Provider, cfg.BaseURL, cfg.APIKey, opts).ListModels(ctx)
	if err != nil {
		result.Message = fmt.Sprintf("Connection failed: %v", err)
		return result
	}

	result.Success = true
	result.LatencyMS = latency.Milliseconds()
	result.Message = fmt.Sprintf("Connection OK - Provider: %s, Model: %s", cfg.Provider, cfg.Model)
	return result
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
