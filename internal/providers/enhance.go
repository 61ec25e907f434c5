package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aitotype/internal/domain"
	"aitotype/internal/providers/chat"
)

const PromptPlaceholder = "{{text}}"

// Enhancer rewrites a raw transcript with a chat model.
type Enhancer struct {
	opts Options
}

func NewEnhancer(opts Options) *Enhancer {
	return &Enhancer{opts: opts}
}

// Enhance returns the model's rewrite of text. The caller falls back to text on error.
func (e *Enhancer) Enhance(ctx context.Context, cfg domain.EnhancementConfig, text string) (string, error) {
	if ResolveAPIKey(cfg.Provider, cfg.APIKey) == "" {
		return "", fmt.Errorf("enhancement API key is missing (or set %s)", CredentialEnv(cfg.Provider))
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return "", errors.New("enhancement model is not configured")
	}

	client := NewChatClient(cfg.Provider, "", cfg.APIKey, e.opts)
	out, err := client.Complete(ctx, chat.Request{
		Model:    cfg.Model,
		Messages: []chat.Message{{Role: "user", Content: BuildPrompt(cfg.Prompt, text)}},
	})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("enhancement returned empty text")
	}
	return out, nil
}

// BuildPrompt substitutes text into template, appending it when the placeholder is absent.
func BuildPrompt(template string, text string) string {
	template = strings.TrimSpace(template)
	if template == "" {
		return text
	}
	if strings.Contains(template, PromptPlaceholder) {
		return strings.ReplaceAll(template, PromptPlaceholder, text)
	}
	return template + "\n\n" + text
}
