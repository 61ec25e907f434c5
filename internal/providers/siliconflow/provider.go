package siliconflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"aitotype/internal/providers/chat"
)

const DefaultBaseURL = "https://api.siliconflow.cn/v1"

// Config controls the SiliconFlow transcriber.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Provider transcribes WAV files with SiliconFlow's /audio/transcriptions endpoint.
type Provider struct {
	model  string
	client *chat.Client
}

type transcriptionResponse struct {
	Text string `json:"text"`
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

func NewClient(baseURL string, apiKey string, timeout time.Duration) *chat.Client {
	return chat.NewClient(chat.Config{BaseURL: baseURL, APIKey: apiKey, Timeout: timeout})
}

func (p *Provider) Name() string { return "siliconflow" }

func (p *Provider) Model() string { return p.model }

func (p *Provider) Transcribe(ctx context.Context, wavPath string) (string, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("copy audio data: %w", err)
	}
	if err := w.WriteField("model", p.model); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	req, err := p.client.NewRequest(ctx, http.MethodPost, "/audio/transcriptions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	body, err := p.client.Do(req)
	if err != nil {
		return "", err
	}

	var result transcriptionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return result.Text, nil
}
