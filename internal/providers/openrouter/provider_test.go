package openrouter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribeSendsInlineAudio(t *testing.T) {
	t.Parallel()

	wav := writeFile(t, []byte("RIFFfake"))

	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.Equal(t, "AItoType", r.Header.Get("X-Title"))
		assert.Equal(t, "https://github.com/aitotype", r.Header.Get("HTTP-Referer"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello world"}}]}`))
	}))
	defer server.Close()

	provider := NewProvider(Config{APIKey: "key", BaseURL: server.URL, Model: "google/gemini-3-flash-preview"})
	text, err := provider.Transcribe(context.Background(), wav)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)

	assert.Equal(t, "google/gemini-3-flash-preview", body["model"])
	routing := body["provider"].(map[string]any)
	assert.Equal(t, true, routing["allow_fallbacks"])
	assert.Equal(t, []any{"Google AI Studio"}, routing["ignore"])

	content := body["messages"].([]any)[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "text", content[0].(map[string]any)["type"])
	audio := content[1].(map[string]any)
	assert.Equal(t, "input_audio", audio["type"])
	inline := audio["input_audio"].(map[string]any)
	assert.Equal(t, "wav", inline["format"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("RIFFfake")), inline["data"])
}

func TestTranscribeMapsLocationRejection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"User location is not supported for the API use."}}`))
	}))
	defer server.Close()

	_, err := NewProvider(Config{BaseURL: server.URL, Model: "m"}).Transcribe(context.Background(), writeFile(t, []byte("x")))
	assert.ErrorIs(t, err, ErrRegionBlocked)
}

func TestTranscribeMissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewProvider(Config{Model: "m"}).Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read audio file")
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}
