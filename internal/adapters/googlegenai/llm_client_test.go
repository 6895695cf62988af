package googlegenai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lifeflow/automailer/internal/config"
	"github.com/lifeflow/automailer/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GenAIClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := zaptest.NewLogger(t)
	client, err := NewGenAIClient(context.Background(), Options{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		ModelName:    "gemini-2.5-flash",
		MaxTokens:    128,
		Temperature:  0.5,
		TopP:         0.9,
		MaxInputSize: 8192,
	}, logger, utils.NewTextProcessor(logger))
	require.NoError(t, err)
	return client
}

func TestGenerate(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.5-flash:generateContent"), r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "Hi Jane,"}, {"text": " welcome aboard."}]},
				"finishReason": "STOP"
			}]
		}`))
	})

	text, err := client.Generate(context.Background(), "write a welcome note")
	require.NoError(t, err)
	assert.Equal(t, "Hi Jane, welcome aboard.", text)
	assert.Equal(t, "genai/gemini-2.5-flash", client.Name())

	contents, ok := body["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 1)
	assert.Contains(t, mustJSON(t, contents[0]), "write a welcome note")
	assert.Contains(t, mustJSON(t, body["generationConfig"]), `"maxOutputTokens":128`)
}

func TestGenerate_NoCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	})

	_, err := client.Generate(context.Background(), "hi")
	assert.ErrorContains(t, err, "empty response")
}

func TestGenerate_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"code": 500, "message": "backend down", "status": "INTERNAL"}}`))
	})

	_, err := client.Generate(context.Background(), "hi")
	assert.ErrorContains(t, err, "failed to generate content with GenAI")
}

func TestNewGenAIClient_Validation(t *testing.T) {
	logger := zaptest.NewLogger(t)
	tp := utils.NewTextProcessor(logger)

	_, err := NewGenAIClient(context.Background(), Options{Backend: "gemini"}, logger, tp)
	assert.ErrorContains(t, err, "API key is required")

	_, err = NewGenAIClient(context.Background(), Options{Backend: "vertex"}, logger, tp)
	assert.ErrorContains(t, err, "project is required")

	_, err = NewGenAIClient(context.Background(), Options{Backend: "azure", APIKey: "k"}, logger, tp)
	assert.ErrorContains(t, err, "unsupported genai backend")
}

func TestFactory_CreateClient(t *testing.T) {
	logger := zaptest.NewLogger(t)
	v := config.NewEmptyViper()
	v.Set("genai.api_key", "test-key")
	v.Set("genai.base_url", "http://127.0.0.1:1")

	client, err := NewFactory(config.NewFromViper(v), logger, utils.NewTextProcessor(logger)).CreateClient()
	require.NoError(t, err)
	assert.Equal(t, "genai/gemini-2.5-flash", client.Name())
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
