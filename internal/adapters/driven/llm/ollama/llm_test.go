package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

func TestNewLLMService_Defaults(t *testing.T) {
	s := NewLLMService(LLMConfig{})
	assert.Equal(t, "mistral", s.ModelName())
	assert.Equal(t, DefaultBaseURL, s.baseURL)
	assert.Equal(t, DefaultLLMTimeout, s.client.Timeout)
}

func TestGenerate_SendsChatRequest(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"  Port 8080.\n"},"done":true}`))
	}))
	defer srv.Close()

	s := NewLLMService(LLMConfig{BaseURL: srv.URL, Model: "llama3"})
	answer, err := s.Generate(context.Background(), "What port?", driven.GenerateOptions{
		System:      "Be brief.",
		Temperature: 0,
		MaxTokens:   64,
	})
	require.NoError(t, err)
	assert.Equal(t, "  Port 8080.\n", answer, "reply is returned verbatim")

	assert.Equal(t, "llama3", got["model"])
	assert.Equal(t, false, got["stream"])

	messages := got["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, map[string]any{"role": "system", "content": "Be brief."}, messages[0])
	assert.Equal(t, map[string]any{"role": "user", "content": "What port?"}, messages[1])

	opts := got["options"].(map[string]any)
	assert.Contains(t, opts, "temperature", "zero temperature must be sent explicitly")
	assert.Equal(t, float64(0), opts["temperature"])
	assert.Equal(t, float64(64), opts["num_predict"])
}

func TestGenerate_NoSystemMessage(t *testing.T) {
	var req chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_, _ = w.Write([]byte(`{"message":{"content":"ok"}}`))
	}))
	defer srv.Close()

	_, err := NewLLMService(LLMConfig{BaseURL: srv.URL}).Generate(context.Background(), "hi", driven.GenerateOptions{})
	require.NoError(t, err)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model 'mistral' not found", http.StatusNotFound)
		}},
		{"malformed", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}},
		{"error field", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error":"out of memory"}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewLLMService(LLMConfig{BaseURL: srv.URL}).Generate(context.Background(), "q", driven.GenerateOptions{})
			assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
		})
	}
}

func TestGenerate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewLLMService(LLMConfig{BaseURL: url}).Generate(context.Background(), "q", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	s := NewLLMService(LLMConfig{BaseURL: srv.URL})
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())

	bad := NewLLMService(LLMConfig{BaseURL: srv.URL + "/prefix"})
	assert.ErrorIs(t, bad.Ping(context.Background()), domain.ErrGenerationUnavailable)
}
