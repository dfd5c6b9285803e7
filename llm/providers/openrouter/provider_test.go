package openrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agoraops/agora/llm"
)

func TestProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"a reply"}}]}`))
	}))
	defer srv.Close()

	p := New(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	out, err := p.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "a reply", out)
}

func TestProvider_Generate_MissingAPIKey(t *testing.T) {
	p := New(Config{}, nil)
	_, err := p.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, llm.ErrUnauthorized, err.(*llm.Error).Code)
}

func TestProvider_Generate_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer srv.Close()

	p := New(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := p.Generate(context.Background(), "hello")
	require.Error(t, err)

	llmErr := err.(*llm.Error)
	assert.Equal(t, llm.ErrRateLimited, llmErr.Code)
	assert.True(t, llmErr.Retryable)
}

func TestProvider_Generate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := New(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := p.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, llm.ErrEmptyResponse, err.(*llm.Error).Code)
}
