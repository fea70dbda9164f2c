package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderDefaults(t *testing.T) {
	p := NewProvider("test-key", "", "", 0)
	assert.Equal(t, APIBaseURL, p.baseURL)
	assert.Equal(t, DefaultModel, p.model)
	assert.Equal(t, 3, p.retryConfig.MaxRetries)
}

func TestNewProviderOverrides(t *testing.T) {
	p := NewProvider("test-key", "https://custom.example/v1", "gpt-4o-mini", 5*time.Second)
	assert.Equal(t, "https://custom.example/v1", p.baseURL)
	assert.Equal(t, "gpt-4o-mini", p.Model())
}

func completionResponse(content string) Response {
	return Response{
		ID:      "chatcmpl-test",
		Object:  "chat.completion",
		Model:   DefaultModel,
		Choices: []Choice{{Message: Message{Role: "assistant", Content: content}, FinishReason: "stop"}},
	}
}

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionResponse(`{"operation_type": "bell_state"}`))
	}))
	defer server.Close()

	p := NewProvider("test-key", server.URL, "", 5*time.Second)
	got, err := p.Complete(context.Background(), "You classify queries.", "make a bell state")
	require.NoError(t, err)
	assert.Equal(t, `{"operation_type": "bell_state"}`, got)
}

func TestCompleteRetriesOnServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(completionResponse("recovered"))
	}))
	defer server.Close()

	p := NewProviderWithRetry("test-key", server.URL, "", 5*time.Second, RetryConfig{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	})

	got, err := p.Complete(context.Background(), "", "hello")
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 3, attempts)
}

func TestCompleteFailsAfterMaxRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewProviderWithRetry("test-key", server.URL, "", 5*time.Second, RetryConfig{
		MaxRetries:   1,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   2.0,
	})

	_, err := p.Complete(context.Background(), "", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
}

func TestCompleteNonRetryableError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key"}}`))
	}))
	defer server.Close()

	p := NewProvider("bad-key", server.URL, "", 5*time.Second)
	_, err := p.Complete(context.Background(), "", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Response{ID: "chatcmpl-empty"})
	}))
	defer server.Close()

	p := NewProvider("test-key", server.URL, "", 5*time.Second)
	_, err := p.Complete(context.Background(), "", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(completionResponse("ok"))
	}))
	defer server.Close()

	p := NewProvider("test-key", server.URL, "", 5*time.Second)
	assert.NoError(t, p.HealthCheck(context.Background()))
}
