package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizbank/quizbank-cli/internal/resilience"
)

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		Multiplier:     1,
	}
}

func candidateReply(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]string{{"text": text}},
				},
			},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestCompleteSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 1)
		assert.Equal(t, "parse these questions", req.Contents[0].Parts[0].Text)
		assert.InDelta(t, 0.1, req.GenerationConfig.Temperature, 0.001)
		assert.Equal(t, 2048, req.GenerationConfig.MaxOutputTokens)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(candidateReply("[{\"question_number\": 1}]")))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithRetry(fastRetry()))

	text, err := client.Complete(context.Background(), "parse these questions")
	require.NoError(t, err)
	assert.Equal(t, "[{\"question_number\": 1}]", text)
}

func TestCompleteCustomModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.5-pro:generateContent", r.URL.Path)
		w.Write([]byte(candidateReply("ok")))
	}))
	defer server.Close()

	client := NewClient("test-key",
		WithBaseURL(server.URL),
		WithModel("gemini-2.5-pro"),
		WithRetry(fastRetry()))

	text, err := client.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestCompleteRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(candidateReply("recovered")))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithRetry(fastRetry()))

	text, err := client.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCompletePermanentStatusNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "invalid argument"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithRetry(fastRetry()))

	_, err := client.Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestCompleteMalformedEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no candidates", `{"candidates": []}`, "no candidates"},
		{"no parts", `{"candidates": [{"content": {"parts": []}}]}`, "no parts"},
		{"not json", `oops`, "unmarshal response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient("test-key", WithBaseURL(server.URL), WithRetry(fastRetry()))

			_, err := client.Complete(context.Background(), "hello")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompleteContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(candidateReply("ok")))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithRetry(fastRetry()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, "hello")
	require.Error(t, err)
}
