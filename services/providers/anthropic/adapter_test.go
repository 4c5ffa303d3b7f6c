package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juyterman1000/smartllm-router/models"
	"github.com/juyterman1000/smartllm-router/services/providers"
)

func TestInvoke(t *testing.T) {
	var gotVersion, gotKey string
	var gotBody messagesRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("anthropic-version")
		gotKey = r.Header.Get("x-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": "Hello there"}},
			"usage":   map[string]int{"input_tokens": 8, "output_tokens": 4},
		})
	}))
	defer srv.Close()

	a := New(providers.Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		RetryDelay: time.Millisecond,
	})

	inv, err := a.Invoke(context.Background(), "claude-3-haiku",
		[]models.Message{
			{Role: "system", Content: "be terse"},
			{Role: "user", Content: "hi"},
		},
		providers.InvokeOptions{},
	)
	require.NoError(t, err)

	assert.Equal(t, "Hello there", inv.Content)
	assert.Equal(t, 8, inv.InputTokens)
	assert.Equal(t, 4, inv.OutputTokens)

	assert.Equal(t, "2023-06-01", gotVersion)
	assert.Equal(t, "test-key", gotKey)

	// System messages move to the top-level field, not the message list.
	assert.Equal(t, "be terse", gotBody.System)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "user", gotBody.Messages[0].Role)
	assert.Equal(t, defaultMaxTokens, gotBody.MaxTokens)
}

func TestInvokeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"type": "invalid_request_error", "message": "model not found"},
		})
	}))
	defer srv.Close()

	a := New(providers.Config{APIKey: "k", BaseURL: srv.URL, RetryDelay: time.Millisecond})
	_, err := a.Invoke(context.Background(), "bad-model", []models.Message{{Role: "user", Content: "hi"}}, providers.InvokeOptions{})
	require.Error(t, err)

	assert.Contains(t, err.Error(), "model not found")
	assert.False(t, providers.IsRetryable(err))
}
