// internal/common/llm/client_test.go
package llm

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
)

func completionResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"content": content}},
		},
	}
}

func TestClient_Available(t *testing.T) {
	assert.True(t, NewClient("http://localhost", "key", "model", time.Second, 0).Available())
	assert.False(t, NewClient("", "key", "model", time.Second, 0).Available())
	assert.False(t, NewClient("http://localhost", "", "model", time.Second, 0).Available())

	var nilClient *Client
	assert.False(t, nilClient.Available())
}

func TestClient_Complete(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		var gotAuth string
		var gotBody map[string]interface{}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			require.Equal(t, "/v1/chat/completions", r.URL.Path)
			json.NewEncoder(w).Encode(completionResponse(`{"intentType": "list"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", "test-model", 2*time.Second, 0)
		content, err := client.Complete(context.Background(), "classify", "show candidates")

		require.NoError(t, err)
		assert.Equal(t, `{"intentType": "list"}`, content)
		assert.Equal(t, "Bearer test-key", gotAuth)
		assert.Equal(t, "test-model", gotBody["model"])

		messages, ok := gotBody["messages"].([]interface{})
		require.True(t, ok)
		require.Len(t, messages, 2)
	})

	t.Run("retries server errors then succeeds", func(t *testing.T) {
		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			json.NewEncoder(w).Encode(completionResponse("ok"))
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", "test-model", 5*time.Second, 3)
		content, err := client.Complete(context.Background(), "classify", "anything")

		require.NoError(t, err)
		assert.Equal(t, "ok", content)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("retries exhausted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", "test-model", 5*time.Second, 1)
		_, err := client.Complete(context.Background(), "classify", "anything")

		assert.ErrorIs(t, err, ErrModelUnavailable)
	})

	t.Run("timeout surfaces as unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
			json.NewEncoder(w).Encode(completionResponse("too late"))
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", "test-model", 50*time.Millisecond, 0)
		_, err := client.Complete(context.Background(), "classify", "anything")

		assert.ErrorIs(t, err, ErrModelUnavailable)
	})

	t.Run("empty choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", "test-model", time.Second, 0)
		_, err := client.Complete(context.Background(), "classify", "anything")

		assert.ErrorIs(t, err, ErrModelResponse)
	})

	t.Run("undecodable body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", "test-model", time.Second, 0)
		_, err := client.Complete(context.Background(), "classify", "anything")

		assert.ErrorIs(t, err, ErrModelResponse)
	})

	t.Run("no credentials", func(t *testing.T) {
		client := NewClient("", "", "test-model", time.Second, 0)
		_, err := client.Complete(context.Background(), "classify", "anything")

		assert.ErrorIs(t, err, ErrModelUnavailable)
	})
}
