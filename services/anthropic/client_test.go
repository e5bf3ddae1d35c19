package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("sk-ant-test", srv.Client(), WithBaseURL(srv.URL))
}

func TestCompleteSendsMessagesRequest(t *testing.T) {
	var gotPath, gotKey, gotVersion string
	var gotBody map[string]any

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"hello there"}]}`))
	})

	reply, err := c.Complete(context.Background(), "extract the events")
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)

	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "sk-ant-test", gotKey)
	assert.Equal(t, "2023-06-01", gotVersion)
	assert.Equal(t, "claude-haiku-4-5-20251001", gotBody["model"])
	assert.Equal(t, float64(2048), gotBody["max_tokens"])

	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	msg := msgs[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "extract the events", msg["content"])
}

func TestCompleteStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"401 is auth", http.StatusUnauthorized, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrAuth)
		}},
		{"429 is rate limited", http.StatusTooManyRequests, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrRateLimited)
		}},
		{"500 is generic with status and body", http.StatusInternalServerError, func(t *testing.T, err error) {
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
			assert.Equal(t, "upstream diagnostics", apiErr.Body)
			assert.Contains(t, apiErr.Error(), "API error (500)")
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tc.status)
				w.Write([]byte("upstream diagnostics"))
			})

			_, err := c.Complete(context.Background(), "prompt")
			require.Error(t, err)
			tc.check(t, err)
			assert.Equal(t, 1, calls, "failed calls must not be retried")
		})
	}
}

func TestCompleteEmptyContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	})
	_, err := c.Complete(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestCompleteWithoutCredential(t *testing.T) {
	c := NewClient("", nil)
	_, err := c.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
