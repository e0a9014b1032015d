package line

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
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

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient("secret-token", srv.Client(), log, WithBaseURL(srv.URL))
}

func TestClient_GetProfile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v2/bot/profile/U123", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"userId":"U123","displayName":"たろう"}`)) //nolint:errcheck // test
	})

	profile, err := client.GetProfile(context.Background(), "U123")
	require.NoError(t, err)
	assert.Equal(t, "たろう", profile.DisplayName)

	name, err := client.DisplayName(context.Background(), "U123")
	require.NoError(t, err)
	assert.Equal(t, "たろう", name)
}

func TestClient_GetProfile_MissingName(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"userId":"U123"}`)) //nolint:errcheck // test
	})

	name, err := client.DisplayName(context.Background(), "U123")
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestClient_GetProfile_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Not found"}`, http.StatusNotFound)
	})

	_, err := client.GetProfile(context.Background(), "U404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestClient_Push(t *testing.T) {
	var got PushRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/bot/message/push", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{}`)) //nolint:errcheck // test
	})

	require.NoError(t, client.Push(context.Background(), "C42", "hello"))
	assert.Equal(t, PushRequest{To: "C42", Messages: []TextMessage{{Type: "text", Text: "hello"}}}, got)
}

func TestClient_Push_ServerError(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	assert.Error(t, client.Push(context.Background(), "C42", "hello"))
	assert.Equal(t, 1, calls)
}
