package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage/internal/provider/driver"
)

func TestClientRequiresAPIKey(t *testing.T) {
	client := NewClient("", "")
	_, err := client.Complete(context.Background(), &driver.Request{Model: "test", Messages: []driver.Message{{Role: driver.RoleUser, Content: "hi"}}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "api key")

	_, err = client.Embed(context.Background(), []string{"hi"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "api key")
}

func TestCompleteSendsRequestAndParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		require.Equal(t, "test-model", payload["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello there"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	resp, err := client.Complete(context.Background(), &driver.Request{
		Model: "test-model",
		Messages: []driver.Message{
			{Role: driver.RoleSystem, Content: "sys"},
			{Role: driver.RoleUser, Content: "usr"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Equal(t, "hello there", resp.Content)
	require.Equal(t, "stop", resp.FinishReason)
	require.NotNil(t, resp.Usage)
	require.Equal(t, 3, resp.Usage.TotalTokens)
}

func TestEmbedOrdersVectorsByIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload embeddingsRequest
		require.NoError(t, json.Unmarshal(body, &payload))
		require.Equal(t, "text-embedding-3-small", payload.Model)
		require.Equal(t, []string{"alpha", "beta"}, payload.Input)

		// Out-of-order data entries must be re-ordered by index.
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0.5,0.5]},{"index":0,"embedding":[1,0]}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	vectors, err := client.Embed(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	require.Equal(t, []float32{1, 0}, vectors[0])
	require.Equal(t, []float32{0.5, 0.5}, vectors[1])
}

func TestProviderErrorOnNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	_, err := client.Embed(context.Background(), []string{"hi"})
	require.Error(t, err)

	var provErr *driver.ProviderError
	require.ErrorAs(t, err, &provErr)
	require.Equal(t, "openai", provErr.Provider)
	require.Equal(t, http.StatusTooManyRequests, provErr.StatusCode)
}
