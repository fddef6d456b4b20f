package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetsense/sheetsense/internal/ragerrors"
)

func newTestQdrantStore(serverURL, apiKey string) *QdrantStore {
	return &QdrantStore{
		baseURL:           serverURL,
		apiKey:            apiKey,
		docCollection:     "documents",
		summaryCollection: "summaries",
		client:            &http.Client{Timeout: 5 * time.Second},
	}
}

func TestQdrantStore_TopK(t *testing.T) {
	t.Run("sends filter scoped to the document and preserves score order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/collections/documents/points/search", r.URL.Path)
			assert.Equal(t, "secret", r.Header.Get("api-key"))

			var req struct {
				Vector      []float32      `json:"vector"`
				Limit       int            `json:"limit"`
				WithPayload bool           `json:"with_payload"`
				Filter      map[string]any `json:"filter"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			assert.Equal(t, []float32{0.1, 0.2}, req.Vector)
			assert.Equal(t, 5, req.Limit)
			assert.True(t, req.WithPayload)

			must, ok := req.Filter["must"].([]any)
			require.True(t, ok)
			require.Len(t, must, 1)

			cond, ok := must[0].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "document_id", cond["key"])
			assert.Equal(t, map[string]any{"value": "doc1"}, cond["match"])

			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": []map[string]any{
					{"score": 0.95, "payload": map[string]any{"content": "Q1 revenue: 100"}},
					{"score": 0.80, "payload": map[string]any{"content": "Q2 revenue: 110"}},
				},
			})
		}))
		defer server.Close()

		store := newTestQdrantStore(server.URL, "secret")

		fragments, err := store.TopK(context.Background(), "doc1", []float32{0.1, 0.2}, 5)
		require.NoError(t, err)
		require.Len(t, fragments, 2)

		assert.Equal(t, "Q1 revenue: 100", fragments[0].Content)
		assert.InDelta(t, 0.95, fragments[0].Score, 1e-9)
		assert.Equal(t, "doc1", fragments[0].DocumentID)
		assert.GreaterOrEqual(t, fragments[0].Score, fragments[1].Score)
	})

	t.Run("no matches yields empty result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"result": []any{}})
		}))
		defer server.Close()

		store := newTestQdrantStore(server.URL, "")

		fragments, err := store.TopK(context.Background(), "doc-missing", []float32{1}, 10)
		require.NoError(t, err)
		assert.Empty(t, fragments)
	})

	t.Run("server error maps to store unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "internal", http.StatusInternalServerError)
		}))
		defer server.Close()

		store := newTestQdrantStore(server.URL, "")

		_, err := store.TopK(context.Background(), "doc1", []float32{1}, 10)
		assert.ErrorIs(t, err, ragerrors.ErrStoreUnavailable)
	})

	t.Run("unreachable host maps to store unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		server.Close()

		store := newTestQdrantStore(server.URL, "")

		_, err := store.TopK(context.Background(), "doc1", []float32{1}, 10)
		assert.ErrorIs(t, err, ragerrors.ErrStoreUnavailable)
	})
}

func TestQdrantStore_GetSummary(t *testing.T) {
	t.Run("scrolls the summary collection by document filter", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/collections/summaries/points/scroll", r.URL.Path)

			var req struct {
				Limit  int            `json:"limit"`
				Filter map[string]any `json:"filter"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, 1, req.Limit)
			assert.NotNil(t, req.Filter["must"])

			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]any{
					"points": []map[string]any{
						{"payload": map[string]any{"content": "Sales grew 10%"}},
					},
				},
			})
		}))
		defer server.Close()

		store := newTestQdrantStore(server.URL, "")

		summary, err := store.GetSummary(context.Background(), "doc1")
		require.NoError(t, err)
		require.NotNil(t, summary)
		assert.Equal(t, "doc1", summary.DocumentID)
		assert.Equal(t, "Sales grew 10%", summary.Content)
	})

	t.Run("missing summary yields nil without error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]any{"points": []any{}},
			})
		}))
		defer server.Close()

		store := newTestQdrantStore(server.URL, "")

		summary, err := store.GetSummary(context.Background(), "doc-missing")
		require.NoError(t, err)
		assert.Nil(t, summary)
	})
}

func TestQdrantStore_Ping(t *testing.T) {
	t.Run("lists collections", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "/collections", r.URL.Path)

			_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"collections": []any{}}})
		}))
		defer server.Close()

		store := newTestQdrantStore(server.URL, "")

		assert.NoError(t, store.Ping(context.Background()))
	})

	t.Run("unauthorized maps to store unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}))
		defer server.Close()

		store := newTestQdrantStore(server.URL, "")

		assert.ErrorIs(t, store.Ping(context.Background()), ragerrors.ErrStoreUnavailable)
	})
}

func TestDecodePayloadContent(t *testing.T) {
	assert.Equal(t, "", decodePayloadContent(nil))
	assert.Equal(t, "plain text", decodePayloadContent("plain text"))
	assert.JSONEq(t, `{"region":"EMEA"}`, decodePayloadContent(map[string]any{"region": "EMEA"}))
}
