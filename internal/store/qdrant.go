package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sheetsense/sheetsense/internal/models"
	"github.com/sheetsense/sheetsense/internal/ragerrors"
)

const qdrantTimeout = 30 * time.Second

// QdrantConfig holds connection settings for the Qdrant vector-index service.
type QdrantConfig struct {
	Host               string
	Port               int
	APIKey             string
	UseTLS             bool
	DocumentCollection string
	SummaryCollection  string
}

// QdrantStore retrieves fragments from Qdrant through its REST API.
// Fragments live in the document collection with a document_id payload field;
// summaries live in a separate collection (stored with a dummy vector, so they
// are fetched by payload filter via scroll, not by similarity).
type QdrantStore struct {
	baseURL           string
	apiKey            string
	docCollection     string
	summaryCollection string
	client            *http.Client
}

// NewQdrantStore creates a Qdrant REST client.
func NewQdrantStore(cfg QdrantConfig) *QdrantStore {
	scheme := "http"
	if cfg.UseTLS {
		scheme = "https"
	}

	return &QdrantStore{
		baseURL:           fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port),
		apiKey:            cfg.APIKey,
		docCollection:     cfg.DocumentCollection,
		summaryCollection: cfg.SummaryCollection,
		client:            &http.Client{Timeout: qdrantTimeout},
	}
}

// qdrantFilter matches points whose document_id payload equals the queried document.
func qdrantFilter(documentID string) map[string]any {
	return map[string]any{
		"must": []map[string]any{
			{
				"key":   "document_id",
				"match": map[string]any{"value": documentID},
			},
		},
	}
}

// TopK runs a similarity search scoped to documentID. Qdrant returns results
// highest-score-first already, so no re-ranking is needed.
func (s *QdrantStore) TopK(
	ctx context.Context, documentID string, queryVector []float32, k int,
) ([]models.ContentFragment, error) {
	req := map[string]any{
		"vector":       queryVector,
		"limit":        k,
		"with_payload": true,
		"filter":       qdrantFilter(documentID),
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", s.baseURL, s.docCollection)
	if err := s.postJSON(ctx, url, req, &resp); err != nil {
		return nil, err
	}

	fragments := make([]models.ContentFragment, 0, len(resp.Result))
	for _, r := range resp.Result {
		fragments = append(fragments, models.ContentFragment{
			Content:    decodePayloadContent(r.Payload["content"]),
			DocumentID: documentID,
			Score:      r.Score,
		})
	}

	return fragments, nil
}

// GetSummary scrolls the summary collection for the document's summary point.
func (s *QdrantStore) GetSummary(ctx context.Context, documentID string) (*models.DocumentSummary, error) {
	req := map[string]any{
		"filter":       qdrantFilter(documentID),
		"limit":        1,
		"with_payload": true,
	}

	var resp struct {
		Result struct {
			Points []struct {
				Payload map[string]any `json:"payload"`
			} `json:"points"`
		} `json:"result"`
	}

	url := fmt.Sprintf("%s/collections/%s/points/scroll", s.baseURL, s.summaryCollection)
	if err := s.postJSON(ctx, url, req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Result.Points) == 0 {
		return nil, nil
	}

	return &models.DocumentSummary{
		DocumentID: documentID,
		Content:    decodePayloadContent(resp.Result.Points[0].Payload["content"]),
	}, nil
}

// Ping lists collections as a connectivity probe.
func (s *QdrantStore) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/collections", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return ragerrors.NewStoreUnavailableError("qdrant", fmt.Sprintf("ping: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return ragerrors.NewStoreUnavailableError("qdrant",
			fmt.Sprintf("ping: unexpected status %s", resp.Status))
	}

	return nil
}

// Close is a no-op; the HTTP client holds no persistent resources.
func (s *QdrantStore) Close(_ context.Context) error {
	s.client.CloseIdleConnections()

	return nil
}

func (s *QdrantStore) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}

func (s *QdrantStore) postJSON(ctx context.Context, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return ragerrors.NewStoreUnavailableError("qdrant", fmt.Sprintf("POST %s: %v", url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return ragerrors.NewStoreUnavailableError("qdrant",
			fmt.Sprintf("POST %s: unexpected status %s", url, resp.Status))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return ragerrors.NewStoreUnavailableError("qdrant",
				fmt.Sprintf("decode response: %v", err))
		}
	}

	return nil
}

// decodePayloadContent extracts fragment text from a Qdrant payload value.
// Ingestion stores row content as a JSON-encoded string; that inner JSON is the
// fragment text. Structured payloads are re-encoded as JSON.
func decodePayloadContent(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Sprintf("%v", c)
		}

		return string(b)
	}
}
