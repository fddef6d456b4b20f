// Package store provides the retrieval backends for ingested documents.
// Three interchangeable implementations exist (Postgres+pgvector, MongoDB,
// Qdrant); all normalize ranking so the best match comes first and an absent
// document yields an empty result, not an error.
package store

import (
	"context"
	"fmt"

	"github.com/sheetsense/sheetsense/internal/config"
	"github.com/sheetsense/sheetsense/internal/models"
)

// VectorStore is the retrieval contract the request pipeline depends on.
// Implementations are safe for concurrent use; their clients pool connections.
type VectorStore interface {
	// TopK returns at most k content fragments of the given document, ranked
	// best-match-first against queryVector. An unknown document or empty corpus
	// returns an empty slice and no error.
	TopK(ctx context.Context, documentID string, queryVector []float32, k int) ([]models.ContentFragment, error)

	// GetSummary returns the document's summary, or nil when none was ingested.
	GetSummary(ctx context.Context, documentID string) (*models.DocumentSummary, error)

	// Ping verifies the backend is reachable. Used by the health monitor.
	Ping(ctx context.Context) error

	// Close releases the backend client.
	Close(ctx context.Context) error
}

// New builds the VectorStore selected by cfg.VectorStore.
func New(ctx context.Context, cfg *config.Config) (VectorStore, error) {
	switch cfg.VectorStore {
	case config.StorePostgres:
		return NewPostgresStore(ctx, cfg.DBConnectionString)
	case config.StoreMongo:
		return NewMongoStore(ctx, cfg.MongoConnectionString, cfg.MongoDatabase)
	case config.StoreQdrant:
		return NewQdrantStore(QdrantConfig{
			Host:               cfg.QdrantHost,
			Port:               cfg.QdrantPort,
			APIKey:             cfg.QdrantAPIKey,
			UseTLS:             cfg.QdrantUseTLS,
			DocumentCollection: cfg.QdrantDocCollection,
			SummaryCollection:  cfg.QdrantSumCollection,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store %q", cfg.VectorStore)
	}
}
