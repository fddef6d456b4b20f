package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/sheetsense/sheetsense/internal/models"
	"github.com/sheetsense/sheetsense/internal/ragerrors"
	"github.com/sheetsense/sheetsense/pkg/database"
)

// PostgresStore retrieves fragments from Postgres with the pgvector extension.
// Schema: documents(id, content, embedding vector) and summaries(id, content),
// populated by the external ingestion service.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore connects a pgx pool to the given connection string.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := database.NewPostgresPool(ctx, connString)
	if err != nil {
		return nil, ragerrors.NewStoreUnavailableError("postgres",
			fmt.Sprintf("connect postgres: %v", err))
	}

	return &PostgresStore{db: pool}, nil
}

// TopK returns the document's k nearest fragments by cosine distance (<=>),
// best first. Score is 1 - distance so higher is better.
func (s *PostgresStore) TopK(
	ctx context.Context, documentID string, queryVector []float32, k int,
) ([]models.ContentFragment, error) {
	queryVec := pgvector.NewVector(queryVector)

	rows, err := s.db.Query(ctx, `
		SELECT content, (1 - (embedding <=> $2)) AS score
		FROM documents
		WHERE id = $1
		ORDER BY embedding <=> $2
		LIMIT $3`, documentID, queryVec, k)
	if err != nil {
		return nil, ragerrors.NewStoreUnavailableError("postgres",
			fmt.Sprintf("top k query: %v", err))
	}
	defer rows.Close()

	var fragments []models.ContentFragment

	for rows.Next() {
		frag := models.ContentFragment{DocumentID: documentID}
		if err := rows.Scan(&frag.Content, &frag.Score); err != nil {
			return nil, ragerrors.NewStoreUnavailableError("postgres",
				fmt.Sprintf("scan fragment: %v", err))
		}

		fragments = append(fragments, frag)
	}

	if err := rows.Err(); err != nil {
		return nil, ragerrors.NewStoreUnavailableError("postgres",
			fmt.Sprintf("iterating fragments: %v", err))
	}

	return fragments, nil
}

// GetSummary returns the document's summary row, or nil when absent.
func (s *PostgresStore) GetSummary(ctx context.Context, documentID string) (*models.DocumentSummary, error) {
	var content string

	err := s.db.QueryRow(ctx,
		`SELECT content FROM summaries WHERE id = $1`, documentID,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, ragerrors.NewStoreUnavailableError("postgres",
			fmt.Sprintf("get summary: %v", err))
	}

	return &models.DocumentSummary{DocumentID: documentID, Content: content}, nil
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return ragerrors.NewStoreUnavailableError("postgres",
			fmt.Sprintf("ping: %v", err))
	}

	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close(_ context.Context) error {
	s.db.Close()

	return nil
}
