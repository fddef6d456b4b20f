package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sheetsense/sheetsense/internal/ragerrors"
)

// EmbeddingService exposes embedding computation as standalone operations for
// the /compute_embedding endpoints.
type EmbeddingService struct {
	client EmbeddingClient
}

// NewEmbeddingService creates an EmbeddingService.
func NewEmbeddingService(client EmbeddingClient) *EmbeddingService {
	return &EmbeddingService{client: client}
}

// Compute returns the embedding for one text. Empty text is a validation error.
func (s *EmbeddingService) Compute(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ragerrors.NewValidationError("text", "text must be non-empty")
	}

	vec, err := s.client.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("compute embedding: %w", err)
	}

	return vec, nil
}

// ComputeBatch returns one embedding per input text, preserving order. The
// whole batch is rejected when it is empty or any element is empty.
func (s *EmbeddingService) ComputeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ragerrors.NewValidationError("texts", "texts must be non-empty")
	}

	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, ragerrors.NewValidationError("texts",
				fmt.Sprintf("texts[%d] must be non-empty", i))
		}
	}

	vecs, err := s.client.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("compute batch embedding: %w", err)
	}

	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("compute batch embedding: got %d vectors for %d texts", len(vecs), len(texts))
	}

	return vecs, nil
}
