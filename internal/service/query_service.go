package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/sheetsense/sheetsense/internal/models"
	"github.com/sheetsense/sheetsense/internal/prompt"
	"github.com/sheetsense/sheetsense/internal/ragerrors"
	"github.com/sheetsense/sheetsense/internal/store"
)

// QueryService runs the retrieval-augmented answer pipeline: embed the
// question, fetch the top-K fragments and the document summary, assemble the
// prompt, and generate the answer. Stateless across requests apart from the
// optional question-embedding cache.
type QueryService struct {
	embeddingClient  EmbeddingClient
	generationClient GenerationClient
	store            store.VectorStore
	topK             int
	queryCache       *lru.Cache[string, []float32]
	queryLoadGroup   singleflight.Group
	logger           *slog.Logger
}

// QueryServiceParams configures QueryService. QueryCache may be nil (no caching).
type QueryServiceParams struct {
	EmbeddingClient  EmbeddingClient
	GenerationClient GenerationClient
	Store            store.VectorStore
	TopK             int
	QueryCache       *lru.Cache[string, []float32]
	Logger           *slog.Logger
}

// NewQueryService creates a QueryService.
func NewQueryService(p QueryServiceParams) *QueryService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	topK := p.TopK
	if topK <= 0 {
		topK = 10
	}

	return &QueryService{
		embeddingClient:  p.EmbeddingClient,
		generationClient: p.GenerationClient,
		store:            p.Store,
		topK:             topK,
		queryCache:       p.QueryCache,
		logger:           logger,
	}
}

// Answer runs the pipeline for one query. Requires non-empty (after trim)
// documentID and question. Zero retrieved fragments is not an error: the
// generation model is still invoked with an empty context, matching the
// ingestion service's long-standing behavior.
func (s *QueryService) Answer(ctx context.Context, documentID, question string) (models.QueryAnswer, error) {
	out := models.QueryAnswer{}

	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return out, ragerrors.NewValidationError("document_id", "document_id must be non-empty")
	}

	if strings.TrimSpace(question) == "" {
		return out, ragerrors.NewValidationError("question", "question must be non-empty")
	}

	var (
		embedding []float32
		err       error
	)

	if s.queryCache != nil {
		embedding, err = s.getQuestionEmbeddingCached(ctx, question)
	} else {
		embedding, err = s.embeddingClient.Embed(ctx, question)
	}

	if err != nil {
		s.logger.Error("query: embed question failed", "error", err, "documentId", documentID)

		return out, fmt.Errorf("embed question: %w", err)
	}

	// Retrieval and summary lookup are independent; run them together and wait
	// for both before prompting.
	var (
		fragments []models.ContentFragment
		summary   *models.DocumentSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var tkErr error
		fragments, tkErr = s.store.TopK(gctx, documentID, embedding, s.topK)

		return tkErr
	})
	g.Go(func() error {
		var sumErr error
		summary, sumErr = s.store.GetSummary(gctx, documentID)

		return sumErr
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("query: retrieval failed", "error", err, "documentId", documentID)

		return out, fmt.Errorf("retrieve fragments: %w", err)
	}

	if len(fragments) == 0 {
		s.logger.Warn("query: no fragments retrieved, answering with empty context",
			"documentId", documentID)
	}

	answer, err := s.generationClient.Generate(ctx, prompt.Build(summary, fragments, question))
	if err != nil {
		s.logger.Error("query: generate answer failed", "error", err, "documentId", documentID)

		return out, fmt.Errorf("generate answer: %w", err)
	}

	if fragments == nil {
		fragments = []models.ContentFragment{}
	}

	return models.QueryAnswer{
		Answer:       answer,
		Question:     question,
		DocumentID:   documentID,
		RelevantRows: fragments,
	}, nil
}

// getQuestionEmbeddingCached returns the cached embedding for the question or
// computes it once, deduplicating concurrent identical questions.
func (s *QueryService) getQuestionEmbeddingCached(ctx context.Context, question string) ([]float32, error) {
	if vec, ok := s.queryCache.Get(question); ok {
		return vec, nil
	}

	val, err, _ := s.queryLoadGroup.Do(question, func() (any, error) {
		vec, loadErr := s.embeddingClient.Embed(ctx, question)
		if loadErr != nil {
			return nil, fmt.Errorf("embed question: %w", loadErr)
		}

		s.queryCache.Add(question, vec)

		return vec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("question embedding: %w", err)
	}

	return val.([]float32), nil
}
