package service

import (
	"context"
	"fmt"
)

// Pinger is the connectivity probe the health monitor runs against the store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService verifies the embedding model, the generation model, and the
// retrieval store are reachable. Binary ok/fail: the first failure
// short-circuits and its message becomes the response detail.
type HealthService struct {
	checker         ModelChecker
	embeddingModel  string
	generationModel string
	store           Pinger
}

// NewHealthService creates a HealthService.
func NewHealthService(checker ModelChecker, embeddingModel, generationModel string, store Pinger) *HealthService {
	return &HealthService{
		checker:         checker,
		embeddingModel:  embeddingModel,
		generationModel: generationModel,
		store:           store,
	}
}

// Check probes each dependency in sequence and returns the first failure.
func (s *HealthService) Check(ctx context.Context) error {
	if err := s.checker.CheckModel(ctx, s.embeddingModel); err != nil {
		return fmt.Errorf("embedding model check: %w", err)
	}

	if err := s.checker.CheckModel(ctx, s.generationModel); err != nil {
		return fmt.Errorf("generation model check: %w", err)
	}

	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store check: %w", err)
	}

	return nil
}
