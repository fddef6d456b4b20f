package service

import "context"

// EmbeddingClient converts text into fixed-length vectors.
// Implemented by the model runtime client in internal/openai.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// GenerationClient produces an answer for a prompt with deterministic decoding.
type GenerationClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ModelChecker probes whether the runtime can serve a model.
type ModelChecker interface {
	CheckModel(ctx context.Context, model string) error
}
