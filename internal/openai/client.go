// Package openai provides a thin wrapper around the official OpenAI Go SDK for
// the embedding and text-generation models. The base URL is configurable so any
// OpenAI-compatible model runtime (vLLM, TEI, Ollama, hosted API) can serve both.
package openai

import (
	"context"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/sheetsense/sheetsense/internal/ragerrors"
)

const defaultMaxAnswerTokens = 250

// Client calls the model runtime's embeddings and chat completions APIs via the official SDK.
// Construct once at startup and share; the SDK client is safe for concurrent use.
type Client struct {
	sdk             openaisdk.Client
	embeddingModel  string
	generationModel string
	maxAnswerTokens int
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ClientOption {
	return func(c *Client) {
		c.embeddingModel = model
	}
}

// WithGenerationModel sets the text-generation model identifier.
func WithGenerationModel(model string) ClientOption {
	return func(c *Client) {
		c.generationModel = model
	}
}

// WithMaxAnswerTokens caps the generated answer length.
func WithMaxAnswerTokens(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxAnswerTokens = n
		}
	}
}

// NewClient creates a model runtime client. baseURL points at the runtime's
// OpenAI-compatible API root (e.g. http://localhost:11434/v1); apiKey may be
// empty for local runtimes that do not authenticate.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	sdkOpts := []option.RequestOption{option.WithBaseURL(baseURL)}
	if apiKey != "" {
		sdkOpts = append(sdkOpts, option.WithAPIKey(apiKey))
	}

	client := &Client{
		sdk:             openaisdk.NewClient(sdkOpts...),
		maxAnswerTokens: defaultMaxAnswerTokens,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// EmbeddingModel returns the configured embedding model identifier.
func (c *Client) EmbeddingModel() string { return c.embeddingModel }

// GenerationModel returns the configured text-generation model identifier.
func (c *Client) GenerationModel() string { return c.generationModel }

// Embed returns the embedding vector for the given text. Deterministic for a
// fixed model and input; vector length is fixed by the model.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ragerrors.NewValidationError("text", "text must be non-empty")
	}

	resp, err := c.sdk.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(text),
		},
		Model: openaisdk.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, ragerrors.NewModelUnavailableError(c.embeddingModel,
			fmt.Sprintf("embedding model %s: %v", c.embeddingModel, err))
	}

	if len(resp.Data) == 0 {
		return nil, ragerrors.NewModelUnavailableError(c.embeddingModel,
			fmt.Sprintf("embedding model %s returned no embedding", c.embeddingModel))
	}

	return toFloat32(resp.Data[0].Embedding), nil
}

// EmbedBatch returns one embedding per input text, in input order.
// The runtime applies shared padding across the batch; a single text embedded
// alone or inside a batch yields the same vector.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ragerrors.NewValidationError("texts", "texts must be non-empty")
	}

	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, ragerrors.NewValidationError("texts",
				fmt.Sprintf("texts[%d] must be non-empty", i))
		}
	}

	resp, err := c.sdk.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: openaisdk.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, ragerrors.NewModelUnavailableError(c.embeddingModel,
			fmt.Sprintf("embedding model %s: %v", c.embeddingModel, err))
	}

	if len(resp.Data) != len(texts) {
		return nil, ragerrors.NewModelUnavailableError(c.embeddingModel,
			fmt.Sprintf("embedding model %s returned %d embeddings for %d inputs",
				c.embeddingModel, len(resp.Data), len(texts)))
	}

	// The API may return data out of order; Index restores input order.
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, ragerrors.NewModelUnavailableError(c.embeddingModel,
				fmt.Sprintf("embedding model %s returned out-of-range index %d", c.embeddingModel, d.Index))
		}

		out[d.Index] = toFloat32(d.Embedding)
	}

	return out, nil
}

// Generate produces an answer for the prompt with deterministic decoding
// (temperature 0, no sampling) and the configured output token cap.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.sdk.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
		Model:       openaisdk.ChatModel(c.generationModel),
		Temperature: param.NewOpt(0.0),
		MaxTokens:   param.NewOpt(int64(c.maxAnswerTokens)),
	})
	if err != nil {
		return "", ragerrors.NewModelUnavailableError(c.generationModel,
			fmt.Sprintf("generation model %s: %v", c.generationModel, err))
	}

	if len(resp.Choices) == 0 {
		return "", ragerrors.NewModelUnavailableError(c.generationModel,
			fmt.Sprintf("generation model %s returned no choices", c.generationModel))
	}

	return resp.Choices[0].Message.Content, nil
}

// CheckModel verifies the runtime can serve the given model. Used by the health
// monitor in place of loading model weights locally.
func (c *Client) CheckModel(ctx context.Context, model string) error {
	if _, err := c.sdk.Models.Get(ctx, model); err != nil {
		return ragerrors.NewModelUnavailableError(model,
			fmt.Sprintf("model %s: %v", model, err))
	}

	return nil
}

func toFloat32(emb []float64) []float32 {
	out := make([]float32, len(emb))
	for i := range emb {
		out[i] = float32(emb[i])
	}

	return out
}
