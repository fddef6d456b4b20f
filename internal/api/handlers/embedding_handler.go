package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sheetsense/sheetsense/internal/api/response"
)

// EmbeddingComputer computes embedding vectors for the standalone endpoints.
type EmbeddingComputer interface {
	Compute(ctx context.Context, text string) ([]float32, error)
	ComputeBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingHandler handles HTTP requests for embedding computation.
type EmbeddingHandler struct {
	service EmbeddingComputer
}

// NewEmbeddingHandler creates a new embedding handler.
func NewEmbeddingHandler(service EmbeddingComputer) *EmbeddingHandler {
	return &EmbeddingHandler{service: service}
}

// ComputeEmbeddingRequest is the body for POST /compute_embedding.
type ComputeEmbeddingRequest struct {
	Text string `json:"text"`
}

// ComputeBatchEmbeddingRequest is the body for POST /compute_batch_embedding.
type ComputeBatchEmbeddingRequest struct {
	Texts []string `json:"texts"`
}

// Compute handles POST /compute_embedding. The response body is the bare
// vector (array of floats), matching the service's wire contract.
func (h *EmbeddingHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req ComputeEmbeddingRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	vec, err := h.service.Compute(r.Context(), req.Text)
	if err != nil {
		respondServiceError(w, err)

		return
	}

	response.RespondJSON(w, http.StatusOK, vec)
}

// ComputeBatch handles POST /compute_batch_embedding. The response body is an
// array of vectors, same order and length as the input.
func (h *EmbeddingHandler) ComputeBatch(w http.ResponseWriter, r *http.Request) {
	var req ComputeBatchEmbeddingRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	vecs, err := h.service.ComputeBatch(r.Context(), req.Texts)
	if err != nil {
		respondServiceError(w, err)

		return
	}

	response.RespondJSON(w, http.StatusOK, vecs)
}
