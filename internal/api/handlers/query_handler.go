package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sheetsense/sheetsense/internal/api/response"
	"github.com/sheetsense/sheetsense/internal/models"
	"github.com/sheetsense/sheetsense/internal/ragerrors"
)

// QueryAnswerer runs the retrieval-augmented answer pipeline for one query.
type QueryAnswerer interface {
	Answer(ctx context.Context, documentID, question string) (models.QueryAnswer, error)
}

// QueryHandler handles HTTP requests for document question answering.
type QueryHandler struct {
	service QueryAnswerer
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(service QueryAnswerer) *QueryHandler {
	return &QueryHandler{service: service}
}

// Answer handles POST /query.
func (h *QueryHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var query models.Query

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&query); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	answer, err := h.service.Answer(r.Context(), query.DocumentID, query.Question)
	if err != nil {
		respondServiceError(w, err)

		return
	}

	response.RespondJSON(w, http.StatusOK, answer)
}

// respondServiceError maps the internal error taxonomy to transport responses:
// validation failures become 400, everything else collapses to a flat 500 with
// the error's message as diagnostic detail.
func respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ragerrors.ErrValidation) {
		response.RespondBadRequest(w, err.Error())

		return
	}

	response.RespondInternalServerError(w, err.Error())
}
