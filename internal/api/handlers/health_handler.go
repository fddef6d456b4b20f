package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sheetsense/sheetsense/internal/api/response"
	"github.com/sheetsense/sheetsense/internal/models"
)

// HealthChecker probes the service's dependencies.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	service HealthChecker
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(service HealthChecker) *HealthHandler {
	return &HealthHandler{service: service}
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Check(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "health check failed", "error", err)
		response.RespondInternalServerError(w, err.Error())

		return
	}

	response.RespondJSON(w, http.StatusOK, models.HealthStatus{Status: "ok"})
}
