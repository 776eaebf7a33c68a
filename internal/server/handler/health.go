package handler

import (
	"net/http"

	"github.com/lucasharte/arbot/internal/domain"
)

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	backend domain.Backend
}

// NewHealthHandler creates a HealthHandler over the active backend.
func NewHealthHandler(backend domain.Backend) *HealthHandler {
	return &HealthHandler{backend: backend}
}

// HealthCheck reports the active mode's component health.
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	// Health never fails; a degraded backend is reported in the payload.
	writeJSON(w, http.StatusOK, h.backend.Health(r.Context()))
}
