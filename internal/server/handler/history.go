package handler

import (
	"log/slog"
	"net/http"

	"github.com/lucasharte/arbot/internal/domain"
)

// HistoryHandler serves persisted opportunity history. The store is
// optional; without one the endpoint reports the capability as absent.
type HistoryHandler struct {
	store  domain.OpportunityStore // may be nil
	logger *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler. Pass a nil store when no
// database is configured.
func NewHistoryHandler(store domain.OpportunityStore, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		store:  store,
		logger: logger.With(slog.String("handler", "history")),
	}
}

// ListRecent returns up to ?limit= persisted opportunities, newest first.
// GET /api/opportunities/history
func (h *HistoryHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, "opportunity history not configured")
		return
	}

	limit := queryLimit(r, 50, 500)
	opps, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		writeBackendError(w, h.logger, "list history", err)
		return
	}
	if opps == nil {
		opps = []domain.OpportunityRecord{}
	}
	writeJSON(w, http.StatusOK, listOpportunitiesResponse{Opportunities: opps})
}
