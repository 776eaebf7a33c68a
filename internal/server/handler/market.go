package handler

import (
	"log/slog"
	"net/http"

	"github.com/lucasharte/arbot/internal/domain"
)

// MarketHandler serves the read-only market endpoints: opportunities,
// prices, and stats.
type MarketHandler struct {
	backend domain.Backend
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler over the active backend.
func NewMarketHandler(backend domain.Backend, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		backend: backend,
		logger:  logger.With(slog.String("handler", "market")),
	}
}

// listOpportunitiesResponse wraps the opportunity list response.
type listOpportunitiesResponse struct {
	Opportunities []domain.OpportunityRecord `json:"opportunities"`
}

// ListOpportunities returns the current opportunity set, best first.
// GET /api/opportunities
func (h *MarketHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	opps, err := h.backend.Opportunities(r.Context())
	if err != nil {
		writeBackendError(w, h.logger, "list opportunities", err)
		return
	}
	if opps == nil {
		opps = []domain.OpportunityRecord{}
	}
	writeJSON(w, http.StatusOK, listOpportunitiesResponse{Opportunities: opps})
}

// listPricesResponse wraps the price list response.
type listPricesResponse struct {
	Prices []domain.PriceRecord `json:"prices"`
}

// ListPrices returns the current quote for every tracked token.
// GET /api/prices
func (h *MarketHandler) ListPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.backend.Prices(r.Context())
	if err != nil {
		writeBackendError(w, h.logger, "list prices", err)
		return
	}
	if prices == nil {
		prices = []domain.PriceRecord{}
	}
	writeJSON(w, http.StatusOK, listPricesResponse{Prices: prices})
}

// GetStats returns the mode-shaped stats object.
// GET /api/stats
func (h *MarketHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.backend.Stats(r.Context())
	if err != nil {
		writeBackendError(w, h.logger, "get stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
