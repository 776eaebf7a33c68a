package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/lucasharte/arbot/internal/domain"
)

// TradingHandler serves the trading control endpoints. In modes without a
// trading-capable executor every control returns a 400 "not initialized".
type TradingHandler struct {
	backend domain.Backend
	logger  *slog.Logger
}

// NewTradingHandler creates a TradingHandler over the active backend.
func NewTradingHandler(backend domain.Backend, logger *slog.Logger) *TradingHandler {
	return &TradingHandler{
		backend: backend,
		logger:  logger.With(slog.String("handler", "trading")),
	}
}

// Start launches trading. POST /api/start
func (h *TradingHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, "start", h.backend.Start)
}

// Stop halts trading. POST /api/stop
func (h *TradingHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, "stop", h.backend.Stop)
}

// Pause suspends trading without tearing down state. POST /api/pause
func (h *TradingHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, "pause", h.backend.Pause)
}

// Resume continues after a pause. POST /api/resume
func (h *TradingHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, "resume", h.backend.Resume)
}

// EmergencyStop halts everything immediately. POST /api/emergency-stop
func (h *TradingHandler) EmergencyStop(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, "emergency-stop", h.backend.EmergencyStop)
}

func (h *TradingHandler) control(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context) error) {
	if err := fn(r.Context()); err != nil {
		writeBackendError(w, h.logger, action, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"action":  action,
		"mode":    h.backend.Mode(),
	})
}
