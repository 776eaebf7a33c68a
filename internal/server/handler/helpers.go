// Package handler contains the HTTP handlers for the REST surface. Every
// handler goes through the active backend facade and never learns which
// mode is behind it except through the mode field of the payloads.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lucasharte/arbot/internal/domain"
)

// writeJSON marshals v as JSON and writes it with the given status code.
// If marshaling fails, it falls back to a plain 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeBackendError translates a backend failure at the boundary: missing
// capability becomes a 400 the caller can act on, anything unexpected a
// generic 500 that leaks no internals.
func writeBackendError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	if errors.Is(err, domain.ErrNotInitialized) || errors.Is(err, domain.ErrNotAvailable) {
		writeError(w, http.StatusBadRequest, "not initialized")
		return
	}
	logger.Error("handler: "+op+" failed", slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// queryLimit extracts a bounded ?limit= parameter.
func queryLimit(r *http.Request, def, max int) int {
	limit := def
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > max {
		limit = max
	}
	return limit
}
