package handler

import (
	"net/http"
	"time"

	"github.com/keyline-io/keyline/internal/core/domain"
)

// handleHealth handles GET /health. Healthy means the process is up.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready. Ready means the store is attached
// and the server can answer commands.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.writeError(w, r, http.StatusServiceUnavailable,
			domain.ErrServiceUnavailable.Code, "store not attached", nil)
		return
	}
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status: "ready",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
