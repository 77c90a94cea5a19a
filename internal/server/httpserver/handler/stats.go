package handler

import (
	"net/http"
	"time"

	"github.com/keyline-io/keyline/internal/core/domain"
	"github.com/keyline-io/keyline/internal/infra/buildinfo"
)

// handleStats handles GET /stats: a point-in-time snapshot of the
// build, the wire sessions, and the store counters.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.writeError(w, r, http.StatusServiceUnavailable,
			domain.ErrServiceUnavailable.Code, "store not attached", nil)
		return
	}

	info := buildinfo.Get()
	resp := StatsResponse{
		Version:       info.Version,
		Commit:        info.Commit,
		GoVersion:     info.GoVersion,
		UptimeSeconds: int64(time.Since(h.start).Seconds()),
		Store:         h.store.Stats(),
	}
	if h.sessions != nil {
		resp.Connections = h.sessions.ActiveSessions()
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}
