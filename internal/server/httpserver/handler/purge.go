package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/keyline-io/keyline/internal/core/domain"
)

// handlePurge handles POST /purge: evict every expired entry instead
// of waiting for reads to do it lazily. An empty body means a full
// purge; {"dry_run": true} only counts what a purge would remove.
func (h *Handler) handlePurge(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.writeError(w, r, http.StatusServiceUnavailable,
			domain.ErrServiceUnavailable.Code, "store not attached", nil)
		return
	}

	var req PurgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, r, http.StatusBadRequest,
			domain.ErrBadRequest.Code, "invalid request body", nil)
		return
	}

	resp := PurgeResponse{DryRun: req.DryRun}
	if req.DryRun {
		resp.PurgedKeys = h.store.ExpiredCount()
	} else {
		resp.PurgedKeys = h.store.PurgeExpired(r.Context())
		h.logger.Info("expired keys purged",
			"purged_keys", resp.PurgedKeys,
			"request_id", getRequestID(r))
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}
