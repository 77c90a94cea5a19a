package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/keyline-io/keyline/internal/storage/memory"
	"github.com/keyline-io/keyline/internal/telemetry/logger"
)

// SessionCounter reports live wire sessions. The wire server satisfies
// it; tests substitute a literal.
type SessionCounter interface {
	ActiveSessions() int
}

// Handler routes admin requests to the endpoint handlers.
type Handler struct {
	store    *memory.Store
	sessions SessionCounter
	logger   logger.Logger
	mux      *http.ServeMux
	start    time.Time
}

// New creates a Handler over the given store. sessions may be nil when
// no wire server is attached; /stats then reports zero connections.
func New(store *memory.Store, sessions SessionCounter, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	h := &Handler{
		store:    store,
		sessions: sessions,
		logger:   log,
		mux:      http.NewServeMux(),
		start:    time.Now(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.HandleFunc("GET /stats", h.handleStats)
	h.mux.HandleFunc("POST /purge", h.handlePurge)
}

// writeJSON writes a JSON response with the standard envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with the standard envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// getRequestID extracts the request ID set by the middleware.
func getRequestID(r *http.Request) string {
	if requestID := logger.RequestIDFromContext(r.Context()); requestID != "" {
		return requestID
	}
	return r.Header.Get("X-Request-ID")
}
