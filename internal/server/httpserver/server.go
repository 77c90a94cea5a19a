package httpserver

import (
	"context"
	"net/http"
	"time"
)

// Server wraps the net/http server for the admin surface.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
}

// New creates an admin server on addr.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		handler: handler,
	}
}

// ListenAndServe starts the server. It blocks until Shutdown or a
// listener error; after Shutdown it returns http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
