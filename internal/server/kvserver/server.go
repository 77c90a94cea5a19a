package kvserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/keyline-io/keyline/internal/core/service"
	"github.com/keyline-io/keyline/internal/telemetry/logger"
	"github.com/keyline-io/keyline/internal/telemetry/metric"
	"github.com/keyline-io/keyline/pkg/cmap"
)

// Config holds the wire server configuration.
type Config struct {
	// Addr is the TCP listen address. Empty disables the TCP listener.
	Addr string

	// UnixSocket is the Unix domain socket path. Empty disables the
	// socket listener.
	UnixSocket string

	// ReadBufferBytes sizes the per-connection read buffer. One read
	// of at most this many bytes carries one whole command.
	ReadBufferBytes int

	// MaxConns caps concurrent connections across both listeners.
	// Zero means unlimited.
	MaxConns int

	// PerIPRate limits accepted connections per second per client IP.
	// Zero disables the limit. Unix socket peers are never limited.
	PerIPRate int

	// ReadTimeout bounds each command read. Zero means no deadline.
	ReadTimeout time.Duration

	// WriteTimeout bounds each reply write. Zero means no deadline.
	WriteTimeout time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:            "localhost:6379",
		ReadBufferBytes: 4096,
	}
}

// Server accepts client connections and serves the command loop on
// each. It owns the listeners and tracks live sessions so that
// Shutdown can drain them.
type Server struct {
	cfg     *Config
	svc     *service.KeyValService
	limiter *service.RateLimiterRegistry
	metrics *metric.Registry
	logger  logger.Logger

	tcpLn  net.Listener
	unixLn net.Listener

	sessions *cmap.Map[string, *session]
	sem      chan struct{}

	running atomic.Bool
	wg      sync.WaitGroup
}

// New creates a server for the given service. A nil cfg uses
// DefaultConfig, a nil logger the process default logger, and a nil
// metrics registry the global one.
func New(cfg *Config, svc *service.KeyValService, log logger.Logger, metrics *metric.Registry) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.Default()
	}
	if metrics == nil {
		metrics = metric.Global()
	}
	s := &Server{
		cfg:      cfg,
		svc:      svc,
		limiter:  service.NewRateLimiterRegistry(),
		metrics:  metrics,
		logger:   log,
		sessions: cmap.New[string, *session](),
	}
	if cfg.MaxConns > 0 {
		s.sem = make(chan struct{}, cfg.MaxConns)
	}
	return s
}

// Start binds the configured listeners and launches the accept loops.
// It returns once every listener is bound, so a busy port fails here
// rather than in a goroutine. Accept errors after that are logged.
func (s *Server) Start(ctx context.Context) error {
	if s.cfg.Addr == "" && s.cfg.UnixSocket == "" {
		return errors.New("kvserver: no listen address configured")
	}

	if s.cfg.Addr != "" {
		ln, err := net.Listen("tcp", s.cfg.Addr)
		if err != nil {
			return fmt.Errorf("kvserver: listen tcp %s: %w", s.cfg.Addr, err)
		}
		s.tcpLn = ln
	}
	if s.cfg.UnixSocket != "" {
		// A previous run may have left the socket file behind.
		_ = os.Remove(s.cfg.UnixSocket)
		ln, err := net.Listen("unix", s.cfg.UnixSocket)
		if err != nil {
			if s.tcpLn != nil {
				s.tcpLn.Close()
			}
			return fmt.Errorf("kvserver: listen unix %s: %w", s.cfg.UnixSocket, err)
		}
		s.unixLn = ln
	}

	s.running.Store(true)

	for _, ln := range []net.Listener{s.tcpLn, s.unixLn} {
		if ln == nil {
			continue
		}
		ln := ln
		s.logger.Info("server listening",
			"network", ln.Addr().Network(),
			"addr", ln.Addr().String(),
		)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.acceptLoop(ctx, ln); err != nil {
				s.logger.Error("accept loop failed",
					"network", ln.Addr().Network(),
					"error", err,
				)
			}
		}()
	}
	return nil
}

// Addr returns the bound TCP address, or nil before Start. With a
// ":0" listen address this is where the kernel actually put us.
func (s *Server) Addr() net.Addr {
	if s.tcpLn == nil {
		return nil
	}
	return s.tcpLn.Addr()
}

// ActiveSessions returns the number of live client sessions.
func (s *Server) ActiveSessions() int {
	return s.sessions.Count()
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}
		s.handleAccept(ctx, conn)
	}
}

// handleAccept applies the accept-time limits and hands admitted
// connections to a session goroutine. Rejected connections are closed
// before any bytes are exchanged.
func (s *Server) handleAccept(ctx context.Context, conn net.Conn) {
	if host := remoteHost(conn); host != "" && !s.limiter.Allow(host, s.cfg.PerIPRate) {
		s.metrics.RecordConnRejected("rate_limit")
		s.logger.Warn("connection rejected",
			"reason", "rate_limit",
			"remote", conn.RemoteAddr().String(),
		)
		conn.Close()
		return
	}
	if s.sem != nil {
		select {
		case s.sem <- struct{}{}:
		default:
			s.metrics.RecordConnRejected("max_conns")
			s.logger.Warn("connection rejected",
				"reason", "max_conns",
				"remote", conn.RemoteAddr().String(),
				"max_conns", s.cfg.MaxConns,
			)
			conn.Close()
			return
		}
	}

	sess := newSession(conn, s.cfg.ReadBufferBytes)
	s.sessions.Set(sess.id, sess)
	s.metrics.IncConnOpened()
	s.metrics.IncConnActive()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if s.sem != nil {
				<-s.sem
			}
			s.sessions.Delete(sess.id)
			s.metrics.DecConnActive()
		}()
		s.serve(ctx, sess)
	}()
}

// Shutdown stops the listeners, closes live sessions, and waits for
// the session goroutines to drain. The context bounds the wait. A
// session blocked in a read holds its goroutine; closing the
// connection unblocks it so the drain can finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var closeErr error
	if s.tcpLn != nil {
		if err := s.tcpLn.Close(); err != nil {
			closeErr = err
		}
	}
	if s.unixLn != nil {
		if err := s.unixLn.Close(); err != nil && closeErr == nil {
			closeErr = err
		}
	}

	if n := s.sessions.Count(); n > 0 {
		s.logger.Info("closing live sessions", "count", n)
	}
	s.sessions.Range(func(_ string, sess *session) bool {
		sess.Close()
		return true
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return closeErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// remoteHost extracts the client IP for rate limiting. Peers without
// a TCP address, such as Unix socket clients, return "".
func remoteHost(conn net.Conn) string {
	addr := conn.RemoteAddr()
	if addr == nil || addr.Network() != "tcp" {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return ""
	}
	return host
}
