package httpserver

import (
	"net/http"

	"github.com/keyline-io/keyline/internal/server/httpserver/handler"
	"github.com/keyline-io/keyline/internal/storage/memory"
	"github.com/keyline-io/keyline/internal/telemetry/logger"
	"github.com/keyline-io/keyline/internal/telemetry/metric"
)

// RouterConfig holds configuration for the admin router.
type RouterConfig struct {
	// Store backs /ready and /stats.
	Store *memory.Store

	// Sessions reports live wire sessions for /stats. May be nil.
	Sessions handler.SessionCounter

	// Metrics is the registry behind /metrics. Nil uses the global one.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger logger.Logger

	// AllowList is the IP/CIDR allowlist. Empty means no restriction.
	AllowList []string

	// RateLimit is the per-IP request limit in requests/second.
	// Zero disables it.
	RateLimit int

	// EnableRequestLog logs one line per /stats and /purge request.
	// Probe and scrape endpoints are never request-logged.
	EnableRequestLog bool
}

// DefaultRouterConfig returns the default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		EnableRequestLog: true,
	}
}

// NewRouter builds the admin mux with its middleware chains.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = metric.Global()
	}

	h := handler.New(cfg.Store, cfg.Sessions, log)

	base := []Middleware{RequestID(), Recover(log)}
	if len(cfg.AllowList) > 0 {
		base = append(base, NetworkACL(&NetworkACLConfig{
			AllowList: cfg.AllowList,
			Logger:    log,
		}))
	}
	if cfg.RateLimit > 0 {
		base = append(base, RateLimit(cfg.RateLimit))
	}

	loggedMws := append([]Middleware{}, base...)
	if cfg.EnableRequestLog {
		loggedMws = append(loggedMws, RequestLog(log))
	}

	probeChain := Chain(h, base...)
	loggedChain := Chain(h, loggedMws...)

	mux := http.NewServeMux()
	mux.Handle("GET /health", probeChain)
	mux.Handle("GET /ready", probeChain)
	mux.Handle("GET /stats", loggedChain)
	mux.Handle("POST /purge", loggedChain)
	mux.Handle("GET /metrics", Chain(metrics.Handler(), base...))
	return mux
}
