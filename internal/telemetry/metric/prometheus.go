// Package metric provides Prometheus metrics for Keyline.
//
// It exposes metrics in Prometheus format for monitoring
// connection counts, command rates, latencies, and system health.
package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace is the prefix shared by every Keyline metric.
const Namespace = "keyline"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Connection metrics
	ConnectionsActive   Gauge
	ConnectionsOpened   Counter
	ConnectionsRejected CounterVec

	// Command metrics
	CommandsTotal   CounterVec
	CommandDuration HistogramVec
	RepliesTotal    CounterVec

	// Wire metrics
	ReadBytes    Counter
	WrittenBytes Counter
}

// Counter is a cumulative metric that only increases.
type Counter interface {
	Inc()
	Add(float64)
}

// CounterVec is a Counter with labels.
type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

// Gauge is a metric that can go up and down.
type Gauge interface {
	Set(float64)
	Inc()
	Dec()
	Add(float64)
	Sub(float64)
}

// Histogram samples observations and counts them in buckets.
type Histogram interface {
	Observe(float64)
}

// HistogramVec is a Histogram with labels.
type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
}

// counterVec adapts *prometheus.CounterVec to the CounterVec interface.
type counterVec struct {
	vec *prometheus.CounterVec
}

func (v counterVec) WithLabelValues(lvs ...string) Counter {
	return v.vec.WithLabelValues(lvs...)
}

// histogramVec adapts *prometheus.HistogramVec to the HistogramVec interface.
type histogramVec struct {
	vec *prometheus.HistogramVec
}

func (v histogramVec) WithLabelValues(lvs ...string) Histogram {
	return v.vec.WithLabelValues(lvs...)
}

// commandBuckets covers in-memory command latencies from 1us to ~0.5s.
var commandBuckets = prometheus.ExponentialBuckets(0.000001, 2, 20)

// NewRegistry creates a new metrics registry with all Keyline
// instruments registered, plus the standard Go runtime and process
// collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	connectionsActive := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "server",
		Name:      "connections_active",
		Help:      "Number of client connections currently open.",
	})
	connectionsOpened := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "server",
		Name:      "connections_opened_total",
		Help:      "Total number of client connections accepted.",
	})
	connectionsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "server",
		Name:      "connections_rejected_total",
		Help:      "Total number of client connections rejected, by reason.",
	}, []string{"reason"})
	commandsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "server",
		Name:      "commands_total",
		Help:      "Total number of commands dispatched, by verb.",
	}, []string{"verb"})
	commandDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "server",
		Name:      "command_duration_seconds",
		Help:      "Command dispatch latency in seconds, by verb.",
		Buckets:   commandBuckets,
	}, []string{"verb"})
	repliesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "server",
		Name:      "replies_total",
		Help:      "Total number of replies produced, by kind.",
	}, []string{"kind"})
	readBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "server",
		Name:      "read_bytes_total",
		Help:      "Total bytes read from client connections.",
	})
	writtenBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "server",
		Name:      "written_bytes_total",
		Help:      "Total bytes written to client connections.",
	})

	reg.MustRegister(
		connectionsActive,
		connectionsOpened,
		connectionsRejected,
		commandsTotal,
		commandDuration,
		repliesTotal,
		readBytes,
		writtenBytes,
	)

	return &Registry{
		registry:            reg,
		ConnectionsActive:   connectionsActive,
		ConnectionsOpened:   connectionsOpened,
		ConnectionsRejected: counterVec{connectionsRejected},
		CommandsTotal:       counterVec{commandsTotal},
		CommandDuration:     histogramVec{commandDuration},
		RepliesTotal:        counterVec{repliesTotal},
		ReadBytes:           readBytes,
		WrittenBytes:        writtenBytes,
	}
}

// Prometheus returns the underlying registry so that other packages
// can register their own collectors alongside the core instruments.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// MustRegister registers additional collectors with the underlying
// registry. It panics on duplicate registration.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// IncConnActive increments the active connection gauge.
func (r *Registry) IncConnActive() { r.ConnectionsActive.Inc() }

// DecConnActive decrements the active connection gauge.
func (r *Registry) DecConnActive() { r.ConnectionsActive.Dec() }

// IncConnOpened counts an accepted connection.
func (r *Registry) IncConnOpened() { r.ConnectionsOpened.Inc() }

// RecordConnRejected counts a rejected connection by reason, for
// example "max_conns" or "rate_limit".
func (r *Registry) RecordConnRejected(reason string) {
	r.ConnectionsRejected.WithLabelValues(reason).Inc()
}

// RecordCommand counts a dispatched command by verb.
func (r *Registry) RecordCommand(verb string) {
	r.CommandsTotal.WithLabelValues(verb).Inc()
}

// ObserveCommandDuration records the dispatch latency for a verb.
func (r *Registry) ObserveCommandDuration(verb string, seconds float64) {
	r.CommandDuration.WithLabelValues(verb).Observe(seconds)
}

// RecordReply counts a produced reply by kind, for example "text",
// "nil" or "none".
func (r *Registry) RecordReply(kind string) {
	r.RepliesTotal.WithLabelValues(kind).Inc()
}

// AddReadBytes counts bytes read from a client connection.
func (r *Registry) AddReadBytes(n int) {
	if n > 0 {
		r.ReadBytes.Add(float64(n))
	}
}

// AddWrittenBytes counts bytes written to a client connection.
func (r *Registry) AddWrittenBytes(n int) {
	if n > 0 {
		r.WrittenBytes.Add(float64(n))
	}
}

var (
	globalMu       sync.Mutex
	globalRegistry *Registry
)

// Global returns the process-wide metrics registry, creating it on
// first use.
func Global() *Registry {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalRegistry == nil {
		globalRegistry = NewRegistry()
	}
	return globalRegistry
}

// Handler returns an HTTP handler for the global registry.
func Handler() http.Handler {
	return Global().Handler()
}
