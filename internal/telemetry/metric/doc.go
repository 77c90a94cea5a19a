// Package metric provides Prometheus metrics for Keyline.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry, instruments and HTTP handler
//   - collector.go: Build and uptime collector
//
// Metrics include:
//
//   - Connection gauges and counters
//   - Command counters and latency histograms
//   - Reply counters by kind
//   - Wire byte counters
//
// The small Counter, Gauge and Histogram interfaces keep callers
// decoupled from the Prometheus client types, so tests can substitute
// in-memory fakes.
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
