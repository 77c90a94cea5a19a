// Package httpserver provides the keyline admin HTTP server.
//
// The admin surface is a sidecar to the wire server: health and
// readiness probes, a stats snapshot, the Prometheus scrape endpoint,
// and a purge operation that sweeps expired keys on demand. It binds
// loopback by default and carries no authentication; deployments that
// expose it use the network allowlist middleware instead.
package httpserver
