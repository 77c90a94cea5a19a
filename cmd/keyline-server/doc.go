// Package main provides the entry point for keyline-server.
//
// The server is the core Keyline service that provides:
//
//   - Line-oriented key-value protocol over TCP and Unix socket
//   - Lazy millisecond-precision key expiry
//   - Admin HTTP endpoint for health, stats, purge and metrics
//
// Usage:
//
//	keyline-server [flags]
//	keyline-server --config /path/to/config.yaml
//
// The server loads configuration, initializes the store and telemetry,
// and starts all configured listeners.
package main
