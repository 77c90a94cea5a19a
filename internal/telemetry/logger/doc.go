// Package logger provides structured logging for Keyline.
//
// This package wraps log/slog for structured logging:
//
//   - logger.go: logger configuration and initialization
//   - context.go: context-aware logging with request and connection IDs
//   - clip.go: clipping of oversized attribute values
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering with runtime adjustment
//   - Automatic clipping of long stored values and wire buffers
//   - Context propagation for per-connection tracing
package logger
