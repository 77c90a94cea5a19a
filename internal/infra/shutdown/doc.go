// Package shutdown provides graceful shutdown for Keyline.
//
// This package handles process termination signals:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - Programmatic shutdown via Trigger
//   - Timeout-based forced shutdown
//   - Cleanup callback registration, run in reverse order
//
// Usage:
//
//	ctx, cancel := shutdown.WithSignals(context.Background())
//	defer cancel()
//	<-ctx.Done() // Wait for shutdown signal
package shutdown
