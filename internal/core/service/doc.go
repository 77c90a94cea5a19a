// Package service provides domain services for Keyline.
//
// Domain services contain pure business logic and orchestrate operations
// on domain models. They define interfaces for storage dependencies,
// allowing for dependency injection and testability.
//
// This package contains:
//
//   - KeyValService: command dispatch against the key-value store
//   - RateLimiterRegistry: per-client rate limiter management
//
// Services are stateless and thread-safe, designed for high-concurrency
// scenarios. KeyValService maps every parsed command to exactly one
// reply value; transport concerns such as framing, logging and metrics
// stay with the callers.
package service
