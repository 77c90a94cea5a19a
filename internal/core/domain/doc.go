// Package domain defines the core domain models for Keyline.
//
// Domain models are pure value objects without any IO dependencies
// or framework coupling. This package contains:
//
//   - Command: a parsed client command tagged with its verb
//   - Entry: one stored key-value pair with its optional expiry
//   - Errors: domain-specific error definitions
//
// Commands that cannot be dispatched safely are tagged VerbInvalid
// or VerbNone rather than reported as errors, mirroring the wire
// protocol's silent failure surface.
package domain
