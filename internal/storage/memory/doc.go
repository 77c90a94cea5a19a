// Package memory provides in-memory storage for Keyline.
//
// It implements the key-value store using concurrent-safe data
// structures with per-key locking for high parallelism.
//
// Features:
//
//   - Sharded Entries: values distributed across shards for parallelism
//   - Per-Key Locks: lazily created, one exclusive lock per written key
//   - Lazy Expiry: deadlines enforced at access time, no background sweep
//
// Thread Safety:
//
// A single guard mutex covers lock-registry lookup and creation only;
// each key's own lock serializes reads and writes of that key.
// Distinct keys never contend on the same lock.
package memory
