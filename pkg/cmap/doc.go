// Package cmap provides a concurrent map implementation for Keyline.
//
// This package implements a sharded concurrent map optimized for
// high-throughput connection and metadata tracking:
//
//   - Sharding: power-of-two shard count for cheap index masking
//   - Fine-grained Locking: per-shard RWMutex for minimal contention
//   - Hashing: MurmurHash3 over the string key selects the shard
//   - Iteration: safe iteration while holding per-shard read locks
//
// Usage:
//
//	m := cmap.New[string, *connState]()
//	m.Set("conn-01H...", st)
//	val, ok := m.Get("conn-01H...")
//
// Thread Safety:
//
// All operations are thread-safe. Read operations (Get, Has) use RLock,
// write operations (Set, Delete) use Lock.
package cmap
