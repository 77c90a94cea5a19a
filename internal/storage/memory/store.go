// Package memory provides in-memory storage for Keyline.
package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/keyline-io/keyline/internal/core/domain"
	"github.com/keyline-io/keyline/pkg/cmap"
)

// Store provides the in-memory key-value store with per-key locking
// and lazy expiry.
type Store struct {
	// Lock registry: one exclusive lock per key that has ever been
	// written. The guard covers lookup and creation only.
	guard sync.Mutex
	locks map[string]*sync.Mutex

	// Entry map: key -> value.
	entries *cmap.Map[string, string]

	// Expiry ledger: key -> absolute deadline.
	ledger *Ledger

	// Clock, injectable for tests.
	now func() time.Time

	// Operation counters.
	reads       atomic.Int64
	writes      atomic.Int64
	hits        atomic.Int64
	misses      atomic.Int64
	expirations atomic.Int64

	// Prometheus metrics, populated by RegisterMetrics.
	metrics *storeMetrics
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Stats is a point-in-time snapshot of store counters.
type Stats struct {
	Keys         int   `json:"keys"`
	ExpiringKeys int   `json:"expiring_keys"`
	KeyLocks     int   `json:"key_locks"`
	Reads        int64 `json:"reads"`
	Writes       int64 `json:"writes"`
	Hits         int64 `json:"hits"`
	Misses       int64 `json:"misses"`
	Expirations  int64 `json:"expirations"`
}

// Option configures the Store.
type Option func(*Store)

// WithClock sets the time source used for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		locks:   make(map[string]*sync.Mutex),
		entries: cmap.New[string, string](),
		ledger:  NewLedger(),
		now:     time.Now,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// keyLock returns the per-key lock, creating it on first reference.
// The guard is held only for the map lookup, never across the
// key operation itself.
func (s *Store) keyLock(key string) *sync.Mutex {
	s.guard.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.guard.Unlock()
	return lock
}

// dropLock removes a key's lock after an expiry eviction. Called only
// after the per-key lock has been released.
func (s *Store) dropLock(key string) {
	s.guard.Lock()
	delete(s.locks, key)
	s.guard.Unlock()
}

// Write stores a value under key. A key written without an expiry
// keeps any deadline a previous write recorded; only an expiring
// write replaces it.
func (s *Store) Write(_ context.Context, key, value string) error {
	return s.write(key, value, 0, false)
}

// WriteWithExpiry stores a value under key and records an absolute
// deadline of now + ttl. A negative ttl produces a deadline in the
// past, so the key expires on its next read.
func (s *Store) WriteWithExpiry(_ context.Context, key, value string, ttl time.Duration) error {
	return s.write(key, value, ttl, true)
}

func (s *Store) write(key, value string, ttl time.Duration, hasTTL bool) error {
	lock := s.keyLock(key)

	lock.Lock()
	s.entries.Set(key, value)
	if hasTTL {
		s.ledger.Record(key, s.now().Add(ttl))
	}
	lock.Unlock()

	s.writes.Add(1)
	return nil
}

// Read returns the value stored under key.
//
// A key absent from the lock registry has never been written and
// reads as domain.ErrKeyNotFound without touching the entry map. A
// key past its deadline is evicted here: entry, deadline, and finally
// the lock itself are removed, and the read reports
// domain.ErrKeyExpired. A later read of the same key reports
// domain.ErrKeyNotFound, so expiry is observed at most once.
func (s *Store) Read(_ context.Context, key string) (string, error) {
	s.reads.Add(1)

	s.guard.Lock()
	lock, ok := s.locks[key]
	s.guard.Unlock()
	if !ok {
		s.misses.Add(1)
		return "", domain.ErrKeyNotFound
	}

	lock.Lock()
	if s.ledger.ExpiredAt(key, s.now()) {
		s.entries.Delete(key)
		s.ledger.Forget(key)
		lock.Unlock()
		s.dropLock(key)

		s.misses.Add(1)
		s.expirations.Add(1)
		return "", domain.ErrKeyExpired
	}
	value, found := s.entries.Get(key)
	lock.Unlock()

	if !found {
		// The key's entry was evicted while this reader held a stale
		// lock reference.
		s.misses.Add(1)
		return "", domain.ErrKeyNotFound
	}

	s.hits.Add(1)
	return value, nil
}

// Entry returns the stored entry for key together with its deadline,
// without evicting expired keys. Intended for introspection surfaces.
func (s *Store) Entry(_ context.Context, key string) (domain.Entry, bool) {
	value, ok := s.entries.Get(key)
	if !ok {
		return domain.Entry{}, false
	}
	entry := domain.Entry{Key: key, Value: value}
	if deadline, ok := s.ledger.Deadline(key); ok {
		entry.ExpiresAt = deadline
	}
	return entry, true
}

// Scan iterates over all stored entries. Expired entries that have
// not been read since their deadline are still visible here. Return
// false from the callback to stop iteration.
func (s *Store) Scan(fn func(domain.Entry) bool) {
	s.entries.Range(func(key, value string) bool {
		entry := domain.Entry{Key: key, Value: value}
		if deadline, ok := s.ledger.Deadline(key); ok {
			entry.ExpiresAt = deadline
		}
		return fn(entry)
	})
}

// ExpiredCount reports how many entries are past their deadline but
// still held because no read has evicted them yet.
func (s *Store) ExpiredCount() int {
	now := s.now()
	count := 0
	s.Scan(func(e domain.Entry) bool {
		if e.Expired(now) {
			count++
		}
		return true
	})
	return count
}

// PurgeExpired evicts every entry past its deadline and reports how
// many were removed. Eviction goes through the read path, so counter
// and lock-registry bookkeeping match lazy expiry exactly.
func (s *Store) PurgeExpired(ctx context.Context) int {
	now := s.now()
	var stale []string
	s.Scan(func(e domain.Entry) bool {
		if e.Expired(now) {
			stale = append(stale, e.Key)
		}
		return true
	})

	purged := 0
	for _, key := range stale {
		if _, err := s.Read(ctx, key); errors.Is(err, domain.ErrKeyExpired) {
			purged++
		}
	}
	return purged
}

// Count returns the number of stored entries, including entries past
// their deadline that no read has evicted yet.
func (s *Store) Count() int {
	return s.entries.Count()
}

// LockCount returns the size of the per-key lock registry. The
// registry is only pruned on observed expiry, so this grows with the
// set of keys ever written.
func (s *Store) LockCount() int {
	s.guard.Lock()
	defer s.guard.Unlock()
	return len(s.locks)
}

// Stats returns a snapshot of store counters.
func (s *Store) Stats() Stats {
	return Stats{
		Keys:         s.entries.Count(),
		ExpiringKeys: s.ledger.Count(),
		KeyLocks:     s.LockCount(),
		Reads:        s.reads.Load(),
		Writes:       s.writes.Load(),
		Hits:         s.hits.Load(),
		Misses:       s.misses.Load(),
		Expirations:  s.expirations.Load(),
	}
}

// Close stops the metrics update loop if RegisterMetrics started one.
func (s *Store) Close() error {
	close(s.stopCh)
	if s.metrics != nil {
		<-s.doneCh
	}
	return nil
}
