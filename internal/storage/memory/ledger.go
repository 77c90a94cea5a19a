// Package memory provides in-memory storage for Keyline.
package memory

import (
	"time"

	"github.com/keyline-io/keyline/pkg/cmap"
)

// Ledger tracks per-key absolute expiry instants. Deadlines are stored
// as unix milliseconds; a record exists only for keys written with an
// expiry, and absence means "never expires".
type Ledger struct {
	deadlines *cmap.Map[string, int64]
}

// NewLedger creates an empty expiry ledger.
func NewLedger() *Ledger {
	return &Ledger{
		deadlines: cmap.New[string, int64](),
	}
}

// Record sets the expiry instant for a key, replacing any prior record.
func (l *Ledger) Record(key string, at time.Time) {
	l.deadlines.Set(key, at.UnixMilli())
}

// Deadline returns the recorded expiry instant for a key.
func (l *Ledger) Deadline(key string) (time.Time, bool) {
	ms, ok := l.deadlines.Get(key)
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// ExpiredAt reports whether the key holds a deadline at or before now.
// A key without a record never expires.
func (l *Ledger) ExpiredAt(key string, now time.Time) bool {
	ms, ok := l.deadlines.Get(key)
	return ok && now.UnixMilli() >= ms
}

// Forget drops the expiry record for a key.
func (l *Ledger) Forget(key string) {
	l.deadlines.Delete(key)
}

// Count returns the number of keys carrying an expiry.
func (l *Ledger) Count() int {
	return l.deadlines.Count()
}

// Clear drops all expiry records.
func (l *Ledger) Clear() {
	l.deadlines.Clear()
}
