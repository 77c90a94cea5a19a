package domain

import "time"

// Entry is one stored key-value pair as observed at read time. It is a
// value object: mutating an Entry never affects the store.
type Entry struct {
	Key   string
	Value string

	// ExpiresAt is the absolute expiry instant. The zero time means
	// the key never expires.
	ExpiresAt time.Time
}

// HasExpiry reports whether the entry carries an expiry instant.
func (e Entry) HasExpiry() bool {
	return !e.ExpiresAt.IsZero()
}

// Expired reports whether the entry is past its expiry at now. An
// entry exactly at its expiry instant counts as expired.
func (e Entry) Expired(now time.Time) bool {
	return e.HasExpiry() && !now.Before(e.ExpiresAt)
}

// TTL returns the remaining lifetime at now, truncated at zero. An
// entry without expiry reports a negative TTL.
func (e Entry) TTL(now time.Time) time.Duration {
	if !e.HasExpiry() {
		return -1
	}
	if e.Expired(now) {
		return 0
	}
	return e.ExpiresAt.Sub(now)
}
