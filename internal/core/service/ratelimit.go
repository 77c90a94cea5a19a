// Package service provides domain services for Keyline.
package service

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiterRegistry manages rate limiters keyed by client address.
type RateLimiterRegistry struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

// NewRateLimiterRegistry creates a new RateLimiterRegistry.
func NewRateLimiterRegistry() *RateLimiterRegistry {
	return &RateLimiterRegistry{
		limiters: make(map[string]*rate.Limiter),
	}
}

// GetOrCreate retrieves an existing rate limiter or creates a new one.
func (r *RateLimiterRegistry) GetOrCreate(addr string, rateLimit int) *rate.Limiter {
	r.mu.RLock()
	limiter, exists := r.limiters[addr]
	r.mu.RUnlock()

	if exists {
		return limiter
	}

	// Create new limiter
	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := r.limiters[addr]; exists {
		return limiter
	}

	// rate.Limit(rateLimit) events per second, burst = rateLimit
	limiter = rate.NewLimiter(rate.Limit(rateLimit), rateLimit)
	r.limiters[addr] = limiter

	return limiter
}

// Allow reports whether one more event from addr fits under the limit.
// A non-positive limit disables limiting and always allows.
func (r *RateLimiterRegistry) Allow(addr string, rateLimit int) bool {
	if rateLimit <= 0 {
		return true
	}
	return r.GetOrCreate(addr, rateLimit).Allow()
}

// Delete removes the rate limiter for a specific address.
func (r *RateLimiterRegistry) Delete(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.limiters, addr)
}

// Clear removes all rate limiters.
func (r *RateLimiterRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.limiters = make(map[string]*rate.Limiter)
}

// Size returns the number of tracked addresses.
func (r *RateLimiterRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.limiters)
}
