// Package ratelimit provides a wrapper around golang.org/x/time/rate.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket sized in requests per minute.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a new rate limiter.
// requestsPerMinute specifies how many requests are allowed per minute.
func New(requestsPerMinute int) *Limiter {
	rps := float64(requestsPerMinute) / 60.0
	burst := requestsPerMinute / 10 // Allow burst of 10% of rate limit
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Allow reports whether an event may happen now.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// KeyedLimiter keeps one Limiter per key, e.g. per client IP. Keys idle for
// longer than the idle TTL are dropped on the next sweep.
type KeyedLimiter struct {
	requestsPerMinute int
	idleTTL           time.Duration

	mu        sync.Mutex
	entries   map[string]*keyedEntry
	lastSweep time.Time
	now       func() time.Time
}

type keyedEntry struct {
	limiter  *Limiter
	lastSeen time.Time
}

// NewKeyed creates a per-key limiter. A non-positive requestsPerMinute
// disables limiting.
func NewKeyed(requestsPerMinute int, idleTTL time.Duration) *KeyedLimiter {
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &KeyedLimiter{
		requestsPerMinute: requestsPerMinute,
		idleTTL:           idleTTL,
		entries:           make(map[string]*keyedEntry),
		now:               time.Now,
	}
}

// Allow reports whether key may proceed now.
func (k *KeyedLimiter) Allow(key string) bool {
	if k.requestsPerMinute <= 0 {
		return true
	}

	k.mu.Lock()
	now := k.now()
	if now.Sub(k.lastSweep) > k.idleTTL {
		for id, e := range k.entries {
			if now.Sub(e.lastSeen) > k.idleTTL {
				delete(k.entries, id)
			}
		}
		k.lastSweep = now
	}

	e, ok := k.entries[key]
	if !ok {
		e = &keyedEntry{limiter: New(k.requestsPerMinute)}
		k.entries[key] = e
	}
	e.lastSeen = now
	k.mu.Unlock()

	return e.limiter.Allow()
}

// Len returns the number of tracked keys.
func (k *KeyedLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
