package services

import (
	"fmt"
	"sync"
	"time"
)

// RateLimitEntry tracks claims for one key inside the current window.
type RateLimitEntry struct {
	Count         int
	WindowResetAt time.Time
}

// RateLimiter is a fixed-window counter keyed by user (or user:device).
// Fixed windows are slightly burst-tolerant at boundaries; that is fine
// here because the limiter is a secondary defense in front of the trust
// scorer, not the sole abuse control.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*RateLimitEntry
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{entries: make(map[string]*RateLimitEntry)}
}

// RateLimitKey builds the limiter key: per-device when a fingerprint is
// supplied, per-user otherwise.
func RateLimitKey(userID, deviceFingerprint string) string {
	if deviceFingerprint != "" {
		return userID + ":" + deviceFingerprint
	}
	return userID
}

// CheckAndConsume admits or denies one claim for key. Mutations per key
// are linearized under the store mutex so two concurrent claims cannot
// both slip past count == limit-1. It never errors; an unknown key is
// simply a fresh window.
func (r *RateLimiter) CheckAndConsume(key string, limit int, window time.Duration, now time.Time) (allowed bool, reason string, retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok || now.After(entry.WindowResetAt) {
		r.entries[key] = &RateLimitEntry{Count: 1, WindowResetAt: now.Add(window)}
		return true, "", 0
	}

	if entry.Count >= limit {
		remaining := entry.WindowResetAt.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		return false, fmt.Sprintf("Calibration limit reached. Try again in %d minute(s).", int(remaining.Minutes())+1), remaining
	}

	entry.Count++
	return true, "", 0
}

// Sweep drops entries whose window has passed. Correctness never depends
// on the sweep: stale entries are replaced on next access anyway.
func (r *RateLimiter) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, entry := range r.entries {
		if now.After(entry.WindowResetAt) {
			delete(r.entries, key)
			removed++
		}
	}
	return removed
}
