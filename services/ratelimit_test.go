package services

import (
	"sync"
	"testing"
	"time"
)

func TestRateLimiterFairness(t *testing.T) {
	limiter := NewRateLimiter()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	window := time.Hour
	limit := 10

	for i := 0; i < limit; i++ {
		allowed, _, _ := limiter.CheckAndConsume("user-1", limit, window, now)
		if !allowed {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}

	allowed, reason, retryAfter := limiter.CheckAndConsume("user-1", limit, window, now.Add(30*time.Minute))
	if allowed {
		t.Fatal("11th call within the window should be denied")
	}
	if reason == "" {
		t.Error("denial must carry a human-readable reason")
	}
	if retryAfter != 30*time.Minute {
		t.Errorf("retryAfter = %s, want 30m", retryAfter)
	}

	// Past the window the counter resets and admits a full batch again.
	later := now.Add(window + time.Second)
	for i := 0; i < limit; i++ {
		allowed, _, _ := limiter.CheckAndConsume("user-1", limit, window, later)
		if !allowed {
			t.Fatalf("call %d after window reset should be allowed", i+1)
		}
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewRateLimiter()
	now := time.Now()

	for i := 0; i < 3; i++ {
		limiter.CheckAndConsume("user-1", 3, time.Hour, now)
	}
	if allowed, _, _ := limiter.CheckAndConsume("user-1", 3, time.Hour, now); allowed {
		t.Fatal("user-1 should be exhausted")
	}
	if allowed, _, _ := limiter.CheckAndConsume("user-2", 3, time.Hour, now); !allowed {
		t.Fatal("user-2 must not be affected by user-1's window")
	}
}

func TestRateLimitKey(t *testing.T) {
	if got := RateLimitKey("u1", ""); got != "u1" {
		t.Errorf("key without fingerprint = %q, want %q", got, "u1")
	}
	if got := RateLimitKey("u1", "fp9"); got != "u1:fp9" {
		t.Errorf("key with fingerprint = %q, want %q", got, "u1:fp9")
	}
}

func TestRateLimiterConcurrentAdmission(t *testing.T) {
	limiter := NewRateLimiter()
	now := time.Now()
	limit := 10

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _, _ := limiter.CheckAndConsume("user-1", limit, time.Hour, now); allowed {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != limit {
		t.Errorf("admitted %d concurrent claims, want exactly %d", admitted, limit)
	}
}

func TestRateLimiterSweep(t *testing.T) {
	limiter := NewRateLimiter()
	now := time.Now()

	limiter.CheckAndConsume("stale", 5, time.Minute, now)
	limiter.CheckAndConsume("fresh", 5, time.Hour, now)

	removed := limiter.Sweep(now.Add(2 * time.Minute))
	if removed != 1 {
		t.Errorf("sweep removed %d entries, want 1", removed)
	}

	// The fresh key must still carry its count.
	for i := 0; i < 4; i++ {
		limiter.CheckAndConsume("fresh", 5, time.Hour, now.Add(2*time.Minute))
	}
	if allowed, _, _ := limiter.CheckAndConsume("fresh", 5, time.Hour, now.Add(2*time.Minute)); allowed {
		t.Error("fresh key should be exhausted after 5 total claims")
	}
}
