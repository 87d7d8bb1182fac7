package services

import (
	"errors"
	"fmt"
	"time"
)

// ErrAuthRequired is returned when a claim arrives without a userId.
// It is an authentication failure, not an abuse signal.
var ErrAuthRequired = errors.New("authorization required")

// ValidationError rejects out-of-range counters before any scoring runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RateLimitedError denies a claim before any CPU work, with guidance on
// when to retry. Covers both the fixed-window limiter and the per-user
// claim cooldown; Cooldown distinguishes the two on the wire.
type RateLimitedError struct {
	Reason     string
	RetryAfter time.Duration
	Cooldown   bool
}

func (e *RateLimitedError) Error() string {
	return e.Reason
}
