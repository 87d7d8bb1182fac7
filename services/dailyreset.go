package services

import "time"

// ShouldResetDaily reports whether per-day counters must be zeroed
// before evaluation. The boundary is calendar-day equality in UTC so
// every client sees the same reset moment regardless of locale. A zero
// lastReset (never reset) always triggers one.
func ShouldResetDaily(now, lastReset time.Time) bool {
	if lastReset.IsZero() {
		return true
	}
	ny, nm, nd := now.UTC().Date()
	ly, lm, ld := lastReset.UTC().Date()
	return ny != ly || nm != lm || nd != ld
}

// NextResetTime returns the next UTC midnight after now.
func NextResetTime(now time.Time) time.Time {
	u := now.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Add(24 * time.Hour)
}
