package services

import (
	"testing"
	"time"

	"reward-calibration-engine/models"
)

func TestResolveStreak(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name              string
		lastActive        time.Time
		recoveryRequested bool
		loginClaimed      bool
		want              models.StreakAction
	}{
		{"fresh user", time.Time{}, false, false, models.StreakMaintained},
		{"same day", now.Add(-2 * time.Hour), false, false, models.StreakMaintained},
		{"one day ago", now.Add(-30 * time.Hour), false, false, models.StreakMaintained},
		{"recoverable, no request", now.Add(-40 * time.Hour), false, false, models.StreakNone},
		{"recoverable, requested", now.Add(-40 * time.Hour), true, false, models.StreakRecovered},
		{"recovery blocked by claimed login", now.Add(-40 * time.Hour), true, true, models.StreakNone},
		{"three days, no request", now.Add(-72 * time.Hour), false, false, models.StreakLost},
		{"past the window, request ignored", now.Add(-96 * time.Hour), true, false, models.StreakLost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveStreak(now, tt.lastActive, tt.recoveryRequested, tt.loginClaimed)
			if got != tt.want {
				t.Errorf("ResolveStreak() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolveStreakIsIdempotent(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	lastActive := now.Add(-40 * time.Hour)

	first := ResolveStreak(now, lastActive, true, false)
	second := ResolveStreak(now, lastActive, true, false)
	if first != second {
		t.Errorf("identical inputs produced %s then %s", first, second)
	}
}

func TestNextStreakCount(t *testing.T) {
	tests := []struct {
		action  models.StreakAction
		current int
		want    int
	}{
		{models.StreakMaintained, 7, 7},
		{models.StreakRecovered, 7, 7},
		{models.StreakNone, 7, 7},
		{models.StreakLost, 7, 0},
		{models.StreakMaintained, -3, 0}, // malformed counts clamp
	}

	for _, tt := range tests {
		if got := NextStreakCount(tt.action, tt.current); got != tt.want {
			t.Errorf("NextStreakCount(%s, %d) = %d, want %d", tt.action, tt.current, got, tt.want)
		}
	}
}
