package services

import (
	"time"

	"reward-calibration-engine/models"
)

// Streak lifecycle windows, in whole elapsed days since last activity.
// d <= 1 keeps the streak, 1 < d <= 2 is the recovery window, d > 2
// loses it. Recovery is gated on an explicit request and an unclaimed
// login task so a replayed claim body cannot buy a recovery twice.
const streakRecoveryWindowDays = 2

// ResolveStreak computes the streak action for one claim. It is pure and
// idempotent for identical inputs, and never transitions backward: a
// lost streak stays lost until an explicit new streak starts elsewhere.
func ResolveStreak(now, lastActive time.Time, recoveryRequested, loginClaimed bool) models.StreakAction {
	if lastActive.IsZero() {
		// Fresh user, nothing to repair.
		return models.StreakMaintained
	}

	days := int(now.Sub(lastActive).Hours() / 24)

	switch {
	case days <= 1:
		return models.StreakMaintained
	case days <= streakRecoveryWindowDays:
		if recoveryRequested && !loginClaimed {
			return models.StreakRecovered
		}
		// Still recoverable: caller may retry with a recovery request
		// before the window closes.
		return models.StreakNone
	default:
		return models.StreakLost
	}
}

// NextStreakCount applies an action to the reported streak. The engine
// only reports the result; the profile owner persists it.
func NextStreakCount(action models.StreakAction, current int) int {
	current = clampNonNegative(current)
	switch action {
	case models.StreakLost:
		return 0
	default:
		return current
	}
}
