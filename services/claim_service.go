package services

import (
	"fmt"
	"strings"
	"time"

	"reward-calibration-engine/models"

	"github.com/google/uuid"
)

// ClaimConfig holds the tunable throttling knobs, loaded from env in main.
type ClaimConfig struct {
	RateLimit     int           // claims per window per key
	RateWindow    time.Duration // fixed-window size
	ClaimCooldown time.Duration // minimum gap between persisted claims
}

// DefaultClaimConfig matches production defaults: 12 claims per hour
// (high enough for streak-recovery retries) with a 5 minute cooldown.
func DefaultClaimConfig() ClaimConfig {
	return ClaimConfig{
		RateLimit:     12,
		RateWindow:    time.Hour,
		ClaimCooldown: 5 * time.Minute,
	}
}

// ClaimService orchestrates one claim: rate limit → daily reset →
// streak lifecycle → reward computation → trust scaling → cap, then
// persists the patched state plus an audit row.
type ClaimService struct {
	Store   ProfileStore
	Scorer  *TrustScorer
	Limiter *RateLimiter
	Config  ClaimConfig

	nowFn func() time.Time // overridable in tests
}

func NewClaimService(store ProfileStore, scorer *TrustScorer, limiter *RateLimiter, cfg ClaimConfig) *ClaimService {
	return &ClaimService{
		Store:   store,
		Scorer:  scorer,
		Limiter: limiter,
		Config:  cfg,
		nowFn:   time.Now,
	}
}

// ProcessClaim evaluates a single activity snapshot. Error returns are
// the pre-scoring rejections (auth, validation, throttling, storage);
// a blocked claim is a valid zero-reward decision, not an error.
func (s *ClaimService) ProcessClaim(snap *models.ActivitySnapshot) (*models.RewardDecision, error) {
	if strings.TrimSpace(snap.UserID) == "" {
		return nil, ErrAuthRequired
	}
	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}

	now := s.nowFn()

	key := RateLimitKey(snap.UserID, snap.DeviceFingerprint)
	allowed, reason, retryAfter := s.Limiter.CheckAndConsume(key, s.Config.RateLimit, s.Config.RateWindow, now)
	if !allowed {
		return nil, &RateLimitedError{Reason: reason, RetryAfter: retryAfter}
	}

	state, err := s.Store.EnsureState(snap.UserID)
	if err != nil {
		return nil, fmt.Errorf("load daily state for %s: %w", snap.UserID, err)
	}

	if s.Config.ClaimCooldown > 0 && state.LastClaimAt != nil {
		if elapsed := now.Sub(*state.LastClaimAt); elapsed < s.Config.ClaimCooldown {
			remaining := s.Config.ClaimCooldown - elapsed
			return nil, &RateLimitedError{
				Reason:     fmt.Sprintf("Please wait %d minute(s) before claiming again.", int(remaining.Minutes())+1),
				RetryAfter: remaining,
				Cooldown:   true,
			}
		}
	}

	// Resolve last-active up front: the body value when present, else
	// the stored one, so scoring and the streak machine agree.
	lastActive := snap.LastActive()
	if lastActive.IsZero() && state.LastActiveAt != nil {
		lastActive = *state.LastActiveAt
	}

	s.Scorer.RegisterDevice(snap.DeviceFingerprint, snap.UserID, now)
	trust := s.Scorer.Score(snap, lastActive, now)

	// Server-side reset state wins over whatever the client reported.
	lastReset := snap.LastReset()
	if state.LastTaskResetAt != nil {
		lastReset = *state.LastTaskResetAt
	}
	resetDue := ShouldResetDaily(now, lastReset)

	// Stored flags are authoritative; OR-ing stops replayed bodies from
	// un-claiming a task. A due reset zeroes everything for this pass.
	flags := mergeFlags(state.Flags(), snap)
	earned := maxInt(clampNonNegative(snap.DailyCreditEarned), state.DailyCreditEarned)
	if resetDue {
		flags = models.ClaimedFlags{}
		earned = 0
	}

	streakAction := ResolveStreak(now, lastActive, snap.IsStreakRecoveryRequested, flags.Login)

	decision := evaluateRewards(snap, flags, trust, streakAction, earned, resetDue, now)

	if err := s.persistOutcome(state, snap, decision, resetDue, now); err != nil {
		return nil, fmt.Errorf("persist claim for %s: %w", snap.UserID, err)
	}

	return decision, nil
}

// evaluateRewards is the pure policy core: per-task eligibility, trust
// and Pro multipliers (composed multiplicatively, each floored), streak
// recovery charge, then the progressive daily cap.
func evaluateRewards(snap *models.ActivitySnapshot, flags models.ClaimedFlags, trust models.TrustProfile, streakAction models.StreakAction, earnedSoFar int, resetDue bool, now time.Time) *models.RewardDecision {
	goals := GoalsForTier(snap.Tier())

	questions := clampNonNegative(snap.DailyQuestionsAnswered)
	tests := clampNonNegative(snap.DailyTestsFinished)
	mistakes := clampNonNegative(snap.MistakesReviewed)
	if resetDue {
		questions, tests, mistakes = 0, 0, 0
	}

	decision := &models.RewardDecision{
		Breakdown:        map[string]int{},
		TasksCompleted:   []string{},
		StreakAction:     streakAction,
		ShouldResetDaily: resetDue,
		NextResetTime:    NextResetTime(now).UnixMilli(),
		TrustMultiplier:  trust.TrustMultiplier,
		Severity:         string(trust.Severity),
		AbuseFlags:       trust.Flags,
	}

	entryFlags := flags
	raw, xpRaw := 0, int64(0)
	complete := func(task string, credits int, xp int64) {
		decision.TasksCompleted = append(decision.TasksCompleted, task)
		decision.Breakdown[task] = credits
		raw += credits
		xpRaw += xp
	}

	if !flags.Login {
		flags.Login = true
		complete(TaskLogin, RewardLogin, XPLogin)
	}
	if questions >= goals.Questions && !flags.Questions {
		flags.Questions = true
		complete(TaskQuestions, RewardQuestions, XPQuestions)
	}
	if tests >= goals.Tests && !flags.Mock {
		flags.Mock = true
		complete(TaskMock, RewardMock, XPMock)
	}
	if mistakes >= goals.Mistakes && !flags.Mistakes {
		flags.Mistakes = true
		complete(TaskMistakes, RewardMistakes, XPMistakes)
	}

	scaled := int(float64(raw) * trust.TrustMultiplier)
	xp := int64(float64(xpRaw) * trust.TrustMultiplier)
	if snap.IsPro {
		scaled = int(float64(scaled) * ProMultiplier)
	}

	var warnings []string
	actions := RecommendationsFor(trust.Flags)

	if streakAction == models.StreakRecovered {
		decision.RecoveryCost = StreakRecoveryCost
		scaled -= StreakRecoveryCost
		if scaled < 0 {
			scaled = 0
		}
		actions = append(actions, "Streak saved!")
	}
	if streakAction == models.StreakLost {
		warnings = append(warnings, "Inactivity: streak reset.")
	}

	remaining := MaxDaily(snap.IsPro) - earnedSoFar
	if remaining < 0 {
		remaining = 0
	}
	actual := scaled
	if actual > remaining {
		actual = remaining
		warnings = append(warnings, fmt.Sprintf("Daily limit reached. %d credits capped.", scaled-actual))
	}

	if trust.ShouldBlock {
		// Valid, evaluated, zero-reward outcome: nothing is granted and
		// no flags flip, so the tasks stay claimable after review. A
		// blocked claim also cannot purchase a streak recovery.
		actual, xp = 0, 0
		decision.TasksCompleted = []string{}
		decision.Breakdown = map[string]int{}
		decision.Blocked = true
		decision.RecoveryCost = 0
		if streakAction == models.StreakRecovered {
			decision.StreakAction = models.StreakNone
		}
		flags = entryFlags
		warnings = append(warnings, "Suspicious activity detected. Claim blocked.")
	}

	decision.Reward = actual
	decision.XPEarned = xp
	decision.ClaimedFlags = flags
	decision.StreakCount = NextStreakCount(decision.StreakAction, snap.StreakCount)
	decision.Warning = strings.Join(warnings, " ")
	decision.RecommendedActions = actions
	if actions == nil {
		decision.RecommendedActions = []string{}
	}

	return decision
}

// persistOutcome writes the patched daily state plus an audit row. A
// blocked claim still records its audit row and advances the claim
// cooldown, but grants nothing.
func (s *ClaimService) persistOutcome(state *models.UserDailyState, snap *models.ActivitySnapshot, decision *models.RewardDecision, resetDue bool, now time.Time) error {
	state.QuestionsAnswered = clampNonNegative(snap.DailyQuestionsAnswered)
	state.TestsFinished = clampNonNegative(snap.DailyTestsFinished)
	state.MistakesReviewed = clampNonNegative(snap.MistakesReviewed)
	if resetDue {
		state.QuestionsAnswered, state.TestsFinished, state.MistakesReviewed = 0, 0, 0
		state.DailyCreditEarned = 0
		// The reset timestamp and the flag columns must advance together:
		// a blocked claim consumes the reset too, and yesterday's flags
		// must not survive into the new day.
		state.SetFlags(models.ClaimedFlags{})
		resetAt := now
		state.LastTaskResetAt = &resetAt
	}

	if !decision.Blocked {
		state.SetFlags(decision.ClaimedFlags)
		state.DailyCreditEarned += decision.Reward
		state.TotalXP += decision.XPEarned
		for state.TotalXP >= int64(BaseXPPerLevel)*int64(state.Level)+xpForNextLevel(state.Level) {
			state.Level++
			levelUp := now
			state.LastLevelUpAt = &levelUp
		}
	}

	state.StreakCount = decision.StreakCount
	state.IsPro = snap.IsPro
	state.UserTier = string(snap.Tier())
	active := now
	state.LastActiveAt = &active
	claimed := now
	state.LastClaimAt = &claimed

	record := &models.ClaimRecord{
		ID:                uuid.NewString(),
		ExternalUserID:    snap.UserID,
		Reward:            decision.Reward,
		XPEarned:          decision.XPEarned,
		TasksCompleted:    strings.Join(decision.TasksCompleted, ","),
		TrustMultiplier:   decision.TrustMultiplier,
		Severity:          decision.Severity,
		AbuseFlags:        strings.Join(decision.AbuseFlags, ","),
		Blocked:           decision.Blocked,
		StreakAction:      string(decision.StreakAction),
		IPAddress:         snap.IPAddress,
		DeviceFingerprint: snap.DeviceFingerprint,
		CreatedAt:         now,
	}

	return s.Store.SaveOutcome(state, record)
}

// validateSnapshot enforces the request ranges before anything is scored.
func validateSnapshot(snap *models.ActivitySnapshot) error {
	checks := []struct {
		field string
		value int
		max   int
	}{
		{"dailyQuestionsAnswered", snap.DailyQuestionsAnswered, MaxQuestionsAnswered},
		{"dailyTestsFinished", snap.DailyTestsFinished, MaxTestsFinished},
		{"mistakesReviewed", snap.MistakesReviewed, MaxMistakesReviewed},
		{"streakCount", snap.StreakCount, MaxStreakCount},
		{"dailyCreditEarned", snap.DailyCreditEarned, MaxDailyCreditField},
	}
	for _, c := range checks {
		if c.value < 0 || c.value > c.max {
			return &ValidationError{Field: c.field, Reason: fmt.Sprintf("must be between 0 and %d", c.max)}
		}
	}
	if snap.AverageQuestionTime != nil {
		avg := *snap.AverageQuestionTime
		if avg < 0 || avg != avg || avg > 1e9 { // NaN and non-finite reject too
			return &ValidationError{Field: "averageQuestionTime", Reason: "must be a finite non-negative number"}
		}
	}
	return nil
}

// mergeFlags ORs stored claim flags with the request's: monotonic within
// a day, a flag once true never reverts.
func mergeFlags(stored models.ClaimedFlags, snap *models.ActivitySnapshot) models.ClaimedFlags {
	return models.ClaimedFlags{
		Login:     stored.Login || snap.TaskLoginClaimed,
		Questions: stored.Questions || snap.TaskQuestionsClaimed,
		Mock:      stored.Mock || snap.TaskMockClaimed,
		Mistakes:  stored.Mistakes || snap.TaskMistakesClaimed,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
