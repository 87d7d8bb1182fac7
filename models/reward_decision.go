package models

// StreakAction is the streak lifecycle outcome reported on each claim.
type StreakAction string

const (
	StreakMaintained StreakAction = "maintained"
	StreakRecovered  StreakAction = "recovered"
	StreakLost       StreakAction = "lost"
	StreakNone       StreakAction = "none"
)

// ClaimedFlags mirrors the per-task claim state after evaluation.
// Flags are monotonic within a day: once true they never revert until
// the next daily reset.
type ClaimedFlags struct {
	Login     bool `json:"login"`
	Questions bool `json:"questions"`
	Mock      bool `json:"mock"`
	Mistakes  bool `json:"mistakes"`
}

// RewardDecision is the engine's verdict for one claim attempt.
type RewardDecision struct {
	Reward         int            `json:"reward"`
	XPEarned       int64          `json:"xpEarned"`
	TasksCompleted []string       `json:"tasksCompleted"`
	Breakdown      map[string]int `json:"breakdown"`
	ClaimedFlags   ClaimedFlags   `json:"claimedFlags"`

	StreakAction StreakAction `json:"streakAction"`
	StreakCount  int          `json:"streakCount"`
	RecoveryCost int          `json:"recoveryCost,omitempty"`

	ShouldResetDaily bool  `json:"shouldResetDaily"`
	NextResetTime    int64 `json:"nextResetTime"` // unix millis, next UTC midnight

	TrustMultiplier float64  `json:"trustMultiplier"`
	Severity        string   `json:"severity,omitempty"`
	AbuseFlags      []string `json:"abuseFlags,omitempty"`
	Blocked         bool     `json:"blocked,omitempty"`

	Warning            string   `json:"warning,omitempty"`
	RecommendedActions []string `json:"recommendedActions"`
}
