package models

import "time"

// UserDailyState is the engine's persisted view of one user's per-day
// counters, claim flags and streak (denormalized for single-row reads).
// The claim flags here are authoritative: request flags are OR-ed with
// them before evaluation so a replayed body cannot un-claim a task.
type UserDailyState struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service

	// Per-day counters (zeroed at the UTC midnight boundary)
	QuestionsAnswered int `json:"questions_answered" gorm:"default:0"`
	TestsFinished     int `json:"tests_finished" gorm:"default:0"`
	MistakesReviewed  int `json:"mistakes_reviewed" gorm:"default:0"`
	DailyCreditEarned int `json:"daily_credit_earned" gorm:"default:0"`

	TaskLoginClaimed     bool `json:"task_login_claimed" gorm:"default:false"`
	TaskQuestionsClaimed bool `json:"task_questions_claimed" gorm:"default:false"`
	TaskMockClaimed      bool `json:"task_mock_claimed" gorm:"default:false"`
	TaskMistakesClaimed  bool `json:"task_mistakes_claimed" gorm:"default:false"`

	// Streak + progression
	StreakCount int   `json:"streak_count" gorm:"default:0"`
	TotalXP     int64 `json:"total_xp" gorm:"default:0"`
	Level       int   `json:"level" gorm:"default:1"`

	IsPro    bool   `json:"is_pro" gorm:"default:false"`
	UserTier string `json:"user_tier" gorm:"default:'Bronze'"`

	LastActiveAt    *time.Time `json:"last_active_at,omitempty"`
	LastTaskResetAt *time.Time `json:"last_task_reset_at,omitempty"`
	LastClaimAt     *time.Time `json:"last_claim_at,omitempty"`
	LastLevelUpAt   *time.Time `json:"last_level_up_at,omitempty"`

	Timestamps
}

// Flags returns the stored claim flags as a ClaimedFlags value.
func (s *UserDailyState) Flags() ClaimedFlags {
	return ClaimedFlags{
		Login:     s.TaskLoginClaimed,
		Questions: s.TaskQuestionsClaimed,
		Mock:      s.TaskMockClaimed,
		Mistakes:  s.TaskMistakesClaimed,
	}
}

// SetFlags writes a ClaimedFlags value back onto the stored columns.
func (s *UserDailyState) SetFlags(f ClaimedFlags) {
	s.TaskLoginClaimed = f.Login
	s.TaskQuestionsClaimed = f.Questions
	s.TaskMockClaimed = f.Mock
	s.TaskMistakesClaimed = f.Mistakes
}
