package models

import "time"

// ClaimRecord is the append-only audit row written for every evaluated
// claim, including blocked and fully-capped ones. Pruned after 30 days
// by the retention scheduler.
type ClaimRecord struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`

	Reward         int    `json:"reward"`
	XPEarned       int64  `json:"xp_earned"`
	TasksCompleted string `json:"tasks_completed"` // comma-joined task names

	TrustMultiplier float64 `json:"trust_multiplier"`
	Severity        string  `json:"severity"`
	AbuseFlags      string  `json:"abuse_flags"` // comma-joined signal names
	Blocked         bool    `json:"blocked" gorm:"index"`

	StreakAction string `json:"streak_action"`

	IPAddress         string `json:"ip_address"`
	DeviceFingerprint string `json:"device_fingerprint"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
