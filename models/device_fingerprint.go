package models

import "time"

// DeviceFingerprintLink records one fingerprint↔user association for
// multi-account detection. A fingerprint seen by more than a handful of
// distinct users marks every claim from that device as suspicious.
type DeviceFingerprintLink struct {
	ID             string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Fingerprint    string    `gorm:"index:idx_fp_user,unique;not null" json:"fingerprint"`
	ExternalUserID string    `gorm:"index:idx_fp_user,unique;not null" json:"external_user_id"`
	LastSeenAt     time.Time `json:"last_seen_at" gorm:"index"`
}
