package models

// Severity grades how suspicious a claim looks.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities so scoring rules can only raise, never lower.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Abuse signal names emitted by the trust scorer.
const (
	FlagSuspiciousSpeed    = "suspicious_speed"
	FlagLowEngagement      = "low_engagement"
	FlagBotVolume          = "bot_volume"
	FlagMultiAccountDevice = "multi_account_device"
	FlagStreakAnomaly      = "streak_anomaly"
)

// TrustProfile is the scorer's verdict on a single activity snapshot.
// It is derived per claim and never persisted by the engine.
type TrustProfile struct {
	Severity        Severity `json:"severity"`
	Flags           []string `json:"flags"`
	TrustMultiplier float64  `json:"trustMultiplier"`
	ShouldBlock     bool     `json:"shouldBlock"`
}

// HasFlag reports whether the named abuse signal fired.
func (p *TrustProfile) HasFlag(name string) bool {
	for _, f := range p.Flags {
		if f == name {
			return true
		}
	}
	return false
}
