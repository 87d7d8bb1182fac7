package services

import (
	"log"
	"time"

	"reward-calibration-engine/models"
)

// Trust-rule thresholds. Later rules may only raise severity and shrink
// the multiplier; the quality window is the one upward adjustment.
const (
	speedAbuseMaxAvgTime   = 3.0 // seconds per question
	speedAbuseMinQuestions = 5
	lowEngagementAvgTime   = 8.0
	qualityWindowMinTime   = 15.0
	qualityWindowMaxTime   = 120.0
	botVolumePerHour       = 150.0
	multiAccountMaxUsers   = 3
	streakAnomalyDays      = 2

	speedAbuseMultiplier    = 0.2
	lowEngagementMultiplier = 0.6
	qualityBonusMultiplier  = 1.2
	botVolumeMultiplier     = 0.1
)

// TrustScorer turns an activity snapshot into a trust profile. Scoring
// itself is pure; the only shared state touched is the device registry,
// read for the multi-account signal.
type TrustScorer struct {
	Registry DeviceRegistry
}

func NewTrustScorer(registry DeviceRegistry) *TrustScorer {
	return &TrustScorer{Registry: registry}
}

// RegisterDevice records a fingerprint↔user association ahead of
// scoring. A missing fingerprint is a no-op, never an error.
func (t *TrustScorer) RegisterDevice(fingerprint, userID string, now time.Time) {
	if fingerprint == "" || t.Registry == nil {
		return
	}
	if err := t.Registry.Register(fingerprint, userID, now); err != nil {
		// Degrade to scoring without the multi-account signal.
		log.Printf("[Trust] device registration failed for %s: %v", userID, err)
	}
}

// Score evaluates the abuse rules in precedence order. Rules that depend
// on optional inputs (average question time, device fingerprint) are
// skipped when those inputs are absent. lastActive is the caller-resolved
// last activity time (body value, falling back to the stored one) so the
// anomaly rule sees the same timeline as the streak machine.
func (t *TrustScorer) Score(snap *models.ActivitySnapshot, lastActive, now time.Time) models.TrustProfile {
	profile := models.TrustProfile{
		Severity:        models.SeverityLow,
		TrustMultiplier: 1.0,
	}

	questions := clampNonNegative(snap.DailyQuestionsAnswered)

	if snap.AverageQuestionTime != nil {
		avg := *snap.AverageQuestionTime
		switch {
		case avg < speedAbuseMaxAvgTime && questions > speedAbuseMinQuestions:
			addFlag(&profile, models.FlagSuspiciousSpeed, models.SeverityHigh)
			profile.TrustMultiplier = speedAbuseMultiplier
		case avg < lowEngagementAvgTime:
			addFlag(&profile, models.FlagLowEngagement, models.SeverityMedium)
			if profile.TrustMultiplier > lowEngagementMultiplier {
				profile.TrustMultiplier = lowEngagementMultiplier
			}
		case avg >= qualityWindowMinTime && avg <= qualityWindowMaxTime:
			if profile.TrustMultiplier < qualityBonusMultiplier {
				profile.TrustMultiplier = qualityBonusMultiplier
			}
		}
	}

	if qph, ok := questionsPerHour(questions, snap.TotalSessionTime); ok && qph > botVolumePerHour {
		addFlag(&profile, models.FlagBotVolume, models.SeverityHigh)
		if profile.TrustMultiplier > botVolumeMultiplier {
			profile.TrustMultiplier = botVolumeMultiplier
		}
	}

	if snap.DeviceFingerprint != "" && t.Registry != nil {
		users, err := t.Registry.DistinctUsers(snap.DeviceFingerprint)
		if err != nil {
			log.Printf("[Trust] registry lookup failed: %v", err)
		} else if users > multiAccountMaxUsers {
			// Feeds the block decision only; multiplier untouched.
			addFlag(&profile, models.FlagMultiAccountDevice, models.SeverityHigh)
		}
	}

	if !lastActive.IsZero() && snap.StreakCount > 0 {
		days := int(now.Sub(lastActive).Hours() / 24)
		if days > streakAnomalyDays {
			addFlag(&profile, models.FlagStreakAnomaly, models.SeverityMedium)
		}
	}

	// A single high-severity signal only caps the multiplier; blocking
	// requires corroboration from a second distinct flag.
	profile.ShouldBlock = profile.Severity == models.SeverityHigh && len(profile.Flags) >= 2

	return profile
}

// questionsPerHour derives throughput from the reported session time.
// No session time means no throughput data, so the volume rule skips.
func questionsPerHour(questions, sessionSeconds int) (float64, bool) {
	if sessionSeconds <= 0 {
		return 0, false
	}
	hours := float64(sessionSeconds) / 3600.0
	const epsilon = 1.0 / 3600.0 // one second
	if hours < epsilon {
		hours = epsilon
	}
	return float64(questions) / hours, true
}

func addFlag(profile *models.TrustProfile, flag string, severity models.Severity) {
	profile.Flags = append(profile.Flags, flag)
	if severity.Rank() > profile.Severity.Rank() {
		profile.Severity = severity
	}
}

// RecommendationsFor maps fired abuse signals to the advice strings the
// client surfaces to the user.
func RecommendationsFor(flags []string) []string {
	var out []string
	for _, f := range flags {
		switch f {
		case models.FlagSuspiciousSpeed:
			out = append(out, "Take time to read each question carefully")
		case models.FlagLowEngagement:
			out = append(out, "Focus on understanding rather than speed")
		case models.FlagBotVolume:
			out = append(out, "Consider taking breaks between study sessions")
		case models.FlagMultiAccountDevice:
			out = append(out, "Use one account per device for best experience")
		case models.FlagStreakAnomaly:
			out = append(out, "Maintain consistent daily activity")
		}
	}
	return out
}
