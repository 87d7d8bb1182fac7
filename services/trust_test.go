package services

import (
	"testing"
	"time"

	"reward-calibration-engine/models"
)

func floatPtr(f float64) *float64 { return &f }

func TestScoreSpeedAbuse(t *testing.T) {
	// averageQuestionTime=2, questionsAnswered=20 → suspicious_speed,
	// severity high, multiplier 0.2.
	scorer := NewTrustScorer(NewMemoryDeviceRegistry())
	profile := scorer.Score(&models.ActivitySnapshot{
		UserID:                 "u1",
		DailyQuestionsAnswered: 20,
		AverageQuestionTime:    floatPtr(2),
	}, time.Time{}, time.Now())

	if !profile.HasFlag(models.FlagSuspiciousSpeed) {
		t.Error("expected suspicious_speed flag")
	}
	if profile.Severity != models.SeverityHigh {
		t.Errorf("severity = %s, want high", profile.Severity)
	}
	if profile.TrustMultiplier != 0.2 {
		t.Errorf("trustMultiplier = %v, want 0.2", profile.TrustMultiplier)
	}
	if profile.ShouldBlock {
		t.Error("a single high-severity signal must not hard-block on its own")
	}
}

func TestScoreTimingRules(t *testing.T) {
	tests := []struct {
		name      string
		avgTime   *float64
		questions int
		wantMult  float64
		wantFlag  string
		wantSev   models.Severity
	}{
		{"low engagement", floatPtr(5), 3, 0.6, models.FlagLowEngagement, models.SeverityMedium},
		{"quality window lower edge", floatPtr(15), 10, 1.2, "", models.SeverityLow},
		{"quality window upper edge", floatPtr(120), 10, 1.2, "", models.SeverityLow},
		{"neutral pacing", floatPtr(10), 10, 1.0, "", models.SeverityLow},
		{"very slow is neutral", floatPtr(300), 10, 1.0, "", models.SeverityLow},
		{"missing avg time skips rules", nil, 100, 1.0, "", models.SeverityLow},
		{"fast but few questions", floatPtr(2), 3, 0.6, models.FlagLowEngagement, models.SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := NewTrustScorer(NewMemoryDeviceRegistry())
			profile := scorer.Score(&models.ActivitySnapshot{
				UserID:                 "u1",
				DailyQuestionsAnswered: tt.questions,
				AverageQuestionTime:    tt.avgTime,
			}, time.Time{}, time.Now())

			if profile.TrustMultiplier != tt.wantMult {
				t.Errorf("trustMultiplier = %v, want %v", profile.TrustMultiplier, tt.wantMult)
			}
			if tt.wantFlag != "" && !profile.HasFlag(tt.wantFlag) {
				t.Errorf("missing flag %s (got %v)", tt.wantFlag, profile.Flags)
			}
			if tt.wantFlag == "" && len(profile.Flags) != 0 {
				t.Errorf("unexpected flags %v", profile.Flags)
			}
			if profile.Severity != tt.wantSev {
				t.Errorf("severity = %s, want %s", profile.Severity, tt.wantSev)
			}
		})
	}
}

func TestScoreBotVolume(t *testing.T) {
	scorer := NewTrustScorer(NewMemoryDeviceRegistry())
	// 200 questions in a one-hour session → 200/h, over the 150/h line.
	profile := scorer.Score(&models.ActivitySnapshot{
		UserID:                 "u1",
		DailyQuestionsAnswered: 200,
		TotalSessionTime:       3600,
		AverageQuestionTime:    floatPtr(18), // quality pacing cannot rescue volume abuse
	}, time.Time{}, time.Now())

	if !profile.HasFlag(models.FlagBotVolume) {
		t.Fatalf("expected bot_volume flag, got %v", profile.Flags)
	}
	if profile.TrustMultiplier != 0.1 {
		t.Errorf("trustMultiplier = %v, want 0.1", profile.TrustMultiplier)
	}
	if profile.Severity != models.SeverityHigh {
		t.Errorf("severity = %s, want high", profile.Severity)
	}
}

func TestScoreVolumeSkippedWithoutSessionTime(t *testing.T) {
	scorer := NewTrustScorer(NewMemoryDeviceRegistry())
	profile := scorer.Score(&models.ActivitySnapshot{
		UserID:                 "u1",
		DailyQuestionsAnswered: 500,
		TotalSessionTime:       0,
	}, time.Time{}, time.Now())

	if profile.HasFlag(models.FlagBotVolume) {
		t.Error("volume rule must skip when no session time was reported")
	}
}

func TestScoreMultiAccountDevice(t *testing.T) {
	registry := NewMemoryDeviceRegistry()
	scorer := NewTrustScorer(registry)
	now := time.Now()

	for _, uid := range []string{"u1", "u2", "u3"} {
		scorer.RegisterDevice("fp-shared", uid, now)
	}
	profile := scorer.Score(&models.ActivitySnapshot{UserID: "u3", DeviceFingerprint: "fp-shared"}, time.Time{}, now)
	if profile.HasFlag(models.FlagMultiAccountDevice) {
		t.Fatal("3 users on one device is still within tolerance")
	}

	scorer.RegisterDevice("fp-shared", "u4", now)
	profile = scorer.Score(&models.ActivitySnapshot{UserID: "u4", DeviceFingerprint: "fp-shared"}, time.Time{}, now)
	if !profile.HasFlag(models.FlagMultiAccountDevice) {
		t.Fatal("4 distinct users on one device must flag multi_account_device")
	}
	if profile.Severity != models.SeverityHigh {
		t.Errorf("severity = %s, want high", profile.Severity)
	}
	if profile.TrustMultiplier != 1.0 {
		t.Errorf("multi-account must not alter the multiplier directly, got %v", profile.TrustMultiplier)
	}
}

func TestScoreStreakAnomaly(t *testing.T) {
	scorer := NewTrustScorer(NewMemoryDeviceRegistry())
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	// lastActive arrives pre-resolved (body value or the stored row),
	// so a body that omits lastActiveDate still feeds the rule.
	profile := scorer.Score(&models.ActivitySnapshot{
		UserID:      "u1",
		StreakCount: 10,
	}, now.Add(-72*time.Hour), now)
	if !profile.HasFlag(models.FlagStreakAnomaly) {
		t.Error("3 idle days with a live streak must flag streak_anomaly")
	}
	if profile.Severity != models.SeverityMedium {
		t.Errorf("severity = %s, want medium", profile.Severity)
	}

	// Zero streak means nothing to replay.
	profile = scorer.Score(&models.ActivitySnapshot{
		UserID:      "u1",
		StreakCount: 0,
	}, now.Add(-72*time.Hour), now)
	if profile.HasFlag(models.FlagStreakAnomaly) {
		t.Error("streak_anomaly must not fire with streakCount == 0")
	}
}

func TestShouldBlockRequiresTwoFlags(t *testing.T) {
	scorer := NewTrustScorer(NewMemoryDeviceRegistry())
	// Speed abuse plus bot volume: two distinct high-severity signals.
	profile := scorer.Score(&models.ActivitySnapshot{
		UserID:                 "u1",
		DailyQuestionsAnswered: 200,
		TotalSessionTime:       3600,
		AverageQuestionTime:    floatPtr(2),
	}, time.Time{}, time.Now())

	if len(profile.Flags) < 2 {
		t.Fatalf("expected two flags, got %v", profile.Flags)
	}
	if !profile.ShouldBlock {
		t.Error("high severity with two distinct flags must block")
	}
	if profile.TrustMultiplier != 0.1 {
		t.Errorf("trustMultiplier = %v, want 0.1 (volume floor)", profile.TrustMultiplier)
	}
}

func TestRecommendationsFor(t *testing.T) {
	recs := RecommendationsFor([]string{models.FlagSuspiciousSpeed, models.FlagStreakAnomaly})
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}
}
