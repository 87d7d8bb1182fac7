package services

import (
	"math"

	"reward-calibration-engine/models"
)

// TierGoals are the per-day completion thresholds for one tier.
type TierGoals struct {
	Questions int
	Tests     int
	Mistakes  int
}

// tierGoalTable is total over models.Tier; ParseTier already fails closed
// to Bronze so no fallback-by-accident is possible here.
var tierGoalTable = map[models.Tier]TierGoals{
	models.TierBronze:   {Questions: 20, Tests: 1, Mistakes: 10},
	models.TierSilver:   {Questions: 25, Tests: 1, Mistakes: 12},
	models.TierGold:     {Questions: 30, Tests: 2, Mistakes: 15},
	models.TierPlatinum: {Questions: 35, Tests: 2, Mistakes: 18},
}

// GoalsForTier returns the daily goals for a tier.
func GoalsForTier(tier models.Tier) TierGoals {
	if g, ok := tierGoalTable[tier]; ok {
		return g
	}
	return tierGoalTable[models.TierBronze]
}

// Task names used in decisions, breakdowns and audit rows.
const (
	TaskLogin     = "login"
	TaskQuestions = "questions"
	TaskMock      = "mock"
	TaskMistakes  = "mistakes"
)

// Flat credit rewards per task. Volume never scales these — farming more
// questions past the goal earns nothing extra.
const (
	RewardLogin     = 5
	RewardQuestions = 10
	RewardMock      = 15
	RewardMistakes  = 10
)

// XP granted alongside credits, scaled by trust but never capped.
const (
	XPLogin     = 50
	XPQuestions = 15
	XPMock      = 150
	XPMistakes  = 50
)

// Daily credit ceilings and multipliers.
const (
	MaxDailyCredits    = 80
	MaxDailyCreditsPro = 200
	ProMultiplier      = 1.5
	StreakRecoveryCost = 50
)

// BaseXPPerLevel feeds the level curve: level n→n+1 costs
// floor(BaseXPPerLevel * n^1.2) on top of the flat base.
const BaseXPPerLevel = 100

func xpForNextLevel(currentLevel int) int64 {
	if currentLevel < 1 {
		currentLevel = 1
	}
	return int64(float64(BaseXPPerLevel) * math.Pow(float64(currentLevel), 1.2))
}

// MaxDaily returns the progressive cap for a user.
func MaxDaily(isPro bool) int {
	if isPro {
		return MaxDailyCreditsPro
	}
	return MaxDailyCredits
}

// Range-validation ceilings for the claim endpoint. Anything above these
// is rejected before scoring runs.
const (
	MaxQuestionsAnswered = 1000
	MaxTestsFinished     = 100
	MaxMistakesReviewed  = 500
	MaxStreakCount       = 365
	MaxDailyCreditField  = 1000
)

// clampNonNegative fails closed toward zero reward on malformed counts.
func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
