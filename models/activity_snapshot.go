package models

import "time"

// ActivitySnapshot is the per-claim activity report sent by the client.
// Timestamps travel as unix milliseconds on the wire; unknown extra JSON
// fields are ignored by the decoder.
type ActivitySnapshot struct {
	UserID                 string `json:"userId"`
	DailyQuestionsAnswered int    `json:"dailyQuestionsAnswered"`
	DailyTestsFinished     int    `json:"dailyTestsFinished"`
	MistakesReviewed       int    `json:"mistakesReviewed"`
	StreakCount            int    `json:"streakCount"`
	DailyCreditEarned      int    `json:"dailyCreditEarned"`

	TaskLoginClaimed     bool `json:"taskLoginClaimed"`
	TaskQuestionsClaimed bool `json:"taskQuestionsClaimed"`
	TaskMockClaimed      bool `json:"taskMockClaimed"`
	TaskMistakesClaimed  bool `json:"taskMistakesClaimed"`

	LastActiveDate int64 `json:"lastActiveDate"` // unix millis, 0 = unknown
	LastTaskReset  int64 `json:"lastTaskReset"`  // unix millis, 0 = never

	TotalSessionTime    int      `json:"totalSessionTime"` // seconds
	AverageQuestionTime *float64 `json:"averageQuestionTime,omitempty"`

	IsPro    bool   `json:"isPro"`
	UserTier string `json:"userTier"`

	DeviceFingerprint         string `json:"deviceFingerprint,omitempty"`
	IPAddress                 string `json:"-"` // set server-side, never trusted from the body
	IsStreakRecoveryRequested bool   `json:"isStreakRecoveryRequested"`
}

// LastActive converts the wire timestamp; zero value means the client
// reported no prior activity.
func (s *ActivitySnapshot) LastActive() time.Time {
	if s.LastActiveDate <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.LastActiveDate)
}

// LastReset converts the wire timestamp of the last daily counter reset.
func (s *ActivitySnapshot) LastReset() time.Time {
	if s.LastTaskReset <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.LastTaskReset)
}

// Tier returns the parsed tier, failing closed to Bronze.
func (s *ActivitySnapshot) Tier() Tier {
	return ParseTier(s.UserTier)
}
