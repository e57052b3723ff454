package models

import (
	"time"
)

type SessionMode string

const (
	ModeDiagnostic SessionMode = "diagnostic"
	ModePractice   SessionMode = "practice"
	ModeTimed      SessionMode = "timed"
	ModeReview     SessionMode = "review"
)

// Attempt is one answer submission. Attempts are append-only: created once per
// submission and never mutated, the engine consumes them read-only.
type Attempt struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	StudentID   string      `json:"student_id" gorm:"not null;index;size:255"`
	QuestionID  string      `json:"question_id" gorm:"not null;index;size:64"`
	CanonicalID string      `json:"canonical_id" gorm:"index;size:64"`
	SessionID   string      `json:"session_id" gorm:"index;size:64"`
	SessionMode SessionMode `json:"session_mode" gorm:"size:32;default:practice"`

	IsCorrect    bool    `json:"is_correct"`
	SecondsSpent float64 `json:"seconds_spent"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// Canonical mirrors Question.Canonical for grouping attempts whose question
// record is a variant.
func (a Attempt) Canonical() string {
	if a.CanonicalID != "" {
		return a.CanonicalID
	}
	return a.QuestionID
}

// PracticeSession is a completed study sitting. Timed sessions feed the
// progress aggregator's recent-session snapshots.
type PracticeSession struct {
	ID          string      `json:"id" gorm:"primaryKey;size:64"`
	StudentID   string      `json:"student_id" gorm:"not null;index;size:255"`
	Mode        SessionMode `json:"mode" gorm:"size:32;index"`
	AccuracyPct float64     `json:"accuracy_pct"`
	AvgSeconds  float64     `json:"avg_seconds"`
	Questions   int         `json:"questions"`
	CompletedAt time.Time   `json:"completed_at" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
}

func (PracticeSession) TableName() string {
	return "practice_sessions"
}
