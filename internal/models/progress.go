package models

import (
	"time"
)

// Tally accumulates attempt outcomes for one slice of history (overall, one
// test section, or one content domain).
type Tally struct {
	Attempts    int     `json:"attempts"`
	Correct     int     `json:"correct"`
	AccuracyPct float64 `json:"accuracy_pct"`
	PaceSeconds float64 `json:"pace_seconds"`
}

// DomainStat is the per-domain row of the progress breakdown.
type DomainStat struct {
	Attempts    int     `json:"attempts"`
	Correct     int     `json:"correct"`
	AccuracyPct float64 `json:"accuracy_pct"`
}

// TimedSessionSnapshot is a compact projection of a completed timed session.
type TimedSessionSnapshot struct {
	ID          string    `json:"id"`
	AccuracyPct float64   `json:"accuracy_pct"`
	AvgSeconds  float64   `json:"avg_seconds"`
	CompletedAt time.Time `json:"completed_at"`
}

// WeakSkillStat is one entry of the weak-skill list.
type WeakSkillStat struct {
	Skill         string  `json:"skill"`
	MasteryScore  float64 `json:"mastery_score"`
	TotalAttempts int     `json:"total_attempts"`
}

// ProgressMetrics is the aggregator's full output: score estimates, domain
// breakdowns, weak-skill lists, study streak and recent timed sessions. It is
// also persisted verbatim as a weekly report's audit payload.
type ProgressMetrics struct {
	Overall Tally `json:"overall"`
	Math    Tally `json:"math"`
	Verbal  Tally `json:"verbal"`

	DomainBreakdown map[QuestionDomain]DomainStat `json:"domain_breakdown"`

	PredictedMathScore   int `json:"predicted_math_score"`
	PredictedVerbalScore int `json:"predicted_verbal_score"`

	WeakMathSkills    []WeakSkillStat `json:"weak_math_skills"`
	WeakVerbalSkills  []WeakSkillStat `json:"weak_verbal_skills"`
	StrongVerbalAreas []WeakSkillStat `json:"strong_verbal_areas"`

	StreakDays   int                    `json:"streak_days"`
	RecentTimed  []TimedSessionSnapshot `json:"recent_timed_sessions"`
	GeneratedAt  time.Time              `json:"generated_at"`
	AttemptCount int                    `json:"attempt_count"`
}
