package engine

import (
	"math"
	"time"

	"github.com/DMALUVM/satprep-planner/internal/models"
)

// AttemptOutcome is the slice of one attempt the mastery tracker consumes.
type AttemptOutcome struct {
	IsCorrect     bool
	SecondsSpent  float64
	TargetSeconds float64
}

// Slow reports whether the attempt overshot the question's expected solve
// time by more than the tuned slack factor.
func (e *Engine) Slow(secondsSpent, targetSeconds float64) bool {
	if targetSeconds <= 0 {
		targetSeconds = e.tuning.DefaultTargetSeconds
	}
	return secondsSpent > e.tuning.SlowFactor*targetSeconds
}

// UpdateMastery folds one attempt outcome into a skill's mastery row and
// returns the fully replaced row. Passing nil for existing starts the skill
// from its lazy-creation defaults. The input row is not mutated.
func (e *Engine) UpdateMastery(existing *models.SkillMastery, outcome AttemptOutcome, now time.Time) *models.SkillMastery {
	prev := models.SkillMastery{MasteryScore: 50}
	if existing != nil {
		prev = *existing
	}

	next := prev
	next.TotalAttempts = prev.TotalAttempts + 1
	next.CorrectAttempts = prev.CorrectAttempts
	if outcome.IsCorrect {
		next.CorrectAttempts++
	}

	if prev.TotalAttempts == 0 {
		next.AvgSeconds = outcome.SecondsSpent
	} else {
		next.AvgSeconds = (prev.AvgSeconds*float64(prev.TotalAttempts) + outcome.SecondsSpent) / float64(next.TotalAttempts)
	}

	target := outcome.TargetSeconds
	if target <= 0 {
		target = e.tuning.DefaultTargetSeconds
	}

	accuracy := 100 * float64(next.CorrectAttempts) / float64(next.TotalAttempts)
	paceScore := clamp(100-e.tuning.PaceSlope*(next.AvgSeconds-target), e.tuning.PaceFloor, 100)
	next.MasteryScore = clamp(e.tuning.AccuracyWeight*accuracy+e.tuning.PaceWeight*paceScore, 0, 100)

	volume := math.Min(100, e.tuning.ConfidencePerAttempt*float64(next.TotalAttempts))
	next.Confidence = clamp(e.tuning.ConfidenceCarry*prev.Confidence+e.tuning.ConfidenceGain*volume, 0, 100)

	seen := now
	next.LastSeenAt = &seen
	next.DueForReviewAt = nil
	if days := e.ReviewIntervalDays(next.TotalAttempts, outcome.IsCorrect, outcome.SecondsSpent, target); days != nil {
		due := now.AddDate(0, 0, *days)
		next.DueForReviewAt = &due
	}

	return &next
}

// ReviewIntervalDays returns the spaced-review interval in days, or nil when
// no review is needed (a correct answer at an acceptable pace). The tier key
// is the skill's lifetime attempt count, not a review-repetition count.
func (e *Engine) ReviewIntervalDays(totalAttempts int, isCorrect bool, secondsSpent, targetSeconds float64) *int {
	if isCorrect && !e.Slow(secondsSpent, targetSeconds) {
		return nil
	}
	days := e.tuning.ReviewLateDays
	switch {
	case totalAttempts <= e.tuning.ReviewEarlyAttempts:
		days = e.tuning.ReviewEarlyDays
	case totalAttempts <= e.tuning.ReviewMidAttempts:
		days = e.tuning.ReviewMidDays
	}
	return &days
}
