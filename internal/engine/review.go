package engine

import (
	"sort"
	"time"

	"github.com/DMALUVM/satprep-planner/internal/models"
)

type reviewCandidate struct {
	question models.Question
	at       time.Time
}

// ComputeReviewQueue derives the ordered queue of questions due for review
// from a student's recent attempts. Attempts are grouped by canonical id; the
// group's latest attempt decides correctness and pace, the group's size is the
// attempt count fed to the interval policy. When nothing is formally due the
// queue falls back to recently wrong or slow items, oldest miss first, and the
// returned flag is true. Groups whose question cannot be resolved are dropped.
func (e *Engine) ComputeReviewQueue(recent []models.Attempt, byID map[string]models.Question, now time.Time) ([]models.Question, bool) {
	groups := make(map[string][]models.Attempt)
	keys := make([]string, 0)
	for _, a := range recent {
		key := a.Canonical()
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], a)
	}

	var due, fallback []reviewCandidate
	for _, key := range keys {
		group := groups[key]

		// Latest attempt wins; on equal timestamps the later slice
		// position wins, which makes the result independent of map order.
		latest := group[0]
		for _, a := range group[1:] {
			if !a.CreatedAt.Before(latest.CreatedAt) {
				latest = a
			}
		}

		q, ok := byID[latest.QuestionID]
		if !ok {
			q, ok = byID[latest.CanonicalID]
		}
		if !ok {
			continue
		}

		days := e.ReviewIntervalDays(len(group), latest.IsCorrect, latest.SecondsSpent, q.TargetSeconds)
		if days != nil {
			dueAt := latest.CreatedAt.AddDate(0, 0, *days)
			if !dueAt.After(now) {
				due = append(due, reviewCandidate{question: q, at: dueAt})
				continue
			}
		}
		if !latest.IsCorrect || e.Slow(latest.SecondsSpent, q.TargetSeconds) {
			fallback = append(fallback, reviewCandidate{question: q, at: latest.CreatedAt})
		}
	}

	if len(due) > 0 {
		return sortCandidates(due), false
	}
	return sortCandidates(fallback), true
}

func sortCandidates(items []reviewCandidate) []models.Question {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].at.Before(items[j].at)
	})
	out := make([]models.Question, len(items))
	for i, c := range items {
		out[i] = c.question
	}
	return out
}
