package engine

import (
	"testing"
	"time"

	"github.com/DMALUVM/satprep-planner/internal/models"
)

func reviewFixture() (map[string]models.Question, time.Time) {
	byID := map[string]models.Question{
		"q1": {ID: "q1", CanonicalID: "q1", Skill: "linear_equations", TargetSeconds: 95},
		"q2": {ID: "q2", CanonicalID: "q2", Skill: "quadratics", TargetSeconds: 95},
		"q3": {ID: "q3", CanonicalID: "q3", Skill: "ratios", TargetSeconds: 95},
	}
	now := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	return byID, now
}

func TestComputeReviewQueue_DueOrdering(t *testing.T) {
	e := testEngine()
	byID, now := reviewFixture()

	// Both wrong on first contact: 1-day interval. q2 missed earlier, so it
	// comes due earlier and must sort first.
	attempts := []models.Attempt{
		{QuestionID: "q1", CanonicalID: "q1", IsCorrect: false, SecondsSpent: 60, CreatedAt: now.AddDate(0, 0, -2)},
		{QuestionID: "q2", CanonicalID: "q2", IsCorrect: false, SecondsSpent: 60, CreatedAt: now.AddDate(0, 0, -4)},
	}

	queue, fallback := e.ComputeReviewQueue(attempts, byID, now)
	if fallback {
		t.Fatal("fallback = true, want a formally due queue")
	}
	if len(queue) != 2 {
		t.Fatalf("queue length = %d, want 2", len(queue))
	}
	if queue[0].ID != "q2" || queue[1].ID != "q1" {
		t.Errorf("queue order = [%s %s], want [q2 q1]", queue[0].ID, queue[1].ID)
	}
}

func TestComputeReviewQueue_LatestAttemptDecides(t *testing.T) {
	e := testEngine()
	byID, now := reviewFixture()

	// Two attempts on the same question; the later one is correct and fast,
	// but the group has 2 lifetime attempts and the latest was 1h ago, so the
	// correct outcome suppresses any interval entirely.
	attempts := []models.Attempt{
		{QuestionID: "q1", CanonicalID: "q1", IsCorrect: false, SecondsSpent: 200, CreatedAt: now.Add(-48 * time.Hour)},
		{QuestionID: "q1", CanonicalID: "q1", IsCorrect: true, SecondsSpent: 50, CreatedAt: now.Add(-1 * time.Hour)},
	}

	queue, fallback := e.ComputeReviewQueue(attempts, byID, now)
	if len(queue) != 0 {
		t.Errorf("queue = %v, want empty", ids(queue))
	}
	if !fallback {
		t.Error("fallback = false, want true for an empty due list")
	}
}

func TestComputeReviewQueue_FallbackOldestMissFirst(t *testing.T) {
	e := testEngine()
	byID, now := reviewFixture()

	// Misses too recent to be due yet: 1-day interval not elapsed.
	attempts := []models.Attempt{
		{QuestionID: "q1", CanonicalID: "q1", IsCorrect: false, SecondsSpent: 60, CreatedAt: now.Add(-2 * time.Hour)},
		{QuestionID: "q3", CanonicalID: "q3", IsCorrect: false, SecondsSpent: 60, CreatedAt: now.Add(-6 * time.Hour)},
		{QuestionID: "q2", CanonicalID: "q2", IsCorrect: true, SecondsSpent: 50, CreatedAt: now.Add(-3 * time.Hour)},
	}

	queue, fallback := e.ComputeReviewQueue(attempts, byID, now)
	if !fallback {
		t.Fatal("fallback = false, want true")
	}
	if len(queue) != 2 {
		t.Fatalf("queue length = %d, want 2 (the correct fast answer is excluded)", len(queue))
	}
	if queue[0].ID != "q3" || queue[1].ID != "q1" {
		t.Errorf("queue order = [%s %s], want oldest miss first [q3 q1]", queue[0].ID, queue[1].ID)
	}
}

func TestComputeReviewQueue_UnresolvableGroupDropped(t *testing.T) {
	e := testEngine()
	byID, now := reviewFixture()

	attempts := []models.Attempt{
		{QuestionID: "ghost", CanonicalID: "ghost", IsCorrect: false, SecondsSpent: 60, CreatedAt: now.AddDate(0, 0, -3)},
		{QuestionID: "q1", CanonicalID: "q1", IsCorrect: false, SecondsSpent: 60, CreatedAt: now.AddDate(0, 0, -3)},
	}

	queue, _ := e.ComputeReviewQueue(attempts, byID, now)
	if len(queue) != 1 || queue[0].ID != "q1" {
		t.Errorf("queue = %v, want only q1", ids(queue))
	}
}

func TestComputeReviewQueue_VariantsGroupByCanonical(t *testing.T) {
	e := testEngine()
	byID, now := reviewFixture()
	byID["q1v"] = models.Question{ID: "q1v", CanonicalID: "q1", IsVariant: true, Skill: "linear_equations", TargetSeconds: 95}

	// Three lifetime attempts across the variant family puts the interval in
	// the 3-day tier; the latest miss was 3 days ago, so the family is due.
	attempts := []models.Attempt{
		{QuestionID: "q1", CanonicalID: "q1", IsCorrect: false, SecondsSpent: 60, CreatedAt: now.AddDate(0, 0, -9)},
		{QuestionID: "q1v", CanonicalID: "q1", IsCorrect: true, SecondsSpent: 150, CreatedAt: now.AddDate(0, 0, -6)},
		{QuestionID: "q1v", CanonicalID: "q1", IsCorrect: false, SecondsSpent: 70, CreatedAt: now.AddDate(0, 0, -3)},
	}

	queue, fallback := e.ComputeReviewQueue(attempts, byID, now)
	if fallback {
		t.Fatal("fallback = true, want due queue")
	}
	if len(queue) != 1 || queue[0].ID != "q1v" {
		t.Errorf("queue = %v, want the latest variant q1v", ids(queue))
	}
}

func TestComputeReviewQueue_TieBreakLaterPositionWins(t *testing.T) {
	e := testEngine()
	byID, now := reviewFixture()
	ts := now.AddDate(0, 0, -2)

	attempts := []models.Attempt{
		{QuestionID: "q1", CanonicalID: "q1", IsCorrect: false, SecondsSpent: 60, CreatedAt: ts},
		{QuestionID: "q1", CanonicalID: "q1", IsCorrect: true, SecondsSpent: 50, CreatedAt: ts},
	}

	queue, _ := e.ComputeReviewQueue(attempts, byID, now)
	if len(queue) != 0 {
		t.Errorf("queue = %v, want empty: the later correct attempt wins the tie", ids(queue))
	}
}
