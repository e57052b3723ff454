package engine

import (
	"testing"
	"time"

	"github.com/DMALUVM/satprep-planner/internal/models"
)

func progressPool() []models.Question {
	return []models.Question{
		{ID: "m1", CanonicalID: "m1", Domain: models.DomainAlgebra, Skill: "linear_equations", TargetSeconds: 95},
		{ID: "m2", CanonicalID: "m2", Domain: models.DomainProblemSolving, Skill: "ratios", TargetSeconds: 95},
		{ID: "v1", CanonicalID: "v1", Domain: models.DomainReading, Skill: "command_of_evidence", TargetSeconds: 75},
	}
}

func TestComputeProgressMetrics_ZeroAttempts(t *testing.T) {
	e := testEngine()

	m := e.ComputeProgressMetrics(ProgressInput{Pool: progressPool(), Now: time.Now()})

	if m.PredictedMathScore != 0 || m.PredictedVerbalScore != 0 {
		t.Errorf("predicted scores = %d/%d, want 0/0 with no attempts", m.PredictedMathScore, m.PredictedVerbalScore)
	}
	if m.Overall.Attempts != 0 || m.Overall.AccuracyPct != 0 {
		t.Errorf("overall = %+v, want zero", m.Overall)
	}
	if m.StreakDays != 0 {
		t.Errorf("streak = %d, want 0", m.StreakDays)
	}
}

func TestComputeProgressMetrics_ScoresInRange(t *testing.T) {
	e := testEngine()
	now := time.Now()

	tests := []struct {
		name     string
		correct  bool
		seconds  float64
	}{
		{"all wrong and slow", false, 600},
		{"all correct and fast", true, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts []models.Attempt
			for i := 0; i < 10; i++ {
				attempts = append(attempts,
					models.Attempt{QuestionID: "m1", IsCorrect: tt.correct, SecondsSpent: tt.seconds, CreatedAt: now},
					models.Attempt{QuestionID: "v1", IsCorrect: tt.correct, SecondsSpent: tt.seconds, CreatedAt: now},
				)
			}
			m := e.ComputeProgressMetrics(ProgressInput{Attempts: attempts, Pool: progressPool(), Now: now})
			if m.PredictedMathScore < 200 || m.PredictedMathScore > 800 {
				t.Errorf("math score = %d, want within [200,800]", m.PredictedMathScore)
			}
			if m.PredictedVerbalScore < 200 || m.PredictedVerbalScore > 800 {
				t.Errorf("verbal score = %d, want within [200,800]", m.PredictedVerbalScore)
			}
		})
	}
}

func TestComputeProgressMetrics_DomainBreakdown(t *testing.T) {
	e := testEngine()
	now := time.Now()

	attempts := []models.Attempt{
		{QuestionID: "m1", IsCorrect: true, SecondsSpent: 60, CreatedAt: now},
		{QuestionID: "m1", IsCorrect: false, SecondsSpent: 120, CreatedAt: now},
		{QuestionID: "m2", IsCorrect: true, SecondsSpent: 80, CreatedAt: now},
		{QuestionID: "v1", IsCorrect: true, SecondsSpent: 70, CreatedAt: now},
		{QuestionID: "unknown", IsCorrect: false, SecondsSpent: 90, CreatedAt: now},
	}

	m := e.ComputeProgressMetrics(ProgressInput{Attempts: attempts, Pool: progressPool(), Now: now})

	if m.Overall.Attempts != 5 {
		t.Errorf("overall attempts = %d, want 5 (unresolvable still counts overall)", m.Overall.Attempts)
	}
	if m.Math.Attempts != 3 || m.Math.Correct != 2 {
		t.Errorf("math = %+v, want 3 attempts 2 correct", m.Math)
	}
	if m.Verbal.Attempts != 1 || m.Verbal.Correct != 1 {
		t.Errorf("verbal = %+v, want 1 attempt 1 correct", m.Verbal)
	}

	alg := m.DomainBreakdown[models.DomainAlgebra]
	if alg.Attempts != 2 || alg.Correct != 1 || alg.AccuracyPct != 50 {
		t.Errorf("algebra breakdown = %+v", alg)
	}
}

func TestStudyStreak(t *testing.T) {
	e := testEngine()
	now := time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)

	complete := func(daysAgo int) models.DailyMission {
		return models.DailyMission{PlanDate: DayKey(now.AddDate(0, 0, -daysAgo)), Status: models.MissionComplete}
	}

	tests := []struct {
		name     string
		missions []models.DailyMission
		want     int
	}{
		{"no missions", nil, 0},
		{
			"yesterday incomplete",
			[]models.DailyMission{
				{PlanDate: DayKey(now.AddDate(0, 0, -1)), Status: models.MissionPending},
				complete(2), complete(3),
			},
			0,
		},
		{"three day run", []models.DailyMission{complete(1), complete(2), complete(3)}, 3},
		{
			"gap stops the walk",
			[]models.DailyMission{complete(1), complete(2), complete(4), complete(5)},
			2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.studyStreak(tt.missions, now); got != tt.want {
				t.Errorf("streak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStudyStreak_CappedAt60(t *testing.T) {
	e := testEngine()
	now := time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)

	var missions []models.DailyMission
	for i := 1; i <= 90; i++ {
		missions = append(missions, models.DailyMission{
			PlanDate: DayKey(now.AddDate(0, 0, -i)),
			Status:   models.MissionComplete,
		})
	}
	if got := e.studyStreak(missions, now); got != 60 {
		t.Errorf("streak = %d, want the 60-day cap", got)
	}
}

func TestRecentTimedSessions(t *testing.T) {
	e := testEngine()
	now := time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)

	var sessions []models.PracticeSession
	for i := 0; i < 8; i++ {
		sessions = append(sessions, models.PracticeSession{
			ID:          DayKey(now.AddDate(0, 0, -i)),
			Mode:        models.ModeTimed,
			AccuracyPct: float64(50 + i),
			CompletedAt: now.AddDate(0, 0, -i),
		})
	}
	sessions = append(sessions, models.PracticeSession{ID: "practice", Mode: models.ModePractice, CompletedAt: now})

	m := e.ComputeProgressMetrics(ProgressInput{Sessions: sessions, Pool: progressPool(), Now: now})

	if len(m.RecentTimed) != 5 {
		t.Fatalf("recent timed = %d, want 5", len(m.RecentTimed))
	}
	for i := 1; i < len(m.RecentTimed); i++ {
		if m.RecentTimed[i].CompletedAt.Before(m.RecentTimed[i-1].CompletedAt) {
			t.Error("recent timed sessions not in ascending completion order")
		}
	}
	if m.RecentTimed[4].ID != DayKey(now) {
		t.Errorf("latest snapshot = %s, want today's session", m.RecentTimed[4].ID)
	}
}

func TestComputeProgressMetrics_VerbalBands(t *testing.T) {
	e := testEngine()

	rows := []models.SkillMastery{
		{Skill: "command_of_evidence", MasteryScore: 55, TotalAttempts: 6},  // weak
		{Skill: "command_of_evidence2", MasteryScore: 65, TotalAttempts: 2}, // too little evidence
		{Skill: "linear_equations", MasteryScore: 30, TotalAttempts: 10},    // math side
	}
	pool := append(progressPool(), models.Question{
		ID: "v2", CanonicalID: "v2", Domain: models.DomainReading, Skill: "command_of_evidence2",
	})

	m := e.ComputeProgressMetrics(ProgressInput{MasteryRows: rows, Pool: pool, Now: time.Now()})

	if len(m.WeakVerbalSkills) != 1 || m.WeakVerbalSkills[0].Skill != "command_of_evidence" {
		t.Errorf("weak verbal = %+v", m.WeakVerbalSkills)
	}
	if len(m.WeakMathSkills) != 1 || m.WeakMathSkills[0].Skill != "linear_equations" {
		t.Errorf("weak math = %+v", m.WeakMathSkills)
	}
}
