package engine

import (
	"sort"
	"time"

	"github.com/DMALUVM/satprep-planner/internal/models"
)

// ProgressInput is the full history snapshot the aggregator folds.
type ProgressInput struct {
	Attempts    []models.Attempt
	Sessions    []models.PracticeSession
	MasteryRows []models.SkillMastery
	Pool        []models.Question
	Missions    []models.DailyMission
	Now         time.Time
}

// ComputeProgressMetrics folds a student's history into score estimates,
// domain breakdowns, weak-skill lists, the study streak and recent timed
// session snapshots.
func (e *Engine) ComputeProgressMetrics(in ProgressInput) models.ProgressMetrics {
	byID := make(map[string]models.Question, len(in.Pool))
	skillDomain := make(map[string]models.QuestionDomain, len(in.Pool))
	for _, q := range in.Pool {
		byID[q.ID] = q
		skillDomain[q.Skill] = q.Domain
	}

	var overall, math, verbal tallyAcc
	perDomain := make(map[models.QuestionDomain]*domainAcc)

	for _, a := range in.Attempts {
		overall.add(a)
		q, ok := byID[a.QuestionID]
		if !ok {
			q, ok = byID[a.Canonical()]
		}
		if !ok {
			continue
		}
		switch {
		case e.tuning.IsMathDomain(q.Domain):
			math.add(a)
		case e.tuning.IsVerbalDomain(q.Domain):
			verbal.add(a)
		}
		d := perDomain[q.Domain]
		if d == nil {
			d = &domainAcc{}
			perDomain[q.Domain] = d
		}
		d.attempts++
		if a.IsCorrect {
			d.correct++
		}
	}

	breakdown := make(map[models.QuestionDomain]models.DomainStat, len(perDomain))
	for domain, acc := range perDomain {
		breakdown[domain] = models.DomainStat{
			Attempts:    acc.attempts,
			Correct:     acc.correct,
			AccuracyPct: pct(acc.correct, acc.attempts),
		}
	}

	metrics := models.ProgressMetrics{
		Overall:         overall.tally(),
		Math:            math.tally(),
		Verbal:          verbal.tally(),
		DomainBreakdown: breakdown,
		StreakDays:      e.studyStreak(in.Missions, in.Now),
		RecentTimed:     recentTimedSessions(in.Sessions),
		GeneratedAt:     in.Now,
		AttemptCount:    len(in.Attempts),
	}

	if metrics.Math.Attempts > 0 {
		raw := e.tuning.MathScoreBase +
			e.tuning.MathAccuracySlope*metrics.Math.AccuracyPct +
			maxFloat(0, e.tuning.MathPaceAnchor-metrics.Math.PaceSeconds)*e.tuning.MathPaceSlope
		metrics.PredictedMathScore = round(clamp(raw, e.tuning.ScoreMin, e.tuning.ScoreMax))
	}
	if metrics.Verbal.Attempts > 0 {
		raw := e.tuning.VerbalScoreBase +
			e.tuning.VerbalAccuracySlope*metrics.Verbal.AccuracyPct +
			maxFloat(0, e.tuning.VerbalPaceAnchor-metrics.Verbal.PaceSeconds)*e.tuning.VerbalPaceSlope
		metrics.PredictedVerbalScore = round(clamp(raw, e.tuning.ScoreMin, e.tuning.ScoreMax))
	}

	var mathRows, verbalRows []models.SkillMastery
	for _, row := range in.MasteryRows {
		domain, known := skillDomain[row.Skill]
		switch {
		case known && e.tuning.IsVerbalDomain(domain):
			verbalRows = append(verbalRows, row)
		default:
			// Unknown skills default to the math side, matching the
			// planner's math-first selection pools.
			mathRows = append(mathRows, row)
		}
	}

	weakMath := SortByWeakness(mathRows)
	if len(weakMath) > 5 {
		weakMath = weakMath[:5]
	}
	metrics.WeakMathSkills = toWeakStats(weakMath)

	var verbalWeak, verbalStrong []models.SkillMastery
	for _, row := range verbalRows {
		if row.TotalAttempts >= e.tuning.GrowthAttempts && row.MasteryScore < e.tuning.GrowthMastery {
			verbalWeak = append(verbalWeak, row)
		}
		if row.TotalAttempts >= e.tuning.StrongAttempts && row.MasteryScore >= e.tuning.StrongMastery {
			verbalStrong = append(verbalStrong, row)
		}
	}
	verbalWeak = SortByWeakness(verbalWeak)
	if len(verbalWeak) > 6 {
		verbalWeak = verbalWeak[:6]
	}
	sort.SliceStable(verbalStrong, func(i, j int) bool {
		return verbalStrong[i].MasteryScore > verbalStrong[j].MasteryScore
	})
	if len(verbalStrong) > 6 {
		verbalStrong = verbalStrong[:6]
	}
	metrics.WeakVerbalSkills = toWeakStats(verbalWeak)
	metrics.StrongVerbalAreas = toWeakStats(verbalStrong)

	return metrics
}

// studyStreak counts consecutive completed-mission days ending yesterday,
// capped at the tuned window. Today is ignored: a session in progress should
// not break the streak mid-day.
func (e *Engine) studyStreak(missions []models.DailyMission, now time.Time) int {
	byDate := make(map[string]models.MissionStatus, len(missions))
	for _, m := range missions {
		byDate[m.PlanDate] = m.Status
	}
	streak := 0
	for i := 1; i <= e.tuning.StreakCapDays; i++ {
		key := DayKey(now.AddDate(0, 0, -i))
		if byDate[key] != models.MissionComplete {
			break
		}
		streak++
	}
	return streak
}

func recentTimedSessions(sessions []models.PracticeSession) []models.TimedSessionSnapshot {
	var timed []models.PracticeSession
	for _, s := range sessions {
		if s.Mode == models.ModeTimed {
			timed = append(timed, s)
		}
	}
	sort.SliceStable(timed, func(i, j int) bool {
		return timed[i].CompletedAt.Before(timed[j].CompletedAt)
	})
	if len(timed) > 5 {
		timed = timed[len(timed)-5:]
	}
	out := make([]models.TimedSessionSnapshot, len(timed))
	for i, s := range timed {
		out[i] = models.TimedSessionSnapshot{
			ID:          s.ID,
			AccuracyPct: s.AccuracyPct,
			AvgSeconds:  s.AvgSeconds,
			CompletedAt: s.CompletedAt,
		}
	}
	return out
}

type tallyAcc struct {
	attempts int
	correct  int
	seconds  float64
}

func (t *tallyAcc) add(a models.Attempt) {
	t.attempts++
	if a.IsCorrect {
		t.correct++
	}
	t.seconds += a.SecondsSpent
}

func (t *tallyAcc) tally() models.Tally {
	out := models.Tally{Attempts: t.attempts, Correct: t.correct}
	if t.attempts > 0 {
		out.AccuracyPct = clamp(pct(t.correct, t.attempts), 0, 100)
		out.PaceSeconds = t.seconds / float64(t.attempts)
	}
	return out
}

type domainAcc struct {
	attempts int
	correct  int
}

func toWeakStats(rows []models.SkillMastery) []models.WeakSkillStat {
	out := make([]models.WeakSkillStat, len(rows))
	for i, row := range rows {
		out[i] = models.WeakSkillStat{
			Skill:         row.Skill,
			MasteryScore:  row.MasteryScore,
			TotalAttempts: row.TotalAttempts,
		}
	}
	return out
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
