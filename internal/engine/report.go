package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/DMALUVM/satprep-planner/internal/models"
)

// DeriveRisks turns the mission history and aggregated metrics into guardian
// risk flags.
func (e *Engine) DeriveRisks(missions []models.DailyMission, metrics models.ProgressMetrics, now time.Time) []string {
	risks := []string{}

	byDate := make(map[string]models.MissionStatus, len(missions))
	for _, m := range missions {
		byDate[m.PlanDate] = m.Status
	}
	yesterday := DayKey(now.AddDate(0, 0, -1))
	dayBefore := DayKey(now.AddDate(0, 0, -2))
	if byDate[yesterday] != models.MissionComplete && byDate[dayBefore] != models.MissionComplete {
		risks = append(risks, "Missed two consecutive daily missions")
	}

	if n := len(metrics.RecentTimed); n >= 3 {
		last3 := metrics.RecentTimed[n-3:]
		if last3[0].AccuracyPct > last3[1].AccuracyPct && last3[1].AccuracyPct > last3[2].AccuracyPct {
			risks = append(risks, "Timed accuracy declining across the last three sets")
		}
	}

	for _, skill := range append(append([]models.WeakSkillStat{}, metrics.WeakMathSkills...), metrics.WeakVerbalSkills...) {
		if skill.MasteryScore < e.tuning.PersistentWeakMastery && skill.TotalAttempts >= e.tuning.PersistentWeakAttempts {
			risks = append(risks, fmt.Sprintf("Persistent weakness in %s", skill.Skill))
		}
	}

	return risks
}

// BuildWeeklyReport assembles the guardian-facing highlight/risk/action
// summary from aggregated metrics plus derived risks.
func (e *Engine) BuildWeeklyReport(studentID, weekStart string, metrics models.ProgressMetrics, risks []string) *models.WeeklyReport {
	highlights := []string{
		fmt.Sprintf("Predicted scores: Math %d, Verbal %d", metrics.PredictedMathScore, metrics.PredictedVerbalScore),
		fmt.Sprintf("Weekly accuracy: %.0f%% over %d questions", metrics.Overall.AccuracyPct, metrics.Overall.Attempts),
		fmt.Sprintf("Average pace: %.0f seconds per question", metrics.Overall.PaceSeconds),
		fmt.Sprintf("Study streak: %d day(s)", metrics.StreakDays),
	}

	actions := []string{}
	for i, skill := range metrics.WeakMathSkills {
		if i >= 2 {
			break
		}
		actions = append(actions, fmt.Sprintf("Drill %s 20 min/day until mastery > 70", skill.Skill))
	}
	for i, skill := range metrics.WeakVerbalSkills {
		if i >= 2 {
			break
		}
		actions = append(actions, fmt.Sprintf("Practice %s 15 min/day with evidence-first elimination", skill.Skill))
	}
	actions = append(actions,
		"Complete at least 4 timed sets this week",
		"Review missed questions at +1, +3 and +7 days",
	)

	if risks == nil {
		risks = []string{}
	}

	return &models.WeeklyReport{
		StudentID:  studentID,
		WeekStart:  weekStart,
		Highlights: highlights,
		Risks:      risks,
		ScoreTrend: models.ScoreTrend{
			Math:   metrics.PredictedMathScore,
			Verbal: metrics.PredictedVerbalScore,
		},
		DomainBreakdown:    metrics.DomainBreakdown,
		RecommendedActions: actions,
		ReportPayload:      metrics,
	}
}

// RenderReport produces the fixed-section plain-text document for a weekly
// report. Pure formatting: one report object maps to exactly one document.
func RenderReport(r *models.WeeklyReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Weekly Progress Report\n")
	fmt.Fprintf(&b, "Student: %s\nWeek of: %s\n\n", r.StudentID, r.WeekStart)

	b.WriteString("## Highlights\n")
	for _, h := range r.Highlights {
		fmt.Fprintf(&b, "- %s\n", h)
	}

	b.WriteString("\n## Risks\n")
	if len(r.Risks) == 0 {
		b.WriteString("- None this week\n")
	}
	for _, risk := range r.Risks {
		fmt.Fprintf(&b, "- %s\n", risk)
	}

	b.WriteString("\n## Domain Breakdown\n")
	domains := make([]string, 0, len(r.DomainBreakdown))
	for d := range r.DomainBreakdown {
		domains = append(domains, string(d))
	}
	sort.Strings(domains)
	for _, d := range domains {
		stat := r.DomainBreakdown[models.QuestionDomain(d)]
		fmt.Fprintf(&b, "- %s: %d/%d correct (%.0f%%)\n", d, stat.Correct, stat.Attempts, stat.AccuracyPct)
	}

	b.WriteString("\n## Recommended Actions\n")
	for _, a := range r.RecommendedActions {
		fmt.Fprintf(&b, "- %s\n", a)
	}

	return b.String()
}
