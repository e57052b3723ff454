package engine

import (
	"time"

	"github.com/DMALUVM/satprep-planner/internal/models"
)

// MissionInput is the snapshot the planner works from. All collections are
// already filtered to one student by the caller.
type MissionInput struct {
	Pool           []models.Question
	ByID           map[string]models.Question
	MasteryRows    []models.SkillMastery
	RecentAttempts []models.Attempt
	StudentID      string
	PlanDate       string
	TargetMinutes  int
	Now            time.Time
}

// GenerateDailyMission selects question sets for the four activity blocks and
// splits the session minutes across them proportionally to the requested
// length. The block minutes always sum to the clamped target; the review-lock
// block absorbs rounding slack and carries a 5-minute floor, with overflow
// shaved from the larger blocks when the floor binds on short sessions.
// Question identity within each draw comes from the engine's random source.
func (e *Engine) GenerateDailyMission(in MissionInput) *models.DailyMission {
	target := clampInt(in.TargetMinutes, e.tuning.MinSessionMinutes, e.tuning.MaxSessionMinutes)
	scale := float64(target) / float64(e.tuning.BaselineMinutes)

	mathPool := e.mathQuestions(in.Pool)
	rows := restrictToPool(in.MasteryRows, mathPool)
	sorted := SortByWeakness(rows)
	bands := e.ClassifyBands(sorted)

	weakest, second, third := e.pickFocusSkills(sorted, bands, mathPool)

	deprioritized := bands.Strong
	if len(deprioritized) > e.tuning.MaxDeprioritized {
		deprioritized = deprioritized[:e.tuning.MaxDeprioritized]
	}
	excluded := toSet(deprioritized)

	dueSkills := make(map[string]bool)
	for _, row := range rows {
		if row.DueBy(in.Now) {
			dueSkills[row.Skill] = true
		}
	}

	warmupSize := maxInt(1, round(3*scale))
	weakSize := maxInt(2, round(8*scale))
	secondSize := maxInt(1, round(5*scale))
	timedCore := maxInt(1, round(3*scale))
	timedMaint := maxInt(0, round(1*scale))
	timedCap := maxInt(2, round(4*scale))

	used := make(map[string]bool)

	// Warmup: the spaced-review queue in order, topped up from due skills.
	queue, _ := e.ComputeReviewQueue(in.RecentAttempts, in.ByID, in.Now)
	warmup := takeInOrder(queue, warmupSize, used)
	if len(warmup) < warmupSize {
		duePool := filterQuestions(mathPool, func(q models.Question) bool {
			return dueSkills[q.Skill]
		})
		warmup = append(warmup, e.drawRandom(duePool, warmupSize-len(warmup), used)...)
	}

	// Adaptive drill: weakest-skill work plus a second-skill stretch set.
	weakQs := e.drawRandom(e.skillSlice(mathPool, []string{weakest, second}, 1, 4, excluded), weakSize, used)
	secondQs := e.drawRandom(e.skillSlice(mathPool, []string{second, third}, 2, 5, excluded), secondSize, used)

	// Timed block: focus-skill core, growth-skill maintenance, then a mixed
	// fill from the whole pool, never past the cap.
	timed := e.drawRandom(e.skillSlice(mathPool, []string{weakest, second, third}, 2, 5, excluded), timedCore, used)
	if timedMaint > 0 && len(bands.Growth) > 0 {
		timed = append(timed, e.drawRandom(e.skillSlice(mathPool, bands.Growth, 2, 5, excluded), timedMaint, used)...)
	}
	if remaining := timedCap - len(timed); remaining > 0 {
		fill := filterQuestions(mathPool, func(q models.Question) bool {
			return q.Difficulty >= 2 && q.Difficulty <= 5 && !excluded[q.Skill]
		})
		timed = append(timed, e.drawRandom(fill, remaining, used)...)
	}
	if len(timed) > timedCap {
		timed = timed[:timedCap]
	}

	warmupMin, drillMin, timedMin, reviewMin := allocateMinutes(target, scale)

	drill := append(append([]models.Question{}, weakQs...), secondQs...)

	mission := &models.DailyMission{
		StudentID:     in.StudentID,
		PlanDate:      in.PlanDate,
		TargetMinutes: target,
		Status:        models.MissionPending,
		Tasks: []models.MissionTask{
			{
				Type:          models.TaskWarmup,
				Label:         "Warm-up: spaced review",
				QuestionIDs:   ids(warmup),
				TargetMinutes: warmupMin,
				Guidance:      "Redo these from memory before checking the steps.",
			},
			{
				Type:          models.TaskDrill,
				Label:         "Adaptive drill: " + weakest,
				QuestionIDs:   ids(drill),
				TargetMinutes: drillMin,
				Guidance:      "Slow is fine here. Write out every step.",
			},
			{
				Type:          models.TaskTimedMixed,
				Label:         "Timed mixed set",
				QuestionIDs:   ids(timed),
				TargetMinutes: timedMin,
				Guidance:      "Test pace: mark and skip anything over 90 seconds.",
			},
			{
				Type:          models.TaskReviewLock,
				Label:         "Review and lock it in",
				QuestionIDs:   []string{},
				TargetMinutes: reviewMin,
				Guidance:      "Re-explain each miss out loud, then log the trap that got you.",
			},
		},
		Summary: models.CompletionSummary{},
		Metadata: models.MissionMetadata{
			FocusSkills:        []string{weakest, second, third},
			DeprioritizedSkill: deprioritized,
			DueSkillCount:      len(dueSkills),
			AdaptiveQuestions:  len(warmup) + len(drill) + len(timed),
			WarmupPct:          round(100 * float64(warmupMin) / float64(target)),
			DrillPct:           round(100 * float64(drillMin) / float64(target)),
			TimedPct:           round(100 * float64(timedMin) / float64(target)),
			GeneratedAt:        in.Now,
		},
	}

	return mission
}

// allocateMinutes splits the session across the four blocks. The review block
// absorbs rounding slack; when its floor pushes the total over target the
// difference comes out of drill, then timed, then warmup.
func allocateMinutes(target int, scale float64) (warmup, drill, timed, review int) {
	warmup = round(9 * scale)
	drill = round(20 * scale)
	timed = round(18 * scale)
	review = maxInt(5, target-warmup-drill-timed)

	over := warmup + drill + timed + review - target
	for _, block := range []*int{&drill, &timed, &warmup} {
		if over <= 0 {
			break
		}
		take := minInt(over, *block-1)
		*block -= take
		over -= take
	}
	return warmup, drill, timed, review
}

func (e *Engine) pickFocusSkills(sorted []models.SkillMastery, bands Bands, pool []models.Question) (weakest, second, third string) {
	switch {
	case len(bands.Weak) > 0:
		weakest = bands.Weak[0]
	case len(sorted) > 0:
		weakest = sorted[0].Skill
	case len(pool) > 0:
		weakest = pool[0].Skill
	default:
		weakest = e.tuning.FallbackSkill
	}

	switch {
	case len(bands.Weak) > 1:
		second = bands.Weak[1]
	case len(bands.Growth) > 0:
		second = bands.Growth[0]
	case len(sorted) > 1:
		second = sorted[1].Skill
	default:
		second = weakest
	}

	switch {
	case len(bands.Weak) > 2:
		third = bands.Weak[2]
	case len(bands.Growth) > 0 && bands.Growth[0] != second:
		third = bands.Growth[0]
	case len(bands.Growth) > 1:
		third = bands.Growth[1]
	default:
		third = second
	}
	return weakest, second, third
}

func (e *Engine) mathQuestions(pool []models.Question) []models.Question {
	return filterQuestions(pool, func(q models.Question) bool {
		return e.tuning.IsMathDomain(q.Domain)
	})
}

func (e *Engine) skillSlice(pool []models.Question, skills []string, minDiff, maxDiff int, excluded map[string]bool) []models.Question {
	want := toSet(skills)
	return filterQuestions(pool, func(q models.Question) bool {
		return want[q.Skill] && !excluded[q.Skill] && q.Difficulty >= minDiff && q.Difficulty <= maxDiff
	})
}

// drawRandom picks up to n distinct questions from candidates, skipping ids
// already used this mission. The draw order comes from the engine's rng.
func (e *Engine) drawRandom(candidates []models.Question, n int, used map[string]bool) []models.Question {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}
	shuffled := make([]models.Question, len(candidates))
	copy(shuffled, candidates)
	e.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return takeInOrder(shuffled, n, used)
}

func takeInOrder(candidates []models.Question, n int, used map[string]bool) []models.Question {
	var out []models.Question
	for _, q := range candidates {
		if len(out) >= n {
			break
		}
		if used[q.ID] {
			continue
		}
		used[q.ID] = true
		out = append(out, q)
	}
	return out
}

func restrictToPool(rows []models.SkillMastery, pool []models.Question) []models.SkillMastery {
	present := make(map[string]bool, len(pool))
	for _, q := range pool {
		present[q.Skill] = true
	}
	var out []models.SkillMastery
	for _, row := range rows {
		if present[row.Skill] {
			out = append(out, row)
		}
	}
	return out
}

func filterQuestions(pool []models.Question, keep func(models.Question) bool) []models.Question {
	var out []models.Question
	for _, q := range pool {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

func ids(questions []models.Question) []string {
	out := make([]string, len(questions))
	for i, q := range questions {
		out[i] = q.ID
	}
	return out
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
