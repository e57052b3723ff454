package engine

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/DMALUVM/satprep-planner/internal/models"
)

// Catalog is the merged, deduplicated question pool plus an id lookup.
type Catalog struct {
	Questions []models.Question
	ByID      map[string]models.Question
}

// MergeCatalog normalizes and deduplicates question records from the three
// sources into one addressable collection. The remote pool replaces the
// bundled set when it is non-empty; the verbal set is overlaid last, so a
// verbal row with a colliding id wins. First insertion fixes a question's
// position, later insertions with the same id only replace the record.
func (e *Engine) MergeCatalog(bundled, remote, verbal []models.RawQuestion) Catalog {
	base := remote
	if len(base) == 0 {
		base = bundled
	}

	byID := make(map[string]models.Question, len(base)+len(verbal))
	order := make([]string, 0, len(base)+len(verbal))

	insert := func(raw models.RawQuestion) {
		if raw.ID == "" {
			return
		}
		if _, seen := byID[raw.ID]; !seen {
			order = append(order, raw.ID)
		}
		byID[raw.ID] = e.CoerceQuestion(raw)
	}

	for _, raw := range base {
		insert(raw)
	}
	for _, raw := range verbal {
		insert(raw)
	}

	questions := make([]models.Question, 0, len(order))
	for _, id := range order {
		questions = append(questions, byID[id])
	}

	return Catalog{Questions: questions, ByID: byID}
}

// CoerceQuestion fills a partially-populated raw record with the catalog
// defaults: difficulty 3, target 95 seconds, calculator allowed, empty lists.
func (e *Engine) CoerceQuestion(raw models.RawQuestion) models.Question {
	q := models.Question{
		ID:          raw.ID,
		CanonicalID: raw.CanonicalID,
		IsVariant:   raw.IsVariant,
		Domain:      models.QuestionDomain(raw.Domain),
		Skill:       raw.Skill,
		Difficulty:  e.tuning.DefaultDifficulty,
		Format:      models.FormatMultipleChoice,
		Calculator:  true,
		Stem:        raw.Stem,
		AnswerKey:   raw.AnswerKey,
		StrategyTip: raw.StrategyTip,
		TrapTag:     raw.TrapTag,

		TargetSeconds: e.tuning.DefaultTargetSeconds,
	}
	if q.CanonicalID == "" {
		q.CanonicalID = raw.ID
	}
	if raw.Difficulty != nil {
		q.Difficulty = clampInt(*raw.Difficulty, 1, 5)
	}
	if raw.Format != "" {
		q.Format = models.QuestionFormat(raw.Format)
	}
	if raw.Calculator != nil {
		q.Calculator = *raw.Calculator
	}
	if raw.TargetSeconds != nil && *raw.TargetSeconds > 0 {
		q.TargetSeconds = *raw.TargetSeconds
	}
	q.Choices = toJSONList(raw.Choices)
	q.ExplanationSteps = toJSONList(raw.ExplanationSteps)
	q.Tags = toJSONList(raw.Tags)
	return q
}

func toJSONList(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	data, _ := json.Marshal(items)
	return datatypes.JSON(data)
}
