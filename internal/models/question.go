package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionDomain string

const (
	DomainAlgebra        QuestionDomain = "algebra"
	DomainAdvancedMath   QuestionDomain = "advanced_math"
	DomainProblemSolving QuestionDomain = "problem_solving_data"
	DomainGeometryTrig   QuestionDomain = "geometry_trig"
	DomainReading        QuestionDomain = "reading"
	DomainWriting        QuestionDomain = "writing"
)

type QuestionFormat string

const (
	FormatMultipleChoice QuestionFormat = "multiple_choice"
	FormatGridIn         QuestionFormat = "grid_in"
)

// Question is an immutable catalog record. Questions are authored upstream and
// merged into a single pool by the catalog service; the engine only ever reads them.
type Question struct {
	ID          string         `json:"id" gorm:"primaryKey;size:64"`
	CanonicalID string         `json:"canonical_id" gorm:"index;size:64"` // self when not a variant
	IsVariant   bool           `json:"is_variant"`
	Domain      QuestionDomain `json:"domain" gorm:"not null;index;size:32"`
	Skill       string         `json:"skill" gorm:"not null;index;size:64"`
	Difficulty  int            `json:"difficulty" gorm:"default:3" validate:"min=1,max=5"`
	Format      QuestionFormat `json:"format" gorm:"default:multiple_choice;size:32"`
	Calculator  bool           `json:"calculator_allowed" gorm:"default:true"`

	Stem      string         `json:"stem" gorm:"type:text"`
	Choices   datatypes.JSON `json:"choices" gorm:"type:jsonb"` // []string, empty for grid-in
	AnswerKey string         `json:"answer_key" gorm:"size:255"`

	// Coaching content
	ExplanationSteps datatypes.JSON `json:"explanation_steps" gorm:"type:jsonb"` // []string
	StrategyTip      string         `json:"strategy_tip" gorm:"type:text"`
	TrapTag          string         `json:"trap_tag" gorm:"size:64"`

	TargetSeconds float64        `json:"target_seconds" gorm:"default:95"`
	Tags          datatypes.JSON `json:"tags" gorm:"type:jsonb"` // []string

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// Canonical returns the id the question should be grouped under for review
// purposes: the canonical id when set, otherwise the question's own id.
func (q Question) Canonical() string {
	if q.CanonicalID != "" {
		return q.CanonicalID
	}
	return q.ID
}

// RawQuestion is a partially-populated question record as it arrives from a
// catalog source (bundled file, remote pool, verbal set). Numeric and list
// fields may be absent; coercion defaults are applied during the merge.
type RawQuestion struct {
	ID               string   `json:"id"`
	CanonicalID      string   `json:"canonical_id"`
	IsVariant        bool     `json:"is_variant"`
	Domain           string   `json:"domain"`
	Skill            string   `json:"skill"`
	Difficulty       *int     `json:"difficulty"`
	Format           string   `json:"format"`
	Calculator       *bool    `json:"calculator_allowed"`
	Stem             string   `json:"stem"`
	Choices          []string `json:"choices"`
	AnswerKey        string   `json:"answer_key"`
	ExplanationSteps []string `json:"explanation_steps"`
	StrategyTip      string   `json:"strategy_tip"`
	TrapTag          string   `json:"trap_tag"`
	TargetSeconds    *float64 `json:"target_seconds"`
	Tags             []string `json:"tags"`
}
