package engine

import (
	"github.com/DMALUVM/satprep-planner/internal/models"
)

// Tuning collects every constant the engine's heuristics depend on. Product
// tiers and tests vary these instead of editing literals.
type Tuning struct {
	// Catalog coercion defaults
	DefaultDifficulty    int
	DefaultTargetSeconds float64

	// Mastery model
	AccuracyWeight       float64
	PaceWeight           float64
	PaceSlope            float64 // mastery points lost per second over target
	PaceFloor            float64
	ConfidenceCarry      float64 // weight on the prior confidence value
	ConfidenceGain       float64 // weight on the attempt-volume term
	ConfidencePerAttempt float64
	SlowFactor           float64 // seconds_spent > SlowFactor*target counts as slow

	// Spaced-review tiers, keyed by lifetime attempt count
	ReviewEarlyAttempts int // <= this many attempts -> ReviewEarlyDays
	ReviewEarlyDays     int
	ReviewMidAttempts   int // <= this many attempts -> ReviewMidDays
	ReviewMidDays       int
	ReviewLateDays      int

	// Band thresholds
	StrongMastery  float64
	StrongAttempts int
	GrowthMastery  float64
	GrowthAttempts int

	// Mission planning
	BaselineMinutes   int
	MinSessionMinutes int
	MaxSessionMinutes int
	MaxDeprioritized  int
	FallbackSkill     string

	// Score models: predicted = base + accuracy*AccuracySlope +
	// max(0, PaceAnchor-pace)*PaceSlope, clamped to [ScoreMin,ScoreMax].
	MathScoreBase       float64
	MathAccuracySlope   float64
	MathPaceAnchor      float64
	MathPaceSlope       float64
	VerbalScoreBase     float64
	VerbalAccuracySlope float64
	VerbalPaceAnchor    float64
	VerbalPaceSlope     float64
	ScoreMin            float64
	ScoreMax            float64

	// Risk thresholds
	PersistentWeakMastery  float64
	PersistentWeakAttempts int

	// Streak
	StreakCapDays int

	// Domain membership
	MathDomains   map[models.QuestionDomain]bool
	VerbalDomains map[models.QuestionDomain]bool
}

// DefaultTuning returns the production constants.
func DefaultTuning() Tuning {
	return Tuning{
		DefaultDifficulty:    3,
		DefaultTargetSeconds: 95,

		AccuracyWeight:       0.72,
		PaceWeight:           0.28,
		PaceSlope:            1.4,
		PaceFloor:            25,
		ConfidenceCarry:      0.7,
		ConfidenceGain:       0.3,
		ConfidencePerAttempt: 8,
		SlowFactor:           1.2,

		ReviewEarlyAttempts: 2,
		ReviewEarlyDays:     1,
		ReviewMidAttempts:   6,
		ReviewMidDays:       3,
		ReviewLateDays:      7,

		StrongMastery:  85,
		StrongAttempts: 8,
		GrowthMastery:  70,
		GrowthAttempts: 4,

		BaselineMinutes:   55,
		MinSessionMinutes: 20,
		MaxSessionMinutes: 120,
		MaxDeprioritized:  6,
		FallbackSkill:     "linear_equations",

		MathScoreBase:       380,
		MathAccuracySlope:   3.4,
		MathPaceAnchor:      120,
		MathPaceSlope:       2.2,
		VerbalScoreBase:     430,
		VerbalAccuracySlope: 3.0,
		VerbalPaceAnchor:    95,
		VerbalPaceSlope:     2.1,
		ScoreMin:            200,
		ScoreMax:            800,

		PersistentWeakMastery:  60,
		PersistentWeakAttempts: 10,

		StreakCapDays: 60,

		MathDomains: map[models.QuestionDomain]bool{
			models.DomainAlgebra:        true,
			models.DomainAdvancedMath:   true,
			models.DomainProblemSolving: true,
			models.DomainGeometryTrig:   true,
		},
		VerbalDomains: map[models.QuestionDomain]bool{
			models.DomainReading: true,
			models.DomainWriting: true,
		},
	}
}

// IsMathDomain reports fixed-set membership for the math section.
func (t Tuning) IsMathDomain(d models.QuestionDomain) bool {
	return t.MathDomains[d]
}

// IsVerbalDomain reports fixed-set membership for the verbal section.
func (t Tuning) IsVerbalDomain(d models.QuestionDomain) bool {
	return t.VerbalDomains[d]
}
