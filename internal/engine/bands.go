package engine

import (
	"sort"

	"github.com/DMALUVM/satprep-planner/internal/models"
)

// Bands partitions a student's skills by mastery and evidence volume.
type Bands struct {
	Weak   []string
	Growth []string
	Strong []string
}

// ClassifyBands buckets each mastery row into weak, growth or strong using
// the tuned thresholds. Input order is preserved within each band.
func (e *Engine) ClassifyBands(rows []models.SkillMastery) Bands {
	var b Bands
	for _, row := range rows {
		switch {
		case row.MasteryScore >= e.tuning.StrongMastery && row.TotalAttempts >= e.tuning.StrongAttempts:
			b.Strong = append(b.Strong, row.Skill)
		case row.MasteryScore >= e.tuning.GrowthMastery && row.TotalAttempts >= e.tuning.GrowthAttempts:
			b.Growth = append(b.Growth, row.Skill)
		default:
			b.Weak = append(b.Weak, row.Skill)
		}
	}
	return b
}

// SortByWeakness orders mastery rows ascending by mastery score, breaking
// ties by descending attempt count: a skill practiced often but still not
// improving is more urgent than a rarely-touched skill at the same score.
func SortByWeakness(rows []models.SkillMastery) []models.SkillMastery {
	out := make([]models.SkillMastery, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MasteryScore != out[j].MasteryScore {
			return out[i].MasteryScore < out[j].MasteryScore
		}
		return out[i].TotalAttempts > out[j].TotalAttempts
	})
	return out
}
