package models

import (
	"time"
)

// SkillMastery is one per-skill mastery row, keyed by (student_id, skill).
// Rows are created lazily on a skill's first attempt and fully replaced by the
// mastery tracker after every attempt; they are never deleted.
type SkillMastery struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	StudentID string `json:"student_id" gorm:"not null;uniqueIndex:idx_student_skill;size:255"`
	Skill     string `json:"skill" gorm:"not null;uniqueIndex:idx_student_skill;size:64"`

	MasteryScore    float64 `json:"mastery_score"` // [0,100]
	Confidence      float64 `json:"confidence"`    // [0,100]
	TotalAttempts   int     `json:"total_attempts"`
	CorrectAttempts int     `json:"correct_attempts"`
	AvgSeconds      float64 `json:"avg_seconds"`

	LastSeenAt     *time.Time `json:"last_seen_at"`
	DueForReviewAt *time.Time `json:"due_for_review_at" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SkillMastery) TableName() string {
	return "skill_mastery"
}

// NewSkillMastery returns the default row used before a skill has any history.
func NewSkillMastery(studentID, skill string) *SkillMastery {
	return &SkillMastery{
		StudentID:    studentID,
		Skill:        skill,
		MasteryScore: 50,
	}
}

// DueBy reports whether the row's spaced-review interval has elapsed.
func (m *SkillMastery) DueBy(now time.Time) bool {
	return m.DueForReviewAt != nil && !m.DueForReviewAt.After(now)
}
