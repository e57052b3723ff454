package repositories

import (
	"context"
	"time"

	"github.com/DMALUVM/satprep-planner/internal/models"
	"gorm.io/gorm"
)

// MasteryRepository interface for per-skill mastery rows
type MasteryRepository interface {
	// Upsert keyed on (student_id, skill); the engine always supplies
	// the full replacement row
	Upsert(ctx context.Context, tx *gorm.DB, mastery *models.SkillMastery) error
	GetByStudentSkill(ctx context.Context, tx *gorm.DB, studentID, skill string) (*models.SkillMastery, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.SkillMastery, error)

	// Review scheduling
	GetDue(ctx context.Context, tx *gorm.DB, studentID string, asOf time.Time) ([]*models.SkillMastery, error)

	// Validation
	Exists(ctx context.Context, tx *gorm.DB, studentID, skill string) (bool, error)
}
