package repositories

import (
	"context"
	"time"

	"github.com/DMALUVM/satprep-planner/internal/models"
	"gorm.io/gorm"
)

// AttemptRepository interface for the append-only attempt log
type AttemptRepository interface {
	// Attempts are never updated or deleted once recorded
	Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error
	CreateBatch(ctx context.Context, tx *gorm.DB, attempts []*models.Attempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error)

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters AttemptFilters) ([]*models.Attempt, int64, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters AttemptFilters) ([]*models.Attempt, int64, error)
	GetRecentByStudent(ctx context.Context, tx *gorm.DB, studentID string, limit int) ([]*models.Attempt, error)
	GetBySession(ctx context.Context, tx *gorm.DB, sessionID string) ([]*models.Attempt, error)
	GetByStudentSince(ctx context.Context, tx *gorm.DB, studentID string, since time.Time) ([]*models.Attempt, error)

	// Statistics
	CountByStudent(ctx context.Context, tx *gorm.DB, studentID string) (int64, error)
	CountByStudentAndSkill(ctx context.Context, tx *gorm.DB, studentID, skill string) (int64, error)
	GetStudentStats(ctx context.Context, tx *gorm.DB, studentID string) (*AttemptStats, error)
}

// SessionRepository interface for practice session summaries
type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.PracticeSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.PracticeSession, error)
	Update(ctx context.Context, tx *gorm.DB, session *models.PracticeSession) error

	// Query operations
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters SessionFilters) ([]*models.PracticeSession, int64, error)
	GetRecentTimed(ctx context.Context, tx *gorm.DB, studentID string, limit int) ([]*models.PracticeSession, error)
}
