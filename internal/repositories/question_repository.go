package repositories

import (
	"context"

	"github.com/DMALUVM/satprep-planner/internal/models"
	"gorm.io/gorm"
)

// QuestionRepository interface for catalog question operations
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	// Bulk operations used by catalog refresh
	UpsertBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.Question, error)

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*models.Question, error)
	GetBySkill(ctx context.Context, tx *gorm.DB, skill string, filters QuestionFilters) ([]*models.Question, error)
	GetByDomain(ctx context.Context, tx *gorm.DB, domain models.QuestionDomain, filters QuestionFilters) ([]*models.Question, error)
	GetVariants(ctx context.Context, tx *gorm.DB, canonicalID string) ([]*models.Question, error)

	// Validation and checks
	Exists(ctx context.Context, tx *gorm.DB, id string) (bool, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)

	// Statistics
	GetCatalogStats(ctx context.Context, tx *gorm.DB) (*CatalogStats, error)
}
