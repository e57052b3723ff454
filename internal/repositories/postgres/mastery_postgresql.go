package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/DMALUVM/satprep-planner/internal/cache"
	"github.com/DMALUVM/satprep-planner/internal/models"
	"github.com/DMALUVM/satprep-planner/internal/repositories"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MasteryPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewMasteryPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.MasteryRepository {
	return &MasteryPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (m *MasteryPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return m.db
}

// Upsert writes the full replacement row keyed on (student_id, skill).
// The engine computes every column, so conflicts update them all.
func (m *MasteryPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, mastery *models.SkillMastery) error {
	db := m.getDB(tx)
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "skill"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"mastery_score", "confidence", "total_attempts", "correct_attempts",
			"avg_seconds", "last_seen_at", "due_for_review_at", "updated_at",
		}),
	}).Create(mastery).Error
	if err != nil {
		return fmt.Errorf("failed to upsert mastery: %w", err)
	}
	cache.InvalidateStudentCaches(ctx, m.cacheManager, mastery.StudentID, mastery.Skill)
	return nil
}

func (m *MasteryPostgreSQL) GetByStudentSkill(ctx context.Context, tx *gorm.DB, studentID, skill string) (*models.SkillMastery, error) {
	db := m.getDB(tx)
	var mastery models.SkillMastery
	if err := db.WithContext(ctx).
		Where("student_id = ? AND skill = ?", studentID, skill).
		First(&mastery).Error; err != nil {
		return nil, fmt.Errorf("failed to get mastery: %w", err)
	}
	return &mastery, nil
}

func (m *MasteryPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.SkillMastery, error) {
	db := m.getDB(tx)
	cacheKey := fmt.Sprintf("student:%s:all", studentID)
	var rows []*models.SkillMastery

	err := m.cacheManager.Mastery.CacheOrExecute(ctx, cacheKey, &rows, cache.MasteryCacheConfig.TTL, func() (interface{}, error) {
		var dbRows []*models.SkillMastery
		if err := db.WithContext(ctx).
			Where("student_id = ?", studentID).
			Order("skill ASC").
			Find(&dbRows).Error; err != nil {
			return nil, fmt.Errorf("failed to get mastery rows: %w", err)
		}
		return dbRows, nil
	})

	return rows, err
}

func (m *MasteryPostgreSQL) GetDue(ctx context.Context, tx *gorm.DB, studentID string, asOf time.Time) ([]*models.SkillMastery, error) {
	db := m.getDB(tx)
	var rows []*models.SkillMastery
	if err := db.WithContext(ctx).
		Where("student_id = ? AND due_for_review_at IS NOT NULL AND due_for_review_at <= ?", studentID, asOf).
		Order("due_for_review_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get due skills: %w", err)
	}
	return rows, nil
}

func (m *MasteryPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, studentID, skill string) (bool, error) {
	db := m.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.SkillMastery{}).
		Where("student_id = ? AND skill = ?", studentID, skill).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
