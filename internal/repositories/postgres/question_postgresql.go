package postgres

import (
	"context"
	"fmt"

	"github.com/DMALUVM/satprep-planner/internal/cache"
	"github.com/DMALUVM/satprep-planner/internal/models"
	"github.com/DMALUVM/satprep-planner/internal/repositories"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	cache.InvalidateCatalogCache(ctx, q.cacheManager)
	return nil
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error) {
	db := q.getDB(tx)
	cacheKey := fmt.Sprintf("question:%s", id)
	var question models.Question

	err := q.cacheManager.Catalog.CacheOrExecute(ctx, cacheKey, &question, cache.CatalogCacheConfig.TTL, func() (interface{}, error) {
		var dbQuestion models.Question
		if err := db.WithContext(ctx).Where("id = ?", id).First(&dbQuestion).Error; err != nil {
			return nil, fmt.Errorf("failed to get question: %w", err)
		}
		return &dbQuestion, nil
	})

	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	cache.InvalidateCatalogCache(ctx, q.cacheManager)
	return nil
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Where("id = ?", id).Delete(&models.Question{}).Error; err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	cache.InvalidateCatalogCache(ctx, q.cacheManager)
	return nil
}

// UpsertBatch writes a refreshed catalog. Conflicts on the natural key
// update every content column, so a re-fetched question replaces its
// previous version in place.
func (q *QuestionPostgreSQL) UpsertBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	db := q.getDB(tx)
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"canonical_id", "is_variant", "domain", "skill", "difficulty",
			"calculator", "stem", "choices", "answer_key", "explanation_steps",
			"strategy_tip", "trap_tag", "target_seconds", "tags", "updated_at",
		}),
	}).CreateInBatches(questions, 200).Error
	if err != nil {
		return fmt.Errorf("failed to upsert questions: %w", err)
	}
	cache.InvalidateCatalogCache(ctx, q.cacheManager)
	return nil
}

func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.Question, error) {
	if len(ids) == 0 {
		return []*models.Question{}, nil
	}
	db := q.getDB(tx)
	var questions []*models.Question
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions by ids: %w", err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	db := q.getDB(tx)
	var questions []*models.Question
	var total int64

	query := db.WithContext(ctx).Model(&models.Question{})
	query = q.helpers.ApplyQuestionFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}

func (q *QuestionPostgreSQL) GetAll(ctx context.Context, tx *gorm.DB) ([]*models.Question, error) {
	db := q.getDB(tx)
	var questions []*models.Question
	if err := db.WithContext(ctx).Order("id ASC").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) GetBySkill(ctx context.Context, tx *gorm.DB, skill string, filters repositories.QuestionFilters) ([]*models.Question, error) {
	filters.Skill = &skill
	questions, _, err := q.List(ctx, tx, filters)
	return questions, err
}

func (q *QuestionPostgreSQL) GetByDomain(ctx context.Context, tx *gorm.DB, domain models.QuestionDomain, filters repositories.QuestionFilters) ([]*models.Question, error) {
	filters.Domain = &domain
	questions, _, err := q.List(ctx, tx, filters)
	return questions, err
}

func (q *QuestionPostgreSQL) GetVariants(ctx context.Context, tx *gorm.DB, canonicalID string) ([]*models.Question, error) {
	db := q.getDB(tx)
	var questions []*models.Question
	if err := db.WithContext(ctx).
		Where("canonical_id = ? OR id = ?", canonicalID, canonicalID).
		Order("id ASC").
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get variants: %w", err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	db := q.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (q *QuestionPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := q.getDB(tx)
	var count int64
	err := db.WithContext(ctx).Model(&models.Question{}).Count(&count).Error
	return count, err
}

func (q *QuestionPostgreSQL) GetCatalogStats(ctx context.Context, tx *gorm.DB) (*repositories.CatalogStats, error) {
	db := q.getDB(tx)
	stats := &repositories.CatalogStats{
		QuestionsByDomain: make(map[models.QuestionDomain]int),
	}

	var total int64
	if err := db.WithContext(ctx).Model(&models.Question{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	stats.TotalQuestions = int(total)

	var domainCounts []struct {
		Domain models.QuestionDomain
		Count  int
	}
	if err := db.WithContext(ctx).Model(&models.Question{}).
		Select("domain, COUNT(*) as count").
		Group("domain").
		Scan(&domainCounts).Error; err != nil {
		return nil, fmt.Errorf("failed to count questions by domain: %w", err)
	}
	for _, dc := range domainCounts {
		stats.QuestionsByDomain[dc.Domain] = dc.Count
	}

	var skillCount int64
	if err := db.WithContext(ctx).Model(&models.Question{}).
		Distinct("skill").Count(&skillCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count skills: %w", err)
	}
	stats.SkillCount = int(skillCount)

	var variantCount int64
	if err := db.WithContext(ctx).Model(&models.Question{}).
		Where("is_variant = ?", true).Count(&variantCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count variants: %w", err)
	}
	stats.VariantCount = int(variantCount)

	return stats, nil
}
