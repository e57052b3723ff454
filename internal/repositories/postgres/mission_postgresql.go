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

type MissionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewMissionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.MissionRepository {
	return &MissionPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (m *MissionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return m.db
}

// Upsert keyed on (student_id, plan_date). Regenerating a day's mission
// replaces tasks and metadata but keeps the row identity stable.
func (m *MissionPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, mission *models.DailyMission) error {
	db := m.getDB(tx)
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "plan_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"target_minutes", "tasks", "status", "summary", "metadata", "updated_at",
		}),
	}).Create(mission).Error
	if err != nil {
		return fmt.Errorf("failed to upsert mission: %w", err)
	}
	cache.InvalidateMissionCache(ctx, m.cacheManager, mission.StudentID, mission.PlanDate)
	return nil
}

func (m *MissionPostgreSQL) GetByStudentAndDate(ctx context.Context, tx *gorm.DB, studentID, planDate string) (*models.DailyMission, error) {
	db := m.getDB(tx)
	cacheKey := fmt.Sprintf("student:%s:date:%s", studentID, planDate)
	var mission models.DailyMission

	err := m.cacheManager.Mission.CacheOrExecute(ctx, cacheKey, &mission, cache.MissionCacheConfig.TTL, func() (interface{}, error) {
		var dbMission models.DailyMission
		if err := db.WithContext(ctx).
			Where("student_id = ? AND plan_date = ?", studentID, planDate).
			First(&dbMission).Error; err != nil {
			return nil, fmt.Errorf("failed to get mission: %w", err)
		}
		return &dbMission, nil
	})

	if err != nil {
		return nil, err
	}
	return &mission, nil
}

func (m *MissionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, mission *models.DailyMission) error {
	db := m.getDB(tx)
	if err := db.WithContext(ctx).Save(mission).Error; err != nil {
		return fmt.Errorf("failed to update mission: %w", err)
	}
	cache.InvalidateMissionCache(ctx, m.cacheManager, mission.StudentID, mission.PlanDate)
	return nil
}

func (m *MissionPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.MissionFilters) ([]*models.DailyMission, int64, error) {
	db := m.getDB(tx)
	var missions []*models.DailyMission
	var total int64

	query := db.WithContext(ctx).Model(&models.DailyMission{}).Where("student_id = ?", studentID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("plan_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("plan_date <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("plan_date DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&missions).Error; err != nil {
		return nil, 0, err
	}
	return missions, total, nil
}

// GetByStudentDateRange returns missions ordered oldest-first; plan dates
// sort lexically because they are ISO formatted.
func (m *MissionPostgreSQL) GetByStudentDateRange(ctx context.Context, tx *gorm.DB, studentID, dateFrom, dateTo string) ([]*models.DailyMission, error) {
	db := m.getDB(tx)
	var missions []*models.DailyMission
	if err := db.WithContext(ctx).
		Where("student_id = ? AND plan_date >= ? AND plan_date <= ?", studentID, dateFrom, dateTo).
		Order("plan_date ASC").
		Find(&missions).Error; err != nil {
		return nil, fmt.Errorf("failed to get missions in range: %w", err)
	}
	return missions, nil
}

func (m *MissionPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, studentID, planDate string) (bool, error) {
	db := m.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.DailyMission{}).
		Where("student_id = ? AND plan_date = ?", studentID, planDate).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ===== WEEKLY REPORTS =====

type ReportPostgreSQL struct {
	db *gorm.DB
}

func NewReportPostgreSQL(db *gorm.DB) repositories.ReportRepository {
	return &ReportPostgreSQL{db: db}
}

func (r *ReportPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ReportPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, report *models.WeeklyReport) error {
	db := r.getDB(tx)
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "week_start"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"highlights", "risks", "score_trend", "domain_breakdown",
			"recommended_actions", "report_payload", "updated_at",
		}),
	}).Create(report).Error
	if err != nil {
		return fmt.Errorf("failed to upsert report: %w", err)
	}
	return nil
}

func (r *ReportPostgreSQL) GetByStudentAndWeek(ctx context.Context, tx *gorm.DB, studentID, weekStart string) (*models.WeeklyReport, error) {
	db := r.getDB(tx)
	var report models.WeeklyReport
	if err := db.WithContext(ctx).
		Where("student_id = ? AND week_start = ?", studentID, weekStart).
		First(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &report, nil
}

func (r *ReportPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, limit int) ([]*models.WeeklyReport, error) {
	db := r.getDB(tx)
	var reports []*models.WeeklyReport
	query := db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("week_start DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}
	return reports, nil
}
