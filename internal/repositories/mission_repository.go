package repositories

import (
	"context"

	"github.com/DMALUVM/satprep-planner/internal/models"
	"gorm.io/gorm"
)

// MissionRepository interface for daily missions
type MissionRepository interface {
	// Upsert keyed on (student_id, plan_date); regeneration replaces
	// the pending mission for that date
	Upsert(ctx context.Context, tx *gorm.DB, mission *models.DailyMission) error
	GetByStudentAndDate(ctx context.Context, tx *gorm.DB, studentID, planDate string) (*models.DailyMission, error)
	Update(ctx context.Context, tx *gorm.DB, mission *models.DailyMission) error

	// Query operations
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters MissionFilters) ([]*models.DailyMission, int64, error)
	GetByStudentDateRange(ctx context.Context, tx *gorm.DB, studentID, dateFrom, dateTo string) ([]*models.DailyMission, error)

	// Validation
	Exists(ctx context.Context, tx *gorm.DB, studentID, planDate string) (bool, error)
}

// ReportRepository interface for weekly reports
type ReportRepository interface {
	// Upsert keyed on (student_id, week_start); rebuilding a week
	// replaces the stored report
	Upsert(ctx context.Context, tx *gorm.DB, report *models.WeeklyReport) error
	GetByStudentAndWeek(ctx context.Context, tx *gorm.DB, studentID, weekStart string) (*models.WeeklyReport, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, limit int) ([]*models.WeeklyReport, error)
}
