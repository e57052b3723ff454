package postgres

import (
	"context"

	"github.com/DMALUVM/satprep-planner/internal/models"
	"github.com/DMALUVM/satprep-planner/internal/repositories"
	"gorm.io/gorm"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyQuestionFilters applies common filters to catalog queries
func (h *SharedHelpers) ApplyQuestionFilters(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if filters.Domain != nil {
		query = query.Where("domain = ?", *filters.Domain)
	}
	if filters.Skill != nil {
		query = query.Where("skill = ?", *filters.Skill)
	}
	if filters.DifficultyMin != nil {
		query = query.Where("difficulty >= ?", *filters.DifficultyMin)
	}
	if filters.DifficultyMax != nil {
		query = query.Where("difficulty <= ?", *filters.DifficultyMax)
	}
	if filters.Calculator != nil {
		query = query.Where("calculator = ?", *filters.Calculator)
	}
	return query
}

// ApplyAttemptFilters applies common filters to attempt queries
func (h *SharedHelpers) ApplyAttemptFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.SessionID != nil {
		query = query.Where("session_id = ?", *filters.SessionID)
	}
	if filters.Mode != nil {
		query = query.Where("session_mode = ?", *filters.Mode)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"id":         true,
		"skill":      true,
		"domain":     true,
		"difficulty": true,
		"plan_date":  true,
	}

	// Validate and set sort column
	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	// Validate and set sort order
	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}

// CountCompletedMissions counts completed missions in a plan-date range
func (h *SharedHelpers) CountCompletedMissions(ctx context.Context, studentID, dateFrom, dateTo string) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.DailyMission{}).
		Where("student_id = ? AND plan_date >= ? AND plan_date <= ? AND status = ?",
			studentID, dateFrom, dateTo, models.MissionComplete).
		Count(&count).Error
	return count, err
}

// CountSessionsByMode counts sessions of one mode for a student
func (h *SharedHelpers) CountSessionsByMode(ctx context.Context, studentID string, mode models.SessionMode) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.PracticeSession{}).
		Where("student_id = ? AND mode = ?", studentID, mode).
		Count(&count).Error
	return count, err
}
