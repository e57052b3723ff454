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
)

type AttemptPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewAttemptPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AttemptRepository {
	return &AttemptPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (a *AttemptPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Create(attempt).Error; err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

func (a *AttemptPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, attempts []*models.Attempt) error {
	if len(attempts) == 0 {
		return nil
	}
	db := a.getDB(tx)
	if err := db.WithContext(ctx).CreateInBatches(attempts, 100).Error; err != nil {
		return fmt.Errorf("failed to record attempts: %w", err)
	}
	return nil
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error) {
	db := a.getDB(tx)
	var attempt models.Attempt
	if err := db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	db := a.getDB(tx)
	var attempts []*models.Attempt
	var total int64

	// apply filter first
	query := db.WithContext(ctx).Model(&models.Attempt{})
	query = a.helpers.ApplyAttemptFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = a.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (a *AttemptPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	filters.StudentID = &studentID
	return a.List(ctx, tx, filters)
}

// GetRecentByStudent returns the last N attempts in chronological order,
// the shape the review scheduler expects.
func (a *AttemptPostgreSQL) GetRecentByStudent(ctx context.Context, tx *gorm.DB, studentID string, limit int) ([]*models.Attempt, error) {
	db := a.getDB(tx)
	var attempts []*models.Attempt
	if err := db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent attempts: %w", err)
	}

	// reverse into oldest-first
	for i, j := 0, len(attempts)-1; i < j; i, j = i+1, j-1 {
		attempts[i], attempts[j] = attempts[j], attempts[i]
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) GetBySession(ctx context.Context, tx *gorm.DB, sessionID string) ([]*models.Attempt, error) {
	db := a.getDB(tx)
	var attempts []*models.Attempt
	if err := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to get session attempts: %w", err)
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) GetByStudentSince(ctx context.Context, tx *gorm.DB, studentID string, since time.Time) ([]*models.Attempt, error) {
	db := a.getDB(tx)
	var attempts []*models.Attempt
	if err := db.WithContext(ctx).
		Where("student_id = ? AND created_at >= ?", studentID, since).
		Order("created_at ASC, id ASC").
		Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to get attempts since %s: %w", since.Format(time.RFC3339), err)
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) CountByStudent(ctx context.Context, tx *gorm.DB, studentID string) (int64, error) {
	db := a.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Attempt{}).
		Where("student_id = ?", studentID).
		Count(&count).Error
	return count, err
}

func (a *AttemptPostgreSQL) CountByStudentAndSkill(ctx context.Context, tx *gorm.DB, studentID, skill string) (int64, error) {
	db := a.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Attempt{}).
		Joins("JOIN questions ON questions.id = attempts.question_id").
		Where("attempts.student_id = ? AND questions.skill = ?", studentID, skill).
		Count(&count).Error
	return count, err
}

func (a *AttemptPostgreSQL) GetStudentStats(ctx context.Context, tx *gorm.DB, studentID string) (*repositories.AttemptStats, error) {
	db := a.getDB(tx)

	var row struct {
		Total      int64
		Correct    int64
		AvgSeconds float64
	}
	err := db.WithContext(ctx).
		Model(&models.Attempt{}).
		Select("COUNT(*) as total, COUNT(*) FILTER (WHERE is_correct) as correct, COALESCE(AVG(seconds_spent), 0) as avg_seconds").
		Where("student_id = ?", studentID).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt stats: %w", err)
	}

	stats := &repositories.AttemptStats{
		TotalAttempts:   int(row.Total),
		CorrectAttempts: int(row.Correct),
		AvgSeconds:      row.AvgSeconds,
	}
	if row.Total > 0 {
		stats.AccuracyPct = float64(row.Correct) / float64(row.Total) * 100
	}
	return stats, nil
}

// ===== PRACTICE SESSIONS =====

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

func (s *SessionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.PracticeSession) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *SessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.PracticeSession, error) {
	db := s.getDB(tx)
	var session models.PracticeSession
	if err := db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (s *SessionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, session *models.PracticeSession) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

func (s *SessionPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.SessionFilters) ([]*models.PracticeSession, int64, error) {
	db := s.getDB(tx)
	var sessions []*models.PracticeSession
	var total int64

	query := db.WithContext(ctx).Model(&models.PracticeSession{}).Where("student_id = ?", studentID)
	if filters.Mode != nil {
		query = query.Where("mode = ?", *filters.Mode)
	}
	if filters.DateFrom != nil {
		query = query.Where("completed_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("completed_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("completed_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// GetRecentTimed returns the last N timed sessions oldest-first,
// the shape the trend computation expects.
func (s *SessionPostgreSQL) GetRecentTimed(ctx context.Context, tx *gorm.DB, studentID string, limit int) ([]*models.PracticeSession, error) {
	db := s.getDB(tx)
	var sessions []*models.PracticeSession
	if err := db.WithContext(ctx).
		Where("student_id = ? AND mode = ?", studentID, models.ModeTimed).
		Order("completed_at DESC").
		Limit(limit).
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to get timed sessions: %w", err)
	}

	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	return sessions, nil
}
