package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/DMALUVM/satprep-planner/internal/engine"
	"github.com/DMALUVM/satprep-planner/internal/models"
	"github.com/DMALUVM/satprep-planner/internal/repositories"
)

const (
	// recentTimedLimit bounds the timed-session snapshots on the dashboard
	recentTimedLimit = 5

	// progressAttemptWindow caps how much of the attempt log the
	// aggregator folds in one pass
	progressAttemptWindow = 2500
)

type progressService struct {
	repo    repositories.Repository
	db      *gorm.DB
	engine  *engine.Engine
	catalog CatalogService
	logger  *slog.Logger
}

func NewProgressService(repo repositories.Repository, db *gorm.DB, eng *engine.Engine, catalog CatalogService, logger *slog.Logger) ProgressService {
	return &progressService{
		repo:    repo,
		db:      db,
		engine:  eng,
		catalog: catalog,
		logger:  logger,
	}
}

// ===== METRICS =====

func (s *progressService) GetMetrics(ctx context.Context, studentID string) (*models.ProgressMetrics, error) {
	now := time.Now().UTC()

	input, err := s.gatherHistory(ctx, studentID, now)
	if err != nil {
		return nil, err
	}

	metrics := s.engine.ComputeProgressMetrics(*input)

	s.logger.Debug("Computed progress metrics",
		"student_id", studentID,
		"attempts", metrics.AttemptCount,
		"streak_days", metrics.StreakDays)

	return &metrics, nil
}

// gatherHistory loads everything the aggregator folds: the attempt log,
// timed sessions, mastery rows, the question pool and the mission window
// that feeds the streak.
func (s *progressService) gatherHistory(ctx context.Context, studentID string, now time.Time) (*engine.ProgressInput, error) {
	attemptRows, err := s.repo.Attempt().GetRecentByStudent(ctx, s.db, studentID, progressAttemptWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempts: %w", err)
	}

	sessionRows, err := s.repo.Session().GetRecentTimed(ctx, s.db, studentID, recentTimedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get timed sessions: %w", err)
	}

	masteryRows, err := s.repo.Mastery().GetByStudent(ctx, s.db, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mastery rows: %w", err)
	}

	pool, _, err := s.catalog.LoadPool(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	// The streak only looks back StreakCapDays, so the mission window
	// can be bounded instead of loading the full plan history.
	streakFrom := engine.DayKey(now.AddDate(0, 0, -s.engine.Tuning().StreakCapDays))
	missionRows, err := s.repo.Mission().GetByStudentDateRange(ctx, s.db, studentID, streakFrom, engine.DayKey(now))
	if err != nil {
		return nil, fmt.Errorf("failed to get missions: %w", err)
	}

	input := &engine.ProgressInput{
		Attempts:    make([]models.Attempt, 0, len(attemptRows)),
		Sessions:    make([]models.PracticeSession, 0, len(sessionRows)),
		MasteryRows: make([]models.SkillMastery, 0, len(masteryRows)),
		Pool:        pool,
		Missions:    make([]models.DailyMission, 0, len(missionRows)),
		Now:         now,
	}
	for _, a := range attemptRows {
		input.Attempts = append(input.Attempts, *a)
	}
	for _, sess := range sessionRows {
		input.Sessions = append(input.Sessions, *sess)
	}
	for _, m := range masteryRows {
		input.MasteryRows = append(input.MasteryRows, *m)
	}
	for _, m := range missionRows {
		input.Missions = append(input.Missions, *m)
	}

	return input, nil
}

// ===== SKILL BANDS =====

func (s *progressService) GetBands(ctx context.Context, studentID string) (*BandsResponse, error) {
	masteryRows, err := s.repo.Mastery().GetByStudent(ctx, s.db, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mastery rows: %w", err)
	}

	rows := make([]models.SkillMastery, 0, len(masteryRows))
	bySkill := make(map[string]models.SkillMastery, len(masteryRows))
	for _, m := range masteryRows {
		rows = append(rows, *m)
		bySkill[m.Skill] = *m
	}

	bands := s.engine.ClassifyBands(rows)
	return &BandsResponse{
		Weak:   pickRows(bands.Weak, bySkill),
		Growth: pickRows(bands.Growth, bySkill),
		Strong: pickRows(bands.Strong, bySkill),
	}, nil
}

func pickRows(skills []string, bySkill map[string]models.SkillMastery) []models.SkillMastery {
	out := make([]models.SkillMastery, 0, len(skills))
	for _, skill := range skills {
		if row, ok := bySkill[skill]; ok {
			out = append(out, row)
		}
	}
	return out
}
