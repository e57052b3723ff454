package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DMALUVM/satprep-planner/internal/engine"
	"github.com/DMALUVM/satprep-planner/internal/events"
	"github.com/DMALUVM/satprep-planner/internal/models"
	"github.com/DMALUVM/satprep-planner/internal/repositories"
	"github.com/DMALUVM/satprep-planner/internal/validator"
)

// missionAttemptWindow bounds the recent-attempt snapshot fed to the planner
const missionAttemptWindow = 150

type missionService struct {
	repo           repositories.Repository
	db             *gorm.DB
	engine         *engine.Engine
	catalog        CatalogService
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator

	defaultTargetMinutes int
}

func NewMissionService(repo repositories.Repository, db *gorm.DB, eng *engine.Engine, catalog CatalogService, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator, defaultTargetMinutes int) MissionService {
	if defaultTargetMinutes <= 0 {
		defaultTargetMinutes = eng.Tuning().BaselineMinutes
	}
	return &missionService{
		repo:                 repo,
		db:                   db,
		engine:               eng,
		catalog:              catalog,
		eventPublisher:       publisher,
		logger:               logger,
		validator:            v,
		defaultTargetMinutes: defaultTargetMinutes,
	}
}

// ===== GENERATION =====

func (s *missionService) Generate(ctx context.Context, studentID string, req *GenerateMissionRequest) (*models.DailyMission, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	planDate := req.PlanDate
	if planDate == "" {
		planDate = engine.DayKey(now)
	}
	target := req.TargetMinutes
	if target == 0 {
		target = s.defaultTargetMinutes
	}

	s.logger.Info("Generating daily mission",
		"student_id", studentID,
		"plan_date", planDate,
		"target_minutes", target)

	// A completed mission is never regenerated; the student's finished
	// work wins over a re-plan request.
	if existing, err := s.repo.Mission().GetByStudentAndDate(ctx, s.db, studentID, planDate); err == nil {
		if existing.Status == models.MissionComplete {
			return existing, nil
		}
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing mission: %w", err)
	}

	pool, byID, err := s.catalog.LoadPool(ctx)
	if err != nil {
		return nil, err
	}

	masteryRows, err := s.repo.Mastery().GetByStudent(ctx, s.db, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mastery rows: %w", err)
	}
	rows := make([]models.SkillMastery, len(masteryRows))
	for i, r := range masteryRows {
		rows[i] = *r
	}

	recent, err := s.repo.Attempt().GetRecentByStudent(ctx, s.db, studentID, missionAttemptWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt history: %w", err)
	}
	attempts := make([]models.Attempt, len(recent))
	for i, a := range recent {
		attempts[i] = *a
	}

	mission := s.engine.GenerateDailyMission(engine.MissionInput{
		Pool:           pool,
		ByID:           byID,
		MasteryRows:    rows,
		RecentAttempts: attempts,
		StudentID:      studentID,
		PlanDate:       planDate,
		TargetMinutes:  target,
		Now:            now,
	})

	if err := s.repo.Mission().Upsert(ctx, s.db, mission); err != nil {
		return nil, fmt.Errorf("failed to store mission: %w", err)
	}

	event := events.NewEvent(events.TopicMissionGenerated, studentID, events.MissionGeneratedEvent{
		StudentID:     studentID,
		PlanDate:      planDate,
		TargetMinutes: mission.TargetMinutes,
		FocusSkills:   mission.Metadata.FocusSkills,
	})
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish mission event", "error", err)
	}

	return mission, nil
}

// ===== READ OPERATIONS =====

func (s *missionService) GetByDate(ctx context.Context, studentID, planDate string) (*models.DailyMission, error) {
	if planDate == "" {
		planDate = engine.DayKey(time.Now().UTC())
	}
	mission, err := s.repo.Mission().GetByStudentAndDate(ctx, s.db, studentID, planDate)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMissionNotFound
		}
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}
	return mission, nil
}

func (s *missionService) GetHistory(ctx context.Context, studentID string, filters repositories.MissionFilters) ([]*models.DailyMission, int64, error) {
	missions, total, err := s.repo.Mission().GetByStudent(ctx, s.db, studentID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get mission history: %w", err)
	}
	return missions, total, nil
}

// ===== SESSION COMPLETION =====

func (s *missionService) CompleteSession(ctx context.Context, studentID string, req *CompleteSessionRequest) (*models.DailyMission, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	planDate := req.PlanDate
	if planDate == "" {
		planDate = engine.DayKey(now)
	}

	mission, err := s.repo.Mission().GetByStudentAndDate(ctx, s.db, studentID, planDate)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMissionNotFound
		}
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}

	completed := req.CompletedTasks
	if completed > len(mission.Tasks) {
		completed = len(mission.Tasks)
	}

	mission.Summary = models.CompletionSummary{
		CompletedTasks: completed,
		Accuracy:       req.Accuracy,
		PaceSeconds:    req.PaceSeconds,
	}
	if completed >= len(mission.Tasks) && len(mission.Tasks) > 0 {
		mission.Status = models.MissionComplete
	} else if completed > 0 {
		mission.Status = models.MissionInProgress
	}

	mode := req.SessionMode
	if mode == "" {
		mode = models.ModePractice
	}
	session := &models.PracticeSession{
		ID:          uuid.New().String(),
		StudentID:   studentID,
		Mode:        mode,
		AccuracyPct: req.Accuracy,
		AvgSeconds:  req.PaceSeconds,
		CompletedAt: now,
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Mission().Update(ctx, nil, mission); err != nil {
			return err
		}
		return txRepo.Session().Create(ctx, nil, session)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}

	s.logger.Info("Session completed",
		"student_id", studentID,
		"plan_date", planDate,
		"status", mission.Status,
		"completed_tasks", completed)

	return mission, nil
}
