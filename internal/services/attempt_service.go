package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/DMALUVM/satprep-planner/internal/engine"
	"github.com/DMALUVM/satprep-planner/internal/events"
	"github.com/DMALUVM/satprep-planner/internal/models"
	"github.com/DMALUVM/satprep-planner/internal/repositories"
	"github.com/DMALUVM/satprep-planner/internal/validator"
)

// reviewWindow bounds how much history feeds the review queue
const reviewWindow = 500

type attemptService struct {
	repo           repositories.Repository
	db             *gorm.DB
	engine         *engine.Engine
	catalog        CatalogService
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewAttemptService(repo repositories.Repository, db *gorm.DB, eng *engine.Engine, catalog CatalogService, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) AttemptService {
	return &attemptService{
		repo:           repo,
		db:             db,
		engine:         eng,
		catalog:        catalog,
		eventPublisher: publisher,
		logger:         logger,
		validator:      v,
	}
}

// ===== CORE RECORD OPERATION =====

func (s *attemptService) Record(ctx context.Context, studentID string, req *RecordAttemptRequest) (*models.AttemptRecordedResponse, error) {
	s.logger.Info("Recording attempt",
		"student_id", studentID,
		"question_id", req.QuestionID)

	// Validate request
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Resolve the question for skill and pacing target
	question, err := s.repo.Question().GetByID(ctx, s.db, req.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	mode := req.SessionMode
	if mode == "" {
		mode = models.ModePractice
	}

	now := time.Now().UTC()
	attempt := &models.Attempt{
		StudentID:    studentID,
		QuestionID:   question.ID,
		CanonicalID:  question.Canonical(),
		SessionID:    req.SessionID,
		SessionMode:  mode,
		IsCorrect:    req.IsCorrect,
		SecondsSpent: req.SecondsSpent,
		CreatedAt:    now,
	}

	var updated *models.SkillMastery
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Attempt().Create(ctx, nil, attempt); err != nil {
			return err
		}

		existing, err := txRepo.Mastery().GetByStudentSkill(ctx, nil, studentID, question.Skill)
		if err != nil {
			if !repositories.IsNotFoundError(err) {
				return fmt.Errorf("failed to get mastery: %w", err)
			}
			existing = nil
		}
		if existing == nil {
			existing = models.NewSkillMastery(studentID, question.Skill)
		}

		updated = s.engine.UpdateMastery(existing, engine.AttemptOutcome{
			IsCorrect:     req.IsCorrect,
			SecondsSpent:  req.SecondsSpent,
			TargetSeconds: question.TargetSeconds,
		}, now)

		return txRepo.Mastery().Upsert(ctx, nil, updated)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	s.logger.Info("Attempt recorded",
		"student_id", studentID,
		"skill", question.Skill,
		"mastery", updated.MasteryScore)

	event := events.NewEvent(events.TopicAttemptRecorded, studentID, events.AttemptRecordedEvent{
		StudentID:  studentID,
		QuestionID: question.ID,
		Skill:      question.Skill,
		IsCorrect:  req.IsCorrect,
		Seconds:    req.SecondsSpent,
		NewMastery: updated.MasteryScore,
	})
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish attempt event", "error", err)
	}

	return &models.AttemptRecordedResponse{
		Attempt: attempt,
		Mastery: updated,
	}, nil
}

// ===== REVIEW QUEUE =====

func (s *attemptService) GetReviewQueue(ctx context.Context, studentID string, asOf time.Time) (*models.ReviewQueueResponse, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	recent, err := s.repo.Attempt().GetRecentByStudent(ctx, s.db, studentID, reviewWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt history: %w", err)
	}

	_, byID, err := s.catalog.LoadPool(ctx)
	if err != nil {
		return nil, err
	}

	attempts := make([]models.Attempt, len(recent))
	for i, a := range recent {
		attempts[i] = *a
	}

	questions, fallback := s.engine.ComputeReviewQueue(attempts, byID, asOf)
	return &models.ReviewQueueResponse{
		Questions: questions,
		Fallback:  fallback,
		AsOf:      asOf,
	}, nil
}

// ===== HISTORY =====

func (s *attemptService) GetHistory(ctx context.Context, studentID string, filters repositories.AttemptFilters) (*AttemptHistoryResponse, error) {
	attempts, total, err := s.repo.Attempt().GetByStudent(ctx, s.db, studentID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt history: %w", err)
	}

	page := 1
	if filters.Limit > 0 {
		page = (filters.Offset / filters.Limit) + 1
	}

	return &AttemptHistoryResponse{
		Attempts: attempts,
		Total:    total,
		Page:     page,
		Size:     len(attempts),
	}, nil
}

func (s *attemptService) GetStats(ctx context.Context, studentID string) (*repositories.AttemptStats, error) {
	stats, err := s.repo.Attempt().GetStudentStats(ctx, s.db, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt stats: %w", err)
	}
	return stats, nil
}
