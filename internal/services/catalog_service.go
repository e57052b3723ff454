package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/DMALUVM/satprep-planner/internal/catalog"
	"github.com/DMALUVM/satprep-planner/internal/engine"
	"github.com/DMALUVM/satprep-planner/internal/events"
	"github.com/DMALUVM/satprep-planner/internal/models"
	"github.com/DMALUVM/satprep-planner/internal/repositories"
)

type catalogService struct {
	repo           repositories.Repository
	db             *gorm.DB
	engine         *engine.Engine
	loader         *catalog.Loader
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewCatalogService(repo repositories.Repository, db *gorm.DB, eng *engine.Engine, loader *catalog.Loader, publisher events.EventPublisher, logger *slog.Logger) CatalogService {
	return &catalogService{
		repo:           repo,
		db:             db,
		engine:         eng,
		loader:         loader,
		eventPublisher: publisher,
		logger:         logger,
	}
}

// Refresh reloads all question pools, merges them and replaces the stored
// catalog. Remote failures degrade silently to the bundled pool.
func (s *catalogService) Refresh(ctx context.Context, actorID string) (*models.CatalogRefreshResponse, error) {
	s.logger.Info("Refreshing question catalog", "actor_id", actorID)

	bundled, remote, verbal, err := s.loader.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load question pools: %w", err)
	}

	merged := s.engine.MergeCatalog(bundled, remote, verbal)
	if len(merged.Questions) == 0 {
		return nil, ErrEmptyCatalog
	}

	rows := make([]*models.Question, len(merged.Questions))
	for i := range merged.Questions {
		rows[i] = &merged.Questions[i]
	}

	if err := s.repo.Question().UpsertBatch(ctx, s.db, rows); err != nil {
		return nil, fmt.Errorf("failed to store catalog: %w", err)
	}

	remoteUsed := len(remote) > 0
	s.logger.Info("Catalog refreshed",
		"questions", len(merged.Questions),
		"remote_used", remoteUsed,
		"actor_id", actorID)

	event := events.NewEvent(events.TopicCatalogRefreshed, "", events.CatalogRefreshedEvent{
		QuestionCount: len(merged.Questions),
		RemoteUsed:    remoteUsed,
		RefreshedBy:   actorID,
	})
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish catalog refresh event", "error", err)
	}

	return &models.CatalogRefreshResponse{
		Total:       len(merged.Questions),
		RemoteUsed:  remoteUsed,
		RefreshedAt: time.Now().UTC(),
	}, nil
}

func (s *catalogService) GetQuestion(ctx context.Context, id string) (*QuestionResponse, error) {
	question, err := s.repo.Question().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	resp := &QuestionResponse{Question: question}
	if !question.IsVariant {
		variants, err := s.repo.Question().GetVariants(ctx, s.db, question.ID)
		if err == nil {
			resp.VariantCount = len(variants)
		}
	}
	return resp, nil
}

func (s *catalogService) List(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error) {
	questions, total, err := s.repo.Question().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	responses := make([]*QuestionResponse, len(questions))
	for i, q := range questions {
		responses[i] = &QuestionResponse{Question: q}
	}

	page := 1
	if filters.Limit > 0 {
		page = (filters.Offset / filters.Limit) + 1
	}

	return &QuestionListResponse{
		Questions: responses,
		Total:     total,
		Page:      page,
		Size:      len(responses),
	}, nil
}

func (s *catalogService) GetStats(ctx context.Context) (*repositories.CatalogStats, error) {
	stats, err := s.repo.Question().GetCatalogStats(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog stats: %w", err)
	}
	return stats, nil
}

// LoadPool returns the stored catalog in the value-typed shape the engine
// consumes, plus the id lookup covering canonical ids.
func (s *catalogService) LoadPool(ctx context.Context) ([]models.Question, map[string]models.Question, error) {
	rows, err := s.repo.Question().GetAll(ctx, s.db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	pool := make([]models.Question, len(rows))
	byID := make(map[string]models.Question, len(rows))
	for i, row := range rows {
		pool[i] = *row
		byID[row.ID] = *row
	}
	return pool, byID, nil
}
