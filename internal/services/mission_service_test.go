package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/DMALUVM/satprep-planner/internal/engine"
	"github.com/DMALUVM/satprep-planner/internal/events"
	"github.com/DMALUVM/satprep-planner/internal/models"
	"github.com/DMALUVM/satprep-planner/internal/validator"
)

func newTestMissionService(mockRepo *mockRepository, mockPublisher *events.MockEventPublisher) *missionService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return &missionService{
		repo:                 mockRepo,
		engine:               engine.NewDefault(),
		catalog:              &stubCatalog{pool: testPool()},
		eventPublisher:       mockPublisher,
		logger:               logger,
		validator:            validator.New(),
		defaultTargetMinutes: 55,
	}
}

func TestMissionServiceGenerate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockPublisher := events.NewMockEventPublisher(logger)
	mockRepo := newMockRepository()
	service := newTestMissionService(mockRepo, mockPublisher)
	ctx := context.Background()

	t.Run("generates a four-block mission summing to target", func(t *testing.T) {
		mockPublisher.ClearEvents()

		mission, err := service.Generate(ctx, "student-1", &GenerateMissionRequest{
			PlanDate:      "2026-08-24",
			TargetMinutes: 30,
		})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if len(mission.Tasks) != 4 {
			t.Fatalf("Expected 4 tasks, got %d", len(mission.Tasks))
		}
		if mission.Status != models.MissionPending {
			t.Errorf("Expected pending status, got %s", mission.Status)
		}
		if mission.TargetMinutes != 30 {
			t.Errorf("Expected target 30, got %d", mission.TargetMinutes)
		}
		if got := mission.TotalTaskMinutes(); got != mission.TargetMinutes {
			t.Errorf("Block minutes should sum to the target: %d != %d", got, mission.TargetMinutes)
		}

		stored, err := mockRepo.mission.GetByStudentAndDate(ctx, nil, "student-1", "2026-08-24")
		if err != nil {
			t.Fatalf("Expected mission persisted: %v", err)
		}
		if stored.ID == 0 {
			t.Error("Expected persisted mission with an id")
		}

		published := mockPublisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}
		if published[0].Type != events.TopicMissionGenerated {
			t.Errorf("Expected event type %s, got %s", events.TopicMissionGenerated, published[0].Type)
		}
	})

	t.Run("clamps target to the session bounds", func(t *testing.T) {
		mission, err := service.Generate(ctx, "student-1", &GenerateMissionRequest{
			PlanDate:      "2026-08-25",
			TargetMinutes: 5,
		})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if mission.TargetMinutes != 20 {
			t.Errorf("Expected 5 minutes clamped up to 20, got %d", mission.TargetMinutes)
		}
		if got := mission.TotalTaskMinutes(); got != 20 {
			t.Errorf("Block minutes should sum to the clamped target, got %d", got)
		}
	})

	t.Run("defaults plan date and target when omitted", func(t *testing.T) {
		mission, err := service.Generate(ctx, "student-1", &GenerateMissionRequest{})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if mission.PlanDate == "" {
			t.Error("Expected plan date defaulted to today")
		}
		if mission.TargetMinutes != 55 {
			t.Errorf("Expected default target 55, got %d", mission.TargetMinutes)
		}
	})

	t.Run("never regenerates a completed mission", func(t *testing.T) {
		mockPublisher.ClearEvents()

		done := &models.DailyMission{
			StudentID:     "student-2",
			PlanDate:      "2026-08-24",
			TargetMinutes: 45,
			Status:        models.MissionComplete,
		}
		if err := mockRepo.mission.Upsert(ctx, nil, done); err != nil {
			t.Fatalf("seed mission: %v", err)
		}

		mission, err := service.Generate(ctx, "student-2", &GenerateMissionRequest{
			PlanDate:      "2026-08-24",
			TargetMinutes: 60,
		})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if mission.Status != models.MissionComplete {
			t.Errorf("Expected the completed mission back, got status %s", mission.Status)
		}
		if mission.TargetMinutes != 45 {
			t.Errorf("Completed mission should be untouched, got target %d", mission.TargetMinutes)
		}
		if len(mockPublisher.GetPublishedEvents()) != 0 {
			t.Error("Returning a completed mission should not publish an event")
		}
	})

	t.Run("regenerating a pending mission replaces it", func(t *testing.T) {
		first, err := service.Generate(ctx, "student-3", &GenerateMissionRequest{
			PlanDate:      "2026-08-26",
			TargetMinutes: 40,
		})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		second, err := service.Generate(ctx, "student-3", &GenerateMissionRequest{
			PlanDate:      "2026-08-26",
			TargetMinutes: 60,
		})
		if err != nil {
			t.Fatalf("Regenerate failed: %v", err)
		}
		if second.ID != first.ID {
			t.Errorf("Regeneration should replace the same row, got ids %d and %d", first.ID, second.ID)
		}
		if second.TargetMinutes != 60 {
			t.Errorf("Expected replacement target 60, got %d", second.TargetMinutes)
		}
	})
}

func TestMissionServiceCompleteSession(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockPublisher := events.NewMockEventPublisher(logger)
	mockRepo := newMockRepository()
	service := newTestMissionService(mockRepo, mockPublisher)
	ctx := context.Background()

	seed := func(t *testing.T, studentID, planDate string) *models.DailyMission {
		t.Helper()
		mission, err := service.Generate(ctx, studentID, &GenerateMissionRequest{
			PlanDate:      planDate,
			TargetMinutes: 30,
		})
		if err != nil {
			t.Fatalf("seed mission: %v", err)
		}
		return mission
	}

	t.Run("all tasks done marks the mission complete", func(t *testing.T) {
		seed(t, "student-1", "2026-08-24")

		mission, err := service.CompleteSession(ctx, "student-1", &CompleteSessionRequest{
			PlanDate:       "2026-08-24",
			CompletedTasks: 4,
			Accuracy:       82.5,
			PaceSeconds:    74,
			SessionMode:    models.ModeTimed,
		})
		if err != nil {
			t.Fatalf("CompleteSession failed: %v", err)
		}
		if mission.Status != models.MissionComplete {
			t.Errorf("Expected complete, got %s", mission.Status)
		}
		if mission.Summary.CompletedTasks != 4 {
			t.Errorf("Expected 4 completed tasks, got %d", mission.Summary.CompletedTasks)
		}
		if mission.Summary.Accuracy != 82.5 {
			t.Errorf("Expected accuracy 82.5, got %.1f", mission.Summary.Accuracy)
		}

		sessions, err := mockRepo.session.GetRecentTimed(ctx, nil, "student-1", 10)
		if err != nil {
			t.Fatalf("session lookup: %v", err)
		}
		if len(sessions) != 1 {
			t.Fatalf("Expected 1 timed session recorded, got %d", len(sessions))
		}
		if sessions[0].AccuracyPct != 82.5 {
			t.Errorf("Session should carry the reported accuracy, got %.1f", sessions[0].AccuracyPct)
		}
	})

	t.Run("partial completion marks in progress", func(t *testing.T) {
		seed(t, "student-2", "2026-08-24")

		mission, err := service.CompleteSession(ctx, "student-2", &CompleteSessionRequest{
			PlanDate:       "2026-08-24",
			CompletedTasks: 2,
			Accuracy:       60,
			PaceSeconds:    110,
		})
		if err != nil {
			t.Fatalf("CompleteSession failed: %v", err)
		}
		if mission.Status != models.MissionInProgress {
			t.Errorf("Expected in_progress, got %s", mission.Status)
		}
	})

	t.Run("zero completed tasks leaves the mission pending", func(t *testing.T) {
		seed(t, "student-3", "2026-08-24")

		mission, err := service.CompleteSession(ctx, "student-3", &CompleteSessionRequest{
			PlanDate: "2026-08-24",
		})
		if err != nil {
			t.Fatalf("CompleteSession failed: %v", err)
		}
		if mission.Status != models.MissionPending {
			t.Errorf("Expected pending, got %s", mission.Status)
		}
	})

	t.Run("missing mission", func(t *testing.T) {
		_, err := service.CompleteSession(ctx, "student-9", &CompleteSessionRequest{
			PlanDate:       "2026-01-01",
			CompletedTasks: 1,
		})
		if !errors.Is(err, ErrMissionNotFound) {
			t.Errorf("Expected ErrMissionNotFound, got %v", err)
		}
	})
}
