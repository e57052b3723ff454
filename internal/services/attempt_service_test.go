package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DMALUVM/satprep-planner/internal/engine"
	"github.com/DMALUVM/satprep-planner/internal/events"
	"github.com/DMALUVM/satprep-planner/internal/models"
	"github.com/DMALUVM/satprep-planner/internal/validator"
)

func testQuestion(id, skill string, domain models.QuestionDomain) models.Question {
	return models.Question{
		ID:            id,
		CanonicalID:   id,
		Domain:        domain,
		Skill:         skill,
		Difficulty:    3,
		Format:        models.FormatMultipleChoice,
		TargetSeconds: 90,
	}
}

func testPool() []models.Question {
	return []models.Question{
		testQuestion("m1", "linear_equations", models.DomainAlgebra),
		testQuestion("m2", "linear_equations", models.DomainAlgebra),
		testQuestion("m3", "quadratics", models.DomainAdvancedMath),
		testQuestion("m4", "quadratics", models.DomainAdvancedMath),
		testQuestion("m5", "ratios", models.DomainProblemSolving),
		testQuestion("m6", "circles", models.DomainGeometryTrig),
		testQuestion("v1", "main_idea", models.DomainReading),
		testQuestion("v2", "punctuation", models.DomainWriting),
	}
}

func TestAttemptServiceRecord(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockPublisher := events.NewMockEventPublisher(logger)
	v := validator.New()
	mockRepo := newMockRepository()

	pool := testPool()
	for i := range pool {
		mockRepo.question.put(pool[i])
	}

	service := &attemptService{
		repo:           mockRepo,
		engine:         engine.NewDefault(),
		catalog:        &stubCatalog{pool: pool},
		eventPublisher: mockPublisher,
		logger:         logger,
		validator:      v,
	}
	ctx := context.Background()

	t.Run("records attempt and folds mastery", func(t *testing.T) {
		mockPublisher.ClearEvents()

		resp, err := service.Record(ctx, "student-1", &RecordAttemptRequest{
			QuestionID:   "m1",
			SessionID:    "sess-1",
			IsCorrect:    true,
			SecondsSpent: 60,
		})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if resp.Attempt == nil || resp.Attempt.ID == 0 {
			t.Error("Expected persisted attempt with an id")
		}
		if resp.Attempt.SessionMode != models.ModePractice {
			t.Errorf("Expected default session mode practice, got %s", resp.Attempt.SessionMode)
		}
		if resp.Mastery == nil {
			t.Fatal("Expected mastery row in response")
		}
		if resp.Mastery.TotalAttempts != 1 || resp.Mastery.CorrectAttempts != 1 {
			t.Errorf("Expected 1/1 attempts, got %d/%d",
				resp.Mastery.CorrectAttempts, resp.Mastery.TotalAttempts)
		}
		if resp.Mastery.MasteryScore <= 50 {
			t.Errorf("Expected mastery above the 50 default after a correct fast answer, got %.1f",
				resp.Mastery.MasteryScore)
		}
		if resp.Mastery.DueForReviewAt != nil {
			t.Error("Correct fast answer should not schedule a review")
		}

		stored, err := mockRepo.mastery.GetByStudentSkill(ctx, nil, "student-1", "linear_equations")
		if err != nil {
			t.Fatalf("Expected mastery row persisted: %v", err)
		}
		if stored.MasteryScore != resp.Mastery.MasteryScore {
			t.Error("Persisted mastery should match the response")
		}

		published := mockPublisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}
		if published[0].Type != events.TopicAttemptRecorded {
			t.Errorf("Expected event type %s, got %s", events.TopicAttemptRecorded, published[0].Type)
		}
		if published[0].StudentID != "student-1" {
			t.Errorf("Expected event student-1, got %s", published[0].StudentID)
		}
	})

	t.Run("wrong answer schedules a review", func(t *testing.T) {
		mockPublisher.ClearEvents()

		resp, err := service.Record(ctx, "student-2", &RecordAttemptRequest{
			QuestionID:   "m3",
			IsCorrect:    false,
			SecondsSpent: 120,
		})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if resp.Mastery.DueForReviewAt == nil {
			t.Fatal("Wrong answer should schedule a review")
		}
		if !resp.Mastery.DueForReviewAt.After(time.Now().UTC()) {
			t.Error("Review due date should be in the future")
		}
	})

	t.Run("unknown question", func(t *testing.T) {
		_, err := service.Record(ctx, "student-1", &RecordAttemptRequest{
			QuestionID: "nope",
			IsCorrect:  true,
		})
		if !errors.Is(err, ErrQuestionNotFound) {
			t.Errorf("Expected ErrQuestionNotFound, got %v", err)
		}
	})

	t.Run("validation failure", func(t *testing.T) {
		_, err := service.Record(ctx, "student-1", &RecordAttemptRequest{})
		if err == nil {
			t.Error("Expected validation error for missing question id")
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Errorf("Expected ValidationErrors, got %v", err)
		}
	})
}

func TestAttemptServiceReviewQueue(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockPublisher := events.NewMockEventPublisher(logger)
	v := validator.New()
	mockRepo := newMockRepository()

	pool := testPool()
	service := &attemptService{
		repo:           mockRepo,
		engine:         engine.NewDefault(),
		catalog:        &stubCatalog{pool: pool},
		eventPublisher: mockPublisher,
		logger:         logger,
		validator:      v,
	}
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("empty history yields empty fallback queue", func(t *testing.T) {
		resp, err := service.GetReviewQueue(ctx, "student-empty", now)
		if err != nil {
			t.Fatalf("GetReviewQueue failed: %v", err)
		}
		if !resp.Fallback {
			t.Error("Expected fallback flag with no due items")
		}
		if len(resp.Questions) != 0 {
			t.Errorf("Expected empty queue, got %d", len(resp.Questions))
		}
	})

	t.Run("missed question becomes due after its interval", func(t *testing.T) {
		attempt := &models.Attempt{
			StudentID:    "student-3",
			QuestionID:   "m5",
			CanonicalID:  "m5",
			IsCorrect:    false,
			SecondsSpent: 100,
			CreatedAt:    now.AddDate(0, 0, -2),
		}
		if err := mockRepo.attempt.Create(ctx, nil, attempt); err != nil {
			t.Fatalf("seed attempt: %v", err)
		}

		resp, err := service.GetReviewQueue(ctx, "student-3", now)
		if err != nil {
			t.Fatalf("GetReviewQueue failed: %v", err)
		}
		if resp.Fallback {
			t.Error("Expected a formally due item, not fallback")
		}
		if len(resp.Questions) != 1 || resp.Questions[0].ID != "m5" {
			t.Fatalf("Expected queue [m5], got %v", resp.Questions)
		}
	})
}

func TestAttemptServiceStats(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockRepo := newMockRepository()

	service := &attemptService{
		repo:           mockRepo,
		engine:         engine.NewDefault(),
		catalog:        &stubCatalog{},
		eventPublisher: events.NewMockEventPublisher(logger),
		logger:         logger,
		validator:      validator.New(),
	}
	ctx := context.Background()

	for i, correct := range []bool{true, true, false, true} {
		attempt := &models.Attempt{
			StudentID:    "student-4",
			QuestionID:   "m1",
			IsCorrect:    correct,
			SecondsSpent: float64(60 + i*10),
			CreatedAt:    time.Now().UTC(),
		}
		if err := mockRepo.attempt.Create(ctx, nil, attempt); err != nil {
			t.Fatalf("seed attempt: %v", err)
		}
	}

	stats, err := service.GetStats(ctx, "student-4")
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalAttempts != 4 || stats.CorrectAttempts != 3 {
		t.Errorf("Expected 3/4, got %d/%d", stats.CorrectAttempts, stats.TotalAttempts)
	}
	if stats.AccuracyPct != 75 {
		t.Errorf("Expected 75%% accuracy, got %.1f", stats.AccuracyPct)
	}
}
