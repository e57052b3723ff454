package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DMALUVM/satprep-planner/internal/engine"
	"github.com/DMALUVM/satprep-planner/internal/events"
	"github.com/DMALUVM/satprep-planner/internal/models"
)

func newTestReportService(mockRepo *mockRepository, mockPublisher *events.MockEventPublisher) *reportService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return &reportService{
		repo:           mockRepo,
		engine:         engine.NewDefault(),
		progress:       newTestProgressService(mockRepo),
		eventPublisher: mockPublisher,
		logger:         logger,
	}
}

func seedReportHistory(t *testing.T, mockRepo *mockRepository, studentID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	for i, q := range []string{"m1", "m2", "m3", "v1"} {
		attempt := &models.Attempt{
			StudentID:    studentID,
			QuestionID:   q,
			CanonicalID:  q,
			IsCorrect:    i != 1,
			SecondsSpent: 80,
			CreatedAt:    now.Add(-time.Duration(i) * time.Hour),
		}
		if err := mockRepo.attempt.Create(ctx, nil, attempt); err != nil {
			t.Fatalf("seed attempt: %v", err)
		}
	}
}

func TestReportServiceBuild(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockPublisher := events.NewMockEventPublisher(logger)
	mockRepo := newMockRepository()
	service := newTestReportService(mockRepo, mockPublisher)
	ctx := context.Background()

	seedReportHistory(t, mockRepo, "student-1")

	t.Run("builds and stores the weekly report", func(t *testing.T) {
		mockPublisher.ClearEvents()

		report, err := service.Build(ctx, "student-1", &WeeklyReportRequest{WeekStart: "2026-08-24"})
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if report.WeekStart != "2026-08-24" {
			t.Errorf("Expected week start 2026-08-24, got %s", report.WeekStart)
		}
		if len(report.Highlights) == 0 {
			t.Error("Expected highlights from the metrics snapshot")
		}
		if report.ScoreTrend.Math < 200 || report.ScoreTrend.Math > 800 {
			t.Errorf("Math score trend out of range: %d", report.ScoreTrend.Math)
		}
		if report.ReportPayload.Overall.Attempts != 4 {
			t.Errorf("Expected metrics payload with 4 attempts, got %d", report.ReportPayload.Overall.Attempts)
		}

		stored, err := mockRepo.report.GetByStudentAndWeek(ctx, nil, "student-1", "2026-08-24")
		if err != nil {
			t.Fatalf("Expected report persisted: %v", err)
		}
		if stored.StudentID != "student-1" {
			t.Errorf("Stored report has wrong student: %s", stored.StudentID)
		}

		published := mockPublisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}
		if published[0].Type != events.TopicReportGenerated {
			t.Errorf("Expected event type %s, got %s", events.TopicReportGenerated, published[0].Type)
		}
	})

	t.Run("defaults week start to the current week", func(t *testing.T) {
		report, err := service.Build(ctx, "student-1", &WeeklyReportRequest{})
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		want := engine.WeekStart(time.Now().UTC())
		if report.WeekStart != want {
			t.Errorf("Expected week start %s, got %s", want, report.WeekStart)
		}
	})

	t.Run("rebuilding a week overwrites in place", func(t *testing.T) {
		first, err := service.Build(ctx, "student-1", &WeeklyReportRequest{WeekStart: "2026-08-17"})
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		second, err := service.Build(ctx, "student-1", &WeeklyReportRequest{WeekStart: "2026-08-17"})
		if err != nil {
			t.Fatalf("Rebuild failed: %v", err)
		}
		if first.WeekStart != second.WeekStart {
			t.Error("Rebuild should target the same week")
		}
		reports, err := mockRepo.report.GetByStudent(ctx, nil, "student-1", 0)
		if err != nil {
			t.Fatalf("list reports: %v", err)
		}
		weeks := map[string]int{}
		for _, r := range reports {
			weeks[r.WeekStart]++
		}
		if weeks["2026-08-17"] != 1 {
			t.Errorf("Expected one stored report for the week, got %d", weeks["2026-08-17"])
		}
	})
}

func TestReportServiceReads(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockPublisher := events.NewMockEventPublisher(logger)
	mockRepo := newMockRepository()
	service := newTestReportService(mockRepo, mockPublisher)
	ctx := context.Background()

	seedReportHistory(t, mockRepo, "student-1")
	if _, err := service.Build(ctx, "student-1", &WeeklyReportRequest{WeekStart: "2026-08-24"}); err != nil {
		t.Fatalf("seed report: %v", err)
	}

	t.Run("get missing report", func(t *testing.T) {
		_, err := service.Get(ctx, "student-1", "1999-01-04")
		if !errors.Is(err, ErrReportNotFound) {
			t.Errorf("Expected ErrReportNotFound, got %v", err)
		}
	})

	t.Run("list recent applies the default limit", func(t *testing.T) {
		reports, err := service.ListRecent(ctx, "student-1", 0)
		if err != nil {
			t.Fatalf("ListRecent failed: %v", err)
		}
		if len(reports) != 1 {
			t.Errorf("Expected 1 report, got %d", len(reports))
		}
	})

	t.Run("renders the markdown document", func(t *testing.T) {
		doc, err := service.RenderMarkdown(ctx, "student-1", "2026-08-24")
		if err != nil {
			t.Fatalf("RenderMarkdown failed: %v", err)
		}
		for _, want := range []string{
			"# Weekly Progress Report",
			"Student: student-1",
			"Week of: 2026-08-24",
			"## Highlights",
			"## Risks",
			"## Recommended Actions",
		} {
			if !strings.Contains(doc, want) {
				t.Errorf("Rendered report missing %q", want)
			}
		}
	})

	t.Run("exports a workbook", func(t *testing.T) {
		export, err := service.ExportXLSX(ctx, "student-1", "2026-08-24")
		if err != nil {
			t.Fatalf("ExportXLSX failed: %v", err)
		}
		if export.Filename != "weekly-report-student-1-2026-08-24.xlsx" {
			t.Errorf("Unexpected filename: %s", export.Filename)
		}
		if len(export.Data) == 0 {
			t.Error("Expected non-empty workbook bytes")
		}
	})

	t.Run("export of a missing week fails cleanly", func(t *testing.T) {
		_, err := service.ExportXLSX(ctx, "student-1", "1999-01-04")
		if !errors.Is(err, ErrReportNotFound) {
			t.Errorf("Expected ErrReportNotFound, got %v", err)
		}
	})
}
