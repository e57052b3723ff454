package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/DMALUVM/satprep-planner/internal/engine"
	"github.com/DMALUVM/satprep-planner/internal/events"
	"github.com/DMALUVM/satprep-planner/internal/models"
	"github.com/DMALUVM/satprep-planner/internal/repositories"
)

// defaultReportLimit caps ListRecent when the caller passes no limit
const defaultReportLimit = 12

type reportService struct {
	repo           repositories.Repository
	db             *gorm.DB
	engine         *engine.Engine
	progress       ProgressService
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewReportService(repo repositories.Repository, db *gorm.DB, eng *engine.Engine, progress ProgressService, publisher events.EventPublisher, logger *slog.Logger) ReportService {
	return &reportService{
		repo:           repo,
		db:             db,
		engine:         eng,
		progress:       progress,
		eventPublisher: publisher,
		logger:         logger,
	}
}

// ===== BUILD =====

func (s *reportService) Build(ctx context.Context, studentID string, req *WeeklyReportRequest) (*models.WeeklyReport, error) {
	now := time.Now().UTC()

	weekStart := ""
	if req != nil {
		weekStart = req.WeekStart
	}
	if weekStart == "" {
		weekStart = engine.WeekStart(now)
	}

	s.logger.Info("Building weekly report",
		"student_id", studentID,
		"week_start", weekStart)

	metrics, err := s.progress.GetMetrics(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}

	// Risks look at the mission record around the report week.
	riskFrom := engine.DayKey(now.AddDate(0, 0, -s.engine.Tuning().StreakCapDays))
	missionRows, err := s.repo.Mission().GetByStudentDateRange(ctx, s.db, studentID, riskFrom, engine.DayKey(now))
	if err != nil {
		return nil, fmt.Errorf("failed to get missions: %w", err)
	}
	missions := make([]models.DailyMission, 0, len(missionRows))
	for _, m := range missionRows {
		missions = append(missions, *m)
	}

	risks := s.engine.DeriveRisks(missions, *metrics, now)
	report := s.engine.BuildWeeklyReport(studentID, weekStart, *metrics, risks)

	if err := s.repo.Report().Upsert(ctx, s.db, report); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	if s.eventPublisher != nil {
		event := events.NewEvent(events.TopicReportGenerated, studentID, events.ReportGeneratedEvent{
			StudentID:     studentID,
			WeekStart:     weekStart,
			PredictedMath: report.ScoreTrend.Math,
			PredictedVerb: report.ScoreTrend.Verbal,
			RiskCount:     len(report.Risks),
		})
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish report event", "error", err)
		}
	}

	return report, nil
}

// ===== READ OPERATIONS =====

func (s *reportService) Get(ctx context.Context, studentID, weekStart string) (*models.WeeklyReport, error) {
	if weekStart == "" {
		weekStart = engine.WeekStart(time.Now().UTC())
	}

	report, err := s.repo.Report().GetByStudentAndWeek(ctx, s.db, studentID, weekStart)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

func (s *reportService) ListRecent(ctx context.Context, studentID string, limit int) ([]*models.WeeklyReport, error) {
	if limit <= 0 {
		limit = defaultReportLimit
	}

	reports, err := s.repo.Report().GetByStudent(ctx, s.db, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// ===== PRESENTATION =====

func (s *reportService) RenderMarkdown(ctx context.Context, studentID, weekStart string) (string, error) {
	report, err := s.Get(ctx, studentID, weekStart)
	if err != nil {
		return "", err
	}
	return engine.RenderReport(report), nil
}

func (s *reportService) ExportXLSX(ctx context.Context, studentID, weekStart string) (*ReportExport, error) {
	report, err := s.Get(ctx, studentID, weekStart)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeSummarySheet(f, report); err != nil {
		return nil, fmt.Errorf("failed to write summary sheet: %w", err)
	}
	if err := s.writeDomainSheet(f, report); err != nil {
		return nil, fmt.Errorf("failed to write domain sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	return &ReportExport{
		Filename: fmt.Sprintf("weekly-report-%s-%s.xlsx", report.StudentID, report.WeekStart),
		Data:     buf.Bytes(),
	}, nil
}

func (s *reportService) writeSummarySheet(f *excelize.File, report *models.WeeklyReport) error {
	const sheet = "Summary"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Student", report.StudentID},
		{"Week of", report.WeekStart},
		{"Predicted Math", report.ScoreTrend.Math},
		{"Predicted Verbal", report.ScoreTrend.Verbal},
		{"Accuracy %", report.ReportPayload.Overall.AccuracyPct},
		{"Pace (s/question)", report.ReportPayload.Overall.PaceSeconds},
		{"Questions Attempted", report.ReportPayload.Overall.Attempts},
		{"Study Streak (days)", report.ReportPayload.StreakDays},
	}

	line := 1
	for _, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
		line++
	}

	line++
	line = writeStringSection(f, sheet, line, "Highlights", report.Highlights)
	line = writeStringSection(f, sheet, line, "Risks", report.Risks)
	writeStringSection(f, sheet, line, "Recommended Actions", report.RecommendedActions)
	return nil
}

func writeStringSection(f *excelize.File, sheet string, line int, title string, items []string) int {
	cell, _ := excelize.CoordinatesToCellName(1, line)
	f.SetCellValue(sheet, cell, title)
	line++
	for _, item := range items {
		cell, _ = excelize.CoordinatesToCellName(2, line)
		f.SetCellValue(sheet, cell, item)
		line++
	}
	return line + 1
}

func (s *reportService) writeDomainSheet(f *excelize.File, report *models.WeeklyReport) error {
	const sheet = "Domains"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"Domain", "Attempts", "Correct", "Accuracy %"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	domains := make([]models.QuestionDomain, 0, len(report.DomainBreakdown))
	for d := range report.DomainBreakdown {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i] < domains[j] })

	for i, d := range domains {
		stat := report.DomainBreakdown[d]
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{string(d), stat.Attempts, stat.Correct, stat.AccuracyPct}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
