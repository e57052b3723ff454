package services

import (
	"context"
	"time"

	"github.com/DMALUVM/satprep-planner/internal/engine"
	"github.com/DMALUVM/satprep-planner/internal/models"
	"github.com/DMALUVM/satprep-planner/internal/repositories"
)

// ===== REQUEST/RESPONSE DTOs =====

// Request DTOs live with the models so handlers and services share them
type RecordAttemptRequest = models.RecordAttemptRequest
type GenerateMissionRequest = models.GenerateMissionRequest
type CompleteSessionRequest = models.CompleteSessionRequest
type WeeklyReportRequest = models.WeeklyReportRequest

type QuestionResponse struct {
	*models.Question
	VariantCount int `json:"variant_count,omitempty"`
}

type QuestionListResponse struct {
	Questions []*QuestionResponse `json:"questions"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	Size      int                 `json:"size"`
}

type AttemptHistoryResponse struct {
	Attempts []*models.Attempt `json:"attempts"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Size     int               `json:"size"`
}

type BandsResponse struct {
	Weak   []models.SkillMastery `json:"weak"`
	Growth []models.SkillMastery `json:"growth"`
	Strong []models.SkillMastery `json:"strong"`
}

type ReportExport struct {
	Filename string `json:"filename"`
	Data     []byte `json:"-"`
}

// ===== SERVICE INTERFACES =====

type CatalogService interface {
	// Refresh reloads the bundled, remote and verbal pools, merges them
	// and replaces the stored catalog
	Refresh(ctx context.Context, actorID string) (*models.CatalogRefreshResponse, error)

	// Read operations
	GetQuestion(ctx context.Context, id string) (*QuestionResponse, error)
	List(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error)
	GetStats(ctx context.Context) (*repositories.CatalogStats, error)

	// LoadPool returns the full catalog as the engine consumes it
	LoadPool(ctx context.Context) ([]models.Question, map[string]models.Question, error)
}

type AttemptService interface {
	// Record grades one answer into the append-only log and folds the
	// result into the student's mastery row
	Record(ctx context.Context, studentID string, req *RecordAttemptRequest) (*models.AttemptRecordedResponse, error)

	// Review queue (spaced repetition)
	GetReviewQueue(ctx context.Context, studentID string, asOf time.Time) (*models.ReviewQueueResponse, error)

	// History
	GetHistory(ctx context.Context, studentID string, filters repositories.AttemptFilters) (*AttemptHistoryResponse, error)
	GetStats(ctx context.Context, studentID string) (*repositories.AttemptStats, error)
}

type MissionService interface {
	// Generate builds (or rebuilds) the mission for one plan date
	Generate(ctx context.Context, studentID string, req *GenerateMissionRequest) (*models.DailyMission, error)

	// Read operations
	GetByDate(ctx context.Context, studentID, planDate string) (*models.DailyMission, error)
	GetHistory(ctx context.Context, studentID string, filters repositories.MissionFilters) ([]*models.DailyMission, int64, error)

	// CompleteSession closes out a day's work: updates the mission
	// status and summary and records the practice session
	CompleteSession(ctx context.Context, studentID string, req *CompleteSessionRequest) (*models.DailyMission, error)
}

type ProgressService interface {
	GetMetrics(ctx context.Context, studentID string) (*models.ProgressMetrics, error)
	GetBands(ctx context.Context, studentID string) (*BandsResponse, error)
}

type ReportService interface {
	// Build assembles and stores the report for one week
	Build(ctx context.Context, studentID string, req *WeeklyReportRequest) (*models.WeeklyReport, error)

	// Read operations
	Get(ctx context.Context, studentID, weekStart string) (*models.WeeklyReport, error)
	ListRecent(ctx context.Context, studentID string, limit int) ([]*models.WeeklyReport, error)

	// Presentation
	RenderMarkdown(ctx context.Context, studentID, weekStart string) (string, error)
	ExportXLSX(ctx context.Context, studentID, weekStart string) (*ReportExport, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Catalog() CatalogService
	Attempt() AttemptService
	Mission() MissionService
	Progress() ProgressService
	Report() ReportService

	// The shared planning engine
	Engine() *engine.Engine

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
