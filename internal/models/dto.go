package models

import (
	"time"
)

type RecordAttemptRequest struct {
	QuestionID   string      `json:"question_id" validate:"required,max=64"`
	SessionID    string      `json:"session_id" validate:"omitempty,max=64"`
	SessionMode  SessionMode `json:"session_mode" validate:"omitempty,oneof=diagnostic practice timed review"`
	IsCorrect    bool        `json:"is_correct"`
	SecondsSpent float64     `json:"seconds_spent" validate:"min=0,max=3600"`
}

type GenerateMissionRequest struct {
	PlanDate      string `json:"plan_date" validate:"omitempty,datetime=2006-01-02"`
	TargetMinutes int    `json:"target_minutes" validate:"omitempty,min=1,max=600"`
}

type CompleteSessionRequest struct {
	PlanDate       string      `json:"plan_date" validate:"omitempty,datetime=2006-01-02"`
	CompletedTasks int         `json:"completed_tasks" validate:"min=0,max=4"`
	Accuracy       float64     `json:"accuracy" validate:"min=0,max=100"`
	PaceSeconds    float64     `json:"pace_seconds" validate:"min=0"`
	SessionMode    SessionMode `json:"session_mode" validate:"omitempty,oneof=diagnostic practice timed review"`
}

type WeeklyReportRequest struct {
	WeekStart string `json:"week_start" validate:"omitempty,datetime=2006-01-02"`
}

type AttemptRecordedResponse struct {
	Attempt *Attempt      `json:"attempt"`
	Mastery *SkillMastery `json:"mastery"`
}

type ReviewQueueResponse struct {
	Questions []Question `json:"questions"`
	Fallback  bool       `json:"fallback"` // true when no items were formally due
	AsOf      time.Time  `json:"as_of"`
}

type CatalogRefreshResponse struct {
	Total       int       `json:"total"`
	RemoteUsed  bool      `json:"remote_used"`
	RefreshedAt time.Time `json:"refreshed_at"`
}
