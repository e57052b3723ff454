package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event topics published by the planner
const (
	TopicAttemptRecorded  = "attempt.recorded"
	TopicMissionGenerated = "mission.generated"
	TopicReportGenerated  = "report.generated"
	TopicCatalogRefreshed = "catalog.refreshed"
)

// Event is the envelope for every message the planner publishes
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	StudentID string      `json:"student_id,omitempty"`
	Data      interface{} `json:"data"`
}

// EventPublisher abstracts the message bus
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// NewEvent builds an event envelope with standard metadata
func NewEvent(eventType, studentID string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "satprep-planner",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		StudentID: studentID,
		Data:      data,
	}
}

// ===== EVENT PAYLOADS =====

// AttemptRecordedEvent is published after every graded attempt
type AttemptRecordedEvent struct {
	StudentID  string  `json:"student_id"`
	QuestionID string  `json:"question_id"`
	Skill      string  `json:"skill"`
	IsCorrect  bool    `json:"is_correct"`
	Seconds    float64 `json:"seconds"`
	NewMastery float64 `json:"new_mastery"`
}

// MissionGeneratedEvent is published when a daily mission is created
type MissionGeneratedEvent struct {
	StudentID     string   `json:"student_id"`
	PlanDate      string   `json:"plan_date"`
	TargetMinutes int      `json:"target_minutes"`
	FocusSkills   []string `json:"focus_skills"`
}

// ReportGeneratedEvent is published when a weekly report is built
type ReportGeneratedEvent struct {
	StudentID     string `json:"student_id"`
	WeekStart     string `json:"week_start"`
	PredictedMath int    `json:"predicted_math"`
	PredictedVerb int    `json:"predicted_verbal"`
	RiskCount     int    `json:"risk_count"`
}

// CatalogRefreshedEvent is published after a catalog refresh
type CatalogRefreshedEvent struct {
	QuestionCount int    `json:"question_count"`
	RemoteUsed    bool   `json:"remote_used"`
	RefreshedBy   string `json:"refreshed_by"`
}
