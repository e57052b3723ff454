package models

import (
	"time"
)

type MissionStatus string

const (
	MissionPending    MissionStatus = "pending"
	MissionInProgress MissionStatus = "in_progress"
	MissionComplete   MissionStatus = "complete"
)

type TaskType string

const (
	TaskWarmup     TaskType = "warmup"
	TaskDrill      TaskType = "adaptive_drill"
	TaskTimedMixed TaskType = "timed_mixed"
	TaskReviewLock TaskType = "review_lock"
)

// MissionTask is one of the four fixed activity blocks of a daily mission.
type MissionTask struct {
	Type          TaskType `json:"type"`
	Label         string   `json:"label"`
	QuestionIDs   []string `json:"question_ids"`
	TargetMinutes int      `json:"target_minutes"`
	Guidance      string   `json:"guidance"`
}

// CompletionSummary is filled in when the student finishes the session.
type CompletionSummary struct {
	CompletedTasks int     `json:"completed_tasks"`
	Accuracy       float64 `json:"accuracy"`
	PaceSeconds    float64 `json:"pace_seconds"`
}

// MissionMetadata records the planner's selection diagnostics for the day.
type MissionMetadata struct {
	FocusSkills        []string  `json:"focus_skills"`
	DeprioritizedSkill []string  `json:"deprioritized_skills"`
	DueSkillCount      int       `json:"due_skill_count"`
	AdaptiveQuestions  int       `json:"adaptive_questions"`
	WarmupPct          int       `json:"warmup_pct"`
	DrillPct           int       `json:"drill_pct"`
	TimedPct           int       `json:"timed_pct"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// DailyMission is the allocated study plan for one student and one day,
// keyed by (student_id, plan_date). Regeneration overwrites the whole row.
type DailyMission struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	StudentID string `json:"student_id" gorm:"not null;uniqueIndex:idx_student_plan_date;size:255"`
	PlanDate  string `json:"plan_date" gorm:"not null;uniqueIndex:idx_student_plan_date;size:10"` // YYYY-MM-DD

	TargetMinutes int           `json:"target_minutes"`
	Status        MissionStatus `json:"status" gorm:"size:32;default:pending;index"`

	Tasks    []MissionTask     `json:"tasks" gorm:"serializer:json;type:jsonb"`
	Summary  CompletionSummary `json:"completion_summary" gorm:"serializer:json;type:jsonb"`
	Metadata MissionMetadata   `json:"mission_metadata" gorm:"serializer:json;type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DailyMission) TableName() string {
	return "daily_missions"
}

// TotalTaskMinutes sums the allocated block minutes; always equal to the
// clamped target minutes for planner-generated missions.
func (m *DailyMission) TotalTaskMinutes() int {
	total := 0
	for _, t := range m.Tasks {
		total += t.TargetMinutes
	}
	return total
}
