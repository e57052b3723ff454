package repositories

import (
	"time"

	"github.com/DMALUVM/satprep-planner/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Domain        *models.QuestionDomain `json:"domain"`
	Skill         *string                `json:"skill"`
	DifficultyMin *int                   `json:"difficulty_min"`
	DifficultyMax *int                   `json:"difficulty_max"`
	Calculator    *bool                  `json:"calculator"`
	Limit         int                    `json:"limit"`
	Offset        int                    `json:"offset"`
	SortBy        string                 `json:"sort_by"`    // "id", "skill", "difficulty"
	SortOrder     string                 `json:"sort_order"` // "asc", "desc"
}

type AttemptFilters struct {
	StudentID *string             `json:"student_id"`
	SessionID *string             `json:"session_id"`
	Mode      *models.SessionMode `json:"mode"`
	DateFrom  *time.Time          `json:"date_from"`
	DateTo    *time.Time          `json:"date_to"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
	SortBy    string              `json:"sort_by"`    // "created_at"
	SortOrder string              `json:"sort_order"` // "asc", "desc"
}

type SessionFilters struct {
	StudentID *string             `json:"student_id"`
	Mode      *models.SessionMode `json:"mode"`
	DateFrom  *time.Time          `json:"date_from"`
	DateTo    *time.Time          `json:"date_to"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
}

type MissionFilters struct {
	Status   *models.MissionStatus `json:"status"`
	DateFrom *string               `json:"date_from"` // plan date, "YYYY-MM-DD"
	DateTo   *string               `json:"date_to"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type CatalogStats struct {
	TotalQuestions    int                           `json:"total_questions"`
	QuestionsByDomain map[models.QuestionDomain]int `json:"questions_by_domain"`
	SkillCount        int                           `json:"skill_count"`
	VariantCount      int                           `json:"variant_count"`
}

type AttemptStats struct {
	TotalAttempts   int     `json:"total_attempts"`
	CorrectAttempts int     `json:"correct_attempts"`
	AccuracyPct     float64 `json:"accuracy_pct"`
	AvgSeconds      float64 `json:"avg_seconds"`
}
