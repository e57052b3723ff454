package models

import (
	"time"
)

// ScoreTrend is the predicted-score pair carried on a weekly report.
type ScoreTrend struct {
	Math   int `json:"math"`
	Verbal int `json:"verbal"`
}

// WeeklyReport summarizes a week of activity for a guardian, keyed by
// (student_id, week_start). Regenerated on demand; repeat writes overwrite.
type WeeklyReport struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	StudentID string `json:"student_id" gorm:"not null;uniqueIndex:idx_student_week;size:255"`
	WeekStart string `json:"week_start" gorm:"not null;uniqueIndex:idx_student_week;size:10"` // YYYY-MM-DD

	Highlights         []string                      `json:"highlights" gorm:"serializer:json;type:jsonb"`
	Risks              []string                      `json:"risks" gorm:"serializer:json;type:jsonb"`
	ScoreTrend         ScoreTrend                    `json:"score_trend" gorm:"serializer:json;type:jsonb"`
	DomainBreakdown    map[QuestionDomain]DomainStat `json:"domain_breakdown" gorm:"serializer:json;type:jsonb"`
	RecommendedActions []string                      `json:"recommended_actions" gorm:"serializer:json;type:jsonb"`

	// Raw metrics snapshot kept for audit and export.
	ReportPayload ProgressMetrics `json:"report_payload" gorm:"serializer:json;type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WeeklyReport) TableName() string {
	return "weekly_reports"
}
