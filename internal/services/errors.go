package services

import "errors"

// Sentinel errors returned by the service layer. Handlers map these to
// HTTP status codes.
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrMissionNotFound  = errors.New("mission not found")
	ErrReportNotFound   = errors.New("report not found")
	ErrMasteryNotFound  = errors.New("mastery not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrStudentNotFound  = errors.New("student not found")
	ErrNotFound         = errors.New("resource not found")

	ErrEmptyCatalog     = errors.New("question catalog is empty")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidPlanDate  = errors.New("invalid plan date")
)
