package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DMALUVM/satprep-planner/internal/services"
	"github.com/DMALUVM/satprep-planner/internal/utils"
	"github.com/DMALUVM/satprep-planner/internal/validator"
)

// ErrorResponse is the error payload shape for all endpoints
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps data payloads where a bare object would be ambiguous
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// BaseHandler carries the shared handler utilities
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	utils.FromContext(c, h.logger).Error(msg, args...)
}

// parsePagination reads page/size query params with sane bounds
func (h *BaseHandler) parsePagination(c *gin.Context) (limit, offset int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return size, (page - 1) * size
}

// studentIDParam reads the student path parameter, rejecting blanks
func (h *BaseHandler) studentIDParam(c *gin.Context) string {
	id := strings.TrimSpace(c.Param("student_id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Student ID is required",
		})
	}
	return id
}

// handleServiceError maps service errors onto HTTP status codes
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Question not found",
		})
	case errors.Is(err, services.ErrMissionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Mission not found",
		})
	case errors.Is(err, services.ErrReportNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Report not found",
		})
	case errors.Is(err, services.ErrMasteryNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Mastery record not found",
		})
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Session not found",
		})
	case errors.Is(err, services.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Student not found",
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Resource not found",
		})
	case errors.Is(err, services.ErrEmptyCatalog):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Catalog refresh produced no questions",
		})
	case errors.Is(err, services.ErrInvalidPlanDate):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid plan date",
		})
	case errors.Is(err, services.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
