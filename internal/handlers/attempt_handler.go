package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DMALUVM/satprep-planner/internal/models"
	"github.com/DMALUVM/satprep-planner/internal/repositories"
	"github.com/DMALUVM/satprep-planner/internal/services"
	"github.com/DMALUVM/satprep-planner/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// RecordAttempt grades one answered question into the student's log
func (h *AttemptHandler) RecordAttempt(c *gin.Context) {
	studentID := h.studentIDParam(c)
	if studentID == "" {
		return
	}

	h.LogRequest(c, "Recording attempt", "student_id", studentID)

	var req services.RecordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.attemptService.Record(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetReviewQueue returns the spaced-repetition queue for the student
func (h *AttemptHandler) GetReviewQueue(c *gin.Context) {
	studentID := h.studentIDParam(c)
	if studentID == "" {
		return
	}

	asOf := time.Now().UTC()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid as_of timestamp, expected RFC3339",
			})
			return
		}
		asOf = parsed.UTC()
	}

	queue, err := h.attemptService.GetReviewQueue(c.Request.Context(), studentID, asOf)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, queue)
}

// ListAttempts returns the student's attempt history
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	studentID := h.studentIDParam(c)
	if studentID == "" {
		return
	}

	filters := h.parseAttemptFilters(c)

	history, err := h.attemptService.GetHistory(c.Request.Context(), studentID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// GetAttemptStats returns aggregate accuracy and pace for the student
func (h *AttemptHandler) GetAttemptStats(c *gin.Context) {
	studentID := h.studentIDParam(c)
	if studentID == "" {
		return
	}

	stats, err := h.attemptService.GetStats(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *AttemptHandler) parseAttemptFilters(c *gin.Context) repositories.AttemptFilters {
	filters := repositories.AttemptFilters{}
	filters.Limit, filters.Offset = h.parsePagination(c)

	if sessionID := strings.TrimSpace(c.Query("session_id")); sessionID != "" {
		filters.SessionID = &sessionID
	}
	if modeStr := strings.TrimSpace(c.Query("mode")); modeStr != "" {
		mode := models.SessionMode(modeStr)
		filters.Mode = &mode
	}
	if raw := c.Query("from"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.DateFrom = &parsed
		}
	}
	if raw := c.Query("to"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.DateTo = &parsed
		}
	}

	return filters
}
