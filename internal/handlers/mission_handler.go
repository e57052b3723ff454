package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DMALUVM/satprep-planner/internal/models"
	"github.com/DMALUVM/satprep-planner/internal/repositories"
	"github.com/DMALUVM/satprep-planner/internal/services"
	"github.com/DMALUVM/satprep-planner/internal/utils"
)

type MissionHandler struct {
	BaseHandler
	missionService services.MissionService
}

func NewMissionHandler(missionService services.MissionService, logger utils.Logger) *MissionHandler {
	return &MissionHandler{
		BaseHandler:    NewBaseHandler(logger),
		missionService: missionService,
	}
}

// GenerateMission builds (or rebuilds) the daily mission for a plan date
func (h *MissionHandler) GenerateMission(c *gin.Context) {
	studentID := h.studentIDParam(c)
	if studentID == "" {
		return
	}

	h.LogRequest(c, "Generating mission", "student_id", studentID)

	var req services.GenerateMissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	mission, err := h.missionService.Generate(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mission)
}

// GetTodayMission returns the mission for the current day
func (h *MissionHandler) GetTodayMission(c *gin.Context) {
	studentID := h.studentIDParam(c)
	if studentID == "" {
		return
	}

	mission, err := h.missionService.GetByDate(c.Request.Context(), studentID, "")
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, mission)
}

// GetMission returns the mission for one plan date
func (h *MissionHandler) GetMission(c *gin.Context) {
	studentID := h.studentIDParam(c)
	if studentID == "" {
		return
	}

	planDate := strings.TrimSpace(c.Param("plan_date"))

	mission, err := h.missionService.GetByDate(c.Request.Context(), studentID, planDate)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, mission)
}

// ListMissions returns the student's mission history
func (h *MissionHandler) ListMissions(c *gin.Context) {
	studentID := h.studentIDParam(c)
	if studentID == "" {
		return
	}

	filters := repositories.MissionFilters{}
	filters.Limit, filters.Offset = h.parsePagination(c)

	if statusStr := strings.TrimSpace(c.Query("status")); statusStr != "" {
		status := models.MissionStatus(statusStr)
		filters.Status = &status
	}
	if from := strings.TrimSpace(c.Query("from")); from != "" {
		filters.DateFrom = &from
	}
	if to := strings.TrimSpace(c.Query("to")); to != "" {
		filters.DateTo = &to
	}

	missions, total, err := h.missionService.GetHistory(c.Request.Context(), studentID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"missions": missions,
		"total":    total,
	})
}

// CompleteSession closes out a day's work against its mission
func (h *MissionHandler) CompleteSession(c *gin.Context) {
	studentID := h.studentIDParam(c)
	if studentID == "" {
		return
	}

	h.LogRequest(c, "Completing session", "student_id", studentID)

	var req services.CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	mission, err := h.missionService.CompleteSession(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, mission)
}
