package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DMALUVM/satprep-planner/internal/services"
	"github.com/DMALUVM/satprep-planner/internal/utils"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

// GetProgress returns the full progress snapshot for the student
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	studentID := h.studentIDParam(c)
	if studentID == "" {
		return
	}

	metrics, err := h.progressService.GetMetrics(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// GetBands returns the student's skills partitioned into mastery bands
func (h *ProgressHandler) GetBands(c *gin.Context) {
	studentID := h.studentIDParam(c)
	if studentID == "" {
		return
	}

	bands, err := h.progressService.GetBands(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bands)
}
