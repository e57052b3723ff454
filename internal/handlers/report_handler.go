package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DMALUVM/satprep-planner/internal/services"
	"github.com/DMALUVM/satprep-planner/internal/utils"
)

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// BuildReport assembles and stores the weekly report
func (h *ReportHandler) BuildReport(c *gin.Context) {
	studentID := h.studentIDParam(c)
	if studentID == "" {
		return
	}

	h.LogRequest(c, "Building weekly report", "student_id", studentID)

	var req services.WeeklyReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	report, err := h.reportService.Build(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// GetReport returns the stored report for one week
func (h *ReportHandler) GetReport(c *gin.Context) {
	studentID := h.studentIDParam(c)
	if studentID == "" {
		return
	}

	weekStart := strings.TrimSpace(c.Param("week_start"))

	report, err := h.reportService.Get(c.Request.Context(), studentID, weekStart)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListReports returns the most recent reports for the student
func (h *ReportHandler) ListReports(c *gin.Context) {
	studentID := h.studentIDParam(c)
	if studentID == "" {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	reports, err := h.reportService.ListRecent(c.Request.Context(), studentID, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"total":   len(reports),
	})
}

// GetReportMarkdown renders the report as a plain-text document
func (h *ReportHandler) GetReportMarkdown(c *gin.Context) {
	studentID := h.studentIDParam(c)
	if studentID == "" {
		return
	}

	weekStart := strings.TrimSpace(c.Param("week_start"))

	doc, err := h.reportService.RenderMarkdown(c.Request.Context(), studentID, weekStart)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(doc))
}

// ExportReport streams the report as an Excel workbook
func (h *ReportHandler) ExportReport(c *gin.Context) {
	studentID := h.studentIDParam(c)
	if studentID == "" {
		return
	}

	weekStart := strings.TrimSpace(c.Param("week_start"))

	export, err := h.reportService.ExportXLSX(c.Request.Context(), studentID, weekStart)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.Data)
}
