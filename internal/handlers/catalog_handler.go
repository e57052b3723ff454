package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DMALUVM/satprep-planner/internal/models"
	"github.com/DMALUVM/satprep-planner/internal/repositories"
	"github.com/DMALUVM/satprep-planner/internal/services"
	"github.com/DMALUVM/satprep-planner/internal/utils"
)

type CatalogHandler struct {
	BaseHandler
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService, logger utils.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
	}
}

// RefreshCatalog reloads the question pools and replaces the stored catalog
func (h *CatalogHandler) RefreshCatalog(c *gin.Context) {
	actorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Refreshing catalog", "actor_id", actorID)

	result, err := h.catalogService.Refresh(c.Request.Context(), actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetQuestion returns one question by ID
func (h *CatalogHandler) GetQuestion(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Question ID is required",
		})
		return
	}

	question, err := h.catalogService.GetQuestion(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// ListQuestions returns a filtered page of the catalog
func (h *CatalogHandler) ListQuestions(c *gin.Context) {
	filters := h.parseQuestionFilters(c)

	page, err := h.catalogService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetCatalogStats returns catalog composition counts
func (h *CatalogHandler) GetCatalogStats(c *gin.Context) {
	stats, err := h.catalogService.GetStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *CatalogHandler) parseQuestionFilters(c *gin.Context) repositories.QuestionFilters {
	filters := repositories.QuestionFilters{}
	filters.Limit, filters.Offset = h.parsePagination(c)
	filters.SortBy = c.DefaultQuery("sort_by", "id")
	filters.SortOrder = c.DefaultQuery("sort_order", "asc")

	if domainStr := strings.TrimSpace(c.Query("domain")); domainStr != "" {
		domain := models.QuestionDomain(domainStr)
		filters.Domain = &domain
	}
	if skill := strings.TrimSpace(c.Query("skill")); skill != "" {
		filters.Skill = &skill
	}
	if raw := c.Query("difficulty_min"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filters.DifficultyMin = &n
		}
	}
	if raw := c.Query("difficulty_max"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filters.DifficultyMax = &n
		}
	}
	if raw := c.Query("calculator"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			filters.Calculator = &b
		}
	}

	return filters
}
