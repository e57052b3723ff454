package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/DMALUVM/satprep-planner/internal/config"
	"github.com/DMALUVM/satprep-planner/internal/models"
	"github.com/DMALUVM/satprep-planner/internal/repositories"
	"github.com/DMALUVM/satprep-planner/internal/services"
	"github.com/DMALUVM/satprep-planner/internal/utils"
)

type HandlerManager struct {
	catalogHandler  *CatalogHandler
	attemptHandler  *AttemptHandler
	missionHandler  *MissionHandler
	progressHandler *ProgressHandler
	reportHandler   *ReportHandler
	authMiddleware  *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		catalogHandler:  NewCatalogHandler(serviceManager.Catalog(), logger),
		attemptHandler:  NewAttemptHandler(serviceManager.Attempt(), logger),
		missionHandler:  NewMissionHandler(serviceManager.Mission(), logger),
		progressHandler: NewProgressHandler(serviceManager.Progress(), logger),
		reportHandler:   NewReportHandler(serviceManager.Report(), logger),
		authMiddleware:  authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Catalog routes
		catalog := v1.Group("/catalog")
		{
			// Refresh replaces the stored pool - Admins only
			catalog.POST("/refresh", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.catalogHandler.RefreshCatalog)

			// Read access - all authenticated users
			catalog.GET("/questions", hm.catalogHandler.ListQuestions)
			catalog.GET("/questions/:id", hm.catalogHandler.GetQuestion)
			catalog.GET("/stats", hm.catalogHandler.GetCatalogStats)
		}

		// Student-scoped routes: reads allow the linked guardian,
		// writes are the student (or an admin) only
		students := v1.Group("/students/:student_id")
		students.Use(hm.authMiddleware.StudentAccessMiddleware())
		{
			// Attempt log
			students.POST("/attempts", hm.authMiddleware.StudentWriteMiddleware(), hm.attemptHandler.RecordAttempt)
			students.GET("/attempts", hm.attemptHandler.ListAttempts)
			students.GET("/attempts/stats", hm.attemptHandler.GetAttemptStats)

			// Spaced review
			students.GET("/review-queue", hm.attemptHandler.GetReviewQueue)

			// Daily missions
			students.POST("/missions", hm.authMiddleware.StudentWriteMiddleware(), hm.missionHandler.GenerateMission)
			students.GET("/missions", hm.missionHandler.ListMissions)
			students.GET("/missions/today", hm.missionHandler.GetTodayMission)
			students.GET("/missions/:plan_date", hm.missionHandler.GetMission)
			students.POST("/missions/complete", hm.authMiddleware.StudentWriteMiddleware(), hm.missionHandler.CompleteSession)

			// Progress
			students.GET("/progress", hm.progressHandler.GetProgress)
			students.GET("/progress/bands", hm.progressHandler.GetBands)

			// Weekly reports
			students.POST("/reports", hm.reportHandler.BuildReport)
			students.GET("/reports", hm.reportHandler.ListReports)
			students.GET("/reports/:week_start", hm.reportHandler.GetReport)
			students.GET("/reports/:week_start/markdown", hm.reportHandler.GetReportMarkdown)
			students.GET("/reports/:week_start/export", hm.reportHandler.ExportReport)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "satprep-planner",
		})
	})
}
