package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/SAP-F-2025/tutor-service/internal/auth"
	"github.com/SAP-F-2025/tutor-service/internal/metrics"
	"github.com/SAP-F-2025/tutor-service/internal/models"
	"github.com/SAP-F-2025/tutor-service/internal/services"
	"github.com/SAP-F-2025/tutor-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HandlerManager struct {
	advisorHandler  *AdvisorHandler
	progressHandler *ProgressHandler
	rosterHandler   *RosterHandler

	authMiddleware gin.HandlerFunc
	db             Pinger
}

// NewHandlerManager builds every handler. authMiddleware must set the caller
// identity (auth.Middleware or auth.DevMiddleware).
func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	authMiddleware gin.HandlerFunc,
	db Pinger,
) *HandlerManager {
	return &HandlerManager{
		advisorHandler:  NewAdvisorHandler(serviceManager.Advisor(), logger),
		progressHandler: NewProgressHandler(serviceManager.Progress(), logger),
		rosterHandler:   NewRosterHandler(serviceManager.Roster(), logger),
		authMiddleware:  authMiddleware,
		db:              db,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)
	router.GET("/metrics", metrics.PrometheusHandler())

	staff := auth.RequireRole(models.RoleTeacher, models.RoleAdmin)

	v1 := router.Group("/api/v1", requestContext(), hm.authMiddleware)
	{
		advisor := v1.Group("/advisor")
		{
			advisor.POST("/risk", staff, hm.advisorHandler.PredictRisk)
			advisor.POST("/students/:id/risk", staff, hm.advisorHandler.PredictStudentRisk)
			advisor.POST("/learning-path", hm.advisorHandler.LearningPath)
			advisor.POST("/quiz", hm.advisorHandler.GenerateQuiz)
			advisor.POST("/chat", hm.advisorHandler.Chat)
			advisor.GET("/insight", staff, hm.advisorHandler.DailyInsight)
		}

		v1.GET("/achievements", hm.progressHandler.Catalog)

		students := v1.Group("/students")
		{
			students.GET("", staff, hm.rosterHandler.ListStudents)

			self := students.Group("/:id", auth.RequireSelfOrStaff("id"))
			{
				self.GET("", hm.rosterHandler.GetStudent)

				owned := self.Group("", hm.rosterHandler.RequireOwnedStudent("id"))
				owned.GET("/progress", hm.progressHandler.GetProgress)
				owned.POST("/xp", hm.progressHandler.AddXP)
				owned.POST("/modules", hm.progressHandler.CompleteModule)
				owned.POST("/login", hm.progressHandler.RecordLogin)
				owned.POST("/achievements/check", hm.progressHandler.CheckAchievements)
				owned.GET("/achievements", hm.progressHandler.ListAchievements)
			}
			students.POST("/:id/progress/reset", auth.RequireRole(models.RoleAdmin), hm.progressHandler.ResetProgress)
		}

		roster := v1.Group("/roster", staff)
		{
			roster.POST("/import", hm.rosterHandler.ImportRoster)
			roster.GET("/export", hm.rosterHandler.ExportRoster)
		}
	}
}

// HealthCheck always answers 200; a failed database ping only marks it degraded.
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	status := gin.H{
		"status":  "healthy",
		"service": "tutor-service",
	}
	if hm.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := hm.db.Ping(ctx); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
		} else {
			status["database"] = "ok"
		}
	}
	c.JSON(http.StatusOK, status)
}

// requestContext copies the request id into the request context for the service loggers.
func requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := utils.GetRequestID(c); id != "" {
			c.Request = c.Request.WithContext(services.WithRequestID(c.Request.Context(), id))
		}
		c.Next()
	}
}
