package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/kelasops-backend/internal/config"
	"github.com/stemsi/kelasops-backend/internal/handler"
	"github.com/stemsi/kelasops-backend/internal/middleware"
	"github.com/stemsi/kelasops-backend/internal/response"
	"github.com/stemsi/kelasops-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	Sync          *handler.SyncHandler
	Normalization *handler.NormalizationHandler
	Assignment    *handler.AssignmentHandler
	Teacher       *handler.TeacherHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Ingestion pipeline + observed store.
		adminAPI.POST("/sync", handlers.Sync.RunSync)
		adminAPI.GET("/sync/last", handlers.Sync.GetLastReport)
		adminAPI.GET("/observed-sessions", handlers.Sync.ListObservedSessions)

		// Slot normalization registry.
		adminAPI.GET("/normalization-rules", handlers.Normalization.ListRules)
		adminAPI.POST("/normalization-rules", handlers.Normalization.CreateRule)
		adminAPI.DELETE("/normalization-rules/:id", handlers.Normalization.DeleteRule)
		adminAPI.GET("/normalization-rules/resolve", handlers.Normalization.Resolve)
		adminAPI.GET("/normalization-rules/unmatched", handlers.Normalization.ListUnmatched)

		// Assignment slots, the validation gate and recommendations.
		adminAPI.GET("/assignment-slots", handlers.Assignment.ListSlots)
		adminAPI.POST("/assignment-slots", handlers.Assignment.CreateSlot)
		adminAPI.GET("/assignment-slots/:id", handlers.Assignment.GetSlot)
		adminAPI.PUT("/assignment-slots/:id", handlers.Assignment.UpdateSlot)
		adminAPI.DELETE("/assignment-slots/:id", handlers.Assignment.DeleteSlot)
		adminAPI.POST("/assignment-slots/:id/status", handlers.Assignment.ChangeStatus)
		adminAPI.POST("/assignment-slots/:id/teacher", handlers.Assignment.AssignTeacher)
		adminAPI.POST("/assignment-slots/:id/mentor", handlers.Assignment.AssignMentor)
		adminAPI.POST("/assignment-slots/:id/validate", handlers.Assignment.ValidateSlot)
		adminAPI.GET("/assignment-slots/:id/recommendations", handlers.Assignment.GetRecommendations)

		// Teacher roster.
		adminAPI.GET("/teachers", handlers.Teacher.ListTeachers)
		adminAPI.POST("/teachers", handlers.Teacher.CreateTeacher)
		adminAPI.GET("/teachers/:id", handlers.Teacher.GetTeacher)
		adminAPI.PUT("/teachers/:id", handlers.Teacher.UpdateTeacher)
		adminAPI.DELETE("/teachers/:id", handlers.Teacher.DeleteTeacher)
		adminAPI.POST("/teachers/:id/capabilities", handlers.Teacher.AddCapability)
		adminAPI.DELETE("/teachers/:id/capabilities/:capability_id", handlers.Teacher.DeleteCapability)
	}

	return router
}
