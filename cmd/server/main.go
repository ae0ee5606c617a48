package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/kelasops-backend/internal/config"
	"github.com/stemsi/kelasops-backend/internal/database"
	"github.com/stemsi/kelasops-backend/internal/handler"
	"github.com/stemsi/kelasops-backend/internal/logger"
	"github.com/stemsi/kelasops-backend/internal/metabase"
	"github.com/stemsi/kelasops-backend/internal/repository"
	"github.com/stemsi/kelasops-backend/internal/router"
	"github.com/stemsi/kelasops-backend/internal/service"
	"github.com/stemsi/kelasops-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting KelasOps Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Metabase Client ───────────────────────────────────────────────
	mb := metabase.NewClient(cfg.MetabaseURL, cfg.MetabaseUsername, cfg.MetabasePassword)

	// ─── Initialize Repositories ───────────────────────────────────────
	sessionRepo := repository.NewObservedSessionRepository(pool)
	ruleRepo := repository.NewNormalizationRuleRepository(pool)
	slotRepo := repository.NewAssignmentSlotRepository(pool)
	teacherRepo := repository.NewTeacherRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	adminService := service.NewAdminService(adminRepo)
	syncService := service.NewSyncService(cfg, mb, sessionRepo, rdb, log)
	validationService := service.NewValidationService(sessionRepo, ruleRepo, teacherRepo, log)
	normalizationService := service.NewNormalizationService(ruleRepo, sessionRepo, slotRepo, log)
	recommendationService := service.NewRecommendationService(teacherRepo, log)
	assignmentService := service.NewAssignmentService(slotRepo, validationService, log)
	teacherService := service.NewTeacherService(teacherRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(authService, adminService),
		Sync:          handler.NewSyncHandler(syncService, sessionRepo),
		Normalization: handler.NewNormalizationHandler(normalizationService),
		Assignment:    handler.NewAssignmentHandler(assignmentService, recommendationService),
		Teacher:       handler.NewTeacherHandler(teacherService),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
