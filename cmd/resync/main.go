package main

import (
	"context"
	"fmt"
	"os"

	"github.com/stemsi/kelasops-backend/internal/config"
	"github.com/stemsi/kelasops-backend/internal/database"
	"github.com/stemsi/kelasops-backend/internal/logger"
	"github.com/stemsi/kelasops-backend/internal/metabase"
	"github.com/stemsi/kelasops-backend/internal/repository"
	"github.com/stemsi/kelasops-backend/internal/service"
)

// One-shot sync runner for cron. Exits non-zero on any pipeline failure so
// the scheduler can alert on it.
func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

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

	// ─── Run the Pipeline ──────────────────────────────────────────────
	mb := metabase.NewClient(cfg.MetabaseURL, cfg.MetabaseUsername, cfg.MetabasePassword)
	sessionRepo := repository.NewObservedSessionRepository(pool)
	syncService := service.NewSyncService(cfg, mb, sessionRepo, rdb, log)

	report, err := syncService.Resync(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Resync failed")
		os.Exit(1)
	}

	fmt.Printf("fetched=%d inserted=%d filtered=%d observed=%d effective=%d counts_match=%t\n",
		report.RowsFetched, report.RowsInserted, report.RowsFiltered,
		report.ObservedCount, report.EffectiveCount, report.CountsMatch)
}
