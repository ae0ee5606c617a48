package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/kelasops-backend/internal/calibration"
	"github.com/stemsi/kelasops-backend/internal/config"
	"github.com/stemsi/kelasops-backend/internal/metabase"
	"github.com/stemsi/kelasops-backend/internal/model"
)

// Sync pipeline errors. Authentication and fetch failures come through
// wrapped from the metabase client.
var (
	// ErrSyncInProgress means another Resync holds the single-flight lock.
	ErrSyncInProgress = errors.New("another sync is already running")
	// ErrEmptyDataset aborts a sync that would wipe the store and replace
	// it with nothing. Raised before any destructive step.
	ErrEmptyDataset = errors.New("external dataset produced no usable rows")
)

// BatchInsertError reports which insert batch failed. Batches committed
// before it stay committed — the replace is best-effort, not transactional.
type BatchInsertError struct {
	Batch int
	Err   error
}

func (e *BatchInsertError) Error() string {
	return fmt.Sprintf("insert batch %d failed: %v", e.Batch, e.Err)
}

func (e *BatchInsertError) Unwrap() error { return e.Err }

// sessionSource is the external scheduling system. Satisfied by
// *metabase.Client.
type sessionSource interface {
	Authenticate(ctx context.Context) (string, error)
	FetchCardRows(ctx context.Context, token string, cardID int) ([]metabase.Row, error)
}

// sessionStore is the observed-session side of the repository. Satisfied by
// *repository.ObservedSessionRepository.
type sessionStore interface {
	DeleteAll(ctx context.Context) error
	InsertBatch(ctx context.Context, batch []model.ObservedSession) error
	RebuildEffectiveSchedule(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	CountEffective(ctx context.Context) (int, error)
}

// syncLocker is the slice of the Redis client the single-flight guard uses.
type syncLocker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// SyncService runs the ingestion pipeline: pull the full session dataset
// from Metabase and replace the observed-session store with it.
type SyncService struct {
	cfg    *config.Config
	source sessionSource
	store  sessionStore
	rdb    syncLocker
	log    zerolog.Logger
}

// NewSyncService creates a new SyncService.
func NewSyncService(cfg *config.Config, source sessionSource, store sessionStore, rdb syncLocker, log zerolog.Logger) *SyncService {
	return &SyncService{
		cfg:    cfg,
		source: source,
		store:  store,
		rdb:    rdb,
		log:    log.With().Str("component", "sync_service").Logger(),
	}
}

// Resync replaces the observed-session store with the current Metabase
// dataset and rebuilds the effective schedule from it. Runs as one logical
// unit; concurrent calls are rejected with ErrSyncInProgress via a Redis
// lock. The first fatal error halts the run — committed batches are not
// rolled back.
func (s *SyncService) Resync(ctx context.Context) (*model.SyncReport, error) {
	lockKey := config.CacheKey.SyncLockKey()
	ok, err := s.rdb.SetNX(ctx, lockKey, time.Now().UTC().Format(time.RFC3339), s.cfg.SyncLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return nil, ErrSyncInProgress
	}
	defer s.rdb.Del(context.Background(), lockKey)

	// A stuck Metabase call must not hold the lock for its whole TTL.
	if s.cfg.SyncTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SyncTimeout)
		defer cancel()
	}

	report := &model.SyncReport{StartedAt: time.Now()}

	// 1. Authenticate.
	token, err := s.source.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	// 2. Fetch the full dataset.
	rows, err := s.source.FetchCardRows(ctx, token, s.cfg.MetabaseCardID)
	if err != nil {
		return nil, fmt.Errorf("fetch card %d: %w", s.cfg.MetabaseCardID, err)
	}
	report.RowsFetched = len(rows)

	// 3–5. Calibrate, transform, filter.
	sessions, filtered := transformRows(rows)
	report.RowsFiltered = filtered
	if filtered > 0 {
		s.log.Info().Int("dropped", filtered).Msg("Rows without session id or grade dropped")
	}

	// 6. Never wipe the store for an empty replacement set.
	if len(sessions) == 0 {
		return nil, ErrEmptyDataset
	}

	// 7. Full replace: delete everything, then insert in fixed-size
	// sequential batches.
	if err := s.store.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("clear observed sessions: %w", err)
	}

	batchSize := s.cfg.SyncBatchSize
	if batchSize <= 0 {
		batchSize = 500
	}
	for i := 0; i < len(sessions); i += batchSize {
		end := i + batchSize
		if end > len(sessions) {
			end = len(sessions)
		}
		if err := s.store.InsertBatch(ctx, sessions[i:end]); err != nil {
			return nil, &BatchInsertError{Batch: i / batchSize, Err: err}
		}
		report.RowsInserted += end - i
	}

	// 8. Rebuild the derived view once, after the bulk load.
	if err := s.store.RebuildEffectiveSchedule(ctx); err != nil {
		return nil, fmt.Errorf("rebuild effective schedule: %w", err)
	}

	// 9. Verify. A count mismatch is reported, not fatal.
	if report.ObservedCount, err = s.store.Count(ctx); err != nil {
		return nil, fmt.Errorf("count observed sessions: %w", err)
	}
	if report.EffectiveCount, err = s.store.CountEffective(ctx); err != nil {
		return nil, fmt.Errorf("count effective schedule: %w", err)
	}
	report.CountsMatch = report.ObservedCount == report.EffectiveCount
	report.FinishedAt = time.Now()

	if !report.CountsMatch {
		s.log.Warn().
			Int("observed", report.ObservedCount).
			Int("effective", report.EffectiveCount).
			Msg("Store counts diverge after rebuild")
	}

	s.cacheReport(report)

	s.log.Info().
		Int("fetched", report.RowsFetched).
		Int("inserted", report.RowsInserted).
		Int("filtered", report.RowsFiltered).
		Dur("took", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Resync completed")

	return report, nil
}

// LastReport returns the most recent cached sync report, or nil when no
// sync has completed since the cache was last flushed.
func (s *SyncService) LastReport(ctx context.Context) (*model.SyncReport, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.SyncLastReportKey()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var report model.SyncReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *SyncService) cacheReport(report *model.SyncReport) {
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	// Best effort — the report is observability data, not state.
	if err := s.rdb.Set(context.Background(), config.CacheKey.SyncLastReportKey(), raw, 0).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Caching sync report failed")
	}
}

// Column header spellings seen across revisions of the administration
// sheet behind the Metabase card. First non-empty match wins.
var (
	headerExternalID  = []string{"ID Sesi", "Session ID", "session_id", "id_sesi"}
	headerSubject     = []string{"Mapel", "Mata Pelajaran", "Subject", "subject"}
	headerTopic       = []string{"Topik", "Topic", "topic"}
	headerSlotName    = []string{"Slot", "Nama Slot", "Slot Name", "slot_name"}
	headerTeacherName = []string{"Guru", "Nama Guru", "Teacher", "teacher_name"}
	headerGrade       = []string{"Kelas", "Jenjang", "Grade", "grade"}
	headerClassDate   = []string{"Tanggal", "Tanggal Kelas", "Class Date", "class_date"}
	headerTimeRange   = []string{"Jam", "Waktu", "Time", "time_range"}
	headerFirstDate   = []string{"Tanggal Mulai", "First Date", "first_date"}
	headerWeekday     = []string{"Hari", "Day", "weekday"}
)

// transformRows turns raw Metabase rows into observed-session candidates:
// tolerant header extraction, teacher-name calibration, and the filter that
// silently drops rows missing an external id or a grade. Returns the kept
// sessions in input order plus the dropped-row tally.
func transformRows(rows []metabase.Row) ([]model.ObservedSession, int) {
	sessions := make([]model.ObservedSession, 0, len(rows))
	filtered := 0

	for _, row := range rows {
		session := model.ObservedSession{
			ExternalID:  row.Field(headerExternalID...),
			Subject:     row.Field(headerSubject...),
			Topic:       row.Field(headerTopic...),
			SlotName:    row.Field(headerSlotName...),
			TeacherName: calibration.Apply(row.Field(headerTeacherName...)),
			Grade:       row.Field(headerGrade...),
			ClassDate:   row.Field(headerClassDate...),
			TimeRange:   row.Field(headerTimeRange...),
			FirstDate:   row.Field(headerFirstDate...),
			Weekday:     row.Field(headerWeekday...),
		}

		if session.ExternalID == "" || session.Grade == "" {
			filtered++
			continue
		}
		sessions = append(sessions, session)
	}

	return sessions, filtered
}
