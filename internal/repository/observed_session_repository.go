package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/kelasops-backend/internal/model"
)

// ObservedSessionRepository handles the observed-session store and the
// effective-schedule projection derived from it. Only the sync pipeline
// writes here; everything else reads.
type ObservedSessionRepository struct {
	pool *pgxpool.Pool
}

// NewObservedSessionRepository creates a new ObservedSessionRepository.
func NewObservedSessionRepository(pool *pgxpool.Pool) *ObservedSessionRepository {
	return &ObservedSessionRepository{pool: pool}
}

// List retrieves observed sessions, optionally filtered by grade and/or
// slot name. Empty filter values match everything.
func (r *ObservedSessionRepository) List(ctx context.Context, grade, slotName string) ([]model.ObservedSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, external_id, subject, topic, slot_name, teacher_name, grade,
		        class_date, time_range, first_date, weekday, synced_at
		 FROM observed_sessions
		 WHERE ($1 = '' OR grade = $1)
		   AND ($2 = '' OR slot_name = $2)
		 ORDER BY grade, slot_name, class_date, id`, grade, slotName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

// FindMatching retrieves sessions for a grade whose slot name is one of the
// given names. Used by the validation engine after normalization expanded
// the canonical name into its observed aliases.
func (r *ObservedSessionRepository) FindMatching(ctx context.Context, grade string, slotNames []string) ([]model.ObservedSession, error) {
	if len(slotNames) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, external_id, subject, topic, slot_name, teacher_name, grade,
		        class_date, time_range, first_date, weekday, synced_at
		 FROM observed_sessions
		 WHERE grade = $1 AND slot_name = ANY($2)
		 ORDER BY class_date, id`, grade, slotNames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

// ListSlotPairs aggregates observed sessions into distinct (grade, slot name)
// pairs with the number of sessions each pair covers.
func (r *ObservedSessionRepository) ListSlotPairs(ctx context.Context) ([]model.UnmatchedSlot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT grade, slot_name, COUNT(*)
		 FROM observed_sessions
		 GROUP BY grade, slot_name
		 ORDER BY grade, slot_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []model.UnmatchedSlot
	for rows.Next() {
		var p model.UnmatchedSlot
		if err := rows.Scan(&p.Grade, &p.SlotName, &p.SessionCount); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// DeleteAll removes every observed session. First destructive step of a
// full replace — callers must have passed the empty-dataset guard already.
func (r *ObservedSessionRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM observed_sessions`)
	return err
}

// InsertBatch bulk-inserts one batch of sessions with a single UNNEST
// statement. Batches are not wrapped in a shared transaction; a failed
// batch leaves earlier batches committed.
func (r *ObservedSessionRepository) InsertBatch(ctx context.Context, batch []model.ObservedSession) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	externalIDs := make([]string, 0, n)
	subjects := make([]string, 0, n)
	topics := make([]string, 0, n)
	slotNames := make([]string, 0, n)
	teacherNames := make([]string, 0, n)
	grades := make([]string, 0, n)
	classDates := make([]string, 0, n)
	timeRanges := make([]string, 0, n)
	firstDates := make([]string, 0, n)
	weekdays := make([]string, 0, n)

	for _, s := range batch {
		externalIDs = append(externalIDs, s.ExternalID)
		subjects = append(subjects, s.Subject)
		topics = append(topics, s.Topic)
		slotNames = append(slotNames, s.SlotName)
		teacherNames = append(teacherNames, s.TeacherName)
		grades = append(grades, s.Grade)
		classDates = append(classDates, s.ClassDate)
		timeRanges = append(timeRanges, s.TimeRange)
		firstDates = append(firstDates, s.FirstDate)
		weekdays = append(weekdays, s.Weekday)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO observed_sessions
			(external_id, subject, topic, slot_name, teacher_name, grade,
			 class_date, time_range, first_date, weekday)
		SELECT * FROM UNNEST(
			$1::text[], $2::text[], $3::text[], $4::text[], $5::text[],
			$6::text[], $7::text[], $8::text[], $9::text[], $10::text[]
		)`,
		externalIDs, subjects, topics, slotNames, teacherNames,
		grades, classDates, timeRanges, firstDates, weekdays,
	)
	return err
}

// RebuildEffectiveSchedule recomputes the effective-schedule projection
// wholesale from the current observed sessions. Idempotent; the delete and
// re-insert run in one transaction so readers never see a half-built view.
func (r *ObservedSessionRepository) RebuildEffectiveSchedule(ctx context.Context) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM effective_schedule`); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO effective_schedule
			(external_id, subject, topic, slot_name, teacher_name, grade,
			 class_date, time_range, weekday)
		SELECT external_id, subject, topic, slot_name, teacher_name, grade,
		       class_date, time_range, weekday
		FROM observed_sessions`); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Count returns the number of observed sessions.
func (r *ObservedSessionRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM observed_sessions`).Scan(&n)
	return n, err
}

// CountEffective returns the number of effective-schedule rows.
func (r *ObservedSessionRepository) CountEffective(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM effective_schedule`).Scan(&n)
	return n, err
}

type sessionRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSessions(rows sessionRows) ([]model.ObservedSession, error) {
	var sessions []model.ObservedSession
	for rows.Next() {
		var s model.ObservedSession
		if err := rows.Scan(&s.ID, &s.ExternalID, &s.Subject, &s.Topic, &s.SlotName,
			&s.TeacherName, &s.Grade, &s.ClassDate, &s.TimeRange, &s.FirstDate,
			&s.Weekday, &s.SyncedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
