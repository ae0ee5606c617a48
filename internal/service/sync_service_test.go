package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/kelasops-backend/internal/config"
	"github.com/stemsi/kelasops-backend/internal/metabase"
	"github.com/stemsi/kelasops-backend/internal/model"
)

type fakeSource struct {
	rows     []metabase.Row
	authErr  error
	fetchErr error
	calls    int
}

func (f *fakeSource) Authenticate(ctx context.Context) (string, error) {
	if f.authErr != nil {
		return "", f.authErr
	}
	return "tok", nil
}

func (f *fakeSource) FetchCardRows(ctx context.Context, token string, cardID int) ([]metabase.Row, error) {
	f.calls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.rows, nil
}

type fakeStore struct {
	sessions  []model.ObservedSession
	effective int
	deletes   int
	batches   int
	rebuilds  int
	failBatch int // fail the batch with this index; -1 disables
}

func newFakeStore() *fakeStore { return &fakeStore{failBatch: -1} }

func (f *fakeStore) DeleteAll(ctx context.Context) error {
	f.deletes++
	f.sessions = nil
	return nil
}

func (f *fakeStore) InsertBatch(ctx context.Context, batch []model.ObservedSession) error {
	if f.batches == f.failBatch {
		f.batches++
		return fmt.Errorf("connection reset")
	}
	f.batches++
	f.sessions = append(f.sessions, batch...)
	return nil
}

func (f *fakeStore) RebuildEffectiveSchedule(ctx context.Context) error {
	f.rebuilds++
	f.effective = len(f.sessions)
	return nil
}

func (f *fakeStore) Count(ctx context.Context) (int, error)          { return len(f.sessions), nil }
func (f *fakeStore) CountEffective(ctx context.Context) (int, error) { return f.effective, nil }

type fakeLocker struct {
	held bool
}

func (f *fakeLocker) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	if f.held {
		return redis.NewBoolResult(false, nil)
	}
	f.held = true
	return redis.NewBoolResult(true, nil)
}

func (f *fakeLocker) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.held = false
	return redis.NewIntResult(1, nil)
}

func (f *fakeLocker) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeLocker) Get(ctx context.Context, key string) *redis.StringCmd {
	return redis.NewStringResult("", redis.Nil)
}

func testSyncConfig() *config.Config {
	return &config.Config{
		MetabaseCardID: 42,
		SyncBatchSize:  2,
		SyncLockTTL:    time.Minute,
	}
}

func newTestSync(source *fakeSource, store *fakeStore, lock *fakeLocker) *SyncService {
	return NewSyncService(testSyncConfig(), source, store, lock, zerolog.Nop())
}

func sampleRows() []metabase.Row {
	return []metabase.Row{
		{"ID Sesi": "S1", "Kelas": "5", "Slot": "Math A", "Guru": "Jane Doe", "Hari": "Monday", "Jam": "16:00-17:00"},
		{"ID Sesi": "S2", "Kelas": "5", "Slot": "Math A", "Guru": "Jane Doe", "Hari": "Wednesday", "Jam": "16:00-17:00"},
		{"ID Sesi": "S3", "Kelas": float64(7), "Slot": "Eng Basic", "Guru": "Pak Hendra", "Hari": "Tuesday", "Jam": "14:00-15:00"},
		{"Kelas": "5", "Slot": "No ID"},     // dropped: missing session id
		{"ID Sesi": "S5", "Slot": "No Grade"}, // dropped: missing grade
	}
}

func TestResync(t *testing.T) {
	source := &fakeSource{rows: sampleRows()}
	store := newFakeStore()
	svc := newTestSync(source, store, &fakeLocker{})

	report, err := svc.Resync(context.Background())
	if err != nil {
		t.Fatalf("Resync: %v", err)
	}

	if report.RowsFetched != 5 || report.RowsFiltered != 2 || report.RowsInserted != 3 {
		t.Errorf("report = fetched %d filtered %d inserted %d, want 5/2/3",
			report.RowsFetched, report.RowsFiltered, report.RowsInserted)
	}
	if store.deletes != 1 || store.rebuilds != 1 {
		t.Errorf("deletes = %d, rebuilds = %d, want 1/1", store.deletes, store.rebuilds)
	}
	if store.batches != 2 { // 3 rows at batch size 2
		t.Errorf("batches = %d, want 2", store.batches)
	}
	if !report.CountsMatch || report.ObservedCount != 3 || report.EffectiveCount != 3 {
		t.Errorf("counts = %d/%d match=%t, want 3/3 true",
			report.ObservedCount, report.EffectiveCount, report.CountsMatch)
	}

	// Name calibration applied during transform.
	if store.sessions[2].TeacherName != "Hendra Gunawan" {
		t.Errorf("teacher name = %q, want calibrated Hendra Gunawan", store.sessions[2].TeacherName)
	}
	// Numeric grade column normalized to a plain string.
	if store.sessions[2].Grade != "7" {
		t.Errorf("grade = %q, want \"7\"", store.sessions[2].Grade)
	}
}

func TestResyncIdempotent(t *testing.T) {
	source := &fakeSource{rows: sampleRows()}
	store := newFakeStore()
	svc := newTestSync(source, store, &fakeLocker{})

	if _, err := svc.Resync(context.Background()); err != nil {
		t.Fatalf("first Resync: %v", err)
	}
	first := append([]model.ObservedSession(nil), store.sessions...)

	if _, err := svc.Resync(context.Background()); err != nil {
		t.Fatalf("second Resync: %v", err)
	}

	if !reflect.DeepEqual(first, store.sessions) {
		t.Errorf("store content changed across identical syncs:\nfirst:  %v\nsecond: %v", first, store.sessions)
	}
}

func TestResyncEmptyDataset(t *testing.T) {
	tests := []struct {
		name string
		rows []metabase.Row
	}{
		{"no rows at all", nil},
		{"only unusable rows", []metabase.Row{{"Slot": "x"}, {"Kelas": "5"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.sessions = []model.ObservedSession{{ExternalID: "keep-me", Grade: "5"}}
			svc := newTestSync(&fakeSource{rows: tt.rows}, store, &fakeLocker{})

			_, err := svc.Resync(context.Background())
			if !errors.Is(err, ErrEmptyDataset) {
				t.Fatalf("err = %v, want ErrEmptyDataset", err)
			}
			// Abort must happen before anything destructive.
			if store.deletes != 0 || len(store.sessions) != 1 {
				t.Errorf("store touched: deletes=%d sessions=%d", store.deletes, len(store.sessions))
			}
		})
	}
}

func TestResyncBatchFailure(t *testing.T) {
	source := &fakeSource{rows: sampleRows()}
	store := newFakeStore()
	store.failBatch = 1
	svc := newTestSync(source, store, &fakeLocker{})

	_, err := svc.Resync(context.Background())

	var batchErr *BatchInsertError
	if !errors.As(err, &batchErr) {
		t.Fatalf("err = %v, want BatchInsertError", err)
	}
	if batchErr.Batch != 1 {
		t.Errorf("failed batch = %d, want 1", batchErr.Batch)
	}
	// Earlier batches stay committed; nothing is rolled back.
	if len(store.sessions) != 2 {
		t.Errorf("committed rows = %d, want 2", len(store.sessions))
	}
	if store.rebuilds != 0 {
		t.Errorf("rebuild ran after a failed batch")
	}
}

func TestResyncSingleFlight(t *testing.T) {
	source := &fakeSource{rows: sampleRows()}
	svc := newTestSync(source, newFakeStore(), &fakeLocker{held: true})

	_, err := svc.Resync(context.Background())
	if !errors.Is(err, ErrSyncInProgress) {
		t.Fatalf("err = %v, want ErrSyncInProgress", err)
	}
	if source.calls != 0 {
		t.Errorf("fetch ran while the lock was held")
	}
}

func TestResyncAuthFailure(t *testing.T) {
	store := newFakeStore()
	store.sessions = []model.ObservedSession{{ExternalID: "keep-me", Grade: "5"}}
	svc := newTestSync(&fakeSource{authErr: &metabase.AuthError{StatusCode: 401}}, store, &fakeLocker{})

	_, err := svc.Resync(context.Background())

	var authErr *metabase.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want AuthError", err)
	}
	if store.deletes != 0 {
		t.Errorf("store touched on auth failure")
	}
}

func TestTransformRowsHeaderSpellings(t *testing.T) {
	rows := []metabase.Row{
		{"session_id": "A", "grade": "9", "slot_name": "Bio 1", "teacher_name": "X"},
		{"Session ID": "B", "Grade": "9", "Slot Name": "Bio 2", "Teacher": "Y"},
	}

	sessions, filtered := transformRows(rows)
	if filtered != 0 || len(sessions) != 2 {
		t.Fatalf("got %d sessions, %d filtered, want 2/0", len(sessions), filtered)
	}
	if sessions[0].SlotName != "Bio 1" || sessions[1].SlotName != "Bio 2" {
		t.Errorf("slot names not extracted: %+v", sessions)
	}
}
