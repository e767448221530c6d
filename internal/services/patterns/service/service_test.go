package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"tripline/internal/core/signal"
	"tripline/internal/modkit/repokit"
	perr "tripline/internal/platform/errors"
	"tripline/internal/services/patterns/domain"
	"tripline/internal/services/patterns/repo"
)

type fakeTx struct{}

func (fakeTx) Tx(ctx context.Context, fn func(q repokit.Queryer) error) error { return fn(nil) }

func (fakeTx) Exec(ctx context.Context, sql string, args ...any) (repokit.CommandTag, error) {
	return nil, errors.New("not implemented")
}

func (fakeTx) Query(ctx context.Context, sql string, args ...any) (repokit.Rows, error) {
	return nil, errors.New("not implemented")
}

func (fakeTx) QueryRow(ctx context.Context, sql string, args ...any) repokit.Row { return nil }

type fakeStorage struct {
	refs    []repo.KeyRef
	refsErr error

	inserted  []repo.InsertRow
	insertErr error

	touched  []int64
	counts   []int
	touchErr map[int64]error

	listRows   []domain.StoredPattern
	lastFilter domain.Filter
	summary    []domain.TypeCount
}

func (f *fakeStorage) RefsByLastDetected(ctx context.Context, since, until time.Time) ([]repo.KeyRef, error) {
	return f.refs, f.refsErr
}

func (f *fakeStorage) InsertBatch(ctx context.Context, xs []repo.InsertRow) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, xs...)
	return nil
}

func (f *fakeStorage) Touch(ctx context.Context, id int64, data []byte, confidence float64, at time.Time, count int) error {
	if err := f.touchErr[id]; err != nil {
		return err
	}
	f.touched = append(f.touched, id)
	f.counts = append(f.counts, count)
	return nil
}

func (f *fakeStorage) List(ctx context.Context, fl domain.Filter) ([]domain.StoredPattern, error) {
	f.lastFilter = fl
	return f.listRows, nil
}

func (f *fakeStorage) CountByType(ctx context.Context, since, until time.Time) ([]domain.TypeCount, error) {
	return f.summary, nil
}

func newService(st *fakeStorage) *Service {
	b := repokit.BindFunc[repo.Storage](func(repokit.Queryer) repo.Storage { return st })
	return New(fakeTx{}, b, Config{})
}

func detected(ty signal.Type, key signal.Key, conf float64) domain.DetectedPattern {
	return domain.DetectedPattern{Type: ty, Key: key, Confidence: conf, Data: domain.Payload{Description: "x"}}
}

var runNow = time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)

func TestReconcile_InsertsUnseenKeys(t *testing.T) {
	t.Parallel()

	st := &fakeStorage{}
	s := newService(st)

	xs := []domain.DetectedPattern{
		detected(signal.TypeReactivatedActor, signal.ReactivatedActorKey{ActorID: "apt-1", Date: runNow}, 0.7),
		detected(signal.TypeActivitySpike, signal.ActivitySpikeKey{Direction: signal.DirectionIncrease, Date: runNow}, 0.4),
	}
	rep, err := s.Reconcile(context.Background(), runNow, xs)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if rep.Inserted != 2 || rep.Updated != 0 || rep.Failed != 0 || rep.Rejected != 0 {
		t.Fatalf("report = %+v", rep)
	}
	if len(st.inserted) != 2 {
		t.Fatalf("inserted rows = %d", len(st.inserted))
	}
	row := st.inserted[0]
	if row.Key != "reactivated_actor:apt-1:2026-08-30" {
		t.Fatalf("key = %q", row.Key)
	}
	if !row.DetectedAt.Equal(runNow) {
		t.Fatalf("detected_at must be the captured now, got %v", row.DetectedAt)
	}
	var p domain.Payload
	if err := json.Unmarshal(row.Data, &p); err != nil {
		t.Fatalf("payload not json: %v", err)
	}
}

func TestReconcile_IncrementsSeenKeys(t *testing.T) {
	t.Parallel()

	key := signal.DormantActorKey{ActorID: "apt-9", Date: runNow}
	st := &fakeStorage{refs: []repo.KeyRef{{ID: 11, Key: key.String(), DetectionCount: 2}}}
	s := newService(st)

	rep, err := s.Reconcile(context.Background(), runNow, []domain.DetectedPattern{
		detected(signal.TypeDormantActor, key, 0.9),
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if rep.Inserted != 0 || rep.Updated != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if len(st.inserted) != 0 {
		t.Fatalf("seen key must not insert")
	}
	if len(st.touched) != 1 || st.touched[0] != 11 {
		t.Fatalf("touched = %v", st.touched)
	}
	if st.counts[0] != 3 {
		t.Fatalf("detection_count = %d want previous+1 = 3", st.counts[0])
	}
}

func TestReconcile_InsertFailureDoesNotBlockUpdates(t *testing.T) {
	t.Parallel()

	seen := signal.DormantActorKey{ActorID: "apt-2", Date: runNow}
	st := &fakeStorage{
		refs:      []repo.KeyRef{{ID: 5, Key: seen.String(), DetectionCount: 1}},
		insertErr: errors.New("pg down"),
	}
	s := newService(st)

	rep, err := s.Reconcile(context.Background(), runNow, []domain.DetectedPattern{
		detected(signal.TypeReactivatedActor, signal.ReactivatedActorKey{ActorID: "apt-1", Date: runNow}, 0.7),
		detected(signal.TypeDormantActor, seen, 0.9),
	})
	if err != nil {
		t.Fatalf("Reconcile must not raise isolated write failures: %v", err)
	}
	if rep.Failed != 1 || rep.Inserted != 0 {
		t.Fatalf("report = %+v", rep)
	}
	if rep.Updated != 1 || len(st.touched) != 1 {
		t.Fatalf("update loop must still run: %+v touched=%v", rep, st.touched)
	}
}

func TestReconcile_UpdateFailuresIsolatedPerRow(t *testing.T) {
	t.Parallel()

	k1 := signal.DormantActorKey{ActorID: "a", Date: runNow}
	k2 := signal.DormantActorKey{ActorID: "b", Date: runNow}
	st := &fakeStorage{
		refs: []repo.KeyRef{
			{ID: 1, Key: k1.String(), DetectionCount: 1},
			{ID: 2, Key: k2.String(), DetectionCount: 4},
		},
		touchErr: map[int64]error{1: errors.New("timeout")},
	}
	s := newService(st)

	rep, err := s.Reconcile(context.Background(), runNow, []domain.DetectedPattern{
		detected(signal.TypeDormantActor, k1, 0.5),
		detected(signal.TypeDormantActor, k2, 0.5),
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if rep.Updated != 1 || rep.Failed != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if len(st.touched) != 1 || st.touched[0] != 2 {
		t.Fatalf("surviving update = %v", st.touched)
	}
}

func TestReconcile_RejectsMalformedRecords(t *testing.T) {
	t.Parallel()

	st := &fakeStorage{}
	s := newService(st)

	xs := []domain.DetectedPattern{
		// missing pattern type, a logic defect
		{Key: signal.DormantActorKey{ActorID: "a", Date: runNow}, Confidence: 0.5},
		// confidence out of bounds
		detected(signal.TypeDormantActor, signal.DormantActorKey{ActorID: "b", Date: runNow}, 1.7),
		// healthy record rides along
		detected(signal.TypeDormantActor, signal.DormantActorKey{ActorID: "c", Date: runNow}, 0.5),
	}
	rep, err := s.Reconcile(context.Background(), runNow, xs)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if rep.Rejected != 2 {
		t.Fatalf("rejected = %d want 2", rep.Rejected)
	}
	if rep.Inserted != 1 || len(st.inserted) != 1 {
		t.Fatalf("healthy record must still insert: %+v", rep)
	}
}

func TestReconcile_TodayFetchFailureAborts(t *testing.T) {
	t.Parallel()

	st := &fakeStorage{refsErr: errors.New("pg down")}
	s := newService(st)

	_, err := s.Reconcile(context.Background(), runNow, []domain.DetectedPattern{
		detected(signal.TypeDormantActor, signal.DormantActorKey{ActorID: "a", Date: runNow}, 0.5),
	})
	if err == nil {
		t.Fatalf("no safe insert/update decision without today's keys")
	}
	if len(st.inserted) != 0 || len(st.touched) != 0 {
		t.Fatalf("no writes may happen after a failed today-read")
	}
}

func TestReconcile_TodayFetchCarriesStoreErrorCode(t *testing.T) {
	t.Parallel()

	st := &fakeStorage{refsErr: &pgconn.PgError{Code: "57P03", Message: "the database system is starting up"}}
	s := newService(st)

	_, err := s.Reconcile(context.Background(), runNow, []domain.DetectedPattern{
		detected(signal.TypeDormantActor, signal.DormantActorKey{ActorID: "a", Date: runNow}, 0.5),
	})
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("startup-in-progress must surface as unavailable, got %v (code %v)", err, perr.CodeOf(err))
	}
}

func TestReconcile_LostInsertRaceCountsAsFailed(t *testing.T) {
	t.Parallel()

	seen := signal.DormantActorKey{ActorID: "apt-2", Date: runNow}
	st := &fakeStorage{
		refs:      []repo.KeyRef{{ID: 5, Key: seen.String(), DetectionCount: 1}},
		insertErr: &pgconn.PgError{Code: "23505", ConstraintName: "detected_patterns_pattern_key_day"},
	}
	s := newService(st)

	rep, err := s.Reconcile(context.Background(), runNow, []domain.DetectedPattern{
		detected(signal.TypeReactivatedActor, signal.ReactivatedActorKey{ActorID: "apt-1", Date: runNow}, 0.7),
		detected(signal.TypeDormantActor, seen, 0.9),
	})
	if err != nil {
		t.Fatalf("a lost insert race must not raise: %v", err)
	}
	if rep.Failed != 1 || rep.Inserted != 0 || rep.Updated != 1 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	t.Parallel()

	key := signal.ReactivatedActorKey{ActorID: "apt-1", Date: runNow}
	st := &fakeStorage{}
	s := newService(st)

	in := []domain.DetectedPattern{detected(signal.TypeReactivatedActor, key, 0.7)}

	rep1, err := s.Reconcile(context.Background(), runNow, in)
	if err != nil || rep1.Inserted != 1 {
		t.Fatalf("first run: %+v err=%v", rep1, err)
	}

	// second run sees the row the first one wrote
	st.refs = []repo.KeyRef{{ID: 1, Key: key.String(), DetectionCount: 1}}
	rep2, err := s.Reconcile(context.Background(), runNow, in)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if rep2.Inserted != 0 || rep2.Updated != 1 {
		t.Fatalf("re-run must update, never duplicate: %+v", rep2)
	}
	if st.counts[0] != 2 {
		t.Fatalf("detection_count after re-run = %d want 2", st.counts[0])
	}
	if len(st.inserted) != 1 {
		t.Fatalf("store rows = %d want 1", len(st.inserted))
	}
}

func TestList_ClampsLimit(t *testing.T) {
	t.Parallel()

	st := &fakeStorage{}
	s := newService(st)

	if _, err := s.List(context.Background(), domain.Filter{Limit: 10_000}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if st.lastFilter.Limit != 200 {
		t.Fatalf("limit = %d want hard limit 200", st.lastFilter.Limit)
	}

	if _, err := s.List(context.Background(), domain.Filter{Limit: 0}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if st.lastFilter.Limit != 200 {
		t.Fatalf("unset limit must default to the hard limit, got %d", st.lastFilter.Limit)
	}
}
