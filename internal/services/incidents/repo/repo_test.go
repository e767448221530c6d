package repo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tripline/internal/platform/store"
)

type fakeQueryer struct {
	lastSQL  string
	lastArgs []any

	rows Rows
	err  error
}

// Rows aliases the store result set for brevity in fakes
type Rows = store.Rows

func (f *fakeQueryer) Exec(ctx context.Context, sql string, args ...any) (store.CommandTag, error) {
	f.lastSQL, f.lastArgs = sql, args
	return nil, f.err
}

func (f *fakeQueryer) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	f.lastSQL, f.lastArgs = sql, args
	return f.rows, f.err
}

func (f *fakeQueryer) QueryRow(ctx context.Context, sql string, args ...any) store.Row {
	f.lastSQL, f.lastArgs = sql, args
	return &fakeRow{rows: f.rows, err: f.err}
}

type fakeRow struct {
	rows Rows
	err  error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.rows == nil || !r.rows.Next() {
		return errors.New("no rows")
	}
	return r.rows.Scan(dest...)
}

type fakeRows struct {
	data [][]any
	idx  int
	err  error
}

func newRows(data [][]any) *fakeRows { return &fakeRows{data: data, idx: -1} }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.idx]
	if len(dest) != len(row) {
		return errors.New("dest len mismatch")
	}
	for i, v := range row {
		switch p := dest[i].(type) {
		case *string:
			p2, ok := v.(string)
			if !ok {
				return errors.New("not a string")
			}
			*p = p2
		case *time.Time:
			p2, ok := v.(time.Time)
			if !ok {
				return errors.New("not a time")
			}
			*p = p2
		case *bool:
			p2, ok := v.(bool)
			if !ok {
				return errors.New("not a bool")
			}
			*p = p2
		case *int:
			p2, ok := v.(int)
			if !ok {
				return errors.New("not an int")
			}
			*p = p2
		default:
			return errors.New("unsupported dest type")
		}
	}
	return nil
}

func (r *fakeRows) Err() error        { return r.err }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Columns() []string { return nil }

func TestActiveActors_FiltersAndOrders(t *testing.T) {
	t.Parallel()

	q := &fakeQueryer{rows: newRows([][]any{{"apt-1"}, {"apt-2"}})}
	s := NewPG().Bind(q)

	since := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)
	until := since.AddDate(0, 0, 7)

	got, err := s.ActiveActors(context.Background(), since, until, 500)
	if err != nil {
		t.Fatalf("ActiveActors: %v", err)
	}
	if len(got) != 2 || got[0] != "apt-1" || got[1] != "apt-2" {
		t.Fatalf("actors = %v", got)
	}
	if !strings.Contains(q.lastSQL, "threat_actor_id IS NOT NULL") {
		t.Fatalf("unattributed incidents must be excluded:\n%s", q.lastSQL)
	}
	if !strings.Contains(q.lastSQL, "DISTINCT") {
		t.Fatalf("actors must be distinct:\n%s", q.lastSQL)
	}
	if len(q.lastArgs) != 3 || q.lastArgs[2] != 500 {
		t.Fatalf("args = %v", q.lastArgs)
	}
}

func TestLastActorIncidentBefore_NoRows(t *testing.T) {
	t.Parallel()

	q := &fakeQueryer{rows: newRows(nil)}
	s := NewPG().Bind(q)

	_, ok, err := s.LastActorIncidentBefore(context.Background(), "apt-1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("no prior incident must report ok=false")
	}
	if !strings.Contains(q.lastSQL, "discovered_at < $2") {
		t.Fatalf("cutoff must be exclusive:\n%s", q.lastSQL)
	}
	if !strings.Contains(q.lastSQL, "ORDER BY discovered_at DESC") {
		t.Fatalf("most recent incident must win:\n%s", q.lastSQL)
	}
}

func TestLastActorIncidentBefore_Found(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, 2, 10, 16, 30, 0, 0, time.UTC)
	q := &fakeQueryer{rows: newRows([][]any{{want}})}
	s := NewPG().Bind(q)

	got, ok, err := s.LastActorIncidentBefore(context.Background(), "apt-1", want.AddDate(0, 3, 0))
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestAnyActorIncidentBetween_ExclusiveBounds(t *testing.T) {
	t.Parallel()

	q := &fakeQueryer{rows: newRows([][]any{{true}})}
	s := NewPG().Bind(q)

	exists, err := s.AnyActorIncidentBetween(context.Background(), "apt-1", time.Now().AddDate(0, -6, 0), time.Now())
	if err != nil {
		t.Fatalf("AnyActorIncidentBetween: %v", err)
	}
	if !exists {
		t.Fatalf("expected exists=true")
	}
	if !strings.Contains(q.lastSQL, "discovered_at > $2") || !strings.Contains(q.lastSQL, "discovered_at < $3") {
		t.Fatalf("both gap bounds must be exclusive:\n%s", q.lastSQL)
	}
}

func TestCountRange(t *testing.T) {
	t.Parallel()

	q := &fakeQueryer{rows: newRows([][]any{{17}})}
	s := NewPG().Bind(q)

	n, err := s.CountRange(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		t.Fatalf("CountRange: %v", err)
	}
	if n != 17 {
		t.Fatalf("count = %d want 17", n)
	}
	if !strings.Contains(q.lastSQL, "threat_actor_id IS NOT NULL") {
		t.Fatalf("count must exclude unattributed incidents:\n%s", q.lastSQL)
	}
}

func TestQueries_PropagateErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("pg down")
	q := &fakeQueryer{err: boom}
	s := NewPG().Bind(q)

	if _, err := s.ActiveActors(context.Background(), time.Now(), time.Now(), 10); !errors.Is(err, boom) {
		t.Fatalf("ActiveActors err = %v", err)
	}
	if _, _, err := s.LastActorIncident(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("LastActorIncident err = %v", err)
	}
}
