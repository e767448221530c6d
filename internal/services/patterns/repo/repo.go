// Package repo provides the detected_patterns repository implementation.
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tripline/internal/core/signal"
	"tripline/internal/modkit/repokit"
	"tripline/internal/platform/store"
	"tripline/internal/services/patterns/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// KeyRef is the minimal slice of a persisted row needed to decide
// insert-vs-update for one incoming key
type KeyRef struct {
	ID             int64
	Key            string
	DetectionCount int
}

// InsertRow is one row of a reconcile insert batch
type InsertRow struct {
	Type       string
	Key        string
	Data       []byte
	Confidence float64
	DetectedAt time.Time
}

// Storage defines the detected_patterns repository
type Storage interface {
	RefsByLastDetected(ctx context.Context, since, until time.Time) ([]KeyRef, error)
	InsertBatch(ctx context.Context, xs []InsertRow) error
	Touch(ctx context.Context, id int64, data []byte, confidence float64, at time.Time, count int) error
	List(ctx context.Context, f domain.Filter) ([]domain.StoredPattern, error)
	CountByType(ctx context.Context, since, until time.Time) ([]domain.TypeCount, error)
}

// RefsByLastDetected implements Storage
func (s *pg) RefsByLastDetected(ctx context.Context, since, until time.Time) ([]KeyRef, error) {
	const q = `
		SELECT id, pattern_key, detection_count
		FROM detected_patterns
		WHERE last_detected >= $1 AND last_detected < $2`

	rows, err := s.q.Query(ctx, q, since, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KeyRef
	for rows.Next() {
		var r KeyRef
		if err := rows.Scan(&r.ID, &r.Key, &r.DetectionCount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertBatch implements Storage
func (s *pg) InsertBatch(ctx context.Context, xs []InsertRow) error {
	if len(xs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO detected_patterns
		(pattern_type, pattern_key, data, confidence,
		first_detected, last_detected, detection_count, status) VALUES `)

	args := make([]any, 0, len(xs)*6)
	for i, x := range xs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*6 + 1
		// first_detected = last_detected on insert, count starts at 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,1,'active')",
			base, base+1, base+2, base+3, base+4, base+5)
		args = append(args, x.Type, x.Key, x.Data, x.Confidence, x.DetectedAt, x.DetectedAt)
	}

	_, err := s.q.Exec(ctx, sb.String(), args...)
	return err
}

// Touch implements Storage. The row was read moments ago by id, so anything
// other than exactly one row affected is an error worth surfacing
func (s *pg) Touch(ctx context.Context, id int64, data []byte, confidence float64, at time.Time, count int) error {
	const q = `
		UPDATE detected_patterns
		SET data = $2, confidence = $3, last_detected = $4, detection_count = $5
		WHERE id = $1`

	return store.ExecOne(ctx, s.q, q, id, data, confidence, at, count)
}

// List implements Storage
func (s *pg) List(ctx context.Context, f domain.Filter) ([]domain.StoredPattern, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`
		SELECT id, pattern_type, pattern_key, data, confidence,
			first_detected, last_detected, detection_count, status
		FROM detected_patterns
		WHERE 1=1
	`)
	if f.Type != "" {
		sb.WriteString("  AND pattern_type = " + arg(string(f.Type)) + "\n")
	}
	if f.Status != "" {
		sb.WriteString("  AND status = " + arg(string(f.Status)) + "\n")
	}
	sb.WriteString("ORDER BY last_detected DESC, id DESC\nLIMIT " + arg(f.Limit))

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.StoredPattern, 0, f.Limit)
	for rows.Next() {
		var (
			p      domain.StoredPattern
			ty, st string
			raw    []byte
		)
		if err := rows.Scan(&p.ID, &ty, &p.Key, &raw, &p.Confidence,
			&p.FirstDetected, &p.LastDetected, &p.DetectionCount, &st); err != nil {
			return nil, err
		}
		p.Type, p.Status, p.Data = signal.Type(ty), signal.Status(st), json.RawMessage(raw)
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountByType implements Storage
func (s *pg) CountByType(ctx context.Context, since, until time.Time) ([]domain.TypeCount, error) {
	const q = `
		SELECT pattern_type, COUNT(*)
		FROM detected_patterns
		WHERE last_detected >= $1 AND last_detected < $2
		GROUP BY pattern_type
		ORDER BY pattern_type`

	rows, err := s.q.Query(ctx, q, since, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TypeCount
	for rows.Next() {
		var (
			ty string
			n  int
		)
		if err := rows.Scan(&ty, &n); err != nil {
			return nil, err
		}
		out = append(out, domain.TypeCount{Type: signal.Type(ty), Count: n})
	}
	return out, rows.Err()
}
