// Package repo provides the incidents repository implementation.
package repo

import (
	"context"
	"errors"
	"time"

	"tripline/internal/modkit/repokit"
	perr "tripline/internal/platform/errors"
	"tripline/internal/platform/store"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the incidents repository
type Storage interface {
	ActiveActors(ctx context.Context, since, until time.Time, limit int) ([]string, error)
	LastActorIncidentBefore(ctx context.Context, actorID string, before time.Time) (time.Time, bool, error)
	AnyActorIncidentBetween(ctx context.Context, actorID string, after, before time.Time) (bool, error)
	LastActorIncident(ctx context.Context, actorID string) (time.Time, bool, error)
	CountRange(ctx context.Context, since, until time.Time) (int, error)
}

// ActiveActors implements Storage
func (s *pg) ActiveActors(ctx context.Context, since, until time.Time, limit int) ([]string, error) {
	const q = `
		SELECT DISTINCT threat_actor_id
		FROM incidents
		WHERE threat_actor_id IS NOT NULL
			AND discovered_at >= $1 AND discovered_at < $2
		ORDER BY threat_actor_id
		LIMIT $3`

	return store.Many(ctx, s.q, func(r store.Row) (string, error) {
		var id string
		return id, r.Scan(&id)
	}, q, since, until, limit)
}

// LastActorIncidentBefore implements Storage
func (s *pg) LastActorIncidentBefore(ctx context.Context, actorID string, before time.Time) (time.Time, bool, error) {
	const q = `
		SELECT discovered_at
		FROM incidents
		WHERE threat_actor_id = $1 AND discovered_at < $2
		ORDER BY discovered_at DESC
		LIMIT 1`

	return s.oneTime(ctx, q, actorID, before)
}

// AnyActorIncidentBetween implements Storage
func (s *pg) AnyActorIncidentBetween(ctx context.Context, actorID string, after, before time.Time) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM incidents
			WHERE threat_actor_id = $1
				AND discovered_at > $2 AND discovered_at < $3
		)`

	return store.Scalar[bool](ctx, s.q, q, actorID, after, before)
}

// LastActorIncident implements Storage
func (s *pg) LastActorIncident(ctx context.Context, actorID string) (time.Time, bool, error) {
	const q = `
		SELECT discovered_at
		FROM incidents
		WHERE threat_actor_id = $1
		ORDER BY discovered_at DESC
		LIMIT 1`

	return s.oneTime(ctx, q, actorID)
}

// CountRange implements Storage
func (s *pg) CountRange(ctx context.Context, since, until time.Time) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM incidents
		WHERE threat_actor_id IS NOT NULL
			AND discovered_at >= $1 AND discovered_at < $2`

	return store.Scalar[int](ctx, s.q, q, since, until)
}

// oneTime runs a single-timestamp query and folds the empty result into ok=false
func (s *pg) oneTime(ctx context.Context, q string, args ...any) (time.Time, bool, error) {
	t, err := store.One(ctx, s.q, func(r store.Row) (time.Time, error) {
		var t time.Time
		return t, r.Scan(&t)
	}, q, args...)
	if errors.Is(err, perr.ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
