package domain

import (
	"context"
	"time"
)

// ReaderPort is the read surface the detectors depend on.
// Incidents without an attributed actor are invisible through every method
type ReaderPort interface {
	// ActiveActors returns distinct actor ids with at least one incident in [since, until)
	ActiveActors(ctx context.Context, since, until time.Time, limit int) ([]string, error)

	// LastActorIncidentBefore returns the most recent incident time strictly before the cutoff.
	// ok is false when the actor has no incident before it
	LastActorIncidentBefore(ctx context.Context, actorID string, before time.Time) (t time.Time, ok bool, err error)

	// AnyActorIncidentBetween reports whether the actor has any incident
	// strictly between after and before (both exclusive)
	AnyActorIncidentBetween(ctx context.Context, actorID string, after, before time.Time) (bool, error)

	// LastActorIncident returns the actor's most recent incident time overall
	LastActorIncident(ctx context.Context, actorID string) (t time.Time, ok bool, err error)

	// CountRange counts attributed incidents in [since, until)
	CountRange(ctx context.Context, since, until time.Time) (int, error)
}
