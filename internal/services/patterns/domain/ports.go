package domain

import (
	"context"
	"time"
)

// WriterPort reconciles freshly-detected patterns against the store
type WriterPort interface {
	// Reconcile deduplicates xs against the rows already persisted for now's
	// calendar day: unseen keys are inserted, seen keys get their detection
	// count incremented. Write failures are isolated per operation and
	// reported, not raised
	Reconcile(ctx context.Context, now time.Time, xs []DetectedPattern) (Report, error)
}

// ReaderPort serves persisted patterns to the API
type ReaderPort interface {
	List(ctx context.Context, f Filter) ([]StoredPattern, error)

	// Summary counts today's patterns by type
	Summary(ctx context.Context, day time.Time) ([]TypeCount, error)
}
