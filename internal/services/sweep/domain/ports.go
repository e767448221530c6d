package domain

import (
	"context"
	"time"
)

// RunnerPort executes one full detection sweep
type RunnerPort interface {
	// Run detects patterns as of now and reconciles them into the store.
	// A single captured now threads through every detector so the run is
	// internally consistent and replayable
	Run(ctx context.Context, now time.Time) (Summary, error)
}
