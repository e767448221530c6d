// Package domain holds the pattern history archive port
package domain

import (
	"context"
	"time"

	patdom "tripline/internal/services/patterns/domain"
)

// ArchiverPort appends one run's detections to the columnar history.
// Append is best-effort: callers log failures and move on, the archive
// never gates the relational write path
type ArchiverPort interface {
	Append(ctx context.Context, runID string, runDate time.Time, xs []patdom.DetectedPattern) error
}
