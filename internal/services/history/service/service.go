// Package service provides the pattern history archiver
package service

import (
	"context"
	"time"

	"tripline/internal/platform/store"
	patdom "tripline/internal/services/patterns/domain"
)

// table is append-only; rows are never updated or deleted
const table = "pattern_history"

// Service implements domain.ArchiverPort against the ClickHouse seam
type Service struct {
	CH store.Clickhouse
}

// New constructs a new history service
func New(chdb store.Clickhouse) *Service {
	return &Service{CH: chdb}
}

// Append implements domain.ArchiverPort
func (s *Service) Append(ctx context.Context, runID string, runDate time.Time, xs []patdom.DetectedPattern) error {
	if len(xs) == 0 {
		return nil
	}

	day := runDate.UTC().Truncate(24 * time.Hour)
	rows := make([][]any, 0, len(xs))
	for _, x := range xs {
		rows = append(rows, []any{
			runID,
			day,
			string(x.Type),
			x.Key.String(),
			x.Confidence,
			runDate.UTC(),
		})
	}
	return s.CH.Insert(ctx, table, rows)
}
