// Package domain holds sweep domain types and ports
package domain

import (
	"time"

	"tripline/internal/core/signal"
	patdom "tripline/internal/services/patterns/domain"
)

// Summary is the user-visible outcome of one sweep run
type Summary struct {
	RunID  string
	RunAt  time.Time
	DryRun bool

	// Counts holds emitted patterns per type, before persistence
	Counts map[signal.Type]int

	// Reactivated lists actor ids flagged by the reactivation detector
	Reactivated []string

	// Spikes lists human-readable spike descriptions
	Spikes []string

	Report patdom.Report
}

// Total returns the number of patterns emitted across all types
func (s Summary) Total() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}
