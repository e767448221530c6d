// Package domain holds incidents domain types and ports
package domain

import "time"

// Incident is one attributed security incident as the detectors see it.
// Only attribution and timing matter here; the rest of the source row
// stays behind the repo
type Incident struct {
	ActorID      string
	DiscoveredAt time.Time
}

// Range is a half-open [Since, Until) time window
type Range struct {
	Since time.Time
	Until time.Time
}
