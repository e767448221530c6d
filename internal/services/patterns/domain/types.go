// Package domain holds pattern store domain types and ports
package domain

import (
	"encoding/json"
	"time"

	"tripline/internal/core/signal"
)

// Payload is the type-specific data block persisted as JSONB alongside each
// pattern. Fields not relevant to a pattern type stay unset and are omitted
type Payload struct {
	ActorID      string     `json:"actor_id,omitempty"`
	DormantDays  int        `json:"dormant_days,omitempty"`
	LastSeen     *time.Time `json:"last_seen,omitempty"`
	Direction    string     `json:"direction,omitempty"`
	Ratio        float64    `json:"ratio,omitempty"`
	RecentRate   float64    `json:"recent_rate,omitempty"`
	BaselineRate float64    `json:"baseline_rate,omitempty"`
	Description  string     `json:"description"`
}

// DetectedPattern is one freshly-detected pattern as the detectors emit it,
// before reconciliation against the store
type DetectedPattern struct {
	Type       signal.Type `validate:"required,oneof=reactivated_actor dormant_actor activity_spike"`
	Key        signal.Key  `validate:"required"`
	Confidence float64     `validate:"gte=0,lte=1"`
	Data       Payload
}

// StoredPattern is one persisted row as the read side returns it
type StoredPattern struct {
	ID             int64
	Type           signal.Type
	Key            string
	Data           json.RawMessage
	Confidence     float64
	FirstDetected  time.Time
	LastDetected   time.Time
	DetectionCount int
	Status         signal.Status
}

// Report summarizes one reconciliation pass. Failed counts write attempts
// that errored; Rejected counts structurally invalid records that never
// reached the store
type Report struct {
	Inserted int
	Updated  int
	Failed   int
	Rejected int
}

// Filter narrows a pattern listing
type Filter struct {
	Type   signal.Type
	Status signal.Status
	Limit  int
}

// TypeCount is one row of the per-type summary
type TypeCount struct {
	Type  signal.Type
	Count int
}
