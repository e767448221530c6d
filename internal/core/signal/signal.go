// Package signal holds the pure domain algebra for temporal pattern detection:
// pattern types, typed pattern keys, confidence scoring, and window math.
// Everything here is deterministic and free of I/O
package signal

// Type classifies a detected pattern
type Type string

const (
	// TypeReactivatedActor marks an actor resuming activity after dormancy
	TypeReactivatedActor Type = "reactivated_actor"

	// TypeDormantActor marks an actor that went quiet past the threshold
	TypeDormantActor Type = "dormant_actor"

	// TypeActivitySpike marks a global surge or drop in incident rate
	TypeActivitySpike Type = "activity_spike"
)

// Valid reports whether t is one of the known pattern types
func (t Type) Valid() bool {
	switch t {
	case TypeReactivatedActor, TypeDormantActor, TypeActivitySpike:
		return true
	}
	return false
}

// Direction tags which way an activity spike goes
type Direction string

const (
	// DirectionIncrease marks a surge versus baseline
	DirectionIncrease Direction = "increase"

	// DirectionDecrease marks a drop versus baseline
	DirectionDecrease Direction = "decrease"
)

// Status is the pattern lifecycle flag; detection only ever writes active
type Status string

const (
	// StatusActive is the default for freshly detected patterns
	StatusActive Status = "active"

	// StatusResolved and StatusDismissed are set by downstream consumers, never here
	StatusResolved Status = "resolved"

	// StatusDismissed marks a pattern dismissed by an operator
	StatusDismissed Status = "dismissed"
)
