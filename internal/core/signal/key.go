package signal

import (
	"strings"
	"time"
)

// Key is the deterministic identity of one detected phenomenon on one run-day.
// Two detections with equal keys are the same pattern and must be deduplicated
// by incrementing, not duplicated. Keys are typed rather than formatted ad hoc
// so a delimiter inside an actor id can never collide with the key structure
type Key interface {
	// PatternType returns the type component of the key
	PatternType() Type

	// String renders the canonical {type}:{discriminator}:{run_date} form
	String() string
}

const keyDateLayout = "2006-01-02"

// escapeKeyPart makes a discriminator safe for the colon-delimited string form
func escapeKeyPart(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, ":", `\:`)
}

// ReactivatedActorKey identifies one actor reactivating on one run-day
type ReactivatedActorKey struct {
	ActorID string
	Date    time.Time
}

// PatternType implements Key
func (k ReactivatedActorKey) PatternType() Type { return TypeReactivatedActor }

func (k ReactivatedActorKey) String() string {
	return string(TypeReactivatedActor) + ":" + escapeKeyPart(k.ActorID) + ":" + k.Date.UTC().Format(keyDateLayout)
}

// DormantActorKey identifies one actor going dormant on one run-day
type DormantActorKey struct {
	ActorID string
	Date    time.Time
}

// PatternType implements Key
func (k DormantActorKey) PatternType() Type { return TypeDormantActor }

func (k DormantActorKey) String() string {
	return string(TypeDormantActor) + ":" + escapeKeyPart(k.ActorID) + ":" + k.Date.UTC().Format(keyDateLayout)
}

// ActivitySpikeKey identifies one spike direction on one run-day
// at most one increase and one decrease can exist per day
type ActivitySpikeKey struct {
	Direction Direction
	Date      time.Time
}

// PatternType implements Key
func (k ActivitySpikeKey) PatternType() Type { return TypeActivitySpike }

func (k ActivitySpikeKey) String() string {
	return string(TypeActivitySpike) + ":" + string(k.Direction) + ":" + k.Date.UTC().Format(keyDateLayout)
}
