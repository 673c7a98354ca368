package event

import (
	"strings"
	"time"
)

// Type identifies the type of a game event.
type Type string

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// Domain returns the domain prefix of the event type (e.g., "quest", "narrative").
func (t Type) Domain() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}

// ActorType identifies who or what triggered an event.
type ActorType string

const (
	// ActorTypeSystem indicates the event was triggered by the engine itself.
	ActorTypeSystem ActorType = "system"
	// ActorTypePlayer indicates the event was triggered by a player intent.
	ActorTypePlayer ActorType = "player"
)

// Event represents an immutable event in the session journal.
type Event struct {
	// SessionID is the game run this event belongs to.
	SessionID string
	// Seq is the event sequence number within the session (starts at 1).
	// Assigned by the journal on append.
	Seq uint64
	// Timestamp is when the event occurred, UTC, millisecond precision.
	// Every event produced by one command invocation carries the same value.
	Timestamp time.Time
	// Type identifies the kind of event.
	Type Type
	// ActorType identifies who triggered the event.
	ActorType ActorType
	// RequestID correlates related events (e.g., battle trigger to resolution).
	RequestID string
	// EntityType is the type of entity affected (quest, node, faction, card).
	EntityType string
	// EntityID is the ID of the entity affected.
	EntityID string
	// PayloadJSON holds event-specific data as canonical JSON.
	PayloadJSON []byte
}
