// Package reputation folds per-faction standing from the event journal.
package reputation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mverett/driftmark/internal/game/domain/event"
)

// EventTypeChanged records a faction reputation change. The payload carries
// the new total, not the raw delta, so replaying folds is idempotent.
const EventTypeChanged event.Type = "reputation.changed"

// Band names a reputation standing tier.
type Band string

const (
	// BandHostile marks open hostility.
	BandHostile Band = "hostile"
	// BandUnfriendly marks suspicion without open hostility.
	BandUnfriendly Band = "unfriendly"
	// BandNeutral marks indifference.
	BandNeutral Band = "neutral"
	// BandFriendly marks goodwill.
	BandFriendly Band = "friendly"
	// BandAllied marks full alliance.
	BandAllied Band = "allied"
)

// Banding thresholds. Tunables carried over from the original content
// balancing; no formula-level derivation is claimed.
const (
	ThresholdHostile    = -25
	ThresholdUnfriendly = -10
	ThresholdFriendly   = 10
	ThresholdAllied     = 25
)

// BandFor maps a reputation counter to its standing band. The mapping is
// monotonic in the counter value.
func BandFor(value int) Band {
	switch {
	case value <= ThresholdHostile:
		return BandHostile
	case value <= ThresholdUnfriendly:
		return BandUnfriendly
	case value < ThresholdFriendly:
		return BandNeutral
	case value < ThresholdAllied:
		return BandFriendly
	default:
		return BandAllied
	}
}

// ChangedPayload captures the payload for reputation.changed events.
type ChangedPayload struct {
	FactionID string `json:"faction_id"`
	Delta     int    `json:"delta"`
	NewValue  int    `json:"new_value"`
	Reason    string `json:"reason,omitempty"`
}

// State holds per-faction reputation totals in first-encounter order.
type State struct {
	Values map[string]int
	// Order lists faction ids by first reputation.changed encounter; stable
	// ordering for views that break ties by encounter order.
	Order []string
}

// Value returns the counter for a faction, zero when never encountered.
func (s State) Value(factionID string) int {
	return s.Values[factionID]
}

// FoldHandledTypes returns the event types handled by the reputation fold.
func FoldHandledTypes() []event.Type {
	return []event.Type{EventTypeChanged}
}

// Fold applies an event to reputation state.
func Fold(state State, evt event.Event) (State, error) {
	if evt.Type != EventTypeChanged {
		return state, nil
	}
	var payload ChangedPayload
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
		return state, fmt.Errorf("reputation fold %s: %w", evt.Type, err)
	}
	if state.Values == nil {
		state.Values = make(map[string]int)
	}
	if _, seen := state.Values[payload.FactionID]; !seen {
		state.Order = append(state.Order, payload.FactionID)
	}
	state.Values[payload.FactionID] = payload.NewValue
	return state, nil
}

// ChangedEvent builds a reputation.changed event carrying the new total.
func ChangedEvent(sessionID, factionID string, delta, newValue int, reason string, stamp time.Time) event.Event {
	payloadJSON, _ := json.Marshal(ChangedPayload{
		FactionID: factionID,
		Delta:     delta,
		NewValue:  newValue,
		Reason:    reason,
	})
	return event.Event{
		SessionID:   sessionID,
		Type:        EventTypeChanged,
		Timestamp:   stamp,
		ActorType:   event.ActorTypeSystem,
		EntityType:  "faction",
		EntityID:    factionID,
		PayloadJSON: payloadJSON,
	}
}

// RegisterEvents registers reputation events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	return registry.Register(event.Definition{
		Type:            EventTypeChanged,
		ValidatePayload: validateChangedPayload,
	})
}

// validateChangedPayload ensures changed payloads name a faction.
func validateChangedPayload(raw json.RawMessage) error {
	var payload ChangedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.FactionID == "" {
		return fmt.Errorf("faction id is required")
	}
	return nil
}
