// Package bounty folds the player's bounty counter from the event journal.
package bounty

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mverett/driftmark/internal/game/domain/event"
)

// EventTypeModified records a bounty change. The payload carries the new
// total, not the raw delta, so replaying folds is idempotent.
const EventTypeModified event.Type = "bounty.modified"

// ModifiedPayload captures the payload for bounty.modified events.
type ModifiedPayload struct {
	Delta    int    `json:"delta"`
	NewValue int    `json:"new_value"`
	Reason   string `json:"reason,omitempty"`
}

// State holds the replayed bounty counter.
type State struct {
	Value int
}

// FoldHandledTypes returns the event types handled by the bounty fold.
func FoldHandledTypes() []event.Type {
	return []event.Type{EventTypeModified}
}

// Fold applies an event to bounty state.
func Fold(state State, evt event.Event) (State, error) {
	if evt.Type != EventTypeModified {
		return state, nil
	}
	var payload ModifiedPayload
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
		return state, fmt.Errorf("bounty fold %s: %w", evt.Type, err)
	}
	state.Value = payload.NewValue
	return state, nil
}

// ModifiedEvent builds a bounty.modified event carrying the new total.
func ModifiedEvent(sessionID string, delta, newValue int, reason string, stamp time.Time) event.Event {
	payloadJSON, _ := json.Marshal(ModifiedPayload{Delta: delta, NewValue: newValue, Reason: reason})
	return event.Event{
		SessionID:   sessionID,
		Type:        EventTypeModified,
		Timestamp:   stamp,
		ActorType:   event.ActorTypeSystem,
		EntityType:  "bounty",
		EntityID:    sessionID,
		PayloadJSON: payloadJSON,
	}
}

// RegisterEvents registers bounty events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	return registry.Register(event.Definition{
		Type:            EventTypeModified,
		ValidatePayload: validateModifiedPayload,
	})
}

// validateModifiedPayload ensures modified payloads match the modified shape.
func validateModifiedPayload(raw json.RawMessage) error {
	var payload ModifiedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return nil
}
