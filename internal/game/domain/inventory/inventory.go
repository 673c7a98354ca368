// Package inventory folds the player's card collection from the event journal.
//
// Card-gain and card-loss transition effects resolve synchronously inside the
// narrative decision: the decider emits card.gained / card.lost facts in the
// same batch as the choice that caused them. Unlike battles, nothing external
// resolves a card trigger.
package inventory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mverett/driftmark/internal/game/domain/event"
)

const (
	// EventTypeCardGained records a card entering the collection.
	EventTypeCardGained event.Type = "card.gained"
	// EventTypeCardLost records a card leaving the collection.
	EventTypeCardLost event.Type = "card.lost"
)

// CardGainedPayload captures the payload for card.gained events.
type CardGainedPayload struct {
	CardID string `json:"card_id"`
	Source string `json:"source,omitempty"`
}

// CardLostPayload captures the payload for card.lost events.
type CardLostPayload struct {
	CardID string `json:"card_id"`
	Reason string `json:"reason,omitempty"`
}

// State holds replayed card counts keyed by card id.
type State struct {
	Cards map[string]int
}

// Count returns the copies held of a card.
func (s State) Count(cardID string) int {
	return s.Cards[cardID]
}

// FoldHandledTypes returns the event types handled by the inventory fold.
func FoldHandledTypes() []event.Type {
	return []event.Type{EventTypeCardGained, EventTypeCardLost}
}

// Fold applies an event to inventory state.
func Fold(state State, evt event.Event) (State, error) {
	switch evt.Type {
	case EventTypeCardGained:
		var payload CardGainedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("inventory fold %s: %w", evt.Type, err)
		}
		if state.Cards == nil {
			state.Cards = make(map[string]int)
		}
		state.Cards[payload.CardID]++
	case EventTypeCardLost:
		var payload CardLostPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("inventory fold %s: %w", evt.Type, err)
		}
		if state.Cards == nil {
			state.Cards = make(map[string]int)
		}
		if state.Cards[payload.CardID] > 0 {
			state.Cards[payload.CardID]--
		}
	}
	return state, nil
}

// CardGainedEvent builds a card.gained event.
func CardGainedEvent(sessionID, cardID, source string, stamp time.Time) event.Event {
	payloadJSON, _ := json.Marshal(CardGainedPayload{CardID: cardID, Source: source})
	return event.Event{
		SessionID:   sessionID,
		Type:        EventTypeCardGained,
		Timestamp:   stamp,
		ActorType:   event.ActorTypeSystem,
		EntityType:  "card",
		EntityID:    cardID,
		PayloadJSON: payloadJSON,
	}
}

// CardLostEvent builds a card.lost event.
func CardLostEvent(sessionID, cardID, reason string, stamp time.Time) event.Event {
	payloadJSON, _ := json.Marshal(CardLostPayload{CardID: cardID, Reason: reason})
	return event.Event{
		SessionID:   sessionID,
		Type:        EventTypeCardLost,
		Timestamp:   stamp,
		ActorType:   event.ActorTypeSystem,
		EntityType:  "card",
		EntityID:    cardID,
		PayloadJSON: payloadJSON,
	}
}

// RegisterEvents registers inventory events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	if err := registry.Register(event.Definition{
		Type:            EventTypeCardGained,
		ValidatePayload: validateCardGainedPayload,
	}); err != nil {
		return err
	}
	return registry.Register(event.Definition{
		Type:            EventTypeCardLost,
		ValidatePayload: validateCardLostPayload,
	})
}

// validateCardGainedPayload ensures gained payloads name a card.
func validateCardGainedPayload(raw json.RawMessage) error {
	var payload CardGainedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.CardID == "" {
		return fmt.Errorf("card id is required")
	}
	return nil
}

// validateCardLostPayload ensures lost payloads name a card.
func validateCardLostPayload(raw json.RawMessage) error {
	var payload CardLostPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.CardID == "" {
		return fmt.Errorf("card id is required")
	}
	return nil
}
