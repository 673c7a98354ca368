package run

import (
	"encoding/json"
	"fmt"

	"github.com/mverett/driftmark/internal/game/domain/event"
)

// FoldHandledTypes returns the event types handled by the run fold function.
func FoldHandledTypes() []event.Type {
	return []event.Type{
		EventTypeStarted,
		EventTypePhaseChanged,
		EventTypeEnded,
	}
}

// Fold applies an event to run state. It returns an error if a recognized
// event carries a payload that cannot be unmarshalled.
func Fold(state State, evt event.Event) (State, error) {
	switch evt.Type {
	case EventTypeStarted:
		var payload StartPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("run fold %s: %w", evt.Type, err)
		}
		state.Started = true
		state.Ended = false
		state.TotalQuests = payload.TotalQuests
	case EventTypePhaseChanged:
		var payload PhaseChangedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("run fold %s: %w", evt.Type, err)
		}
		state.Phase = payload.To
	case EventTypeEnded:
		state.Ended = true
	}
	return state, nil
}
