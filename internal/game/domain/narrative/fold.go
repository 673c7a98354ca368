package narrative

import (
	"encoding/json"
	"fmt"

	"github.com/mverett/driftmark/internal/game/domain/event"
)

// FoldHandledTypes returns the event types handled by the narrative fold.
func FoldHandledTypes() []event.Type {
	return []event.Type{
		EventTypeSessionStarted,
		EventTypeNodeEntered,
		EventTypeChoiceMade,
		EventTypeFlagSet,
		EventTypeEndingReached,
	}
}

// Fold applies an event to narrative state. A session_started event resets
// all session-local traversal state; flags and visit counts never leak
// between sessions.
func Fold(state State, evt event.Event) (State, error) {
	switch evt.Type {
	case EventTypeSessionStarted:
		var payload SessionStartedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("narrative fold %s: %w", evt.Type, err)
		}
		return State{
			Active:      true,
			GraphID:     payload.GraphID,
			QuestID:     payload.QuestID,
			Flags:       make(map[string]bool),
			VisitCounts: make(map[NodeID]int),
			StartedAt:   evt.Timestamp,
		}, nil
	case EventTypeNodeEntered:
		var payload NodeEnteredPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("narrative fold %s: %w", evt.Type, err)
		}
		if state.VisitCounts == nil {
			state.VisitCounts = make(map[NodeID]int)
		}
		state.CurrentNodeID = NodeID(payload.NodeID)
		state.VisitCounts[NodeID(payload.NodeID)]++
		state.NodesVisited++
	case EventTypeChoiceMade:
		state.ChoicesMade++
	case EventTypeFlagSet:
		var payload FlagSetPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("narrative fold %s: %w", evt.Type, err)
		}
		if state.Flags == nil {
			state.Flags = make(map[string]bool)
		}
		state.Flags[payload.Name] = payload.Value
		state.FlagsSet++
	case EventTypeEndingReached:
		state.Active = false
	}
	return state, nil
}
