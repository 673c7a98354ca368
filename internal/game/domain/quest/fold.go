package quest

import (
	"encoding/json"
	"fmt"

	"github.com/mverett/driftmark/internal/game/domain/event"
)

// FoldState is the slice of state the quest fold maintains. The decider's
// State embeds run lifecycle fields owned by the run fold; this struct holds
// only what quest events determine.
type FoldState struct {
	ActiveQuestID    string
	ActiveGraphID    string
	CompletedCount   int
	SummaryPresented bool
}

// FoldHandledTypes returns the event types handled by the quest fold function.
func FoldHandledTypes() []event.Type {
	return []event.Type{
		EventTypeAccepted,
		EventTypeDilemmaPresented,
		EventTypeSummaryPresented,
		EventTypeSummaryAcknowledged,
		EventTypeCompleted,
	}
}

// Fold applies an event to quest state.
func Fold(state FoldState, evt event.Event) (FoldState, error) {
	switch evt.Type {
	case EventTypeAccepted:
		var payload AcceptedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("quest fold %s: %w", evt.Type, err)
		}
		state.ActiveQuestID = payload.QuestID
		state.ActiveGraphID = payload.GraphID
	case EventTypeSummaryPresented:
		state.SummaryPresented = true
	case EventTypeSummaryAcknowledged:
		state.SummaryPresented = false
	case EventTypeCompleted:
		var payload CompletedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("quest fold %s: %w", evt.Type, err)
		}
		state.ActiveQuestID = ""
		state.ActiveGraphID = ""
		state.CompletedCount = payload.CompletedCount
	}
	return state, nil
}
