package run

import (
	"encoding/json"
	"time"

	"github.com/mverett/driftmark/internal/game/domain/command"
	"github.com/mverett/driftmark/internal/game/domain/event"
	apperrors "github.com/mverett/driftmark/internal/platform/errors"
)

const (
	// CommandTypeStart starts a new game run.
	CommandTypeStart command.Type = "run.start"

	// EventTypeStarted records the start of a run.
	EventTypeStarted event.Type = "run.started"
	// EventTypePhaseChanged records a phase transition.
	EventTypePhaseChanged event.Type = "run.phase_changed"
	// EventTypeEnded records the end of a run.
	EventTypeEnded event.Type = "run.ended"

	rejectionCodeRunAlreadyStarted = string(apperrors.CodeRunAlreadyStarted)
	rejectionCodeRunTotalsInvalid  = string(apperrors.CodeRunTotalQuestsInvalid)
)

// Decide returns the decision for a run command against current state.
func Decide(state State, cmd command.Command, now func() time.Time) command.Decision {
	if cmd.Type == CommandTypeStart {
		if state.Started {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeRunAlreadyStarted,
				Message: "run already started",
			})
		}
		var payload StartPayload
		_ = json.Unmarshal(cmd.PayloadJSON, &payload)
		if payload.TotalQuests <= 0 {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeRunTotalsInvalid,
				Message: "total quests must be positive",
			})
		}
		if now == nil {
			now = time.Now
		}
		stamp := now().UTC()

		startedJSON, _ := json.Marshal(StartPayload{TotalQuests: payload.TotalQuests})
		started := event.Event{
			SessionID:   cmd.SessionID,
			Type:        EventTypeStarted,
			Timestamp:   stamp,
			ActorType:   event.ActorType(cmd.ActorType),
			RequestID:   cmd.RequestID,
			EntityType:  "run",
			EntityID:    cmd.SessionID,
			PayloadJSON: startedJSON,
		}
		return command.Accept(started, PhaseChangeEvent(cmd.SessionID, "", PhaseQuestHub, stamp, event.ActorTypeSystem))
	}

	return command.Decision{}
}

// PhaseChangeEvent builds a run.phase_changed event. Slices that move the run
// between phases use this constructor so the phase vocabulary stays closed.
func PhaseChangeEvent(sessionID, from, to string, stamp time.Time, actor event.ActorType) event.Event {
	payloadJSON, _ := json.Marshal(PhaseChangedPayload{From: from, To: to})
	return event.Event{
		SessionID:   sessionID,
		Type:        EventTypePhaseChanged,
		Timestamp:   stamp,
		ActorType:   actor,
		EntityType:  "run",
		EntityID:    sessionID,
		PayloadJSON: payloadJSON,
	}
}

// EndedEvent builds a run.ended event.
func EndedEvent(sessionID, reason string, questsCompleted int, stamp time.Time) event.Event {
	payloadJSON, _ := json.Marshal(EndedPayload{Reason: reason, QuestsCompleted: questsCompleted})
	return event.Event{
		SessionID:   sessionID,
		Type:        EventTypeEnded,
		Timestamp:   stamp,
		ActorType:   event.ActorTypeSystem,
		EntityType:  "run",
		EntityID:    sessionID,
		PayloadJSON: payloadJSON,
	}
}
