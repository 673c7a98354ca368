package quest

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/mverett/driftmark/internal/game/domain/command"
	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/run"
	apperrors "github.com/mverett/driftmark/internal/platform/errors"
)

const (
	// CommandTypeAccept accepts a quest from the hub.
	CommandTypeAccept command.Type = "quest.accept"
	// CommandTypeSummaryAcknowledge dismisses the post-quest summary.
	CommandTypeSummaryAcknowledge command.Type = "quest.summary_acknowledge"

	// EventTypeAccepted records a quest acceptance.
	EventTypeAccepted event.Type = "quest.accepted"
	// EventTypeDilemmaPresented records the entry dilemma being shown.
	EventTypeDilemmaPresented event.Type = "quest.dilemma_presented"
	// EventTypeSummaryPresented records the quest summary being shown.
	EventTypeSummaryPresented event.Type = "quest.summary_presented"
	// EventTypeSummaryAcknowledged records the player dismissing the summary.
	EventTypeSummaryAcknowledged event.Type = "quest.summary_acknowledged"
	// EventTypeCompleted records a quest completion.
	EventTypeCompleted event.Type = "quest.completed"

	rejectionCodeRunNotInProgress = string(apperrors.CodeRunNotInProgress)
	rejectionCodePhaseMismatch    = string(apperrors.CodeRunPhaseMismatch)
	rejectionCodeQuestIDRequired  = string(apperrors.CodeQuestIDRequired)
	rejectionCodeQuestActive      = string(apperrors.CodeQuestAlreadyActive)
	rejectionCodeQuestNotFound    = string(apperrors.CodeQuestNotFound)
	rejectionCodeNoEntryDilemma   = string(apperrors.CodeQuestNoEntryDilemma)
	rejectionCodeNoActiveQuest    = string(apperrors.CodeQuestNoActiveQuest)

	// endReasonAllQuestsCompleted is recorded on run.ended after the final quest.
	endReasonAllQuestsCompleted = "all_quests_completed"
)

// Decide returns the decision for a quest command against current state.
//
// Business rules run in a fixed order (phase, preconditions, content
// existence) so rejection codes are deterministic. All events from one
// command carry one timestamp.
func Decide(state State, cmd command.Command, content ContentLookup, now func() time.Time) command.Decision {
	if cmd.Type == CommandTypeAccept {
		if !state.RunInProgress {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeRunNotInProgress,
				Message: "run is not in progress",
			})
		}
		if state.Phase != run.PhaseQuestHub {
			return command.Reject(command.Rejection{
				Code:    rejectionCodePhaseMismatch,
				Message: "quests can only be accepted from the quest hub, current phase: " + state.Phase,
			})
		}
		if state.ActiveQuestID != "" {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeQuestActive,
				Message: "a quest is already active: " + state.ActiveQuestID,
			})
		}
		var payload AcceptPayload
		_ = json.Unmarshal(cmd.PayloadJSON, &payload)
		questID := strings.TrimSpace(payload.QuestID)
		if questID == "" {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeQuestIDRequired,
				Message: "quest id is required",
			})
		}
		info, ok := content.QuestByID(questID)
		if !ok {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeQuestNotFound,
				Message: "quest not found: " + questID,
			})
		}
		if info.EntryNodeID == "" {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeNoEntryDilemma,
				Message: "quest has no entry dilemma: " + questID,
			})
		}
		if now == nil {
			now = time.Now
		}
		stamp := now().UTC()

		acceptedJSON, _ := json.Marshal(AcceptedPayload{QuestID: info.QuestID, Title: info.Title, GraphID: info.GraphID})
		accepted := event.Event{
			SessionID:   cmd.SessionID,
			Type:        EventTypeAccepted,
			Timestamp:   stamp,
			ActorType:   event.ActorType(cmd.ActorType),
			RequestID:   cmd.RequestID,
			EntityType:  "quest",
			EntityID:    info.QuestID,
			PayloadJSON: acceptedJSON,
		}
		phaseChanged := run.PhaseChangeEvent(cmd.SessionID, run.PhaseQuestHub, run.PhaseNarrative, stamp, event.ActorTypeSystem)
		dilemmaJSON, _ := json.Marshal(DilemmaPresentedPayload{QuestID: info.QuestID, GraphID: info.GraphID, NodeID: info.EntryNodeID})
		dilemma := event.Event{
			SessionID:   cmd.SessionID,
			Type:        EventTypeDilemmaPresented,
			Timestamp:   stamp,
			ActorType:   event.ActorTypeSystem,
			EntityType:  "node",
			EntityID:    info.EntryNodeID,
			PayloadJSON: dilemmaJSON,
		}
		return command.Accept(accepted, phaseChanged, dilemma)
	}

	if cmd.Type == CommandTypeSummaryAcknowledge {
		if state.Phase != run.PhaseQuestSummary {
			return command.Reject(command.Rejection{
				Code:    rejectionCodePhaseMismatch,
				Message: "no quest summary to acknowledge, current phase: " + state.Phase,
			})
		}
		if state.ActiveQuestID == "" {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeNoActiveQuest,
				Message: "no active quest",
			})
		}
		if now == nil {
			now = time.Now
		}
		stamp := now().UTC()
		questID := state.ActiveQuestID

		acknowledgedJSON, _ := json.Marshal(SummaryAcknowledgedPayload{QuestID: questID})
		acknowledged := event.Event{
			SessionID:   cmd.SessionID,
			Type:        EventTypeSummaryAcknowledged,
			Timestamp:   stamp,
			ActorType:   event.ActorType(cmd.ActorType),
			RequestID:   cmd.RequestID,
			EntityType:  "quest",
			EntityID:    questID,
			PayloadJSON: acknowledgedJSON,
		}
		completedCount := state.CompletedCount + 1
		completedJSON, _ := json.Marshal(CompletedPayload{QuestID: questID, CompletedCount: completedCount})
		completed := event.Event{
			SessionID:   cmd.SessionID,
			Type:        EventTypeCompleted,
			Timestamp:   stamp,
			ActorType:   event.ActorTypeSystem,
			EntityType:  "quest",
			EntityID:    questID,
			PayloadJSON: completedJSON,
		}

		// The sole branch point: this quest was the last one, or it was not.
		if completedCount >= state.TotalQuests {
			ended := run.EndedEvent(cmd.SessionID, endReasonAllQuestsCompleted, completedCount, stamp)
			phaseChanged := run.PhaseChangeEvent(cmd.SessionID, run.PhaseQuestSummary, run.PhaseEnding, stamp, event.ActorTypeSystem)
			return command.Accept(acknowledged, completed, ended, phaseChanged)
		}
		phaseChanged := run.PhaseChangeEvent(cmd.SessionID, run.PhaseQuestSummary, run.PhaseQuestHub, stamp, event.ActorTypeSystem)
		return command.Accept(acknowledged, completed, phaseChanged)
	}

	return command.Decision{}
}

// SummaryPresentedEvent builds a quest.summary_presented event. The narrative
// slice emits it when a quest's ending node is reached.
func SummaryPresentedEvent(sessionID, questID string, stamp time.Time) event.Event {
	payloadJSON, _ := json.Marshal(SummaryPresentedPayload{QuestID: questID})
	return event.Event{
		SessionID:   sessionID,
		Type:        EventTypeSummaryPresented,
		Timestamp:   stamp,
		ActorType:   event.ActorTypeSystem,
		EntityType:  "quest",
		EntityID:    questID,
		PayloadJSON: payloadJSON,
	}
}
