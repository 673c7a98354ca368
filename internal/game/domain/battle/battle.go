// Package battle owns battle trigger requests and resolution slices.
//
// The narrative engine emits battle.triggered requests; an external battle
// collaborator resolves them and reports back through the battle.resolve
// command. The core never resolves battles synchronously.
package battle

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mverett/driftmark/internal/game/domain/command"
	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/run"
	apperrors "github.com/mverett/driftmark/internal/platform/errors"
)

const (
	// CommandTypeResolve reports a battle outcome back into the log.
	CommandTypeResolve command.Type = "battle.resolve"

	// EventTypeTriggered records a battle request awaiting resolution.
	EventTypeTriggered event.Type = "battle.triggered"
	// EventTypeResolved records a battle outcome.
	EventTypeResolved event.Type = "battle.resolved"

	rejectionCodeNotPending      = string(apperrors.CodeBattleNotPending)
	rejectionCodeInvalidOutcome  = string(apperrors.CodeBattleInvalidOutcome)
	rejectionCodeRequestRequired = string(apperrors.CodeBattleRequestRequired)
)

// Outcome names a battle result.
type Outcome string

const (
	// OutcomeVictory marks a won battle.
	OutcomeVictory Outcome = "victory"
	// OutcomeDefeat marks a lost battle.
	OutcomeDefeat Outcome = "defeat"
	// OutcomeRetreat marks a battle the player fled.
	OutcomeRetreat Outcome = "retreat"
)

// Difficulty scaling tunables. Values carried over from the original content
// balancing; no formula-level derivation is claimed.
const (
	// BaseDifficulty anchors scaling for an otherwise unmodified battle.
	BaseDifficulty = 3
	// DifficultyPerCompletedQuest raises difficulty as the run progresses.
	DifficultyPerCompletedQuest = 1
	// BountyDifficultyStep raises difficulty once per this much bounty.
	BountyDifficultyStep = 20
	// MaxDifficulty caps scaled difficulty.
	MaxDifficulty = 10
)

// ScaledDifficulty computes the effective difficulty for a triggered battle.
func ScaledDifficulty(base, completedQuests, bountyValue int) int {
	if base <= 0 {
		base = BaseDifficulty
	}
	difficulty := base + completedQuests*DifficultyPerCompletedQuest
	if BountyDifficultyStep > 0 && bountyValue > 0 {
		difficulty += bountyValue / BountyDifficultyStep
	}
	if difficulty > MaxDifficulty {
		difficulty = MaxDifficulty
	}
	return difficulty
}

// TriggeredPayload captures the payload for battle.triggered events.
type TriggeredPayload struct {
	OpponentType string `json:"opponent_type"`
	Context      string `json:"context,omitempty"`
	Difficulty   int    `json:"difficulty"`
}

// ResolvePayload captures the payload for battle.resolve commands.
type ResolvePayload struct {
	RequestID string  `json:"request_id"`
	Outcome   Outcome `json:"outcome"`
}

// ResolvedPayload captures the payload for battle.resolved events.
type ResolvedPayload struct {
	RequestID    string  `json:"request_id"`
	OpponentType string  `json:"opponent_type,omitempty"`
	Difficulty   int     `json:"difficulty"`
	Outcome      Outcome `json:"outcome"`
}

// State captures the replayed pending-battle context.
type State struct {
	// Pending indicates a triggered battle awaits resolution.
	Pending bool
	// RequestID identifies the pending battle request.
	RequestID string
	// OpponentType and Difficulty echo the pending request.
	OpponentType string
	Difficulty   int
	// Fought, Won, Lost count resolved battles this run.
	Fought int
	Won    int
	Lost   int
}

// Decide returns the decision for a battle command against current state.
func Decide(state State, cmd command.Command, now func() time.Time) command.Decision {
	if cmd.Type != CommandTypeResolve {
		return command.Decision{}
	}
	if !state.Pending {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeNotPending,
			Message: "no battle is pending",
		})
	}
	var payload ResolvePayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	requestID := strings.TrimSpace(payload.RequestID)
	if requestID == "" {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeRequestRequired,
			Message: "battle request id is required",
		})
	}
	if requestID != state.RequestID {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeNotPending,
			Message: "battle request is not pending: " + requestID,
		})
	}
	switch payload.Outcome {
	case OutcomeVictory, OutcomeDefeat, OutcomeRetreat:
		// allowed
	default:
		return command.Reject(command.Rejection{
			Code:    rejectionCodeInvalidOutcome,
			Message: fmt.Sprintf("unknown battle outcome: %q", payload.Outcome),
		})
	}
	if now == nil {
		now = time.Now
	}
	stamp := now().UTC()

	resolvedJSON, _ := json.Marshal(ResolvedPayload{
		RequestID:    requestID,
		OpponentType: state.OpponentType,
		Difficulty:   state.Difficulty,
		Outcome:      payload.Outcome,
	})
	resolved := event.Event{
		SessionID:   cmd.SessionID,
		Type:        EventTypeResolved,
		Timestamp:   stamp,
		ActorType:   event.ActorType(cmd.ActorType),
		RequestID:   requestID,
		EntityType:  "battle",
		EntityID:    requestID,
		PayloadJSON: resolvedJSON,
	}
	phaseChanged := run.PhaseChangeEvent(cmd.SessionID, run.PhaseBattle, run.PhaseNarrative, stamp, event.ActorTypeSystem)
	return command.Accept(resolved, phaseChanged)
}

// TriggeredEvent builds a battle.triggered request event.
func TriggeredEvent(sessionID, requestID, opponentType, context string, difficulty int, stamp time.Time) event.Event {
	payloadJSON, _ := json.Marshal(TriggeredPayload{
		OpponentType: opponentType,
		Context:      context,
		Difficulty:   difficulty,
	})
	return event.Event{
		SessionID:   sessionID,
		Type:        EventTypeTriggered,
		Timestamp:   stamp,
		ActorType:   event.ActorTypeSystem,
		RequestID:   requestID,
		EntityType:  "battle",
		EntityID:    requestID,
		PayloadJSON: payloadJSON,
	}
}

// FoldHandledTypes returns the event types handled by the battle fold.
func FoldHandledTypes() []event.Type {
	return []event.Type{EventTypeTriggered, EventTypeResolved}
}

// Fold applies an event to battle state.
func Fold(state State, evt event.Event) (State, error) {
	switch evt.Type {
	case EventTypeTriggered:
		var payload TriggeredPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("battle fold %s: %w", evt.Type, err)
		}
		state.Pending = true
		state.RequestID = evt.RequestID
		state.OpponentType = payload.OpponentType
		state.Difficulty = payload.Difficulty
	case EventTypeResolved:
		var payload ResolvedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("battle fold %s: %w", evt.Type, err)
		}
		state.Pending = false
		state.RequestID = ""
		state.OpponentType = ""
		state.Difficulty = 0
		state.Fought++
		switch payload.Outcome {
		case OutcomeVictory:
			state.Won++
		case OutcomeDefeat:
			state.Lost++
		}
	}
	return state, nil
}

// RegisterCommands registers battle commands with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	return registry.Register(command.Definition{
		Type:            CommandTypeResolve,
		ValidatePayload: validateResolvePayload,
		Phases:          []string{run.PhaseBattle},
	})
}

// RegisterEvents registers battle events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	if err := registry.Register(event.Definition{
		Type:            EventTypeTriggered,
		ValidatePayload: validateTriggeredPayload,
	}); err != nil {
		return err
	}
	return registry.Register(event.Definition{
		Type:            EventTypeResolved,
		ValidatePayload: validateResolvedPayload,
	})
}

// validateResolvePayload ensures resolve payloads match the resolve shape.
func validateResolvePayload(raw json.RawMessage) error {
	var payload ResolvePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return nil
}

// validateTriggeredPayload ensures triggered payloads name an opponent.
func validateTriggeredPayload(raw json.RawMessage) error {
	var payload TriggeredPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.OpponentType == "" {
		return fmt.Errorf("opponent type is required")
	}
	return nil
}

// validateResolvedPayload ensures resolved payloads match the resolved shape.
func validateResolvedPayload(raw json.RawMessage) error {
	var payload ResolvedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return nil
}
