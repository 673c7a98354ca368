package run

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mverett/driftmark/internal/game/domain/command"
	"github.com/mverett/driftmark/internal/game/domain/event"
)

// RegisterCommands registers run commands with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	return registry.Register(command.Definition{
		Type:            CommandTypeStart,
		ValidatePayload: validateStartPayload,
	})
}

// RegisterEvents registers run events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	if err := registry.Register(event.Definition{
		Type:            EventTypeStarted,
		ValidatePayload: validateStartPayload,
	}); err != nil {
		return err
	}
	if err := registry.Register(event.Definition{
		Type:            EventTypePhaseChanged,
		ValidatePayload: validatePhaseChangedPayload,
	}); err != nil {
		return err
	}
	return registry.Register(event.Definition{
		Type:            EventTypeEnded,
		ValidatePayload: validateEndedPayload,
	})
}

// validateStartPayload ensures start payloads match the run start shape.
func validateStartPayload(raw json.RawMessage) error {
	var payload StartPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return nil
}

// validatePhaseChangedPayload ensures phase payloads name a known target phase.
func validatePhaseChangedPayload(raw json.RawMessage) error {
	var payload PhaseChangedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	switch payload.To {
	case PhaseQuestHub, PhaseNarrative, PhaseBattle, PhaseQuestSummary, PhaseEnding:
		return nil
	default:
		return fmt.Errorf("unknown target phase: %q", payload.To)
	}
}

// validateEndedPayload ensures ended payloads match the run ended shape.
func validateEndedPayload(raw json.RawMessage) error {
	var payload EndedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return nil
}
