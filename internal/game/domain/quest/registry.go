package quest

import (
	"encoding/json"
	"errors"

	"github.com/mverett/driftmark/internal/game/domain/command"
	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/run"
)

// RegisterCommands registers quest commands with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	if err := registry.Register(command.Definition{
		Type:            CommandTypeAccept,
		ValidatePayload: validateAcceptPayload,
		Phases:          []string{run.PhaseQuestHub},
	}); err != nil {
		return err
	}
	return registry.Register(command.Definition{
		Type:   CommandTypeSummaryAcknowledge,
		Phases: []string{run.PhaseQuestSummary},
	})
}

// RegisterEvents registers quest events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	if err := registry.Register(event.Definition{
		Type:            EventTypeAccepted,
		ValidatePayload: validateAcceptedPayload,
	}); err != nil {
		return err
	}
	if err := registry.Register(event.Definition{
		Type:            EventTypeDilemmaPresented,
		ValidatePayload: validateDilemmaPresentedPayload,
	}); err != nil {
		return err
	}
	if err := registry.Register(event.Definition{
		Type: EventTypeSummaryPresented,
	}); err != nil {
		return err
	}
	if err := registry.Register(event.Definition{
		Type: EventTypeSummaryAcknowledged,
	}); err != nil {
		return err
	}
	return registry.Register(event.Definition{
		Type:            EventTypeCompleted,
		ValidatePayload: validateCompletedPayload,
	})
}

// validateAcceptPayload ensures accept payloads match the accept shape.
func validateAcceptPayload(raw json.RawMessage) error {
	var payload AcceptPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return nil
}

// validateAcceptedPayload ensures accepted payloads match the accepted shape.
func validateAcceptedPayload(raw json.RawMessage) error {
	var payload AcceptedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return nil
}

// validateDilemmaPresentedPayload ensures dilemma payloads match the presented shape.
func validateDilemmaPresentedPayload(raw json.RawMessage) error {
	var payload DilemmaPresentedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return nil
}

// validateCompletedPayload ensures completed payloads match the completed shape.
func validateCompletedPayload(raw json.RawMessage) error {
	var payload CompletedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return nil
}
