package narrative

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mverett/driftmark/internal/game/domain/command"
	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/run"
)

// RegisterCommands registers narrative commands with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	if err := registry.Register(command.Definition{
		Type:            CommandTypeEnter,
		ValidatePayload: validateEnterPayload,
		Phases:          []string{run.PhaseNarrative},
	}); err != nil {
		return err
	}
	return registry.Register(command.Definition{
		Type:            CommandTypeChoose,
		ValidatePayload: validateChoosePayload,
		Phases:          []string{run.PhaseNarrative},
	})
}

// RegisterEvents registers narrative events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	if err := registry.Register(event.Definition{
		Type:            EventTypeSessionStarted,
		ValidatePayload: validateSessionStartedPayload,
	}); err != nil {
		return err
	}
	if err := registry.Register(event.Definition{
		Type:            EventTypeNodeEntered,
		ValidatePayload: validateNodeEnteredPayload,
	}); err != nil {
		return err
	}
	if err := registry.Register(event.Definition{
		Type:            EventTypeChoiceMade,
		ValidatePayload: validateChoiceMadePayload,
	}); err != nil {
		return err
	}
	if err := registry.Register(event.Definition{
		Type:            EventTypeFlagSet,
		ValidatePayload: validateFlagSetPayload,
	}); err != nil {
		return err
	}
	return registry.Register(event.Definition{
		Type:            EventTypeEndingReached,
		ValidatePayload: validateEndingReachedPayload,
	})
}

// validateEnterPayload ensures enter payloads name a graph.
func validateEnterPayload(raw json.RawMessage) error {
	var payload EnterPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.GraphID == "" {
		return fmt.Errorf("graph id is required")
	}
	return nil
}

// validateChoosePayload ensures choose payloads name a transition.
func validateChoosePayload(raw json.RawMessage) error {
	var payload ChoosePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.TransitionID == "" {
		return fmt.Errorf("transition id is required")
	}
	return nil
}

// validateSessionStartedPayload ensures started payloads match the started shape.
func validateSessionStartedPayload(raw json.RawMessage) error {
	var payload SessionStartedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.GraphID == "" {
		return fmt.Errorf("graph id is required")
	}
	return nil
}

// validateNodeEnteredPayload ensures entered payloads name a node.
func validateNodeEnteredPayload(raw json.RawMessage) error {
	var payload NodeEnteredPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.NodeID == "" {
		return fmt.Errorf("node id is required")
	}
	return nil
}

// validateChoiceMadePayload ensures choice payloads match the choice shape.
func validateChoiceMadePayload(raw json.RawMessage) error {
	var payload ChoiceMadePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.TransitionID == "" {
		return fmt.Errorf("transition id is required")
	}
	return nil
}

// validateFlagSetPayload ensures flag payloads name a flag.
func validateFlagSetPayload(raw json.RawMessage) error {
	var payload FlagSetPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.Name == "" {
		return fmt.Errorf("flag name is required")
	}
	return nil
}

// validateEndingReachedPayload ensures ending payloads match the ending shape.
func validateEndingReachedPayload(raw json.RawMessage) error {
	var payload EndingReachedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.NodeID == "" {
		return fmt.Errorf("node id is required")
	}
	return nil
}
