// Package engine orchestrates command execution: it validates intent,
// replays session state, routes commands to slice deciders, and appends
// accepted events to the journal.
//
// The engine is the runtime seam between the pure domain slices and I/O.
// Slices never see the journal; the engine never makes domain decisions.
package engine

import (
	"fmt"

	"github.com/mverett/driftmark/internal/game/domain/aggregate"
	"github.com/mverett/driftmark/internal/game/domain/battle"
	"github.com/mverett/driftmark/internal/game/domain/bounty"
	"github.com/mverett/driftmark/internal/game/domain/command"
	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/inventory"
	"github.com/mverett/driftmark/internal/game/domain/narrative"
	"github.com/mverett/driftmark/internal/game/domain/quest"
	"github.com/mverett/driftmark/internal/game/domain/reputation"
	"github.com/mverett/driftmark/internal/game/domain/run"
)

// Registries bundles the command and event registries.
type Registries struct {
	Commands *command.Registry
	Events   *event.Registry
}

// BuildRegistries registers every slice's commands and events.
//
// This is the shared bootstrap point where all command/event contracts become
// a single validated registry consumed by the handler and projections.
func BuildRegistries() (Registries, error) {
	commandRegistry := command.NewRegistry()
	eventRegistry := event.NewRegistry()

	if err := run.RegisterCommands(commandRegistry); err != nil {
		return Registries{}, err
	}
	if err := quest.RegisterCommands(commandRegistry); err != nil {
		return Registries{}, err
	}
	if err := narrative.RegisterCommands(commandRegistry); err != nil {
		return Registries{}, err
	}
	if err := battle.RegisterCommands(commandRegistry); err != nil {
		return Registries{}, err
	}

	if err := run.RegisterEvents(eventRegistry); err != nil {
		return Registries{}, err
	}
	if err := quest.RegisterEvents(eventRegistry); err != nil {
		return Registries{}, err
	}
	if err := narrative.RegisterEvents(eventRegistry); err != nil {
		return Registries{}, err
	}
	if err := battle.RegisterEvents(eventRegistry); err != nil {
		return Registries{}, err
	}
	if err := reputation.RegisterEvents(eventRegistry); err != nil {
		return Registries{}, err
	}
	if err := bounty.RegisterEvents(eventRegistry); err != nil {
		return Registries{}, err
	}
	if err := inventory.RegisterEvents(eventRegistry); err != nil {
		return Registries{}, err
	}

	if err := validateFoldDispatch(eventRegistry); err != nil {
		return Registries{}, err
	}
	return Registries{Commands: commandRegistry, Events: eventRegistry}, nil
}

// validateFoldDispatch verifies every registered event type reaches a fold
// function at runtime, so no event can be appended and then silently dropped
// during replay.
func validateFoldDispatch(eventRegistry *event.Registry) error {
	var folder aggregate.Folder
	dispatched := make(map[event.Type]struct{})
	for _, t := range folder.FoldDispatchedTypes() {
		dispatched[t] = struct{}{}
	}
	for _, definition := range eventRegistry.ListDefinitions() {
		if _, ok := dispatched[definition.Type]; !ok {
			return fmt.Errorf("event type has no fold dispatch: %s", definition.Type)
		}
	}
	return nil
}
