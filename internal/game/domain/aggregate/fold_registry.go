package aggregate

import (
	"github.com/mverett/driftmark/internal/game/domain/battle"
	"github.com/mverett/driftmark/internal/game/domain/bounty"
	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/inventory"
	"github.com/mverett/driftmark/internal/game/domain/narrative"
	"github.com/mverett/driftmark/internal/game/domain/quest"
	"github.com/mverett/driftmark/internal/game/domain/reputation"
	"github.com/mverett/driftmark/internal/game/domain/run"
)

// foldEntry describes how a set of event types maps to a fold function that
// updates one slice of aggregate state.
type foldEntry struct {
	// types returns the event types handled by this fold entry.
	types func() []event.Type
	// fold applies a single event to a sub-state and writes the result back
	// into the aggregate state.
	fold func(state *State, evt event.Event) error
}

// foldEntries returns the declarative fold dispatch table for all domains.
// Adding a new domain requires only adding an entry here.
func foldEntries() []foldEntry {
	return []foldEntry{
		{
			types: run.FoldHandledTypes,
			fold: func(state *State, evt event.Event) error {
				updated, err := run.Fold(state.Run, evt)
				if err != nil {
					return err
				}
				state.Run = updated
				return nil
			},
		},
		{
			types: quest.FoldHandledTypes,
			fold: func(state *State, evt event.Event) error {
				updated, err := quest.Fold(state.Quest, evt)
				if err != nil {
					return err
				}
				state.Quest = updated
				return nil
			},
		},
		{
			types: narrative.FoldHandledTypes,
			fold: func(state *State, evt event.Event) error {
				updated, err := narrative.Fold(state.Narrative, evt)
				if err != nil {
					return err
				}
				state.Narrative = updated
				return nil
			},
		},
		{
			types: reputation.FoldHandledTypes,
			fold: func(state *State, evt event.Event) error {
				updated, err := reputation.Fold(state.Reputation, evt)
				if err != nil {
					return err
				}
				state.Reputation = updated
				return nil
			},
		},
		{
			types: bounty.FoldHandledTypes,
			fold: func(state *State, evt event.Event) error {
				updated, err := bounty.Fold(state.Bounty, evt)
				if err != nil {
					return err
				}
				state.Bounty = updated
				return nil
			},
		},
		{
			types: inventory.FoldHandledTypes,
			fold: func(state *State, evt event.Event) error {
				updated, err := inventory.Fold(state.Inventory, evt)
				if err != nil {
					return err
				}
				state.Inventory = updated
				return nil
			},
		},
		{
			types: battle.FoldHandledTypes,
			fold: func(state *State, evt event.Event) error {
				updated, err := battle.Fold(state.Battle, evt)
				if err != nil {
					return err
				}
				state.Battle = updated
				return nil
			},
		},
	}
}
