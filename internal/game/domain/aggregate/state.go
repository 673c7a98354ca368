// Package aggregate folds the full event log into one composite state.
package aggregate

import (
	"github.com/mverett/driftmark/internal/game/domain/battle"
	"github.com/mverett/driftmark/internal/game/domain/bounty"
	"github.com/mverett/driftmark/internal/game/domain/inventory"
	"github.com/mverett/driftmark/internal/game/domain/narrative"
	"github.com/mverett/driftmark/internal/game/domain/quest"
	"github.com/mverett/driftmark/internal/game/domain/reputation"
	"github.com/mverett/driftmark/internal/game/domain/run"
)

// State captures aggregate session state across all domains.
type State struct {
	Run        run.State
	Quest      quest.FoldState
	Narrative  narrative.State
	Reputation reputation.State
	Bounty     bounty.State
	Inventory  inventory.State
	Battle     battle.State
}
