package projection

import (
	"sort"

	"github.com/mverett/driftmark/internal/game/domain/aggregate"
	"github.com/mverett/driftmark/internal/game/domain/event"
)

// RunOverview is the top-level session view.
type RunOverview struct {
	Started bool
	Ended   bool
	Phase   string
	// ActiveQuestID is empty between quests.
	ActiveQuestID   string
	ActiveGraphID   string
	CompletedQuests int
	TotalQuests     int
	BountyValue     int
	// Cards lists held card ids sorted, with copies repeated.
	Cards []string
	// CurrentNodeID is the narrative position, empty outside narrative.
	CurrentNodeID string
	BattlePending bool
}

// BuildRunOverview folds the run overview from an event span.
func BuildRunOverview(events []event.Event) RunOverview {
	var folder aggregate.Folder
	state := aggregate.State{}
	for _, evt := range events {
		next, err := folder.Fold(state, evt)
		if err != nil {
			// Total projection: a malformed event leaves state unchanged.
			continue
		}
		state = next
	}
	return OverviewFromState(state)
}

// OverviewFromState derives the overview from already folded state.
func OverviewFromState(state aggregate.State) RunOverview {
	overview := RunOverview{
		Started:         state.Run.Started,
		Ended:           state.Run.Ended,
		Phase:           state.Run.Phase,
		ActiveQuestID:   state.Quest.ActiveQuestID,
		ActiveGraphID:   state.Quest.ActiveGraphID,
		CompletedQuests: state.Quest.CompletedCount,
		TotalQuests:     state.Run.TotalQuests,
		BountyValue:     state.Bounty.Value,
		BattlePending:   state.Battle.Pending,
	}
	if state.Narrative.Active {
		overview.CurrentNodeID = string(state.Narrative.CurrentNodeID)
	}
	for cardID, count := range state.Inventory.Cards {
		for i := 0; i < count; i++ {
			overview.Cards = append(overview.Cards, cardID)
		}
	}
	sort.Strings(overview.Cards)
	return overview
}
