package projection

import (
	"encoding/json"
	"sort"

	"github.com/mverett/driftmark/internal/game/domain/battle"
	"github.com/mverett/driftmark/internal/game/domain/bounty"
	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/inventory"
	"github.com/mverett/driftmark/internal/game/domain/narrative"
	"github.com/mverett/driftmark/internal/game/domain/quest"
	"github.com/mverett/driftmark/internal/game/domain/reputation"
)

// QuestSummary is the post-quest report folded from one quest's event span.
type QuestSummary struct {
	QuestID string
	Title   string
	GraphID string
	// Completed reports whether the span reached quest.completed.
	Completed bool
	// ReputationChanges holds per-faction net change, ordered descending by
	// absolute net change with ties keeping encounter order. Factions with a
	// net change of zero are dropped.
	ReputationChanges []FactionChange
	// BountyNet is the net bounty change over the span.
	BountyNet int
	// CardsGained and CardsLost list card ids in event order, repeats kept.
	CardsGained []string
	CardsLost   []string
	// BattlesFought, BattlesWon, BattlesLost count resolved battles.
	BattlesFought int
	BattlesWon    int
	BattlesLost   int
	// ChoicesMade counts accepted narrative choices.
	ChoicesMade int
	// EndingNodeID is the narrative ending node, empty when none reached.
	EndingNodeID string
	// Path is the traversal report from the ending event, zero when none.
	Path narrative.PathSummary
}

// FactionChange is a faction's net reputation change over a quest span.
type FactionChange struct {
	FactionID string
	Net       int
	// FinalValue is the last new-value total observed for the faction.
	FinalValue int
}

// BuildQuestSummary folds a quest summary for the given quest id. The scan
// anchors at the matching quest.accepted event and stops after the quest's
// completed event; a log without the anchor yields the zero summary.
func BuildQuestSummary(events []event.Event, questID string) QuestSummary {
	summary := QuestSummary{}
	if questID == "" {
		return summary
	}

	netByFaction := make(map[string]int)
	finalByFaction := make(map[string]int)
	var encounterOrder []string
	inSpan := false

	for _, evt := range events {
		if !inSpan {
			if evt.Type != quest.EventTypeAccepted {
				continue
			}
			var payload quest.AcceptedPayload
			if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
				continue
			}
			if payload.QuestID != questID {
				continue
			}
			inSpan = true
			summary.QuestID = payload.QuestID
			summary.Title = payload.Title
			summary.GraphID = payload.GraphID
			continue
		}

		switch evt.Type {
		case reputation.EventTypeChanged:
			var payload reputation.ChangedPayload
			if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
				continue
			}
			if _, seen := netByFaction[payload.FactionID]; !seen {
				encounterOrder = append(encounterOrder, payload.FactionID)
			}
			netByFaction[payload.FactionID] += payload.Delta
			finalByFaction[payload.FactionID] = payload.NewValue
		case bounty.EventTypeModified:
			var payload bounty.ModifiedPayload
			if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
				continue
			}
			summary.BountyNet += payload.Delta
		case inventory.EventTypeCardGained:
			var payload inventory.CardGainedPayload
			if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
				continue
			}
			summary.CardsGained = append(summary.CardsGained, payload.CardID)
		case inventory.EventTypeCardLost:
			var payload inventory.CardLostPayload
			if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
				continue
			}
			summary.CardsLost = append(summary.CardsLost, payload.CardID)
		case battle.EventTypeResolved:
			var payload battle.ResolvedPayload
			if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
				continue
			}
			summary.BattlesFought++
			switch payload.Outcome {
			case battle.OutcomeVictory:
				summary.BattlesWon++
			case battle.OutcomeDefeat:
				summary.BattlesLost++
			}
		case narrative.EventTypeChoiceMade:
			summary.ChoicesMade++
		case narrative.EventTypeEndingReached:
			var payload narrative.EndingReachedPayload
			if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
				continue
			}
			summary.EndingNodeID = payload.NodeID
			summary.Path = payload.Path
		case quest.EventTypeCompleted:
			var payload quest.CompletedPayload
			if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
				continue
			}
			if payload.QuestID == questID {
				summary.Completed = true
				summary.ReputationChanges = orderedChanges(encounterOrder, netByFaction, finalByFaction)
				return summary
			}
		}
	}

	summary.ReputationChanges = orderedChanges(encounterOrder, netByFaction, finalByFaction)
	return summary
}

// orderedChanges applies the summary ordering rule: descending absolute net
// change, ties keep encounter order, zero net dropped.
func orderedChanges(encounterOrder []string, net, final map[string]int) []FactionChange {
	var changes []FactionChange
	for _, factionID := range encounterOrder {
		if net[factionID] == 0 {
			continue
		}
		changes = append(changes, FactionChange{
			FactionID:  factionID,
			Net:        net[factionID],
			FinalValue: final[factionID],
		})
	}
	sort.SliceStable(changes, func(i, j int) bool {
		return abs(changes[i].Net) > abs(changes[j].Net)
	})
	return changes
}

func abs(value int) int {
	if value < 0 {
		return -value
	}
	return value
}
