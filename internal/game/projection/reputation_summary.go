package projection

import (
	"encoding/json"
	"sort"

	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/reputation"
)

// FactionStanding is one faction's current reputation view.
type FactionStanding struct {
	FactionID string
	Value     int
	Band      reputation.Band
	// Net is the total change over the folded span.
	Net int
}

// ReputationSummary is the current per-faction standing view.
type ReputationSummary struct {
	// Standings is ordered descending by absolute net change, ties keeping
	// encounter order. Factions with zero net change are dropped.
	Standings []FactionStanding
}

// BuildReputationSummary folds faction standings from an event span.
func BuildReputationSummary(events []event.Event) ReputationSummary {
	net := make(map[string]int)
	value := make(map[string]int)
	var encounterOrder []string

	for _, evt := range events {
		if evt.Type != reputation.EventTypeChanged {
			continue
		}
		var payload reputation.ChangedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			continue
		}
		if _, seen := net[payload.FactionID]; !seen {
			encounterOrder = append(encounterOrder, payload.FactionID)
		}
		net[payload.FactionID] += payload.Delta
		value[payload.FactionID] = payload.NewValue
	}

	var standings []FactionStanding
	for _, factionID := range encounterOrder {
		if net[factionID] == 0 {
			continue
		}
		standings = append(standings, FactionStanding{
			FactionID: factionID,
			Value:     value[factionID],
			Band:      reputation.BandFor(value[factionID]),
			Net:       net[factionID],
		})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return abs(standings[i].Net) > abs(standings[j].Net)
	})
	return ReputationSummary{Standings: standings}
}
