package projection

import (
	"encoding/json"
	"time"

	"github.com/mverett/driftmark/internal/game/domain/battle"
	"github.com/mverett/driftmark/internal/game/domain/event"
)

// BattleEntry is one resolved battle in the record.
type BattleEntry struct {
	RequestID    string
	OpponentType string
	Difficulty   int
	Outcome      battle.Outcome
	ResolvedAt   time.Time
}

// BattleRecord is the chronological view of resolved battles.
type BattleRecord struct {
	Entries []BattleEntry
	Fought  int
	Won     int
	Lost    int
	// Pending reports an unresolved triggered battle at the end of the span.
	Pending bool
}

// BuildBattleRecord folds the battle record from an event span.
func BuildBattleRecord(events []event.Event) BattleRecord {
	record := BattleRecord{}
	pendingOpponents := make(map[string]battle.TriggeredPayload)

	for _, evt := range events {
		switch evt.Type {
		case battle.EventTypeTriggered:
			var payload battle.TriggeredPayload
			if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
				continue
			}
			pendingOpponents[evt.RequestID] = payload
			record.Pending = true
		case battle.EventTypeResolved:
			var payload battle.ResolvedPayload
			if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
				continue
			}
			entry := BattleEntry{
				RequestID:    payload.RequestID,
				OpponentType: payload.OpponentType,
				Difficulty:   payload.Difficulty,
				Outcome:      payload.Outcome,
				ResolvedAt:   evt.Timestamp,
			}
			if entry.OpponentType == "" {
				if trigger, ok := pendingOpponents[payload.RequestID]; ok {
					entry.OpponentType = trigger.OpponentType
					entry.Difficulty = trigger.Difficulty
				}
			}
			delete(pendingOpponents, payload.RequestID)
			record.Pending = len(pendingOpponents) > 0
			record.Entries = append(record.Entries, entry)
			record.Fought++
			switch payload.Outcome {
			case battle.OutcomeVictory:
				record.Won++
			case battle.OutcomeDefeat:
				record.Lost++
			}
		}
	}
	return record
}
