package projection

import (
	"encoding/json"
	"testing"

	"github.com/mverett/driftmark/internal/game/domain/battle"
	"github.com/mverett/driftmark/internal/game/domain/event"
)

func triggeredEvent(t *testing.T, requestID, opponent string, difficulty int) event.Event {
	t.Helper()
	payload, _ := json.Marshal(battle.TriggeredPayload{OpponentType: opponent, Difficulty: difficulty})
	return event.Event{Type: battle.EventTypeTriggered, Timestamp: stamp(), RequestID: requestID, PayloadJSON: payload}
}

func resolvedEvent(t *testing.T, requestID string, outcome battle.Outcome) event.Event {
	t.Helper()
	payload, _ := json.Marshal(battle.ResolvedPayload{RequestID: requestID, Outcome: outcome})
	return event.Event{Type: battle.EventTypeResolved, Timestamp: stamp(), RequestID: requestID, PayloadJSON: payload}
}

func TestBuildBattleRecordCountsOutcomes(t *testing.T) {
	events := []event.Event{
		triggeredEvent(t, "req-1", "ironveil-enforcer", 4),
		resolvedEvent(t, "req-1", battle.OutcomeVictory),
		triggeredEvent(t, "req-2", "drift-raider", 5),
		resolvedEvent(t, "req-2", battle.OutcomeDefeat),
		triggeredEvent(t, "req-3", "drift-raider", 6),
		resolvedEvent(t, "req-3", battle.OutcomeRetreat),
	}
	record := BuildBattleRecord(events)
	if record.Fought != 3 || record.Won != 1 || record.Lost != 1 {
		t.Fatalf("counts = %d/%d/%d, want 3/1/1", record.Fought, record.Won, record.Lost)
	}
	if record.Pending {
		t.Fatal("expected no pending battle")
	}
}

func TestBuildBattleRecordFillsOpponentFromTrigger(t *testing.T) {
	events := []event.Event{
		triggeredEvent(t, "req-1", "ironveil-enforcer", 4),
		resolvedEvent(t, "req-1", battle.OutcomeVictory),
	}
	record := BuildBattleRecord(events)
	if len(record.Entries) != 1 {
		t.Fatalf("entries = %v, want one", record.Entries)
	}
	entry := record.Entries[0]
	if entry.OpponentType != "ironveil-enforcer" || entry.Difficulty != 4 {
		t.Fatalf("entry = %+v, want opponent from trigger", entry)
	}
}

func TestBuildBattleRecordReportsPendingTrigger(t *testing.T) {
	events := []event.Event{
		triggeredEvent(t, "req-1", "drift-raider", 3),
	}
	record := BuildBattleRecord(events)
	if !record.Pending {
		t.Fatal("expected pending battle")
	}
	if record.Fought != 0 {
		t.Fatalf("fought = %d, want 0", record.Fought)
	}
}
