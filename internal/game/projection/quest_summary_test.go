package projection

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/quest"
	"github.com/mverett/driftmark/internal/game/domain/reputation"
)

func stamp() time.Time {
	return time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
}

func reputationEvent(t *testing.T, factionID string, delta, newValue int) event.Event {
	t.Helper()
	payload, _ := json.Marshal(reputation.ChangedPayload{FactionID: factionID, Delta: delta, NewValue: newValue})
	return event.Event{Type: reputation.EventTypeChanged, Timestamp: stamp(), PayloadJSON: payload}
}

func questSpan(t *testing.T, questID string, middle ...event.Event) []event.Event {
	t.Helper()
	accepted, _ := json.Marshal(quest.AcceptedPayload{QuestID: questID, Title: "Wreck of the Calder", GraphID: "wreck-of-the-calder"})
	completed, _ := json.Marshal(quest.CompletedPayload{QuestID: questID, CompletedCount: 1})
	events := []event.Event{{Type: quest.EventTypeAccepted, Timestamp: stamp(), PayloadJSON: accepted}}
	events = append(events, middle...)
	events = append(events, event.Event{Type: quest.EventTypeCompleted, Timestamp: stamp(), PayloadJSON: completed})
	return events
}

func TestBuildQuestSummaryOrdersReputationByAbsoluteNet(t *testing.T) {
	events := questSpan(t, "calder-salvage",
		reputationEvent(t, "ironveil", -30, -30),
		reputationEvent(t, "meridian", 5, 5),
		reputationEvent(t, "ashfall", 25, 25),
	)
	summary := BuildQuestSummary(events, "calder-salvage")
	if !summary.Completed {
		t.Fatal("expected completed summary")
	}
	got := make([]string, 0, len(summary.ReputationChanges))
	for _, change := range summary.ReputationChanges {
		got = append(got, change.FactionID)
	}
	want := []string{"ironveil", "ashfall", "meridian"}
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestBuildQuestSummaryDropsZeroNetFactions(t *testing.T) {
	events := questSpan(t, "calder-salvage",
		reputationEvent(t, "ironveil", -10, -10),
		reputationEvent(t, "ironveil", 10, 0),
		reputationEvent(t, "ashfall", 5, 5),
	)
	summary := BuildQuestSummary(events, "calder-salvage")
	if len(summary.ReputationChanges) != 1 {
		t.Fatalf("changes = %v, want only ashfall", summary.ReputationChanges)
	}
	if summary.ReputationChanges[0].FactionID != "ashfall" {
		t.Fatalf("faction = %s, want ashfall", summary.ReputationChanges[0].FactionID)
	}
}

func TestBuildQuestSummaryTiesKeepEncounterOrder(t *testing.T) {
	events := questSpan(t, "calder-salvage",
		reputationEvent(t, "meridian", 10, 10),
		reputationEvent(t, "ironveil", -10, -10),
	)
	summary := BuildQuestSummary(events, "calder-salvage")
	if len(summary.ReputationChanges) != 2 {
		t.Fatalf("changes = %v, want two", summary.ReputationChanges)
	}
	if summary.ReputationChanges[0].FactionID != "meridian" {
		t.Fatalf("first = %s, want meridian", summary.ReputationChanges[0].FactionID)
	}
}

func TestBuildQuestSummaryAnchorsAtMatchingQuest(t *testing.T) {
	otherAccepted, _ := json.Marshal(quest.AcceptedPayload{QuestID: "other-quest", GraphID: "g"})
	otherCompleted, _ := json.Marshal(quest.CompletedPayload{QuestID: "other-quest", CompletedCount: 1})
	events := []event.Event{
		{Type: quest.EventTypeAccepted, Timestamp: stamp(), PayloadJSON: otherAccepted},
		reputationEvent(t, "meridian", 50, 50),
		{Type: quest.EventTypeCompleted, Timestamp: stamp(), PayloadJSON: otherCompleted},
	}
	events = append(events, questSpan(t, "calder-salvage", reputationEvent(t, "ironveil", -5, -5))...)

	summary := BuildQuestSummary(events, "calder-salvage")
	if len(summary.ReputationChanges) != 1 {
		t.Fatalf("changes = %v, want only ironveil", summary.ReputationChanges)
	}
	if summary.ReputationChanges[0].FactionID != "ironveil" {
		t.Fatalf("faction = %s, want ironveil", summary.ReputationChanges[0].FactionID)
	}
}

func TestBuildQuestSummaryMissingAnchorYieldsZeroValue(t *testing.T) {
	summary := BuildQuestSummary(nil, "calder-salvage")
	if summary.QuestID != "" || summary.Completed {
		t.Fatalf("summary = %+v, want zero value", summary)
	}
}
