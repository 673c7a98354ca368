package aggregate

import (
	"reflect"
	"testing"
	"time"

	"github.com/mverett/driftmark/internal/game/domain/bounty"
	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/narrative"
	"github.com/mverett/driftmark/internal/game/domain/quest"
	"github.com/mverett/driftmark/internal/game/domain/reputation"
	"github.com/mverett/driftmark/internal/game/domain/run"
)

func TestFoldRoutesEventsToDomainSlices(t *testing.T) {
	var folder Folder
	stamp := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)
	events := []event.Event{
		{Type: run.EventTypeStarted, Timestamp: stamp, PayloadJSON: []byte(`{"total_quests":3}`)},
		{Type: quest.EventTypeAccepted, Timestamp: stamp, PayloadJSON: []byte(`{"quest_id":"calder-salvage","graph_id":"wreck-of-the-calder"}`)},
		{Type: reputation.EventTypeChanged, Timestamp: stamp, PayloadJSON: []byte(`{"faction_id":"ironveil","delta":-5,"new_value":-5}`)},
		{Type: bounty.EventTypeModified, Timestamp: stamp, PayloadJSON: []byte(`{"delta":10,"new_value":10}`)},
	}
	state, err := folder.FoldAll(State{}, events)
	if err != nil {
		t.Fatalf("fold all: %v", err)
	}
	if !state.Run.Started {
		t.Fatal("expected run started")
	}
	if state.Run.TotalQuests != 3 {
		t.Fatalf("total quests = %d, want 3", state.Run.TotalQuests)
	}
	if state.Quest.ActiveQuestID != "calder-salvage" {
		t.Fatalf("active quest = %s, want calder-salvage", state.Quest.ActiveQuestID)
	}
	if state.Reputation.Values["ironveil"] != -5 {
		t.Fatalf("ironveil reputation = %d, want -5", state.Reputation.Values["ironveil"])
	}
	if state.Bounty.Value != 10 {
		t.Fatalf("bounty = %d, want 10", state.Bounty.Value)
	}
}

func TestFoldIgnoresUnregisteredEventType(t *testing.T) {
	var folder Folder
	state, err := folder.Fold(State{}, event.Event{Type: event.Type("unknown.event")})
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	if !reflect.DeepEqual(state, State{}) {
		t.Fatalf("state = %+v, want zero", state)
	}
}

func TestFoldDispatchedTypesCoverAllSlices(t *testing.T) {
	var folder Folder
	dispatched := make(map[event.Type]struct{})
	for _, eventType := range folder.FoldDispatchedTypes() {
		dispatched[eventType] = struct{}{}
	}
	expected := [][]event.Type{
		run.FoldHandledTypes(),
		quest.FoldHandledTypes(),
		narrative.FoldHandledTypes(),
		reputation.FoldHandledTypes(),
		bounty.FoldHandledTypes(),
	}
	for _, group := range expected {
		for _, eventType := range group {
			if _, ok := dispatched[eventType]; !ok {
				t.Fatalf("event type %s is not dispatched", eventType)
			}
		}
	}
}
