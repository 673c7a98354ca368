package quest

import (
	"testing"
	"time"

	"github.com/mverett/driftmark/internal/game/domain/command"
	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/run"
)

type questMap map[string]Info

func (m questMap) QuestByID(id string) (Info, bool) {
	info, ok := m[id]
	return info, ok
}

func testContent() questMap {
	return questMap{
		"calder-salvage": {
			QuestID:     "calder-salvage",
			Title:       "Wreck of the Calder",
			GraphID:     "wreck-of-the-calder",
			EntryNodeID: "start",
		},
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
}

func hubState() State {
	return State{RunInProgress: true, Phase: run.PhaseQuestHub, TotalQuests: 3}
}

func acceptCommand(questID string) command.Command {
	return command.Command{
		SessionID:   "session-1",
		Type:        CommandTypeAccept,
		ActorType:   command.ActorTypePlayer,
		PayloadJSON: []byte(`{"quest_id":"` + questID + `"}`),
	}
}

func TestDecideAcceptEmitsExactBatch(t *testing.T) {
	decision := Decide(hubState(), acceptCommand("calder-salvage"), testContent(), fixedNow)
	if len(decision.Rejections) > 0 {
		t.Fatalf("rejections = %v, want none", decision.Rejections)
	}
	want := []event.Type{EventTypeAccepted, run.EventTypePhaseChanged, EventTypeDilemmaPresented}
	if len(decision.Events) != len(want) {
		t.Fatalf("events = %d, want %d", len(decision.Events), len(want))
	}
	for i, evt := range decision.Events {
		if evt.Type != want[i] {
			t.Fatalf("event %d = %s, want %s", i, evt.Type, want[i])
		}
		if !evt.Timestamp.Equal(decision.Events[0].Timestamp) {
			t.Fatal("events from one decision must share a timestamp")
		}
	}
	if decision.Events[0].EntityID != "calder-salvage" {
		t.Fatalf("entity id = %s, want calder-salvage", decision.Events[0].EntityID)
	}
	if decision.Events[2].EntityID != "start" {
		t.Fatalf("dilemma entity id = %s, want start", decision.Events[2].EntityID)
	}
}

func TestDecideAcceptRejections(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		questID string
		code    string
	}{
		{"run not in progress", State{Phase: run.PhaseQuestHub}, "calder-salvage", "RUN_NOT_IN_PROGRESS"},
		{"wrong phase", State{RunInProgress: true, Phase: run.PhaseNarrative}, "calder-salvage", "RUN_PHASE_MISMATCH"},
		{"quest already active", func() State {
			s := hubState()
			s.ActiveQuestID = "other-quest"
			return s
		}(), "calder-salvage", "QUEST_ALREADY_ACTIVE"},
		{"quest id required", hubState(), "", "QUEST_ID_REQUIRED"},
		{"quest not found", hubState(), "no-such-quest", "QUEST_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide(tt.state, acceptCommand(tt.questID), testContent(), fixedNow)
			if len(decision.Rejections) != 1 || decision.Rejections[0].Code != tt.code {
				t.Fatalf("rejections = %v, want %s", decision.Rejections, tt.code)
			}
		})
	}
}

func TestDecideAcceptRejectsQuestWithoutEntryDilemma(t *testing.T) {
	content := questMap{
		"hollow-quest": {QuestID: "hollow-quest", GraphID: "g"},
	}
	decision := Decide(hubState(), acceptCommand("hollow-quest"), content, fixedNow)
	if len(decision.Rejections) != 1 || decision.Rejections[0].Code != "QUEST_NO_ENTRY_DILEMMA" {
		t.Fatalf("rejections = %v, want QUEST_NO_ENTRY_DILEMMA", decision.Rejections)
	}
}

func TestDecideAcknowledgeMidRun(t *testing.T) {
	state := State{
		RunInProgress:    true,
		Phase:            run.PhaseQuestSummary,
		ActiveQuestID:    "calder-salvage",
		CompletedCount:   0,
		TotalQuests:      3,
		SummaryPresented: true,
	}
	decision := Decide(state, command.Command{
		SessionID: "session-1",
		Type:      CommandTypeSummaryAcknowledge,
	}, testContent(), fixedNow)
	if len(decision.Rejections) > 0 {
		t.Fatalf("rejections = %v, want none", decision.Rejections)
	}
	want := []event.Type{EventTypeSummaryAcknowledged, EventTypeCompleted, run.EventTypePhaseChanged}
	if len(decision.Events) != len(want) {
		t.Fatalf("events = %d, want %d", len(decision.Events), len(want))
	}
	for i, evt := range decision.Events {
		if evt.Type != want[i] {
			t.Fatalf("event %d = %s, want %s", i, evt.Type, want[i])
		}
	}
}

func TestDecideAcknowledgeFinalQuestEndsRun(t *testing.T) {
	state := State{
		RunInProgress:    true,
		Phase:            run.PhaseQuestSummary,
		ActiveQuestID:    "calder-salvage",
		CompletedCount:   2,
		TotalQuests:      3,
		SummaryPresented: true,
	}
	decision := Decide(state, command.Command{
		SessionID: "session-1",
		Type:      CommandTypeSummaryAcknowledge,
	}, testContent(), fixedNow)
	if len(decision.Rejections) > 0 {
		t.Fatalf("rejections = %v, want none", decision.Rejections)
	}
	want := []event.Type{EventTypeSummaryAcknowledged, EventTypeCompleted, run.EventTypeEnded, run.EventTypePhaseChanged}
	if len(decision.Events) != len(want) {
		t.Fatalf("events = %d, want %d", len(decision.Events), len(want))
	}
	for i, evt := range decision.Events {
		if evt.Type != want[i] {
			t.Fatalf("event %d = %s, want %s", i, evt.Type, want[i])
		}
	}
}

func TestDecideAcknowledgeOutsideSummaryRejected(t *testing.T) {
	decision := Decide(hubState(), command.Command{
		SessionID: "session-1",
		Type:      CommandTypeSummaryAcknowledge,
	}, testContent(), fixedNow)
	if len(decision.Rejections) != 1 || decision.Rejections[0].Code != "RUN_PHASE_MISMATCH" {
		t.Fatalf("rejections = %v, want RUN_PHASE_MISMATCH", decision.Rejections)
	}
}

func TestFoldQuestLifecycle(t *testing.T) {
	state := FoldState{}
	state, err := Fold(state, event.Event{Type: EventTypeAccepted, PayloadJSON: []byte(`{"quest_id":"calder-salvage","graph_id":"wreck-of-the-calder"}`)})
	if err != nil {
		t.Fatalf("Fold(accepted) error = %v", err)
	}
	if state.ActiveQuestID != "calder-salvage" || state.ActiveGraphID != "wreck-of-the-calder" {
		t.Fatalf("state = %+v, want active quest", state)
	}

	state, err = Fold(state, event.Event{Type: EventTypeSummaryPresented, PayloadJSON: []byte(`{"quest_id":"calder-salvage"}`)})
	if err != nil {
		t.Fatalf("Fold(summary_presented) error = %v", err)
	}
	if !state.SummaryPresented {
		t.Fatal("expected presented summary")
	}

	state, err = Fold(state, event.Event{Type: EventTypeSummaryAcknowledged, PayloadJSON: []byte(`{"quest_id":"calder-salvage"}`)})
	if err != nil {
		t.Fatalf("Fold(summary_acknowledged) error = %v", err)
	}
	if state.SummaryPresented {
		t.Fatal("expected acknowledged summary")
	}

	state, err = Fold(state, event.Event{Type: EventTypeCompleted, PayloadJSON: []byte(`{"quest_id":"calder-salvage","completed_count":1}`)})
	if err != nil {
		t.Fatalf("Fold(completed) error = %v", err)
	}
	if state.ActiveQuestID != "" || state.ActiveGraphID != "" {
		t.Fatalf("state = %+v, want cleared quest", state)
	}
	if state.CompletedCount != 1 {
		t.Fatalf("completed count = %d, want 1", state.CompletedCount)
	}
}
