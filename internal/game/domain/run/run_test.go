package run

import (
	"testing"
	"time"

	"github.com/mverett/driftmark/internal/game/domain/command"
	"github.com/mverett/driftmark/internal/game/domain/event"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
}

func TestDecideStartEmitsStartedAndPhase(t *testing.T) {
	decision := Decide(State{}, command.Command{
		SessionID:   "session-1",
		Type:        CommandTypeStart,
		ActorType:   command.ActorTypePlayer,
		PayloadJSON: []byte(`{"total_quests":3}`),
	}, fixedNow)

	if len(decision.Rejections) > 0 {
		t.Fatalf("rejections = %v, want none", decision.Rejections)
	}
	if len(decision.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(decision.Events))
	}
	if decision.Events[0].Type != EventTypeStarted {
		t.Fatalf("first event = %s, want %s", decision.Events[0].Type, EventTypeStarted)
	}
	if decision.Events[1].Type != EventTypePhaseChanged {
		t.Fatalf("second event = %s, want %s", decision.Events[1].Type, EventTypePhaseChanged)
	}
	if decision.Events[0].Timestamp != decision.Events[1].Timestamp {
		t.Fatal("events from one decision must share a timestamp")
	}
}

func TestDecideStartRejectsSecondStart(t *testing.T) {
	decision := Decide(State{Started: true}, command.Command{
		SessionID:   "session-1",
		Type:        CommandTypeStart,
		PayloadJSON: []byte(`{"total_quests":3}`),
	}, fixedNow)
	if len(decision.Rejections) != 1 || decision.Rejections[0].Code != "RUN_ALREADY_STARTED" {
		t.Fatalf("rejections = %v, want RUN_ALREADY_STARTED", decision.Rejections)
	}
}

func TestDecideStartRequiresPositiveTotal(t *testing.T) {
	decision := Decide(State{}, command.Command{
		SessionID:   "session-1",
		Type:        CommandTypeStart,
		PayloadJSON: []byte(`{"total_quests":0}`),
	}, fixedNow)
	if len(decision.Rejections) != 1 || decision.Rejections[0].Code != "RUN_TOTAL_QUESTS_INVALID" {
		t.Fatalf("rejections = %v, want RUN_TOTAL_QUESTS_INVALID", decision.Rejections)
	}
}

func TestFoldRunLifecycle(t *testing.T) {
	state := State{}
	state, err := Fold(state, event.Event{Type: EventTypeStarted, PayloadJSON: []byte(`{"total_quests":3}`)})
	if err != nil {
		t.Fatalf("Fold(started) error = %v", err)
	}
	if !state.Started || state.TotalQuests != 3 {
		t.Fatalf("state = %+v, want started with 3 quests", state)
	}
	if !state.InProgress() {
		t.Fatal("expected run in progress")
	}

	state, err = Fold(state, event.Event{Type: EventTypePhaseChanged, PayloadJSON: []byte(`{"from":"","to":"quest_hub"}`)})
	if err != nil {
		t.Fatalf("Fold(phase_changed) error = %v", err)
	}
	if state.Phase != PhaseQuestHub {
		t.Fatalf("phase = %s, want %s", state.Phase, PhaseQuestHub)
	}

	state, err = Fold(state, event.Event{Type: EventTypeEnded, PayloadJSON: []byte(`{"reason":"all_quests_completed","quests_completed":3}`)})
	if err != nil {
		t.Fatalf("Fold(ended) error = %v", err)
	}
	if !state.Ended || state.InProgress() {
		t.Fatalf("state = %+v, want ended run", state)
	}
}

func TestFoldRejectsMalformedPayload(t *testing.T) {
	if _, err := Fold(State{}, event.Event{Type: EventTypeStarted, PayloadJSON: []byte("{")}); err == nil {
		t.Fatal("expected fold error for malformed payload")
	}
}
