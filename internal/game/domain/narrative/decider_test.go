package narrative

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mverett/driftmark/internal/game/domain/battle"
	"github.com/mverett/driftmark/internal/game/domain/bounty"
	"github.com/mverett/driftmark/internal/game/domain/command"
	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/quest"
	"github.com/mverett/driftmark/internal/game/domain/reputation"
	"github.com/mverett/driftmark/internal/game/domain/run"
)

type graphMap map[string]Graph

func (g graphMap) GraphByID(id string) (Graph, bool) {
	graph, ok := g[id]
	return graph, ok
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

// testGraph builds a small graph: start -> middle -> ending, with a disabled
// transition, a flag-gated transition, a non-revisitable loop back, and a
// battle branch through a follow-up choice node.
func testGraph() Graph {
	return Graph{
		GraphID: "wreck-of-the-calder",
		Version: 1,
		EntryPoints: map[string]NodeID{
			"default": "start",
		},
		Nodes: map[NodeID]Node{
			"start": {
				NodeID: "start",
				Type:   NodeTypeChoice,
				Metadata: NodeMetadata{
					SetsFlags: map[string]bool{"boarded": true},
				},
				Transitions: []Transition{
					{
						TransitionID: "t-salvage",
						TargetNodeID: "middle",
						Presentation: Presentation{Label: "Strip the hull"},
						Effects: []Effect{
							Increment{Counter: CounterBounty, Amount: 10, Reason: "unlicensed salvage"},
							Decrement{Counter: CounterReputation, FactionID: "ironveil", Amount: 5, Reason: "claim jumping"},
						},
					},
					{
						TransitionID: "t-locked",
						TargetNodeID: "middle",
						Presentation: Presentation{Label: "Use the override", RequiresFlags: []string{"has_override"}},
					},
					{
						TransitionID: "t-disabled",
						TargetNodeID: "middle",
						Presentation: Presentation{Label: "Broken airlock", Disabled: true},
					},
				},
			},
			"middle": {
				NodeID: "middle",
				Type:   NodeTypeChoice,
				Transitions: []Transition{
					{
						TransitionID: "t-back",
						TargetNodeID: "start",
						Presentation: Presentation{Label: "Return to the airlock"},
					},
					{
						TransitionID: "t-finish",
						TargetNodeID: "end",
						Presentation: Presentation{Label: "Leave with the cargo"},
					},
					{
						TransitionID: "t-fight",
						TargetNodeID: "skirmish",
						Presentation: Presentation{Label: "Fight the patrol"},
						Effects: []Effect{
							TriggerEvent{Kind: TriggerBattle, OpponentType: "ironveil_patrol", Context: "boarding", Difficulty: 4},
						},
					},
				},
			},
			"skirmish": {
				NodeID: "skirmish",
				Type:   NodeTypeChoice,
				Transitions: []Transition{
					{
						TransitionID: "t-press-on",
						TargetNodeID: "end",
						Presentation: Presentation{Label: "Press on"},
					},
				},
			},
			"end": {
				NodeID: "end",
				Type:   NodeTypeEnding,
			},
		},
	}
}

func testEnv(graphs graphMap) Env {
	return Env{
		Graphs: graphs,
		Counters: Counters{
			Reputation: map[string]int{"ironveil": -10},
			Bounty:     20,
		},
		NewRequestID: func() string { return "req-1" },
	}
}

func activeState() State {
	return State{
		Active:        true,
		GraphID:       "wreck-of-the-calder",
		QuestID:       "calder-salvage",
		CurrentNodeID: "start",
		Flags:         map[string]bool{"boarded": true},
		VisitCounts:   map[NodeID]int{"start": 1},
		NodesVisited:  1,
		StartedAt:     fixedNow().Add(-2 * time.Minute),
	}
}

func TestDecideEnterEmitsSessionStartedAndEntryNode(t *testing.T) {
	env := testEnv(graphMap{"wreck-of-the-calder": testGraph()})
	payload, _ := json.Marshal(EnterPayload{GraphID: "wreck-of-the-calder", QuestID: "calder-salvage"})
	decision := Decide(State{}, env, command.Command{
		SessionID:   "session-1",
		Type:        CommandTypeEnter,
		ActorType:   command.ActorTypePlayer,
		PayloadJSON: payload,
	}, fixedNow)
	if len(decision.Rejections) != 0 {
		t.Fatalf("rejections = %v, want none", decision.Rejections)
	}
	types := eventTypes(decision.Events)
	want := []event.Type{EventTypeSessionStarted, EventTypeNodeEntered, EventTypeFlagSet}
	if len(types) != len(want) {
		t.Fatalf("event types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("event types = %v, want %v", types, want)
		}
	}
	var entered NodeEnteredPayload
	if err := json.Unmarshal(decision.Events[1].PayloadJSON, &entered); err != nil {
		t.Fatalf("unmarshal node entered: %v", err)
	}
	if entered.NodeID != "start" {
		t.Fatalf("node id = %s, want start", entered.NodeID)
	}
	if entered.VisitNumber != 1 {
		t.Fatalf("visit number = %d, want 1", entered.VisitNumber)
	}
	if entered.EnteredFrom != "" {
		t.Fatalf("entered from = %q, want empty", entered.EnteredFrom)
	}
}

func TestDecideEnterRejectsWhenAlreadyActive(t *testing.T) {
	env := testEnv(graphMap{"wreck-of-the-calder": testGraph()})
	payload, _ := json.Marshal(EnterPayload{GraphID: "wreck-of-the-calder"})
	decision := Decide(activeState(), env, command.Command{
		SessionID:   "session-1",
		Type:        CommandTypeEnter,
		PayloadJSON: payload,
	}, fixedNow)
	if len(decision.Rejections) != 1 {
		t.Fatalf("rejections = %v, want one", decision.Rejections)
	}
	if decision.Rejections[0].Code != "NARRATIVE_ALREADY_ACTIVE" {
		t.Fatalf("code = %s, want NARRATIVE_ALREADY_ACTIVE", decision.Rejections[0].Code)
	}
}

func TestDecideEnterRejectsUnknownGraph(t *testing.T) {
	env := testEnv(graphMap{})
	payload, _ := json.Marshal(EnterPayload{GraphID: "missing"})
	decision := Decide(State{}, env, command.Command{
		SessionID:   "session-1",
		Type:        CommandTypeEnter,
		PayloadJSON: payload,
	}, fixedNow)
	if len(decision.Rejections) != 1 || decision.Rejections[0].Code != "NARRATIVE_GRAPH_NOT_FOUND" {
		t.Fatalf("rejections = %v, want NARRATIVE_GRAPH_NOT_FOUND", decision.Rejections)
	}
}

func TestDecideChooseEmitsEffectsInOrderWithNewTotals(t *testing.T) {
	env := testEnv(graphMap{"wreck-of-the-calder": testGraph()})
	payload, _ := json.Marshal(ChoosePayload{TransitionID: "t-salvage"})
	decision := Decide(activeState(), env, command.Command{
		SessionID:   "session-1",
		Type:        CommandTypeChoose,
		PayloadJSON: payload,
	}, fixedNow)
	if len(decision.Rejections) != 0 {
		t.Fatalf("rejections = %v, want none", decision.Rejections)
	}
	types := eventTypes(decision.Events)
	want := []event.Type{EventTypeChoiceMade, bounty.EventTypeModified, reputation.EventTypeChanged, EventTypeNodeEntered}
	if len(types) != len(want) {
		t.Fatalf("event types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("event types = %v, want %v", types, want)
		}
	}

	var bountyPayload bounty.ModifiedPayload
	if err := json.Unmarshal(decision.Events[1].PayloadJSON, &bountyPayload); err != nil {
		t.Fatalf("unmarshal bounty payload: %v", err)
	}
	if bountyPayload.NewValue != 30 {
		t.Fatalf("bounty new value = %d, want 30", bountyPayload.NewValue)
	}
	var repPayload reputation.ChangedPayload
	if err := json.Unmarshal(decision.Events[2].PayloadJSON, &repPayload); err != nil {
		t.Fatalf("unmarshal reputation payload: %v", err)
	}
	if repPayload.Delta != -5 {
		t.Fatalf("reputation delta = %d, want -5", repPayload.Delta)
	}
	if repPayload.NewValue != -15 {
		t.Fatalf("reputation new value = %d, want -15", repPayload.NewValue)
	}
}

func TestDecideChooseRejectsUnknownTransition(t *testing.T) {
	env := testEnv(graphMap{"wreck-of-the-calder": testGraph()})
	payload, _ := json.Marshal(ChoosePayload{TransitionID: "t-nope"})
	decision := Decide(activeState(), env, command.Command{
		SessionID:   "session-1",
		Type:        CommandTypeChoose,
		PayloadJSON: payload,
	}, fixedNow)
	if len(decision.Rejections) != 1 || decision.Rejections[0].Code != "NARRATIVE_INVALID_TRANSITION" {
		t.Fatalf("rejections = %v, want NARRATIVE_INVALID_TRANSITION", decision.Rejections)
	}
}

func TestDecideChooseRejectsDisabledTransition(t *testing.T) {
	env := testEnv(graphMap{"wreck-of-the-calder": testGraph()})
	payload, _ := json.Marshal(ChoosePayload{TransitionID: "t-disabled"})
	decision := Decide(activeState(), env, command.Command{
		SessionID:   "session-1",
		Type:        CommandTypeChoose,
		PayloadJSON: payload,
	}, fixedNow)
	if len(decision.Rejections) != 1 || decision.Rejections[0].Code != "NARRATIVE_INVALID_TRANSITION" {
		t.Fatalf("rejections = %v, want NARRATIVE_INVALID_TRANSITION", decision.Rejections)
	}
}

func TestDecideChooseRejectsFlagGatedTransition(t *testing.T) {
	env := testEnv(graphMap{"wreck-of-the-calder": testGraph()})
	payload, _ := json.Marshal(ChoosePayload{TransitionID: "t-locked"})
	decision := Decide(activeState(), env, command.Command{
		SessionID:   "session-1",
		Type:        CommandTypeChoose,
		PayloadJSON: payload,
	}, fixedNow)
	if len(decision.Rejections) != 1 || decision.Rejections[0].Code != "NARRATIVE_INVALID_TRANSITION" {
		t.Fatalf("rejections = %v, want NARRATIVE_INVALID_TRANSITION", decision.Rejections)
	}
}

func TestDecideChooseRejectsReentryIntoNonRevisitableNode(t *testing.T) {
	env := testEnv(graphMap{"wreck-of-the-calder": testGraph()})
	state := activeState()
	state.CurrentNodeID = "middle"
	state.VisitCounts = map[NodeID]int{"start": 1, "middle": 1}
	payload, _ := json.Marshal(ChoosePayload{TransitionID: "t-back"})
	decision := Decide(state, env, command.Command{
		SessionID:   "session-1",
		Type:        CommandTypeChoose,
		PayloadJSON: payload,
	}, fixedNow)
	if len(decision.Rejections) != 1 || decision.Rejections[0].Code != "NARRATIVE_NODE_NOT_REVISITABLE" {
		t.Fatalf("rejections = %v, want NARRATIVE_NODE_NOT_REVISITABLE", decision.Rejections)
	}
}

func TestDecideChooseEndingEmitsPathSummaryAndPhaseChange(t *testing.T) {
	env := testEnv(graphMap{"wreck-of-the-calder": testGraph()})
	state := activeState()
	state.CurrentNodeID = "middle"
	state.VisitCounts = map[NodeID]int{"start": 1, "middle": 1}
	state.NodesVisited = 2
	state.ChoicesMade = 1
	payload, _ := json.Marshal(ChoosePayload{TransitionID: "t-finish"})
	decision := Decide(state, env, command.Command{
		SessionID:   "session-1",
		Type:        CommandTypeChoose,
		PayloadJSON: payload,
	}, fixedNow)
	if len(decision.Rejections) != 0 {
		t.Fatalf("rejections = %v, want none", decision.Rejections)
	}
	types := eventTypes(decision.Events)
	want := []event.Type{EventTypeChoiceMade, EventTypeNodeEntered, EventTypeEndingReached, run.EventTypePhaseChanged, quest.EventTypeSummaryPresented}
	if len(types) != len(want) {
		t.Fatalf("event types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("event types = %v, want %v", types, want)
		}
	}

	var ending EndingReachedPayload
	if err := json.Unmarshal(decision.Events[2].PayloadJSON, &ending); err != nil {
		t.Fatalf("unmarshal ending payload: %v", err)
	}
	if ending.NodeID != "end" {
		t.Fatalf("ending node = %s, want end", ending.NodeID)
	}
	if ending.Path.NodesVisited != 3 {
		t.Fatalf("nodes visited = %d, want 3", ending.Path.NodesVisited)
	}
	if ending.Path.UniqueNodes != 3 {
		t.Fatalf("unique nodes = %d, want 3", ending.Path.UniqueNodes)
	}
	if ending.Path.ChoicesMade != 2 {
		t.Fatalf("choices made = %d, want 2", ending.Path.ChoicesMade)
	}
	if ending.Path.DurationMS != (2 * time.Minute).Milliseconds() {
		t.Fatalf("duration = %d, want %d", ending.Path.DurationMS, (2 * time.Minute).Milliseconds())
	}

	var phase run.PhaseChangedPayload
	if err := json.Unmarshal(decision.Events[3].PayloadJSON, &phase); err != nil {
		t.Fatalf("unmarshal phase payload: %v", err)
	}
	if phase.From != run.PhaseNarrative || phase.To != run.PhaseQuestSummary {
		t.Fatalf("phase change = %s->%s, want narrative->quest_summary", phase.From, phase.To)
	}
}

func TestDecideChooseBattleTriggerAddsPhaseChange(t *testing.T) {
	env := testEnv(graphMap{"wreck-of-the-calder": testGraph()})
	state := activeState()
	state.CurrentNodeID = "middle"
	state.VisitCounts = map[NodeID]int{"start": 1, "middle": 1}
	payload, _ := json.Marshal(ChoosePayload{TransitionID: "t-fight"})
	decision := Decide(state, env, command.Command{
		SessionID:   "session-1",
		Type:        CommandTypeChoose,
		PayloadJSON: payload,
	}, fixedNow)
	if len(decision.Rejections) != 0 {
		t.Fatalf("rejections = %v, want none", decision.Rejections)
	}
	var sawTrigger, sawPhase bool
	for _, evt := range decision.Events {
		switch evt.Type {
		case battle.EventTypeTriggered:
			sawTrigger = true
			if evt.RequestID != "req-1" {
				t.Fatalf("request id = %s, want req-1", evt.RequestID)
			}
		case run.EventTypePhaseChanged:
			var phase run.PhaseChangedPayload
			if err := json.Unmarshal(evt.PayloadJSON, &phase); err != nil {
				t.Fatalf("unmarshal phase payload: %v", err)
			}
			if phase.To != run.PhaseBattle {
				t.Fatalf("phase to = %s, want battle", phase.To)
			}
			sawPhase = true
		}
	}
	if !sawTrigger || !sawPhase {
		t.Fatalf("trigger=%v phase=%v, want both", sawTrigger, sawPhase)
	}
}

func TestDecideEventsShareOneTimestamp(t *testing.T) {
	env := testEnv(graphMap{"wreck-of-the-calder": testGraph()})
	payload, _ := json.Marshal(ChoosePayload{TransitionID: "t-salvage"})
	decision := Decide(activeState(), env, command.Command{
		SessionID:   "session-1",
		Type:        CommandTypeChoose,
		PayloadJSON: payload,
	}, fixedNow)
	for _, evt := range decision.Events {
		if !evt.Timestamp.Equal(fixedNow()) {
			t.Fatalf("timestamp = %v, want %v", evt.Timestamp, fixedNow())
		}
	}
}

func eventTypes(events []event.Event) []event.Type {
	types := make([]event.Type, 0, len(events))
	for _, evt := range events {
		types = append(types, evt.Type)
	}
	return types
}
