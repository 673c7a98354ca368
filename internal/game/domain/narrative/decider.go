package narrative

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/mverett/driftmark/internal/game/domain/battle"
	"github.com/mverett/driftmark/internal/game/domain/bounty"
	"github.com/mverett/driftmark/internal/game/domain/command"
	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/inventory"
	"github.com/mverett/driftmark/internal/game/domain/quest"
	"github.com/mverett/driftmark/internal/game/domain/reputation"
	"github.com/mverett/driftmark/internal/game/domain/run"
	apperrors "github.com/mverett/driftmark/internal/platform/errors"
)

const (
	// CommandTypeEnter begins a narrative session on a graph entry point.
	CommandTypeEnter command.Type = "narrative.enter"
	// CommandTypeChoose fires a transition from the current node.
	CommandTypeChoose command.Type = "narrative.choose"

	// EventTypeSessionStarted records a narrative session opening.
	EventTypeSessionStarted event.Type = "narrative.session_started"
	// EventTypeNodeEntered records entry into a node.
	EventTypeNodeEntered event.Type = "narrative.node_entered"
	// EventTypeChoiceMade records an accepted transition.
	EventTypeChoiceMade event.Type = "narrative.choice_made"
	// EventTypeFlagSet records a flag value change.
	EventTypeFlagSet event.Type = "narrative.flag_set"
	// EventTypeEndingReached records arrival at an ending node.
	EventTypeEndingReached event.Type = "narrative.ending_reached"

	rejectionCodeAlreadyActive         = string(apperrors.CodeNarrativeAlreadyActive)
	rejectionCodeNotActive             = string(apperrors.CodeNarrativeNotActive)
	rejectionCodeGraphNotFound         = string(apperrors.CodeNarrativeGraphNotFound)
	rejectionCodeEntryPointUnknown     = string(apperrors.CodeNarrativeEntryPointUnknown)
	rejectionCodeRequirementsNotMet    = string(apperrors.CodeNarrativeRequirementsNotMet)
	rejectionCodeTransitionIDRequired  = string(apperrors.CodeNarrativeTransitionIDRequired)
	rejectionCodeInvalidTransition     = string(apperrors.CodeNarrativeInvalidTransition)
	rejectionCodeNodeNotRevisitable    = string(apperrors.CodeNarrativeNodeNotRevisitable)
	rejectionCodeCurrentNodeUnresolved = string(apperrors.CodeNarrativeCurrentNodeUnresolved)

	// DefaultEntryPoint is used when an enter command names no entry point.
	DefaultEntryPoint = "default"
)

// Env carries the read-only collaborator context a narrative decision needs.
// Counter values are inputs only; the decider computes new totals and emits
// them on the events, it never writes back.
type Env struct {
	Graphs   GraphLookup
	Counters Counters
	// CompletedQuests feeds battle difficulty scaling.
	CompletedQuests int
	// NewRequestID mints correlation ids for trigger request events.
	NewRequestID func() string
}

// Decide returns the decision for a narrative command against current state.
// Emitted events within one decision share a single timestamp.
func Decide(state State, env Env, cmd command.Command, now func() time.Time) command.Decision {
	switch cmd.Type {
	case CommandTypeEnter:
		return decideEnter(state, env, cmd, now)
	case CommandTypeChoose:
		return decideChoose(state, env, cmd, now)
	}
	return command.Decision{}
}

func decideEnter(state State, env Env, cmd command.Command, now func() time.Time) command.Decision {
	if state.Active {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeAlreadyActive,
			Message: "a narrative session is already active",
		})
	}
	var payload EnterPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	graphID := strings.TrimSpace(payload.GraphID)
	if graphID == "" {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeGraphNotFound,
			Message: "graph id is required",
		})
	}
	if env.Graphs == nil {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeGraphNotFound,
			Message: "graph lookup is unavailable",
		})
	}
	graph, ok := env.Graphs.GraphByID(graphID)
	if !ok {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeGraphNotFound,
			Message: "unknown graph: " + graphID,
		})
	}
	if missing := missingFlags(graph.GlobalRequiresFlags, state.Flags); len(missing) > 0 {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeRequirementsNotMet,
			Message: "graph requires flags: " + strings.Join(missing, ", "),
		})
	}
	entryPoint := strings.TrimSpace(payload.EntryPoint)
	if entryPoint == "" {
		entryPoint = DefaultEntryPoint
	}
	entryNodeID, ok := graph.EntryPoints[entryPoint]
	if !ok {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeEntryPointUnknown,
			Message: "unknown entry point: " + entryPoint,
		})
	}
	entryNode, ok := graph.NodeByID(entryNodeID)
	if !ok {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeEntryPointUnknown,
			Message: "entry point targets missing node: " + string(entryNodeID),
		})
	}
	if missing := missingFlags(entryNode.Metadata.RequiresFlags, state.Flags); len(missing) > 0 {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeRequirementsNotMet,
			Message: "node requires flags: " + strings.Join(missing, ", "),
		})
	}

	if now == nil {
		now = time.Now
	}
	stamp := now().UTC()

	startedJSON, _ := json.Marshal(SessionStartedPayload{
		GraphID:    graphID,
		QuestID:    payload.QuestID,
		EntryPoint: entryPoint,
	})
	events := []event.Event{{
		SessionID:   cmd.SessionID,
		Type:        EventTypeSessionStarted,
		Timestamp:   stamp,
		ActorType:   event.ActorType(cmd.ActorType),
		RequestID:   cmd.RequestID,
		EntityType:  "narrative",
		EntityID:    graphID,
		PayloadJSON: startedJSON,
	}}
	events = append(events, nodeEnteredEvent(cmd.SessionID, graphID, entryNode.NodeID, "", "", 1, stamp))
	events = append(events, flagSetEvents(cmd.SessionID, entryNode.Metadata.SetsFlags, stamp)...)
	return command.Accept(events...)
}

func decideChoose(state State, env Env, cmd command.Command, now func() time.Time) command.Decision {
	if !state.Active {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeNotActive,
			Message: "no narrative session is active",
		})
	}
	var payload ChoosePayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	transitionID := TransitionID(strings.TrimSpace(payload.TransitionID))
	if transitionID == "" {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeTransitionIDRequired,
			Message: "transition id is required",
		})
	}
	if env.Graphs == nil {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeGraphNotFound,
			Message: "graph lookup is unavailable",
		})
	}
	graph, ok := env.Graphs.GraphByID(state.GraphID)
	if !ok {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeGraphNotFound,
			Message: "unknown graph: " + state.GraphID,
		})
	}
	current, ok := graph.NodeByID(state.CurrentNodeID)
	if !ok {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeCurrentNodeUnresolved,
			Message: "current node missing from graph: " + string(state.CurrentNodeID),
		})
	}

	transition, eligible := eligibleTransition(current, state, transitionID)
	if !eligible {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeInvalidTransition,
			Message: "transition is not eligible from current node: " + string(transitionID),
		})
	}
	target, ok := graph.NodeByID(transition.TargetNodeID)
	if !ok {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeInvalidTransition,
			Message: "transition targets missing node: " + string(transition.TargetNodeID),
		})
	}
	if state.VisitNumber(target.NodeID) > 0 && !target.Metadata.Revisitable {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeNodeNotRevisitable,
			Message: "node does not permit re-entry: " + string(target.NodeID),
		})
	}
	if missing := missingFlags(target.Metadata.RequiresFlags, state.Flags); len(missing) > 0 {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeRequirementsNotMet,
			Message: "node requires flags: " + strings.Join(missing, ", "),
		})
	}

	if now == nil {
		now = time.Now
	}
	stamp := now().UTC()

	choiceJSON, _ := json.Marshal(ChoiceMadePayload{
		NodeID:       string(current.NodeID),
		TransitionID: string(transitionID),
		TargetNodeID: string(target.NodeID),
		Label:        transition.Presentation.Label,
	})
	events := []event.Event{{
		SessionID:   cmd.SessionID,
		Type:        EventTypeChoiceMade,
		Timestamp:   stamp,
		ActorType:   event.ActorType(cmd.ActorType),
		RequestID:   cmd.RequestID,
		EntityType:  "narrative",
		EntityID:    state.GraphID,
		PayloadJSON: choiceJSON,
	}}

	effectEvents, battleTriggered, flagsFromEffects := applyEffects(state, env, cmd.SessionID, transition.Effects, stamp)
	events = append(events, effectEvents...)

	visitNumber := state.VisitNumber(target.NodeID) + 1
	events = append(events, nodeEnteredEvent(cmd.SessionID, state.GraphID, target.NodeID, string(current.NodeID), string(transitionID), visitNumber, stamp))
	nodeFlags := flagSetEvents(cmd.SessionID, target.Metadata.SetsFlags, stamp)
	events = append(events, nodeFlags...)

	if target.Type == NodeTypeEnding {
		summary := PathSummary{
			NodesVisited: state.NodesVisited + 1,
			UniqueNodes:  uniqueAfterVisit(state, target.NodeID),
			ChoicesMade:  state.ChoicesMade + 1,
			FlagsSet:     state.FlagsSet + flagsFromEffects + len(nodeFlags),
			DurationMS:   stamp.Sub(state.StartedAt).Milliseconds(),
		}
		endingJSON, _ := json.Marshal(EndingReachedPayload{
			GraphID: state.GraphID,
			NodeID:  string(target.NodeID),
			QuestID: state.QuestID,
			Path:    summary,
		})
		events = append(events, event.Event{
			SessionID:   cmd.SessionID,
			Type:        EventTypeEndingReached,
			Timestamp:   stamp,
			ActorType:   event.ActorTypeSystem,
			EntityType:  "narrative",
			EntityID:    state.GraphID,
			PayloadJSON: endingJSON,
		})
		events = append(events, run.PhaseChangeEvent(cmd.SessionID, run.PhaseNarrative, run.PhaseQuestSummary, stamp, event.ActorTypeSystem))
		events = append(events, quest.SummaryPresentedEvent(cmd.SessionID, state.QuestID, stamp))
		return command.Accept(events...)
	}
	if battleTriggered {
		events = append(events, run.PhaseChangeEvent(cmd.SessionID, run.PhaseNarrative, run.PhaseBattle, stamp, event.ActorTypeSystem))
	}
	return command.Accept(events...)
}

// eligibleTransition resolves a transition id against the eligible set.
// Hidden transitions remain selectable; disabled and flag-gated ones do not.
func eligibleTransition(node Node, state State, id TransitionID) (Transition, bool) {
	for _, transition := range node.Transitions {
		if transition.TransitionID != id {
			continue
		}
		if transition.Presentation.Disabled {
			return Transition{}, false
		}
		if len(missingFlags(transition.Presentation.RequiresFlags, state.Flags)) > 0 {
			return Transition{}, false
		}
		return transition, true
	}
	return Transition{}, false
}

// EligibleTransitions returns the transitions currently selectable from a
// node, preserving authored order. Hidden transitions are included; surfacing
// decides presentation, not eligibility.
func EligibleTransitions(node Node, state State) []Transition {
	var eligible []Transition
	for _, transition := range node.Transitions {
		if transition.Presentation.Disabled {
			continue
		}
		if len(missingFlags(transition.Presentation.RequiresFlags, state.Flags)) > 0 {
			continue
		}
		eligible = append(eligible, transition)
	}
	return eligible
}

// applyEffects translates transition effects into events, strictly in list
// order. Counter effects emit the new total; successive effects on the same
// counter compound within the batch.
func applyEffects(state State, env Env, sessionID string, effects []Effect, stamp time.Time) (events []event.Event, battleTriggered bool, flagsSet int) {
	reputationTotals := make(map[string]int, len(env.Counters.Reputation))
	for factionID, value := range env.Counters.Reputation {
		reputationTotals[factionID] = value
	}
	bountyTotal := env.Counters.Bounty

	for _, effect := range effects {
		switch e := effect.(type) {
		case Increment:
			switch e.Counter {
			case CounterReputation:
				reputationTotals[e.FactionID] += e.Amount
				events = append(events, reputation.ChangedEvent(sessionID, e.FactionID, e.Amount, reputationTotals[e.FactionID], e.Reason, stamp))
			case CounterBounty:
				bountyTotal += e.Amount
				events = append(events, bounty.ModifiedEvent(sessionID, e.Amount, bountyTotal, e.Reason, stamp))
			}
		case Decrement:
			switch e.Counter {
			case CounterReputation:
				reputationTotals[e.FactionID] -= e.Amount
				events = append(events, reputation.ChangedEvent(sessionID, e.FactionID, -e.Amount, reputationTotals[e.FactionID], e.Reason, stamp))
			case CounterBounty:
				bountyTotal -= e.Amount
				events = append(events, bounty.ModifiedEvent(sessionID, -e.Amount, bountyTotal, e.Reason, stamp))
			}
		case SetFlag:
			events = append(events, FlagSetEvent(sessionID, e.Name, e.Value, stamp))
			flagsSet++
		case TriggerEvent:
			switch e.Kind {
			case TriggerBattle:
				requestID := ""
				if env.NewRequestID != nil {
					requestID = env.NewRequestID()
				}
				difficulty := battle.ScaledDifficulty(e.Difficulty, env.CompletedQuests, bountyTotal)
				events = append(events, battle.TriggeredEvent(sessionID, requestID, e.OpponentType, e.Context, difficulty, stamp))
				battleTriggered = true
			case TriggerCardGain:
				events = append(events, inventory.CardGainedEvent(sessionID, e.CardID, e.Source, stamp))
			case TriggerCardLoss:
				events = append(events, inventory.CardLostEvent(sessionID, e.CardID, e.Source, stamp))
			}
		}
	}
	return events, battleTriggered, flagsSet
}

// FlagSetEvent builds a narrative.flag_set event.
func FlagSetEvent(sessionID, name string, value bool, stamp time.Time) event.Event {
	payloadJSON, _ := json.Marshal(FlagSetPayload{Name: name, Value: value})
	return event.Event{
		SessionID:   sessionID,
		Type:        EventTypeFlagSet,
		Timestamp:   stamp,
		ActorType:   event.ActorTypeSystem,
		EntityType:  "narrative",
		EntityID:    name,
		PayloadJSON: payloadJSON,
	}
}

func nodeEnteredEvent(sessionID, graphID string, nodeID NodeID, enteredFrom, viaTransitionID string, visitNumber int, stamp time.Time) event.Event {
	payloadJSON, _ := json.Marshal(NodeEnteredPayload{
		GraphID:         graphID,
		NodeID:          string(nodeID),
		EnteredFrom:     enteredFrom,
		ViaTransitionID: viaTransitionID,
		VisitNumber:     visitNumber,
	})
	return event.Event{
		SessionID:   sessionID,
		Type:        EventTypeNodeEntered,
		Timestamp:   stamp,
		ActorType:   event.ActorTypeSystem,
		EntityType:  "narrative",
		EntityID:    string(nodeID),
		PayloadJSON: payloadJSON,
	}
}

// flagSetEvents emits flag_set events for a node's setsFlags in name order,
// keeping batches deterministic across map iteration.
func flagSetEvents(sessionID string, flags map[string]bool, stamp time.Time) []event.Event {
	if len(flags) == 0 {
		return nil
	}
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)
	events := make([]event.Event, 0, len(names))
	for _, name := range names {
		events = append(events, FlagSetEvent(sessionID, name, flags[name], stamp))
	}
	return events
}

// missingFlags returns required flags that are not currently set, in input
// order.
func missingFlags(required []string, flags map[string]bool) []string {
	var missing []string
	for _, name := range required {
		if !flags[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// uniqueAfterVisit counts distinct nodes visited once the target entry lands.
func uniqueAfterVisit(state State, target NodeID) int {
	unique := len(state.VisitCounts)
	if state.VisitCounts[target] == 0 {
		unique++
	}
	return unique
}
