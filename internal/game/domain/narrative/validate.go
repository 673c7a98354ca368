package narrative

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/mverett/driftmark/internal/platform/errors"
)

// Validate checks the structural integrity of a graph. Violations are
// content-authoring defects: they are fatal at load time, before any session
// can traverse the graph.
//
// Checks: graph id present, at least one entry point, every entry point and
// transition target resolves in the node arena, ending nodes carry no
// outgoing transitions, transition ids are unique per node, no transition
// triggers a battle while landing on an ending node, and every node is
// reachable from at least one entry point.
func Validate(graph Graph) error {
	var defects []string

	if strings.TrimSpace(graph.GraphID) == "" {
		defects = append(defects, "graph id is required")
	}
	if len(graph.EntryPoints) == 0 {
		defects = append(defects, "graph has no entry points")
	}
	for name, target := range graph.EntryPoints {
		if _, ok := graph.Nodes[target]; !ok {
			defects = append(defects, fmt.Sprintf("entry point %q targets missing node %q", name, target))
		}
	}

	for nodeID, node := range graph.Nodes {
		if node.NodeID != nodeID {
			defects = append(defects, fmt.Sprintf("node %q declares mismatched id %q", nodeID, node.NodeID))
		}
		if node.Type == NodeTypeEnding && len(node.Transitions) > 0 {
			defects = append(defects, fmt.Sprintf("ending node %q has outgoing transitions", nodeID))
		}
		seen := make(map[TransitionID]struct{}, len(node.Transitions))
		for _, transition := range node.Transitions {
			if _, dup := seen[transition.TransitionID]; dup {
				defects = append(defects, fmt.Sprintf("node %q has duplicate transition id %q", nodeID, transition.TransitionID))
			}
			seen[transition.TransitionID] = struct{}{}
			target, ok := graph.Nodes[transition.TargetNodeID]
			if !ok {
				defects = append(defects, fmt.Sprintf("transition %q on node %q targets missing node %q", transition.TransitionID, nodeID, transition.TargetNodeID))
				continue
			}
			// A battle needs the battle phase to resolve; an ending moves the
			// run to quest_summary, so the battle could never be resolved.
			if target.Type == NodeTypeEnding && triggersBattle(transition) {
				defects = append(defects, fmt.Sprintf("transition %q on node %q triggers a battle into ending node %q", transition.TransitionID, nodeID, transition.TargetNodeID))
			}
		}
	}

	for _, unreached := range unreachableNodes(graph) {
		defects = append(defects, fmt.Sprintf("node %q is unreachable from any entry point", unreached))
	}

	if len(defects) > 0 {
		return apperrors.WithMetadata(
			apperrors.CodeNarrativeGraphInvalid,
			fmt.Sprintf("graph %q failed validation: %s", graph.GraphID, strings.Join(defects, "; ")),
			map[string]string{"graph_id": graph.GraphID},
		)
	}
	return nil
}

// triggersBattle reports whether any transition effect requests a battle.
func triggersBattle(transition Transition) bool {
	for _, effect := range transition.Effects {
		if trigger, ok := effect.(TriggerEvent); ok && trigger.Kind == TriggerBattle {
			return true
		}
	}
	return false
}

// unreachableNodes returns node ids not reachable from any entry point,
// sorted for stable reporting.
func unreachableNodes(graph Graph) []NodeID {
	visited := make(map[NodeID]bool, len(graph.Nodes))
	var walk func(id NodeID)
	walk = func(id NodeID) {
		if visited[id] {
			return
		}
		node, ok := graph.Nodes[id]
		if !ok {
			return
		}
		visited[id] = true
		for _, transition := range node.Transitions {
			walk(transition.TargetNodeID)
		}
	}
	for _, entry := range graph.EntryPoints {
		walk(entry)
	}

	var unreached []NodeID
	for id := range graph.Nodes {
		if !visited[id] {
			unreached = append(unreached, id)
		}
	}
	sort.Slice(unreached, func(i, j int) bool { return unreached[i] < unreached[j] })
	return unreached
}
