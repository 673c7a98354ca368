// Package narrative owns the branching narrative graph and its traversal
// slices.
//
// A graph is an arena of nodes addressed by stable ids; transitions reference
// target ids rather than owning nodes, so cyclic story structures carry no
// ownership cycles. Traversal is event-sourced: the engine validates a choice
// against replayed state and emits events, it never mutates the graph.
package narrative

// NodeID addresses a node within a graph.
type NodeID string

// TransitionID addresses a transition within a node.
type TransitionID string

// NodeType classifies narrative nodes.
type NodeType string

const (
	// NodeTypeChoice presents transitions for the player to pick from.
	NodeTypeChoice NodeType = "choice"
	// NodeTypeEnding terminates the narrative session; no outgoing transitions.
	NodeTypeEnding NodeType = "ending"
)

// Severity hints at how consequential a transition is.
type Severity string

const (
	// SeverityMinor marks low-stakes transitions.
	SeverityMinor Severity = "minor"
	// SeverityModerate marks transitions with lasting consequences.
	SeverityModerate Severity = "moderate"
	// SeverityMajor marks transitions that reshape the run.
	SeverityMajor Severity = "major"
)

// Graph is a versioned narrative graph.
type Graph struct {
	GraphID string
	Version int
	Nodes   map[NodeID]Node
	// EntryPoints maps entry point names to starting nodes.
	EntryPoints map[string]NodeID
	// GlobalRequiresFlags gates entry into the graph as a whole.
	GlobalRequiresFlags []string
}

// Node is a single beat in the narrative graph.
type Node struct {
	NodeID      NodeID
	Type        NodeType
	Content     Content
	Transitions []Transition
	Metadata    NodeMetadata
}

// Content holds the authored text for a node.
type Content struct {
	Text     string
	Dialogue []DialogueLine
}

// DialogueLine is one speaker's line within a node.
type DialogueLine struct {
	Speaker string
	Line    string
}

// NodeMetadata carries traversal constraints for a node.
type NodeMetadata struct {
	// Revisitable permits entering the node more than once per session.
	Revisitable bool
	// RequiresFlags must all be set for the node to be enterable.
	RequiresFlags []string
	// SetsFlags are applied on node entry, before transition effects.
	SetsFlags map[string]bool
}

// Transition is a guarded, effectful edge between nodes.
type Transition struct {
	TransitionID TransitionID
	TargetNodeID NodeID
	Type         string
	Presentation Presentation
	// Effects are applied strictly in list order when the transition fires.
	Effects []Effect
}

// Presentation controls how a transition is surfaced to the player.
type Presentation struct {
	Label string
	// Hidden transitions are not surfaced but remain selectable.
	Hidden bool
	// Disabled transitions are excluded from the eligible set entirely.
	Disabled bool
	// RequiresFlags must all be set for the transition to be eligible.
	RequiresFlags []string
	PreviewHint   string
	Severity      Severity
}

// NodeByID returns a node from the arena.
func (g Graph) NodeByID(id NodeID) (Node, bool) {
	node, ok := g.Nodes[id]
	return node, ok
}

// GraphLookup resolves narrative graphs by id. Lookups are total: a missing
// id yields ok=false, never an error.
type GraphLookup interface {
	GraphByID(id string) (Graph, bool)
}
