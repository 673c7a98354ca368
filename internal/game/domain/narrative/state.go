package narrative

import "time"

// State captures the replayed traversal context for one narrative session.
// Visit counts and flags are session-local: the fold resets them when a new
// narrative session starts.
type State struct {
	// Active indicates a narrative session is in progress.
	Active bool
	// GraphID is the graph being traversed.
	GraphID string
	// QuestID is the quest that opened this session.
	QuestID string
	// CurrentNodeID is the node the session is positioned at.
	CurrentNodeID NodeID
	// Flags maps flag names to their last-set value.
	Flags map[string]bool
	// VisitCounts tracks entries per node id within the session.
	VisitCounts map[NodeID]int
	// NodesVisited counts node entries including revisits.
	NodesVisited int
	// ChoicesMade counts accepted choice transitions.
	ChoicesMade int
	// FlagsSet counts flag_set events observed this session.
	FlagsSet int
	// StartedAt is the session start timestamp.
	StartedAt time.Time
}

// FlagSet reports whether a flag is currently set.
func (s State) FlagSet(name string) bool {
	return s.Flags[name]
}

// VisitNumber returns how many times a node has been entered this session.
func (s State) VisitNumber(id NodeID) int {
	return s.VisitCounts[id]
}

// Counters is the slice of external numeric state the decider needs to
// compute new-value effect events. It is read-only input, folded elsewhere.
type Counters struct {
	// Reputation maps faction ids to current standing.
	Reputation map[string]int
	// Bounty is the current bounty value.
	Bounty int
}

// PathSummary is the derived report attached to narrative.ending_reached.
// Every field is computed from the session's own event sub-sequence.
type PathSummary struct {
	NodesVisited int   `json:"nodes_visited"`
	UniqueNodes  int   `json:"unique_nodes"`
	ChoicesMade  int   `json:"choices_made"`
	FlagsSet     int   `json:"flags_set"`
	DurationMS   int64 `json:"duration_ms"`
}
