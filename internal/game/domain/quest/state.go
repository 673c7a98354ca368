// Package quest owns quest acceptance and completion slices.
package quest

// State is the narrow read model quest deciders validate against.
type State struct {
	// RunInProgress reports whether the run accepts commands at all.
	RunInProgress bool
	// Phase is the current run phase.
	Phase string
	// ActiveQuestID is the quest currently in progress, empty when none.
	ActiveQuestID string
	// ActiveGraphID is the narrative graph backing the active quest.
	ActiveGraphID string
	// CompletedCount is the number of quests completed so far.
	CompletedCount int
	// TotalQuests is the fixed number of quests in the run.
	TotalQuests int
	// SummaryPresented reports whether a quest summary awaits acknowledgement.
	SummaryPresented bool
}

// Info is the minimal content shape quest deciders need. EntryNodeID empty
// means the quest has no entry dilemma authored.
type Info struct {
	QuestID     string
	Title       string
	GraphID     string
	EntryNodeID string
}

// ContentLookup resolves quest content by id. Lookups are total: a missing
// id yields ok=false, never an error.
type ContentLookup interface {
	QuestByID(id string) (Info, bool)
}
