// Package run owns the game-run lifecycle: start, phase transitions, end.
//
// Other slices emit run.phase_changed events as part of their own batches;
// the constructors in this package keep the phase vocabulary in one place.
package run

// Phase names the coarse state the orchestrator dispatches against.
const (
	// PhaseQuestHub is the hub where quests are browsed and accepted.
	PhaseQuestHub = "quest_hub"
	// PhaseNarrative is active narrative graph traversal.
	PhaseNarrative = "narrative"
	// PhaseBattle is a pending battle awaiting resolution.
	PhaseBattle = "battle"
	// PhaseQuestSummary is the post-quest summary screen.
	PhaseQuestSummary = "quest_summary"
	// PhaseEnding is the terminal phase after the final quest.
	PhaseEnding = "ending"
)

// State captures the replayed run lifecycle for command routing.
type State struct {
	// Started indicates whether a run.start command has been accepted.
	Started bool
	// Ended indicates the run reached its ending.
	Ended bool
	// Phase is the current dispatch phase.
	Phase string
	// TotalQuests is the fixed number of quests in this run.
	TotalQuests int
}

// InProgress reports whether commands may still be dispatched.
func (s State) InProgress() bool {
	return s.Started && !s.Ended
}
