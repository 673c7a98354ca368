package run

// StartPayload captures the payload for run.start commands and run.started events.
type StartPayload struct {
	TotalQuests int `json:"total_quests"`
}

// PhaseChangedPayload captures the payload for run.phase_changed events.
type PhaseChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// EndedPayload captures the payload for run.ended events.
type EndedPayload struct {
	Reason          string `json:"reason"`
	QuestsCompleted int    `json:"quests_completed"`
}
