package quest

// AcceptPayload captures the payload for quest.accept commands.
type AcceptPayload struct {
	QuestID string `json:"quest_id"`
}

// AcceptedPayload captures the payload for quest.accepted events.
type AcceptedPayload struct {
	QuestID string `json:"quest_id"`
	Title   string `json:"title,omitempty"`
	GraphID string `json:"graph_id"`
}

// DilemmaPresentedPayload captures the payload for quest.dilemma_presented events.
type DilemmaPresentedPayload struct {
	QuestID string `json:"quest_id"`
	GraphID string `json:"graph_id"`
	NodeID  string `json:"node_id"`
}

// SummaryPresentedPayload captures the payload for quest.summary_presented events.
type SummaryPresentedPayload struct {
	QuestID string `json:"quest_id"`
}

// SummaryAcknowledgedPayload captures the payload for quest.summary_acknowledged events.
type SummaryAcknowledgedPayload struct {
	QuestID string `json:"quest_id"`
}

// CompletedPayload captures the payload for quest.completed events.
type CompletedPayload struct {
	QuestID string `json:"quest_id"`
	// CompletedCount is the total completed after this quest, included so
	// downstream folds replay the counter without recomputing it.
	CompletedCount int `json:"completed_count"`
}
