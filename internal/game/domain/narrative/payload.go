package narrative

// EnterPayload captures the payload for narrative.enter commands.
type EnterPayload struct {
	GraphID    string `json:"graph_id"`
	QuestID    string `json:"quest_id"`
	EntryPoint string `json:"entry_point"`
}

// ChoosePayload captures the payload for narrative.choose commands.
type ChoosePayload struct {
	TransitionID string `json:"transition_id"`
}

// SessionStartedPayload captures the payload for narrative.session_started events.
type SessionStartedPayload struct {
	GraphID    string `json:"graph_id"`
	QuestID    string `json:"quest_id"`
	EntryPoint string `json:"entry_point"`
}

// NodeEnteredPayload captures the payload for narrative.node_entered events.
type NodeEnteredPayload struct {
	GraphID string `json:"graph_id"`
	NodeID  string `json:"node_id"`
	// EnteredFrom is empty for the starting node.
	EnteredFrom string `json:"entered_from,omitempty"`
	// ViaTransitionID is empty for the starting node.
	ViaTransitionID string `json:"via_transition_id,omitempty"`
	VisitNumber     int    `json:"visit_number"`
}

// ChoiceMadePayload captures the payload for narrative.choice_made events.
type ChoiceMadePayload struct {
	NodeID       string `json:"node_id"`
	TransitionID string `json:"transition_id"`
	TargetNodeID string `json:"target_node_id"`
	Label        string `json:"label,omitempty"`
}

// FlagSetPayload captures the payload for narrative.flag_set events.
type FlagSetPayload struct {
	Name  string `json:"name"`
	Value bool   `json:"value"`
}

// EndingReachedPayload captures the payload for narrative.ending_reached events.
type EndingReachedPayload struct {
	GraphID string      `json:"graph_id"`
	NodeID  string      `json:"node_id"`
	QuestID string      `json:"quest_id"`
	Path    PathSummary `json:"path"`
}
