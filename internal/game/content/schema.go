// Package content loads authored game content from YAML documents and
// serves it through total lookups.
//
// Content is static input to the engine: loaded once at startup, validated
// eagerly, and never mutated afterwards. Authoring errors surface as load
// failures, not as mid-session surprises.
package content

// questDoc is the YAML shape for a quest definition.
type questDoc struct {
	QuestID     string `yaml:"quest_id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	GraphID     string `yaml:"graph_id"`
	EntryNodeID string `yaml:"entry_node_id,omitempty"`
}

// cardDoc is the YAML shape for a card definition.
type cardDoc struct {
	CardID      string `yaml:"card_id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Rarity      string `yaml:"rarity,omitempty"`
}

// factionDoc is the YAML shape for a faction definition.
type factionDoc struct {
	FactionID   string `yaml:"faction_id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// graphDoc is the YAML shape for a narrative graph.
type graphDoc struct {
	GraphID             string            `yaml:"graph_id"`
	Version             int               `yaml:"version"`
	EntryPoints         map[string]string `yaml:"entry_points"`
	GlobalRequiresFlags []string          `yaml:"global_requires_flags,omitempty"`
	Nodes               []nodeDoc         `yaml:"nodes"`
}

// nodeDoc is the YAML shape for one narrative node.
type nodeDoc struct {
	NodeID        string            `yaml:"node_id"`
	Type          string            `yaml:"type"`
	Text          string            `yaml:"text,omitempty"`
	Dialogue      []dialogueDoc     `yaml:"dialogue,omitempty"`
	Revisitable   bool              `yaml:"revisitable,omitempty"`
	RequiresFlags []string          `yaml:"requires_flags,omitempty"`
	SetsFlags     map[string]bool   `yaml:"sets_flags,omitempty"`
	Transitions   []transitionDoc   `yaml:"transitions,omitempty"`
	Metadata      map[string]string `yaml:"metadata,omitempty"`
}

// dialogueDoc is one speaker line.
type dialogueDoc struct {
	Speaker string `yaml:"speaker"`
	Line    string `yaml:"line"`
}

// transitionDoc is the YAML shape for one transition.
type transitionDoc struct {
	TransitionID  string      `yaml:"transition_id"`
	TargetNodeID  string      `yaml:"target_node_id"`
	Type          string      `yaml:"type,omitempty"`
	Label         string      `yaml:"label,omitempty"`
	Hidden        bool        `yaml:"hidden,omitempty"`
	Disabled      bool        `yaml:"disabled,omitempty"`
	RequiresFlags []string    `yaml:"requires_flags,omitempty"`
	PreviewHint   string      `yaml:"preview_hint,omitempty"`
	Severity      string      `yaml:"severity,omitempty"`
	Effects       []effectDoc `yaml:"effects,omitempty"`
}

// effectDoc is the YAML shape for one transition effect. Type selects the
// variant; the remaining fields are variant-specific.
type effectDoc struct {
	Type string `yaml:"type"`

	// increment / decrement fields.
	Counter   string `yaml:"counter,omitempty"`
	FactionID string `yaml:"faction_id,omitempty"`
	Amount    int    `yaml:"amount,omitempty"`
	Reason    string `yaml:"reason,omitempty"`

	// set_flag fields.
	Name  string `yaml:"name,omitempty"`
	Value *bool  `yaml:"value,omitempty"`

	// trigger_event fields.
	Kind         string `yaml:"kind,omitempty"`
	OpponentType string `yaml:"opponent_type,omitempty"`
	Context      string `yaml:"context,omitempty"`
	Difficulty   int    `yaml:"difficulty,omitempty"`
	CardID       string `yaml:"card_id,omitempty"`
	Source       string `yaml:"source,omitempty"`
}
