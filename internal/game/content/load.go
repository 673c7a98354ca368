package content

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/mverett/driftmark/internal/game/domain/narrative"
	"github.com/mverett/driftmark/internal/game/domain/quest"
)

// Directory layout under the content root. Each directory holds one YAML
// document per definition.
const (
	questsDir   = "quests"
	cardsDir    = "cards"
	factionsDir = "factions"
	graphsDir   = "graphs"
)

// Load reads, decodes, and validates a full content set from a filesystem.
// Every graph is structurally validated and every quest's graph reference
// must resolve; a defective content set fails the load.
func Load(fsys fs.FS) (*Library, error) {
	library := &Library{
		quests:   make(map[string]quest.Info),
		cards:    make(map[string]Card),
		factions: make(map[string]Faction),
		graphs:   make(map[string]narrative.Graph),
	}

	if err := loadEach(fsys, graphsDir, func(name string, data []byte) error {
		var doc graphDoc
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing graph %s: %w", name, err)
		}
		graph, err := buildGraph(doc)
		if err != nil {
			return fmt.Errorf("building graph %s: %w", name, err)
		}
		if err := narrative.Validate(graph); err != nil {
			return fmt.Errorf("validating graph %s: %w", name, err)
		}
		if _, exists := library.graphs[graph.GraphID]; exists {
			return fmt.Errorf("duplicate graph id: %s", graph.GraphID)
		}
		library.graphs[graph.GraphID] = graph
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadEach(fsys, questsDir, func(name string, data []byte) error {
		var doc questDoc
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing quest %s: %w", name, err)
		}
		if doc.QuestID == "" {
			return fmt.Errorf("quest %s: quest id is required", name)
		}
		graph, ok := library.graphs[doc.GraphID]
		if !ok {
			return fmt.Errorf("quest %s references unknown graph: %s", doc.QuestID, doc.GraphID)
		}
		entryNodeID := doc.EntryNodeID
		if entryNodeID == "" {
			entryNodeID = string(graph.EntryPoints[narrative.DefaultEntryPoint])
		}
		if _, ok := graph.NodeByID(narrative.NodeID(entryNodeID)); !ok {
			return fmt.Errorf("quest %s entry node missing from graph %s: %s", doc.QuestID, doc.GraphID, entryNodeID)
		}
		if _, exists := library.quests[doc.QuestID]; exists {
			return fmt.Errorf("duplicate quest id: %s", doc.QuestID)
		}
		library.quests[doc.QuestID] = quest.Info{
			QuestID:     doc.QuestID,
			Title:       doc.Title,
			GraphID:     doc.GraphID,
			EntryNodeID: entryNodeID,
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadEach(fsys, cardsDir, func(name string, data []byte) error {
		var doc cardDoc
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing card %s: %w", name, err)
		}
		if doc.CardID == "" {
			return fmt.Errorf("card %s: card id is required", name)
		}
		if _, exists := library.cards[doc.CardID]; exists {
			return fmt.Errorf("duplicate card id: %s", doc.CardID)
		}
		library.cards[doc.CardID] = Card{
			CardID:      doc.CardID,
			Name:        doc.Name,
			Description: doc.Description,
			Rarity:      doc.Rarity,
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadEach(fsys, factionsDir, func(name string, data []byte) error {
		var doc factionDoc
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing faction %s: %w", name, err)
		}
		if doc.FactionID == "" {
			return fmt.Errorf("faction %s: faction id is required", name)
		}
		if _, exists := library.factions[doc.FactionID]; exists {
			return fmt.Errorf("duplicate faction id: %s", doc.FactionID)
		}
		library.factions[doc.FactionID] = Faction{
			FactionID:   doc.FactionID,
			Name:        doc.Name,
			Description: doc.Description,
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return library, nil
}

// loadEach visits every YAML document in one content directory. A missing
// directory is an empty set, not an error.
func loadEach(fsys fs.FS, dir string, apply func(name string, data []byte) error) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading content dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := path.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("reading content file %s: %w", name, err)
		}
		if err := apply(name, data); err != nil {
			return err
		}
	}
	return nil
}

// buildGraph converts a decoded graph document into the domain graph.
func buildGraph(doc graphDoc) (narrative.Graph, error) {
	graph := narrative.Graph{
		GraphID:             doc.GraphID,
		Version:             doc.Version,
		Nodes:               make(map[narrative.NodeID]narrative.Node, len(doc.Nodes)),
		EntryPoints:         make(map[string]narrative.NodeID, len(doc.EntryPoints)),
		GlobalRequiresFlags: doc.GlobalRequiresFlags,
	}
	for name, target := range doc.EntryPoints {
		graph.EntryPoints[name] = narrative.NodeID(target)
	}
	for _, nodeDoc := range doc.Nodes {
		node, err := buildNode(nodeDoc)
		if err != nil {
			return narrative.Graph{}, err
		}
		if _, exists := graph.Nodes[node.NodeID]; exists {
			return narrative.Graph{}, fmt.Errorf("duplicate node id: %s", node.NodeID)
		}
		graph.Nodes[node.NodeID] = node
	}
	return graph, nil
}

func buildNode(doc nodeDoc) (narrative.Node, error) {
	nodeType := narrative.NodeType(doc.Type)
	switch nodeType {
	case narrative.NodeTypeChoice, narrative.NodeTypeEnding:
		// allowed
	default:
		return narrative.Node{}, fmt.Errorf("node %s: unknown node type: %q", doc.NodeID, doc.Type)
	}
	node := narrative.Node{
		NodeID: narrative.NodeID(doc.NodeID),
		Type:   nodeType,
		Content: narrative.Content{
			Text: doc.Text,
		},
		Metadata: narrative.NodeMetadata{
			Revisitable:   doc.Revisitable,
			RequiresFlags: doc.RequiresFlags,
			SetsFlags:     doc.SetsFlags,
		},
	}
	for _, line := range doc.Dialogue {
		node.Content.Dialogue = append(node.Content.Dialogue, narrative.DialogueLine{
			Speaker: line.Speaker,
			Line:    line.Line,
		})
	}
	for _, transitionDoc := range doc.Transitions {
		transition, err := buildTransition(transitionDoc)
		if err != nil {
			return narrative.Node{}, fmt.Errorf("node %s: %w", doc.NodeID, err)
		}
		node.Transitions = append(node.Transitions, transition)
	}
	return node, nil
}

func buildTransition(doc transitionDoc) (narrative.Transition, error) {
	transition := narrative.Transition{
		TransitionID: narrative.TransitionID(doc.TransitionID),
		TargetNodeID: narrative.NodeID(doc.TargetNodeID),
		Type:         doc.Type,
		Presentation: narrative.Presentation{
			Label:         doc.Label,
			Hidden:        doc.Hidden,
			Disabled:      doc.Disabled,
			RequiresFlags: doc.RequiresFlags,
			PreviewHint:   doc.PreviewHint,
			Severity:      narrative.Severity(doc.Severity),
		},
	}
	for _, effectDoc := range doc.Effects {
		effect, err := buildEffect(effectDoc)
		if err != nil {
			return narrative.Transition{}, fmt.Errorf("transition %s: %w", doc.TransitionID, err)
		}
		transition.Effects = append(transition.Effects, effect)
	}
	return transition, nil
}

// buildEffect decodes one effect document into its closed-variant form.
func buildEffect(doc effectDoc) (narrative.Effect, error) {
	switch doc.Type {
	case "increment":
		counter, err := counterName(doc)
		if err != nil {
			return nil, err
		}
		return narrative.Increment{
			Counter:   counter,
			FactionID: doc.FactionID,
			Amount:    doc.Amount,
			Reason:    doc.Reason,
		}, nil
	case "decrement":
		counter, err := counterName(doc)
		if err != nil {
			return nil, err
		}
		return narrative.Decrement{
			Counter:   counter,
			FactionID: doc.FactionID,
			Amount:    doc.Amount,
			Reason:    doc.Reason,
		}, nil
	case "set_flag":
		if doc.Name == "" {
			return nil, fmt.Errorf("set_flag effect requires a flag name")
		}
		value := true
		if doc.Value != nil {
			value = *doc.Value
		}
		return narrative.SetFlag{Name: doc.Name, Value: value}, nil
	case "trigger_event":
		switch narrative.TriggerKind(doc.Kind) {
		case narrative.TriggerBattle:
			if doc.OpponentType == "" {
				return nil, fmt.Errorf("battle trigger requires an opponent type")
			}
			return narrative.TriggerEvent{
				Kind:         narrative.TriggerBattle,
				OpponentType: doc.OpponentType,
				Context:      doc.Context,
				Difficulty:   doc.Difficulty,
			}, nil
		case narrative.TriggerCardGain, narrative.TriggerCardLoss:
			if doc.CardID == "" {
				return nil, fmt.Errorf("card trigger requires a card id")
			}
			return narrative.TriggerEvent{
				Kind:   narrative.TriggerKind(doc.Kind),
				CardID: doc.CardID,
				Source: doc.Source,
			}, nil
		default:
			return nil, fmt.Errorf("unknown trigger kind: %q", doc.Kind)
		}
	default:
		return nil, fmt.Errorf("unknown effect type: %q", doc.Type)
	}
}

func counterName(doc effectDoc) (narrative.CounterName, error) {
	counter := narrative.CounterName(doc.Counter)
	switch counter {
	case narrative.CounterReputation:
		if doc.FactionID == "" {
			return "", fmt.Errorf("reputation effect requires a faction id")
		}
	case narrative.CounterBounty:
		// faction-less
	default:
		return "", fmt.Errorf("unknown counter: %q", doc.Counter)
	}
	return counter, nil
}
