package content

import (
	"sort"

	"github.com/mverett/driftmark/internal/game/domain/narrative"
	"github.com/mverett/driftmark/internal/game/domain/quest"
)

// Card is a collectible card definition.
type Card struct {
	CardID      string
	Name        string
	Description string
	Rarity      string
}

// Faction is a reputation-bearing faction definition.
type Faction struct {
	FactionID   string
	Name        string
	Description string
}

// Library is the immutable, validated content set for one game build.
// All lookups are total: a missing id yields ok=false, never an error.
type Library struct {
	quests   map[string]quest.Info
	cards    map[string]Card
	factions map[string]Faction
	graphs   map[string]narrative.Graph
}

// QuestByID resolves a quest definition.
func (l *Library) QuestByID(id string) (quest.Info, bool) {
	info, ok := l.quests[id]
	return info, ok
}

// CardByID resolves a card definition.
func (l *Library) CardByID(id string) (Card, bool) {
	card, ok := l.cards[id]
	return card, ok
}

// FactionByID resolves a faction definition.
func (l *Library) FactionByID(id string) (Faction, bool) {
	faction, ok := l.factions[id]
	return faction, ok
}

// GraphByID resolves a narrative graph.
func (l *Library) GraphByID(id string) (narrative.Graph, bool) {
	graph, ok := l.graphs[id]
	return graph, ok
}

// QuestIDs returns all quest ids sorted.
func (l *Library) QuestIDs() []string {
	ids := make([]string, 0, len(l.quests))
	for id := range l.quests {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Counts reports library sizes for startup logging.
func (l *Library) Counts() (quests, cards, factions, graphs int) {
	return len(l.quests), len(l.cards), len(l.factions), len(l.graphs)
}
