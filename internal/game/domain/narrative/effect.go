package narrative

// Effect is a declarative mutation attached to a transition. The variant set
// is closed: consumers switch exhaustively over the four kinds, so adding a
// kind is a compile-visible change at every consumption site.
type Effect interface {
	isEffect()
}

// CounterName identifies a numeric quantity effects can move.
type CounterName string

const (
	// CounterReputation targets a per-faction reputation counter.
	CounterReputation CounterName = "reputation"
	// CounterBounty targets the session-wide bounty counter.
	CounterBounty CounterName = "bounty"
)

// Increment raises a named counter by Amount.
type Increment struct {
	Counter CounterName
	// FactionID selects the faction for reputation counters.
	FactionID string
	Amount    int
	Reason    string
}

// Decrement lowers a named counter by Amount.
type Decrement struct {
	Counter   CounterName
	FactionID string
	Amount    int
	Reason    string
}

// SetFlag sets a named flag. Clearing is SetFlag with Value false; there is
// no separate clear variant.
type SetFlag struct {
	Name  string
	Value bool
}

// TriggerKind identifies the collaborator a trigger addresses.
type TriggerKind string

const (
	// TriggerBattle requests a battle from the battle collaborator.
	TriggerBattle TriggerKind = "battle"
	// TriggerCardGain requests a card grant from the inventory collaborator.
	TriggerCardGain TriggerKind = "card_gain"
	// TriggerCardLoss requests a card removal from the inventory collaborator.
	TriggerCardLoss TriggerKind = "card_loss"
)

// TriggerEvent requests a cross-cutting action from an external collaborator.
// The narrative engine only emits the request event; it never resolves
// battles or inventory itself.
type TriggerEvent struct {
	Kind TriggerKind
	// Battle trigger fields.
	OpponentType string
	Context      string
	Difficulty   int
	// Card trigger fields.
	CardID string
	Source string
}

func (Increment) isEffect()    {}
func (Decrement) isEffect()    {}
func (SetFlag) isEffect()      {}
func (TriggerEvent) isEffect() {}
