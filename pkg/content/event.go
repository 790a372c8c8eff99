package content

// EventType discriminates narrative event nodes.
type EventType string

const (
	EventCutscene     EventType = "cutscene"
	EventDialogue     EventType = "dialogue"
	EventBattle       EventType = "battle"
	EventChoice       EventType = "choice"
	EventConditional  EventType = "conditional"
	EventFlagSet      EventType = "flag_set"
	EventGameOver     EventType = "game_over"
	EventMinigame     EventType = "minigame"
	EventScreenChange EventType = "screen_change"
)

// Choice is one selectable option of a choice event.
type Choice struct {
	Text  string `json:"text"`  // Display text
	Event string `json:"event"` // Outcome event ID
}

// Predicate is a single condition of a conditional branch. Exactly one of the
// three condition kinds should be set; they are checked in the order
// route, flag, item.
type Predicate struct {
	Route   Route      `json:"route,omitempty"`    // Route equality
	Flag    string     `json:"flag,omitempty"`     // Flag name for equality check
	Equals  *FlagValue `json:"equals,omitempty"`   // Expected flag value; nil with Flag set means "is true"
	HasItem string     `json:"has_item,omitempty"` // Inventory-contains check
}

// Branch pairs a predicate with an outcome event.
type Branch struct {
	If    Predicate `json:"if"`
	Event string    `json:"event"`
}

// BattleOutcomes maps battle results to follow-up event IDs. Empty entries
// mean the battle returns to free exploration.
type BattleOutcomes struct {
	Win   string `json:"win,omitempty"`
	Lose  string `json:"lose,omitempty"`
	Spare string `json:"spare,omitempty"`
}

// Event is a node of the narrative graph, discriminated by Type. Only the
// fields for the node's type are populated; everything else stays zero.
type Event struct {
	ID   string    `json:"id"`
	Type EventType `json:"type"`

	// cutscene, dialogue, minigame
	Speaker   string   `json:"speaker,omitempty"`    // Speaking character ID
	Lines     []string `json:"lines,omitempty"`      // Emitted in order, never skipped or reordered
	Next      string   `json:"next,omitempty"`       // Chained event; also used by flag_set
	GiveItem  string   `json:"give_item,omitempty"`  // Item granted on completion
	RouteFlag Route    `json:"route_flag,omitempty"` // Route set on completion (last writer wins)

	// battle
	Enemy    string         `json:"enemy,omitempty"`
	CanFlee  bool           `json:"can_flee,omitempty"`
	CanFight bool           `json:"can_fight,omitempty"`
	CanSpare bool           `json:"can_spare,omitempty"`
	Outcomes BattleOutcomes `json:"outcomes,omitempty"`

	// choice
	Choices []Choice `json:"choices,omitempty"`

	// conditional
	Branches []Branch `json:"branches,omitempty"`
	Default  string   `json:"default,omitempty"`

	// flag_set
	Flag  string     `json:"flag,omitempty"`
	Value *FlagValue `json:"value,omitempty"`

	// game_over
	Message string `json:"message,omitempty"`

	// screen_change
	Target string `json:"target,omitempty"` // e.g. "title", "credits"
}

// Repeatable reports whether resolving the event again is meaningful.
// Battles and choices are explicitly re-enterable; everything else is a
// one-shot once it lands in completedEvents.
func (e *Event) Repeatable() bool {
	return e.Type == EventBattle || e.Type == EventChoice
}
