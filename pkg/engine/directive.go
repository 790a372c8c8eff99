package engine

// DirectiveType discriminates what the presentation layer should do next.
type DirectiveType string

const (
	// DirectiveShowText presents dialogue lines at the caller's own pace,
	// then sends CmdContinue.
	DirectiveShowText DirectiveType = "show_text"

	// DirectiveChoices presents options; CmdSelectChoice commits one.
	// Re-rendering choices is always safe: no state moves until selection.
	DirectiveChoices DirectiveType = "choices"

	// DirectiveEnterBattle hands control to the battle menu.
	DirectiveEnterBattle DirectiveType = "enter_battle"

	// DirectiveTerminal is game over. The presentation layer offers
	// reload-or-restart; the core only reports.
	DirectiveTerminal DirectiveType = "terminal"

	// DirectiveScreenChange is a symbolic escape hatch ("title", "credits").
	DirectiveScreenChange DirectiveType = "screen_change"

	// DirectiveAwait means free exploration: wait for the next command.
	DirectiveAwait DirectiveType = "await"
)

// ChoiceOption is one presentable option of a choice directive.
type ChoiceOption struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Directive tells the presentation layer what to do next. The core never
// renders; it emits exactly one directive per resolved step.
type Directive struct {
	Type DirectiveType `json:"type"`

	Speaker string   `json:"speaker,omitempty"` // Display name of the speaking character
	Lines   []string `json:"lines,omitempty"`   // In order; never skipped past a state change
	Then    string   `json:"then,omitempty"`    // Event resolved by the next CmdContinue

	Choices []ChoiceOption `json:"choices,omitempty"`

	BattleEvent string `json:"battle_event,omitempty"`
	Message     string `json:"message,omitempty"` // Terminal message
	Target      string `json:"target,omitempty"`  // Screen-change target

	// Source is the event that produced this directive, where one exists.
	// Choice selection resolves against it.
	Source string `json:"source,omitempty"`
}

func awaitDirective() Directive {
	return Directive{Type: DirectiveAwait}
}
