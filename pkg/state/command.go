package state

// CommandType identifies an abstract command from the presentation layer.
// Input decoding (keys, pointers) happens outside the core.
type CommandType string

const (
	CmdMove         CommandType = "move"
	CmdTakeItem     CommandType = "take_item"
	CmdUseItem      CommandType = "use_item"
	CmdEquip        CommandType = "equip"
	CmdOpenShop     CommandType = "open_shop"
	CmdBuyItem      CommandType = "buy_item"
	CmdSelectChoice CommandType = "select_choice"
	CmdBattleAction CommandType = "battle_action"
	CmdSave         CommandType = "save"
	CmdLoad         CommandType = "load"
	CmdLookAround   CommandType = "look_around"

	// CmdContinue is the line-advance signal: the presentation layer has
	// finished showing the current text and wants the next step.
	CmdContinue CommandType = "continue"
)

// BattleActionKind is the top-level battle menu selection.
type BattleActionKind string

const (
	ActionFight BattleActionKind = "fight"
	ActionAct   BattleActionKind = "act"
	ActionItem  BattleActionKind = "item"
	ActionMercy BattleActionKind = "mercy"
)

// Mercy subchoices.
const (
	MercySpare = "spare"
	MercyFlee  = "flee"
)

// Command is one structured input to the core. Exactly one command is in
// flight at a time; the core returns a directive plus a read-only snapshot.
type Command struct {
	Type CommandType `json:"type"`

	Direction string `json:"direction,omitempty"` // move
	Item      string `json:"item,omitempty"`      // take_item, use_item, equip
	Index     int    `json:"index,omitempty"`     // buy_item, select_choice

	Action    BattleActionKind `json:"action,omitempty"`    // battle_action
	Subchoice string           `json:"subchoice,omitempty"` // ACT verb, item ID, or mercy subchoice
}
