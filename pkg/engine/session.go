package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jwebster45206/tale-engine/pkg/battle"
	"github.com/jwebster45206/tale-engine/pkg/content"
	"github.com/jwebster45206/tale-engine/pkg/narrator"
	"github.com/jwebster45206/tale-engine/pkg/state"
	"github.com/jwebster45206/tale-engine/pkg/storage"
)

// ShopItem is one purchasable entry of an open shop.
type ShopItem struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// ShopView is the rendered state of an open shop.
type ShopView struct {
	Name     string     `json:"name"`
	Greeting string     `json:"greeting,omitempty"`
	Items    []ShopItem `json:"items"`
}

// Reply is the core's answer to one command: a directive, optional
// informational feedback for recoverable problems, and read-only views for
// rendering. During an active battle the directive stays DirectiveAwait and
// Battle carries the turn state.
type Reply struct {
	Directive Directive `json:"directive"`
	Info      string    `json:"info,omitempty"`

	BattleResult *battle.Result `json:"battle_result,omitempty"`
	Battle       *battle.View   `json:"battle,omitempty"`
	Shop         *ShopView      `json:"shop,omitempty"`

	State *state.GameState `json:"state"`
}

// Session owns one game: the state, the interpreter, and at most one active
// battle. All mutation goes through HandleCommand; the mutex serializes
// concurrent callers so the core itself stays single-threaded per session.
type Session struct {
	mu sync.Mutex

	gs     *state.GameState
	tables *content.Tables
	interp *Interpreter
	store  storage.Storage
	logger *slog.Logger

	battle        *battle.Battle
	pendingChoice string // event ID of the choice awaiting selection
	pendingNext   string // event ID resolved by the next CmdContinue
	shop          string // open shop ID

	playerName    string
	startLocation string
	seedFn        func() int64
}

// NewSession creates a session at the given start location. The embellisher
// may be nil.
func NewSession(playerName, startLocation string, tables *content.Tables, store storage.Storage, embellisher narrator.Embellisher, logger *slog.Logger) (*Session, error) {
	if _, err := tables.Location(startLocation); err != nil {
		return nil, err
	}
	return &Session{
		gs:            state.NewGameState(playerName, startLocation),
		tables:        tables,
		interp:        NewInterpreter(tables, embellisher, logger),
		store:         store,
		logger:        logger,
		playerName:    playerName,
		startLocation: startLocation,
		seedFn:        func() int64 { return time.Now().UnixNano() },
	}, nil
}

// WithSeed overrides the battle RNG seed source. Tests use this for
// reproducible combat.
func (s *Session) WithSeed(fn func() int64) *Session {
	s.seedFn = fn
	return s
}

// State returns the session's game state for rendering. Callers must not
// mutate it.
func (s *Session) State() *state.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gs
}

// InBattle reports whether a battle is active.
func (s *Session) InBattle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battle != nil
}

// Start fires the start location's entry events and returns the opening
// directive.
func (s *Session) Start(ctx context.Context) (*Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.interp.EnterLocation(ctx, s.gs)
	if err != nil {
		return nil, err
	}
	return s.reply(d, "")
}

// HandleCommand processes one command and returns the next directive plus a
// read-only state view. Recoverable problems (bad direction, full inventory,
// not enough gold) come back as Reply.Info with state unchanged; illegal
// transitions and content errors are returned as errors.
func (s *Session) HandleCommand(ctx context.Context, cmd state.Command) (*Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.battle != nil && cmd.Type != state.CmdBattleAction {
		return nil, fmt.Errorf("%w: %s during battle", ErrIllegalTransition, cmd.Type)
	}
	if s.gs.Ended && cmd.Type != state.CmdLoad {
		return nil, fmt.Errorf("%w: %s after game over", ErrIllegalTransition, cmd.Type)
	}
	if s.pendingChoice != "" && cmd.Type != state.CmdSelectChoice {
		return nil, fmt.Errorf("%w: a choice is pending", ErrIllegalTransition)
	}

	switch cmd.Type {
	case state.CmdMove:
		return s.move(ctx, cmd.Direction)
	case state.CmdTakeItem:
		return s.takeItem(cmd.Item)
	case state.CmdUseItem:
		return s.useItem(cmd.Item)
	case state.CmdEquip:
		return s.equip(cmd.Item)
	case state.CmdOpenShop:
		return s.openShop()
	case state.CmdBuyItem:
		return s.buyItem(cmd.Index)
	case state.CmdSelectChoice:
		return s.selectChoice(ctx, cmd.Index)
	case state.CmdBattleAction:
		return s.battleAction(ctx, cmd)
	case state.CmdSave:
		return s.save(ctx)
	case state.CmdLoad:
		return s.load(ctx)
	case state.CmdLookAround:
		return s.lookAround()
	case state.CmdContinue:
		return s.continueText(ctx)
	default:
		return s.info(fmt.Sprintf("Unknown command %q.", cmd.Type))
	}
}

// reply finalizes a directive: bookkeeping for what is now in flight, battle
// construction for battle entries, and state reset on title screen changes.
func (s *Session) reply(d Directive, info string) (*Reply, error) {
	s.pendingNext = ""
	s.pendingChoice = ""

	r := &Reply{Directive: d, Info: info, State: s.gs}

	switch d.Type {
	case DirectiveShowText:
		s.pendingNext = d.Then
	case DirectiveChoices:
		s.pendingChoice = d.Source
	case DirectiveEnterBattle:
		ev, err := s.tables.Event(d.BattleEvent)
		if err != nil {
			return nil, err
		}
		b, err := battle.New(ev, s.gs, s.tables, battle.NewRNG(s.seedFn()), s.logger)
		if err != nil {
			return nil, err
		}
		s.battle = b
		v := b.View()
		r.Battle = &v
	case DirectiveScreenChange:
		if d.Target == "title" || d.Target == "new_game" {
			s.resetState()
			r.State = s.gs
		}
	}

	if s.battle != nil && r.Battle == nil {
		v := s.battle.View()
		r.Battle = &v
	}
	return r, nil
}

func (s *Session) info(msg string) (*Reply, error) {
	return &Reply{Directive: awaitDirective(), Info: msg, State: s.gs}, nil
}

// resetState discards progress for a fresh game, keeping the session ID so
// the caller's addressing stays valid.
func (s *Session) resetState() {
	id := s.gs.ID
	fresh := state.NewGameState(s.playerName, s.startLocation)
	fresh.ID = id
	s.gs = fresh
	s.battle = nil
	s.shop = ""
	if s.logger != nil {
		s.logger.Info("game state reset", "session", id)
	}
}

func (s *Session) move(ctx context.Context, direction string) (*Reply, error) {
	loc, err := s.tables.Location(s.gs.Location)
	if err != nil {
		return nil, err
	}
	target, ok := loc.Exit(strings.ToLower(direction))
	if !ok {
		return s.info("You can't go that way.")
	}
	if target == content.ExitBlocked {
		return s.info("The way is blocked.")
	}

	s.gs.Location = target
	s.shop = ""
	d, err := s.interp.EnterLocation(ctx, s.gs)
	if err != nil {
		return nil, err
	}
	return s.reply(d, "")
}

// takenFlag marks a location item as picked up; locations themselves are
// immutable content.
func takenFlag(locationID, itemID string) string {
	return "took." + locationID + "." + itemID
}

func (s *Session) takeItem(itemID string) (*Reply, error) {
	loc, err := s.tables.Location(s.gs.Location)
	if err != nil {
		return nil, err
	}
	if !loc.HasItem(itemID) {
		return s.info("There's nothing like that here.")
	}
	if s.gs.FlagTrue(takenFlag(loc.ID, itemID)) {
		return s.info("It's already gone.")
	}
	item, err := s.tables.Item(itemID)
	if err != nil {
		return nil, err
	}
	if err := s.gs.AddItem(itemID); err != nil {
		if errors.Is(err, state.ErrInventoryFull) {
			return s.info("Your inventory is full.")
		}
		return nil, err
	}
	s.gs.SetFlag(takenFlag(loc.ID, itemID), content.BoolFlag(true))
	return s.info(fmt.Sprintf("You got the %s.", item.Name))
}

func (s *Session) useItem(itemID string) (*Reply, error) {
	if !s.gs.HasItem(itemID) {
		return s.info("You don't have that.")
	}
	item, err := s.tables.Item(itemID)
	if err != nil {
		return nil, err
	}

	switch item.Type {
	case content.ItemHealing:
		healed := s.gs.Heal(item.Effect.HP)
		s.gs.RemoveItem(itemID)
		return s.info(fmt.Sprintf("You use the %s and recover %d HP.", item.Name, healed))
	case content.ItemWeapon, content.ItemArmor:
		return s.info(fmt.Sprintf("The %s needs to be equipped first.", item.Name))
	default:
		return s.info("Nothing happens.")
	}
}

func (s *Session) equip(itemID string) (*Reply, error) {
	if !s.gs.HasItem(itemID) {
		return s.info("You don't have that.")
	}
	item, err := s.tables.Item(itemID)
	if err != nil {
		return nil, err
	}
	if !item.Equippable {
		return s.info(fmt.Sprintf("You can't equip the %s.", item.Name))
	}
	if !item.UsableOnRoute(s.gs.Route) {
		return s.info("Something stops you from equipping that.")
	}

	switch item.Type {
	case content.ItemWeapon:
		s.gs.Player.Weapon = itemID
	case content.ItemArmor:
		s.gs.Player.Armor = itemID
	default:
		return s.info(fmt.Sprintf("You can't equip the %s.", item.Name))
	}
	return s.info(fmt.Sprintf("You equip the %s.", item.Name))
}

func (s *Session) openShop() (*Reply, error) {
	loc, err := s.tables.Location(s.gs.Location)
	if err != nil {
		return nil, err
	}
	if loc.Shop == "" {
		return s.info("There's no shop here.")
	}
	shop, err := s.tables.Shop(loc.Shop)
	if err != nil {
		return nil, err
	}

	view := &ShopView{Name: shop.Name, Greeting: shop.Greeting}
	for i, id := range shop.Items {
		item, err := s.tables.Item(id)
		if err != nil {
			return nil, err
		}
		view.Items = append(view.Items, ShopItem{Index: i, ID: id, Name: item.Name, Price: item.Price})
	}

	s.shop = loc.Shop
	return &Reply{Directive: awaitDirective(), Shop: view, State: s.gs}, nil
}

func (s *Session) buyItem(index int) (*Reply, error) {
	if s.shop == "" {
		return s.info("The shop isn't open.")
	}
	shop, err := s.tables.Shop(s.shop)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(shop.Items) {
		return s.info("That's not for sale.")
	}
	item, err := s.tables.Item(shop.Items[index])
	if err != nil {
		return nil, err
	}
	if s.gs.Player.Gold < item.Price {
		return s.info("Not enough gold.")
	}
	if err := s.gs.AddItem(item.ID); err != nil {
		if errors.Is(err, state.ErrInventoryFull) {
			return s.info("Your inventory is full.")
		}
		return nil, err
	}
	s.gs.Player.Gold -= item.Price
	return s.info(fmt.Sprintf("You bought the %s for %d gold.", item.Name, item.Price))
}

func (s *Session) selectChoice(ctx context.Context, index int) (*Reply, error) {
	if s.pendingChoice == "" {
		return nil, fmt.Errorf("%w: no choice is pending", ErrIllegalTransition)
	}
	ev, err := s.tables.Event(s.pendingChoice)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(ev.Choices) {
		return s.info("Invalid choice.")
	}

	s.pendingChoice = ""
	d, err := s.interp.SelectChoice(ctx, s.gs, ev, index)
	if err != nil {
		return nil, err
	}
	return s.reply(d, "")
}

func (s *Session) battleAction(ctx context.Context, cmd state.Command) (*Reply, error) {
	if s.battle == nil {
		return nil, fmt.Errorf("%w: no battle is active", ErrIllegalTransition)
	}

	res, err := s.battle.HandleAction(s.gs, cmd.Action, cmd.Subchoice)
	if err != nil {
		if errors.Is(err, battle.ErrBattleOver) {
			return nil, fmt.Errorf("%w: %v", ErrIllegalTransition, err)
		}
		return nil, err
	}

	if res.Outcome == "" {
		v := s.battle.View()
		return &Reply{Directive: awaitDirective(), BattleResult: res, Battle: &v, State: s.gs}, nil
	}
	return s.resolveBattleOutcome(ctx, res)
}

// resolveBattleOutcome routes a finished battle back into the event graph.
// The originating battle event lands in completedEvents exactly once, for all
// four outcomes.
func (s *Session) resolveBattleOutcome(ctx context.Context, res *battle.Result) (*Reply, error) {
	ev, err := s.tables.Event(s.battle.EventID)
	if err != nil {
		return nil, err
	}
	s.gs.CompleteEvent(s.battle.EventID)
	s.battle = nil

	var target string
	switch res.Outcome {
	case battle.OutcomeWon:
		target = ev.Outcomes.Win
	case battle.OutcomeLost:
		target = ev.Outcomes.Lose
	case battle.OutcomeSpared:
		target = ev.Outcomes.Spare
	case battle.OutcomeFled:
		// Fleeing grants nothing and goes nowhere.
	}

	if target == "" {
		if res.Outcome == battle.OutcomeLost {
			s.gs.Ended = true
			s.gs.EndText = "GAME OVER"
			r := &Reply{Directive: Directive{Type: DirectiveTerminal, Message: s.gs.EndText}, BattleResult: res, State: s.gs}
			return r, nil
		}
		return &Reply{Directive: awaitDirective(), BattleResult: res, State: s.gs}, nil
	}

	d, err := s.interp.Resolve(ctx, s.gs, target)
	if err != nil {
		return nil, err
	}
	r, err := s.reply(d, "")
	if err != nil {
		return nil, err
	}
	r.BattleResult = res
	return r, nil
}

// save writes a snapshot. Only valid from free exploration, at a save point
// or when content has granted the can_save flag.
func (s *Session) save(ctx context.Context) (*Reply, error) {
	loc, err := s.tables.Location(s.gs.Location)
	if err != nil {
		return nil, err
	}
	if !loc.SavePoint && !s.gs.FlagTrue("can_save") {
		return s.info("You can't save here.")
	}
	if s.store == nil {
		return s.info("Saving is not available.")
	}

	if err := s.store.SaveSnapshot(ctx, s.gs.ID.String(), s.gs.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	msg := loc.SaveLabel
	if msg == "" {
		msg = "Game saved."
	}
	return s.info(msg)
}

// load restores the last snapshot wholesale. Loading mid-battle is rejected
// before dispatch reaches here.
func (s *Session) load(ctx context.Context) (*Reply, error) {
	if s.store == nil {
		return s.info("Loading is not available.")
	}

	snap, err := s.store.LoadSnapshot(ctx, s.gs.ID.String())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return s.info("No saved game found.")
		}
		return nil, fmt.Errorf("failed to load game: %w", err)
	}

	gs, err := state.FromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to restore game: %w", err)
	}

	s.gs = gs
	s.battle = nil
	s.shop = ""
	s.pendingChoice = ""
	s.pendingNext = ""
	return s.info("Game loaded.")
}

func (s *Session) lookAround() (*Reply, error) {
	loc, err := s.tables.Location(s.gs.Location)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(loc.Description)
	if len(loc.Items) > 0 {
		var here []string
		for _, id := range loc.Items {
			if s.gs.FlagTrue(takenFlag(loc.ID, id)) {
				continue
			}
			if item, err := s.tables.Item(id); err == nil {
				here = append(here, item.Name)
			}
		}
		if len(here) > 0 {
			sb.WriteString(" You see: " + strings.Join(here, ", ") + ".")
		}
	}
	if len(loc.Exits) > 0 {
		dirs := make([]string, 0, len(loc.Exits))
		for dir := range loc.Exits {
			dirs = append(dirs, dir)
		}
		sort.Strings(dirs)
		sb.WriteString(" Exits: " + strings.Join(dirs, ", ") + ".")
	}
	return s.info(sb.String())
}

func (s *Session) continueText(ctx context.Context) (*Reply, error) {
	if s.pendingNext == "" {
		return &Reply{Directive: awaitDirective(), State: s.gs}, nil
	}

	next := s.pendingNext
	s.pendingNext = ""
	d, err := s.interp.Resolve(ctx, s.gs, next)
	if err != nil {
		return nil, err
	}
	return s.reply(d, "")
}
