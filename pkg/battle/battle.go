package battle

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/d20"

	"github.com/jwebster45206/tale-engine/pkg/content"
	"github.com/jwebster45206/tale-engine/pkg/state"
)

// Outcome is the terminal result of a battle.
type Outcome string

const (
	OutcomeWon    Outcome = "won"
	OutcomeLost   Outcome = "lost"
	OutcomeSpared Outcome = "spared"
	OutcomeFled   Outcome = "fled"
)

// ErrBattleOver rejects actions after the battle has resolved.
// An illegal transition: nothing changes.
var ErrBattleOver = errors.New("battle is already over")

// ErrUnknownAction rejects battle actions outside fight/act/item/mercy.
var ErrUnknownAction = errors.New("unknown battle action")

const (
	baseAttack     = 4   // flat base for player FIGHT damage
	levelAtkBonus  = 2   // per level above 1
	spareActTurns  = 3   // qualifying ACT turns before sparing unlocks
	spareGold      = 5   // flat reward for a peaceful resolution
	fleeBaseChance = 0.5 // plus 0.1 per level, clamped in RNG.Chance
	fleePerLevel   = 0.1
	winGoldMin     = 10
	winGoldMax     = 30
)

// Result reports what one battle action did. Lines are canned presentation
// text; numeric fields let the caller render without re-deriving anything.
type Result struct {
	Lines    []string `json:"lines,omitempty"`
	Outcome  Outcome  `json:"outcome,omitempty"` // empty while the battle continues
	Rejected bool     `json:"rejected,omitempty"`

	EnemyDamage  int `json:"enemy_damage,omitempty"`  // dealt to the enemy
	PlayerDamage int `json:"player_damage,omitempty"` // dealt to the player

	GoldEarned int  `json:"gold_earned,omitempty"`
	EXPEarned  int  `json:"exp_earned,omitempty"`
	LeveledUp  bool `json:"leveled_up,omitempty"`
}

// Battle is the ephemeral combat sub-state. It exists only between a battle
// event firing and its resolution; the originating event ID is kept so the
// caller can route the outcome back into the event graph.
type Battle struct {
	EventID string
	Enemy   content.Character

	EnemyHP    int
	EnemyMaxHP int
	Turn       int

	// CanSpare flips true once the act-turn counter reaches its threshold,
	// provided the event allows sparing. Monotonic: never flips back.
	CanSpare bool

	canFlee  bool
	canFight bool
	sparable bool // event-level permission for CanSpare to ever unlock

	actTurns int
	outcome  Outcome

	player *d20.Actor
	enemy  *d20.Actor

	tables *content.Tables
	rng    *RNG
	logger *slog.Logger
}

// New constructs battle state from a battle event and the named enemy.
// Player and enemy stats are snapshotted into d20 actors; equipment bonuses
// are fixed for the duration since gear cannot change mid-battle.
func New(ev content.Event, gs *state.GameState, tables *content.Tables, rng *RNG, logger *slog.Logger) (*Battle, error) {
	if ev.Type != content.EventBattle {
		return nil, fmt.Errorf("event %s is not a battle event", ev.ID)
	}
	enemy, err := tables.Character(ev.Enemy)
	if err != nil {
		return nil, err
	}

	weaponAtk, armorDef := equipmentBonuses(gs, tables)

	playerActor, err := d20.NewActor(gs.Player.Name).
		WithHP(gs.Player.MaxHP).
		WithAC(armorDef).
		WithAttributes(map[string]int{"atk": weaponAtk, "def": armorDef}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build player actor: %w", err)
	}

	enemyActor, err := d20.NewActor(enemy.ID).
		WithHP(enemy.Stats.HP).
		WithAC(enemy.Stats.Def).
		WithAttributes(map[string]int{"atk": enemy.Stats.Atk, "def": enemy.Stats.Def}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build enemy actor: %w", err)
	}

	return &Battle{
		EventID:    ev.ID,
		Enemy:      enemy,
		EnemyHP:    enemy.Stats.HP,
		EnemyMaxHP: enemy.Stats.HP,
		canFlee:    ev.CanFlee,
		canFight:   ev.CanFight,
		sparable:   ev.CanSpare,
		player:     playerActor,
		enemy:      enemyActor,
		tables:     tables,
		rng:        rng,
		logger:     logger,
	}, nil
}

// equipmentBonuses reads atk/def bonuses from the equipped weapon and armor.
// Unknown equipment IDs contribute nothing; validation catches them earlier.
func equipmentBonuses(gs *state.GameState, tables *content.Tables) (atk, def int) {
	if gs.Player.Weapon != "" {
		if w, err := tables.Item(gs.Player.Weapon); err == nil {
			atk = w.Effect.Atk
		}
	}
	if gs.Player.Armor != "" {
		if a, err := tables.Item(gs.Player.Armor); err == nil {
			def = a.Effect.Def
		}
	}
	return atk, def
}

// Outcome returns the terminal outcome, or empty while the battle continues.
func (b *Battle) Outcome() Outcome {
	return b.outcome
}

// HandleAction resolves one player turn. Exactly one action per turn; the
// returned Result says whether the battle ended and what it cost.
func (b *Battle) HandleAction(gs *state.GameState, kind state.BattleActionKind, subchoice string) (*Result, error) {
	if b.outcome != "" {
		return nil, ErrBattleOver
	}
	b.Turn++

	switch kind {
	case state.ActionFight:
		return b.fight(gs), nil
	case state.ActionAct:
		return b.act(gs, subchoice), nil
	case state.ActionItem:
		return b.useItem(gs, subchoice)
	case state.ActionMercy:
		return b.mercy(gs, subchoice), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, kind)
	}
}

// fight resolves a FIGHT action: max(1, 4 + weaponAtk + (level-1)*2 + U(-2,2)).
func (b *Battle) fight(gs *state.GameState) *Result {
	res := &Result{}
	if !b.canFight {
		res.Rejected = true
		res.Lines = append(res.Lines, "You can't bring yourself to fight.")
		b.enemyTurn(gs, res)
		return res
	}

	weaponAtk, _ := b.player.Attribute("atk")
	dmg := baseAttack + weaponAtk + (gs.Player.Level-1)*levelAtkBonus + b.rng.Between(-2, 2)
	if dmg < 1 {
		dmg = 1
	}

	b.EnemyHP -= dmg
	if b.EnemyHP < 0 {
		b.EnemyHP = 0
	}
	res.EnemyDamage = dmg
	res.Lines = append(res.Lines, fmt.Sprintf("You attack %s for %d damage!", b.Enemy.Name, dmg))

	if b.EnemyHP <= 0 {
		b.finishWon(gs, res)
		return res
	}
	b.enemyTurn(gs, res)
	return res
}

// act resolves an ACT verb. Qualifying verbs advance the spare counter;
// Check and verbs the enemy doesn't know never do.
func (b *Battle) act(gs *state.GameState, verb string) *Result {
	res := &Result{}
	if verb == "" {
		verb = "Check"
	}

	res.Lines = append(res.Lines, b.Enemy.ActLine(verb))

	if b.countsTowardSpare(verb) {
		b.actTurns++
		if !b.CanSpare && b.sparable && b.actTurns >= spareActTurns {
			b.CanSpare = true
			res.Lines = append(res.Lines, fmt.Sprintf("%s can be spared.", b.Enemy.Name))
			if b.logger != nil {
				b.logger.Debug("spareability unlocked",
					"enemy", b.Enemy.ID,
					"turn", b.Turn)
			}
		}
	}

	b.enemyTurn(gs, res)
	return res
}

// countsTowardSpare reports whether a verb advances the spare counter:
// it must be one of the enemy's own ACT verbs, and Check never counts.
func (b *Battle) countsTowardSpare(verb string) bool {
	if strings.EqualFold(verb, "check") {
		return false
	}
	for _, v := range b.Enemy.ActVerbs() {
		if strings.EqualFold(v, verb) {
			return true
		}
	}
	return false
}

// useItem resolves an ITEM action. Only battle-usable items are legal; a heal
// restores clamped HP and consumes exactly one inventory instance. Using an
// item never ends the battle by itself.
func (b *Battle) useItem(gs *state.GameState, itemID string) (*Result, error) {
	item, err := b.tables.Item(itemID)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if !item.BattleUse || !gs.HasItem(itemID) {
		res.Rejected = true
		res.Lines = append(res.Lines, "You can't use that here.")
		b.enemyTurn(gs, res)
		return res, nil
	}

	healed := gs.Heal(item.Effect.HP)
	gs.RemoveItem(itemID)
	res.Lines = append(res.Lines, fmt.Sprintf("You use the %s and recover %d HP.", item.Name, healed))

	b.enemyTurn(gs, res)
	return res, nil
}

// mercy resolves the MERCY menu: spare or flee. Failed attempts are free
// actions that still consume the turn.
func (b *Battle) mercy(gs *state.GameState, subchoice string) *Result {
	res := &Result{}
	switch subchoice {
	case state.MercySpare:
		if b.CanSpare {
			res.Lines = append(res.Lines, fmt.Sprintf("You spare %s.", b.Enemy.Name))
			b.finishSpared(gs, res)
			return res
		}
		res.Rejected = true
		res.Lines = append(res.Lines, fmt.Sprintf("%s doesn't want to be spared yet.", b.Enemy.Name))
		b.enemyTurn(gs, res)
		return res

	case state.MercyFlee:
		if !b.canFlee {
			// Rejected outright, no roll. The turn still passes.
			res.Rejected = true
			res.Lines = append(res.Lines, "You can't escape this fight!")
			b.enemyTurn(gs, res)
			return res
		}
		p := fleeBaseChance + fleePerLevel*float64(gs.Player.Level)
		if b.rng.Chance(p) {
			res.Lines = append(res.Lines, "You fled the battle.")
			b.outcome = OutcomeFled
			res.Outcome = OutcomeFled
			return res
		}
		res.Lines = append(res.Lines, "You couldn't get away!")
		b.enemyTurn(gs, res)
		return res

	default:
		res.Rejected = true
		res.Lines = append(res.Lines, "You hesitate.")
		b.enemyTurn(gs, res)
		return res
	}
}

// enemyTurn applies the enemy counterattack: max(1, enemyAtk - playerDef + U(-2,2)).
// The additive defense model is canonical; it can't blow up into negative
// damage at high defense.
func (b *Battle) enemyTurn(gs *state.GameState, res *Result) {
	enemyAtk, _ := b.enemy.Attribute("atk")
	playerDef, _ := b.player.Attribute("def")

	dmg := enemyAtk - playerDef + b.rng.Between(-2, 2)
	if dmg < 1 {
		dmg = 1
	}

	gs.Player.HP -= dmg
	if gs.Player.HP < 0 {
		gs.Player.HP = 0
	}
	res.PlayerDamage = dmg
	res.Lines = append(res.Lines, fmt.Sprintf("%s attacks you for %d damage!", b.Enemy.Name, dmg))

	if gs.Player.HP <= 0 {
		b.outcome = OutcomeLost
		res.Outcome = OutcomeLost
		res.Lines = append(res.Lines, "You were defeated...")
	}
}

// finishWon applies the win payout: uniform gold, HP-scaled EXP, level-ups,
// and the pacifist→neutral demotion. A kill always prevents a pure-pacifist
// ending.
func (b *Battle) finishWon(gs *state.GameState, res *Result) {
	b.outcome = OutcomeWon
	res.Outcome = OutcomeWon

	gold := b.rng.Between(winGoldMin, winGoldMax)
	exp := b.EnemyMaxHP / 2
	gs.Player.Gold += gold
	gs.Player.EXP += exp
	res.GoldEarned = gold
	res.EXPEarned = exp

	if gs.Player.KilledMonsters == nil {
		gs.Player.KilledMonsters = make(map[string]bool)
	}
	gs.Player.KilledMonsters[b.Enemy.ID] = true

	if gs.Route == content.RoutePacifist {
		gs.Route = content.RouteNeutral
	}

	res.Lines = append(res.Lines, fmt.Sprintf("%s was defeated. You earned %d gold and %d EXP.", b.Enemy.Name, gold, exp))

	if b.checkLevelUp(gs) {
		res.LeveledUp = true
		res.Lines = append(res.Lines, fmt.Sprintf("You reached level %d!", gs.Player.Level))
	}
}

// finishSpared applies the peaceful payout: flat gold, no EXP, route untouched.
func (b *Battle) finishSpared(gs *state.GameState, res *Result) {
	b.outcome = OutcomeSpared
	res.Outcome = OutcomeSpared

	gs.Player.Gold += spareGold
	res.GoldEarned = spareGold

	if gs.Player.SparedMonsters == nil {
		gs.Player.SparedMonsters = make(map[string]bool)
	}
	gs.Player.SparedMonsters[b.Enemy.ID] = true

	res.Lines = append(res.Lines, fmt.Sprintf("You earned %d gold.", spareGold))
}

// checkLevelUp consumes EXP against level*10 thresholds. Each level adds 4
// max HP and fully heals. Reaching level 10 forces the genocide route.
// Returns true if at least one level was gained.
func (b *Battle) checkLevelUp(gs *state.GameState) bool {
	leveled := false
	for gs.Player.EXP >= gs.Player.Level*10 {
		gs.Player.EXP -= gs.Player.Level * 10
		gs.Player.Level++
		gs.Player.MaxHP += 4
		gs.Player.HP = gs.Player.MaxHP
		leveled = true
	}
	if gs.Player.Level >= 10 {
		gs.Route = content.RouteGenocide
	}
	return leveled
}

// View is a read-only battle summary for the presentation layer.
type View struct {
	EnemyID    string   `json:"enemy_id"`
	EnemyName  string   `json:"enemy_name"`
	EnemyHP    int      `json:"enemy_hp"`
	EnemyMaxHP int      `json:"enemy_max_hp"`
	Turn       int      `json:"turn"`
	CanSpare   bool     `json:"can_spare"`
	CanFlee    bool     `json:"can_flee"`
	CanFight   bool     `json:"can_fight"`
	Acts       []string `json:"acts"`
}

// View summarizes the battle for rendering.
func (b *Battle) View() View {
	return View{
		EnemyID:    b.Enemy.ID,
		EnemyName:  b.Enemy.Name,
		EnemyHP:    b.EnemyHP,
		EnemyMaxHP: b.EnemyMaxHP,
		Turn:       b.Turn,
		CanSpare:   b.CanSpare,
		CanFlee:    b.canFlee,
		CanFight:   b.canFight,
		Acts:       b.Enemy.ActVerbs(),
	}
}
