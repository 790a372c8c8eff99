package state

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/tale-engine/pkg/content"
)

// InventoryCapacity is the fixed number of inventory slots.
const InventoryCapacity = 8

// ErrInventoryFull is returned when an item grant or purchase would exceed
// the inventory capacity. Recoverable: the item is simply not added.
var ErrInventoryFull = errors.New("inventory full")

// Player is the player's progress within a session.
type Player struct {
	Name  string `json:"name"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"max_hp"`
	Level int    `json:"level"`
	EXP   int    `json:"exp"`
	Gold  int    `json:"gold"`

	Weapon string `json:"weapon,omitempty"` // Equipped weapon item ID
	Armor  string `json:"armor,omitempty"`  // Equipped armor item ID

	Inventory []string `json:"inventory,omitempty"` // Ordered; duplicates allowed

	KilledMonsters map[string]bool `json:"killed_monsters,omitempty"`
	SparedMonsters map[string]bool `json:"spared_monsters,omitempty"`
}

// GameState is the single mutable record of player progress for one session.
// It is mutated only through the event interpreter and the battle engine.
type GameState struct {
	ID       uuid.UUID     `json:"id"`
	Player   Player        `json:"player"`
	Route    content.Route `json:"route"`
	Location string        `json:"location"`

	// CompletedEvents tracks event IDs already resolved to terminal effect.
	// Membership matters, order does not; growth is monotonic.
	CompletedEvents map[string]bool `json:"completed_events,omitempty"`

	Flags map[string]content.FlagValue `json:"flags,omitempty"`

	Ended   bool   `json:"ended,omitempty"`    // Terminal game-over reached
	EndText string `json:"end_text,omitempty"` // Terminal message, if any

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGameState creates the state for a fresh game.
func NewGameState(playerName, startLocation string) *GameState {
	now := time.Now()
	return &GameState{
		ID: uuid.New(),
		Player: Player{
			Name:           playerName,
			HP:             20,
			MaxHP:          20,
			Level:          1,
			Inventory:      make([]string, 0, InventoryCapacity),
			KilledMonsters: make(map[string]bool),
			SparedMonsters: make(map[string]bool),
		},
		Route:           content.RouteNeutral,
		Location:        startLocation,
		CompletedEvents: make(map[string]bool),
		Flags:           make(map[string]content.FlagValue),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// AddItem appends an item to the inventory. Returns ErrInventoryFull when at
// capacity, leaving the inventory unchanged.
func (gs *GameState) AddItem(id string) error {
	if len(gs.Player.Inventory) >= InventoryCapacity {
		return ErrInventoryFull
	}
	gs.Player.Inventory = append(gs.Player.Inventory, id)
	return nil
}

// RemoveItem removes exactly one matching inventory entry, even when
// duplicates exist. Returns false when the item is not held.
func (gs *GameState) RemoveItem(id string) bool {
	for i, it := range gs.Player.Inventory {
		if it == id {
			gs.Player.Inventory = append(gs.Player.Inventory[:i], gs.Player.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

// HasItem reports whether at least one matching item is held.
func (gs *GameState) HasItem(id string) bool {
	for _, it := range gs.Player.Inventory {
		if it == id {
			return true
		}
	}
	return false
}

// CompleteEvent records an event as resolved. Idempotent; the set only grows.
func (gs *GameState) CompleteEvent(id string) {
	if gs.CompletedEvents == nil {
		gs.CompletedEvents = make(map[string]bool)
	}
	gs.CompletedEvents[id] = true
}

// Completed reports whether an event has already been resolved.
func (gs *GameState) Completed(id string) bool {
	return gs.CompletedEvents[id]
}

// SetFlag sets a named flag to a boolean or numeric value.
func (gs *GameState) SetFlag(name string, v content.FlagValue) {
	if gs.Flags == nil {
		gs.Flags = make(map[string]content.FlagValue)
	}
	gs.Flags[name] = v
}

// Flag returns the value of a named flag. Unset flags return the zero value,
// which is falsy and equal to nothing.
func (gs *GameState) Flag(name string) content.FlagValue {
	return gs.Flags[name]
}

// FlagTrue reports whether a named flag is set and truthy.
func (gs *GameState) FlagTrue(name string) bool {
	return gs.Flags[name].IsTrue()
}

// Heal restores HP clamped to MaxHP and returns the amount actually restored.
// Never negative.
func (gs *GameState) Heal(n int) int {
	if n <= 0 {
		return 0
	}
	healed := gs.Player.MaxHP - gs.Player.HP
	if n < healed {
		healed = n
	}
	gs.Player.HP += healed
	return healed
}
