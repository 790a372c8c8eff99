package state

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/tale-engine/pkg/content"
)

// SnapshotSchemaVersion rejects snapshots written by an incompatible build.
const SnapshotSchemaVersion = 1

// Snapshot is the flat serialized form of a GameState, written at save points
// and restored wholesale on load.
type Snapshot struct {
	SchemaVersion int       `json:"schema_version"`
	ID            uuid.UUID `json:"id"`
	PlayerName    string    `json:"player_name"`
	Location      string    `json:"location"`
	HP            int       `json:"hp"`
	MaxHP         int       `json:"max_hp"`
	Level         int       `json:"level"`
	EXP           int       `json:"exp"`
	Gold          int       `json:"gold"`
	Weapon        string    `json:"weapon,omitempty"`
	Armor         string    `json:"armor,omitempty"`

	Route     content.Route `json:"route"`
	Inventory []string      `json:"inventory,omitempty"`

	CompletedEvents []string `json:"completed_events,omitempty"`
	KilledMonsters  []string `json:"killed_monsters,omitempty"`
	SparedMonsters  []string `json:"spared_monsters,omitempty"`

	Flags map[string]content.FlagValue `json:"flags,omitempty"`

	SavedAt time.Time `json:"saved_at"`
}

// Snapshot flattens the game state for persistence.
func (gs *GameState) Snapshot() *Snapshot {
	return &Snapshot{
		SchemaVersion:   SnapshotSchemaVersion,
		ID:              gs.ID,
		PlayerName:      gs.Player.Name,
		Location:        gs.Location,
		HP:              gs.Player.HP,
		MaxHP:           gs.Player.MaxHP,
		Level:           gs.Player.Level,
		EXP:             gs.Player.EXP,
		Gold:            gs.Player.Gold,
		Weapon:          gs.Player.Weapon,
		Armor:           gs.Player.Armor,
		Route:           gs.Route,
		Inventory:       append([]string(nil), gs.Player.Inventory...),
		CompletedEvents: sortedKeys(gs.CompletedEvents),
		KilledMonsters:  sortedKeys(gs.Player.KilledMonsters),
		SparedMonsters:  sortedKeys(gs.Player.SparedMonsters),
		Flags:           copyFlags(gs.Flags),
		SavedAt:         time.Now(),
	}
}

// FromSnapshot rebuilds a GameState from a persisted snapshot.
func FromSnapshot(s *Snapshot) (*GameState, error) {
	if s == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	if s.SchemaVersion != SnapshotSchemaVersion {
		return nil, fmt.Errorf("unsupported snapshot schema version %d (want %d)", s.SchemaVersion, SnapshotSchemaVersion)
	}

	route := s.Route
	if route == "" {
		route = content.RouteNeutral
	}

	gs := &GameState{
		ID: s.ID,
		Player: Player{
			Name:           s.PlayerName,
			HP:             s.HP,
			MaxHP:          s.MaxHP,
			Level:          s.Level,
			EXP:            s.EXP,
			Gold:           s.Gold,
			Weapon:         s.Weapon,
			Armor:          s.Armor,
			Inventory:      append([]string(nil), s.Inventory...),
			KilledMonsters: toSet(s.KilledMonsters),
			SparedMonsters: toSet(s.SparedMonsters),
		},
		Route:           route,
		Location:        s.Location,
		CompletedEvents: toSet(s.CompletedEvents),
		Flags:           copyFlags(s.Flags),
		CreatedAt:       s.SavedAt,
		UpdatedAt:       time.Now(),
	}
	return gs, nil
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

func copyFlags(m map[string]content.FlagValue) map[string]content.FlagValue {
	if m == nil {
		return make(map[string]content.FlagValue)
	}
	out := make(map[string]content.FlagValue, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
