package content

// ItemType discriminates item behavior.
type ItemType string

const (
	ItemHealing ItemType = "healing"
	ItemWeapon  ItemType = "weapon"
	ItemArmor   ItemType = "armor"
	ItemKey     ItemType = "key"
)

// Effect is the numeric effect bag of an item.
type Effect struct {
	HP  int `json:"hp,omitempty"`  // Healing amount, clamped to max HP on use
	Atk int `json:"atk,omitempty"` // Attack bonus while equipped
	Def int `json:"def,omitempty"` // Defense bonus while equipped

	// Aux holds auxiliary modifiers with no engine behavior of their own
	// (e.g. "inv", "speed"); they ride along for presentation and content.
	Aux map[string]int `json:"aux,omitempty"`
}

// Item is an immutable content record.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Type        ItemType `json:"type"`
	Effect      Effect   `json:"effect"`
	Price       int      `json:"price,omitempty"`      // Shop price; 0 means not for sale
	Equippable  bool     `json:"equippable,omitempty"` // Weapons and armor only
	BattleUse   bool     `json:"battle_use,omitempty"` // Usable from the battle ITEM menu
	Route       Route    `json:"route,omitempty"`      // Optional route restriction (e.g. genocide-only)
}

// UsableOnRoute reports whether the item's optional route restriction permits
// the given route.
func (i *Item) UsableOnRoute(r Route) bool {
	return i.Route == "" || i.Route == r
}
