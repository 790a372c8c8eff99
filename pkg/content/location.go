package content

// ExitBlocked marks an exit that exists in the world but cannot be taken.
const ExitBlocked = "blocked"

// Location represents a place in the game world with exits and entry events.
// Locations are immutable content and are never mutated at runtime.
type Location struct {
	ID          string            `json:"id"`                    // "area.location", also the key in the table
	Name        string            `json:"name"`                  // Display name
	Description string            `json:"description,omitempty"` // Scene description
	Exits       map[string]string `json:"exits,omitempty"`       // Direction → location ID, or ExitBlocked
	Items       []string          `json:"items,omitempty"`       // Items that can be taken here
	Events      []string          `json:"events,omitempty"`      // Fired in order on entry, skipping completed IDs
	SavePoint   bool              `json:"save_point,omitempty"`  // Whether saving is offered here
	SaveLabel   string            `json:"save_label,omitempty"`  // Flavor text shown at the save point
	Shop        string            `json:"shop,omitempty"`        // Optional shop ID
	Puzzle      string            `json:"puzzle,omitempty"`      // Optional puzzle ID
}

// Exit resolves a direction to a target location ID. The second return is
// false when the direction does not exist; a blocked exit returns
// (ExitBlocked, true) and is the caller's problem to explain.
func (l *Location) Exit(direction string) (string, bool) {
	target, ok := l.Exits[direction]
	return target, ok
}

// HasItem reports whether the named item can be taken in this location.
func (l *Location) HasItem(id string) bool {
	for _, it := range l.Items {
		if it == id {
			return true
		}
	}
	return false
}
