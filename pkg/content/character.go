package content

import (
	"fmt"
	"strings"
)

// Stats are the base combat statistics for a character.
type Stats struct {
	HP  int `json:"hp"`
	Atk int `json:"atk"`
	Def int `json:"def"`
}

// Character is used both as a friendly NPC and as a battle enemy.
// Immutable content; battle-time HP lives in the battle state, not here.
type Character struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Stats       Stats             `json:"stats"`
	Routes      []Route           `json:"routes,omitempty"`   // Routes this character appears on; empty means all
	Acts        []string          `json:"acts,omitempty"`     // ACT verbs available in battle
	Dialogue    map[string]string `json:"dialogue,omitempty"` // ACT verb (lowercased) → canned response
}

// ValidOnRoute reports whether the character appears on the given route.
// A character with no route flags is valid everywhere.
func (c *Character) ValidOnRoute(r Route) bool {
	if len(c.Routes) == 0 {
		return true
	}
	for _, cr := range c.Routes {
		if cr == r {
			return true
		}
	}
	return false
}

// ActVerbs returns the character's ACT verbs. A missing acts list is a
// tolerated content gap and falls back to Check only.
func (c *Character) ActVerbs() []string {
	if len(c.Acts) == 0 {
		return []string{"Check"}
	}
	return c.Acts
}

// ActLine returns the canned response for an ACT verb. A missing dialogue
// entry is a tolerated content gap: a generic line is built from the verb and
// the character's name instead.
func (c *Character) ActLine(verb string) string {
	if line, ok := c.Dialogue[strings.ToLower(verb)]; ok {
		return line
	}
	return fmt.Sprintf("You %s %s. Nothing happens.", strings.ToLower(verb), c.Name)
}
