package content

import "fmt"

// ReferenceError reports a content record referencing an identifier that does
// not exist in the loaded tables. This is an authoring failure: callers must
// surface it rather than substitute a default.
type ReferenceError struct {
	Kind         string // "event", "character", "item", "location", "shop", "puzzle"
	ID           string // the missing identifier
	ReferencedBy string // the record that holds the dangling reference
}

func (e *ReferenceError) Error() string {
	if e.ReferencedBy == "" {
		return fmt.Sprintf("unknown %s %q", e.Kind, e.ID)
	}
	return fmt.Sprintf("unknown %s %q referenced by %s", e.Kind, e.ID, e.ReferencedBy)
}
