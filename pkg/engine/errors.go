package engine

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition rejects commands that are not valid in the current
// mode, such as battle actions outside a battle or loading mid-battle.
// Rejected means rejected: no state changes.
var ErrIllegalTransition = errors.New("illegal transition")

// AuthoringError reports content that is structurally present but
// semantically broken at runtime, like a conditional with no matching branch
// and no default. Surfaced, never silently dropped.
type AuthoringError struct {
	EventID string
	Reason  string
}

func (e *AuthoringError) Error() string {
	return fmt.Sprintf("authoring error in event %s: %s", e.EventID, e.Reason)
}
