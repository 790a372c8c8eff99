// Package narrator is the optional text-embellishment port. An Embellisher
// rewrites a canned line in a character's voice; the engine works identically
// with the port absent or failing, falling back to the canned line verbatim.
package narrator

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// EmbellishTimeout bounds how long the core waits on the port. The port is
// flavor only and must never stall the state machine.
const EmbellishTimeout = 3 * time.Second

// Embellisher rewrites a line in the speaker's style. Implementations may be
// backed by a network call, a cache, or nothing at all.
type Embellisher interface {
	Embellish(ctx context.Context, line string, speaker string) (string, error)
}

// Decorate applies the embellisher with a bounded timeout, returning the
// canned line verbatim on absence, error, or empty output.
func Decorate(ctx context.Context, e Embellisher, line, speaker string, logger *slog.Logger) string {
	if e == nil || line == "" {
		return line
	}

	ctx, cancel := context.WithTimeout(ctx, EmbellishTimeout)
	defer cancel()

	out, err := e.Embellish(ctx, line, speaker)
	if err != nil {
		if logger != nil {
			logger.Debug("embellishment failed, using canned line", "error", err, "speaker", speaker)
		}
		return line
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return line
	}
	return out
}
