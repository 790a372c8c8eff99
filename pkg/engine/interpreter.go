package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jwebster45206/tale-engine/pkg/content"
	"github.com/jwebster45206/tale-engine/pkg/narrator"
	"github.com/jwebster45206/tale-engine/pkg/state"
)

// maxResolveDepth bounds recursive resolution through flag_set chains and
// conditionals. Content that chains deeper than this is looping.
const maxResolveDepth = 64

// FlagInventoryFull is set when an event item grant is dropped for lack of
// space. The grant itself fails silently, per the content contract.
const FlagInventoryFull = "inventory_full"

// Interpreter walks the event graph. It owns dialogue sequencing, choice
// presentation, conditional branching, flag mutation, item granting, route
// assignment and terminal states. It never renders.
type Interpreter struct {
	tables      *content.Tables
	embellisher narrator.Embellisher
	logger      *slog.Logger
}

// NewInterpreter creates an interpreter over loaded content tables.
// The embellisher may be nil; canned lines are used verbatim then.
func NewInterpreter(tables *content.Tables, embellisher narrator.Embellisher, logger *slog.Logger) *Interpreter {
	return &Interpreter{
		tables:      tables,
		embellisher: embellisher,
		logger:      logger,
	}
}

// Resolve interprets the event with the given ID against the game state and
// returns the next directive. Unknown IDs are content errors and fail loudly.
func (in *Interpreter) Resolve(ctx context.Context, gs *state.GameState, eventID string) (Directive, error) {
	return in.resolve(ctx, gs, eventID, 0)
}

func (in *Interpreter) resolve(ctx context.Context, gs *state.GameState, eventID string, depth int) (Directive, error) {
	if depth >= maxResolveDepth {
		return Directive{}, &AuthoringError{EventID: eventID, Reason: "event chain exceeds maximum resolution depth"}
	}

	ev, err := in.tables.Event(eventID)
	if err != nil {
		return Directive{}, err
	}

	switch ev.Type {
	case content.EventCutscene, content.EventDialogue, content.EventMinigame:
		return in.resolveNarration(ctx, gs, ev, depth)
	case content.EventBattle:
		// Not marked completed here: completion happens when the battle
		// resolves, keyed by this event's outcome mapping.
		return Directive{Type: DirectiveEnterBattle, BattleEvent: ev.ID}, nil
	case content.EventChoice:
		return in.resolveChoice(ev)
	case content.EventConditional:
		return in.resolveConditional(ctx, gs, ev, depth)
	case content.EventFlagSet:
		return in.resolveFlagSet(ctx, gs, ev, depth)
	case content.EventGameOver:
		gs.CompleteEvent(ev.ID)
		gs.Ended = true
		gs.EndText = ev.Message
		return Directive{Type: DirectiveTerminal, Message: ev.Message}, nil
	case content.EventScreenChange:
		gs.CompleteEvent(ev.ID)
		return Directive{Type: DirectiveScreenChange, Target: ev.Target}, nil
	default:
		return Directive{}, &AuthoringError{EventID: ev.ID, Reason: "unknown event type " + string(ev.Type)}
	}
}

// resolveNarration handles cutscene, dialogue and minigame nodes. State
// mutations happen here, at resolve time, so that presentation-side line
// skipping can never skip past them.
func (in *Interpreter) resolveNarration(ctx context.Context, gs *state.GameState, ev content.Event, depth int) (Directive, error) {
	var speaker string
	if ev.Speaker != "" {
		ch, err := in.tables.Character(ev.Speaker)
		if err != nil {
			return Directive{}, err
		}
		speaker = ch.Name
	}

	if ev.GiveItem != "" {
		if _, err := in.tables.Item(ev.GiveItem); err != nil {
			return Directive{}, err
		}
		if err := gs.AddItem(ev.GiveItem); err != nil {
			if errors.Is(err, state.ErrInventoryFull) {
				gs.SetFlag(FlagInventoryFull, content.BoolFlag(true))
				if in.logger != nil {
					in.logger.Debug("item grant dropped, inventory full",
						"event", ev.ID,
						"item", ev.GiveItem)
				}
			} else {
				return Directive{}, err
			}
		}
	}

	if ev.RouteFlag != "" {
		// Last writer wins: later route-flag events override earlier ones.
		gs.Route = ev.RouteFlag
	}

	gs.CompleteEvent(ev.ID)

	if len(ev.Lines) == 0 {
		if ev.Next != "" {
			return in.resolve(ctx, gs, ev.Next, depth+1)
		}
		return awaitDirective(), nil
	}

	lines := make([]string, len(ev.Lines))
	for i, line := range ev.Lines {
		lines[i] = narrator.Decorate(ctx, in.embellisher, line, speaker, in.logger)
	}

	return Directive{
		Type:    DirectiveShowText,
		Speaker: speaker,
		Lines:   lines,
		Then:    ev.Next,
	}, nil
}

func (in *Interpreter) resolveChoice(ev content.Event) (Directive, error) {
	if len(ev.Choices) == 0 {
		return Directive{}, &AuthoringError{EventID: ev.ID, Reason: "choice event has no options"}
	}
	opts := make([]ChoiceOption, len(ev.Choices))
	for i, c := range ev.Choices {
		opts[i] = ChoiceOption{Index: i, Text: c.Text}
	}
	// No state committed: presenting choices is always safe to re-render.
	return Directive{Type: DirectiveChoices, Choices: opts, Source: ev.ID}, nil
}

// resolveConditional evaluates branch predicates in declaration order.
// First satisfied predicate wins; no match and no default is an authoring
// error, surfaced rather than dropped.
func (in *Interpreter) resolveConditional(ctx context.Context, gs *state.GameState, ev content.Event, depth int) (Directive, error) {
	for _, b := range ev.Branches {
		if in.predicateHolds(gs, b.If) {
			return in.resolve(ctx, gs, b.Event, depth+1)
		}
	}
	if ev.Default != "" {
		return in.resolve(ctx, gs, ev.Default, depth+1)
	}
	return Directive{}, &AuthoringError{EventID: ev.ID, Reason: "no branch matched and no default is set"}
}

func (in *Interpreter) predicateHolds(gs *state.GameState, p content.Predicate) bool {
	if p.Route != "" {
		return gs.Route == p.Route
	}
	if p.Flag != "" {
		if p.Equals != nil {
			return gs.Flag(p.Flag).Equal(*p.Equals)
		}
		return gs.FlagTrue(p.Flag)
	}
	if p.HasItem != "" {
		return gs.HasItem(p.HasItem)
	}
	return false
}

// resolveFlagSet sets the flag and chains immediately; this node type never
// blocks on player input.
func (in *Interpreter) resolveFlagSet(ctx context.Context, gs *state.GameState, ev content.Event, depth int) (Directive, error) {
	if ev.Flag == "" {
		return Directive{}, &AuthoringError{EventID: ev.ID, Reason: "flag_set event has no flag name"}
	}
	value := content.BoolFlag(true)
	if ev.Value != nil {
		value = *ev.Value
	}
	gs.SetFlag(ev.Flag, value)
	gs.CompleteEvent(ev.ID)

	if ev.Next != "" {
		return in.resolve(ctx, gs, ev.Next, depth+1)
	}
	return awaitDirective(), nil
}

// EnterLocation fires the first unfinished event of the player's current
// location, in list order. Already-completed events never re-fire on entry.
func (in *Interpreter) EnterLocation(ctx context.Context, gs *state.GameState) (Directive, error) {
	loc, err := in.tables.Location(gs.Location)
	if err != nil {
		return Directive{}, err
	}
	for _, evID := range loc.Events {
		if gs.Completed(evID) {
			continue
		}
		return in.Resolve(ctx, gs, evID)
	}
	return awaitDirective(), nil
}

// SelectChoice commits one option of a choice event and resolves its outcome.
func (in *Interpreter) SelectChoice(ctx context.Context, gs *state.GameState, ev content.Event, index int) (Directive, error) {
	if index < 0 || index >= len(ev.Choices) {
		return Directive{}, &AuthoringError{EventID: ev.ID, Reason: "choice index out of range"}
	}
	gs.CompleteEvent(ev.ID)
	return in.Resolve(ctx, gs, ev.Choices[index].Event)
}
