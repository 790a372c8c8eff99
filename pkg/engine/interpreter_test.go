package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/tale-engine/pkg/content"
	"github.com/jwebster45206/tale-engine/pkg/state"
)

// testTables builds a small in-memory content set shared by the engine tests.
func testTables() *content.Tables {
	return &content.Tables{
		Locations: map[string]content.Location{
			"start": {
				ID:          "start",
				Name:        "Start",
				Description: "Golden flowers grow here.",
				Exits:       map[string]string{"north": "hall", "west": content.ExitBlocked},
				Items:       []string{"stick"},
				Events:      []string{"intro"},
				SavePoint:   true,
				SaveLabel:   "You are filled with determination.",
			},
			"hall": {
				ID:     "hall",
				Name:   "Hall",
				Exits:  map[string]string{"south": "start"},
				Events: []string{"hall_check"},
				Shop:   "stand",
			},
		},
		Characters: map[string]content.Character{
			"toriel": {
				ID:    "toriel",
				Name:  "Toriel",
				Stats: content.Stats{HP: 80, Atk: 6, Def: 1},
			},
			"froggit": {
				ID:    "froggit",
				Name:  "Froggit",
				Stats: content.Stats{HP: 30, Atk: 4, Def: 1},
				Acts:  []string{"Check", "Compliment"},
			},
		},
		Items: map[string]content.Item{
			"stick": {
				ID:         "stick",
				Name:       "Stick",
				Type:       content.ItemWeapon,
				Effect:     content.Effect{Atk: 1},
				Equippable: true,
			},
			"bandage": {
				ID:        "bandage",
				Name:      "Bandage",
				Type:      content.ItemHealing,
				Effect:    content.Effect{HP: 10},
				Price:     7,
				BattleUse: true,
			},
			"pie": {
				ID:     "pie",
				Name:   "Butterscotch Pie",
				Type:   content.ItemHealing,
				Effect: content.Effect{HP: 99},
			},
		},
		Events: map[string]content.Event{
			"intro": {
				ID:    "intro",
				Type:  content.EventCutscene,
				Lines: []string{"You fell into the underground."},
				Next:  "intro_choice",
			},
			"intro_choice": {
				ID:   "intro_choice",
				Type: content.EventChoice,
				Choices: []content.Choice{
					{Text: "Fight the froggit", Event: "froggit_fight"},
					{Text: "Talk to Toriel", Event: "toriel_talk"},
				},
			},
			"froggit_fight": {
				ID:       "froggit_fight",
				Type:     content.EventBattle,
				Enemy:    "froggit",
				CanFight: true,
				CanFlee:  true,
				CanSpare: true,
				Outcomes: content.BattleOutcomes{Win: "won_text", Spare: "spared_text"},
			},
			"won_text": {
				ID:    "won_text",
				Type:  content.EventCutscene,
				Lines: []string{"The hall falls silent."},
			},
			"spared_text": {
				ID:    "spared_text",
				Type:  content.EventCutscene,
				Lines: []string{"Froggit hops away."},
			},
			"toriel_talk": {
				ID:       "toriel_talk",
				Type:     content.EventDialogue,
				Speaker:  "toriel",
				Lines:    []string{"Welcome, my child."},
				GiveItem: "pie",
			},
			"hall_check": {
				ID:   "hall_check",
				Type: content.EventConditional,
				Branches: []content.Branch{
					{If: content.Predicate{Route: content.RouteGenocide}, Event: "hall_silent"},
					{If: content.Predicate{Flag: "fought"}, Event: "hall_quiet"},
				},
				Default: "hall_busy",
			},
			"hall_silent": {ID: "hall_silent", Type: content.EventCutscene, Lines: []string{"Nobody came."}},
			"hall_quiet":  {ID: "hall_quiet", Type: content.EventCutscene, Lines: []string{"The hall is quiet."}},
			"hall_busy":   {ID: "hall_busy", Type: content.EventCutscene, Lines: []string{"A froggit blocks the way."}},
			"mark_fought": {
				ID:   "mark_fought",
				Type: content.EventFlagSet,
				Flag: "fought",
				Next: "hall_quiet",
			},
			"the_end": {
				ID:      "the_end",
				Type:    content.EventGameOver,
				Message: "THE END",
			},
			"to_credits": {
				ID:     "to_credits",
				Type:   content.EventScreenChange,
				Target: "credits",
			},
		},
		Shops: map[string]content.Shop{
			"stand": {ID: "stand", Name: "Stand", Items: []string{"bandage"}},
		},
		Puzzles: map[string]content.Puzzle{},
	}
}

func newTestInterpreter() *Interpreter {
	return NewInterpreter(testTables(), nil, nil)
}

func TestResolve_Narration(t *testing.T) {
	in := newTestInterpreter()
	gs := state.NewGameState("Frisk", "start")

	d, err := in.Resolve(context.Background(), gs, "intro")
	require.NoError(t, err)

	assert.Equal(t, DirectiveShowText, d.Type)
	assert.Equal(t, []string{"You fell into the underground."}, d.Lines)
	assert.Equal(t, "intro_choice", d.Then)
	assert.Empty(t, d.Speaker)
	assert.True(t, gs.Completed("intro"))
}

func TestResolve_DialogueGrantsItemAndNamesSpeaker(t *testing.T) {
	in := newTestInterpreter()
	gs := state.NewGameState("Frisk", "start")

	d, err := in.Resolve(context.Background(), gs, "toriel_talk")
	require.NoError(t, err)

	assert.Equal(t, "Toriel", d.Speaker)
	assert.True(t, gs.HasItem("pie"))
}

func TestResolve_GiveItemInventoryFullSetsFlag(t *testing.T) {
	in := newTestInterpreter()
	gs := state.NewGameState("Frisk", "start")
	for i := 0; i < state.InventoryCapacity; i++ {
		require.NoError(t, gs.AddItem("bandage"))
	}

	d, err := in.Resolve(context.Background(), gs, "toriel_talk")
	require.NoError(t, err)

	// The grant is dropped silently; the event still plays out.
	assert.Equal(t, DirectiveShowText, d.Type)
	assert.False(t, gs.HasItem("pie"))
	assert.True(t, gs.FlagTrue(FlagInventoryFull))
	assert.True(t, gs.Completed("toriel_talk"))
}

func TestResolve_ChoiceCommitsNothing(t *testing.T) {
	in := newTestInterpreter()
	gs := state.NewGameState("Frisk", "start")

	d, err := in.Resolve(context.Background(), gs, "intro_choice")
	require.NoError(t, err)

	assert.Equal(t, DirectiveChoices, d.Type)
	assert.Equal(t, "intro_choice", d.Source)
	assert.Len(t, d.Choices, 2)
	assert.False(t, gs.Completed("intro_choice"))
}

func TestSelectChoice_CompletesAndResolvesOutcome(t *testing.T) {
	in := newTestInterpreter()
	gs := state.NewGameState("Frisk", "start")

	ev, err := in.tables.Event("intro_choice")
	require.NoError(t, err)

	d, err := in.SelectChoice(context.Background(), gs, ev, 1)
	require.NoError(t, err)

	assert.True(t, gs.Completed("intro_choice"))
	assert.Equal(t, DirectiveShowText, d.Type)
	assert.Equal(t, "Toriel", d.Speaker)
}

func TestSelectChoice_IndexOutOfRange(t *testing.T) {
	in := newTestInterpreter()
	gs := state.NewGameState("Frisk", "start")

	ev, err := in.tables.Event("intro_choice")
	require.NoError(t, err)

	_, err = in.SelectChoice(context.Background(), gs, ev, 5)
	var authErr *AuthoringError
	assert.ErrorAs(t, err, &authErr)
}

func TestResolve_BattleDoesNotComplete(t *testing.T) {
	in := newTestInterpreter()
	gs := state.NewGameState("Frisk", "start")

	d, err := in.Resolve(context.Background(), gs, "froggit_fight")
	require.NoError(t, err)

	assert.Equal(t, DirectiveEnterBattle, d.Type)
	assert.Equal(t, "froggit_fight", d.BattleEvent)
	assert.False(t, gs.Completed("froggit_fight"))
}

func TestResolve_ConditionalFirstMatchWins(t *testing.T) {
	in := newTestInterpreter()
	ctx := context.Background()

	gs := state.NewGameState("Frisk", "hall")
	gs.Route = content.RouteGenocide
	gs.SetFlag("fought", content.BoolFlag(true))
	d, err := in.Resolve(ctx, gs, "hall_check")
	require.NoError(t, err)
	assert.Equal(t, []string{"Nobody came."}, d.Lines)

	gs = state.NewGameState("Frisk", "hall")
	gs.SetFlag("fought", content.BoolFlag(true))
	d, err = in.Resolve(ctx, gs, "hall_check")
	require.NoError(t, err)
	assert.Equal(t, []string{"The hall is quiet."}, d.Lines)

	gs = state.NewGameState("Frisk", "hall")
	d, err = in.Resolve(ctx, gs, "hall_check")
	require.NoError(t, err)
	assert.Equal(t, []string{"A froggit blocks the way."}, d.Lines)
}

func TestResolve_ConditionalNoMatchNoDefault(t *testing.T) {
	in := newTestInterpreter()
	in.tables.Events["dead_end"] = content.Event{
		ID:   "dead_end",
		Type: content.EventConditional,
		Branches: []content.Branch{
			{If: content.Predicate{Flag: "never"}, Event: "hall_quiet"},
		},
	}
	gs := state.NewGameState("Frisk", "hall")

	_, err := in.Resolve(context.Background(), gs, "dead_end")
	var authErr *AuthoringError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "dead_end", authErr.EventID)
}

func TestResolve_FlagSetChainsImmediately(t *testing.T) {
	in := newTestInterpreter()
	gs := state.NewGameState("Frisk", "hall")

	d, err := in.Resolve(context.Background(), gs, "mark_fought")
	require.NoError(t, err)

	assert.True(t, gs.FlagTrue("fought"))
	assert.True(t, gs.Completed("mark_fought"))
	// The chain resolved through to the narration without pausing.
	assert.Equal(t, []string{"The hall is quiet."}, d.Lines)
}

func TestResolve_FlagSetNumericValue(t *testing.T) {
	in := newTestInterpreter()
	v := content.NumFlag(3)
	in.tables.Events["count_candles"] = content.Event{
		ID:    "count_candles",
		Type:  content.EventFlagSet,
		Flag:  "candles",
		Value: &v,
	}
	gs := state.NewGameState("Frisk", "hall")

	d, err := in.Resolve(context.Background(), gs, "count_candles")
	require.NoError(t, err)
	assert.Equal(t, DirectiveAwait, d.Type)
	assert.True(t, gs.Flag("candles").Equal(content.NumFlag(3)))
}

func TestResolve_GameOver(t *testing.T) {
	in := newTestInterpreter()
	gs := state.NewGameState("Frisk", "hall")

	d, err := in.Resolve(context.Background(), gs, "the_end")
	require.NoError(t, err)

	assert.Equal(t, DirectiveTerminal, d.Type)
	assert.Equal(t, "THE END", d.Message)
	assert.True(t, gs.Ended)
	assert.Equal(t, "THE END", gs.EndText)
}

func TestResolve_ScreenChange(t *testing.T) {
	in := newTestInterpreter()
	gs := state.NewGameState("Frisk", "hall")

	d, err := in.Resolve(context.Background(), gs, "to_credits")
	require.NoError(t, err)

	assert.Equal(t, DirectiveScreenChange, d.Type)
	assert.Equal(t, "credits", d.Target)
}

func TestResolve_UnknownEventFailsLoudly(t *testing.T) {
	in := newTestInterpreter()
	gs := state.NewGameState("Frisk", "hall")

	_, err := in.Resolve(context.Background(), gs, "no_such_event")
	var refErr *content.ReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "event", refErr.Kind)
}

func TestResolve_DepthGuardCatchesLoops(t *testing.T) {
	in := newTestInterpreter()
	in.tables.Events["loop_a"] = content.Event{ID: "loop_a", Type: content.EventFlagSet, Flag: "a", Next: "loop_b"}
	in.tables.Events["loop_b"] = content.Event{ID: "loop_b", Type: content.EventFlagSet, Flag: "b", Next: "loop_a"}
	gs := state.NewGameState("Frisk", "hall")

	_, err := in.Resolve(context.Background(), gs, "loop_a")
	var authErr *AuthoringError
	assert.ErrorAs(t, err, &authErr)
}

func TestEnterLocation_SkipsCompletedEvents(t *testing.T) {
	in := newTestInterpreter()
	gs := state.NewGameState("Frisk", "start")

	d, err := in.EnterLocation(context.Background(), gs)
	require.NoError(t, err)
	assert.Equal(t, DirectiveShowText, d.Type)

	// Re-entering after completion finds nothing left to fire.
	d, err = in.EnterLocation(context.Background(), gs)
	require.NoError(t, err)
	assert.Equal(t, DirectiveAwait, d.Type)
}
