package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestData(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644))
	}
	return dir
}

func minimalData() map[string]string {
	return map[string]string{
		"locations.json": `{
			"start": {
				"name": "Start",
				"description": "Where it begins.",
				"exits": {"north": "hall", "west": "blocked"},
				"items": ["bandage"],
				"events": ["intro"],
				"save_point": true
			},
			"hall": {
				"name": "Hall",
				"exits": {"south": "start"},
				"shop": "stand"
			}
		}`,
		"characters.json": `{
			"froggit": {
				"name": "Froggit",
				"stats": {"hp": 30, "atk": 4, "def": 1},
				"acts": ["Check", "Compliment"],
				"dialogue": {"compliment": "Froggit was flattered."}
			}
		}`,
		"items.json": `{
			"bandage": {
				"name": "Bandage",
				"type": "healing",
				"effect": {"hp": 10},
				"battle_use": true
			}
		}`,
		"events.json": `{
			"intro": {
				"type": "cutscene",
				"lines": ["You fell down."],
				"next": "first_fight"
			},
			"first_fight": {
				"type": "battle",
				"enemy": "froggit",
				"can_fight": true,
				"outcomes": {"win": "after"}
			},
			"after": {
				"type": "cutscene",
				"lines": ["It is over."]
			}
		}`,
		"shops.json": `{
			"stand": {
				"name": "Stand",
				"items": ["bandage"]
			}
		}`,
	}
}

func TestLoad_AssignsIDsFromKeys(t *testing.T) {
	dir := writeTestData(t, minimalData())

	tables, err := Load(dir)
	require.NoError(t, err)
	require.NoError(t, tables.Validate())

	loc, err := tables.Location("start")
	require.NoError(t, err)
	assert.Equal(t, "start", loc.ID)
	assert.Equal(t, "Start", loc.Name)

	ch, err := tables.Character("froggit")
	require.NoError(t, err)
	assert.Equal(t, "froggit", ch.ID)

	// Optional tables default to empty maps when the file is absent.
	assert.NotNil(t, tables.Puzzles)
	assert.Empty(t, tables.Puzzles)
}

func TestLoad_MissingRequiredTable(t *testing.T) {
	files := minimalData()
	delete(files, "events.json")
	dir := writeTestData(t, files)

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	files := minimalData()
	files["items.json"] = `{"bandage": {"name": "Bandage", "type": "healing", "effect": {}, "healz": 10}}`
	dir := writeTestData(t, files)

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestAccessors_UnknownIDIsReferenceError(t *testing.T) {
	dir := writeTestData(t, minimalData())
	tables, err := Load(dir)
	require.NoError(t, err)

	_, err = tables.Event("nope")
	var refErr *ReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "event", refErr.Kind)
	assert.Equal(t, "nope", refErr.ID)
}

func TestValidate_CollectsDanglingReferences(t *testing.T) {
	dir := writeTestData(t, minimalData())
	tables, err := Load(dir)
	require.NoError(t, err)

	bad := tables.Events["first_fight"]
	bad.Enemy = "ghost"
	bad.Outcomes.Win = "missing_event"
	tables.Events["first_fight"] = bad

	loc := tables.Locations["hall"]
	loc.Exits["east"] = "nowhere"
	tables.Locations["hall"] = loc

	err = tables.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown character "ghost"`)
	assert.Contains(t, err.Error(), `unknown event "missing_event"`)
	assert.Contains(t, err.Error(), `unknown location "nowhere"`)
}

func TestValidate_EventShapes(t *testing.T) {
	dir := writeTestData(t, minimalData())
	tables, err := Load(dir)
	require.NoError(t, err)

	tables.Events["empty_choice"] = Event{ID: "empty_choice", Type: EventChoice}
	tables.Events["no_message"] = Event{ID: "no_message", Type: EventGameOver}
	tables.Events["bad_type"] = Event{ID: "bad_type", Type: "dream"}

	err = tables.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no choices")
	assert.Contains(t, err.Error(), "has no message")
	assert.Contains(t, err.Error(), `unknown type "dream"`)
}

func TestCharacter_Fallbacks(t *testing.T) {
	bare := Character{ID: "dummy", Name: "Dummy"}
	assert.Equal(t, []string{"Check"}, bare.ActVerbs())
	assert.Equal(t, "You poke Dummy. Nothing happens.", bare.ActLine("Poke"))

	assert.True(t, bare.ValidOnRoute(RouteGenocide))
	scoped := Character{ID: "dummy", Routes: []Route{RouteNeutral}}
	assert.True(t, scoped.ValidOnRoute(RouteNeutral))
	assert.False(t, scoped.ValidOnRoute(RouteGenocide))
}

func TestItem_UsableOnRoute(t *testing.T) {
	open := Item{ID: "bandage"}
	assert.True(t, open.UsableOnRoute(RouteNeutral))

	locked := Item{ID: "real_knife", Route: RouteGenocide}
	assert.True(t, locked.UsableOnRoute(RouteGenocide))
	assert.False(t, locked.UsableOnRoute(RoutePacifist))
}

func TestLocation_Exit(t *testing.T) {
	loc := Location{Exits: map[string]string{"north": "hall", "west": ExitBlocked}}

	target, ok := loc.Exit("north")
	assert.True(t, ok)
	assert.Equal(t, "hall", target)

	target, ok = loc.Exit("west")
	assert.True(t, ok)
	assert.Equal(t, ExitBlocked, target)

	_, ok = loc.Exit("east")
	assert.False(t, ok)
}
