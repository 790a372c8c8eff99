package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Tables holds the immutable content the engine consumes at startup.
// Locations, Characters, Items and Events are required; Shops and Puzzles are
// optional and only existence-checked by the core.
type Tables struct {
	Locations  map[string]Location  `json:"locations"`
	Characters map[string]Character `json:"characters"`
	Items      map[string]Item      `json:"items"`
	Events     map[string]Event     `json:"events"`
	Shops      map[string]Shop      `json:"shops,omitempty"`
	Puzzles    map[string]Puzzle    `json:"puzzles,omitempty"`
}

// Load reads the content tables from a data directory. Each table lives in
// its own JSON file keyed by identifier; record IDs are set from the map keys.
// Decoding is strict: unknown fields are authoring errors.
func Load(dir string) (*Tables, error) {
	t := &Tables{}

	if err := loadTable(filepath.Join(dir, "locations.json"), &t.Locations, false); err != nil {
		return nil, err
	}
	if err := loadTable(filepath.Join(dir, "characters.json"), &t.Characters, false); err != nil {
		return nil, err
	}
	if err := loadTable(filepath.Join(dir, "items.json"), &t.Items, false); err != nil {
		return nil, err
	}
	if err := loadTable(filepath.Join(dir, "events.json"), &t.Events, false); err != nil {
		return nil, err
	}
	if err := loadTable(filepath.Join(dir, "shops.json"), &t.Shops, true); err != nil {
		return nil, err
	}
	if err := loadTable(filepath.Join(dir, "puzzles.json"), &t.Puzzles, true); err != nil {
		return nil, err
	}

	t.assignIDs()
	return t, nil
}

func loadTable[T any](path string, dst *map[string]T, optional bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			*dst = map[string]T{}
			return nil
		}
		return fmt.Errorf("failed to read content table %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("failed to decode content table %s: %w", path, err)
	}
	return nil
}

// assignIDs copies map keys into the records' ID fields.
func (t *Tables) assignIDs() {
	for k, v := range t.Locations {
		v.ID = k
		t.Locations[k] = v
	}
	for k, v := range t.Characters {
		v.ID = k
		t.Characters[k] = v
	}
	for k, v := range t.Items {
		v.ID = k
		t.Items[k] = v
	}
	for k, v := range t.Events {
		v.ID = k
		t.Events[k] = v
	}
	for k, v := range t.Shops {
		v.ID = k
		t.Shops[k] = v
	}
	for k, v := range t.Puzzles {
		v.ID = k
		t.Puzzles[k] = v
	}
}

// Location returns the location for id or a ReferenceError.
func (t *Tables) Location(id string) (Location, error) {
	loc, ok := t.Locations[id]
	if !ok {
		return Location{}, &ReferenceError{Kind: "location", ID: id}
	}
	return loc, nil
}

// Character returns the character for id or a ReferenceError.
func (t *Tables) Character(id string) (Character, error) {
	c, ok := t.Characters[id]
	if !ok {
		return Character{}, &ReferenceError{Kind: "character", ID: id}
	}
	return c, nil
}

// Item returns the item for id or a ReferenceError.
func (t *Tables) Item(id string) (Item, error) {
	it, ok := t.Items[id]
	if !ok {
		return Item{}, &ReferenceError{Kind: "item", ID: id}
	}
	return it, nil
}

// Event returns the event for id or a ReferenceError.
func (t *Tables) Event(id string) (Event, error) {
	ev, ok := t.Events[id]
	if !ok {
		return Event{}, &ReferenceError{Kind: "event", ID: id}
	}
	return ev, nil
}

// Shop returns the shop for id or a ReferenceError.
func (t *Tables) Shop(id string) (Shop, error) {
	s, ok := t.Shops[id]
	if !ok {
		return Shop{}, &ReferenceError{Kind: "shop", ID: id}
	}
	return s, nil
}

// Validate checks every cross-table reference and per-type event shape.
// All problems are collected and returned as one error so authors can fix a
// batch at a time. Dangling references are fatal, never worked around.
func (t *Tables) Validate() error {
	var problems []string

	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}
	checkEvent := func(id, by string) {
		if id == "" {
			return
		}
		if _, ok := t.Events[id]; !ok {
			report("unknown event %q referenced by %s", id, by)
		}
	}
	checkItem := func(id, by string) {
		if id == "" {
			return
		}
		if _, ok := t.Items[id]; !ok {
			report("unknown item %q referenced by %s", id, by)
		}
	}

	for id, loc := range t.Locations {
		by := "location " + id
		for dir, target := range loc.Exits {
			if target == ExitBlocked {
				continue
			}
			if _, ok := t.Locations[target]; !ok {
				report("unknown location %q referenced by %s exit %q", target, by, dir)
			}
		}
		for _, item := range loc.Items {
			checkItem(item, by)
		}
		for _, ev := range loc.Events {
			checkEvent(ev, by)
		}
		if loc.Shop != "" {
			if _, ok := t.Shops[loc.Shop]; !ok {
				report("unknown shop %q referenced by %s", loc.Shop, by)
			}
		}
		if loc.Puzzle != "" {
			if _, ok := t.Puzzles[loc.Puzzle]; !ok {
				report("unknown puzzle %q referenced by %s", loc.Puzzle, by)
			}
		}
	}

	for id, ev := range t.Events {
		by := fmt.Sprintf("event %s (%s)", id, ev.Type)
		switch ev.Type {
		case EventCutscene, EventDialogue, EventMinigame:
			if ev.Speaker != "" {
				if _, ok := t.Characters[ev.Speaker]; !ok {
					report("unknown character %q referenced by %s", ev.Speaker, by)
				}
			}
			checkEvent(ev.Next, by)
			checkItem(ev.GiveItem, by)
			if ev.RouteFlag != "" && !ev.RouteFlag.Valid() {
				report("invalid route %q in %s", ev.RouteFlag, by)
			}
		case EventBattle:
			if ev.Enemy == "" {
				report("%s has no enemy", by)
			} else if _, ok := t.Characters[ev.Enemy]; !ok {
				report("unknown character %q referenced by %s", ev.Enemy, by)
			}
			checkEvent(ev.Outcomes.Win, by)
			checkEvent(ev.Outcomes.Lose, by)
			checkEvent(ev.Outcomes.Spare, by)
		case EventChoice:
			if len(ev.Choices) == 0 {
				report("%s has no choices", by)
			}
			for i, c := range ev.Choices {
				checkEvent(c.Event, fmt.Sprintf("%s choice %d", by, i))
			}
		case EventConditional:
			if len(ev.Branches) == 0 {
				report("%s has no branches", by)
			}
			for i, b := range ev.Branches {
				bby := fmt.Sprintf("%s branch %d", by, i)
				checkEvent(b.Event, bby)
				checkItem(b.If.HasItem, bby)
				if b.If.Route != "" && !b.If.Route.Valid() {
					report("invalid route %q in %s", b.If.Route, bby)
				}
			}
			checkEvent(ev.Default, by)
		case EventFlagSet:
			if ev.Flag == "" {
				report("%s has no flag name", by)
			}
			checkEvent(ev.Next, by)
		case EventGameOver:
			if ev.Message == "" {
				report("%s has no message", by)
			}
		case EventScreenChange:
			if ev.Target == "" {
				report("%s has no target", by)
			}
		default:
			report("event %s has unknown type %q", id, ev.Type)
		}
	}

	for id, shop := range t.Shops {
		for _, item := range shop.Items {
			checkItem(item, "shop "+id)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("content validation failed:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}
