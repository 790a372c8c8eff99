package main

import (
	"fmt"
	"os"
	"regexp"

	"github.com/jwebster45206/tale-engine/pkg/content"
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_]*$`)

func main() {
	dir := "./data"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	fmt.Printf("Validating content in %s...\n", dir)

	tables, err := content.Load(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	if err := tables.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed:\n%v\n", err)
		os.Exit(1)
	}

	var badIDs []string
	for _, ids := range [][]string{
		keys(tables.Locations), keys(tables.Characters), keys(tables.Items),
		keys(tables.Events), keys(tables.Shops), keys(tables.Puzzles),
	} {
		for _, id := range ids {
			if !idPattern.MatchString(id) {
				badIDs = append(badIDs, id)
			}
		}
	}
	if len(badIDs) > 0 {
		fmt.Fprintf(os.Stderr, "Validation failed: IDs must be lowercase snake_case: %v\n", badIDs)
		os.Exit(1)
	}

	fmt.Printf("Content is valid: %d locations, %d characters, %d items, %d events, %d shops, %d puzzles\n",
		len(tables.Locations), len(tables.Characters), len(tables.Items),
		len(tables.Events), len(tables.Shops), len(tables.Puzzles))
}

func keys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
