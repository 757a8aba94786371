// Package place resolves display names and detail rows from the loosely
// keyed property bags found in geographic datasets.
package place

import (
	"fmt"
	"strings"
)

// Category is one of the five geographic feature classes.
type Category string

const (
	Countries Category = "countries"
	States    Category = "states"
	Cities    Category = "cities"
	Rivers    Category = "rivers"
	Mountains Category = "mountains"
)

var all = []Category{Countries, States, Cities, Rivers, Mountains}

var singular = map[Category]string{
	Countries: "country",
	States:    "state",
	Cities:    "city",
	Rivers:    "river",
	Mountains: "mountain",
}

// All returns the categories in display order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// Parse maps a user supplied string to a Category.
func Parse(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := singular[c]; !ok {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := singular[c]
	return ok
}

// Singular returns the lower-case singular noun, e.g. "river".
func (c Category) Singular() string {
	return singular[c]
}

// Title returns the capitalized category name, e.g. "Rivers".
func (c Category) Title() string {
	return Capitalize(string(c))
}

func (c Category) String() string { return string(c) }
