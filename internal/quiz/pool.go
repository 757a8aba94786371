// Package quiz builds multiple-choice questions from dataset names, a
// trivia bank and a deterministic daily challenge.
package quiz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mapcrown/mapcrown/internal/dataset"
	"github.com/mapcrown/mapcrown/internal/place"
)

// OptionCount is the number of choices in every question.
const OptionCount = 4

var (
	// ErrPoolExhausted is matched by every *PoolExhaustionError.
	ErrPoolExhausted = errors.New("not enough data")
	ErrNoQuestion    = errors.New("no question pending")
	ErrInvalidChoice = errors.New("choice out of range")
)

// PoolExhaustionError reports a pool with fewer than OptionCount distinct names.
type PoolExhaustionError struct {
	Category place.Category
	Size     int
}

func (e *PoolExhaustionError) Error() string {
	return fmt.Sprintf("not enough data for a %s quiz: %d distinct names, need %d", e.Category, e.Size, OptionCount)
}

// Is makes errors.Is(err, ErrPoolExhausted) succeed.
func (e *PoolExhaustionError) Is(target error) bool { return target == ErrPoolExhausted }

// Entry is one quiz-able name and where it came from.
type Entry struct {
	Name      string     `json:"name"`
	FeatureID int        `json:"featureId"`
	Clue      *place.Row `json:"clue,omitempty"`
}

// Pool is the deduplicated set of names for one category.
type Pool struct {
	Category place.Category
	Entries  []Entry
}

// Len returns the number of distinct names.
func (p Pool) Len() int { return len(p.Entries) }

// BuildPool drops empty and Unknown names and keeps the first entry of
// every name, compared case-insensitively.
func BuildPool(c place.Category, entries []Entry) Pool {
	seen := make(map[string]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		k := strings.ToLower(e.Name)
		if e.Name == "" || e.Name == place.Unknown || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return Pool{Category: c, Entries: out}
}

// PoolFromDocument resolves every feature name in doc. Features rejected
// by focus are skipped; a nil focus keeps everything.
func PoolFromDocument(c place.Category, doc *dataset.Document, r *place.Resolver, focus place.Focus) Pool {
	if focus == nil {
		focus = place.NoFocus
	}
	entries := make([]Entry, 0, len(doc.Features))
	for _, f := range doc.Features {
		if !focus(f.Properties) {
			continue
		}
		name := r.ResolveName(c, f.Properties)
		entries = append(entries, Entry{Name: name, FeatureID: f.Index, Clue: clue(r, c, f.Properties, name)})
	}
	return BuildPool(c, entries)
}

// clue picks the first detail row that does not just repeat the name.
func clue(r *place.Resolver, c place.Category, props place.Properties, name string) *place.Row {
	for _, row := range r.BuildDetailRows(c, props, nil) {
		if !strings.EqualFold(row.Value, name) && !strings.Contains(strings.ToLower(row.Value), strings.ToLower(name)) {
			return &row
		}
	}
	return nil
}

// Narrow returns focused when it has at least min names, else full.
func Narrow(full, focused Pool, min int) Pool {
	if focused.Len() >= min {
		return focused
	}
	return full
}
