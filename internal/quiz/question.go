package quiz

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/mapcrown/mapcrown/internal/place"
)

// Mode selects how questions are generated.
type Mode string

const (
	MapClick  Mode = "map-click"
	Topic     Mode = "topic"
	Trivia    Mode = "trivia"
	DailyMode Mode = "daily"
)

// ParseMode maps a user supplied string to a Mode. Empty means MapClick.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MapClick, nil
	case MapClick, Topic, Trivia, DailyMode:
		return m, nil
	default:
		return "", fmt.Errorf("unknown quiz mode %q", s)
	}
}

// Question is one multiple-choice question. Correct is withheld from
// clients until the question is answered.
type Question struct {
	ID        string         `json:"id"`
	Mode      Mode           `json:"mode"`
	Category  place.Category `json:"category,omitempty"`
	Prompt    string         `json:"prompt"`
	Options   []string       `json:"options"`
	Correct   int            `json:"-"`
	FeatureID *int           `json:"featureId,omitempty"`
	Disabled  bool           `json:"disabled,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Answer returns the text of the correct option.
func (q Question) Answer() string {
	if q.Correct < 0 || q.Correct >= len(q.Options) {
		return ""
	}
	return q.Options[q.Correct]
}

// ErrorQuestion is shown in place of a question when err prevents one.
// Its answer controls are disabled.
func ErrorQuestion(mode Mode, c place.Category, err error) Question {
	return Question{
		Mode:     mode,
		Category: c,
		Prompt:   "Not enough data for this quiz yet. Try another category or turn off the regional focus.",
		Options:  []string{},
		Correct:  -1,
		Disabled: true,
		Error:    err.Error(),
	}
}

// Build draws a question from pool using rng. The answer is drawn
// uniformly, then three distinct distractors, then the options are
// shuffled. Pools smaller than OptionCount yield a *PoolExhaustionError.
func Build(rng *rand.Rand, pool Pool, mode Mode) (Question, error) {
	n := pool.Len()
	if n < OptionCount {
		return Question{}, &PoolExhaustionError{Category: pool.Category, Size: n}
	}

	answer := pool.Entries[rng.IntN(n)]
	useClue := mode != MapClick && answer.Clue != nil

	others := make([]Entry, 0, n-1)
	for _, e := range pool.Entries {
		if e.Name != answer.Name {
			others = append(others, e)
		}
	}
	if useClue {
		// Distractors sharing the clue would make the question ambiguous.
		var distinct []Entry
		for _, e := range others {
			if e.Clue == nil || *e.Clue != *answer.Clue {
				distinct = append(distinct, e)
			}
		}
		if len(distinct) >= OptionCount-1 {
			others = distinct
		}
	}

	options := []string{answer.Name}
	for len(options) < OptionCount {
		i := rng.IntN(len(others))
		options = append(options, others[i].Name)
		others[i] = others[len(others)-1]
		others = others[:len(others)-1]
	}
	rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	q := Question{
		Mode:     mode,
		Category: pool.Category,
		Options:  options,
		Prompt:   fmt.Sprintf("Which %s is highlighted on the map?", pool.Category.Singular()),
	}
	for i, o := range options {
		if o == answer.Name {
			q.Correct = i
		}
	}
	id := answer.FeatureID
	q.FeatureID = &id
	if useClue {
		q.Prompt = fmt.Sprintf("Which %s matches: %s: %s?", pool.Category.Singular(), answer.Clue.Label, answer.Clue.Value)
	}
	return q, nil
}
