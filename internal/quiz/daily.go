package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/mapcrown/mapcrown/internal/place"
)

// DailyLength is the number of questions in a daily challenge.
const DailyLength = 10

// DateLayout is the calendar-day format used in daily seeds.
const DateLayout = "2006-01-02"

// ErrDailyComplete is returned when answering a finished daily challenge.
var ErrDailyComplete = errors.New("daily challenge complete, come back tomorrow")

// DailySeed identifies one daily question set.
type DailySeed struct {
	Date     string `json:"date"`
	ExamMode string `json:"examMode"`
	Focus    bool   `json:"focus"`
}

// Seed builds the seed for the calendar day of date in its own location.
func Seed(date time.Time, examMode string, focus bool) DailySeed {
	mode := strings.ToLower(strings.TrimSpace(examMode))
	if mode == "" {
		mode = "general"
	}
	return DailySeed{Date: date.Format(DateLayout), ExamMode: mode, Focus: focus}
}

func (s DailySeed) String() string {
	scope := "all"
	if s.Focus {
		scope = "focus"
	}
	return s.Date + "|" + s.ExamMode + "|" + scope
}

// NewDailyRand returns a generator whose sequence depends only on seed.
func NewDailyRand(seed DailySeed) *rand.Rand {
	return rand.New(rand.NewChaCha8(blake2b.Sum256([]byte(seed.String()))))
}

// Daily is a ten-question sequence plus the player's progress through it.
type Daily struct {
	Seed      DailySeed  `json:"seed"`
	Questions []Question `json:"questions"`
	Index     int        `json:"index"`
	Score     int        `json:"score"`
	Results   []bool     `json:"results"`
}

// GenerateDaily rotates through place.All() in order, skipping categories
// whose pool is too small, and draws every question from the seeded
// generator.
func GenerateDaily(seed DailySeed, pools map[place.Category]Pool) (*Daily, error) {
	var usable []place.Category
	for _, c := range place.All() {
		if pools[c].Len() >= OptionCount {
			usable = append(usable, c)
		}
	}
	if len(usable) == 0 {
		return nil, fmt.Errorf("daily %s: %w", seed, ErrPoolExhausted)
	}

	rng := NewDailyRand(seed)
	d := &Daily{Seed: seed, Questions: make([]Question, 0, DailyLength)}
	for i := range DailyLength {
		c := usable[i%len(usable)]
		q, err := Build(rng, pools[c], Topic)
		if err != nil {
			return nil, fmt.Errorf("daily question %d: %w", i+1, err)
		}
		q.ID = fmt.Sprintf("daily-%s-%d", seed.Date, i+1)
		q.Mode = DailyMode
		d.Questions = append(d.Questions, q)
	}
	return d, nil
}

// Done reports whether every question has been answered.
func (d *Daily) Done() bool { return d.Index >= len(d.Questions) }

// Current returns the next unanswered question.
func (d *Daily) Current() (Question, bool) {
	if d.Done() {
		return Question{}, false
	}
	return d.Questions[d.Index], true
}

// Answer scores choice against the current question and advances the index.
func (d *Daily) Answer(choice, points int) (Feedback, error) {
	q, ok := d.Current()
	if !ok {
		return Feedback{}, ErrDailyComplete
	}
	if choice < 0 || choice >= len(q.Options) {
		return Feedback{}, fmt.Errorf("%w: %d", ErrInvalidChoice, choice)
	}
	correct := choice == q.Correct
	if correct {
		d.Score += points
	}
	d.Results = append(d.Results, correct)
	d.Index++

	fb := Feedback{
		Correct:       correct,
		CorrectIndex:  q.Correct,
		CorrectOption: q.Answer(),
		Score:         d.Score,
		Index:         d.Index,
		Total:         len(d.Questions),
		Done:          d.Done(),
	}
	if correct {
		fb.Points = points
	}
	return fb, nil
}

// Expired reports whether today is a different calendar day than the seed.
func (d *Daily) Expired(today time.Time) bool {
	return today.Format(DateLayout) != d.Seed.Date
}
