package quiz

import (
	"fmt"
	"time"
)

// Feedback describes the outcome of one answer.
type Feedback struct {
	Correct       bool          `json:"correct"`
	CorrectIndex  int           `json:"correctIndex"`
	CorrectOption string        `json:"correctOption"`
	Points        int           `json:"points"`
	Score         int           `json:"score"`
	AdvanceAfter  time.Duration `json:"-"`
	Done          bool          `json:"done,omitempty"`
	Index         int           `json:"index,omitempty"`
	Total         int           `json:"total,omitempty"`
}

// Session tracks the running score of the free-play modes. It is not safe
// for concurrent use; the owner serializes access.
type Session struct {
	Mode     Mode
	Score    int
	Answered int
	points   int
	advance  time.Duration
	current  *Question
}

// NewSession starts a session awarding points per correct answer.
func NewSession(mode Mode, points int, advance time.Duration) *Session {
	return &Session{Mode: mode, points: points, advance: advance}
}

// SetQuestion replaces the pending question.
func (s *Session) SetQuestion(q Question) {
	s.current = &q
}

// Current returns the pending question, if any.
func (s *Session) Current() (Question, bool) {
	if s.current == nil {
		return Question{}, false
	}
	return *s.current, true
}

// Answer scores choice against the pending question and discards it.
func (s *Session) Answer(choice int) (Feedback, error) {
	if s.current == nil {
		return Feedback{}, ErrNoQuestion
	}
	q := *s.current
	if q.Disabled {
		return Feedback{}, fmt.Errorf("question has no answers: %w", ErrPoolExhausted)
	}
	if choice < 0 || choice >= len(q.Options) {
		return Feedback{}, fmt.Errorf("%w: %d", ErrInvalidChoice, choice)
	}
	s.current = nil
	s.Answered++

	fb := Feedback{
		Correct:       choice == q.Correct,
		CorrectIndex:  q.Correct,
		CorrectOption: q.Answer(),
	}
	if fb.Correct {
		s.Score += s.points
		fb.Points = s.points
	}
	fb.Score = s.Score
	if s.Mode != DailyMode {
		fb.AdvanceAfter = s.advance
	}
	return fb, nil
}
