// Package analytics records learning events such as category switches,
// selections and quiz answers.
package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Event types.
const (
	CategorySwitched = "category_switched"
	FeatureSelected  = "feature_selected"
	FactsOpened      = "facts_opened"
	QuizAnswered     = "quiz_answered"
	DailyCompleted   = "daily_completed"
)

// Event is one learning event.
type Event struct {
	SessionID string         `json:"sessionId"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (e *Event) normalize() error {
	if e.Type == "" {
		return fmt.Errorf("event type is required")
	}
	if e.SessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if e.Data == nil {
		e.Data = map[string]any{}
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return nil
}

// Logger records events.
type Logger interface {
	LogEvent(ctx context.Context, event Event) error
}

// NopLogger ignores all events.
type NopLogger struct{}

func (NopLogger) LogEvent(context.Context, Event) error {
	return nil
}

// MemoryLogger stores events in memory for tests.
type MemoryLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{events: []Event{}}
}

func (l *MemoryLogger) LogEvent(_ context.Context, event Event) error {
	if err := event.normalize(); err != nil {
		return err
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// OfType returns the recorded events with the given type.
func (l *MemoryLogger) OfType(t string) []Event {
	var out []Event
	for _, e := range l.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
