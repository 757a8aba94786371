package analytics_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"

	"github.com/mapcrown/mapcrown/internal/analytics"
)

func TestMemoryLogger_LogEvent(t *testing.T) {
	logger := analytics.NewMemoryLogger()

	err := logger.LogEvent(context.Background(), analytics.Event{
		SessionID: "sess-1",
		Type:      analytics.QuizAnswered,
		Data:      map[string]any{"correct": true},
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	events := logger.Events()
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Type != analytics.QuizAnswered {
		t.Errorf("Type = %q, want %s", events[0].Type, analytics.QuizAnswered)
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if len(logger.OfType(analytics.FactsOpened)) != 0 {
		t.Error("OfType() should filter by type")
	}
}

func TestMemoryLogger_Rejects(t *testing.T) {
	logger := analytics.NewMemoryLogger()
	tests := []struct {
		name  string
		event analytics.Event
	}{
		{"no type", analytics.Event{SessionID: "s"}},
		{"no session", analytics.Event{Type: analytics.FactsOpened}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := logger.LogEvent(context.Background(), tt.event); err == nil {
				t.Error("LogEvent() should fail")
			}
		})
	}
}

func TestNopLogger(t *testing.T) {
	var l analytics.Logger = analytics.NopLogger{}
	if err := l.LogEvent(context.Background(), analytics.Event{}); err != nil {
		t.Errorf("LogEvent() error = %v", err)
	}
}

func TestPostgresLogger_LogEvent_NilPool(t *testing.T) {
	logger := analytics.NewPostgresLogger(nil)

	err := logger.LogEvent(context.Background(), analytics.Event{
		SessionID: "sess-1",
		Type:      analytics.CategorySwitched,
	})
	if err == nil {
		t.Fatal("expected error for nil pool")
	}
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaLogger_LogEvent(t *testing.T) {
	w := &fakeWriter{}
	logger := analytics.NewKafkaLogger(w)

	err := logger.LogEvent(context.Background(), analytics.Event{
		SessionID: "sess-9",
		Type:      analytics.FeatureSelected,
		Data:      map[string]any{"category": "rivers", "name": "Ganga"},
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "sess-9" {
		t.Errorf("Key = %q, want sess-9", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != analytics.FeatureSelected {
		t.Errorf("Headers = %+v", msg.Headers)
	}

	var got analytics.Event
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("decoding message: %v", err)
	}
	if got.Data["name"] != "Ganga" {
		t.Errorf("Data = %v", got.Data)
	}

	if err := logger.Close(); err != nil || !w.closed {
		t.Errorf("Close() = %v, closed = %v", err, w.closed)
	}
}

func TestKafkaLogger_WriteError(t *testing.T) {
	boom := errors.New("broker down")
	logger := analytics.NewKafkaLogger(&fakeWriter{err: boom})
	err := logger.LogEvent(context.Background(), analytics.Event{SessionID: "s", Type: analytics.DailyCompleted})
	if !errors.Is(err, boom) {
		t.Errorf("LogEvent() error = %v, want wrapped broker error", err)
	}
}

func TestNewKafkaWriter(t *testing.T) {
	w := analytics.NewKafkaWriter([]string{"k1:9092", "k2:9092"}, "mapcrown.events")
	if w.Topic != "mapcrown.events" {
		t.Errorf("Topic = %q", w.Topic)
	}
	if w.Addr == nil {
		t.Error("Addr should be set")
	}
}
