// Package push delivers live updates to the browser tabs of a session.
package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Message is one update sent to subscribers.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Channel is one subscriber connection.
type Channel interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

// Gateway fans messages out to every channel subscribed to a session.
type Gateway struct {
	mu       sync.RWMutex
	sessions map[string]map[int]Channel
	next     int
}

// NewGateway creates an empty gateway.
func NewGateway() *Gateway {
	return &Gateway{sessions: make(map[string]map[int]Channel)}
}

// Register subscribes ch to sessionID. The returned func removes it again.
func (g *Gateway) Register(sessionID string, ch Channel) func() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.next++
	id := g.next
	if g.sessions[sessionID] == nil {
		g.sessions[sessionID] = make(map[int]Channel)
	}
	g.sessions[sessionID][id] = ch
	slog.Debug("push channel registered", "session_id", sessionID, "subscribers", len(g.sessions[sessionID]))

	return func() { g.remove(sessionID, id) }
}

func (g *Gateway) remove(sessionID string, id int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	subs := g.sessions[sessionID]
	delete(subs, id)
	if len(subs) == 0 {
		delete(g.sessions, sessionID)
	}
}

// HasSubscribers reports whether any channel listens on sessionID.
func (g *Gateway) HasSubscribers(sessionID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.sessions[sessionID]) > 0
}

// Publish sends msg to every subscriber of sessionID. Channels that fail
// are closed and dropped.
func (g *Gateway) Publish(ctx context.Context, sessionID string, msg Message) error {
	g.mu.RLock()
	subs := make(map[int]Channel, len(g.sessions[sessionID]))
	for id, ch := range g.sessions[sessionID] {
		subs[id] = ch
	}
	g.mu.RUnlock()

	var errs []error
	for id, ch := range subs {
		if err := ch.Send(ctx, msg); err != nil {
			slog.Warn("dropping push channel", "session_id", sessionID, "error", err)
			g.remove(sessionID, id)
			_ = ch.Close()
			errs = append(errs, fmt.Errorf("channel %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// CloseAll closes every channel. Used on shutdown.
func (g *Gateway) CloseAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for sid, subs := range g.sessions {
		for _, ch := range subs {
			_ = ch.Close()
		}
		delete(g.sessions, sid)
	}
}

// MockChannel is a test double for Channel.
type MockChannel struct {
	mu     sync.Mutex
	Sent   []Message
	Err    error
	Closed bool
}

func (m *MockChannel) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

func (m *MockChannel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Messages returns a copy of the sent messages.
func (m *MockChannel) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message{}, m.Sent...)
}
