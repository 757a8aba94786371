package app

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mapcrown/mapcrown/internal/enrich"
	"github.com/mapcrown/mapcrown/internal/platform/metrics"
	"github.com/mapcrown/mapcrown/internal/place"
	"github.com/mapcrown/mapcrown/internal/quiz"
	"github.com/mapcrown/mapcrown/internal/selection"
)

// Session is the state of one visitor. Selection has its own lock so
// background enrichment can write to it without holding mu.
type Session struct {
	ID        string
	Selection *selection.State

	mu         sync.Mutex
	category   place.Category
	focus      bool
	examMode   string
	facts      *enrich.Cursor
	factsToken selection.Token // selection the cursor belongs to
	quiz       *quiz.Session
	daily      *quiz.Daily
	rng        *rand.Rand
	lastSeen   time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Selection: selection.New(),
		category:  place.Countries,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		lastSeen:  now,
	}
}

// Category returns the active category.
func (s *Session) Category() place.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.category
}

// Focused reports whether the regional focus is on.
func (s *Session) Focused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus
}

// ExamMode returns the last exam mode used for the daily challenge.
func (s *Session) ExamMode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.examMode
}

// SessionStore keeps sessions in memory and expires idle ones.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a store expiring sessions idle for longer than ttl.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the session with id, creating it when missing or expired.
func (st *SessionStore) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	s, ok := st.sessions[id]
	if ok && st.ttl > 0 && now.Sub(s.lastSeen) > st.ttl {
		ok = false
	}
	if !ok {
		s = newSession(id, now)
		st.sessions[id] = s
		metrics.ActiveSessions.Set(float64(len(st.sessions)))
	}
	s.lastSeen = now
	return s
}

// Len returns the number of held sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops expired sessions and returns how many it removed.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.ttl <= 0 {
		return 0
	}
	now := st.now()
	n := 0
	for id, s := range st.sessions {
		if now.Sub(s.lastSeen) > st.ttl {
			delete(st.sessions, id)
			n++
		}
	}
	metrics.ActiveSessions.Set(float64(len(st.sessions)))
	return n
}

// RunJanitor sweeps every interval until ctx is done.
func (st *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := st.Sweep(); n > 0 {
				slog.Debug("expired sessions swept", "removed", n)
			}
		}
	}
}
