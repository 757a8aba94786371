// Package selection holds the live feature selection of one session and
// the detail panel bound to it.
package selection

import (
	"slices"
	"sync"

	"github.com/mapcrown/mapcrown/internal/place"
)

// Token identifies one selection. Work started for a selection captures its
// token and may only write back while that token is still current.
type Token uint64

// Selection is the feature the user picked.
type Selection struct {
	Category    place.Category   `json:"category"`
	FeatureID   int              `json:"featureId"`
	Name        string           `json:"name"`
	Properties  place.Properties `json:"-"`
	Coordinates *place.LatLng    `json:"coordinates,omitempty"`
	Token       Token            `json:"token"`
}

// Status is the panel state shown to the user.
type Status string

const (
	StatusReady    Status = "ready"
	StatusLoading  Status = "loading"
	StatusSelected Status = "selected"
	StatusError    Status = "error"
)

// Panel is the detail view for the current selection.
type Panel struct {
	Token        Token          `json:"token"`
	Status       Status         `json:"status"`
	Name         string         `json:"name,omitempty"`
	Category     place.Category `json:"category,omitempty"`
	Mode         string         `json:"mode,omitempty"`
	Rows         []place.Row    `json:"rows"`
	FlagURL      string         `json:"flagUrl,omitempty"`
	Notice       string         `json:"notice,omitempty"`
	Loading      bool           `json:"loading"`
	Error        string         `json:"error,omitempty"`
	Hint         string         `json:"hint,omitempty"`
	FactsEnabled bool           `json:"factsEnabled"`
	Message      string         `json:"message,omitempty"`
}

// State holds at most one live Selection. It is safe for concurrent use.
type State struct {
	mu      sync.Mutex
	seq     Token
	current *Selection
	panel   Panel
}

// New returns a State with a ready panel and no selection.
func New() *State {
	return &State{panel: Panel{Status: StatusReady, Rows: []place.Row{}, Message: "Click on the map to see details…"}}
}

// Select replaces the selection and its panel. When loading is set the
// panel shows a placeholder until enrichment applies its result.
func (s *State) Select(sel Selection, mode string, rows []place.Row, loading bool) Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	sel.Token = s.seq
	s.current = &sel
	s.panel = Panel{
		Token:        sel.Token,
		Status:       StatusSelected,
		Name:         sel.Name,
		Category:     sel.Category,
		Mode:         mode,
		Rows:         slices.Clone(rows),
		Loading:      loading,
		FactsEnabled: true,
	}
	if s.panel.Rows == nil {
		s.panel.Rows = []place.Row{}
	}
	return sel.Token
}

// Clear drops the selection and shows the loading panel. Outstanding
// tokens become stale.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.current = nil
	s.panel = Panel{Token: s.seq, Status: StatusLoading, Rows: []place.Row{}, Loading: true, Message: "Loading data…"}
}

// Ready marks the panel idle after a layer finished loading.
func (s *State) Ready() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return
	}
	s.panel.Status = StatusReady
	s.panel.Loading = false
	s.panel.Message = "Click on the map to see details…"
}

// Fail shows a persistent error panel.
func (s *State) Fail(msg, hint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.current = nil
	s.panel = Panel{Token: s.seq, Status: StatusError, Rows: []place.Row{}, Error: msg, Hint: hint}
}

// Current returns a copy of the live selection.
func (s *State) Current() (Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Selection{}, false
	}
	return *s.current, true
}

// IsCurrent reports whether tok still names the live selection.
func (s *State) IsCurrent(tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.current.Token == tok
}

// Apply runs fn on the panel if tok is still current and reports whether
// it did. Stale results are dropped.
func (s *State) Apply(tok Token, fn func(*Panel)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.Token != tok {
		return false
	}
	fn(&s.panel)
	s.panel.Token = tok
	return true
}

// Panel returns a copy of the current panel.
func (s *State) Panel() Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.panel
	p.Rows = slices.Clone(s.panel.Rows)
	return p
}
