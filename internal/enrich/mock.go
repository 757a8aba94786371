package enrich

import (
	"context"
	"sync"
)

// MockSummarizer is a test double for Summarizer keyed by page title.
type MockSummarizer struct {
	Pages map[string]string
	Err   error

	mu     sync.Mutex
	Titles []string // every title requested, in order
}

// Summary implements Summarizer.
func (m *MockSummarizer) Summary(_ context.Context, title string) (string, error) {
	m.mu.Lock()
	m.Titles = append(m.Titles, title)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if s, ok := m.Pages[title]; ok {
		return s, nil
	}
	return "", ErrNotFound
}

// Requested returns a copy of the requested titles.
func (m *MockSummarizer) Requested() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Titles...)
}

// MockCountryLookup is a test double for CountryLookup. When Gate is set,
// every call waits for a value on it or for ctx to end.
type MockCountryLookup struct {
	Countries map[string]Country // keyed by the exact lookup key
	Err       error
	Gate      chan struct{}

	mu    sync.Mutex
	Calls int
}

// Lookup implements CountryLookup.
func (m *MockCountryLookup) Lookup(ctx context.Context, key string) (Country, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return Country{}, ctx.Err()
		}
	}
	if m.Err != nil {
		return Country{}, m.Err
	}
	if c, ok := m.Countries[key]; ok {
		return c, nil
	}
	return Country{}, ErrNotFound
}

// CallCount returns the number of Lookup calls.
func (m *MockCountryLookup) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// MockLeaderLookup is a test double for LeaderLookup.
type MockLeaderLookup struct {
	ByCode map[string]Leaders // keyed by upper-case ISO alpha-2
	Err    error
}

// Leaders implements LeaderLookup.
func (m *MockLeaderLookup) Leaders(_ context.Context, iso2 string) (Leaders, error) {
	if m.Err != nil {
		return Leaders{}, m.Err
	}
	if l, ok := m.ByCode[iso2]; ok {
		return l, nil
	}
	return Leaders{}, ErrNotFound
}
