package enrich

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mapcrown/mapcrown/internal/place"
	"github.com/mapcrown/mapcrown/internal/platform/metrics"
)

const (
	// FactsCachePrefix namespaces fact lists in the session cache.
	FactsCachePrefix = "facts_v1_"
	// FactMarker decorates every fact.
	FactMarker = "✨ "
	// NotFoundFact is the single fact shown when no summary is available.
	NotFoundFact = "No facts available for this item (Wikipedia not found). Try a bigger/known place."
)

// Summarizer returns a plain-text summary for a page title.
type Summarizer interface {
	Summary(ctx context.Context, title string) (string, error)
}

// Facts is the result of a facts request. Items is never empty.
type Facts struct {
	Key   string   `json:"key"`
	Title string   `json:"title,omitempty"`
	Items []string `json:"items"`
	Found bool     `json:"found"`
}

// FactsOptions tunes sentence extraction.
type FactsOptions struct {
	MaxFacts          int
	MinSentenceLength int
	// Timeout bounds each title candidate.
	Timeout time.Duration
}

// FactsService builds fact lists from page summaries.
type FactsService struct {
	source Summarizer
	cache  Cache
	opts   FactsOptions
}

// NewFactsService creates a FactsService. A nil cache disables caching.
func NewFactsService(source Summarizer, cache Cache, opts FactsOptions) *FactsService {
	if opts.MaxFacts <= 0 {
		opts.MaxFacts = 8
	}
	if opts.MinSentenceLength <= 0 {
		opts.MinSentenceLength = 35
	}
	return &FactsService{source: source, cache: cache, opts: opts}
}

// FactsKey returns the cache key for a category and resolved name.
func FactsKey(c place.Category, name string) string {
	return string(c) + ":" + name
}

// Facts returns up to MaxFacts decorated sentences about name. It never
// fails: when no page is found the placeholder fact is returned, and the
// placeholder is not cached so a later request can retry.
func (s *FactsService) Facts(ctx context.Context, c place.Category, name string) Facts {
	key := FactsKey(c, name)

	if s.cache != nil {
		var cached Facts
		ok, err := s.cache.Get(ctx, FactsCachePrefix+key, &cached)
		if err != nil {
			slog.Warn("facts cache read failed", "key", key, "error", err)
		}
		if ok && len(cached.Items) > 0 {
			metrics.EnrichCacheTotal.WithLabelValues("facts", "hit").Inc()
			return cached
		}
		metrics.EnrichCacheTotal.WithLabelValues("facts", "miss").Inc()
	}

	extract, title, err := FirstSuccess(ctx, TitleCandidates(c, name), s.opts.Timeout, s.source.Summary)
	if err != nil {
		slog.Info("no facts found", "category", c, "name", name, "error", err)
		return Facts{Key: key, Items: []string{NotFoundFact}}
	}

	items := s.extract(extract)
	if len(items) == 0 {
		slog.Info("no sentence long enough for facts", "category", c, "name", name, "title", title)
		return Facts{Key: key, Items: []string{NotFoundFact}}
	}

	facts := Facts{Key: key, Title: title, Items: items, Found: true}
	if s.cache != nil {
		if err := s.cache.Set(ctx, FactsCachePrefix+key, facts); err != nil {
			slog.Warn("facts cache write failed", "key", key, "error", err)
		}
	}
	return facts
}

func (s *FactsService) extract(text string) []string {
	var out []string
	for _, sentence := range SplitSentences(text) {
		if len([]rune(sentence)) < s.opts.MinSentenceLength {
			continue
		}
		out = append(out, FactMarker+sentence)
		if len(out) == s.opts.MaxFacts {
			break
		}
	}
	return out
}

// TitleCandidates lists page titles to try for name, bare name first.
func TitleCandidates(c place.Category, name string) []string {
	name = strings.TrimSpace(name)
	list := []string{name}
	switch c {
	case place.Rivers:
		list = append(list, name+" River")
	case place.Mountains:
		list = append(list, name+" mountain", name+" peak")
	case place.Cities:
		list = append(list, name+" (city)")
	}
	return list
}

// SplitSentences collapses whitespace and splits after '.', '!' or '?'
// when followed by whitespace.
func SplitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}

	var out []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' {
				if s := strings.TrimSpace(text[start : i+1]); s != "" {
					out = append(out, s)
				}
				start = i + 2
			}
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
