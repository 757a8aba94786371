package dataset

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mapcrown/mapcrown/internal/place"
	"github.com/mapcrown/mapcrown/internal/platform/metrics"
)

// FetchTimeout bounds a shared dataset fetch.
const FetchTimeout = 30 * time.Second

// Loader fetches and memoizes one Document per category. Concurrent loads
// of the same category share a single fetch, which outlives any one
// caller's context. Failures are not cached.
type Loader struct {
	source    Source
	paths     map[place.Category]string
	validator *Validator
	timeout   time.Duration

	group singleflight.Group
	mu    sync.RWMutex
	docs  map[place.Category]*Document
}

// NewLoader creates a Loader reading paths from source.
func NewLoader(source Source, paths map[place.Category]string, validator *Validator) *Loader {
	return &Loader{
		source:    source,
		paths:     paths,
		validator: validator,
		timeout:   FetchTimeout,
		docs:      make(map[place.Category]*Document),
	}
}

// Path returns the configured path for c, or "".
func (l *Loader) Path(c place.Category) string {
	return l.paths[c]
}

// Cached returns the memoized document for c without fetching.
func (l *Loader) Cached(c place.Category) (*Document, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.docs[c]
	return d, ok
}

// Load returns the document for c, fetching it on first use.
// Errors are always *DataError.
func (l *Loader) Load(ctx context.Context, c place.Category) (*Document, error) {
	if d, ok := l.Cached(c); ok {
		return d, nil
	}

	p := l.paths[c]
	if p == "" {
		return nil, &DataError{Category: c, Err: ErrNoPath}
	}

	ch := l.group.DoChan(string(c), func() (any, error) {
		if d, ok := l.Cached(c); ok {
			return d, nil
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		return l.fetch(fctx, c, p)
	})

	select {
	case <-ctx.Done():
		return nil, &DataError{Category: c, Path: p, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			slog.Debug("dataset load shared", "category", c)
		}
		return res.Val.(*Document), nil
	}
}

func (l *Loader) fetch(ctx context.Context, c place.Category, p string) (*Document, error) {
	start := time.Now()
	doc, err := l.fetchAndParse(ctx, c, p)
	metrics.DatasetLoadsTotal.WithLabelValues(string(c), metrics.Result(err)).Inc()
	metrics.DatasetLoadDurationMs.WithLabelValues(string(c)).Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		slog.Error("dataset load failed", "category", c, "path", p, "error", err)
		return nil, &DataError{Category: c, Path: p, Err: err}
	}

	l.mu.Lock()
	l.docs[c] = doc
	l.mu.Unlock()

	slog.Info("dataset loaded", "category", c, "path", p, "features", len(doc.Features), "duration", time.Since(start))
	return doc, nil
}

func (l *Loader) fetchAndParse(ctx context.Context, c place.Category, p string) (*Document, error) {
	data, err := l.source.Fetch(ctx, p)
	if err != nil {
		return nil, err
	}
	if l.validator != nil {
		if err := l.validator.Validate(data); err != nil {
			return nil, err
		}
	}
	return Parse(c, p, data)
}

// Warm loads every configured category and joins the failures.
func (l *Loader) Warm(ctx context.Context) error {
	var errs []error
	for _, c := range place.All() {
		if l.paths[c] == "" {
			continue
		}
		if _, err := l.Load(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
