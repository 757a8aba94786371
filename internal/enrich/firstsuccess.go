package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// FirstSuccess calls fn for each candidate in order and returns the first
// result without error, along with the candidate that produced it. Each
// call gets its own timeout so one slow candidate cannot starve the rest.
// Empty and repeated candidates are skipped.
func FirstSuccess[T any](ctx context.Context, candidates []string, timeout time.Duration, fn func(ctx context.Context, candidate string) (T, error)) (T, string, error) {
	var zero T
	var errs []error
	seen := make(map[string]bool, len(candidates))

	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true

		if err := ctx.Err(); err != nil {
			return zero, "", err
		}

		v, err := call(ctx, c, timeout, fn)
		if err == nil {
			return v, c, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", c, err))
	}

	if len(errs) == 0 {
		return zero, "", fmt.Errorf("no candidates: %w", ErrNotFound)
	}
	return zero, "", errors.Join(errs...)
}

func call[T any](ctx context.Context, candidate string, timeout time.Duration, fn func(context.Context, string) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx, candidate)
}
