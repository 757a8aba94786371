// Package enrich augments a selected feature with data from external
// services: country metadata, heads of state and encyclopedia facts.
// Every fetch is best effort and degrades locally on failure.
package enrich

import (
	"errors"
	"fmt"
)

// ErrNotFound means the service answered but had nothing for the key.
var ErrNotFound = errors.New("not found")

// EnrichmentError reports a failed external lookup. Callers fall back to
// locally available data and never surface it as a hard error.
type EnrichmentError struct {
	Service string
	Key     string
	Err     error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("%s lookup for %q: %v", e.Service, e.Key, e.Err)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }
