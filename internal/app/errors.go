// Package app owns per-session state and coordinates the loader, renderer,
// enrichment services, quiz generator and event sinks.
package app

import "errors"

var (
	ErrNoSelection       = errors.New("nothing selected")
	ErrUnknownFeature    = errors.New("no such feature")
	ErrNoMatch           = errors.New("no matching place")
	ErrNoFacts           = errors.New("facts not opened")
	ErrNoDaily           = errors.New("daily challenge not started")
	ErrDailyExpired      = errors.New("daily challenge expired, start today's challenge")
	ErrDailyViaChallenge = errors.New("daily questions are served by the daily challenge")
)
