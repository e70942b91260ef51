package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrNoProvidersAvailable is returned when the candidate list is empty
	// before any call is attempted (nothing enabled, or everything
	// quarantined). Distinct from AggregateError so the caller can tell the
	// user to enable a provider rather than retry.
	ErrNoProvidersAvailable = errors.New("no AI providers available")

	// ErrMissingAPIKey is returned when a provider is constructed without
	// a required API key.
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrEmptyResponse is returned when a provider call succeeds at the
	// HTTP level but yields no text.
	ErrEmptyResponse = errors.New("empty response from provider")
)

// AggregateError reports that every candidate provider failed. It keeps
// the last failure for the user-facing message and wraps it for errors.Is.
type AggregateError struct {
	Attempted    []string // Provider names in the order they were tried
	LastProvider string
	LastErr      error
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("all %d AI providers failed, last error from %s: %v",
		len(e.Attempted), e.LastProvider, e.LastErr)
}

func (e *AggregateError) Unwrap() error { return e.LastErr }
