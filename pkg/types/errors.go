package types

import "errors"

// Domain errors surfaced to the request layer.
var (
	// ErrInvalidPattern is returned when a regex search term fails to
	// compile at session creation; the search never starts.
	ErrInvalidPattern = errors.New("invalid search pattern")

	// ErrSessionNotFound is returned for an unknown or expired session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrBatchInFlight is returned when a second processBatch call races an
	// in-flight batch for the same session id.
	ErrBatchInFlight = errors.New("batch already in flight")

	// ErrStoreFailure wraps persistence-layer write failures. Fatal for the
	// session: the batch aborts rather than pretending success.
	ErrStoreFailure = errors.New("session store failure")
)
