package playback

import "errors"

var (
	// ErrNotFound means the room, timer or key does not exist. Query
	// callers surface it as an empty result, not a failure.
	ErrNotFound = errors.New("not found")
	// ErrConcurrentModification means the per-timer lock could not be
	// acquired in time. The caller should retry.
	ErrConcurrentModification = errors.New("concurrent timer modification")
)
