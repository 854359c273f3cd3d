package domain

import "errors"

var (
	// ErrNotFound means the queue has no record with the requested id, or a
	// resolver query matched nothing across every backend it reached.
	ErrNotFound = errors.New("not found")

	// ErrNoMatch is returned by a single backend that was reached and answered
	// but had nothing usable for the query. Distinct from a transport error.
	ErrNoMatch = errors.New("no match")

	// ErrNotReady means the requested file belongs to a job that has not
	// completed yet.
	ErrNotReady = errors.New("file not ready")

	// ErrInvalidRequest means the caller supplied a request that fails
	// validation before any external work happens.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrJobTerminal is returned when an update would move a job out of a
	// terminal state. Terminal statuses are monotonic.
	ErrJobTerminal = errors.New("job already in a terminal state")

	// ErrStoreCorrupt means the persisted queue file exists but cannot be
	// parsed. Callers must fail loudly, never reset to an empty queue.
	ErrStoreCorrupt = errors.New("queue store is corrupt")
)
