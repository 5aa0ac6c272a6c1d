package interfaces

import "errors"

var (
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyInFlight indicates a listing already has a pending or
	// processing scrape job; at most one job per listing may be in flight.
	ErrAlreadyInFlight = errors.New("listing already in flight")

	// ErrInvalidContent indicates the extraction worker returned
	// malformed or invalid data. These failures are not retried: they
	// signal a routing/strategy mismatch, not a transient fault.
	ErrInvalidContent = errors.New("extraction returned invalid content")

	// ErrBudgetExceeded indicates the daily cost ceiling would be
	// exceeded by admitting more work.
	ErrBudgetExceeded = errors.New("daily cost limit exceeded")

	// ErrTerminalTransition indicates an attempted status change out of a
	// terminal job state.
	ErrTerminalTransition = errors.New("scrape job is in a terminal state")
)
