package sessions

import "errors"

var (
	// ErrNotFound indicates the session does not exist or has expired.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState indicates a step was requested before its inputs exist,
	// e.g. a cover letter before any résumé was generated.
	ErrInvalidState = errors.New("invalid session state")
)
