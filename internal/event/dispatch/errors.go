package dispatch

import "errors"

// Sentinel errors for the dispatch package.
var (
	// ErrDeclined may be returned by a handler to signal that it chose not
	// to process the event. It is not treated as a failure.
	ErrDeclined = errors.New("handler declined event")

	// ErrTimeout wraps the error of a handler that exceeded its timeout.
	ErrTimeout = errors.New("handler timeout exceeded")
)
