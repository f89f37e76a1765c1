package dispatch

import (
	"context"
	"time"
)

// Handler receives an event value. The event package adapts its
// listeners to this interface so dispatch does not import it.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc lets a plain function serve as a Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// Dispatcher runs a single handler for an event.
type Dispatcher interface {
	Dispatch(ctx context.Context, event any, handler Handler) Result
}

var _ Dispatcher = (*SyncDispatcher)(nil)

// Result describes one handler invocation. At most one of Success,
// Error (without Skipped), Panicked, Declined and Skipped describes the
// outcome; TimedOut qualifies Error.
type Result struct {
	Success bool
	Error   error

	Panicked   bool
	PanicValue any
	PanicStack []byte

	// TimedOut marks an Error produced after the dispatcher's own deadline.
	TimedOut bool

	Duration time.Duration

	// Skipped means the handler never ran. Error then holds the context
	// error, or nil when a fail-fast run stopped early.
	Skipped bool

	// Declined means the handler returned ErrDeclined.
	Declined bool
}

// IsSuccess reports a clean run.
func (r Result) IsSuccess() bool {
	return r.Success && !r.Panicked && r.Error == nil
}

// IsError reports a returned error. Panics and skips are excluded.
func (r Result) IsError() bool {
	return r.Error != nil && !r.Panicked && !r.Skipped
}

// IsPanic reports a recovered panic.
func (r Result) IsPanic() bool {
	return r.Panicked
}

// IsFailure reports a handler that ran and then errored or panicked.
func (r Result) IsFailure() bool {
	if r.Skipped {
		return false
	}
	return r.Panicked || r.Error != nil
}

// PanicHandler observes recovered panics. stack is the goroutine stack at
// the point of recovery.
type PanicHandler func(event any, handler Handler, panicValue any, stack []byte)

func defaultPanicHandler(any, Handler, any, []byte) {}
