package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"
)

// Executor invokes a single handler, turning its return value or panic
// into a Result.
type Executor struct {
	onPanic PanicHandler
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorPanicHandler installs h as the panic callback. Nil is ignored.
func WithExecutorPanicHandler(h PanicHandler) ExecutorOption {
	return func(x *Executor) {
		if h != nil {
			x.onPanic = h
		}
	}
}

// NewExecutor returns an Executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	x := &Executor{onPanic: defaultPanicHandler}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Execute calls handler with event. A context that is already done skips
// the call. Panics are recovered and reported through the result.
func (x *Executor) Execute(ctx context.Context, event any, handler Handler) (res Result) {
	if err := ctx.Err(); err != nil {
		return skippedResult(err)
	}

	began := time.Now()
	defer func() {
		res.Duration = time.Since(began)
		if v := recover(); v != nil {
			res = Result{
				Duration:   res.Duration,
				Panicked:   true,
				PanicValue: v,
				PanicStack: debug.Stack(),
			}
			x.notifyPanic(event, handler, v, res.PanicStack)
		}
	}()

	return classify(handler.Handle(ctx, event))
}

// ExecuteWithTimeout is Execute under a deadline of timeout. A
// non-positive timeout means no deadline. The handler has to watch ctx
// for the deadline to interrupt it.
func (x *Executor) ExecuteWithTimeout(ctx context.Context, event any, handler Handler, timeout time.Duration) Result {
	if timeout <= 0 {
		return x.Execute(ctx, event, handler)
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res := x.Execute(tctx, event, handler)

	// A deadline inherited from ctx is the caller's, not ours.
	ours := ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded)
	if ours && res.Error != nil && !res.Skipped {
		res.TimedOut = true
		res.Error = fmt.Errorf("%w after %s: %w", ErrTimeout, timeout, res.Error)
	}
	return res
}

// notifyPanic runs the panic callback, swallowing any panic it raises.
func (x *Executor) notifyPanic(event any, handler Handler, v any, stack []byte) {
	if x.onPanic == nil {
		return
	}
	defer func() { _ = recover() }()
	x.onPanic(event, handler, v, stack)
}

func classify(err error) Result {
	switch {
	case err == nil:
		return Result{Success: true}
	case errors.Is(err, ErrDeclined):
		return Result{Declined: true}
	default:
		return Result{Error: err}
	}
}

func skippedResult(cause error) Result {
	return Result{Skipped: true, Error: cause}
}
