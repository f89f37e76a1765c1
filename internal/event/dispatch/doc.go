// Package dispatch provides the synchronous fan-out machinery used by the
// event bus.
//
// The dispatch package executes handlers in the caller's goroutine with
// panic recovery, context support, and an optional per-handler timeout.
// There is no queue and no worker pool: a dispatch call returns only after
// every handler it was given has returned.
//
// # Fan-out Modes
//
//   - DispatchAll: run every handler in order, collecting each outcome.
//     A failing handler never prevents the next one from running.
//
//   - DispatchUntilError: stop at the first handler that errors or panics.
//     The remaining handlers are reported as skipped.
//
// # Panic Recovery
//
// A panicking handler is recovered and reported as a failed Result with
// the panic value and stack. An optional PanicHandler is notified as well.
//
// # Declining Events
//
// A handler may return ErrDeclined to say it chose not to process an event
// (a filter did not match, or its subscription is paused). Declined results
// are neither successes nor failures.
//
// # Usage
//
//	dispatcher := dispatch.NewSyncDispatcher(
//	    dispatch.WithTimeout(time.Second),
//	    dispatch.WithPanicHandler(func(event any, h dispatch.Handler, v any, stack []byte) {
//	        log.Printf("panic in handler: %v\n%s", v, stack)
//	    }),
//	)
//	for _, result := range dispatcher.DispatchAll(ctx, event, handlers) {
//	    if result.IsFailure() {
//	        // handle error or panic
//	    }
//	}
package dispatch
