package dispatch

import (
	"context"
	"sync/atomic"
	"time"
)

// SyncDispatcher runs handlers one after another on the calling goroutine.
// It is safe for concurrent use; concurrent runs share only the counters.
type SyncDispatcher struct {
	exec    *Executor
	timeout time.Duration
	n       counters
}

// counters accumulates outcomes across every run of a dispatcher.
type counters struct {
	dispatched atomic.Uint64
	succeeded  atomic.Uint64
	failed     atomic.Uint64
	panicked   atomic.Uint64
	timedOut   atomic.Uint64
	skipped    atomic.Uint64
	declined   atomic.Uint64
	elapsedNs  atomic.Int64
}

func (c *counters) observe(r Result) {
	c.elapsedNs.Add(int64(r.Duration))

	switch {
	case r.Skipped:
		c.skipped.Add(1)
	case r.Panicked:
		c.panicked.Add(1)
	case r.TimedOut:
		c.timedOut.Add(1)
		c.failed.Add(1)
	case r.Error != nil:
		c.failed.Add(1)
	case r.Declined:
		c.declined.Add(1)
	case r.Success:
		c.succeeded.Add(1)
	}
}

func (c *counters) reset() {
	for _, u := range []*atomic.Uint64{&c.dispatched, &c.succeeded, &c.failed, &c.panicked, &c.timedOut, &c.skipped, &c.declined} {
		u.Store(0)
	}
	c.elapsedNs.Store(0)
}

// SyncOption configures a SyncDispatcher.
type SyncOption func(*SyncDispatcher)

// WithPanicHandler sets the callback invoked when a handler panics.
func WithPanicHandler(h PanicHandler) SyncOption {
	return func(d *SyncDispatcher) {
		d.exec = NewExecutor(WithExecutorPanicHandler(h))
	}
}

// WithTimeout bounds each handler call. Zero means unbounded.
func WithTimeout(timeout time.Duration) SyncOption {
	return func(d *SyncDispatcher) {
		d.timeout = timeout
	}
}

// NewSyncDispatcher returns a dispatcher with the given options applied.
func NewSyncDispatcher(opts ...SyncOption) *SyncDispatcher {
	d := &SyncDispatcher{exec: NewExecutor()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs one handler and records its outcome.
func (d *SyncDispatcher) Dispatch(ctx context.Context, event any, handler Handler) Result {
	d.n.dispatched.Add(1)
	r := d.exec.ExecuteWithTimeout(ctx, event, handler, d.timeout)
	d.n.observe(r)
	return r
}

// DispatchAll runs every handler in order regardless of failures. Once
// ctx is done the handlers not yet run are reported as skipped.
func (d *SyncDispatcher) DispatchAll(ctx context.Context, event any, handlers []Handler) []Result {
	return d.run(ctx, event, handlers, false)
}

// DispatchUntilError is DispatchAll that also stops at the first error or
// panic. The returned slice always has one entry per handler.
func (d *SyncDispatcher) DispatchUntilError(ctx context.Context, event any, handlers []Handler) []Result {
	return d.run(ctx, event, handlers, true)
}

func (d *SyncDispatcher) run(ctx context.Context, event any, handlers []Handler, failFast bool) []Result {
	out := make([]Result, len(handlers))

	for i, h := range handlers {
		out[i] = d.Dispatch(ctx, event, h)

		if failFast && out[i].IsFailure() {
			d.skip(out[i+1:], nil)
			break
		}
		if err := ctx.Err(); err != nil {
			d.skip(out[i+1:], err)
			break
		}
	}

	return out
}

func (d *SyncDispatcher) skip(rest []Result, cause error) {
	for i := range rest {
		rest[i] = skippedResult(cause)
	}
	d.n.skipped.Add(uint64(len(rest)))
}

// Stats returns a snapshot of the counters. Fields are loaded one at a
// time, so a snapshot taken during dispatch may be slightly inconsistent.
func (d *SyncDispatcher) Stats() SyncDispatcherStats {
	s := SyncDispatcherStats{
		Dispatched:    d.n.dispatched.Load(),
		Succeeded:     d.n.succeeded.Load(),
		Failed:        d.n.failed.Load(),
		Panicked:      d.n.panicked.Load(),
		TimedOut:      d.n.timedOut.Load(),
		Skipped:       d.n.skipped.Load(),
		Declined:      d.n.declined.Load(),
		TotalDuration: time.Duration(d.n.elapsedNs.Load()),
	}
	if s.Dispatched > 0 {
		s.AvgDuration = s.TotalDuration / time.Duration(s.Dispatched)
	}
	return s
}

// ResetStats zeroes the counters.
func (d *SyncDispatcher) ResetStats() {
	d.n.reset()
}

// SyncDispatcherStats is a point-in-time view of dispatcher counters.
type SyncDispatcherStats struct {
	Dispatched uint64 // Dispatch calls, skipped ones included
	Succeeded  uint64
	Failed     uint64 // errors, timeouts included
	Panicked   uint64
	TimedOut   uint64
	Skipped    uint64 // not run: ctx done or fail-fast stop
	Declined   uint64

	TotalDuration time.Duration
	AvgDuration   time.Duration
}
