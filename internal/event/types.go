package event

import "context"

// Listener is the interface for event listeners.
type Listener interface {
	// Handle processes an event. A non-nil error or a panic is a failure
	// for this listener only; other listeners still receive the event.
	Handle(ctx context.Context, e Event) error
}

// ListenerFunc is a function adapter for Listener.
type ListenerFunc func(ctx context.Context, e Event) error

// Handle implements the Listener interface.
func (f ListenerFunc) Handle(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// FilterFunc is a predicate for filtering events.
// Return true to allow the event, false to filter it out.
type FilterFunc func(e Event) bool

// PanicHandler is called when a listener panics.
type PanicHandler func(e Event, sub Subscription, recovered any, stack []byte)

// DefaultPanicHandler does nothing. Panics are reported through the Report
// returned by Publish.
func DefaultPanicHandler(e Event, sub Subscription, recovered any, stack []byte) {}

// Stats contains event bus statistics.
type Stats struct {
	// EventsPublished is the total number of events published to a valid topic.
	EventsPublished uint64

	// ListenersInvoked is the total number of listener invocations.
	ListenersInvoked uint64

	// ListenersSucceeded is the number of invocations that returned nil.
	ListenersSucceeded uint64

	// ListenerErrors is the number of listeners that returned errors (timeouts included).
	ListenerErrors uint64

	// ListenerPanics is the number of listeners that panicked.
	ListenerPanics uint64

	// ListenerTimeouts is the number of listeners that exceeded the listener timeout.
	ListenerTimeouts uint64

	// ListenersSkipped is the number of listeners not invoked because of
	// fail-fast or context cancellation.
	ListenersSkipped uint64

	// ListenersDeclined is the number of listeners that were filtered or paused.
	ListenersDeclined uint64

	// AvgListenerTimeNs is the average listener execution time in nanoseconds.
	AvgListenerTimeNs int64

	// Subscriptions is the current number of registered listeners.
	Subscriptions int

	// Topics is the current number of topics with at least one listener.
	Topics int

	// Transformations is the number of payloads transformed for a listener
	// in another domain.
	Transformations uint64

	// DomainEvents is the number of published events per domain.
	DomainEvents map[string]uint64
}
