package event

import (
	"go.uber.org/multierr"

	"github.com/dshills/topicbus/internal/event/topic"
)

// Report describes the outcome of one publish.
type Report struct {
	// Topic is the topic the event was published under.
	Topic topic.Topic

	// EventID is the ID of the published event.
	EventID string

	// Delivered is the number of listeners that returned without failure.
	Delivered int

	// Declined is the number of listeners not invoked because their
	// subscription was paused or its filter rejected the event.
	Declined int

	// Failures holds one entry per failed listener, in fan-out order.
	Failures []*ListenerError

	// Skipped is the number of listeners not invoked because the fan-out
	// stopped early.
	Skipped int

	// Aborted is true when fail-fast stopped the fan-out at a failure.
	Aborted bool

	// Interrupted is the context error that stopped the fan-out, if any.
	Interrupted error
}

// Listeners returns the number of listeners in the publish snapshot.
func (r Report) Listeners() int {
	return r.Delivered + r.Declined + len(r.Failures) + r.Skipped
}

// OK reports whether every invoked listener succeeded and the fan-out ran
// to completion.
func (r Report) OK() bool {
	return len(r.Failures) == 0 && r.Interrupted == nil
}

// Err combines all failures and the interruption cause into one error.
// Returns nil when OK.
func (r Report) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, f)
	}
	return multierr.Append(err, r.Interrupted)
}
