package event

import (
	"context"
	"time"

	"github.com/dshills/topicbus/internal/event/topic"
)

// timeNow is a variable to allow testing with fixed timestamps.
var timeNow = time.Now

// Publisher stamps a source on every event it publishes.
type Publisher struct {
	bus    Bus
	source string
}

// NewPublisher creates a new Publisher wrapping the given bus.
// The source parameter identifies where events originate (e.g., "orders", "billing").
func NewPublisher(bus Bus, source string) *Publisher {
	return &Publisher{
		bus:    bus,
		source: source,
	}
}

// Publish publishes payload under t with the publisher's source.
func (p *Publisher) Publish(ctx context.Context, t topic.Topic, payload Payload) Report {
	return p.bus.PublishEvent(ctx, p.newEvent(t, payload, Metadata{}))
}

// PublishWithCorrelation publishes an event with a correlation ID.
// Useful for tracking related events across operations.
func (p *Publisher) PublishWithCorrelation(ctx context.Context, t topic.Topic, payload Payload, correlationID string) Report {
	return p.bus.PublishEvent(ctx, p.newEvent(t, payload, Metadata{CorrelationID: correlationID}))
}

// PublishCausedBy publishes an event caused by cause. The correlation ID
// is carried over and the causation ID points at cause.
func (p *Publisher) PublishCausedBy(ctx context.Context, t topic.Topic, payload Payload, cause Event) Report {
	return p.bus.PublishEvent(ctx, p.newEvent(t, payload, Metadata{
		CorrelationID: cause.Metadata.CorrelationID,
		CausationID:   cause.Metadata.ID,
	}))
}

func (p *Publisher) newEvent(t topic.Topic, payload Payload, meta Metadata) Event {
	meta.ID = generateID()
	meta.Source = p.source
	meta.Timestamp = timeNow()
	return Event{
		Topic:    t,
		Payload:  payload,
		Metadata: meta,
	}
}

// Source returns the publisher's source identifier.
func (p *Publisher) Source() string {
	return p.source
}

// Bus returns the underlying bus.
func (p *Publisher) Bus() Bus {
	return p.bus
}
