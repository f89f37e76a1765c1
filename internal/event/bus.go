package event

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/topicbus/internal/config"
	"github.com/dshills/topicbus/internal/event/dispatch"
	"github.com/dshills/topicbus/internal/event/topic"
)

// Bus is the central event bus interface.
type Bus interface {
	// Publishing
	Publish(ctx context.Context, t topic.Topic, payload Payload) Report
	PublishEvent(ctx context.Context, e Event) Report

	// Subscription
	Subscribe(t topic.Topic, listener Listener, opts ...SubscriptionOption) (Subscription, error)
	SubscribeFunc(t topic.Topic, fn ListenerFunc, opts ...SubscriptionOption) (Subscription, error)
	Unsubscribe(sub Subscription) bool
	UnsubscribeTopic(t topic.Topic) int

	// Status
	ListenerCount(t topic.Topic) int
	Topics() []topic.Topic
	Stats() Stats
	Config() *config.Config

	// Lifecycle
	Close() error
}

// bus is the default Bus implementation.
type bus struct {
	registry   *Registry
	dispatcher *dispatch.SyncDispatcher

	cfg         *config.Config
	failFast    bool
	logFailures bool
	timeout     time.Duration

	logger       *zap.Logger
	metrics      *metrics
	panicHandler PanicHandler
	transforms   *transforms

	closed atomic.Bool

	eventsPublished atomic.Uint64
	domainEvents    domainCounts
}

// NewBus creates a new event bus reading its behavior from cfg.
// A nil cfg behaves like an empty configuration.
func NewBus(cfg *config.Config, opts ...BusOption) Bus {
	if cfg == nil {
		cfg = config.Empty()
	}

	o := defaultBusOptions()
	for _, opt := range opts {
		opt(&o)
	}

	b := &bus{
		registry:     NewRegistry(),
		cfg:          cfg,
		failFast:     cfg.Bool(config.KeyFailFast, false),
		logFailures:  cfg.Bool(config.KeyLogFailures, true),
		timeout:      cfg.Duration(config.KeyListenerTimeout, 0),
		logger:       o.logger,
		panicHandler: o.panicHandler,
	}

	if cfg.Bool(config.KeyMonitoring, true) {
		m := newMetrics(o.registerer)
		b.metrics = m
		b.registry.onChange = func(delta int) { m.subscriptions.Add(float64(delta)) }
	}

	b.transforms = newTransforms(o.transformers, func(from, to string) {
		if b.metrics != nil {
			b.metrics.transformations.WithLabelValues(from, to).Inc()
		}
	})

	b.dispatcher = dispatch.NewSyncDispatcher(
		dispatch.WithTimeout(b.timeout),
		dispatch.WithPanicHandler(b.onPanic),
	)

	b.logger.Debug("event bus created",
		zap.Bool("failFast", b.failFast),
		zap.Duration("listenerTimeout", b.timeout),
		zap.Bool("metrics", b.metrics != nil),
	)

	return b
}

// onPanic adapts the dispatch panic callback to the bus PanicHandler.
func (b *bus) onPanic(ev any, h dispatch.Handler, recovered any, stack []byte) {
	e, _ := ev.(Event)
	sub, _ := h.(*subscription)
	if sub == nil {
		b.panicHandler(e, nil, recovered, stack)
		return
	}
	b.panicHandler(e, sub, recovered, stack)
}

// Subscribe registers listener for t and returns its handle.
// This method is safe to call concurrently, including from a listener.
func (b *bus) Subscribe(t topic.Topic, listener Listener, opts ...SubscriptionOption) (Subscription, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTopic, err)
	}
	if listener == nil {
		return nil, ErrNilListener
	}

	sub := newSubscription(generateID(), t, listener, b.registry, opts...)
	sub.transforms = b.transforms
	if !b.registry.Add(sub) {
		return nil, ErrBusClosed
	}

	b.logger.Debug("listener subscribed",
		zap.String("topic", t.String()),
		zap.String("subscription", sub.ID()),
		zap.String("name", sub.Name()),
	)

	return sub, nil
}

// SubscribeFunc is a convenience method for subscribing with a function listener.
func (b *bus) SubscribeFunc(t topic.Topic, fn ListenerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilListener
	}
	return b.Subscribe(t, fn, opts...)
}

// Unsubscribe removes exactly the listener identified by sub.
// Returns false when sub is nil or no longer registered.
func (b *bus) Unsubscribe(sub Subscription) bool {
	if sub == nil {
		return false
	}

	if !b.registry.Remove(sub.ID()) {
		return false
	}
	if s, ok := sub.(*subscription); ok {
		s.markCancelled()
	}

	b.logger.Debug("listener unsubscribed",
		zap.String("topic", sub.Topic().String()),
		zap.String("subscription", sub.ID()),
	)
	return true
}

// UnsubscribeTopic removes every listener registered for t.
// Returns the number removed; an absent topic yields 0.
func (b *bus) UnsubscribeTopic(t topic.Topic) int {
	removed := b.registry.RemoveTopic(t)
	for _, s := range removed {
		s.markCancelled()
	}

	if len(removed) > 0 {
		b.logger.Debug("topic unsubscribed",
			zap.String("topic", t.String()),
			zap.Int("removed", len(removed)),
		)
	}
	return len(removed)
}

// Publish delivers payload to every listener registered for t at the
// moment of the call. It returns after every listener has returned.
func (b *bus) Publish(ctx context.Context, t topic.Topic, payload Payload) Report {
	return b.PublishEvent(ctx, NewEvent(t, payload, ""))
}

// PublishEvent delivers e to every listener registered for e.Topic.
// Unknown-topic, empty-topic and closed-bus publishes are no-ops with an empty report.
func (b *bus) PublishEvent(ctx context.Context, e Event) Report {
	if e.Metadata.ID == "" {
		e.Metadata.ID = generateID()
	}
	if e.Metadata.Timestamp.IsZero() {
		e.Metadata.Timestamp = time.Now()
	}

	report := Report{Topic: e.Topic, EventID: e.Metadata.ID}

	if b.closed.Load() || !e.Topic.IsValid() {
		return report
	}
	e.Metadata.Domain = DomainOf(e)

	b.eventsPublished.Add(1)
	b.domainEvents.inc(e.Metadata.Domain)
	if b.metrics != nil {
		b.metrics.published.WithLabelValues(e.Topic.String()).Inc()
		b.metrics.domainEvents.WithLabelValues(e.Metadata.Domain).Inc()
	}

	subs := b.registry.Snapshot(e.Topic)
	if len(subs) == 0 {
		return report
	}

	handlers := make([]dispatch.Handler, len(subs))
	for i, s := range subs {
		handlers[i] = s
	}

	var results []dispatch.Result
	if b.failFast {
		results = b.dispatcher.DispatchUntilError(ctx, e, handlers)
	} else {
		results = b.dispatcher.DispatchAll(ctx, e, handlers)
	}

	for i, r := range results {
		b.collect(&report, e, subs[i], i, r)
	}

	if b.failFast && len(report.Failures) > 0 {
		report.Aborted = true
	}

	return report
}

// collect folds one dispatch result into the report.
func (b *bus) collect(report *Report, e Event, sub *subscription, index int, r dispatch.Result) {
	outcome := outcomeDelivered

	switch {
	case r.Skipped:
		outcome = outcomeSkipped
		report.Skipped++
		if r.Error != nil && report.Interrupted == nil {
			report.Interrupted = r.Error
		}
	case r.Declined:
		outcome = outcomeDeclined
		report.Declined++
	case r.IsFailure():
		le := b.listenerError(e, sub, index, r)
		report.Failures = append(report.Failures, le)
		switch {
		case r.Panicked:
			outcome = outcomePanicked
		case r.TimedOut:
			outcome = outcomeTimedOut
		default:
			outcome = outcomeFailed
		}
		b.logFailure(le, r)
	default:
		report.Delivered++
	}

	if b.metrics != nil {
		b.metrics.listeners.WithLabelValues(e.Topic.String(), outcome).Inc()
		if !r.Skipped && !r.Declined {
			b.metrics.duration.WithLabelValues(e.Topic.String()).Observe(r.Duration.Seconds())
		}
	}
}

func (b *bus) listenerError(e Event, sub *subscription, index int, r dispatch.Result) *ListenerError {
	err := r.Error
	switch {
	case r.Panicked:
		err = &PanicError{Value: r.PanicValue, Stack: string(r.PanicStack)}
	case r.TimedOut:
		err = fmt.Errorf("%w: %w", ErrListenerTimeout, r.Error)
	}

	return &ListenerError{
		SubscriptionID: sub.ID(),
		Name:           sub.Name(),
		Topic:          e.Topic,
		Index:          index,
		Err:            err,
	}
}

func (b *bus) logFailure(le *ListenerError, r dispatch.Result) {
	if !b.logFailures {
		return
	}

	fields := []zap.Field{
		zap.String("topic", le.Topic.String()),
		zap.String("subscription", le.SubscriptionID),
		zap.String("name", le.Name),
		zap.Int("index", le.Index),
		zap.Duration("duration", r.Duration),
		zap.Error(le.Err),
	}
	if r.Panicked {
		b.logger.Error("listener panicked", append(fields, zap.ByteString("stack", r.PanicStack))...)
		return
	}
	b.logger.Warn("listener failed", fields...)
}

// ListenerCount returns the number of listeners registered for t.
func (b *bus) ListenerCount(t topic.Topic) int {
	return b.registry.CountByTopic(t)
}

// Topics returns all topics with at least one listener, sorted.
func (b *bus) Topics() []topic.Topic {
	return b.registry.Topics()
}

// Config returns the configuration the bus was built with.
func (b *bus) Config() *config.Config {
	return b.cfg
}

// Stats returns current bus statistics.
func (b *bus) Stats() Stats {
	ds := b.dispatcher.Stats()

	return Stats{
		EventsPublished:    b.eventsPublished.Load(),
		ListenersInvoked:   ds.Succeeded + ds.Failed + ds.Panicked,
		ListenersSucceeded: ds.Succeeded,
		ListenerErrors:     ds.Failed,
		ListenerPanics:     ds.Panicked,
		ListenerTimeouts:   ds.TimedOut,
		ListenersSkipped:   ds.Skipped,
		ListenersDeclined:  ds.Declined,
		AvgListenerTimeNs:  int64(ds.AvgDuration),
		Subscriptions:      b.registry.Count(),
		Topics:             len(b.registry.Topics()),
		Transformations:    b.transforms.applied.Load(),
		DomainEvents:       b.domainEvents.snapshot(),
	}
}

// Close cancels every subscription and clears the registry.
// Later Subscribe calls fail with ErrBusClosed and later publishes are no-ops.
// Close is idempotent.
func (b *bus) Close() error {
	if b.closed.Swap(true) {
		return nil
	}

	removed := b.registry.Seal()
	for _, s := range removed {
		s.markCancelled()
	}

	b.logger.Debug("event bus closed", zap.Int("removed", len(removed)))
	return nil
}
