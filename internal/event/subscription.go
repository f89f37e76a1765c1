package event

import (
	"context"
	"sync/atomic"

	"github.com/dshills/topicbus/internal/event/dispatch"
	"github.com/dshills/topicbus/internal/event/topic"
)

// SubscriptionState is the lifecycle position of a subscription.
// Active and Paused may alternate; Cancelled is terminal.
type SubscriptionState int32

// Subscription states.
const (
	SubscriptionStateActive SubscriptionState = iota
	SubscriptionStatePaused
	SubscriptionStateCancelled
)

var subscriptionStateNames = [...]string{"active", "paused", "cancelled"}

func (s SubscriptionState) String() string {
	if s < 0 || int(s) >= len(subscriptionStateNames) {
		return "unknown"
	}
	return subscriptionStateNames[s]
}

// Subscription is the handle returned by Subscribe. It names exactly one
// registered listener, so passing it to Unsubscribe or calling Cancel
// removes that listener and no other.
type Subscription interface {
	ID() string
	Topic() topic.Topic
	Name() string   // label from WithName, or ""
	Domain() string // domain from WithDomain, or ""

	State() SubscriptionState
	IsActive() bool
	IsPaused() bool

	// Pause and Resume toggle delivery without giving up the listener's
	// position in the fan-out order.
	Pause()
	Resume()

	// Cancel removes the listener from the bus for good.
	Cancel()
}

// SubscriptionConfig contains configuration for a subscription.
type SubscriptionConfig struct {
	// Name labels the subscription in logs and failure reports.
	Name string

	// Filter is an optional predicate to filter events.
	// If set, events are only delivered if Filter returns true.
	Filter FilterFunc

	// Once removes the subscription after its first delivery.
	Once bool

	// Domain is the domain the listener works in. Events from other
	// domains reach it through the bus transformers for this domain.
	// Empty means events are delivered as published.
	Domain string
}

// SubscriptionOption is a function that configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithName sets the subscription label.
func WithName(name string) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Name = name
	}
}

// WithFilter sets a filter predicate.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Filter = f
	}
}

// WithOnce sets the subscription to auto-cancel after the first event.
// The listener is invoked at most once even when publishes race.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

// WithDomain places the listener in domain d. Events published in another
// domain are delivered with a transformed copy of their payload.
func WithDomain(d string) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Domain = d
	}
}

// subscription is the internal implementation of Subscription.
// It is also the dispatch.Handler the bus fans out to.
type subscription struct {
	id       string
	topic    topic.Topic
	listener Listener
	config   SubscriptionConfig
	state    atomic.Int32
	registry *Registry

	// transforms is shared with the bus; nil disables domain transformation.
	transforms *transforms
}

func newSubscription(id string, t topic.Topic, l Listener, r *Registry, opts ...SubscriptionOption) *subscription {
	var config SubscriptionConfig
	for _, opt := range opts {
		opt(&config)
	}

	s := &subscription{
		id:       id,
		topic:    t,
		listener: l,
		config:   config,
		registry: r,
	}
	s.state.Store(int32(SubscriptionStateActive))
	return s
}

// ID returns the subscription ID.
func (s *subscription) ID() string {
	return s.id
}

// Topic returns the subscribed topic.
func (s *subscription) Topic() topic.Topic {
	return s.topic
}

// Name returns the subscription label.
func (s *subscription) Name() string {
	return s.config.Name
}

// Domain returns the listener's domain.
func (s *subscription) Domain() string {
	return s.config.Domain
}

// State returns the current subscription state.
func (s *subscription) State() SubscriptionState {
	return SubscriptionState(s.state.Load())
}

// IsActive returns true if the subscription is active.
func (s *subscription) IsActive() bool {
	return s.State() == SubscriptionStateActive
}

// IsPaused returns true if the subscription is paused.
func (s *subscription) IsPaused() bool {
	return s.State() == SubscriptionStatePaused
}

// IsCancelled returns true if the subscription is cancelled.
func (s *subscription) IsCancelled() bool {
	return s.State() == SubscriptionStateCancelled
}

// Pause temporarily stops event delivery.
func (s *subscription) Pause() {
	s.state.CompareAndSwap(int32(SubscriptionStateActive), int32(SubscriptionStatePaused))
}

// Resume restarts event delivery.
func (s *subscription) Resume() {
	s.state.CompareAndSwap(int32(SubscriptionStatePaused), int32(SubscriptionStateActive))
}

// Cancel permanently cancels the subscription and removes it from its registry.
func (s *subscription) Cancel() {
	s.markCancelled()
	if s.registry != nil {
		s.registry.Remove(s.id)
	}
}

func (s *subscription) markCancelled() {
	s.state.Store(int32(SubscriptionStateCancelled))
}

// Handle implements dispatch.Handler. Paused and filtered subscriptions
// decline the event without invoking the listener. A subscription removed
// after the publish took its snapshot is still invoked, except a once
// subscription, which runs at most one time.
func (s *subscription) Handle(ctx context.Context, ev any) error {
	e, ok := ev.(Event)
	if !ok {
		return dispatch.ErrDeclined
	}

	if s.config.Filter != nil && !s.config.Filter(e) {
		return dispatch.ErrDeclined
	}

	if s.config.Once {
		// Claim the single delivery before invoking.
		if !s.state.CompareAndSwap(int32(SubscriptionStateActive), int32(SubscriptionStateCancelled)) {
			return dispatch.ErrDeclined
		}
		if s.registry != nil {
			s.registry.Remove(s.id)
		}
	} else if s.IsPaused() {
		return dispatch.ErrDeclined
	}

	return s.listener.Handle(ctx, s.transforms.apply(e, s.config.Domain))
}
