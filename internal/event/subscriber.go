package event

import (
	"errors"
	"sync"

	"github.com/dshills/topicbus/internal/event/topic"
)

// ErrSubscriberClosed is returned when subscribing through a closed Subscriber.
var ErrSubscriberClosed = errors.New("subscriber is closed")

// Subscriber scopes subscriptions to one component. Everything it
// subscribed is removed from the bus when it is closed.
type Subscriber struct {
	bus Bus

	mu     sync.Mutex
	owned  map[string]Subscription
	closed bool
}

// NewSubscriber returns a Subscriber that registers on bus.
func NewSubscriber(bus Bus) *Subscriber {
	return &Subscriber{bus: bus, owned: make(map[string]Subscription)}
}

// Subscribe registers listener on the bus and tracks the handle.
func (s *Subscriber) Subscribe(t topic.Topic, listener Listener, opts ...SubscriptionOption) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSubscriberClosed
	}

	sub, err := s.bus.Subscribe(t, listener, opts...)
	if err != nil {
		return nil, err
	}
	s.owned[sub.ID()] = sub
	return sub, nil
}

// SubscribeFunc is Subscribe for a plain function.
func (s *Subscriber) SubscribeFunc(t topic.Topic, fn ListenerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilListener
	}
	return s.Subscribe(t, fn, opts...)
}

// SubscribeOnce is Subscribe with WithOnce.
func (s *Subscriber) SubscribeOnce(t topic.Topic, listener Listener, opts ...SubscriptionOption) (Subscription, error) {
	return s.Subscribe(t, listener, append(opts, WithOnce())...)
}

// SubscribeWithFilter is Subscribe with WithFilter(filter).
func (s *Subscriber) SubscribeWithFilter(t topic.Topic, listener Listener, filter FilterFunc, opts ...SubscriptionOption) (Subscription, error) {
	return s.Subscribe(t, listener, append(opts, WithFilter(filter))...)
}

// Unsubscribe stops tracking sub and removes it from the bus.
func (s *Subscriber) Unsubscribe(sub Subscription) bool {
	if sub == nil {
		return false
	}

	s.mu.Lock()
	delete(s.owned, sub.ID())
	s.mu.Unlock()

	return s.bus.Unsubscribe(sub)
}

// Close removes every tracked subscription and rejects later Subscribe calls.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for id, sub := range s.owned {
		s.bus.Unsubscribe(sub)
		delete(s.owned, id)
	}
	return nil
}

// Count returns how many tracked subscriptions are still live. Once
// subscriptions that already fired are not counted.
func (s *Subscriber) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, sub := range s.owned {
		if sub.State() != SubscriptionStateCancelled {
			n++
		}
	}
	return n
}

// IsClosed reports whether Close has been called.
func (s *Subscriber) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Bus returns the bus the subscriber registers on.
func (s *Subscriber) Bus() Bus {
	return s.bus
}
