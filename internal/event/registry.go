package event

import (
	"sort"
	"sync"

	"github.com/dshills/topicbus/internal/event/topic"
)

// Registry manages subscriptions organized by topic.
// It is thread-safe for concurrent access.
//
// Per-topic slices are copy-on-write: every mutation installs a new slice,
// so a slice returned by Snapshot never changes afterwards.
type Registry struct {
	mu     sync.RWMutex
	subs   map[topic.Topic][]*subscription
	byID   map[string]*subscription
	sealed bool

	// onChange, when set, receives the change in subscription count after
	// every mutation. It runs under the write lock.
	onChange func(delta int)
}

// NewRegistry creates a new subscription registry.
func NewRegistry() *Registry {
	return &Registry{
		subs: make(map[topic.Topic][]*subscription),
		byID: make(map[string]*subscription),
	}
}

// Add appends a subscription to its topic's sequence. It returns false,
// leaving the registry unchanged, once the registry has been sealed.
func (r *Registry) Add(sub *subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return false
	}

	t := sub.Topic()
	cur := r.subs[t]

	next := make([]*subscription, len(cur), len(cur)+1)
	copy(next, cur)
	r.subs[t] = append(next, sub)

	r.byID[sub.ID()] = sub
	r.changed(1)
	return true
}

func (r *Registry) changed(delta int) {
	if r.onChange != nil && delta != 0 {
		r.onChange(delta)
	}
}

// Remove removes a subscription by ID.
// Returns false if no such subscription is registered.
func (r *Registry) Remove(subID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, exists := r.byID[subID]
	if !exists {
		return false
	}

	t := sub.Topic()
	cur := r.subs[t]

	next := make([]*subscription, 0, len(cur))
	for _, s := range cur {
		if s.ID() != subID {
			next = append(next, s)
		}
	}

	// Zero listeners and an absent topic are the same thing.
	if len(next) == 0 {
		delete(r.subs, t)
	} else {
		r.subs[t] = next
	}

	delete(r.byID, subID)
	r.changed(-1)

	return true
}

// RemoveTopic removes every subscription for a topic in one step.
// Returns the removed subscriptions in their registration order.
func (r *Registry) RemoveTopic(t topic.Topic) []*subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, exists := r.subs[t]
	if !exists {
		return nil
	}

	delete(r.subs, t)
	for _, s := range subs {
		delete(r.byID, s.ID())
	}
	r.changed(-len(subs))
	return subs
}

// Get returns a subscription by ID.
func (r *Registry) Get(subID string) (*subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, exists := r.byID[subID]
	return sub, exists
}

// Snapshot returns the topic's subscriptions in registration order.
// The returned slice must not be modified.
func (r *Registry) Snapshot(t topic.Topic) []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.subs[t]
}

// Count returns the total number of subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byID)
}

// CountByTopic returns the number of subscriptions for a topic.
func (r *Registry) CountByTopic(t topic.Topic) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.subs[t])
}

// Topics returns all topics with at least one subscription, sorted.
func (r *Registry) Topics() []topic.Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.subs) == 0 {
		return nil
	}

	topics := make([]topic.Topic, 0, len(r.subs))
	for t := range r.subs {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool {
		return topics[i] < topics[j]
	})
	return topics
}

// Clear removes all subscriptions and returns them.
func (r *Registry) Clear() []*subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.clearLocked()
}

// Seal clears the registry and makes every later Add fail. It returns the
// removed subscriptions. Sealing an already sealed registry returns nil.
func (r *Registry) Seal() []*subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return nil
	}
	r.sealed = true
	return r.clearLocked()
}

func (r *Registry) clearLocked() []*subscription {
	all := make([]*subscription, 0, len(r.byID))
	for _, subs := range r.subs {
		all = append(all, subs...)
	}

	r.subs = make(map[topic.Topic][]*subscription)
	r.byID = make(map[string]*subscription)
	r.changed(-len(all))
	return all
}
