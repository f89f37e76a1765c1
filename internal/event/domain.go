package event

import (
	"strings"
	"sync"
	"sync/atomic"
)

// DomainKey is the payload key that names an event's domain explicitly.
const DomainKey = "domain"

// DefaultDomain is the domain of events that name none.
const DefaultDomain = "default"

// DomainOf returns the domain e belongs to: Metadata.Domain when set, then
// the payload's "domain" string, then the part of the topic before its
// first dot. Events matching none of these are in DefaultDomain. The
// result is lower-cased.
func DomainOf(e Event) string {
	if e.Metadata.Domain != "" {
		return strings.ToLower(e.Metadata.Domain)
	}
	if d := e.Payload.String(DomainKey, ""); d != "" {
		return strings.ToLower(d)
	}
	if prefix, _, ok := strings.Cut(e.Topic.String(), "."); ok && prefix != "" {
		return strings.ToLower(prefix)
	}
	return DefaultDomain
}

// Transformer rewrites a payload crossing from one domain to another. It
// receives a private copy and may modify and return it.
type Transformer func(p Payload, from, to string) Payload

// transforms holds the per-target-domain transformer chains of a bus. The
// chains are fixed at construction.
type transforms struct {
	chains  map[string][]Transformer
	applied atomic.Uint64
	onApply func(from, to string)
}

func newTransforms(chains map[string][]Transformer, onApply func(from, to string)) *transforms {
	return &transforms{chains: chains, onApply: onApply}
}

// apply returns e as seen by a listener in domain to. Events already in
// that domain pass through untouched; others get a cloned payload run
// through the chain registered for to, in registration order.
func (x *transforms) apply(e Event, to string) Event {
	if x == nil || to == "" {
		return e
	}
	to = strings.ToLower(to)
	from := DomainOf(e)
	if from == to {
		return e
	}

	p := e.Payload.Clone()
	if p == nil {
		p = Payload{}
	}
	for _, t := range x.chains[to] {
		if out := t(p, from, to); out != nil {
			p = out
		}
	}

	x.applied.Add(1)
	if x.onApply != nil {
		x.onApply(from, to)
	}

	e.Payload = p
	e.Metadata.Domain = to
	return e
}

// domainCounts tracks published events per domain.
type domainCounts struct {
	mu sync.Mutex
	n  map[string]uint64
}

func (c *domainCounts) inc(domain string) {
	c.mu.Lock()
	if c.n == nil {
		c.n = make(map[string]uint64)
	}
	c.n[domain]++
	c.mu.Unlock()
}

func (c *domainCounts) snapshot() map[string]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]uint64, len(c.n))
	for d, n := range c.n {
		out[d] = n
	}
	return out
}
