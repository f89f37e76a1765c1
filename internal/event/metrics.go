package event

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "topicbus"

// Outcome label values for listener metrics.
const (
	outcomeDelivered = "delivered"
	outcomeFailed    = "failed"
	outcomePanicked  = "panicked"
	outcomeTimedOut  = "timed_out"
	outcomeDeclined  = "declined"
	outcomeSkipped   = "skipped"
)

// metrics holds the Prometheus collectors for one bus. Buses sharing a
// registerer share the collectors, so every series sums over those buses.
type metrics struct {
	published       *prometheus.CounterVec
	domainEvents    *prometheus.CounterVec
	listeners       *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	transformations *prometheus.CounterVec
	subscriptions   prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		published: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: metricsNamespace, Subsystem: "bus", Name: "events_published_total", Help: "Total number of events published by topic."},
			[]string{"topic"},
		),
		domainEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: metricsNamespace, Subsystem: "bus", Name: "domain_events_total", Help: "Total number of events published by domain."},
			[]string{"domain"},
		),
		transformations: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: metricsNamespace, Subsystem: "bus", Name: "domain_transformations_total", Help: "Payloads transformed for a listener in another domain."},
			[]string{"from", "to"},
		),
		listeners: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: metricsNamespace, Subsystem: "bus", Name: "listener_invocations_total", Help: "Listener outcomes by topic and outcome."},
			[]string{"topic", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: metricsNamespace, Subsystem: "bus", Name: "listener_duration_seconds", Help: "Listener execution time by topic.", Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10)},
			[]string{"topic"},
		),
		subscriptions: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: metricsNamespace, Subsystem: "bus", Name: "subscriptions", Help: "Current number of registered listeners."},
		),
	}

	if reg != nil {
		m.published = registerOrExisting(reg, m.published)
		m.domainEvents = registerOrExisting(reg, m.domainEvents)
		m.transformations = registerOrExisting(reg, m.transformations)
		m.listeners = registerOrExisting(reg, m.listeners)
		m.duration = registerOrExisting(reg, m.duration)
		m.subscriptions = registerOrExisting(reg, m.subscriptions)
	}
	return m
}

// registerOrExisting registers c, or returns the collector already
// registered under the same descriptor.
func registerOrExisting[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}
