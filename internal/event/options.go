package event

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// BusOption configures an event Bus.
type BusOption func(*busOptions)

// busOptions holds the collaborators a bus is built with.
// Behavior switches come from the config holder instead.
type busOptions struct {
	logger       *zap.Logger
	registerer   prometheus.Registerer
	panicHandler PanicHandler
	transformers map[string][]Transformer
}

func defaultBusOptions() busOptions {
	return busOptions{
		logger:       zap.NewNop(),
		panicHandler: DefaultPanicHandler,
	}
}

// WithLogger sets the logger used for subscription and failure logging.
func WithLogger(logger *zap.Logger) BusOption {
	return func(o *busOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRegisterer registers the bus metrics with reg.
// Without it metrics are still collected but not exported.
func WithRegisterer(reg prometheus.Registerer) BusOption {
	return func(o *busOptions) {
		o.registerer = reg
	}
}

// WithPanicHandler sets a callback invoked when a listener panics.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(o *busOptions) {
		if h != nil {
			o.panicHandler = h
		}
	}
}

// WithTransformer adds t to the chain run for listeners in domain to that
// receive events from another domain. Chains run in the order added.
func WithTransformer(to string, t Transformer) BusOption {
	return func(o *busOptions) {
		if t == nil {
			return
		}
		if o.transformers == nil {
			o.transformers = make(map[string][]Transformer)
		}
		to = strings.ToLower(to)
		o.transformers[to] = append(o.transformers[to], t)
	}
}
