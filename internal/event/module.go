package event

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dshills/topicbus/internal/config"
)

// Module returns the fx module that provides the event Bus.
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(NewFromParams),
		fx.Invoke(registerLifecycle),
	)
}

// Params are the dependencies of the bus.
type Params struct {
	fx.In

	Config     *config.Config        `optional:"true"`
	Logger     *zap.Logger           `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// NewFromParams builds a Bus from fx parameters.
func NewFromParams(p Params) Bus {
	opts := []BusOption{WithRegisterer(p.Registerer)}
	if p.Logger != nil {
		opts = append(opts, WithLogger(p.Logger.Named("event")))
	}
	return NewBus(p.Config, opts...)
}

func registerLifecycle(lc fx.Lifecycle, b Bus) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return b.Close()
		},
	})
}
