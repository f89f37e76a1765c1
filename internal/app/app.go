// Package app wires configuration, logging, metrics and the event bus into
// an fx application.
package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dshills/topicbus/internal/config"
	"github.com/dshills/topicbus/internal/config/loader"
	"github.com/dshills/topicbus/internal/event"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to a TOML or YAML configuration file.
	ConfigPath string

	// EnvPrefix is the environment variable prefix. Defaults to TOPICBUS_.
	EnvPrefix string

	// LogLevel overrides logging.level when set.
	LogLevel string

	// Overrides are applied on top of every other source.
	Overrides map[string]any

	// FS is the file system used to read ConfigPath. Defaults to the OS.
	FS loader.FileSystem
}

// LoadConfig builds the configuration from defaults, the config file,
// the environment and the explicit overrides, in that order.
func LoadConfig(opts Options) (*config.Config, error) {
	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = loader.DefaultEnvPrefix
	}

	loaders := []loader.Loader{}
	if opts.ConfigPath != "" {
		fsys := opts.FS
		if fsys == nil {
			fsys = loader.DefaultFS()
		}
		l, err := loader.ForPathWithFS(fsys, opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		loaders = append(loaders, l)
	}
	loaders = append(loaders, loader.NewEnvLoader(prefix))

	values, err := loader.LoadAll(loaders...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	values = config.DeepMerge(values, config.Clone(opts.Overrides))
	if opts.LogLevel != "" {
		values = config.DeepMerge(values, config.Clone(map[string]any{config.KeyLogLevel: opts.LogLevel}))
	}

	return config.New(values).WithDefaults(config.Defaults()), nil
}

// Module provides *config.Config, *zap.Logger and prometheus.Registerer
// (with its Gatherer) built from opts, plus the event bus.
func Module(opts Options) fx.Option {
	return fx.Module("app",
		fx.Provide(
			func() (*config.Config, error) { return LoadConfig(opts) },
			NewLogger,
			newRegistry,
		),
		event.Module(),
	)
}

// New builds the fx application. Extra options are appended after the
// application module, typically fx.Invoke calls that use the bus.
func New(opts Options, extra ...fx.Option) *fx.App {
	options := []fx.Option{
		Module(opts),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
	}
	options = append(options, extra...)
	return fx.New(options...)
}

type registryOut struct {
	fx.Out

	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

func newRegistry() registryOut {
	reg := prometheus.NewRegistry()
	return registryOut{Registerer: reg, Gatherer: reg}
}
