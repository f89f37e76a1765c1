package app

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/topicbus/internal/config"
	"github.com/dshills/topicbus/internal/config/loader"
	"github.com/dshills/topicbus/internal/event"
)

var _ loader.FileSystem = fstest.MapFS{}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"bus.toml": {Data: []byte(`
[eventBus]
failFast = true
listenerTimeout = "250ms"

[logging]
level = "warn"
`)},
		"bus.yaml": {Data: []byte("eventBus:\n  logFailures: false\nmonitoring:\n  enabled: false\n")},
		"bad.toml": {Data: []byte("[eventBus\nfailFast = ")},
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(Options{EnvPrefix: "TOPICBUS_TEST_NONE_"})
	require.NoError(t, err)

	assert.False(t, cfg.Bool(config.KeyFailFast, true))
	assert.True(t, cfg.Bool(config.KeyLogFailures, false))
	assert.True(t, cfg.IsEnabled("monitoring"))
	assert.Equal(t, "info", cfg.String(config.KeyLogLevel, ""))
	assert.Equal(t, time.Duration(0), cfg.Duration(config.KeyListenerTimeout, time.Second))
}

func TestLoadConfig_File(t *testing.T) {
	cfg, err := LoadConfig(Options{ConfigPath: "bus.toml", FS: testFS(), EnvPrefix: "TOPICBUS_TEST_NONE_"})
	require.NoError(t, err)

	assert.True(t, cfg.Bool(config.KeyFailFast, false))
	assert.Equal(t, 250*time.Millisecond, cfg.Duration(config.KeyListenerTimeout, 0))
	assert.Equal(t, "warn", cfg.String(config.KeyLogLevel, ""))
	assert.True(t, cfg.Bool(config.KeyLogFailures, false), "defaults fill unset keys")

	cfg, err = LoadConfig(Options{ConfigPath: "bus.yaml", FS: testFS(), EnvPrefix: "TOPICBUS_TEST_NONE_"})
	require.NoError(t, err)
	assert.False(t, cfg.Bool(config.KeyLogFailures, true))
	assert.False(t, cfg.IsEnabled("monitoring"))
}

func TestLoadConfig_Precedence(t *testing.T) {
	t.Setenv("TOPICBUS_PREC_FAIL_FAST", "false")
	t.Setenv("TOPICBUS_PREC_LOG_LEVEL", "error")

	cfg, err := LoadConfig(Options{
		ConfigPath: "bus.toml",
		FS:         testFS(),
		EnvPrefix:  "TOPICBUS_PREC_",
		LogLevel:   "debug",
		Overrides:  map[string]any{"eventBus.listenerTimeout": "1s"},
	})
	require.NoError(t, err)

	assert.False(t, cfg.Bool(config.KeyFailFast, true), "env overrides file")
	assert.Equal(t, "debug", cfg.String(config.KeyLogLevel, ""), "flag overrides env")
	assert.Equal(t, time.Second, cfg.Duration(config.KeyListenerTimeout, 0), "overrides win")
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(Options{ConfigPath: "bus.ini", FS: testFS()})
	require.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, loader.ErrUnsupportedFormat)

	_, err = LoadConfig(Options{ConfigPath: "bad.toml", FS: testFS()})
	require.ErrorIs(t, err, ErrConfig)
	var pe *loader.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(Options{ConfigPath: "missing.toml", FS: testFS(), EnvPrefix: "TOPICBUS_TEST_NONE_"})
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.String(config.KeyLogLevel, ""))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLogLevel(tt.input), tt.input)
	}

	assert.True(t, ValidLogLevel("WARN"))
	assert.False(t, ValidLogLevel("verbose"))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.New(map[string]any{"logging": map[string]any{"level": "error", "format": "json"}}))
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))

	logger, err = NewLogger(config.Empty())
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = NewLogger(config.New(map[string]any{"logging.format": "xml"}))
	assert.ErrorIs(t, err, ErrConfig)
}

func TestModule(t *testing.T) {
	var (
		bus    event.Bus
		cfg    *config.Config
		logger *zap.Logger
		gather prometheus.Gatherer
	)

	app := fxtest.New(t,
		Module(Options{
			ConfigPath: "bus.toml",
			FS:         testFS(),
			EnvPrefix:  "TOPICBUS_TEST_NONE_",
		}),
		fx.Populate(&bus, &cfg, &logger, &gather),
	)
	app.RequireStart()

	require.NotNil(t, bus)
	assert.Same(t, cfg, bus.Config())
	assert.True(t, bus.Config().Bool(config.KeyFailFast, false))
	assert.NotNil(t, logger)

	_, err := bus.SubscribeFunc("orders.created", func(ctx context.Context, e event.Event) error { return nil })
	require.NoError(t, err)
	report := bus.Publish(context.Background(), "orders.created", event.Payload{"id": "1"})
	assert.True(t, report.OK())

	families, err := gather.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "topicbus_bus_events_published_total")

	app.RequireStop()

	_, err = bus.SubscribeFunc("orders.created", func(ctx context.Context, e event.Event) error { return nil })
	assert.ErrorIs(t, err, event.ErrBusClosed)
}

func TestNew(t *testing.T) {
	var delivered bool

	application := New(Options{EnvPrefix: "TOPICBUS_TEST_NONE_", LogLevel: "error"},
		fx.Invoke(func(bus event.Bus) error {
			_, err := bus.SubscribeFunc("orders.created", func(ctx context.Context, e event.Event) error {
				delivered = true
				return nil
			})
			if err != nil {
				return err
			}
			bus.Publish(context.Background(), "orders.created", nil)
			return nil
		}),
	)
	require.NoError(t, application.Err())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, application.Start(ctx))
	require.NoError(t, application.Stop(ctx))

	assert.True(t, delivered)
}

func TestNew_InvalidConfig(t *testing.T) {
	application := New(Options{ConfigPath: "bus.ini", FS: testFS()})
	err := application.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrConfig.Error())
}
