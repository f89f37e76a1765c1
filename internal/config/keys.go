package config

import "time"

// Keys consulted by the event bus and the application wiring.
const (
	// KeyFailFast stops a publish fan-out at the first listener failure.
	KeyFailFast = "eventBus.failFast"

	// KeyListenerTimeout bounds each listener invocation with a context deadline.
	KeyListenerTimeout = "eventBus.listenerTimeout"

	// KeyLogFailures logs every listener failure as it is collected.
	KeyLogFailures = "eventBus.logFailures"

	// KeyMonitoring enables Prometheus metrics. The bus reads it with
	// Bool(KeyMonitoring, true), so an absent key leaves metrics on.
	KeyMonitoring = "monitoring.enabled"

	// KeyLogLevel is the minimum log level (debug, info, warn, error).
	KeyLogLevel = "logging.level"

	// KeyLogFormat selects the log encoder (console or json).
	KeyLogFormat = "logging.format"
)

// Defaults returns the built-in defaults for every known key.
func Defaults() map[string]any {
	return map[string]any{
		"eventBus": map[string]any{
			"failFast":        false,
			"listenerTimeout": time.Duration(0),
			"logFailures":     true,
		},
		"monitoring": map[string]any{
			"enabled": true,
		},
		"logging": map[string]any{
			"level":  "info",
			"format": "console",
		},
	}
}
