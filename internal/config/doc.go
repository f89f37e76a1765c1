// Package config provides the immutable configuration holder consulted by
// the event bus.
//
// A Config is built once from a plain map (usually produced by the loader
// sub-package) and never changes afterwards. Values are addressed with
// dot-separated paths:
//
//	cfg := config.New(map[string]any{
//	    "eventBus": map[string]any{"failFast": true},
//	})
//	cfg.Bool(config.KeyFailFast, false) // true
//	cfg.Duration(config.KeyListenerTimeout, 0) // 0, key not set
//
// Lookups never return errors. An absent key, or a value of the wrong
// type, yields the default supplied by the caller, so a missing option can
// never take the bus down.
//
// # Sub-packages
//
//   - loader: TOML, YAML and environment variable sources
//
// # Layering
//
// Sources are merged lowest priority first:
//
//	┌─────────────────────────────┐
//	│  3. Environment (TOPICBUS_) │  ← Highest priority
//	├─────────────────────────────┤
//	│  2. Config file (toml/yaml) │
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
package config
