package config

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config is an immutable set of options handed to the event bus at
// construction. Values are addressed by dot-separated paths such as
// "eventBus.failFast". Lookups never fail: a missing or mistyped key
// yields the caller's default.
type Config struct {
	values map[string]any
}

// New creates a Config from the given mapping.
// The mapping is deep-copied so later changes by the caller are not observed.
func New(values map[string]any) *Config {
	if values == nil {
		return Empty()
	}
	return &Config{values: Clone(values)}
}

// Empty returns a Config with no values set.
func Empty() *Config {
	return &Config{values: map[string]any{}}
}

// WithDefaults returns a new Config in which defaults fill every path
// the receiver leaves unset. The receiver is not modified.
func (c *Config) WithDefaults(defaults map[string]any) *Config {
	merged := DeepMerge(Clone(defaults), Clone(c.raw()))
	return &Config{values: merged}
}

// Get returns the raw value at path.
// Returns nil, false if the path doesn't exist.
func (c *Config) Get(path string) (any, bool) {
	if c == nil {
		return nil, false
	}
	val, ok := getByPath(c.values, path)
	if !ok {
		return nil, false
	}
	switch v := val.(type) {
	case map[string]any:
		return Clone(v), true
	case []any:
		return cloneList(v), true
	}
	return val, true
}

// Has reports whether a value is set at path.
func (c *Config) Has(path string) bool {
	_, ok := c.Get(path)
	return ok
}

// String returns the string at path, or def.
func (c *Config) String(path, def string) string {
	val, ok := c.Get(path)
	if !ok {
		return def
	}
	s, ok := val.(string)
	if !ok {
		return def
	}
	return s
}

// Int returns the integer at path, or def.
// Floats are truncated; numeric strings are parsed.
func (c *Config) Int(path string, def int) int {
	val, ok := c.Get(path)
	if !ok {
		return def
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// Float64 returns the number at path, or def.
func (c *Config) Float64(path string, def float64) float64 {
	val, ok := c.Get(path)
	if !ok {
		return def
	}
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// Bool returns the boolean at path, or def.
func (c *Config) Bool(path string, def bool) bool {
	val, ok := c.Get(path)
	if !ok {
		return def
	}
	switch v := val.(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Duration returns the duration at path, or def.
// Accepts time.Duration values, strings such as "250ms", and integers
// interpreted as milliseconds.
func (c *Config) Duration(path string, def time.Duration) time.Duration {
	val, ok := c.Get(path)
	if !ok {
		return def
	}
	switch v := val.(type) {
	case time.Duration:
		return v
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	case int:
		return time.Duration(v) * time.Millisecond
	case int64:
		return time.Duration(v) * time.Millisecond
	case float64:
		return time.Duration(v * float64(time.Millisecond))
	}
	return def
}

// Map returns a copy of the nested map at path, or nil.
func (c *Config) Map(path string) map[string]any {
	val, ok := c.Get(path)
	if !ok {
		return nil
	}
	m, _ := val.(map[string]any)
	return m
}

// IsEnabled reports whether feature + ".enabled" is true.
func (c *Config) IsEnabled(feature string) bool {
	return c.Bool(feature+".enabled", false)
}

// Keys returns every leaf path in sorted order.
func (c *Config) Keys() []string {
	var keys []string
	collectKeys(c.raw(), "", &keys)
	sort.Strings(keys)
	return keys
}

// All returns a deep copy of every value.
func (c *Config) All() map[string]any {
	return Clone(c.raw())
}

func (c *Config) raw() map[string]any {
	if c == nil {
		return nil
	}
	return c.values
}

func collectKeys(m map[string]any, prefix string, keys *[]string) {
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok && len(nested) > 0 {
			collectKeys(nested, path, keys)
			continue
		}
		*keys = append(*keys, path)
	}
}

// getByPath navigates a nested map using a dot-separated path.
func getByPath(data map[string]any, path string) (any, bool) {
	if data == nil || path == "" {
		return nil, false
	}

	current := any(data)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		val, exists := m[part]
		if !exists {
			return nil, false
		}

		current = val
	}

	return current, true
}
