package event

import (
	"reflect"
	"strings"
)

// Common filter predicates for event subscription.

// FilterBySource creates a filter that only allows events from the specified source.
func FilterBySource(source string) FilterFunc {
	return func(e Event) bool {
		return e.Metadata.Source == source
	}
}

// FilterBySourcePrefix creates a filter that only allows events from sources starting with prefix.
func FilterBySourcePrefix(prefix string) FilterFunc {
	return func(e Event) bool {
		return e.Metadata.Source != "" && strings.HasPrefix(e.Metadata.Source, prefix)
	}
}

// FilterExcludeSource creates a filter that excludes events from the specified source.
func FilterExcludeSource(source string) FilterFunc {
	return func(e Event) bool {
		return e.Metadata.Source != source
	}
}

// FilterByCorrelation creates a filter that only allows events with the specified correlation ID.
func FilterByCorrelation(correlationID string) FilterFunc {
	return func(e Event) bool {
		return e.Metadata.CorrelationID == correlationID
	}
}

// FilterPayloadKey creates a filter for events whose payload has a value
// at path. With no values any value passes; otherwise the value must deeply
// equal one of them, so list and object values compare by content.
func FilterPayloadKey(path string, values ...any) FilterFunc {
	return func(e Event) bool {
		v, ok := e.Payload.Get(path)
		if !ok {
			return false
		}
		if len(values) == 0 {
			return true
		}
		for _, want := range values {
			if reflect.DeepEqual(v, want) {
				return true
			}
		}
		return false
	}
}

// FilterPayload creates a filter from a predicate over the payload.
func FilterPayload(predicate func(p Payload) bool) FilterFunc {
	return func(e Event) bool {
		return predicate(e.Payload)
	}
}

// FilterAnd combines multiple filters with AND logic.
// All filters must pass for the event to be delivered.
func FilterAnd(filters ...FilterFunc) FilterFunc {
	return func(e Event) bool {
		for _, f := range filters {
			if !f(e) {
				return false
			}
		}
		return true
	}
}

// FilterOr combines multiple filters with OR logic.
// At least one filter must pass for the event to be delivered.
func FilterOr(filters ...FilterFunc) FilterFunc {
	return func(e Event) bool {
		for _, f := range filters {
			if f(e) {
				return true
			}
		}
		return false
	}
}

// FilterNot negates a filter.
func FilterNot(filter FilterFunc) FilterFunc {
	return func(e Event) bool {
		return !filter(e)
	}
}
