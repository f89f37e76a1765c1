package event

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/dshills/topicbus/internal/event/topic"
)

// ErrInvalidPayload is returned by ParsePayload for input that is not a JSON object.
var ErrInvalidPayload = errors.New("payload must be a JSON object")

// Event is a single published notification.
// The same Event value is handed to every listener of a publish, so
// listeners must treat the payload as read-only.
type Event struct {
	// Topic is the category the event was published under.
	Topic topic.Topic

	// Payload is the event data.
	Payload Payload

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata contains standard information attached to every event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the component that published the event.
	Source string

	// CorrelationID links related events (e.g., request/response).
	CorrelationID string

	// CausationID links to the event that caused this one.
	CausationID string

	// Domain is the event's domain. Publish normalizes it with DomainOf.
	Domain string
}

// NewEvent creates a new event with the given topic and payload.
func NewEvent(t topic.Topic, payload Payload, source string) Event {
	return Event{
		Topic:   t,
		Payload: payload,
		Metadata: Metadata{
			ID:        generateID(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// NewEventWithMetadata creates a new event with custom metadata.
// Missing ID and Timestamp are filled in.
func NewEventWithMetadata(t topic.Topic, payload Payload, meta Metadata) Event {
	if meta.ID == "" {
		meta.ID = generateID()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	return Event{
		Topic:    t,
		Payload:  payload,
		Metadata: meta,
	}
}

// WithCorrelation returns a copy of the event with a correlation ID set.
func (e Event) WithCorrelation(correlationID string) Event {
	e.Metadata.CorrelationID = correlationID
	return e
}

// WithCausation returns a copy of the event with a causation ID set.
func (e Event) WithCausation(causationID string) Event {
	e.Metadata.CausationID = causationID
	return e
}

// WithSource returns a copy of the event with a different source.
func (e Event) WithSource(source string) Event {
	e.Metadata.Source = source
	return e
}

func generateID() string {
	return uuid.NewString()
}

// Payload is the JSON-like data carried by an event.
type Payload map[string]any

// Get returns the value at a dot-separated path.
func (p Payload) Get(path string) (any, bool) {
	if p == nil || path == "" {
		return nil, false
	}

	var current any = map[string]any(p)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Has reports whether a value exists at path.
func (p Payload) Has(path string) bool {
	_, ok := p.Get(path)
	return ok
}

// String returns the string at path, or def.
func (p Payload) String(path, def string) string {
	if v, ok := p.Get(path); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Float64 returns the number at path, or def.
// JSON numbers decode as float64; integer kinds are converted.
func (p Payload) Float64(path string, def float64) float64 {
	v, ok := p.Get(path)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	}
	return def
}

// Clone returns a deep copy of the payload.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	return clonePayloadMap(p)
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Payload:
		return m, true
	}
	return nil, false
}

func clonePayloadMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = clonePayloadValue(v)
	}
	return dst
}

func clonePayloadValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return clonePayloadMap(val)
	case Payload:
		return Payload(clonePayloadMap(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = clonePayloadValue(item)
		}
		return out
	default:
		return v
	}
}

// ParsePayload decodes a JSON object into a Payload.
// Numbers decode as float64, arrays as []any and objects as map[string]any.
func ParsePayload(data []byte) (Payload, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidPayload
	}
	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return nil, ErrInvalidPayload
	}
	m, ok := result.Value().(map[string]any)
	if !ok {
		return nil, ErrInvalidPayload
	}
	return Payload(m), nil
}
