package topic

import (
	"errors"
	"fmt"
	"strings"
)

// Topic names an event category using dot notation.
// Examples: "orders.created", "inventory.stock.low".
//
// Topics are exact-match lookup keys; there is no wildcard or
// hierarchical matching.
type Topic string

// Separator is the character used to separate topic segments.
const Separator = "."

// reserved holds characters Lint rejects.
const reserved = "*#> \t\r\n"

// Validation errors. Lint wraps the convention errors with the offending topic.
var (
	// ErrEmpty is returned for the empty topic.
	ErrEmpty = errors.New("topic is empty")

	// ErrMalformed is returned for leading, trailing or doubled separators.
	ErrMalformed = errors.New("topic has an empty segment")

	// ErrReservedChar is returned when a topic contains wildcard or whitespace characters.
	ErrReservedChar = errors.New("topic contains a reserved character")
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split by the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// SegmentCount returns the number of segments in the topic.
func (t Topic) SegmentCount() int {
	if t == "" {
		return 0
	}
	return strings.Count(string(t), Separator) + 1
}

// Parent returns the parent topic by removing the last segment.
// Returns an empty topic if there is no parent.
//
// Example: "orders.payment.failed" -> "orders.payment"
func (t Topic) Parent() Topic {
	s := string(t)
	idx := strings.LastIndex(s, Separator)
	if idx < 0 {
		return ""
	}
	return Topic(s[:idx])
}

// Child returns a child topic by appending a segment.
//
// Example: "orders".Child("created") -> "orders.created"
func (t Topic) Child(segment string) Topic {
	if t == "" {
		return Topic(segment)
	}
	return Topic(string(t) + Separator + segment)
}

// Base returns the last segment of the topic.
//
// Example: "orders.payment.failed" -> "failed"
func (t Topic) Base() string {
	s := string(t)
	idx := strings.LastIndex(s, Separator)
	if idx < 0 {
		return s
	}
	return s[idx+1:]
}

// Validate returns nil if the topic can be used as a registry key.
// Any non-empty string is a valid key; topics are compared byte for byte.
func (t Topic) Validate() error {
	if t == "" {
		return ErrEmpty
	}
	return nil
}

// IsValid returns true if Validate returns nil.
func (t Topic) IsValid() bool {
	return t != ""
}

// Lint applies the dot-notation naming convention on top of Validate.
// A conventional topic:
//   - Does not start or end with a separator
//   - Does not contain consecutive separators
//   - Does not contain wildcard or whitespace characters
//
// The bus does not call Lint; callers that want the convention enforced
// check it before subscribing.
func (t Topic) Lint() error {
	if err := t.Validate(); err != nil {
		return err
	}
	s := string(t)
	if strings.ContainsAny(s, reserved) {
		return fmt.Errorf("%w: %q", ErrReservedChar, s)
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return fmt.Errorf("%w: %q", ErrMalformed, s)
		}
	}
	return nil
}

// Join joins multiple segments into a topic.
func Join(segments ...string) Topic {
	return Topic(strings.Join(segments, Separator))
}
