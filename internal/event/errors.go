package event

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dshills/topicbus/internal/event/topic"
)

// Sentinel errors for the event bus.
var (
	// ErrInvalidTopic is returned when a topic is empty.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrNilListener is returned when a nil listener is provided.
	ErrNilListener = errors.New("listener cannot be nil")

	// ErrBusClosed is returned when subscribing to a closed bus.
	ErrBusClosed = errors.New("event bus is closed")

	// ErrListenerPanic matches listener failures caused by a panic.
	ErrListenerPanic = errors.New("listener panicked")

	// ErrListenerTimeout matches listener failures caused by the listener timeout.
	ErrListenerTimeout = errors.New("listener timeout exceeded")
)

// ListenerError records the failure of one listener during a publish.
type ListenerError struct {
	// SubscriptionID is the ID of the subscription whose listener failed.
	SubscriptionID string

	// Name is the subscription label, if one was given.
	Name string

	// Topic is the topic the event was published under.
	Topic topic.Topic

	// Index is the listener's position in the fan-out.
	Index int

	// Err is the underlying error. For panics it is a *PanicError.
	Err error
}

// Error implements the error interface.
func (e *ListenerError) Error() string {
	who := e.SubscriptionID
	if e.Name != "" {
		who = e.Name + " (" + e.SubscriptionID + ")"
	}
	return "listener " + strconv.Itoa(e.Index) + " " + who + " on topic " + string(e.Topic) + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ListenerError) Unwrap() error {
	return e.Err
}

// IsPanic reports whether the listener panicked.
func (e *ListenerError) IsPanic() bool {
	return errors.Is(e.Err, ErrListenerPanic)
}

// PanicError wraps a panic value as an error.
type PanicError struct {
	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Is allows errors.Is to match PanicError with ErrListenerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrListenerPanic
}

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
