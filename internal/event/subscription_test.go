package event

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/topicbus/internal/event/dispatch"
	"github.com/dshills/topicbus/internal/event/topic"
)

func TestSubscriptionState_String(t *testing.T) {
	tests := []struct {
		state    SubscriptionState
		expected string
	}{
		{SubscriptionStateActive, "active"},
		{SubscriptionStatePaused, "paused"},
		{SubscriptionStateCancelled, "cancelled"},
		{SubscriptionState(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("SubscriptionState.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewSubscription(t *testing.T) {
	sub := newSubscription("sub-1", topic.Topic("orders.created"), newTestListener(), nil,
		WithName("mailer"), WithOnce())

	if sub.ID() != "sub-1" {
		t.Errorf("expected ID sub-1, got %v", sub.ID())
	}
	if sub.Topic() != "orders.created" {
		t.Errorf("expected topic orders.created, got %v", sub.Topic())
	}
	if sub.Name() != "mailer" {
		t.Errorf("expected name mailer, got %v", sub.Name())
	}
	if !sub.config.Once {
		t.Error("expected Once to be set")
	}
	if !sub.IsActive() {
		t.Error("expected subscription to be active")
	}
}

func TestSubscription_PauseResume(t *testing.T) {
	sub := newSubscription("sub-1", "orders.created", newTestListener(), nil)

	sub.Pause()
	if !sub.IsPaused() {
		t.Error("expected paused after Pause()")
	}

	sub.Resume()
	if !sub.IsActive() {
		t.Error("expected active after Resume()")
	}

	sub.Cancel()
	sub.Resume()
	if !sub.IsCancelled() {
		t.Error("Resume() must not revive a cancelled subscription")
	}
	sub.Pause()
	if !sub.IsCancelled() {
		t.Error("Pause() must not change a cancelled subscription")
	}
}

func TestSubscription_CancelRemovesFromRegistry(t *testing.T) {
	r := NewRegistry()
	sub := newSubscription("sub-1", "orders.created", newTestListener(), r)
	r.Add(sub)

	sub.Cancel()

	if r.Count() != 0 {
		t.Errorf("expected registry to be empty, got %d", r.Count())
	}
}

func TestSubscription_Handle(t *testing.T) {
	var called int
	listener := ListenerFunc(func(ctx context.Context, e Event) error {
		called++
		return nil
	})

	ev := NewEvent("orders.created", Payload{"region": "eu"}, "test")

	tests := []struct {
		name       string
		setup      func(s *subscription)
		opts       []SubscriptionOption
		event      any
		wantErr    error
		wantCalled int
	}{
		{"active", nil, nil, ev, nil, 1},
		{"paused", func(s *subscription) { s.Pause() }, nil, ev, dispatch.ErrDeclined, 0},
		{"removed after snapshot", func(s *subscription) { s.markCancelled() }, nil, ev, nil, 1},
		{"filter pass", nil, []SubscriptionOption{WithFilter(FilterPayloadKey("region", "eu"))}, ev, nil, 1},
		{"filter reject", nil, []SubscriptionOption{WithFilter(FilterPayloadKey("region", "us"))}, ev, dispatch.ErrDeclined, 0},
		{"not an event", nil, nil, "raw", dispatch.ErrDeclined, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = 0
			sub := newSubscription("sub-1", "orders.created", listener, nil, tt.opts...)
			if tt.setup != nil {
				tt.setup(sub)
			}

			err := sub.Handle(context.Background(), tt.event)
			if !errors.Is(err, tt.wantErr) && err != tt.wantErr {
				t.Errorf("Handle() error = %v, want %v", err, tt.wantErr)
			}
			if called != tt.wantCalled {
				t.Errorf("listener called %d times, want %d", called, tt.wantCalled)
			}
		})
	}
}

func TestSubscription_HandleOnce(t *testing.T) {
	r := NewRegistry()
	var called int
	sub := newSubscription("sub-1", "orders.created", ListenerFunc(func(ctx context.Context, e Event) error {
		called++
		return nil
	}), r, WithOnce())
	r.Add(sub)

	ev := NewEvent("orders.created", nil, "")
	if err := sub.Handle(context.Background(), ev); err != nil {
		t.Fatalf("first Handle() = %v", err)
	}
	if err := sub.Handle(context.Background(), ev); !errors.Is(err, dispatch.ErrDeclined) {
		t.Errorf("second Handle() = %v, want ErrDeclined", err)
	}
	if called != 1 {
		t.Errorf("called = %d, want 1", called)
	}
	if r.Count() != 0 {
		t.Error("expected once subscription to be removed after delivery")
	}
}
