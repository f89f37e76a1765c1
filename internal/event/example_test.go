package event_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/topicbus/internal/config"
	"github.com/dshills/topicbus/internal/event"
)

// Example_basicUsage demonstrates basic event bus operations.
func Example_basicUsage() {
	bus := event.NewBus(config.Empty())
	defer bus.Close()

	_, err := bus.SubscribeFunc("orders.created", func(ctx context.Context, e event.Event) error {
		fmt.Println("Order created:", e.Payload.String("id", "?"))
		return nil
	})
	if err != nil {
		fmt.Printf("Subscribe failed: %v\n", err)
		return
	}

	report := bus.Publish(context.Background(), "orders.created", event.Payload{"id": "A-1"})
	fmt.Println("Delivered:", report.Delivered)

	// Output:
	// Order created: A-1
	// Delivered: 1
}

// Example_failureReport shows that a failing listener does not stop the others.
func Example_failureReport() {
	bus := event.NewBus(nil)
	defer bus.Close()

	bus.SubscribeFunc("orders.created", func(ctx context.Context, e event.Event) error {
		fmt.Println("email sent")
		return nil
	}, event.WithName("email"))
	bus.SubscribeFunc("orders.created", func(ctx context.Context, e event.Event) error {
		return errors.New("out of stock")
	}, event.WithName("inventory"))
	bus.SubscribeFunc("orders.created", func(ctx context.Context, e event.Event) error {
		fmt.Println("analytics recorded")
		return nil
	}, event.WithName("analytics"))

	report := bus.Publish(context.Background(), "orders.created", event.Payload{"id": "A-1"})
	for _, f := range report.Failures {
		fmt.Printf("failed: %s at %d\n", f.Name, f.Index)
	}
	fmt.Println("OK:", report.OK())

	// Output:
	// email sent
	// analytics recorded
	// failed: inventory at 1
	// OK: false
}

// Example_sourceFiltering demonstrates filtering events by source.
func Example_sourceFiltering() {
	bus := event.NewBus(nil)
	defer bus.Close()

	bus.SubscribeFunc("orders.created", func(ctx context.Context, e event.Event) error {
		fmt.Println("Received event from", e.Metadata.Source)
		return nil
	}, event.WithFilter(event.FilterBySource("checkout")))

	event.NewPublisher(bus, "admin").Publish(context.Background(), "orders.created", nil)
	event.NewPublisher(bus, "checkout").Publish(context.Background(), "orders.created", nil)

	// Output: Received event from checkout
}

// Example_unsubscribeTopic demonstrates removing every listener of a topic.
func Example_unsubscribeTopic() {
	bus := event.NewBus(nil)
	defer bus.Close()

	for i := 0; i < 3; i++ {
		bus.SubscribeFunc("orders.created", func(ctx context.Context, e event.Event) error {
			fmt.Println("should not run")
			return nil
		})
	}

	fmt.Println("Removed:", bus.UnsubscribeTopic("orders.created"))
	report := bus.Publish(context.Background(), "orders.created", nil)
	fmt.Println("Listeners:", report.Listeners())

	// Output:
	// Removed: 3
	// Listeners: 0
}

// Example_parsePayload decodes a JSON payload before publishing.
func Example_parsePayload() {
	bus := event.NewBus(nil)
	defer bus.Close()

	bus.SubscribeFunc("orders.created", func(ctx context.Context, e event.Event) error {
		fmt.Printf("%s for %s: %.2f\n", e.Payload.String("id", ""), e.Payload.String("customer.name", ""), e.Payload.Float64("total", 0))
		return nil
	})

	payload, err := event.ParsePayload([]byte(`{"id":"A-1","customer":{"name":"Ada"},"total":99.5}`))
	if err != nil {
		fmt.Println(err)
		return
	}
	bus.Publish(context.Background(), "orders.created", payload)

	// Output: A-1 for Ada: 99.50
}

// Example_domainTransformer demonstrates rewriting payloads for a listener
// in another domain.
func Example_domainTransformer() {
	bus := event.NewBus(nil, event.WithTransformer("billing", func(p event.Payload, from, to string) event.Payload {
		p["amount"] = p.Float64("cents", 0) / 100
		return p
	}))
	defer bus.Close()

	bus.SubscribeFunc("orders.created", func(ctx context.Context, e event.Event) error {
		fmt.Println(e.Metadata.Domain, e.Payload.Float64("amount", -1))
		return nil
	}, event.WithDomain("billing"))

	bus.Publish(context.Background(), "orders.created", event.Payload{"cents": 1250})

	// Output: billing 12.5
}
