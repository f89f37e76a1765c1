// Package event provides an in-process publish/subscribe event bus.
//
// Independent components register listeners for named topics and receive
// synchronously dispatched events when another component publishes to that
// topic. There is no broker, no persistence and no queue: Publish is a
// direct fan-out that returns once every listener has returned.
//
// # Architecture
//
//	                    ┌──────────────────────────────────────────┐
//	                    │               Event Bus                   │
//	                    │  - Registry (topic → ordered listeners)   │
//	                    │  - Sync fan-out via dispatch              │
//	                    │  - Report, Stats, Prometheus metrics      │
//	                    └──────────────────────────────────────────┘
//	                                      │
//	          ┌───────────────────────────┼───────────────────────────┐
//	          ▼                           ▼                           ▼
//	┌─────────────────┐         ┌─────────────────┐         ┌─────────────────┐
//	│   Subscriber    │         │     Filter      │         │   Publisher     │
//	│  - Tracks subs  │         │  - Source-based │         │  - Source and   │
//	│  - Close all    │         │  - Payload keys │         │    correlation  │
//	└─────────────────┘         └─────────────────┘         └─────────────────┘
//
// # Topics
//
// Topics are exact-match keys. Any non-empty string works; dot notation
// is the convention:
//
//	orders.created
//	billing.invoice.paid
//
// There is no wildcard matching; "orders.*" is just another key.
//
// # Ordering and Snapshots
//
// Listeners of a topic run in registration order. Publish takes a snapshot
// of the topic's listeners when it starts; listeners added while it runs
// are not invoked by that publish, and listeners removed while it runs
// still receive it. Only a subscription paused before its turn is skipped.
// No lock is held while a listener runs, so a listener may subscribe,
// unsubscribe or publish.
//
// # Failures
//
// A listener fails by returning an error or panicking. The failure is
// recorded in the Report as a *ListenerError and the remaining listeners
// still run, unless eventBus.failFast is set. Panics unwrap to *PanicError
// and match ErrListenerPanic; timeouts (eventBus.listenerTimeout) match
// ErrListenerTimeout.
//
// # Usage
//
//	bus := event.NewBus(cfg, event.WithLogger(logger))
//	defer bus.Close()
//
//	sub, err := bus.SubscribeFunc("orders.created", func(ctx context.Context, e event.Event) error {
//	    return ship(e.Payload.String("id", ""))
//	})
//
//	report := bus.Publish(ctx, "orders.created", event.Payload{"id": "42"})
//	if err := report.Err(); err != nil {
//	    log.Printf("listeners failed: %v", err)
//	}
//	bus.Unsubscribe(sub)
package event
