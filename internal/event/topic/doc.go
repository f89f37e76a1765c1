// Package topic defines the Topic type used as the routing key of the
// event bus.
//
// Topics use dot notation purely as a naming convention:
//
//	orders.created
//	orders.payment.failed
//	inventory.stock.low
//
// The bus routes on the exact string and accepts any non-empty topic.
// "orders" subscribers do not see "orders.created" events. Lint checks
// the convention for callers that want it, rejecting empty segments and
// the pattern-like characters '*', '#' and '>'.
package topic
