package event

import (
	"context"
	"testing"
)

func TestFilters(t *testing.T) {
	e := NewEvent("orders.created", Payload{"region": "eu", "priority": true}, "checkout.web").
		WithCorrelation("corr-1")

	tests := []struct {
		name   string
		filter FilterFunc
		want   bool
	}{
		{"source match", FilterBySource("checkout.web"), true},
		{"source mismatch", FilterBySource("billing"), false},
		{"source prefix", FilterBySourcePrefix("checkout."), true},
		{"source prefix mismatch", FilterBySourcePrefix("billing."), false},
		{"exclude source", FilterExcludeSource("checkout.web"), false},
		{"exclude other source", FilterExcludeSource("billing"), true},
		{"correlation", FilterByCorrelation("corr-1"), true},
		{"correlation mismatch", FilterByCorrelation("corr-2"), false},
		{"payload key present", FilterPayloadKey("region"), true},
		{"payload key absent", FilterPayloadKey("customer"), false},
		{"payload key value", FilterPayloadKey("region", "us", "eu"), true},
		{"payload key wrong value", FilterPayloadKey("region", "us"), false},
		{"payload predicate", FilterPayload(func(p Payload) bool { return p.Has("priority") }), true},
		{"and", FilterAnd(FilterBySource("checkout.web"), FilterPayloadKey("region", "eu")), true},
		{"and one fails", FilterAnd(FilterBySource("checkout.web"), FilterPayloadKey("region", "us")), false},
		{"and empty", FilterAnd(), true},
		{"or", FilterOr(FilterBySource("billing"), FilterPayloadKey("region", "eu")), true},
		{"or none", FilterOr(FilterBySource("billing"), FilterPayloadKey("region", "us")), false},
		{"or empty", FilterOr(), false},
		{"not", FilterNot(FilterBySource("billing")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter(e); got != tt.want {
				t.Errorf("filter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterBySourcePrefix_EmptySource(t *testing.T) {
	e := NewEvent("orders.created", nil, "")
	if FilterBySourcePrefix("")(e) {
		t.Error("empty source should not match any prefix")
	}
}

func TestFilterPayloadKey_StructuredValues(t *testing.T) {
	e := NewEvent("orders.created", Payload{
		"items":    []any{"a", "b"},
		"customer": map[string]any{"id": "c-1"},
	}, "")

	tests := []struct {
		name   string
		filter FilterFunc
		want   bool
	}{
		{"equal list", FilterPayloadKey("items", []any{"a", "b"}), true},
		{"different list", FilterPayloadKey("items", []any{"a"}), false},
		{"equal object", FilterPayloadKey("customer", map[string]any{"id": "c-1"}), true},
		{"different object", FilterPayloadKey("customer", map[string]any{"id": "c-2"}), false},
		{"list against scalar", FilterPayloadKey("items", "a"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter(e); got != tt.want {
				t.Errorf("filter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterPayloadKey_ParsedListIsRejectionNotFailure(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	bus.SubscribeFunc("orders.created", nopListener(), WithFilter(FilterPayloadKey("items", []any{"b"})))
	bus.SubscribeFunc("orders.created", nopListener(), WithFilter(FilterPayloadKey("items", []any{"a"})))

	payload, err := ParsePayload([]byte(`{"items":["a"]}`))
	if err != nil {
		t.Fatalf("ParsePayload() = %v", err)
	}

	report := bus.Publish(context.Background(), "orders.created", payload)
	if len(report.Failures) != 0 {
		t.Fatalf("Failures = %v, want none", report.Err())
	}
	if report.Delivered != 1 || report.Declined != 1 {
		t.Errorf("Delivered = %d, Declined = %d, want 1 and 1", report.Delivered, report.Declined)
	}
}
