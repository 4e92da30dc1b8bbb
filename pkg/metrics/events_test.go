package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestEventMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEventMetrics(reg)
	m.IncEmitted("book_purchase")
	m.IncEmitted("book_purchase")
	m.IncDropped("cart_add")
	m.IncFailed("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "bookverse_events_emitted_total", "type", "book_purchase"); err != nil || got != 2 {
		t.Fatalf("expected emitted=2, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "bookverse_events_dropped_total", "type", "cart_add"); err != nil || got != 1 {
		t.Fatalf("expected dropped=1, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "bookverse_events_sink_failures_total", "type", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected failures under unknown label, got %f err=%v", got, err)
	}
}

func TestPaymentAndHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	payments := NewPaymentMetrics(reg)
	httpMetrics := NewHTTPMetrics(reg)
	payments.Observe("airtel", "paid", 1500*time.Millisecond)
	httpMetrics.Observe("POST", "/api/v1/checkout/submit", 201, 20*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "bookverse_payments_charges_total", "outcome", "paid"); err != nil || got != 1 {
		t.Fatalf("expected one paid charge, got %f err=%v", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "bookverse_payments_charge_duration_seconds", "provider", "airtel"); err != nil || got != 1.5 {
		t.Fatalf("expected duration sum 1.5, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "bookverse_http_requests_total", "status", "201"); err != nil || got != 1 {
		t.Fatalf("expected one 201 request, got %f err=%v", got, err)
	}
}
