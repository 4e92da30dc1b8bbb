package payments

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	"github.com/angelmondragon/bookverse-backend/pkg/metrics"
)

func counterValue(t *testing.T, reg *prometheus.Registry, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "bookverse_payments_charges_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			if labelValue(metric, "outcome") == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelValue(metric *dto.Metric, name string) string {
	for _, label := range metric.GetLabel() {
		if label.GetName() == name {
			return label.GetValue()
		}
	}
	return ""
}

func TestInstrumentedRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewPaymentMetrics(reg)

	ok := WithMetrics(NewFixedGateway(nil), m)
	declined := WithMetrics(NewFixedGateway(Declined(enums.PaymentProviderAirtel, "no")), m)

	_, _ = ok.Charge(context.Background(), airtelRequest())
	_, _ = ok.Charge(context.Background(), airtelRequest())
	_, _ = declined.Charge(context.Background(), airtelRequest())

	if got := counterValue(t, reg, "success"); got != 2 {
		t.Fatalf("success count = %v, want 2", got)
	}
	if got := counterValue(t, reg, "declined"); got != 1 {
		t.Fatalf("declined count = %v, want 1", got)
	}
}
