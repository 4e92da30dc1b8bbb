package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records mobile money charge outcomes per provider.
type PaymentMetrics struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payments",
		Name:      "charges_total",
		Help:      "Charge attempts partitioned by provider and outcome.",
	}, []string{"provider", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "payments",
		Name:      "charge_duration_seconds",
		Help:      "Time spent waiting on the payment provider.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"provider"})
	reg.MustRegister(outcomes, duration)
	return &PaymentMetrics{outcomes: outcomes, duration: duration}
}

// Observe records one finished charge.
func (m *PaymentMetrics) Observe(provider, outcome string, duration time.Duration) {
	if m == nil || m.outcomes == nil {
		return
	}
	provider = labelOrUnknown(provider)
	m.outcomes.WithLabelValues(provider, labelOrUnknown(outcome)).Inc()
	m.duration.WithLabelValues(provider).Observe(duration.Seconds())
}
