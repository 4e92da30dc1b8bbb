package metrics

import "github.com/prometheus/client_golang/prometheus"

// CheckoutMetrics counts checkout submissions by terminal outcome.
type CheckoutMetrics struct {
	submissions *prometheus.CounterVec
	rejected    *prometheus.CounterVec
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "submissions_total",
		Help:      "Checkout submissions that created an order, by outcome.",
	}, []string{"outcome"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "rejected_total",
		Help:      "Checkout submissions rejected before an order was created.",
	}, []string{"reason"})
	reg.MustRegister(submissions, rejected)
	return &CheckoutMetrics{submissions: submissions, rejected: rejected}
}

// IncSettled records an order that reached a terminal payment state.
func (m *CheckoutMetrics) IncSettled(outcome string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(labelOrUnknown(outcome)).Inc()
}

// IncRejected records a submission refused before any side effect.
func (m *CheckoutMetrics) IncRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(labelOrUnknown(reason)).Inc()
}
