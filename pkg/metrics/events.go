package metrics

import "github.com/prometheus/client_golang/prometheus"

// EventMetrics tracks the async analytics pipeline.
type EventMetrics struct {
	emitted *prometheus.CounterVec
	dropped *prometheus.CounterVec
	failed  *prometheus.CounterVec
}

func NewEventMetrics(reg prometheus.Registerer) *EventMetrics {
	if reg == nil {
		return &EventMetrics{}
	}
	emitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "emitted_total",
		Help:      "Analytics events written to every sink.",
	}, []string{"type"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "dropped_total",
		Help:      "Analytics events discarded because the queue was full or closed.",
	}, []string{"type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "sink_failures_total",
		Help:      "Analytics events a sink failed to record.",
	}, []string{"type"})
	reg.MustRegister(emitted, dropped, failed)
	return &EventMetrics{emitted: emitted, dropped: dropped, failed: failed}
}

func (m *EventMetrics) IncEmitted(eventType string) {
	if m == nil || m.emitted == nil {
		return
	}
	m.emitted.WithLabelValues(labelOrUnknown(eventType)).Inc()
}

func (m *EventMetrics) IncDropped(eventType string) {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.WithLabelValues(labelOrUnknown(eventType)).Inc()
}

func (m *EventMetrics) IncFailed(eventType string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(labelOrUnknown(eventType)).Inc()
}
