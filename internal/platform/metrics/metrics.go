// Package metrics records saga outcomes for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SagaMetrics counts lifecycle operations and compensations.
type SagaMetrics struct {
	operations    *prometheus.CounterVec
	compensations *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewSagaMetrics creates the collectors and registers them with reg.
func NewSagaMetrics(reg prometheus.Registerer) *SagaMetrics {
	m := &SagaMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parking",
			Subsystem: "booking",
			Name:      "saga_total",
			Help:      "Booking lifecycle operations segmented by operation and outcome.",
		}, []string{"operation", "outcome"}),
		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parking",
			Subsystem: "booking",
			Name:      "compensations_total",
			Help:      "Inventory release calls issued to undo a reservation, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "parking",
			Subsystem: "booking",
			Name:      "saga_duration_seconds",
			Help:      "Latency distribution of booking lifecycle operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(m.operations, m.compensations, m.duration)
	return m
}

// ObserveSaga records one finished operation. outcome is "success" or an error kind.
func (m *SagaMetrics) ObserveSaga(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveCompensation records one compensating release. outcome is "success" or "failure".
func (m *SagaMetrics) ObserveCompensation(outcome string) {
	if m == nil {
		return
	}
	m.compensations.WithLabelValues(outcome).Inc()
}
