// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "laurel_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "laurel_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ReservationConflicts counts reservation attempts that lost a race or hit
	// an already-reserved badge.
	ReservationConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "laurel_reservation_conflicts_total",
		Help: "Total number of badge reservation conflicts",
	})

	// ReservationsActive is the gauge of unconsumed reservations.
	ReservationsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "laurel_reservations_active",
		Help: "Number of unconsumed badge reservations",
	})

	// EligibilityEvaluations counts eligibility evaluations by outcome.
	EligibilityEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "laurel_eligibility_evaluations_total",
		Help: "Total eligibility evaluations by outcome",
	}, []string{"outcome"})

	// PromotionTransitions counts promotion lifecycle transitions by target status.
	PromotionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "laurel_promotion_transitions_total",
		Help: "Total promotion lifecycle transitions by target status",
	}, []string{"to"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
