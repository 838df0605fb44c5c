package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Calculations counts calculator runs by entry point and outcome.
	Calculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_calculations_total",
			Help: "Payment schedule calculations",
		},
		[]string{"source", "status"},
	)

	CalculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schedule_calculation_duration_seconds",
			Help:    "Time spent producing a payment schedule",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"source"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_cache_lookups_total",
			Help: "Preview cache lookups",
		},
		[]string{"result"},
	)

	PlansStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_plans_stored_total",
			Help: "Payment plans persisted",
		},
	)
)
