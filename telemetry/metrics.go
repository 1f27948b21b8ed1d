package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MetricCaseAttemptTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conformance",
		Name:      "case_attempt_total",
		Help:      "Total number of attempts made against providers, including retried ones.",
	}, []string{"provider", "network", "operation", "result"})

	MetricCaseRetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conformance",
		Name:      "case_retry_total",
		Help:      "Total number of attempts that followed a failed attempt of the same case.",
	}, []string{"provider", "network", "operation"})

	MetricCaseOutcomeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conformance",
		Name:      "case_outcome_total",
		Help:      "Total number of finished cases by outcome.",
	}, []string{"provider", "network", "operation", "outcome"})

	MetricCaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "conformance",
		Name:      "case_duration_seconds",
		Help:      "Wall time of a case across all of its attempts.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
	}, []string{"provider", "network", "operation"})

	MetricProviderExcludedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conformance",
		Name:      "provider_excluded_total",
		Help:      "Total number of provider/network pairs left out of a run.",
	}, []string{"provider", "network", "reason"})

	MetricRunActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "conformance",
		Name:      "run_active",
		Help:      "1 while a run is between start and end.",
	})
)
