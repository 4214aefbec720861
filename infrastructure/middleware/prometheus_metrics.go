// Package middleware provides cross-cutting infrastructure for the
// benchmark harness, currently the Prometheus implementation of the
// metrics collector port.
package middleware

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/olib-ai/bizcon/internal/ports"
)

// benchmark score scale is 0-10; bucket at half-point resolution.
var scoreBuckets = prometheus.LinearBuckets(0, 0.5, 21)

// PrometheusMetrics implements ports.MetricsCollector, exposing run
// counts, run durations, and score distributions per model and scenario.
type PrometheusMetrics struct {
	runsTotal      *prometheus.CounterVec
	operationTotal *prometheus.CounterVec
	gauges         *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
	durations      *prometheus.HistogramVec
	scores         *prometheus.HistogramVec
	categoryScores *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the harness metrics on reg. Passing nil
// uses the default registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizcon_runs_total",
				Help: "Completed scenario runs per model and scenario.",
			},
			[]string{"model", "scenario"},
		),
		operationTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizcon_operations_total",
				Help: "Counter events not covered by a dedicated metric.",
			},
			[]string{"metric", "model"},
		),
		gauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bizcon_state",
				Help: "Current state values reported by the harness.",
			},
			[]string{"metric", "model"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bizcon_operation_latency_ms",
				Help:    "Latency of harness operations in milliseconds.",
				Buckets: prometheus.ExponentialBuckets(10, 2, 12),
			},
			[]string{"operation", "model"},
		),
		durations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bizcon_run_duration_ms",
				Help:    "Wall-clock duration of one scenario run in milliseconds.",
				Buckets: prometheus.ExponentialBuckets(100, 2, 12),
			},
			[]string{"model", "scenario"},
		),
		scores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bizcon_run_overall_score",
				Help:    "Overall weighted score distribution per run.",
				Buckets: scoreBuckets,
			},
			[]string{"model", "scenario"},
		),
		categoryScores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bizcon_run_category_score",
				Help:    "Per-category score distribution per run.",
				Buckets: scoreBuckets,
			},
			[]string{"model", "scenario", "category"},
		),
	}
}

// RecordLatency records operation latency in milliseconds.
func (pm *PrometheusMetrics) RecordLatency(_ context.Context, operation string, value float64, labels map[string]string) {
	pm.latency.WithLabelValues(operation, labels["model"]).Observe(value)
}

// RecordCounter routes run counts to the dedicated counter and everything
// else to the generic operation counter.
func (pm *PrometheusMetrics) RecordCounter(_ context.Context, metric string, value float64, labels map[string]string) {
	switch metric {
	case "runs_total":
		pm.runsTotal.WithLabelValues(labels["model"], labels["scenario"]).Add(value)
	default:
		pm.operationTotal.WithLabelValues(metric, labels["model"]).Add(value)
	}
}

// RecordGauge sets a named state value.
func (pm *PrometheusMetrics) RecordGauge(_ context.Context, metric string, value float64, labels map[string]string) {
	pm.gauges.WithLabelValues(metric, labels["model"]).Set(value)
}

// RecordHistogram routes run durations and scores to their dedicated
// histograms; anything else lands in the operation latency histogram.
func (pm *PrometheusMetrics) RecordHistogram(_ context.Context, metric string, value float64, labels map[string]string) {
	switch metric {
	case "run_duration_ms":
		pm.durations.WithLabelValues(labels["model"], labels["scenario"]).Observe(value)
	case "run_overall_score":
		pm.scores.WithLabelValues(labels["model"], labels["scenario"]).Observe(value)
	case "run_category_score":
		pm.categoryScores.WithLabelValues(labels["model"], labels["scenario"], labels["category"]).Observe(value)
	default:
		pm.latency.WithLabelValues(metric, labels["model"]).Observe(value)
	}
}

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
