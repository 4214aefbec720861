package middleware

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetricsRunCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPrometheusMetrics(reg)
	ctx := context.Background()

	labels := map[string]string{"model": "gpt-4o", "scenario": "s1"}
	pm.RecordCounter(ctx, "runs_total", 1, labels)
	pm.RecordCounter(ctx, "runs_total", 1, labels)

	count := testutil.ToFloat64(pm.runsTotal.WithLabelValues("gpt-4o", "s1"))
	assert.Equal(t, 2.0, count)
}

func TestPrometheusMetricsGenericCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPrometheusMetrics(reg)

	pm.RecordCounter(context.Background(), "tool_errors", 3, map[string]string{"model": "gpt-4o"})
	assert.Equal(t, 3.0, testutil.ToFloat64(pm.operationTotal.WithLabelValues("tool_errors", "gpt-4o")))
}

func TestPrometheusMetricsGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPrometheusMetrics(reg)

	pm.RecordGauge(context.Background(), "pending_tasks", 5, map[string]string{"model": "gpt-4o"})
	pm.RecordGauge(context.Background(), "pending_tasks", 2, map[string]string{"model": "gpt-4o"})
	assert.Equal(t, 2.0, testutil.ToFloat64(pm.gauges.WithLabelValues("pending_tasks", "gpt-4o")))
}

func TestPrometheusMetricsHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPrometheusMetrics(reg)
	ctx := context.Background()

	labels := map[string]string{"model": "gpt-4o", "scenario": "s1", "category": "response_quality"}
	pm.RecordHistogram(ctx, "run_duration_ms", 1500, labels)
	pm.RecordHistogram(ctx, "run_overall_score", 7.5, labels)
	pm.RecordHistogram(ctx, "run_category_score", 8.0, labels)
	pm.RecordLatency(ctx, "generate_response", 250, labels)

	families, err := reg.Gather()
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, family := range families {
		seen[family.GetName()] = true
	}
	assert.True(t, seen["bizcon_run_duration_ms"])
	assert.True(t, seen["bizcon_run_overall_score"])
	assert.True(t, seen["bizcon_run_category_score"])
	assert.True(t, seen["bizcon_operation_latency_ms"])
}
