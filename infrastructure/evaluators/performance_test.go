package evaluators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olib-ai/bizcon/internal/domain"
)

func perfResponse(responseTimeMs int64, promptTokens, completionTokens int) domain.ModelResponse {
	return domain.ModelResponse{
		Content: "measured response",
		Usage: &domain.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
		Metrics: domain.ResponseMetrics{ResponseTimeMs: responseTimeMs},
	}
}

func TestPerformanceResponseTimeBands(t *testing.T) {
	eval, err := NewPerformanceEvaluator(0.10)
	require.NoError(t, err)

	tests := []struct {
		name       string
		complexity string
		timeMs     int64
		want       float64
	}{
		{name: "simple excellent", complexity: domain.ComplexitySimple, timeMs: 1200, want: 4.0},
		{name: "simple good", complexity: domain.ComplexitySimple, timeMs: 2800, want: 3.0},
		{name: "medium adequate", complexity: domain.ComplexityMedium, timeMs: 7000, want: 2.0},
		{name: "medium slow", complexity: domain.ComplexityMedium, timeMs: 11000, want: 1.0},
		{name: "complex very slow", complexity: domain.ComplexityComplex, timeMs: 30000, want: 0.0},
		{name: "unknown tier falls back to medium", complexity: "", timeMs: 2500, want: 4.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := domain.ScenarioSpec{Complexity: tt.complexity}
			input := buildInput(t, spec, perfResponse(tt.timeMs, 500, 100), nil, nil)

			result, err := eval.Evaluate(context.Background(), input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, result.Breakdown["response_time_score"], 1e-9)
		})
	}
}

func TestPerformanceTokenEfficiencyBands(t *testing.T) {
	eval, err := NewPerformanceEvaluator(0.10)
	require.NoError(t, err)

	tests := []struct {
		name       string
		prompt     int
		completion int
		want       float64
	}{
		{name: "excellent", prompt: 1000, completion: 300, want: 3.0},
		{name: "good", prompt: 1000, completion: 700, want: 2.0},
		{name: "adequate despite high ratio", prompt: 100, completion: 1100, want: 1.0},
		{name: "poor", prompt: 100, completion: 2000, want: 0.0},
		{name: "zero prompt tokens never excellent", prompt: 0, completion: 100, want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := domain.ScenarioSpec{Complexity: domain.ComplexityMedium}
			input := buildInput(t, spec, perfResponse(1000, tt.prompt, tt.completion), nil, nil)

			result, err := eval.Evaluate(context.Background(), input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, result.Breakdown["token_efficiency_score"], 1e-9)
		})
	}
}

func TestPerformanceToolEfficiency(t *testing.T) {
	eval, err := NewPerformanceEvaluator(0.10)
	require.NoError(t, err)

	call := func(id string) domain.ToolCallRecord {
		return domain.ToolCallRecord{ToolID: id, Result: successResult(map[string]any{"ok": "fine"})}
	}

	tests := []struct {
		name     string
		expected []string
		calls    []domain.ToolCallRecord
		want     float64
	}{
		{name: "none expected none used", expected: nil, calls: nil, want: 3.0},
		{name: "none expected some used", expected: nil, calls: []domain.ToolCallRecord{call("scheduler")}, want: 0.0},
		{
			name:     "exact match",
			expected: []string{"scheduler"},
			calls:    []domain.ToolCallRecord{call("scheduler")},
			want:     3.0,
		},
		{
			name:     "half recall",
			expected: []string{"scheduler", "pricing_calculator"},
			calls:    []domain.ToolCallRecord{call("scheduler")},
			want:     1.0,
		},
		{
			name:     "wrong tools entirely",
			expected: []string{"scheduler"},
			calls:    []domain.ToolCallRecord{call("knowledge_base")},
			want:     0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := domain.ScenarioSpec{
				GroundTruth: domain.GroundTruth{ExpectedTools: tt.expected},
			}
			input := buildInput(t, spec, perfResponse(1000, 500, 100), nil, tt.calls)

			result, err := eval.Evaluate(context.Background(), input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, result.Breakdown["tool_efficiency_score"], 1e-9)
		})
	}
}

func TestPerformanceBreakdownSumsToScore(t *testing.T) {
	eval, err := NewPerformanceEvaluator(0.10)
	require.NoError(t, err)

	spec := domain.ScenarioSpec{Complexity: domain.ComplexitySimple}
	input := buildInput(t, spec, perfResponse(1000, 800, 150), nil, nil)

	result, err := eval.Evaluate(context.Background(), input)
	require.NoError(t, err)

	sum := 0.0
	for _, v := range result.Breakdown {
		sum += v
	}
	assert.InDelta(t, result.Score, sum, 1e-9)
	assert.GreaterOrEqual(t, result.Score, MinScore)
	assert.LessOrEqual(t, result.Score, MaxScore)
}
