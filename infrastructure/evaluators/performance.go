package evaluators

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

var _ ports.Evaluator = (*PerformanceEvaluator)(nil)

// latencyThresholds holds the response-time grading cutoffs in
// milliseconds for one complexity tier.
type latencyThresholds struct {
	excellent int64
	good      int64
	adequate  int64
}

// tokenThresholds holds the completion-token grading cutoffs for one
// complexity tier.
type tokenThresholds struct {
	excellent int
	good      int
	adequate  int
}

var (
	latencyByComplexity = map[string]latencyThresholds{
		domain.ComplexitySimple:  {excellent: 1500, good: 3000, adequate: 5000},
		domain.ComplexityMedium:  {excellent: 2500, good: 5000, adequate: 8000},
		domain.ComplexityComplex: {excellent: 4000, good: 8000, adequate: 12000},
	}

	tokensByComplexity = map[string]tokenThresholds{
		domain.ComplexitySimple:  {excellent: 200, good: 400, adequate: 600},
		domain.ComplexityMedium:  {excellent: 400, good: 800, adequate: 1200},
		domain.ComplexityComplex: {excellent: 800, good: 1500, adequate: 2500},
	}
)

// PerformanceEvaluator scores response latency, token efficiency, and
// tool-call efficiency, graded against thresholds chosen by the
// scenario's complexity tier.
//
// Sub-criteria: response time 0-4, token efficiency 0-3, tool efficiency
// 0-3. The evaluator is stateless and safe for concurrent use.
type PerformanceEvaluator struct {
	weight float64
	tracer trace.Tracer
}

// NewPerformanceEvaluator creates a performance evaluator with the given
// overall weight.
func NewPerformanceEvaluator(weight float64) (*PerformanceEvaluator, error) {
	if err := checkWeight(weight); err != nil {
		return nil, err
	}
	return &PerformanceEvaluator{
		weight: weight,
		tracer: otel.Tracer("performance-evaluator"),
	}, nil
}

// Name returns the evaluator's stable identifier.
func (e *PerformanceEvaluator) Name() string { return "performance" }

// Weight returns the evaluator's contribution to the overall score.
func (e *PerformanceEvaluator) Weight() float64 { return e.weight }

// Metadata describes the evaluator and its scoring envelope.
func (e *PerformanceEvaluator) Metadata() domain.EvaluatorMetadata {
	return metadata(e.Name(), e.weight)
}

// Evaluate scores one turn.
func (e *PerformanceEvaluator) Evaluate(ctx context.Context, input ports.EvaluationInput) (domain.EvaluationResult, error) {
	if input.Scenario == nil {
		return domain.EvaluationResult{}, fmt.Errorf("%w: nil scenario", ports.ErrInvalidInput)
	}

	_, span := e.tracer.Start(ctx, "performance.evaluate",
		trace.WithAttributes(
			attribute.String("scenario.id", input.Scenario.ID()),
			attribute.Int("turn.index", input.TurnIndex),
		))
	defer span.End()

	complexity := input.Scenario.Complexity()
	responseTimeMs := input.Response.Metrics.ResponseTimeMs

	var promptTokens, completionTokens, totalTokens int
	if input.Response.Usage != nil {
		promptTokens = input.Response.Usage.PromptTokens
		completionTokens = input.Response.Usage.CompletionTokens
		totalTokens = input.Response.Usage.TotalTokens
	}
	if totalTokens == 0 {
		totalTokens = promptTokens + completionTokens
	}

	latency, latencyExpl := scoreResponseTime(responseTimeMs, complexity)
	tokens, tokensExpl := scoreTokenEfficiency(promptTokens, completionTokens, complexity)
	tools, toolsExpl := scoreToolEfficiency(input.ToolCalls, input.Scenario.GroundTruth().ExpectedTools)

	total := latency + tokens + tools
	span.SetAttributes(attribute.Float64("score.total", total))

	return domain.EvaluationResult{
		Score:       normalizeScore(total),
		MaxPossible: MaxScore,
		Breakdown: map[string]float64{
			"response_time_score":    latency,
			"token_efficiency_score": tokens,
			"tool_efficiency_score":  tools,
		},
		Explanation: map[string]string{
			"response_time":    latencyExpl,
			"token_efficiency": tokensExpl,
			"tool_efficiency":  toolsExpl,
		},
		Metrics: map[string]float64{
			"response_time_ms":  float64(responseTimeMs),
			"prompt_tokens":     float64(promptTokens),
			"completion_tokens": float64(completionTokens),
			"total_tokens":      float64(totalTokens),
			"tool_calls_count":  float64(len(input.ToolCalls)),
		},
	}, nil
}

func scoreResponseTime(responseTimeMs int64, complexity string) (float64, string) {
	thresholds, ok := latencyByComplexity[complexity]
	if !ok {
		thresholds = latencyByComplexity[domain.ComplexityMedium]
	}

	switch {
	case responseTimeMs <= thresholds.excellent:
		return 4.0, fmt.Sprintf("Excellent response time of %dms, well under the %dms threshold for %s scenarios", responseTimeMs, thresholds.excellent, complexity)
	case responseTimeMs <= thresholds.good:
		return 3.0, fmt.Sprintf("Good response time of %dms, under the %dms threshold for %s scenarios", responseTimeMs, thresholds.good, complexity)
	case responseTimeMs <= thresholds.adequate:
		return 2.0, fmt.Sprintf("Adequate response time of %dms for %s scenarios", responseTimeMs, complexity)
	case float64(responseTimeMs) <= float64(thresholds.adequate)*1.5:
		return 1.0, fmt.Sprintf("Slow response time of %dms, above the %dms threshold for %s scenarios", responseTimeMs, thresholds.adequate, complexity)
	default:
		return 0.0, fmt.Sprintf("Very slow response time of %dms, far above acceptable thresholds for %s scenarios", responseTimeMs, complexity)
	}
}

func scoreTokenEfficiency(promptTokens, completionTokens int, complexity string) (float64, string) {
	thresholds, ok := tokensByComplexity[complexity]
	if !ok {
		thresholds = tokensByComplexity[domain.ComplexityMedium]
	}

	ratio := math.Inf(1)
	if promptTokens > 0 {
		ratio = float64(completionTokens) / float64(promptTokens)
	}

	switch {
	case completionTokens <= thresholds.excellent && ratio < 0.5:
		return 3.0, fmt.Sprintf("Excellent token efficiency with %d completion tokens", completionTokens)
	case completionTokens <= thresholds.good && ratio < 0.8:
		return 2.0, fmt.Sprintf("Good token efficiency with %d completion tokens", completionTokens)
	case completionTokens <= thresholds.adequate:
		return 1.0, fmt.Sprintf("Adequate token efficiency with %d completion tokens", completionTokens)
	default:
		return 0.0, fmt.Sprintf("Poor token efficiency with %d completion tokens, exceeding the %d threshold", completionTokens, thresholds.adequate)
	}
}

// scoreToolEfficiency grades precision/recall of tool ids used against
// the scenario's expected tool set, combined with the call-count
// difference.
func scoreToolEfficiency(calls []domain.ToolCallRecord, expectedTools []string) (float64, string) {
	if len(expectedTools) == 0 {
		if len(calls) == 0 {
			return 3.0, "Correctly used no tools when none were needed"
		}
		return 0.0, fmt.Sprintf("Unnecessarily used %d tools when none were needed", len(calls))
	}

	actualCount := len(calls)
	expectedCount := len(expectedTools)
	diff := actualCount - expectedCount
	if diff < 0 {
		diff = -diff
	}

	actualIDs := make(map[string]struct{}, len(calls))
	for _, call := range calls {
		actualIDs[call.ToolID] = struct{}{}
	}
	used := 0
	for _, tool := range expectedTools {
		if _, ok := actualIDs[tool]; ok {
			used++
		}
	}

	precision := 0.0
	if actualCount > 0 {
		precision = float64(used) / float64(actualCount)
	}
	recall := float64(used) / float64(expectedCount)

	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	switch {
	case f1 >= 0.9 && diff <= 1:
		return 3.0, fmt.Sprintf("Excellent tool usage efficiency with %d/%d expected tools used correctly", used, expectedCount)
	case f1 >= 0.7 && diff <= 2:
		return 2.0, fmt.Sprintf("Good tool usage efficiency with %d/%d expected tools used", used, expectedCount)
	case f1 >= 0.5:
		return 1.0, fmt.Sprintf("Adequate tool usage with %d/%d expected tools used but some inefficiency", used, expectedCount)
	default:
		return 0.0, fmt.Sprintf("Poor tool usage efficiency with only %d/%d expected tools used correctly", used, expectedCount)
	}
}
