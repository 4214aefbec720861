package evaluators

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

var _ ports.Evaluator = (*ToolUsageEvaluator)(nil)

// commonScalarValues are payload values too generic to count as evidence
// that a tool result was incorporated into the response.
var commonScalarValues = map[string]struct{}{
	"yes": {}, "no": {}, "true": {}, "false": {},
}

// ToolUsageEvaluator scores tool selection, parameter quality, call
// efficiency, and incorporation of tool results against the turn's
// expected tool calls.
//
// Sub-criteria: selection 0-3, parameters 0-3, efficiency 0-2,
// interpretation 0-2. When no tools were expected the evaluator
// short-circuits: full marks if none were used, zero if any were.
// The evaluator is stateless and safe for concurrent use.
type ToolUsageEvaluator struct {
	weight float64
	tracer trace.Tracer
}

// NewToolUsageEvaluator creates a tool-usage evaluator with the given
// overall weight.
func NewToolUsageEvaluator(weight float64) (*ToolUsageEvaluator, error) {
	if err := checkWeight(weight); err != nil {
		return nil, err
	}
	return &ToolUsageEvaluator{
		weight: weight,
		tracer: otel.Tracer("tool-usage-evaluator"),
	}, nil
}

// Name returns the evaluator's stable identifier.
func (e *ToolUsageEvaluator) Name() string { return "tool_usage" }

// Weight returns the evaluator's contribution to the overall score.
func (e *ToolUsageEvaluator) Weight() float64 { return e.weight }

// Metadata describes the evaluator and its scoring envelope.
func (e *ToolUsageEvaluator) Metadata() domain.EvaluatorMetadata {
	return metadata(e.Name(), e.weight)
}

// Evaluate scores one turn.
func (e *ToolUsageEvaluator) Evaluate(ctx context.Context, input ports.EvaluationInput) (domain.EvaluationResult, error) {
	if input.Scenario == nil {
		return domain.EvaluationResult{}, fmt.Errorf("%w: nil scenario", ports.ErrInvalidInput)
	}

	_, span := e.tracer.Start(ctx, "tool_usage.evaluate",
		trace.WithAttributes(
			attribute.String("scenario.id", input.Scenario.ID()),
			attribute.Int("turn.index", input.TurnIndex),
		))
	defer span.End()

	expected := input.Scenario.ExpectedToolCalls(input.TurnIndex)
	actual := input.ToolCalls

	if len(expected) == 0 {
		if len(actual) == 0 {
			span.SetAttributes(attribute.Float64("score.total", MaxScore))
			return fixedResult(
				map[string]float64{
					"selection_score":      3.0,
					"parameter_score":      3.0,
					"efficiency_score":     2.0,
					"interpretation_score": 2.0,
				},
				map[string]string{
					"selection":      "Correctly didn't use tools when none were expected",
					"parameters":     "N/A - No tools used",
					"efficiency":     "N/A - No tools used",
					"interpretation": "N/A - No tools used",
				},
			), nil
		}
		span.SetAttributes(attribute.Float64("score.total", 0))
		return fixedResult(
			map[string]float64{
				"selection_score":      0.0,
				"parameter_score":      0.0,
				"efficiency_score":     0.0,
				"interpretation_score": 0.0,
			},
			map[string]string{
				"selection":      "Unnecessarily used tools when none were expected",
				"parameters":     "N/A - No tools should have been used",
				"efficiency":     "N/A - No tools should have been used",
				"interpretation": "N/A - No tools should have been used",
			},
		), nil
	}

	if len(actual) == 0 {
		span.SetAttributes(attribute.Float64("score.total", 0))
		return fixedResult(
			map[string]float64{
				"selection_score":      0.0,
				"parameter_score":      0.0,
				"efficiency_score":     0.0,
				"interpretation_score": 0.0,
			},
			map[string]string{
				"selection":      "Failed to use any tools when they were expected",
				"parameters":     "N/A - No tools used",
				"efficiency":     "N/A - No tools used",
				"interpretation": "N/A - No tools used",
			},
		), nil
	}

	selection, selectionExpl := scoreToolSelection(actual, expected)
	parameters, parametersExpl := scoreParameterQuality(actual, expected)
	efficiency, efficiencyExpl := scoreCallEfficiency(actual, expected)
	interpretation, interpretationExpl := scoreToolInterpretation(input.Response.Content, actual)

	total := selection + parameters + efficiency + interpretation
	span.SetAttributes(attribute.Float64("score.total", total))

	return domain.EvaluationResult{
		Score:       normalizeScore(total),
		MaxPossible: MaxScore,
		Breakdown: map[string]float64{
			"selection_score":      selection,
			"parameter_score":      parameters,
			"efficiency_score":     efficiency,
			"interpretation_score": interpretation,
		},
		Explanation: map[string]string{
			"selection":      selectionExpl,
			"parameters":     parametersExpl,
			"efficiency":     efficiencyExpl,
			"interpretation": interpretationExpl,
		},
	}, nil
}

func fixedResult(breakdown map[string]float64, explanation map[string]string) domain.EvaluationResult {
	total := 0.0
	for _, v := range breakdown {
		total += v
	}
	return domain.EvaluationResult{
		Score:       normalizeScore(total),
		MaxPossible: MaxScore,
		Breakdown:   breakdown,
		Explanation: explanation,
	}
}

// scoreToolSelection rewards coverage of expected tools and penalizes
// unnecessary ones at 0.33 each, capped at 1.0.
func scoreToolSelection(actual []domain.ToolCallRecord, expected []domain.ExpectedToolCall) (float64, string) {
	actualIDs := make(map[string]struct{}, len(actual))
	for _, call := range actual {
		actualIDs[call.ToolID] = struct{}{}
	}
	expectedIDs := make(map[string]struct{}, len(expected))
	for _, call := range expected {
		expectedIDs[call.ToolID] = struct{}{}
	}

	correct := 0
	for _, call := range expected {
		if _, ok := actualIDs[call.ToolID]; ok {
			correct++
		}
	}
	unnecessary := 0
	for _, call := range actual {
		if _, ok := expectedIDs[call.ToolID]; !ok {
			unnecessary++
		}
	}

	coverage := 1.0
	if len(expected) > 0 {
		coverage = float64(correct) / float64(len(expected))
	}
	penalty := 0.33 * float64(unnecessary)
	if penalty > 1.0 {
		penalty = 1.0
	}

	score := 3.0*coverage - penalty
	if score < 0 {
		score = 0
	}
	if score > 3 {
		score = 3
	}

	var expl string
	switch {
	case score >= 3.0:
		expl = "Selected all appropriate tools without unnecessary ones"
	case score >= 2.0:
		expl = fmt.Sprintf("Selected most appropriate tools with %d unnecessary ones", unnecessary)
	case score >= 1.0:
		expl = "Selected some appropriate tools but missed others or made unnecessary calls"
	default:
		expl = "Failed to select appropriate tools or made many unnecessary tool calls"
	}
	return score, expl
}

// scoreParameterQuality compares supplied parameters against expected
// ones per tool: full credit when equal or both non-empty, half credit
// when present but different, nothing when absent.
func scoreParameterQuality(actual []domain.ToolCallRecord, expected []domain.ExpectedToolCall) (float64, string) {
	if len(actual) == 0 {
		return 0.0, "No tool calls were made"
	}

	actualByID := make(map[string]map[string]any, len(actual))
	for _, call := range actual {
		actualByID[call.ToolID] = call.Parameters
	}
	expectedByID := make(map[string]map[string]any, len(expected))
	for _, call := range expected {
		expectedByID[call.ToolID] = call.Parameters
	}

	var ratios []float64
	for toolID, actualParams := range actualByID {
		expectedParams, wasExpected := expectedByID[toolID]
		if !wasExpected {
			continue
		}
		if len(expectedParams) == 0 {
			ratios = append(ratios, 1.0)
			continue
		}
		matches := 0.0
		for name, expectedValue := range expectedParams {
			actualValue, present := actualParams[name]
			if !present {
				continue
			}
			if equalValues(actualValue, expectedValue) || (truthy(actualValue) && truthy(expectedValue)) {
				matches += 1.0
			} else {
				matches += 0.5
			}
		}
		ratios = append(ratios, matches/float64(len(expectedParams)))
	}

	score := 0.0
	if len(ratios) > 0 {
		sum := 0.0
		for _, r := range ratios {
			sum += r
		}
		score = 3.0 * sum / float64(len(ratios))
	}

	var expl string
	switch {
	case score >= 2.5:
		expl = "Excellent parameter selection with all required fields"
	case score >= 1.5:
		expl = "Good parameter selection with most required fields"
	case score >= 0.5:
		expl = "Fair parameter selection with some missing or incorrect fields"
	default:
		expl = "Poor parameter selection with many missing or incorrect fields"
	}
	return score, expl
}

// scoreCallEfficiency compares call counts against expectations and
// penalizes more than two calls to the same tool at 0.25 each, capped
// at 1.0.
func scoreCallEfficiency(actual []domain.ToolCallRecord, expected []domain.ExpectedToolCall) (float64, string) {
	nExpected := len(expected)
	nActual := len(actual)

	var efficiencyRatio float64
	if nExpected == 0 {
		if nActual > 0 {
			efficiencyRatio = 0.0
		} else {
			efficiencyRatio = 1.0
		}
	} else {
		diff := nActual - nExpected
		if diff < 0 {
			diff = -diff
		}
		overshoot := float64(diff) / float64(nExpected)
		if overshoot > 1.0 {
			overshoot = 1.0
		}
		efficiencyRatio = 1.0 - overshoot
	}

	counts := make(map[string]int, len(actual))
	for _, call := range actual {
		counts[call.ToolID]++
	}
	duplicatePenalty := 0.0
	for _, count := range counts {
		if count > 2 {
			duplicatePenalty += 0.25 * float64(count-2)
			if duplicatePenalty > 1.0 {
				duplicatePenalty = 1.0
			}
		}
	}

	score := 2.0*efficiencyRatio - duplicatePenalty
	if score < 0 {
		score = 0
	}
	if score > 2 {
		score = 2
	}

	var expl string
	switch {
	case score >= 1.75:
		expl = "Highly efficient tool usage with optimal number of calls"
	case score >= 1.25:
		expl = "Efficient tool usage with minimal redundancy"
	case score >= 0.75:
		expl = "Moderately efficient tool usage with some redundancy"
	case score >= 0.25:
		expl = "Inefficient tool usage with unnecessary or duplicate calls"
	default:
		expl = "Very inefficient tool usage with many unnecessary or duplicate calls"
	}
	return score, expl
}

// scoreToolInterpretation measures how many tool results surface in the
// response text. Mapping results need a key and its value to co-occur;
// scalar results need any distinctive token of four or more characters.
func scoreToolInterpretation(responseText string, calls []domain.ToolCallRecord) (float64, string) {
	if len(calls) == 0 {
		return 0.0, "No tool calls were made to interpret"
	}

	var checked, incorporated int
	for _, call := range calls {
		payload := resultPayload(call.Result)
		if payload == nil {
			continue
		}
		checked++
		if resultIncorporated(responseText, payload) {
			incorporated++
		}
	}

	ratio := 0.0
	if checked > 0 {
		ratio = float64(incorporated) / float64(checked)
	}
	score := 2.0 * ratio

	var expl string
	switch {
	case score >= 1.75:
		expl = "Excellent incorporation of tool results into response"
	case score >= 1.25:
		expl = "Good incorporation of most tool results into response"
	case score >= 0.75:
		expl = "Partial incorporation of tool results into response"
	case score >= 0.25:
		expl = "Limited incorporation of tool results into response"
	default:
		expl = "Failed to incorporate tool results into response"
	}
	return score, expl
}

func resultIncorporated(responseText string, payload any) bool {
	if m, ok := payload.(map[string]any); ok {
		for key, value := range m {
			if value == nil {
				continue
			}
			switch value.(type) {
			case map[string]any, []any:
				continue
			}
			valueStr := fmt.Sprint(value)
			if len(valueStr) < 3 {
				continue
			}
			if _, common := commonScalarValues[strings.ToLower(valueStr)]; common {
				continue
			}
			if strings.Contains(responseText, key) && strings.Contains(responseText, valueStr) {
				return true
			}
		}
		return false
	}

	var resultStr string
	if raw, err := json.Marshal(payload); err == nil {
		resultStr = string(raw)
	} else {
		resultStr = fmt.Sprint(payload)
	}
	for _, token := range tokenRe.FindAllString(resultStr, -1) {
		if strings.Contains(responseText, token) {
			return true
		}
	}
	return false
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
