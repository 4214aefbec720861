package evaluators

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

var _ ports.Evaluator = (*BusinessValueEvaluator)(nil)

// BusinessValueEvaluator scores whether a response advances the
// scenario's business objective, proposes the expected action items, and
// demonstrates domain knowledge, with a bonus for using
// business-relevant tools.
//
// Sub-criteria: objective 0-4, actionable 0-3, acumen 0-3, plus a tool
// bonus of up to 1.0; the total is clamped to the 0-10 envelope. When a
// ground-truth field is empty its sub-score stays at zero. The evaluator
// is stateless and safe for concurrent use.
type BusinessValueEvaluator struct {
	weight float64
	tracer trace.Tracer
}

// NewBusinessValueEvaluator creates a business-value evaluator with the
// given overall weight.
func NewBusinessValueEvaluator(weight float64) (*BusinessValueEvaluator, error) {
	if err := checkWeight(weight); err != nil {
		return nil, err
	}
	return &BusinessValueEvaluator{
		weight: weight,
		tracer: otel.Tracer("business-value-evaluator"),
	}, nil
}

// Name returns the evaluator's stable identifier.
func (e *BusinessValueEvaluator) Name() string { return "business_value" }

// Weight returns the evaluator's contribution to the overall score.
func (e *BusinessValueEvaluator) Weight() float64 { return e.weight }

// Metadata describes the evaluator and its scoring envelope.
func (e *BusinessValueEvaluator) Metadata() domain.EvaluatorMetadata {
	return metadata(e.Name(), e.weight)
}

// Evaluate scores one turn.
func (e *BusinessValueEvaluator) Evaluate(ctx context.Context, input ports.EvaluationInput) (domain.EvaluationResult, error) {
	if input.Scenario == nil {
		return domain.EvaluationResult{}, fmt.Errorf("%w: nil scenario", ports.ErrInvalidInput)
	}

	_, span := e.tracer.Start(ctx, "business_value.evaluate",
		trace.WithAttributes(
			attribute.String("scenario.id", input.Scenario.ID()),
			attribute.Int("turn.index", input.TurnIndex),
		))
	defer span.End()

	text := input.Response.Content
	gt := input.Scenario.GroundTruth()

	objective, objectiveExpl := scoreObjective(text, gt.BusinessObjective)
	actionable, actionableExpl := scoreCoverage(text, gt.ActionItems,
		"Response provides comprehensive actionable information",
		"Response provides some actionable information",
		"Response provides minimal actionable information",
		"Response provides no actionable information")
	acumen, acumenExpl := scoreCoverage(text, gt.DomainKnowledge,
		"Response demonstrates excellent business acumen and domain knowledge",
		"Response demonstrates good business acumen and domain knowledge",
		"Response demonstrates minimal business acumen and domain knowledge",
		"Response demonstrates no relevant business acumen or domain knowledge")

	bonus := 0.0
	bonusExpl := ""
	if len(input.ToolCalls) > 0 {
		relevantUsed := countRelevantTools(input.ToolCalls, gt.RelevantTools)
		if relevantUsed > 0 {
			bonus = float64(relevantUsed)
			if bonus > 1.0 {
				bonus = 1.0
			}
			bonusExpl = fmt.Sprintf("Model effectively used %d business-relevant tools", relevantUsed)
		}
	}

	total := objective + actionable + acumen + bonus
	span.SetAttributes(attribute.Float64("score.total", total))

	return domain.EvaluationResult{
		Score:       normalizeScore(total),
		MaxPossible: MaxScore,
		Breakdown: map[string]float64{
			"objective_score":  objective,
			"actionable_score": actionable,
			"acumen_score":     acumen,
			"tool_usage_bonus": bonus,
		},
		Explanation: map[string]string{
			"objective":  objectiveExpl,
			"actionable": actionableExpl,
			"acumen":     acumenExpl,
			"tool_usage": bonusExpl,
		},
	}, nil
}

func scoreObjective(text, objective string) (float64, string) {
	if objective == "" {
		return 0.0, ""
	}
	switch {
	case valueContains(text, objective):
		return 4.0, "Response fully addresses the core business objective"
	case valuePartialMatch(text, objective, 0.7):
		return 3.0, "Response mostly addresses the core business objective"
	case valuePartialMatch(text, objective, 0.5):
		return 2.0, "Response partially addresses the core business objective"
	case valuePartialMatch(text, objective, 0.3):
		return 1.0, "Response minimally addresses the core business objective"
	default:
		return 0.0, "Response does not address the core business objective"
	}
}

// scoreCoverage grades the fraction of items found in the text on the
// shared 0.8/0.5/>0 bands used for action items and domain knowledge.
func scoreCoverage(text string, items []string, full, some, minimal, none string) (float64, string) {
	if len(items) == 0 {
		return 0.0, ""
	}
	found := 0
	for _, item := range items {
		if valueContains(text, item) {
			found++
		}
	}
	ratio := float64(found) / float64(len(items))
	switch {
	case ratio >= 0.8:
		return 3.0, full
	case ratio >= 0.5:
		return 2.0, some
	case ratio > 0:
		return 1.0, minimal
	default:
		return 0.0, none
	}
}

// valueContains reports whether every key term of target appears in
// text. Unlike the response-quality containment check it demands all
// terms and uses the smaller stopword set.
func valueContains(text, target string) bool {
	terms := valueKeyTerms(target)
	folded := fold(text)
	for _, term := range terms {
		if !strings.Contains(folded, term) {
			return false
		}
	}
	return true
}

// valuePartialMatch reports whether at least threshold of target's key
// terms appear in text.
func valuePartialMatch(text, target string, threshold float64) bool {
	terms := valueKeyTerms(target)
	if len(terms) == 0 {
		return false
	}
	folded := fold(text)
	matches := 0
	for _, term := range terms {
		if strings.Contains(folded, term) {
			matches++
		}
	}
	return float64(matches)/float64(len(terms)) >= threshold
}

func valueKeyTerms(text string) []string {
	return extractKeyTerms(text, valueStopwords)
}

func countRelevantTools(calls []domain.ToolCallRecord, relevantTools []string) int {
	if len(relevantTools) == 0 {
		return 0
	}
	relevant := make(map[string]struct{}, len(relevantTools))
	for _, id := range relevantTools {
		relevant[id] = struct{}{}
	}
	count := 0
	for _, call := range calls {
		if _, ok := relevant[call.ToolID]; ok {
			count++
		}
	}
	return count
}
