package evaluators

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

var _ ports.Evaluator = (*ResponseQualityEvaluator)(nil)

var (
	dateRe  = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b|\b\d{1,2}\s+(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\s+\d{2,4}\b`)
	priceRe = regexp.MustCompile(`\$\s*[\d,]+(?:\.\d{2})?|\d+(?:,\d{3})*(?:\.\d{2})?\s*(?:dollars|USD)`)

	negationWords = []string{
		"not", "no", "never", "isn't", "aren't", "wasn't", "weren't",
		"hasn't", "haven't", "hadn't", "doesn't", "don't", "didn't",
		"won't", "wouldn't", "can't", "cannot", "couldn't", "shouldn't",
	}
)

// ResponseQualityEvaluator scores factual accuracy, completeness,
// relevance, and consistency of a response against the scenario's
// ground truth and the turn's tool outputs.
//
// Sub-criteria: accuracy 0-4, completeness 0-3, relevance 0-2,
// consistency 0-1. The evaluator is stateless and safe for concurrent
// use.
type ResponseQualityEvaluator struct {
	weight float64
	tracer trace.Tracer
}

// NewResponseQualityEvaluator creates a response-quality evaluator with
// the given overall weight. Returns an error when the weight is outside
// [0, 1].
func NewResponseQualityEvaluator(weight float64) (*ResponseQualityEvaluator, error) {
	if err := checkWeight(weight); err != nil {
		return nil, err
	}
	return &ResponseQualityEvaluator{
		weight: weight,
		tracer: otel.Tracer("response-quality-evaluator"),
	}, nil
}

// Name returns the evaluator's stable identifier.
func (e *ResponseQualityEvaluator) Name() string { return "response_quality" }

// Weight returns the evaluator's contribution to the overall score.
func (e *ResponseQualityEvaluator) Weight() float64 { return e.weight }

// Metadata describes the evaluator and its scoring envelope.
func (e *ResponseQualityEvaluator) Metadata() domain.EvaluatorMetadata {
	return metadata(e.Name(), e.weight)
}

// Evaluate scores one turn.
func (e *ResponseQualityEvaluator) Evaluate(ctx context.Context, input ports.EvaluationInput) (domain.EvaluationResult, error) {
	if input.Scenario == nil {
		return domain.EvaluationResult{}, fmt.Errorf("%w: nil scenario", ports.ErrInvalidInput)
	}

	_, span := e.tracer.Start(ctx, "response_quality.evaluate",
		trace.WithAttributes(
			attribute.String("scenario.id", input.Scenario.ID()),
			attribute.Int("turn.index", input.TurnIndex),
		))
	defer span.End()

	text := input.Response.Content
	gt := input.Scenario.GroundTruth()

	var customerQuery string
	for i := len(input.History) - 1; i >= 0; i-- {
		if input.History[i].Role == domain.RoleUser {
			customerQuery = input.History[i].Content
			break
		}
	}

	toolOutputs := make(map[string]any, len(input.ToolCalls))
	for _, call := range input.ToolCalls {
		toolOutputs[call.ToolID] = resultPayload(call.Result)
	}

	accuracy, accuracyExpl, factErrors := e.scoreAccuracy(text, gt.ExpectedFacts, toolOutputs)
	completeness, completenessExpl := e.scoreCompleteness(text, gt.RequiredElements)
	relevance, relevanceExpl := e.scoreRelevance(text, customerQuery, gt.QueryIntent)
	consistency, consistencyExpl := e.scoreConsistency(text, input.History, factErrors)

	total := accuracy + completeness + relevance + consistency
	span.SetAttributes(attribute.Float64("score.total", total))

	return domain.EvaluationResult{
		Score:       normalizeScore(total),
		MaxPossible: MaxScore,
		Breakdown: map[string]float64{
			"accuracy_score":     accuracy,
			"completeness_score": completeness,
			"relevance_score":    relevance,
			"consistency_score":  consistency,
		},
		Explanation: map[string]string{
			"accuracy":     accuracyExpl,
			"completeness": completenessExpl,
			"relevance":    relevanceExpl,
			"consistency":  consistencyExpl,
		},
		Errors: factErrors,
	}, nil
}

// scoreAccuracy checks expected facts in "key: value" (or bare "key")
// form against the response text, then cross-checks dates and prices
// against scheduler and pricing-calculator outputs.
func (e *ResponseQualityEvaluator) scoreAccuracy(text string, expectedFacts []string, toolOutputs map[string]any) (float64, string, []domain.FactError) {
	if len(expectedFacts) == 0 {
		return 4.0, "No specific facts to verify in this response", nil
	}

	folded := fold(text)
	var correct, incorrect int
	var errs []domain.FactError

	for _, fact := range expectedFacts {
		key, value, hasValue := strings.Cut(fact, ":")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if !containsKeyElements(folded, fold(key)) {
			errs = append(errs, domain.FactError{Type: "missing_fact", Fact: key, Expected: fact})
			continue
		}
		if !hasValue || value == "" {
			correct++
			continue
		}
		if containsKeyElements(folded, fold(value)) {
			correct++
			continue
		}
		incorrect++
		provided := extractValueForKey(text, key)
		if provided == "" {
			provided = "[value not found]"
		}
		errs = append(errs, domain.FactError{
			Type:     "incorrect_fact",
			Fact:     key,
			Expected: fact,
			Provided: key + ": " + provided,
		})
	}

	for toolID, output := range toolOutputs {
		toolErrs := checkAgainstToolOutput(text, toolID, output)
		errs = append(errs, toolErrs...)
		incorrect += len(toolErrs)
	}

	total := len(expectedFacts)
	ratio := float64(correct) / float64(total)

	var score float64
	var expl string
	switch {
	case incorrect == 0 && ratio >= 0.9:
		score = 4.0
		expl = fmt.Sprintf("Excellent factual accuracy with %d/%d expected facts correctly stated and no errors", correct, total)
	case incorrect <= 1 && ratio >= 0.8:
		score = 3.0
		expl = fmt.Sprintf("Good factual accuracy with %d/%d expected facts correctly stated and minimal errors", correct, total)
	case incorrect <= 2 && ratio >= 0.6:
		score = 2.0
		expl = fmt.Sprintf("Adequate factual accuracy with %d/%d expected facts correctly stated", correct, total)
	case ratio >= 0.4:
		score = 1.0
		expl = fmt.Sprintf("Poor factual accuracy with only %d/%d expected facts correctly stated", correct, total)
	default:
		score = 0.0
		expl = fmt.Sprintf("Very poor factual accuracy with %d/%d expected facts correctly stated and %d incorrect facts", correct, total, incorrect)
	}
	return score, expl, errs
}

func (e *ResponseQualityEvaluator) scoreCompleteness(text string, requiredElements []string) (float64, string) {
	if len(requiredElements) == 0 {
		return 3.0, "No specific elements required in this response"
	}

	folded := fold(text)
	included := 0
	var missing []string
	for _, element := range requiredElements {
		if containsKeyElements(folded, fold(element)) {
			included++
		} else {
			missing = append(missing, element)
		}
	}

	total := len(requiredElements)
	ratio := float64(included) / float64(total)

	var score float64
	var expl string
	switch {
	case ratio == 1.0:
		score = 3.0
		expl = "Response includes all required elements"
	case ratio >= 0.8:
		score = 2.0
		expl = fmt.Sprintf("Response includes most required elements (%d/%d)", included, total)
	case ratio >= 0.5:
		score = 1.0
		expl = fmt.Sprintf("Response is missing several required elements (only %d/%d included)", included, total)
	default:
		score = 0.0
		expl = fmt.Sprintf("Response is highly incomplete with only %d/%d required elements", included, total)
	}

	if len(missing) > 0 {
		shown := missing
		if len(shown) > 3 {
			shown = shown[:3]
		}
		expl += ". Missing: " + strings.Join(shown, ", ")
		if len(missing) > 3 {
			expl += fmt.Sprintf(" and %d more", len(missing)-3)
		}
	}
	return score, expl
}

func (e *ResponseQualityEvaluator) scoreRelevance(text, customerQuery, queryIntent string) (float64, string) {
	if customerQuery == "" && queryIntent == "" {
		return 2.0, "Relevance could not be evaluated without customer query context"
	}

	reference := customerQuery
	if reference == "" {
		reference = queryIntent
	}

	queryTerms := extractKeyTerms(reference, qualityStopwords)
	folded := fold(text)

	addressed := 0
	for _, term := range queryTerms {
		if strings.Contains(folded, term) {
			addressed++
		}
	}
	coverage := 1.0
	if len(queryTerms) > 0 {
		coverage = float64(addressed) / float64(len(queryTerms))
	}

	sentences := splitSentences(text)
	offTopic := 0
	for _, sentence := range sentences {
		foldedSentence := fold(sentence)
		onTopic := false
		for _, term := range queryTerms {
			if strings.Contains(foldedSentence, term) {
				onTopic = true
				break
			}
		}
		if !onTopic {
			offTopic++
		}
	}
	offTopicRatio := 0.0
	if len(sentences) > 0 {
		offTopicRatio = float64(offTopic) / float64(len(sentences))
	}

	switch {
	case coverage >= 0.8 && offTopicRatio <= 0.1:
		return 2.0, "Response is highly relevant to the customer query"
	case coverage >= 0.5 && offTopicRatio <= 0.3:
		return 1.0, "Response is mostly relevant to the customer query"
	default:
		return 0.0, "Response is not sufficiently relevant to the customer query"
	}
}

// scoreConsistency flags the response when any statement closely mirrors
// a prior assistant statement but differs by exactly one negation.
// Factual errors are reported in the explanation but the 1/0 cutoff is
// decided by contradictions alone.
func (e *ResponseQualityEvaluator) scoreConsistency(text string, history []domain.Message, factErrors []domain.FactError) (float64, string) {
	if len(history) <= 1 {
		return 1.0, "No prior conversation to evaluate consistency against"
	}

	var priorResponses []string
	for _, msg := range history {
		if msg.Role == domain.RoleAssistant {
			priorResponses = append(priorResponses, msg.Content)
		}
	}
	if len(priorResponses) == 0 {
		return 1.0, "No prior assistant responses to evaluate consistency against"
	}

	contradictions := 0
	for _, statement := range splitSentences(text) {
		if len(strings.Fields(statement)) < 5 {
			continue
		}
		for _, prev := range priorResponses {
			for _, prevStatement := range splitSentences(prev) {
				if len(strings.Fields(prevStatement)) < 5 {
					continue
				}
				if areContradictory(statement, prevStatement) {
					contradictions++
				}
			}
		}
	}

	if contradictions == 0 {
		return 1.0, "Response is fully consistent with prior conversation"
	}
	expl := fmt.Sprintf("Response contains %d contradictions with prior statements", contradictions)
	if len(factErrors) > 0 {
		expl += fmt.Sprintf(" and %d factual errors", len(factErrors))
	}
	return 0.0, expl
}

// areContradictory flags two statements when they are lexically similar
// but exactly one carries a negation.
func areContradictory(a, b string) bool {
	foldedA, foldedB := fold(a), fold(b)
	if similarityRatio(foldedA, foldedB) <= 0.6 {
		return false
	}
	return hasNegation(foldedA) != hasNegation(foldedB)
}

func hasNegation(folded string) bool {
	for _, word := range strings.Fields(folded) {
		for _, neg := range negationWords {
			if word == neg {
				return true
			}
		}
	}
	return false
}

// extractValueForKey pulls the value a response actually stated for a
// fact key, trying "key: X", "key is X", and related verb forms.
func extractValueForKey(text, key string) string {
	quoted := regexp.QuoteMeta(key)
	patterns := []string{
		`(?i)` + quoted + `:?\s*([^.,;!?]+)`,
		`(?i)` + quoted + `\s+is\s+([^.,;!?]+)`,
		`(?i)` + quoted + `\s+are\s+([^.,;!?]+)`,
		`(?i)` + quoted + `\s+was\s+([^.,;!?]+)`,
		`(?i)` + quoted + `\s+were\s+([^.,;!?]+)`,
		`(?i)` + quoted + `\s+will be\s+([^.,;!?]+)`,
	}
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// checkAgainstToolOutput cross-checks dates and prices stated in the
// response against scheduler and pricing-calculator outputs.
func checkAgainstToolOutput(text, toolID string, output any) []domain.FactError {
	payload, ok := output.(map[string]any)
	if !ok {
		return nil
	}

	var errs []domain.FactError

	switch toolID {
	case "scheduler":
		slots := stringSlice(payload["available_slots"])
		for _, date := range dateRe.FindAllString(text, -1) {
			available := false
			for _, slot := range slots {
				if strings.Contains(slot, date) {
					available = true
					break
				}
			}
			if !available {
				shown := slots
				if len(shown) > 3 {
					shown = shown[:3]
				}
				errs = append(errs, domain.FactError{
					Type:     "incorrect_fact",
					Expected: "Available appointment dates: " + strings.Join(shown, ", ") + "...",
					Provided: "Mentioned unavailable date: " + date,
				})
			}
		}

	case "pricing_calculator":
		totalPrice, ok := toFloat(payload["total_price"])
		if !ok || totalPrice <= 0 {
			return nil
		}
		for _, priceText := range priceRe.FindAllString(text, -1) {
			value, err := strconv.ParseFloat(stripNonNumeric(priceText), 64)
			if err != nil {
				continue
			}
			diff := value - totalPrice
			if diff < 0 {
				diff = -diff
			}
			if diff > 1.0 && diff/totalPrice > 0.01 {
				errs = append(errs, domain.FactError{
					Type:     "incorrect_fact",
					Expected: fmt.Sprintf("Total price: $%.2f", totalPrice),
					Provided: "Mentioned price: " + priceText,
				})
			}
		}
	}
	return errs
}

// resultPayload unwraps a tool result into the data evaluators inspect:
// the success payload, or the business-error fields for failed calls.
func resultPayload(result domain.ToolResult) any {
	if result.OK() {
		return result.Result
	}
	if result.Error == "" && result.Message == "" {
		return nil
	}
	return map[string]any{"error": result.Error, "message": result.Message}
}

func stringSlice(v any) []string {
	switch x := v.(type) {
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return nil
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
