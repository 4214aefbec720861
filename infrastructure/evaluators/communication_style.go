package evaluators

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

var _ ports.Evaluator = (*CommunicationStyleEvaluator)(nil)

var (
	unprofessionalTerms = []string{
		"hey there", "yo", "what's up", "kinda", "sorta", "gonna", "wanna",
		"dunno", "ya know", "like", "basically", "stuff", "things", "ok", "k",
	}

	businessLanguageTerms = []string{
		"thank you", "please", "appreciate", "value", "assist", "help",
		"provide", "information", "understand", "solution", "service",
		"available", "options", "process", "team", "comprehensive", "training",
		"support", "package", "implementation", "guide", "interest",
	}

	toneIndicators = map[string][]string{
		"professional": {
			"would like to", "we recommend", "suggest", "advise", "please consider",
			"our team", "we provide", "available", "standard", "typically",
			"during which", "through", "for your", "our",
		},
		"friendly":   {"happy to", "glad to", "look forward to", "excited", "wonderful"},
		"formal":     {"we regret to inform", "please be advised", "kindly note", "we request", "formally"},
		"empathetic": {"understand", "appreciate", "recognize", "know that", "hear your concern"},
		"direct":     {"need to", "must", "should", "require", "necessary"},
	}

	contractionRe = regexp.MustCompile(`\b(can't|won't|don't|isn't|aren't|wasn't|weren't|hasn't|haven't|hadn't|didn't|wouldn't|couldn't|shouldn't)\b`)

	// negativeGuidelineSkip are guideline key terms that signal the rule
	// itself rather than the language it prohibits.
	negativeGuidelineSkip = map[string]struct{}{"avoid": {}, "dont": {}, "should": {}}
)

// CommunicationStyleEvaluator scores professionalism, clarity, tone
// appropriateness, and adaptability to the business context.
//
// Sub-criteria: professionalism 0-3, clarity 0-2, tone 0-3,
// adaptability 0-2. The evaluator is stateless and safe for concurrent
// use.
type CommunicationStyleEvaluator struct {
	weight float64
	tracer trace.Tracer
}

// NewCommunicationStyleEvaluator creates a communication-style evaluator
// with the given overall weight.
func NewCommunicationStyleEvaluator(weight float64) (*CommunicationStyleEvaluator, error) {
	if err := checkWeight(weight); err != nil {
		return nil, err
	}
	return &CommunicationStyleEvaluator{
		weight: weight,
		tracer: otel.Tracer("communication-style-evaluator"),
	}, nil
}

// Name returns the evaluator's stable identifier.
func (e *CommunicationStyleEvaluator) Name() string { return "communication_style" }

// Weight returns the evaluator's contribution to the overall score.
func (e *CommunicationStyleEvaluator) Weight() float64 { return e.weight }

// Metadata describes the evaluator and its scoring envelope.
func (e *CommunicationStyleEvaluator) Metadata() domain.EvaluatorMetadata {
	return metadata(e.Name(), e.weight)
}

// Evaluate scores one turn.
func (e *CommunicationStyleEvaluator) Evaluate(ctx context.Context, input ports.EvaluationInput) (domain.EvaluationResult, error) {
	if input.Scenario == nil {
		return domain.EvaluationResult{}, fmt.Errorf("%w: nil scenario", ports.ErrInvalidInput)
	}

	_, span := e.tracer.Start(ctx, "communication_style.evaluate",
		trace.WithAttributes(
			attribute.String("scenario.id", input.Scenario.ID()),
			attribute.Int("turn.index", input.TurnIndex),
		))
	defer span.End()

	text := input.Response.Content
	gt := input.Scenario.GroundTruth()
	sctx := input.Scenario.Context()

	expectedTone := gt.ExpectedTone
	if expectedTone == "" {
		expectedTone = "professional"
	}
	expectedFormality := gt.ExpectedFormality
	if expectedFormality == "" {
		expectedFormality = "formal"
	}
	customerType := sctx.CustomerType
	if customerType == "" {
		customerType = "enterprise"
	}
	industry := sctx.Industry
	if industry == "" {
		industry = "general"
	}

	professionalism, professionalismExpl := e.scoreProfessionalism(text, expectedFormality)
	clarity, clarityExpl := e.scoreClarity(text)
	tone, toneExpl := e.scoreTone(text, expectedTone, customerType, industry)
	adaptability, adaptabilityExpl := e.scoreAdaptability(text, input.History, gt.CommunicationGuidelines)

	total := professionalism + clarity + tone + adaptability
	span.SetAttributes(attribute.Float64("score.total", total))

	return domain.EvaluationResult{
		Score:       normalizeScore(total),
		MaxPossible: MaxScore,
		Breakdown: map[string]float64{
			"professionalism_score": professionalism,
			"clarity_score":         clarity,
			"tone_score":            tone,
			"adaptability_score":    adaptability,
		},
		Explanation: map[string]string{
			"professionalism": professionalismExpl,
			"clarity":         clarityExpl,
			"tone":            toneExpl,
			"adaptability":    adaptabilityExpl,
		},
	}, nil
}

func (e *CommunicationStyleEvaluator) scoreProfessionalism(text, expectedFormality string) (float64, string) {
	folded := fold(text)

	unprofessional := 0
	for _, term := range unprofessionalTerms {
		if wordBoundaryMatch(folded, term) {
			unprofessional++
		}
	}

	business := 0
	for _, term := range businessLanguageTerms {
		if wordBoundaryMatch(folded, term) {
			business++
		}
	}

	// Contractions only matter when formal language is expected; the
	// flag colors the explanation, not the bands.
	excessiveInformality := false
	if expectedFormality == "formal" {
		contractions := len(contractionRe.FindAllString(folded, -1))
		excessiveInformality = unprofessional > 0 || contractions > 3
	} else {
		excessiveInformality = unprofessional > 2
	}

	var score float64
	var expl string
	switch {
	case unprofessional == 0 && business >= 3:
		score = 3.0
		expl = "Response demonstrates excellent professionalism with appropriate business language"
	case unprofessional == 0 && business >= 1:
		score = 2.0
		expl = "Response demonstrates good professionalism"
	case unprofessional <= 1 && business >= 1:
		score = 1.0
		expl = "Response demonstrates adequate professionalism with minor issues"
	default:
		score = 0.0
		expl = "Response lacks professionalism with inappropriate language or tone"
	}
	if excessiveInformality && score > 0 {
		expl += " despite informal phrasing for the expected formality"
	}
	return score, expl
}

func (e *CommunicationStyleEvaluator) scoreClarity(text string) (float64, string) {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return 0.0, "Could not evaluate clarity due to parsing issues"
	}

	totalWords := 0
	for _, s := range sentences {
		totalWords += len(wordRe.FindAllString(s, -1))
	}
	avgSentenceLength := float64(totalWords) / float64(len(sentences))

	allWords := len(wordRe.FindAllString(text, -1))
	complexRatio := 0.0
	if allWords > 0 {
		complexRatio = float64(len(complexRe.FindAllString(text, -1))) / float64(allWords)
	}

	switch {
	case avgSentenceLength >= 10 && avgSentenceLength <= 20 && complexRatio < 0.05:
		return 2.0, "Response is exceptionally clear, concise, and well-structured"
	case avgSentenceLength >= 8 && avgSentenceLength <= 30 && complexRatio < 0.15:
		return 1.5, "Response is clear and well-structured"
	case avgSentenceLength <= 35 && complexRatio < 0.2:
		return 1.0, "Response is adequately clear and reasonably concise"
	default:
		return 0.0, "Response lacks clarity with overly complex or too brief language"
	}
}

func (e *CommunicationStyleEvaluator) scoreTone(text, expectedTone, customerType, industry string) (float64, string) {
	folded := fold(text)

	expectedToneCount := 0
	for _, term := range toneIndicators[expectedTone] {
		if strings.Contains(folded, term) {
			expectedToneCount++
		}
	}

	inappropriate := false
	if customerType == "enterprise" && containsAny(folded, toneIndicators["friendly"]) {
		inappropriate = true
	}
	if industry == "financial" && !containsAny(folded, toneIndicators["formal"]) {
		inappropriate = true
	}
	if industry == "healthcare" && !containsAny(folded, toneIndicators["empathetic"]) {
		inappropriate = true
	}

	switch {
	case expectedToneCount >= 2 && !inappropriate:
		return 3.0, fmt.Sprintf("Response perfectly matches the expected %s tone for this context", expectedTone)
	case expectedToneCount >= 1 && !inappropriate:
		return 2.0, fmt.Sprintf("Response generally maintains an appropriate %s tone", expectedTone)
	case !inappropriate:
		return 1.0, "Response maintains neutral tone appropriate for business"
	default:
		return 0.0, fmt.Sprintf("Response uses inappropriate tone for %s customer in %s industry", customerType, industry)
	}
}

func (e *CommunicationStyleEvaluator) scoreAdaptability(text string, history []domain.Message, guidelines []string) (float64, string) {
	var lastCustomerMessage string
	hasCustomerMessage := false
	for _, msg := range history {
		if msg.Role == domain.RoleUser {
			lastCustomerMessage = msg.Content
			hasCustomerMessage = true
		}
	}

	guidelineRatio := 1.0
	if len(guidelines) > 0 {
		followed := 0
		for _, guideline := range guidelines {
			if guidelineFollowed(text, guideline) {
				followed++
			}
		}
		guidelineRatio = float64(followed) / float64(len(guidelines))
	}

	if !hasCustomerMessage {
		switch {
		case guidelineRatio >= 0.8:
			return 2.0, "Response follows communication guidelines perfectly"
		case guidelineRatio >= 0.5:
			return 1.5, "Response follows most communication guidelines"
		case guidelineRatio >= 0.3:
			return 1.0, "Response follows some communication guidelines"
		default:
			return 0.0, "Response does not follow communication guidelines"
		}
	}

	customerTerms := termSet(lastCustomerMessage)
	responseTerms := termSet(text)
	shared := 0
	for term := range customerTerms {
		if _, ok := responseTerms[term]; ok {
			shared++
		}
	}
	adaptationRatio := 0.0
	if len(customerTerms) > 0 {
		adaptationRatio = float64(shared) / float64(len(customerTerms))
	}

	switch {
	case adaptationRatio >= 0.3 && guidelineRatio >= 0.8:
		return 2.0, "Response excellently adapts to customer's language and follows guidelines"
	case adaptationRatio >= 0.2 && guidelineRatio >= 0.5:
		return 1.5, "Response adapts well to context and follows guidelines"
	case adaptationRatio >= 0.1 || guidelineRatio >= 0.5:
		return 1.0, "Response shows some adaptation to context"
	default:
		return 0.0, "Response fails to adapt to conversation context"
	}
}

// guidelineFollowed checks one communication guideline. Negative
// guidelines ("avoid ...") are followed when none of their prohibited
// terms appear; positive guidelines need at least 30% of their key terms
// present.
func guidelineFollowed(text, guideline string) bool {
	foldedGuideline := fold(guideline)
	foldedText := fold(text)
	keyTerms := termSet(guideline)

	if strings.Contains(foldedGuideline, "avoid") ||
		strings.Contains(foldedGuideline, "don't") ||
		strings.Contains(foldedGuideline, "do not") {
		for term := range keyTerms {
			if _, skip := negativeGuidelineSkip[term]; skip {
				continue
			}
			if strings.Contains(foldedText, term) {
				return false
			}
		}
		return true
	}

	if len(keyTerms) == 0 {
		return true
	}
	textTerms := termSet(text)
	shared := 0
	for term := range keyTerms {
		if _, ok := textTerms[term]; ok {
			shared++
		}
	}
	return float64(shared)/float64(len(keyTerms)) >= 0.3
}

// termSet extracts the unique words of at least four characters.
func termSet(text string) map[string]struct{} {
	words := word4Re.FindAllString(fold(text), -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func containsAny(folded string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(folded, term) {
			return true
		}
	}
	return false
}
