// Package evaluators provides the lexical scoring rubrics that implement
// the ports.Evaluator interface for the bizcon benchmark harness.
//
// Each evaluator decomposes its rubric into weighted sub-criteria, scores
// them independently against the scenario's ground truth using lexical
// heuristics, and returns the sub-scores alongside explanatory strings.
// The thresholds and word lists are the behavioral contract of the
// benchmark: changing them changes scoring outcomes downstream consumers
// depend on.
package evaluators

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"

	"github.com/olib-ai/bizcon/internal/domain"
)

// Score bounds shared by every evaluator.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Common errors returned by evaluator constructors.
var (
	// ErrInvalidWeight is returned when an evaluator weight is outside [0, 1].
	ErrInvalidWeight = errors.New("evaluator weight must be in [0, 1]")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// foldCaser is a package-level Unicode case folder for performance.
// This avoids creating a new caser for each string comparison.
var foldCaser = cases.Fold()

var (
	wordRe     = regexp.MustCompile(`\b\w+\b`)
	word4Re    = regexp.MustCompile(`\b\w{4,}\b`)
	complexRe  = regexp.MustCompile(`\b\w{12,}\b`)
	sentenceRe = regexp.MustCompile(`[.!?]+`)
	tokenRe    = regexp.MustCompile(`\b[A-Za-z0-9_-]{4,}\b`)
)

// qualityStopwords is the stopword set used by response-quality style
// key-term extraction. It deliberately includes auxiliaries so that
// "will be available" reduces to "available".
var qualityStopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "with": {}, "by": {}, "about": {},
	"as": {}, "of": {}, "that": {}, "this": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "be": {}, "been": {}, "being": {}, "have": {}, "has": {},
	"had": {}, "do": {}, "does": {}, "did": {}, "will": {}, "would": {},
	"shall": {}, "should": {}, "may": {}, "might": {}, "must": {}, "can": {},
	"could": {},
}

// valueStopwords is the smaller stopword set used by business-value
// matching, which keeps auxiliaries as signal.
var valueStopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "with": {}, "by": {}, "about": {},
	"as": {},
}

// synonyms maps common business terms to acceptable stand-ins for
// key-term containment checks.
var synonyms = map[string][]string{
	"pricing":        {"price", "cost", "costs", "fee", "fees", "rate", "rates", "pricing", "charge"},
	"information":    {"info", "details", "data", "information"},
	"timeline":       {"timeline", "timeframe", "schedule", "duration", "time", "takes", "timing"},
	"implementation": {"implementation", "setup", "deployment", "installation", "rollout"},
}

// fold lowercases text with full Unicode case folding so substring
// checks behave consistently across scripts.
func fold(s string) string { return foldCaser.String(s) }

// normalizeScore clamps a raw score to [MinScore, MaxScore].
func normalizeScore(raw float64) float64 {
	if raw < MinScore {
		return MinScore
	}
	if raw > MaxScore {
		return MaxScore
	}
	return raw
}

// extractKeyTerms returns the unique words longer than three characters
// that are not in the given stopword set, in first-seen order.
func extractKeyTerms(text string, stopwords map[string]struct{}) []string {
	words := wordRe.FindAllString(fold(text), -1)
	seen := make(map[string]struct{}, len(words))
	var terms []string
	for _, w := range words {
		if len(w) <= 3 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
	}
	return terms
}

// splitSentences splits text on terminal punctuation and trims blanks.
func splitSentences(text string) []string {
	parts := sentenceRe.Split(text, -1)
	out := parts[:0]
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// containsKeyElements reports whether at least 70% of target's key terms
// (or their synonyms) appear in text. Both arguments must already be
// case folded.
func containsKeyElements(text, target string) bool {
	terms := extractKeyTerms(target, qualityStopwords)
	if len(terms) == 0 {
		return false
	}
	matches := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			matches++
			continue
		}
		for _, syn := range synonyms[term] {
			if strings.Contains(text, syn) {
				matches++
				break
			}
		}
	}
	return float64(matches)/float64(len(terms)) >= 0.7
}

// similarityRatio computes normalized Levenshtein similarity between two
// strings: 1 - distance/maxLen, yielding 1.0 for identical inputs.
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// truthy reports whether a decoded parameter value is non-empty in the
// loose sense used for parameter comparison: nil, "", 0, false, and
// empty collections are all falsy.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

// wordBoundaryMatch reports whether term appears in text delimited by
// word boundaries. Multi-word terms match as whole phrases.
func wordBoundaryMatch(text, term string) bool {
	re, err := boundaryPattern(term)
	if err != nil {
		return strings.Contains(text, term)
	}
	return re.MatchString(text)
}

func boundaryPattern(term string) (*regexp.Regexp, error) {
	return regexp.Compile(`\b` + regexp.QuoteMeta(term) + `\b`)
}

// evaluatorConfig is validated by every constructor.
type evaluatorConfig struct {
	Weight float64 `validate:"min=0,max=1"`
}

func checkWeight(weight float64) error {
	if err := validate.Struct(evaluatorConfig{Weight: weight}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWeight, weight)
	}
	return nil
}

func metadata(name string, weight float64) domain.EvaluatorMetadata {
	return domain.EvaluatorMetadata{
		Name:     name,
		Weight:   weight,
		MinScore: MinScore,
		MaxScore: MaxScore,
	}
}
