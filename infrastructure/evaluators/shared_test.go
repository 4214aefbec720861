package evaluators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

// buildInput assembles an evaluation input for one turn of a throwaway
// scenario built from the given spec pieces.
func buildInput(t *testing.T, spec domain.ScenarioSpec, response domain.ModelResponse, history []domain.Message, calls []domain.ToolCallRecord) ports.EvaluationInput {
	t.Helper()
	if spec.ID == "" {
		spec.ID = "scn_test"
	}
	if spec.Name == "" {
		spec.Name = "test scenario"
	}
	if len(spec.Turns) == 0 {
		spec.Turns = []domain.ScenarioTurn{{UserMessage: "initial"}}
	}
	return ports.EvaluationInput{
		Response:  response,
		Scenario:  domain.NewScenario(spec),
		TurnIndex: 0,
		History:   history,
		ToolCalls: calls,
	}
}

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name string
		raw  float64
		want float64
	}{
		{name: "within range", raw: 7.5, want: 7.5},
		{name: "clamps negative", raw: -2, want: 0},
		{name: "clamps overflow", raw: 11, want: 10},
		{name: "idempotent at bounds", raw: 10, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeScore(tt.raw)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.InDelta(t, got, normalizeScore(got), 1e-9,
				"normalization should be idempotent")
		})
	}
}

func TestContainsKeyElements(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		target string
		want   bool
	}{
		{
			name:   "direct match",
			text:   "our implementation timeline spans eight weeks",
			target: "implementation timeline",
			want:   true,
		},
		{
			name:   "synonym match",
			text:   "the setup takes eight weeks from contract signature",
			target: "implementation timeline",
			want:   true,
		},
		{
			name:   "below threshold",
			text:   "please contact our sales department",
			target: "implementation timeline details",
			want:   false,
		},
		{
			name:   "no key terms in target",
			text:   "anything at all",
			target: "to be",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containsKeyElements(fold(tt.text), fold(tt.target)))
		})
	}
}

func TestSimilarityRatio(t *testing.T) {
	assert.InDelta(t, 1.0, similarityRatio("same text", "same text"), 1e-9)
	assert.InDelta(t, 1.0, similarityRatio("", ""), 1e-9)
	assert.Greater(t, similarityRatio("the price is fixed", "the price is fixe"), 0.9)
	assert.Less(t, similarityRatio("completely different", "nothing alike here"), 0.5)
}

func TestCheckWeight(t *testing.T) {
	assert.NoError(t, checkWeight(0))
	assert.NoError(t, checkWeight(0.25))
	assert.NoError(t, checkWeight(1))
	assert.ErrorIs(t, checkWeight(1.5), ErrInvalidWeight)
	assert.ErrorIs(t, checkWeight(-0.1), ErrInvalidWeight)
}
