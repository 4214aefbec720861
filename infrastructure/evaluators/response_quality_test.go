package evaluators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

func TestNewResponseQualityEvaluator(t *testing.T) {
	eval, err := NewResponseQualityEvaluator(0.25)
	require.NoError(t, err)
	assert.Equal(t, "response_quality", eval.Name())
	assert.InDelta(t, 0.25, eval.Weight(), 1e-9)

	meta := eval.Metadata()
	assert.Equal(t, "response_quality", meta.Name)
	assert.InDelta(t, MinScore, meta.MinScore, 1e-9)
	assert.InDelta(t, MaxScore, meta.MaxScore, 1e-9)

	_, err = NewResponseQualityEvaluator(2)
	assert.ErrorIs(t, err, ErrInvalidWeight)
}

func TestResponseQualityNilScenario(t *testing.T) {
	eval, err := NewResponseQualityEvaluator(0.25)
	require.NoError(t, err)

	_, err = eval.Evaluate(context.Background(), ports.EvaluationInput{})
	assert.ErrorIs(t, err, ports.ErrInvalidInput)
}

func TestResponseQualityAccuracyNoFacts(t *testing.T) {
	eval, err := NewResponseQualityEvaluator(0.25)
	require.NoError(t, err)

	input := buildInput(t, domain.ScenarioSpec{},
		domain.ModelResponse{Content: "completely arbitrary response text"}, nil, nil)

	result, err := eval.Evaluate(context.Background(), input)
	require.NoError(t, err)

	assert.InDelta(t, 4.0, result.Breakdown["accuracy_score"], 1e-9,
		"zero expected facts should pin accuracy at 4.0")
	assert.Empty(t, result.Errors)
}

func TestResponseQualityAccuracyIncorrectFact(t *testing.T) {
	eval, err := NewResponseQualityEvaluator(0.25)
	require.NoError(t, err)

	spec := domain.ScenarioSpec{
		Turns: []domain.ScenarioTurn{{UserMessage: "Tell me about pricing"}},
		GroundTruth: domain.GroundTruth{
			ExpectedFacts: []string{"pricing: $1000"},
		},
	}
	input := buildInput(t, spec,
		domain.ModelResponse{Content: "Our pricing depends on your team size and contract length."},
		[]domain.Message{{Role: domain.RoleUser, Content: "Tell me about pricing"}}, nil)

	result, err := eval.Evaluate(context.Background(), input)
	require.NoError(t, err)

	assert.LessOrEqual(t, result.Breakdown["accuracy_score"], 2.0)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "incorrect_fact", result.Errors[0].Type)
}

func TestResponseQualityAccuracyBands(t *testing.T) {
	eval, err := NewResponseQualityEvaluator(0.25)
	require.NoError(t, err)

	tests := []struct {
		name     string
		facts    []string
		response string
		want     float64
	}{
		{
			name:     "all facts correct",
			facts:    []string{"price: 1000 dollars monthly", "support: 24/7 coverage included"},
			response: "The price comes to 1000 dollars monthly, and support runs 24/7 with coverage included.",
			want:     4.0,
		},
		{
			name:     "bare key mention suffices",
			facts:    []string{"warranty"},
			response: "Every plan carries a full warranty for the first year.",
			want:     4.0,
		},
		{
			name:     "all facts missing",
			facts:    []string{"onboarding: three weeks", "training: online modules"},
			response: "Thanks for reaching out, let me know how else I can assist.",
			want:     0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := domain.ScenarioSpec{
				GroundTruth: domain.GroundTruth{ExpectedFacts: tt.facts},
			}
			input := buildInput(t, spec, domain.ModelResponse{Content: tt.response}, nil, nil)

			result, err := eval.Evaluate(context.Background(), input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, result.Breakdown["accuracy_score"], 1e-9)
		})
	}
}

func TestResponseQualityCompletenessBands(t *testing.T) {
	eval, err := NewResponseQualityEvaluator(0.25)
	require.NoError(t, err)

	tests := []struct {
		name     string
		elements []string
		response string
		want     float64
	}{
		{name: "no required elements", elements: nil, response: "anything", want: 3.0},
		{
			name:     "all elements present",
			elements: []string{"pricing details", "demo session"},
			response: "I can share pricing details now and arrange a demo session for Thursday.",
			want:     3.0,
		},
		{
			name:     "half of elements present",
			elements: []string{"pricing details", "contract terms"},
			response: "Here are the pricing details you asked about.",
			want:     1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := domain.ScenarioSpec{
				GroundTruth: domain.GroundTruth{RequiredElements: tt.elements},
			}
			input := buildInput(t, spec, domain.ModelResponse{Content: tt.response}, nil, nil)

			result, err := eval.Evaluate(context.Background(), input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, result.Breakdown["completeness_score"], 1e-9)
		})
	}
}

func TestResponseQualityRelevanceWithoutContext(t *testing.T) {
	eval, err := NewResponseQualityEvaluator(0.25)
	require.NoError(t, err)

	input := buildInput(t, domain.ScenarioSpec{},
		domain.ModelResponse{Content: "some response"}, nil, nil)

	result, err := eval.Evaluate(context.Background(), input)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, result.Breakdown["relevance_score"], 1e-9)
}

func TestResponseQualityConsistency(t *testing.T) {
	eval, err := NewResponseQualityEvaluator(0.25)
	require.NoError(t, err)

	history := []domain.Message{
		{Role: domain.RoleUser, Content: "Does the enterprise plan include priority support for all customers?"},
		{Role: domain.RoleAssistant, Content: "The enterprise plan does include priority support for all customers today."},
		{Role: domain.RoleUser, Content: "Can you confirm that once more?"},
	}

	contradicting := domain.ModelResponse{
		Content: "The enterprise plan does not include priority support for all customers today.",
	}
	input := buildInput(t, domain.ScenarioSpec{}, contradicting, history, nil)

	result, err := eval.Evaluate(context.Background(), input)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, result.Breakdown["consistency_score"], 1e-9,
		"near-identical statement with flipped negation should flag a contradiction")

	consistent := domain.ModelResponse{
		Content: "Yes, the enterprise plan does include priority support for all customers today.",
	}
	input = buildInput(t, domain.ScenarioSpec{}, consistent, history, nil)

	result, err = eval.Evaluate(context.Background(), input)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Breakdown["consistency_score"], 1e-9)
}

func TestResponseQualityToolOutputCrossCheck(t *testing.T) {
	eval, err := NewResponseQualityEvaluator(0.25)
	require.NoError(t, err)

	spec := domain.ScenarioSpec{
		GroundTruth: domain.GroundTruth{ExpectedFacts: []string{"total"}},
	}
	calls := []domain.ToolCallRecord{
		{
			ToolID:     "pricing_calculator",
			Parameters: map[string]any{"plan": "enterprise"},
			Result: domain.ToolResult{
				Status: domain.StatusSuccess,
				Result: map[string]any{"total_price": 1000.0},
			},
		},
	}
	input := buildInput(t, spec,
		domain.ModelResponse{Content: "Your total comes to $1,500.00 per month."}, nil, calls)

	result, err := eval.Evaluate(context.Background(), input)
	require.NoError(t, err)

	found := false
	for _, e := range result.Errors {
		if e.Type == "incorrect_fact" && e.Provided == "Mentioned price: $1,500.00" {
			found = true
		}
	}
	assert.True(t, found, "price deviating from tool output should be flagged: %+v", result.Errors)
}

func TestResponseQualityScoreBounds(t *testing.T) {
	eval, err := NewResponseQualityEvaluator(0.25)
	require.NoError(t, err)

	input := buildInput(t, domain.ScenarioSpec{},
		domain.ModelResponse{Content: "Thank you for your interest. We provide comprehensive support options."}, nil, nil)

	result, err := eval.Evaluate(context.Background(), input)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Score, MinScore)
	assert.LessOrEqual(t, result.Score, MaxScore)

	sum := 0.0
	for _, v := range result.Breakdown {
		sum += v
	}
	assert.InDelta(t, result.Score, sum, 1e-9,
		"breakdown should sum to the total score")
}
