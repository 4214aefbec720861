package evaluators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olib-ai/bizcon/internal/domain"
)

func TestCommunicationStyleProfessionalism(t *testing.T) {
	eval, err := NewCommunicationStyleEvaluator(0.20)
	require.NoError(t, err)

	tests := []struct {
		name     string
		response string
		want     float64
	}{
		{
			name:     "slang scores zero",
			response: "yo dude this costs money lol",
			want:     0.0,
		},
		{
			name:     "clean business language scores full",
			response: "Thank you for reaching out. Please let me know how I can assist, and I will provide the information you need.",
			want:     3.0,
		},
		{
			name:     "clean but sparse business language",
			response: "Thank you for the question. The answer arrives tomorrow.",
			want:     2.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := domain.ScenarioSpec{
				GroundTruth: domain.GroundTruth{ExpectedFormality: "formal"},
			}
			input := buildInput(t, spec, domain.ModelResponse{Content: tt.response}, nil, nil)

			result, err := eval.Evaluate(context.Background(), input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, result.Breakdown["professionalism_score"], 1e-9)
		})
	}
}

func TestCommunicationStyleClarity(t *testing.T) {
	eval, err := NewCommunicationStyleEvaluator(0.20)
	require.NoError(t, err)

	tests := []struct {
		name     string
		response string
		want     float64
	}{
		{
			name:     "balanced sentences score full",
			response: "Our team can deliver the rollout within six weeks of signing. Each phase includes a review call with your project lead there. You will receive a weekly summary of progress and open items.",
			want:     2.0,
		},
		{
			name:     "empty response cannot be parsed",
			response: "",
			want:     0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := buildInput(t, domain.ScenarioSpec{}, domain.ModelResponse{Content: tt.response}, nil, nil)

			result, err := eval.Evaluate(context.Background(), input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, result.Breakdown["clarity_score"], 1e-9)
		})
	}
}

func TestCommunicationStyleTone(t *testing.T) {
	eval, err := NewCommunicationStyleEvaluator(0.20)
	require.NoError(t, err)

	tests := []struct {
		name     string
		spec     domain.ScenarioSpec
		response string
		want     float64
	}{
		{
			name: "matches expected professional tone",
			spec: domain.ScenarioSpec{
				GroundTruth: domain.GroundTruth{ExpectedTone: "professional"},
			},
			response: "We recommend the standard plan; our team can walk you through the details.",
			want:     3.0,
		},
		{
			name: "friendly tone flagged for enterprise customer",
			spec: domain.ScenarioSpec{
				Context:     domain.ScenarioContext{CustomerType: "enterprise"},
				GroundTruth: domain.GroundTruth{ExpectedTone: "professional"},
			},
			response: "We are so excited to work with you, this is wonderful news!",
			want:     0.0,
		},
		{
			name: "healthcare requires empathy",
			spec: domain.ScenarioSpec{
				Context:     domain.ScenarioContext{CustomerType: "smb", Industry: "healthcare"},
				GroundTruth: domain.GroundTruth{ExpectedTone: "empathetic"},
			},
			response: "We understand and appreciate how disruptive this outage has been for your clinic.",
			want:     3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := buildInput(t, tt.spec, domain.ModelResponse{Content: tt.response}, nil, nil)

			result, err := eval.Evaluate(context.Background(), input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, result.Breakdown["tone_score"], 1e-9)
		})
	}
}

func TestCommunicationStyleAdaptability(t *testing.T) {
	eval, err := NewCommunicationStyleEvaluator(0.20)
	require.NoError(t, err)

	t.Run("mirrors customer vocabulary", func(t *testing.T) {
		history := []domain.Message{
			{Role: domain.RoleUser, Content: "What does migration pricing look like for large datasets?"},
		}
		response := domain.ModelResponse{
			Content: "Migration pricing for large datasets depends on volume; what datasets would you move first?",
		}
		input := buildInput(t, domain.ScenarioSpec{}, response, history, nil)

		result, err := eval.Evaluate(context.Background(), input)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, result.Breakdown["adaptability_score"], 1e-9)
	})

	t.Run("negative guideline violation", func(t *testing.T) {
		spec := domain.ScenarioSpec{
			GroundTruth: domain.GroundTruth{
				CommunicationGuidelines: []string{"avoid discussing discounts"},
			},
		}
		response := domain.ModelResponse{
			Content: "We can offer generous discounts on annual plans.",
		}
		input := buildInput(t, spec, response, nil, nil)

		result, err := eval.Evaluate(context.Background(), input)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, result.Breakdown["adaptability_score"], 1e-9,
			"mentioning a prohibited topic should fail the guideline")
	})

	t.Run("no history scores from guidelines alone", func(t *testing.T) {
		spec := domain.ScenarioSpec{
			GroundTruth: domain.GroundTruth{
				CommunicationGuidelines: []string{"mention the onboarding timeline explicitly"},
			},
		}
		response := domain.ModelResponse{
			Content: "The onboarding timeline runs four weeks end to end.",
		}
		input := buildInput(t, spec, response, nil, nil)

		result, err := eval.Evaluate(context.Background(), input)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, result.Breakdown["adaptability_score"], 1e-9)
	})
}
