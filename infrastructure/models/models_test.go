package models

import (
	"context"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

func sampleTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{{
		Type: "function",
		Function: domain.FunctionDefinition{
			Name:        "scheduler",
			Description: "Check availability",
			Parameters: domain.ParameterObject{
				Type: "object",
				Properties: map[string]domain.ParameterSpec{
					"meeting_type": {Type: "string", Description: "Type of meeting", Required: true},
					"participants": {Type: "array", Items: map[string]string{"type": "string"}},
				},
				Required: []string{"meeting_type"},
			},
		},
	}}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "mystery", Model: "m", APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{Provider: "openai"})
	assert.Error(t, err)
}

func TestConfigDisplayName(t *testing.T) {
	assert.Equal(t, "gpt-4o", Config{Model: "gpt-4o"}.DisplayName())
	assert.Equal(t, "primary", Config{Model: "gpt-4o", Name: "primary"}.DisplayName())
}

func TestToOpenAIMessages(t *testing.T) {
	messages := []domain.Message{
		{Role: domain.RoleUser, Content: "hello"},
		{Role: domain.RoleAssistant, Content: "checking", ToolCalls: []domain.ToolCallRequest{{
			ID:       "call_1",
			Function: domain.FunctionCall{Name: "scheduler", Arguments: `{"meeting_type":"demo"}`},
		}}},
		{Role: domain.RoleTool, Content: `{"available_slots":[]}`, ToolCallID: "call_1", Name: "scheduler"},
	}

	converted := toOpenAIMessages(messages)
	require.Len(t, converted, 3)
	assert.Equal(t, openai.ChatMessageRoleUser, converted[0].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, converted[1].Role)
	require.Len(t, converted[1].ToolCalls, 1)
	assert.Equal(t, "call_1", converted[1].ToolCalls[0].ID)
	assert.Equal(t, openai.ToolTypeFunction, converted[1].ToolCalls[0].Type)
	assert.Equal(t, openai.ChatMessageRoleTool, converted[2].Role)
	assert.Equal(t, "call_1", converted[2].ToolCallID)
	assert.Equal(t, "scheduler", converted[2].Name)
}

func TestToOpenAITools(t *testing.T) {
	converted := toOpenAITools(sampleTools())
	require.Len(t, converted, 1)
	assert.Equal(t, openai.ToolTypeFunction, converted[0].Type)
	assert.Equal(t, "scheduler", converted[0].Function.Name)

	assert.Nil(t, toOpenAITools(nil))
}

func TestFromOpenAIToolCalls(t *testing.T) {
	calls := fromOpenAIToolCalls([]openai.ToolCall{{
		ID:       "call_9",
		Type:     openai.ToolTypeFunction,
		Function: openai.FunctionCall{Name: "pricing_calculator", Arguments: `{"product_id":"data_insight"}`},
	}})
	require.Len(t, calls, 1)
	assert.Equal(t, "call_9", calls[0].ID)
	assert.Equal(t, "pricing_calculator", calls[0].Function.Name)

	assert.Nil(t, fromOpenAIToolCalls(nil))
}

func TestToAnthropicTools(t *testing.T) {
	converted := toAnthropicTools(sampleTools())
	require.Len(t, converted, 1)
	tool := converted[0].OfTool
	require.NotNil(t, tool)
	assert.Equal(t, "scheduler", tool.Name)
	assert.Equal(t, []string{"meeting_type"}, tool.InputSchema.Required)

	properties := tool.InputSchema.Properties.(map[string]any)
	meetingType := properties["meeting_type"].(map[string]any)
	assert.Equal(t, "string", meetingType["type"])
}

func TestToGeminiFunctions(t *testing.T) {
	declarations := toGeminiFunctions(sampleTools())
	require.Len(t, declarations, 1)
	decl := declarations[0]
	assert.Equal(t, "scheduler", decl.Name)
	assert.Equal(t, genai.TypeObject, decl.Parameters.Type)
	assert.Equal(t, []string{"meeting_type"}, decl.Parameters.Required)
	assert.Equal(t, genai.TypeString, decl.Parameters.Properties["meeting_type"].Type)
	require.NotNil(t, decl.Parameters.Properties["participants"].Items)
	assert.Equal(t, genai.TypeString, decl.Parameters.Properties["participants"].Items.Type)
}

func TestToGeminiType(t *testing.T) {
	assert.Equal(t, genai.TypeInteger, toGeminiType("integer"))
	assert.Equal(t, genai.TypeBoolean, toGeminiType("boolean"))
	assert.Equal(t, genai.TypeString, toGeminiType("unknown"))
}

func TestDecodeArguments(t *testing.T) {
	args := decodeArguments(`{"users": 10}`)
	assert.Equal(t, float64(10), args["users"])

	assert.Empty(t, decodeArguments(""))
	assert.Equal(t, map[string]any{"raw": "not json"}, decodeArguments("not json"))
}

func TestDecodeToolPayload(t *testing.T) {
	payload := decodeToolPayload(`{"total_price": 1500.0}`)
	assert.Equal(t, 1500.0, payload["total_price"])

	assert.Equal(t, map[string]any{"output": "plain text"}, decodeToolPayload("plain text"))
	assert.Empty(t, decodeToolPayload(""))
}

func TestUsageTracker(t *testing.T) {
	tracker := newUsageTracker("gpt-4o")
	tracker.record(&domain.Usage{PromptTokens: 1000, CompletionTokens: 500, TotalTokens: 1500})
	tracker.record(nil)

	stats := tracker.stats()
	assert.Equal(t, "gpt-4o", stats.Model)
	assert.Equal(t, int64(2), stats.APICalls)
	assert.Equal(t, int64(1000), stats.PromptTokens)
	assert.Equal(t, int64(1500), stats.TotalTokens)
	// 1000 in at $2.50/M plus 500 out at $10.00/M.
	assert.InDelta(t, 0.0075, stats.TotalCost, 1e-9)

	tracker.reset()
	stats = tracker.stats()
	assert.Equal(t, int64(0), stats.APICalls)
	assert.Equal(t, 0.0, stats.TotalCost)
}

func TestUsageTrackerUnknownModelPricing(t *testing.T) {
	tracker := newUsageTracker("house-model")
	tracker.record(&domain.Usage{PromptTokens: 1_000_000, CompletionTokens: 0, TotalTokens: 1_000_000})
	assert.InDelta(t, 1.00, tracker.stats().TotalCost, 1e-9)
}

type stubClient struct {
	name  string
	calls int
	resp  domain.ModelResponse
	err   error
}

func (s *stubClient) Name() string { return s.name }

func (s *stubClient) GenerateResponse(context.Context, []domain.Message, []domain.ToolDefinition) (domain.ModelResponse, error) {
	s.calls++
	return s.resp, s.err
}

func (s *stubClient) UsageStats() domain.ModelUsageStats {
	return domain.ModelUsageStats{Model: s.name}
}

func (s *stubClient) ResetStats() {}

func TestWithRateLimitPassesThrough(t *testing.T) {
	stub := &stubClient{name: "stub", resp: domain.ModelResponse{Content: "ok"}}
	limited := WithRateLimit(stub, 600)

	resp, err := limited.GenerateResponse(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "stub", limited.Name())
}

func TestWithRateLimitHonorsContext(t *testing.T) {
	stub := &stubClient{name: "stub"}
	// One request per minute with the single burst token already spent.
	limited := WithRateLimit(stub, 1)
	_, err := limited.GenerateResponse(context.Background(), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = limited.GenerateResponse(ctx, nil, nil)
	require.Error(t, err)

	var modelErr *ports.ModelError
	require.ErrorAs(t, err, &modelErr)
	assert.Equal(t, "rate_limit_wait", modelErr.Operation)
	assert.Equal(t, 1, stub.calls)
}

func TestWithTracing(t *testing.T) {
	stub := &stubClient{name: "stub", resp: domain.ModelResponse{
		Content: "fine",
		Usage:   &domain.Usage{PromptTokens: 5, CompletionTokens: 3, TotalTokens: 8},
	}}
	traced := WithTracing(stub)

	resp, err := traced.GenerateResponse(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "fine", resp.Content)
	assert.Equal(t, "stub", traced.Name())
}
