package models

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

func init() {
	RegisterFactory("openai", newOpenAIClient)
}

// openAIClient implements ports.ModelClient against the OpenAI chat
// completions API, including function tool calling.
type openAIClient struct {
	name        string
	model       string
	client      *openai.Client
	temperature *float64
	maxTokens   int
	usage       *usageTracker
}

var _ ports.ModelClient = (*openAIClient)(nil)

func newOpenAIClient(cfg Config) (ports.ModelClient, error) {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &openAIClient{
		name:        cfg.DisplayName(),
		model:       cfg.Model,
		client:      openai.NewClientWithConfig(clientConfig),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		usage:       newUsageTracker(cfg.Model),
	}, nil
}

func (c *openAIClient) Name() string { return c.name }

func (c *openAIClient) GenerateResponse(ctx context.Context, messages []domain.Message, tools []domain.ToolDefinition) (domain.ModelResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAIMessages(messages),
		Tools:    toOpenAITools(tools),
	}
	if c.temperature != nil {
		req.Temperature = float32(*c.temperature)
	}
	if c.maxTokens > 0 {
		req.MaxTokens = c.maxTokens
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.ModelResponse{}, c.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return domain.ModelResponse{}, &ports.ModelError{
			Model:     c.name,
			Operation: "chat_completion",
			Err:       errors.New("no response choices returned"),
		}
	}

	choice := resp.Choices[0].Message
	result := domain.ModelResponse{
		Content:   choice.Content,
		ToolCalls: fromOpenAIToolCalls(choice.ToolCalls),
		Usage: &domain.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Metrics: domain.ResponseMetrics{
			ResponseTimeMs: time.Since(start).Milliseconds(),
		},
	}
	c.usage.record(result.Usage)
	return result, nil
}

func (c *openAIClient) UsageStats() domain.ModelUsageStats { return c.usage.stats() }

func (c *openAIClient) ResetStats() { c.usage.reset() }

func (c *openAIClient) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return wrapProviderError(c.name, "chat_completion", apiErr.HTTPStatusCode, 0, err)
	}
	return wrapProviderError(c.name, "chat_completion", 0, 0, err)
}

func toOpenAIMessages(messages []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		converted := openai.ChatCompletionMessage{
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
			Name:       msg.Name,
		}
		switch msg.Role {
		case domain.RoleAssistant:
			converted.Role = openai.ChatMessageRoleAssistant
		case domain.RoleTool:
			converted.Role = openai.ChatMessageRoleTool
		default:
			converted.Role = openai.ChatMessageRoleUser
		}
		for _, call := range msg.ToolCalls {
			converted.ToolCalls = append(converted.ToolCalls, openai.ToolCall{
				ID:   call.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      call.Function.Name,
					Arguments: call.Function.Arguments,
				},
			})
		}
		out = append(out, converted)
	}
	return out
}

func toOpenAITools(tools []domain.ToolDefinition) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(tools))
	for _, def := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Function.Name,
				Description: def.Function.Description,
				Parameters:  def.Function.Parameters,
			},
		})
	}
	return out
}

func fromOpenAIToolCalls(calls []openai.ToolCall) []domain.ToolCallRequest {
	if len(calls) == 0 {
		return nil
	}
	out := make([]domain.ToolCallRequest, 0, len(calls))
	for _, call := range calls {
		out = append(out, domain.ToolCallRequest{
			ID: call.ID,
			Function: domain.FunctionCall{
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			},
		})
	}
	return out
}
