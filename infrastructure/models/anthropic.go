package models

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

const anthropicDefaultMaxTokens = 4096

func init() {
	RegisterFactory("anthropic", newAnthropicClient)
}

// anthropicClient implements ports.ModelClient against Anthropic's
// Messages API, mapping tool results onto tool_result content blocks.
type anthropicClient struct {
	name        string
	model       string
	client      anthropic.Client
	temperature *float64
	maxTokens   int
	usage       *usageTracker
}

var _ ports.ModelClient = (*anthropicClient)(nil)

func newAnthropicClient(cfg Config) (ports.ModelClient, error) {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &anthropicClient{
		name:        cfg.DisplayName(),
		model:       cfg.Model,
		client:      anthropic.NewClient(opts...),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		usage:       newUsageTracker(cfg.Model),
	}, nil
}

func (c *anthropicClient) Name() string { return c.name }

func (c *anthropicClient) GenerateResponse(ctx context.Context, messages []domain.Message, tools []domain.ToolDefinition) (domain.ModelResponse, error) {
	maxTokens := c.maxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages:  toAnthropicMessages(messages),
		Tools:     toAnthropicTools(tools),
	}
	if c.temperature != nil {
		params.Temperature = param.NewOpt(*c.temperature)
	}

	start := time.Now()
	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return domain.ModelResponse{}, c.wrapError(err)
	}

	var content strings.Builder
	var toolCalls []domain.ToolCallRequest
	for _, block := range message.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			content.WriteString(v.Text)
		case anthropic.ToolUseBlock:
			toolCalls = append(toolCalls, domain.ToolCallRequest{
				ID: v.ID,
				Function: domain.FunctionCall{
					Name:      v.Name,
					Arguments: string(v.Input),
				},
			})
		}
	}

	result := domain.ModelResponse{
		Content:   content.String(),
		ToolCalls: toolCalls,
		Usage: &domain.Usage{
			PromptTokens:     int(message.Usage.InputTokens),
			CompletionTokens: int(message.Usage.OutputTokens),
			TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
		Metrics: domain.ResponseMetrics{
			ResponseTimeMs: time.Since(start).Milliseconds(),
		},
	}
	c.usage.record(result.Usage)
	return result, nil
}

func (c *anthropicClient) UsageStats() domain.ModelUsageStats { return c.usage.stats() }

func (c *anthropicClient) ResetStats() { c.usage.reset() }

func (c *anthropicClient) wrapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return wrapProviderError(c.name, "messages", apiErr.StatusCode, 0, err)
	}
	return wrapProviderError(c.name, "messages", 0, 0, err)
}

// toAnthropicMessages converts conversation history into Anthropic message
// params. Tool results become user-role tool_result blocks, per the
// Messages API contract.
func toAnthropicMessages(messages []domain.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, decodeArguments(call.Function.Arguments), call.Function.Name))
			}
			out = append(out, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleAssistant,
				Content: blocks,
			})
		case domain.RoleTool:
			out = append(out, anthropic.MessageParam{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{
					anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false),
				},
			})
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return out
}

func toAnthropicTools(tools []domain.ToolDefinition) []anthropic.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, def := range tools {
		properties := make(map[string]any, len(def.Function.Parameters.Properties))
		for name, spec := range def.Function.Parameters.Properties {
			prop := map[string]any{"type": spec.Type}
			if spec.Description != "" {
				prop["description"] = spec.Description
			}
			if len(spec.Items) > 0 {
				prop["items"] = spec.Items
			}
			properties[name] = prop
		}

		tool := anthropic.ToolParam{
			Name: def.Function.Name,
			InputSchema: anthropic.ToolInputSchemaParam{
				Type:       "object",
				Properties: properties,
				Required:   append([]string(nil), def.Function.Parameters.Required...),
			},
		}
		if def.Function.Description != "" {
			tool.Description = param.NewOpt(def.Function.Description)
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return out
}

func decodeArguments(arguments string) map[string]any {
	params := make(map[string]any)
	if arguments == "" {
		return params
	}
	if err := json.Unmarshal([]byte(arguments), &params); err != nil {
		return map[string]any{"raw": arguments}
	}
	return params
}
