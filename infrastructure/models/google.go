package models

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

func init() {
	RegisterFactory("google", newGoogleClient)
}

// googleClient implements ports.ModelClient against the Gemini API,
// mapping tool calls to function declarations and function responses.
type googleClient struct {
	name        string
	model       string
	client      *genai.Client
	temperature *float64
	maxTokens   int
	usage       *usageTracker
}

var _ ports.ModelClient = (*googleClient)(nil)

func newGoogleClient(cfg Config) (ports.ModelClient, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &googleClient{
		name:        cfg.DisplayName(),
		model:       cfg.Model,
		client:      client,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		usage:       newUsageTracker(cfg.Model),
	}, nil
}

func (c *googleClient) Name() string { return c.name }

func (c *googleClient) GenerateResponse(ctx context.Context, messages []domain.Message, tools []domain.ToolDefinition) (domain.ModelResponse, error) {
	config := &genai.GenerateContentConfig{}
	if c.temperature != nil {
		config.Temperature = genai.Ptr(float32(*c.temperature))
	}
	if c.maxTokens > 0 {
		config.MaxOutputTokens = int32(c.maxTokens)
	}
	if declarations := toGeminiFunctions(tools); len(declarations) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, toGeminiContents(messages), config)
	if err != nil {
		return domain.ModelResponse{}, c.wrapError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return domain.ModelResponse{}, &ports.ModelError{
			Model:     c.name,
			Operation: "generate_content",
			Err:       errors.New("no candidates returned"),
		}
	}

	var content strings.Builder
	var toolCalls []domain.ToolCallRequest
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			content.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			arguments, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				arguments = []byte("{}")
			}
			toolCalls = append(toolCalls, domain.ToolCallRequest{
				ID: part.FunctionCall.ID,
				Function: domain.FunctionCall{
					Name:      part.FunctionCall.Name,
					Arguments: string(arguments),
				},
			})
		}
	}

	result := domain.ModelResponse{
		Content:   content.String(),
		ToolCalls: toolCalls,
		Metrics: domain.ResponseMetrics{
			ResponseTimeMs: time.Since(start).Milliseconds(),
		},
	}
	if usage := resp.UsageMetadata; usage != nil {
		result.Usage = &domain.Usage{
			PromptTokens:     int(usage.PromptTokenCount),
			CompletionTokens: int(usage.CandidatesTokenCount),
			TotalTokens:      int(usage.TotalTokenCount),
		}
	}
	c.usage.record(result.Usage)
	return result, nil
}

func (c *googleClient) UsageStats() domain.ModelUsageStats { return c.usage.stats() }

func (c *googleClient) ResetStats() { c.usage.reset() }

func (c *googleClient) wrapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return wrapProviderError(c.name, "generate_content", apiErr.Code, 0, err)
	}
	return wrapProviderError(c.name, "generate_content", 0, 0, err)
}

func toGeminiContents(messages []domain.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleAssistant:
			parts := make([]*genai.Part, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   call.ID,
						Name: call.Function.Name,
						Args: decodeArguments(call.Function.Arguments),
					},
				})
			}
			out = append(out, genai.NewContentFromParts(parts, genai.RoleModel))
		case domain.RoleTool:
			part := &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:       msg.ToolCallID,
					Name:     msg.Name,
					Response: decodeToolPayload(msg.Content),
				},
			}
			out = append(out, genai.NewContentFromParts([]*genai.Part{part}, genai.RoleUser))
		default:
			out = append(out, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	return out
}

func toGeminiFunctions(tools []domain.ToolDefinition) []*genai.FunctionDeclaration {
	if len(tools) == 0 {
		return nil
	}
	out := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, def := range tools {
		properties := make(map[string]*genai.Schema, len(def.Function.Parameters.Properties))
		for name, spec := range def.Function.Parameters.Properties {
			schema := &genai.Schema{
				Type:        toGeminiType(spec.Type),
				Description: spec.Description,
			}
			if itemType, ok := spec.Items["type"]; ok {
				schema.Items = &genai.Schema{Type: toGeminiType(itemType)}
			}
			properties[name] = schema
		}
		out = append(out, &genai.FunctionDeclaration{
			Name:        def.Function.Name,
			Description: def.Function.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   append([]string(nil), def.Function.Parameters.Required...),
			},
		})
	}
	return out
}

func toGeminiType(jsonType string) genai.Type {
	switch jsonType {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// decodeToolPayload turns serialized tool output back into the map shape
// the Gemini function-response part requires.
func decodeToolPayload(content string) map[string]any {
	payload := make(map[string]any)
	if content == "" {
		return payload
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return map[string]any{"output": content}
	}
	return payload
}
