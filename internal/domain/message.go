// Package domain contains pure, dependency-free domain models and types
// for the benchmark harness.
package domain

// Conversation roles used throughout a scenario run.
const (
	// RoleUser marks a scripted customer message.
	RoleUser = "user"

	// RoleAssistant marks a response generated by the model under test.
	RoleAssistant = "assistant"

	// RoleTool marks a synthetic turn carrying a tool invocation result
	// back to the model.
	RoleTool = "tool"
)

// Message is a single entry in a conversation history.
// Tool-role messages carry the originating request id and tool name so
// the model can correlate results with its requests.
type Message struct {
	// Role is one of RoleUser, RoleAssistant, or RoleTool.
	Role string `json:"role"`

	// Content is the message text. For tool-role messages it holds the
	// JSON-encoded tool result payload.
	Content string `json:"content"`

	// ToolCalls lists the tool invocations an assistant message requested.
	// Absent on user and tool messages.
	ToolCalls []ToolCallRequest `json:"tool_calls,omitempty"`

	// ToolCallID links a tool-role message back to the request it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`

	// Name is the tool id for tool-role messages.
	Name string `json:"name,omitempty"`
}

// ToolCallRequest is a model's request to invoke one tool.
// The shape mirrors the function-calling convention used by the major
// provider APIs.
type ToolCallRequest struct {
	// ID is the provider-assigned identifier for this request.
	ID string `json:"id"`

	// Function names the tool and carries its arguments.
	Function FunctionCall `json:"function"`
}

// FunctionCall identifies the requested tool and its parameters.
type FunctionCall struct {
	// Name is the tool id being invoked.
	Name string `json:"name"`

	// Arguments is the JSON-encoded parameter object supplied by the model.
	Arguments string `json:"arguments"`
}

// Usage reports token consumption for a single model response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ResponseMetrics carries operational measurements for a single response.
type ResponseMetrics struct {
	// ResponseTimeMs is the wall-clock latency of the provider call in
	// milliseconds.
	ResponseTimeMs int64 `json:"response_time_ms"`
}

// ModelResponse is the structured result of one model generation.
// A nil ToolCalls slice and an empty one both mean "no calls requested";
// consumers must treat them identically.
type ModelResponse struct {
	// Content is the assistant's text reply.
	Content string `json:"content"`

	// ToolCalls lists any tool invocations the model requested alongside
	// (or instead of) its text reply.
	ToolCalls []ToolCallRequest `json:"tool_calls,omitempty"`

	// Usage reports token counts when the provider supplies them.
	Usage *Usage `json:"usage,omitempty"`

	// Metrics carries latency and related operational measurements.
	Metrics ResponseMetrics `json:"metrics"`
}

// Message converts the response into an assistant conversation message,
// preserving any tool-call requests so the history stays replayable.
func (r ModelResponse) Message() Message {
	msg := Message{Role: RoleAssistant, Content: r.Content}
	if len(r.ToolCalls) > 0 {
		msg.ToolCalls = append([]ToolCallRequest(nil), r.ToolCalls...)
	}
	return msg
}

// ModelUsageStats reports cumulative usage for one model client across a
// pipeline execution.
type ModelUsageStats struct {
	Model            string  `json:"model"`
	APICalls         int64   `json:"api_calls"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
	TotalCost        float64 `json:"total_cost"`
}
