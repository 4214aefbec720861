package domain

// Tool call result statuses.
const (
	// StatusSuccess marks a tool invocation that produced a result payload.
	StatusSuccess = "success"

	// StatusError marks a tool invocation that produced a business error.
	StatusError = "error"
)

// Well-known business error codes surfaced in ToolResult.Error.
// These are data, not Go errors: they flow back to the model under test
// as part of the conversation.
const (
	// ErrCodeToolNotFound is synthesized by the runner when the model
	// requests a tool id that is not registered for the scenario.
	ErrCodeToolNotFound = "ToolNotFound"

	// ErrCodeMissingParameters is returned when required parameters are
	// absent from a tool call.
	ErrCodeMissingParameters = "MissingParameters"

	// ErrCodeInvalidParameters is returned when the model supplies
	// arguments that cannot be decoded as a parameter object.
	ErrCodeInvalidParameters = "InvalidParameters"
)

// ParameterSpec describes one parameter accepted by a tool.
type ParameterSpec struct {
	// Type is the JSON-schema type name (string, integer, boolean, array).
	Type string `json:"type" yaml:"type"`

	// Description documents the parameter for the model.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Required marks parameters that must be present on every call.
	Required bool `json:"-" yaml:"required,omitempty"`

	// Items describes the element type for array parameters.
	Items map[string]string `json:"items,omitempty" yaml:"items,omitempty"`
}

// ParameterObject is the JSON-schema-like object describing a tool's
// parameters in its published definition.
type ParameterObject struct {
	Type       string                   `json:"type"`
	Properties map[string]ParameterSpec `json:"properties"`
	Required   []string                 `json:"required"`
}

// FunctionDefinition describes a tool in the function-calling convention.
type FunctionDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  ParameterObject `json:"parameters"`
}

// ToolDefinition is the provider-facing description of one tool.
// Type is always "function".
type ToolDefinition struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// ToolResult is the structured outcome of one tool invocation.
// Successful calls carry a payload in Result; failed calls carry an
// error code and message. Both shapes are injected into the conversation
// identically so the model must cope with either.
type ToolResult struct {
	// Result holds the tool's payload on success.
	Result any `json:"result,omitempty"`

	// Error is a machine-readable business error code on failure.
	Error string `json:"error,omitempty"`

	// Message is a human-readable elaboration of Error.
	Message string `json:"message,omitempty"`

	// Status is StatusSuccess or StatusError.
	Status string `json:"status"`
}

// OK reports whether the invocation succeeded.
func (r ToolResult) OK() bool { return r.Status == StatusSuccess }

// ToolCallRecord captures one resolved tool invocation during a turn.
type ToolCallRecord struct {
	// ToolID is the tool the model requested.
	ToolID string `json:"tool_id"`

	// Parameters holds the decoded arguments the model supplied.
	Parameters map[string]any `json:"parameters"`

	// Result is the structured outcome, success or business error.
	Result ToolResult `json:"result"`
}

// ExpectedToolCall is a ground-truth expectation of one tool invocation,
// used only for scoring, never for enforcement.
type ExpectedToolCall struct {
	ToolID     string         `json:"tool_id" yaml:"tool_id"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// ToolUsageStats reports cumulative usage counters for one tool.
type ToolUsageStats struct {
	ToolID      string  `json:"tool_id"`
	Calls       int64   `json:"calls"`
	Errors      int64   `json:"errors"`
	SuccessRate float64 `json:"success_rate"`
}
