// Package ports defines the boundary interfaces between the benchmark
// core and its infrastructure: evaluators, simulated tools, model
// clients, and observability hooks. The application layer depends on
// these interfaces only; concrete implementations live under
// infrastructure/.
package ports

import (
	"context"

	"github.com/olib-ai/bizcon/internal/domain"
)

// EvaluationInput carries everything an evaluator may inspect when
// scoring one conversation turn.
type EvaluationInput struct {
	// Response is the model's reply for the turn being scored.
	Response domain.ModelResponse

	// Scenario is the scenario being played, including ground truth.
	Scenario *domain.Scenario

	// TurnIndex is the zero-based index of the turn.
	TurnIndex int

	// History holds the conversation up to but excluding Response.
	History []domain.Message

	// ToolCalls are the resolved tool invocations made this turn.
	ToolCalls []domain.ToolCallRecord
}

// Evaluator scores one dimension of a model response. Implementations
// must be safe for concurrent use; Evaluate is called once per turn per
// run, potentially from many goroutines.
type Evaluator interface {
	// Name returns the evaluator's stable identifier, e.g.
	// "response_quality".
	Name() string

	// Weight returns the evaluator's contribution to the overall score.
	Weight() float64

	// Metadata describes the evaluator and its scoring envelope.
	Metadata() domain.EvaluatorMetadata

	// Evaluate scores one turn. It returns an error only for harness
	// faults; scoring shortfalls are expressed through the result.
	Evaluate(ctx context.Context, input EvaluationInput) (domain.EvaluationResult, error)
}

// Tool is a simulated business system the model under test may invoke.
// Implementations must be safe for concurrent use.
type Tool interface {
	// ID returns the tool's stable identifier.
	ID() string

	// Definition returns the provider-facing tool description.
	Definition() domain.ToolDefinition

	// Call executes the tool with the given parameters. Business
	// failures (missing parameters, injected faults) are encoded in the
	// returned ToolResult, never as Go errors.
	Call(params map[string]any) domain.ToolResult

	// UsageStats reports cumulative call counters.
	UsageStats() domain.ToolUsageStats

	// ResetStats zeroes the call counters.
	ResetStats()
}

// ModelClient generates responses from one model under test.
type ModelClient interface {
	// Name returns the client's identifier as used in results.
	Name() string

	// GenerateResponse produces the model's next message given the
	// conversation so far and the tools available to it.
	GenerateResponse(ctx context.Context, messages []domain.Message, tools []domain.ToolDefinition) (domain.ModelResponse, error)

	// UsageStats reports cumulative API usage counters.
	UsageStats() domain.ModelUsageStats

	// ResetStats zeroes the usage counters.
	ResetStats()
}

// MetricsCollector receives operational metrics from the pipeline.
type MetricsCollector interface {
	// RecordLatency records the duration of an operation in seconds.
	RecordLatency(ctx context.Context, operation string, seconds float64, labels map[string]string)

	// RecordCounter increments a named counter.
	RecordCounter(ctx context.Context, name string, value float64, labels map[string]string)

	// RecordGauge sets a named gauge.
	RecordGauge(ctx context.Context, name string, value float64, labels map[string]string)

	// RecordHistogram records a value in a named histogram.
	RecordHistogram(ctx context.Context, name string, value float64, labels map[string]string)
}
