// Package tools provides the simulated business systems the model under
// test may invoke during a scenario: knowledge base, scheduler, product
// catalog, customer history, pricing calculator, order management,
// support tickets, and document retrieval.
//
// Every tool validates required parameters, injects rate-controlled
// random failures, and keeps atomic usage counters so statistics stay
// exact under parallel pipeline execution. Business failures are always
// returned as structured result payloads, never as Go errors.
package tools

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"

	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

var _ ports.Tool = (*SimulatedTool)(nil)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// ErrEmptyToolID is returned when constructing a tool without an id.
var ErrEmptyToolID = errors.New("tool id cannot be empty")

// randomFailures are the rate-controlled fault payloads a tool may
// inject on any call, independent of parameter validity.
var randomFailures = []domain.ToolResult{
	{Error: "ServiceUnavailable", Message: "Service temporarily unavailable. Please try again later.", Status: domain.StatusError},
	{Error: "DatabaseTimeout", Message: "Database query timed out. Please try with more specific parameters.", Status: domain.StatusError},
	{Error: "RateLimitExceeded", Message: "API rate limit exceeded. Please wait before making more requests.", Status: domain.StatusError},
	{Error: "PermissionDenied", Message: "Insufficient permissions to access this resource.", Status: domain.StatusError},
	{Error: "InvalidData", Message: "The provided data is invalid or in an incorrect format.", Status: domain.StatusError},
}

// BusinessError is a tool-implementation failure carried back to the
// model as data. Code becomes the result's error field.
type BusinessError struct {
	Code    string
	Message string
}

func (e *BusinessError) Error() string { return e.Code + ": " + e.Message }

// ExecFunc is a tool's business logic. It receives validated parameters
// and returns the success payload, or an error which is converted into
// a business-error result.
type ExecFunc func(params map[string]any) (any, error)

// Config describes a simulated tool.
type Config struct {
	ID          string                          `validate:"required"`
	Name        string                          `validate:"required"`
	Description string                          `validate:"required"`
	Parameters  map[string]domain.ParameterSpec `validate:"required"`
	ErrorRate   float64                         `validate:"min=0,max=1"`
}

// SimulatedTool implements ports.Tool around an ExecFunc. It is safe
// for concurrent use: usage counters are atomic and the failure PRNG is
// mutex guarded.
type SimulatedTool struct {
	id          string
	name        string
	description string
	params      map[string]domain.ParameterSpec
	errorRate   float64
	exec        ExecFunc

	mu  sync.Mutex
	rng *rand.Rand

	callCount  atomic.Int64
	errorCount atomic.Int64
}

// Option customizes a tool at construction time.
type Option func(*SimulatedTool)

// WithErrorRate overrides the tool's failure-injection probability.
func WithErrorRate(rate float64) Option {
	return func(t *SimulatedTool) { t.errorRate = rate }
}

// WithSeed makes the failure PRNG deterministic for tests.
func WithSeed(seed int64) Option {
	return func(t *SimulatedTool) { t.rng = rand.New(rand.NewSource(seed)) }
}

// NewSimulatedTool creates a tool from its configuration and business
// logic. Returns an error when the configuration is invalid.
func NewSimulatedTool(cfg Config, exec ExecFunc, opts ...Option) (*SimulatedTool, error) {
	if cfg.ID == "" {
		return nil, ErrEmptyToolID
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("tool %s: configuration validation failed: %w", cfg.ID, err)
	}
	if exec == nil {
		return nil, fmt.Errorf("tool %s: exec function is required", cfg.ID)
	}

	t := &SimulatedTool{
		id:          cfg.ID,
		name:        cfg.Name,
		description: cfg.Description,
		params:      cfg.Parameters,
		errorRate:   cfg.ErrorRate,
		exec:        exec,
		rng:         rand.New(rand.NewSource(rand.Int63())),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// ID returns the tool's stable identifier.
func (t *SimulatedTool) ID() string { return t.id }

// Definition returns the function-calling description of the tool.
func (t *SimulatedTool) Definition() domain.ToolDefinition {
	required := make([]string, 0, len(t.params))
	properties := make(map[string]domain.ParameterSpec, len(t.params))
	for name, spec := range t.params {
		properties[name] = spec
		if spec.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)

	return domain.ToolDefinition{
		Type: "function",
		Function: domain.FunctionDefinition{
			Name:        t.id,
			Description: t.description,
			Parameters: domain.ParameterObject{
				Type:       "object",
				Properties: properties,
				Required:   required,
			},
		},
	}
}

// Call executes the tool. Missing required parameters, injected
// failures, and business errors from the implementation all surface as
// error-status results.
func (t *SimulatedTool) Call(params map[string]any) domain.ToolResult {
	t.callCount.Add(1)

	var missing []string
	for name, spec := range t.params {
		if !spec.Required {
			continue
		}
		if _, ok := params[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		t.errorCount.Add(1)
		return domain.ToolResult{
			Error:   domain.ErrCodeMissingParameters,
			Message: "Missing required parameters: " + strings.Join(missing, ", "),
			Status:  domain.StatusError,
		}
	}

	if t.errorRate > 0 && t.roll() < t.errorRate {
		t.errorCount.Add(1)
		return t.randomFailure()
	}

	result, err := t.exec(params)
	if err != nil {
		t.errorCount.Add(1)
		var bizErr *BusinessError
		if errors.As(err, &bizErr) {
			return domain.ToolResult{Error: bizErr.Code, Message: bizErr.Message, Status: domain.StatusError}
		}
		return domain.ToolResult{Error: "ToolError", Message: err.Error(), Status: domain.StatusError}
	}
	return domain.ToolResult{Result: result, Status: domain.StatusSuccess}
}

// UsageStats reports cumulative call counters.
func (t *SimulatedTool) UsageStats() domain.ToolUsageStats {
	calls := t.callCount.Load()
	errs := t.errorCount.Load()
	rate := 1.0
	if calls > 0 {
		rate = float64(calls-errs) / float64(calls)
	}
	return domain.ToolUsageStats{
		ToolID:      t.id,
		Calls:       calls,
		Errors:      errs,
		SuccessRate: rate,
	}
}

// ResetStats zeroes the call counters.
func (t *SimulatedTool) ResetStats() {
	t.callCount.Store(0)
	t.errorCount.Store(0)
}

func (t *SimulatedTool) roll() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rng.Float64()
}

func (t *SimulatedTool) randomFailure() domain.ToolResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return randomFailures[t.rng.Intn(len(randomFailures))]
}
