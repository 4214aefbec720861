package ports

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors shared across the boundary. Wrap these with
// fmt.Errorf("...: %w", err) to add context while keeping errors.Is
// checks working.
var (
	// ErrEvaluatorNotFound indicates a requested evaluator is not
	// registered.
	ErrEvaluatorNotFound = errors.New("evaluator not found")

	// ErrToolNotFound indicates a requested tool is not registered.
	// This is the harness-side error; the model-facing business error
	// is domain.ErrCodeToolNotFound.
	ErrToolNotFound = errors.New("tool not found")

	// ErrModelNotFound indicates a requested model client is not
	// registered.
	ErrModelNotFound = errors.New("model not found")

	// ErrScenarioNotFound indicates a requested scenario is not
	// registered.
	ErrScenarioNotFound = errors.New("scenario not found")

	// ErrInvalidInput indicates an evaluation input that violates the
	// evaluator's contract.
	ErrInvalidInput = errors.New("invalid evaluation input")

	// ErrRateLimited indicates a provider rejected a request for rate
	// limiting; callers may retry after a delay.
	ErrRateLimited = errors.New("rate limited")

	// ErrProviderUnavailable indicates a provider-side outage.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// ModelError wraps a provider failure with enough context to decide
// whether the pipeline should retry.
type ModelError struct {
	// Model is the model identifier the request targeted.
	Model string

	// Operation names the failed call, e.g. "generate_response".
	Operation string

	// Err is the underlying provider error.
	Err error

	// RetryAfter is the provider-suggested backoff, zero when unknown.
	RetryAfter time.Duration
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %s: %s: %v", e.Model, e.Operation, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// IsRetryable reports whether the failure is transient.
func (e *ModelError) IsRetryable() bool {
	return errors.Is(e.Err, ErrRateLimited) || errors.Is(e.Err, ErrProviderUnavailable)
}
