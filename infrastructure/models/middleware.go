package models

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

// rateLimitedClient throttles an underlying client so the harness stays
// inside the provider's request quota during parallel runs.
type rateLimitedClient struct {
	ports.ModelClient
	limiter *rate.Limiter
}

var _ ports.ModelClient = (*rateLimitedClient)(nil)

// WithRateLimit wraps client so that requests are spaced to at most
// requestsPerMinute, with a burst of one.
func WithRateLimit(client ports.ModelClient, requestsPerMinute float64) ports.ModelClient {
	return &rateLimitedClient{
		ModelClient: client,
		limiter:     rate.NewLimiter(rate.Limit(requestsPerMinute/60.0), 1),
	}
}

func (c *rateLimitedClient) GenerateResponse(ctx context.Context, messages []domain.Message, tools []domain.ToolDefinition) (domain.ModelResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.ModelResponse{}, &ports.ModelError{
			Model:     c.Name(),
			Operation: "rate_limit_wait",
			Err:       err,
		}
	}
	return c.ModelClient.GenerateResponse(ctx, messages, tools)
}

// tracedClient records a span per generation request.
type tracedClient struct {
	ports.ModelClient
	tracer trace.Tracer
}

var _ ports.ModelClient = (*tracedClient)(nil)

// WithTracing wraps client so each request is recorded as an OpenTelemetry
// span carrying model, message, and token attributes.
func WithTracing(client ports.ModelClient) ports.ModelClient {
	return &tracedClient{
		ModelClient: client,
		tracer:      otel.Tracer("bizcon.models"),
	}
}

func (c *tracedClient) GenerateResponse(ctx context.Context, messages []domain.Message, tools []domain.ToolDefinition) (domain.ModelResponse, error) {
	ctx, span := c.tracer.Start(ctx, "model.generate_response",
		trace.WithAttributes(
			attribute.String("model.name", c.Name()),
			attribute.Int("messages.count", len(messages)),
			attribute.Int("tools.count", len(tools)),
		))
	defer span.End()

	start := time.Now()
	resp, err := c.ModelClient.GenerateResponse(ctx, messages, tools)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return resp, err
	}

	span.SetAttributes(
		attribute.Int64("response.latency_ms", time.Since(start).Milliseconds()),
		attribute.Int("response.tool_calls", len(resp.ToolCalls)),
	)
	if resp.Usage != nil {
		span.SetAttributes(
			attribute.Int("usage.prompt_tokens", resp.Usage.PromptTokens),
			attribute.Int("usage.completion_tokens", resp.Usage.CompletionTokens),
		)
	}
	return resp, nil
}

// wrapProviderError normalizes a provider failure into a ports.ModelError,
// classifying rate-limit and availability failures so callers can decide
// on retry.
func wrapProviderError(model, operation string, statusCode int, retryAfter time.Duration, err error) error {
	wrapped := err
	switch {
	case statusCode == 429:
		wrapped = fmt.Errorf("%w: %w", ports.ErrRateLimited, err)
	case statusCode >= 500:
		wrapped = fmt.Errorf("%w: %w", ports.ErrProviderUnavailable, err)
	}
	return &ports.ModelError{
		Model:      model,
		Operation:  operation,
		Err:        wrapped,
		RetryAfter: retryAfter,
	}
}
