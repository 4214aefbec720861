// Package application orchestrates benchmark execution: the ScenarioRunner
// drives one model through one scripted conversation, the
// EvaluationPipeline fans runners out across the model/scenario/run
// cross-product, and explicit registries map configured names to evaluator
// and tool factories.
package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

// ScenarioRunner executes a single scenario against a single model,
// dispatching tool calls and applying every evaluator to every turn.
// Runners are cheap; the pipeline constructs a fresh one per task.
type ScenarioRunner struct {
	model      ports.ModelClient
	evaluators []ports.Evaluator
	tools      map[string]ports.Tool
	tracer     trace.Tracer
}

// NewScenarioRunner builds a runner over shared evaluator and tool
// instances.
func NewScenarioRunner(model ports.ModelClient, evaluators []ports.Evaluator, tools map[string]ports.Tool) *ScenarioRunner {
	return &ScenarioRunner{
		model:      model,
		evaluators: evaluators,
		tools:      tools,
		tracer:     otel.Tracer("bizcon.runner"),
	}
}

// Run drives the conversation to completion and aggregates category and
// overall scores. Tool failures are absorbed into the conversation as
// data; model or evaluator errors abort the run.
func (r *ScenarioRunner) Run(ctx context.Context, scenario *domain.Scenario, runNum int) (domain.RunResult, error) {
	ctx, span := r.tracer.Start(ctx, "runner.run",
		trace.WithAttributes(
			attribute.String("model.name", r.model.Name()),
			attribute.String("scenario.id", scenario.ID()),
			attribute.Int("run.num", runNum),
		))
	defer span.End()

	start := time.Now()
	definitions := r.toolDefinitions(scenario)

	userMessage := scenario.InitialMessage()
	history := []domain.Message{{Role: domain.RoleUser, Content: userMessage}}

	var turns []domain.TurnRecord
	for turn := 0; turn < scenario.TurnCount(); {
		response, err := r.model.GenerateResponse(ctx, history, definitions)
		if err != nil {
			return domain.RunResult{}, fmt.Errorf("generate response for turn %d: %w", turn, err)
		}
		history = append(history, response.Message())

		records, toolMessages, err := r.resolveToolCalls(response.ToolCalls)
		if err != nil {
			return domain.RunResult{}, fmt.Errorf("resolve tool calls for turn %d: %w", turn, err)
		}
		history = append(history, toolMessages...)

		evaluations := make(map[string]domain.EvaluationResult, len(r.evaluators))
		for _, evaluator := range r.evaluators {
			result, err := evaluator.Evaluate(ctx, ports.EvaluationInput{
				Response:  response,
				Scenario:  scenario,
				TurnIndex: turn,
				History:   history,
				ToolCalls: records,
			})
			if err != nil {
				return domain.RunResult{}, fmt.Errorf("evaluator %s on turn %d: %w", evaluator.Name(), turn, err)
			}
			evaluations[evaluator.Name()] = result
		}

		turns = append(turns, domain.TurnRecord{
			TurnIndex:   turn,
			UserMessage: userMessage,
			Response:    response,
			ToolCalls:   records,
			Evaluations: evaluations,
		})

		followUp, ok := scenario.FollowUpMessage(turn)
		if !ok {
			break
		}
		userMessage = followUp
		history = append(history, domain.Message{Role: domain.RoleUser, Content: followUp})
		turn++
	}

	categoryScores := r.categoryScores(turns)
	overall := r.overallScore(categoryScores)
	span.SetAttributes(attribute.Float64("run.overall_score", overall))

	return domain.RunResult{
		RunID:          uuid.NewString(),
		ModelID:        r.model.Name(),
		ScenarioID:     scenario.ID(),
		RunNum:         runNum,
		Scenario:       scenario.Meta(),
		Turns:          turns,
		CategoryScores: categoryScores,
		OverallScore:   overall,
		DurationMs:     time.Since(start).Milliseconds(),
	}, nil
}

// toolDefinitions collects definitions for the scenario's required tools
// that are actually registered. Unknown ids are simply not offered to the
// model; calling one anyway surfaces as a ToolNotFound result.
func (r *ScenarioRunner) toolDefinitions(scenario *domain.Scenario) []domain.ToolDefinition {
	var definitions []domain.ToolDefinition
	for _, toolID := range scenario.Tools() {
		if tool, ok := r.tools[toolID]; ok {
			definitions = append(definitions, tool.Definition())
		}
	}
	return definitions
}

// resolveToolCalls dispatches each requested call and produces both the
// call records for evaluation and the tool-role messages appended to the
// conversation.
func (r *ScenarioRunner) resolveToolCalls(calls []domain.ToolCallRequest) ([]domain.ToolCallRecord, []domain.Message, error) {
	var records []domain.ToolCallRecord
	var messages []domain.Message

	for _, call := range calls {
		toolID := call.Function.Name

		parameters := make(map[string]any)
		if args := call.Function.Arguments; args != "" {
			if err := json.Unmarshal([]byte(args), &parameters); err != nil {
				return nil, nil, fmt.Errorf("tool %s: malformed arguments: %w", toolID, err)
			}
		}

		var result domain.ToolResult
		if tool, ok := r.tools[toolID]; ok {
			result = tool.Call(parameters)
		} else {
			result = domain.ToolResult{
				Error:   domain.ErrCodeToolNotFound,
				Message: fmt.Sprintf("Tool '%s' is not available", toolID),
				Status:  domain.StatusError,
			}
		}

		records = append(records, domain.ToolCallRecord{
			ToolID:     toolID,
			Parameters: parameters,
			Result:     result,
		})

		payload, err := json.Marshal(result)
		if err != nil {
			return nil, nil, fmt.Errorf("tool %s: serialize result: %w", toolID, err)
		}
		messages = append(messages, domain.Message{
			Role:       domain.RoleTool,
			Content:    string(payload),
			ToolCallID: call.ID,
			Name:       toolID,
		})
	}

	return records, messages, nil
}

// categoryScores averages each evaluator's score across all turns.
func (r *ScenarioRunner) categoryScores(turns []domain.TurnRecord) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, turn := range turns {
		for name, evaluation := range turn.Evaluations {
			sums[name] += evaluation.Score
			counts[name]++
		}
	}

	scores := make(map[string]float64, len(sums))
	for name, sum := range sums {
		scores[name] = sum / float64(counts[name])
	}
	return scores
}

// overallScore computes the weighted average of category scores, skipping
// evaluators whose category never appeared.
func (r *ScenarioRunner) overallScore(categoryScores map[string]float64) float64 {
	var totalScore, totalWeight float64
	for _, evaluator := range r.evaluators {
		score, ok := categoryScores[evaluator.Name()]
		if !ok {
			continue
		}
		totalScore += score * evaluator.Weight()
		totalWeight += evaluator.Weight()
	}
	if totalWeight == 0 {
		return 0
	}
	return totalScore / totalWeight
}
