package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

const defaultWorkers = 4

// EvaluationPipeline fans scenario runs out across every configured model,
// scenario, and repetition, then aggregates the per-run results into a
// PipelineResult with summary statistics.
type EvaluationPipeline struct {
	models     []ports.ModelClient
	scenarios  []*domain.Scenario
	evaluators []ports.Evaluator
	tools      map[string]ports.Tool

	numRuns  int
	parallel bool
	workers  int
	metrics  ports.MetricsCollector
	tracer   trace.Tracer
}

// PipelineOption customizes pipeline construction.
type PipelineOption func(*EvaluationPipeline)

// WithNumRuns repeats every (model, scenario) pair n times. Values below
// one are ignored.
func WithNumRuns(n int) PipelineOption {
	return func(p *EvaluationPipeline) {
		if n >= 1 {
			p.numRuns = n
		}
	}
}

// WithParallel executes tasks on a bounded worker pool of the given size.
// A non-positive size falls back to the default pool size.
func WithParallel(workers int) PipelineOption {
	return func(p *EvaluationPipeline) {
		p.parallel = true
		if workers > 0 {
			p.workers = workers
		}
	}
}

// WithMetrics records run counters, duration histograms, and category
// score histograms on the given collector.
func WithMetrics(metrics ports.MetricsCollector) PipelineOption {
	return func(p *EvaluationPipeline) {
		p.metrics = metrics
	}
}

// NewEvaluationPipeline builds a pipeline over shared evaluator and tool
// instances. Every run uses a fresh ScenarioRunner.
func NewEvaluationPipeline(models []ports.ModelClient, scenarios []*domain.Scenario, evaluators []ports.Evaluator, tools map[string]ports.Tool, opts ...PipelineOption) *EvaluationPipeline {
	p := &EvaluationPipeline{
		models:     models,
		scenarios:  scenarios,
		evaluators: evaluators,
		tools:      tools,
		numRuns:    1,
		workers:    defaultWorkers,
		tracer:     otel.Tracer("bizcon.pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type evaluationTask struct {
	model    ports.ModelClient
	scenario *domain.Scenario
	runNum   int
}

// Run executes the full cross-product. Under parallel execution the first
// failing task cancels the pool and Run returns its error; there is no
// partial-result salvage.
func (p *EvaluationPipeline) Run(ctx context.Context) (domain.PipelineResult, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(
			attribute.Int("models.count", len(p.models)),
			attribute.Int("scenarios.count", len(p.scenarios)),
			attribute.Int("num_runs", p.numRuns),
		))
	defer span.End()

	start := time.Now()
	p.resetStats()

	var tasks []evaluationTask
	for _, scenario := range p.scenarios {
		for _, model := range p.models {
			for runNum := 0; runNum < p.numRuns; runNum++ {
				tasks = append(tasks, evaluationTask{model: model, scenario: scenario, runNum: runNum})
			}
		}
	}

	results := make([]domain.RunResult, len(tasks))
	if p.parallel && len(tasks) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.workers)
		for i, task := range tasks {
			g.Go(func() error {
				result, err := p.runTask(gctx, task)
				if err != nil {
					return err
				}
				results[i] = result
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return domain.PipelineResult{}, err
		}
	} else {
		for i, task := range tasks {
			result, err := p.runTask(ctx, task)
			if err != nil {
				return domain.PipelineResult{}, err
			}
			results[i] = result
		}
	}

	grouped := groupResults(results)
	return domain.PipelineResult{
		Timestamp:  start.UTC().Format(time.RFC3339),
		Models:     p.modelStats(),
		Scenarios:  p.scenarioMetadata(),
		Evaluators: p.evaluatorMetadata(),
		Tools:      p.toolStats(),
		NumRuns:    p.numRuns,
		Results:    grouped,
		Summary:    summarize(grouped),
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

func (p *EvaluationPipeline) runTask(ctx context.Context, task evaluationTask) (domain.RunResult, error) {
	runner := NewScenarioRunner(task.model, p.evaluators, p.tools)
	result, err := runner.Run(ctx, task.scenario, task.runNum)
	if err != nil {
		return domain.RunResult{}, err
	}
	p.recordMetrics(ctx, result)
	return result, nil
}

func (p *EvaluationPipeline) recordMetrics(ctx context.Context, result domain.RunResult) {
	if p.metrics == nil {
		return
	}
	labels := map[string]string{
		"model":    result.ModelID,
		"scenario": result.ScenarioID,
	}
	p.metrics.RecordCounter(ctx, "runs_total", 1, labels)
	p.metrics.RecordHistogram(ctx, "run_duration_ms", float64(result.DurationMs), labels)
	p.metrics.RecordHistogram(ctx, "run_overall_score", result.OverallScore, labels)
	for category, score := range result.CategoryScores {
		p.metrics.RecordHistogram(ctx, "run_category_score", score, map[string]string{
			"model":    result.ModelID,
			"scenario": result.ScenarioID,
			"category": category,
		})
	}
}

// resetStats clears model and tool usage counters so per-pipeline-run
// statistics stay comparable across pipeline invocations.
func (p *EvaluationPipeline) resetStats() {
	for _, model := range p.models {
		model.ResetStats()
	}
	for _, tool := range p.tools {
		tool.ResetStats()
	}
}

func (p *EvaluationPipeline) modelStats() []domain.ModelUsageStats {
	stats := make([]domain.ModelUsageStats, 0, len(p.models))
	for _, model := range p.models {
		stats = append(stats, model.UsageStats())
	}
	return stats
}

func (p *EvaluationPipeline) toolStats() []domain.ToolUsageStats {
	stats := make([]domain.ToolUsageStats, 0, len(p.tools))
	for _, tool := range p.tools {
		stats = append(stats, tool.UsageStats())
	}
	return stats
}

func (p *EvaluationPipeline) scenarioMetadata() []domain.ScenarioMetadata {
	meta := make([]domain.ScenarioMetadata, 0, len(p.scenarios))
	for _, scenario := range p.scenarios {
		meta = append(meta, scenario.Meta())
	}
	return meta
}

func (p *EvaluationPipeline) evaluatorMetadata() []domain.EvaluatorMetadata {
	meta := make([]domain.EvaluatorMetadata, 0, len(p.evaluators))
	for _, evaluator := range p.evaluators {
		meta = append(meta, evaluator.Metadata())
	}
	return meta
}

func groupResults(results []domain.RunResult) map[string]map[string][]domain.RunResult {
	grouped := make(map[string]map[string][]domain.RunResult)
	for _, result := range results {
		byScenario, ok := grouped[result.ModelID]
		if !ok {
			byScenario = make(map[string][]domain.RunResult)
			grouped[result.ModelID] = byScenario
		}
		byScenario[result.ScenarioID] = append(byScenario[result.ScenarioID], result)
	}
	return grouped
}

// summarize reduces grouped results to per-model overall, per-category,
// and per-scenario averages.
func summarize(grouped map[string]map[string][]domain.RunResult) domain.Summary {
	summary := domain.Summary{
		OverallScores:  make(map[string]float64),
		CategoryScores: make(map[string]map[string]float64),
		ScenarioScores: make(map[string]map[string]float64),
	}

	for modelID, byScenario := range grouped {
		var allScores []float64
		categorySums := make(map[string]float64)
		categoryCounts := make(map[string]int)
		scenarioScores := make(map[string]float64)

		for scenarioID, runs := range byScenario {
			var scenarioSum float64
			for _, run := range runs {
				allScores = append(allScores, run.OverallScore)
				scenarioSum += run.OverallScore
				for category, score := range run.CategoryScores {
					categorySums[category] += score
					categoryCounts[category]++
				}
			}
			scenarioScores[scenarioID] = scenarioSum / float64(len(runs))
		}

		summary.OverallScores[modelID] = mean(allScores)
		categoryAverages := make(map[string]float64, len(categorySums))
		for category, sum := range categorySums {
			categoryAverages[category] = sum / float64(categoryCounts[category])
		}
		summary.CategoryScores[modelID] = categoryAverages
		summary.ScenarioScores[modelID] = scenarioScores
	}

	return summary
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
