// Command bizcon runs the business-conversation benchmark: it loads the
// pipeline configuration, builds the configured models, evaluators, and
// tools, executes the evaluation pipeline, and writes the report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olib-ai/bizcon/infrastructure/evaluators"
	"github.com/olib-ai/bizcon/infrastructure/middleware"
	"github.com/olib-ai/bizcon/infrastructure/models"
	"github.com/olib-ai/bizcon/infrastructure/reporting"
	"github.com/olib-ai/bizcon/infrastructure/scenarios"
	"github.com/olib-ai/bizcon/infrastructure/tools"
	"github.com/olib-ai/bizcon/internal/application"
	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

func main() {
	configPath := flag.String("config", "", "path to the pipeline YAML config (required)")
	outputDir := flag.String("output", "", "output directory (overrides config)")
	numRuns := flag.Int("runs", 0, "runs per model/scenario pair (overrides config)")
	parallel := flag.Bool("parallel", false, "run tasks on a worker pool (overrides config)")
	workers := flag.Int("workers", 0, "worker pool size (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "expose Prometheus metrics on this address (e.g. :9090)")
	flag.Parse()

	if *configPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := application.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *numRuns > 0 {
		cfg.NumRuns = *numRuns
	}
	if *parallel {
		cfg.Parallel = true
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	if err := run(context.Background(), cfg, *metricsAddr); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg application.Config, metricsAddr string) error {
	registry := buildRegistry()

	evaluatorSet, err := buildEvaluators(registry, cfg.Evaluators)
	if err != nil {
		return err
	}
	toolSet, err := buildTools(registry, cfg.Tools)
	if err != nil {
		return err
	}
	modelSet, err := buildModels(cfg.Models)
	if err != nil {
		return err
	}
	scenarioSet, err := loadScenarios(cfg.ScenarioPaths)
	if err != nil {
		return err
	}

	opts := []application.PipelineOption{application.WithNumRuns(cfg.NumRuns)}
	if cfg.Parallel {
		opts = append(opts, application.WithParallel(cfg.Workers))
	}
	if metricsAddr != "" {
		opts = append(opts, application.WithMetrics(middleware.NewPrometheusMetrics(nil)))
		go serveMetrics(metricsAddr)
	}

	pipeline := application.NewEvaluationPipeline(modelSet, scenarioSet, evaluatorSet, toolSet, opts...)

	log.Printf("running %d model(s) x %d scenario(s) x %d run(s)", len(modelSet), len(scenarioSet), cfg.NumRuns)
	result, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	if err := reporting.WriteReport(cfg.OutputDir, result); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	log.Printf("completed in %s, report written to %s", time.Duration(result.DurationMs)*time.Millisecond, cfg.OutputDir)
	for _, model := range sortedKeys(result.Summary.OverallScores) {
		log.Printf("  %-30s %.2f / 10", model, result.Summary.OverallScores[model])
	}
	return nil
}

// buildRegistry binds every shipped evaluator and tool factory.
func buildRegistry() *application.Registry {
	registry := application.NewRegistry()

	registry.RegisterEvaluator("response_quality", asEvaluator(evaluators.NewResponseQualityEvaluator))
	registry.RegisterEvaluator("communication_style", asEvaluator(evaluators.NewCommunicationStyleEvaluator))
	registry.RegisterEvaluator("tool_usage", asEvaluator(evaluators.NewToolUsageEvaluator))
	registry.RegisterEvaluator("business_value", asEvaluator(evaluators.NewBusinessValueEvaluator))
	registry.RegisterEvaluator("performance", asEvaluator(evaluators.NewPerformanceEvaluator))

	toolFactories := map[string]func(...tools.Option) (*tools.SimulatedTool, error){
		"knowledge_base":     tools.NewKnowledgeBase,
		"scheduler":          tools.NewScheduler,
		"product_catalog":    tools.NewProductCatalog,
		"customer_history":   tools.NewCustomerHistory,
		"pricing_calculator": tools.NewPricingCalculator,
		"order_management":   tools.NewOrderManagement,
		"support_ticket":     tools.NewSupportTicket,
		"document_retrieval": tools.NewDocumentRetrieval,
	}
	for id, factory := range toolFactories {
		registry.RegisterTool(id, func(errorRate float64) (ports.Tool, error) {
			tool, err := factory(tools.WithErrorRate(errorRate))
			if err != nil {
				return nil, err
			}
			return tool, nil
		})
	}

	return registry
}

// asEvaluator adapts a concrete evaluator constructor to the registry's
// interface-returning factory signature.
func asEvaluator[E ports.Evaluator](factory func(weight float64) (E, error)) application.EvaluatorFactory {
	return func(weight float64) (ports.Evaluator, error) {
		evaluator, err := factory(weight)
		if err != nil {
			return nil, err
		}
		return evaluator, nil
	}
}

func buildEvaluators(registry *application.Registry, weights map[string]float64) ([]ports.Evaluator, error) {
	out := make([]ports.Evaluator, 0, len(weights))
	for _, name := range sortedKeys(weights) {
		evaluator, err := registry.BuildEvaluator(name, weights[name])
		if err != nil {
			return nil, err
		}
		out = append(out, evaluator)
	}
	return out, nil
}

func buildTools(registry *application.Registry, errorRates map[string]float64) (map[string]ports.Tool, error) {
	out := make(map[string]ports.Tool, len(errorRates))
	for id, errorRate := range errorRates {
		tool, err := registry.BuildTool(id, errorRate)
		if err != nil {
			return nil, err
		}
		out[id] = tool
	}
	return out, nil
}

func buildModels(configs []application.ModelConfig) ([]ports.ModelClient, error) {
	out := make([]ports.ModelClient, 0, len(configs))
	for _, mc := range configs {
		client, err := models.New(models.Config{
			Provider:          mc.Provider,
			Model:             mc.Model,
			Name:              mc.Name,
			APIKey:            mc.APIKey,
			BaseURL:           mc.BaseURL,
			Temperature:       mc.Temperature,
			MaxTokens:         mc.MaxTokens,
			Timeout:           time.Duration(mc.TimeoutSeconds) * time.Second,
			RequestsPerMinute: mc.RequestsPerMinute,
		})
		if err != nil {
			return nil, fmt.Errorf("build model %s: %w", mc.Model, err)
		}
		out = append(out, models.WithTracing(client))
	}
	return out, nil
}

func loadScenarios(paths []string) ([]*domain.Scenario, error) {
	if len(paths) == 0 {
		return scenarios.Builtin(), nil
	}
	return scenarios.LoadPaths(paths)
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("metrics server: %v", err)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
