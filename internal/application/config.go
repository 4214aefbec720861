package application

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// ModelConfig describes one model under test. The API key supports
// ${ENV_VAR} expansion so config files can stay secret-free.
type ModelConfig struct {
	Provider          string   `yaml:"provider" validate:"required"`
	Model             string   `yaml:"model" validate:"required"`
	Name              string   `yaml:"name"`
	APIKey            string   `yaml:"api_key" validate:"required"`
	BaseURL           string   `yaml:"base_url"`
	Temperature       *float64 `yaml:"temperature" validate:"omitempty,min=0,max=2"`
	MaxTokens         int      `yaml:"max_tokens" validate:"min=0"`
	TimeoutSeconds    int      `yaml:"timeout_seconds" validate:"min=0"`
	RequestsPerMinute float64  `yaml:"requests_per_minute" validate:"min=0"`
}

// Config is the YAML pipeline configuration: which models to benchmark,
// which evaluators and tools to build, and how to execute the run.
type Config struct {
	// Models lists the clients to benchmark.
	Models []ModelConfig `yaml:"models" validate:"min=1,dive"`
	// Evaluators maps evaluator name to category weight.
	Evaluators map[string]float64 `yaml:"evaluators" validate:"min=1,dive,min=0,max=1"`
	// Tools maps tool id to injected error rate.
	Tools map[string]float64 `yaml:"tools" validate:"dive,min=0,max=1"`
	// ScenarioPaths lists YAML scenario files or directories to load in
	// addition to the built-in scenarios.
	ScenarioPaths []string `yaml:"scenario_paths"`
	// NumRuns repeats each (model, scenario) pair for consistency checks.
	NumRuns int `yaml:"num_runs" validate:"min=1"`
	// Parallel executes tasks on a bounded worker pool.
	Parallel bool `yaml:"parallel"`
	// Workers bounds the pool when Parallel is set. Zero uses the default.
	Workers int `yaml:"workers" validate:"min=0"`
	// OutputDir receives results.json and the CSV projections.
	OutputDir string `yaml:"output_dir"`
}

// DefaultEvaluatorWeights are the standard rubric weights.
func DefaultEvaluatorWeights() map[string]float64 {
	return map[string]float64{
		"response_quality":    0.25,
		"communication_style": 0.20,
		"tool_usage":          0.20,
		"business_value":      0.25,
		"performance":         0.10,
	}
}

// DefaultToolErrorRates returns the standard failure-injection rate for
// every built-in tool.
func DefaultToolErrorRates() map[string]float64 {
	rates := make(map[string]float64, 8)
	for _, id := range []string{
		"knowledge_base", "scheduler", "product_catalog", "customer_history",
		"pricing_calculator", "order_management", "support_ticket", "document_retrieval",
	} {
		rates[id] = 0.05
	}
	return rates
}

// DefaultConfig returns a config with the standard evaluator weights,
// tool error rates, and a single sequential run per pair.
func DefaultConfig() Config {
	return Config{
		Evaluators: DefaultEvaluatorWeights(),
		Tools:      DefaultToolErrorRates(),
		NumRuns:    1,
		OutputDir:  "output",
	}
}

// LoadConfig reads and validates a YAML pipeline configuration, layered
// over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration bytes. Omitted evaluator, tool,
// and execution settings fall back to the defaults; a present-but-partial
// evaluator or tool section replaces the default set entirely.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Evaluators == nil {
		cfg.Evaluators = DefaultEvaluatorWeights()
	}
	if cfg.Tools == nil {
		cfg.Tools = DefaultToolErrorRates()
	}
	if cfg.NumRuns == 0 {
		cfg.NumRuns = 1
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}
	for i := range cfg.Models {
		cfg.Models[i].APIKey = os.ExpandEnv(cfg.Models[i].APIKey)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
