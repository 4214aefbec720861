package domain

// FactError describes one factual discrepancy found by accuracy scoring.
type FactError struct {
	// Type classifies the error, e.g. "incorrect_fact" or
	// "contradicts_tool_output".
	Type string `json:"type"`

	// Fact is the fact key the error concerns.
	Fact string `json:"fact,omitempty"`

	// Expected is the correct value per ground truth or tool output.
	Expected string `json:"expected,omitempty"`

	// Provided is what the response actually stated.
	Provided string `json:"provided,omitempty"`
}

// EvaluationResult is one evaluator's verdict on one turn.
type EvaluationResult struct {
	// Score is the raw score on the evaluator's own scale, clamped to
	// [0, MaxPossible].
	Score float64 `json:"score"`

	// MaxPossible is the evaluator's maximum raw score.
	MaxPossible float64 `json:"max_possible"`

	// Breakdown maps dimension names to their sub-scores.
	Breakdown map[string]float64 `json:"breakdown,omitempty"`

	// Explanation maps dimension names to short human-readable notes.
	Explanation map[string]string `json:"explanation,omitempty"`

	// Errors lists factual discrepancies, when the evaluator tracks them.
	Errors []FactError `json:"errors,omitempty"`

	// Metrics holds auxiliary measurements (coverage ratios, counts)
	// that informed the score.
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// Normalized returns the score rescaled to [0, 10].
func (r EvaluationResult) Normalized() float64 {
	if r.MaxPossible <= 0 {
		return 0
	}
	n := r.Score / r.MaxPossible * 10
	if n < 0 {
		return 0
	}
	if n > 10 {
		return 10
	}
	return n
}

// EvaluatorMetadata identifies one evaluator and its scoring envelope.
type EvaluatorMetadata struct {
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	MinScore float64 `json:"min_score"`
	MaxScore float64 `json:"max_score"`
}

// TurnRecord captures everything that happened in one conversation turn.
type TurnRecord struct {
	// TurnIndex is the zero-based position of the turn.
	TurnIndex int `json:"turn_index"`

	// UserMessage is the scripted message that opened the turn.
	UserMessage string `json:"user_message"`

	// Response is the model's reply, including any tool-call requests.
	Response ModelResponse `json:"response"`

	// ToolCalls are the resolved tool invocations made this turn.
	ToolCalls []ToolCallRecord `json:"tool_calls,omitempty"`

	// Evaluations maps evaluator name to its verdict on this turn.
	Evaluations map[string]EvaluationResult `json:"evaluations"`
}

// RunResult is the outcome of one model playing one scenario once.
type RunResult struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`

	// ModelID names the model under test.
	ModelID string `json:"model_id"`

	// ScenarioID names the scenario played.
	ScenarioID string `json:"scenario_id"`

	// RunNum is the zero-based repetition index within the pipeline.
	RunNum int `json:"run_num"`

	// Scenario carries identifying scenario details for reporting.
	Scenario ScenarioMetadata `json:"scenario"`

	// Turns are the per-turn records in conversation order.
	Turns []TurnRecord `json:"turns"`

	// CategoryScores maps evaluator name to its normalized [0,10] mean
	// across turns.
	CategoryScores map[string]float64 `json:"category_scores"`

	// OverallScore is the weighted average of category scores on [0,10].
	OverallScore float64 `json:"overall_score"`

	// DurationMs is the wall-clock duration of the run.
	DurationMs int64 `json:"duration_ms"`
}

// Summary aggregates pipeline results per model.
type Summary struct {
	// OverallScores maps model id to its mean overall score.
	OverallScores map[string]float64 `json:"overall_scores"`

	// CategoryScores maps model id to evaluator name to mean score.
	CategoryScores map[string]map[string]float64 `json:"category_scores"`

	// ScenarioScores maps model id to scenario id to mean score.
	ScenarioScores map[string]map[string]float64 `json:"scenario_scores"`
}

// PipelineResult is the complete outcome of one benchmark pipeline run.
type PipelineResult struct {
	// Timestamp is the RFC 3339 start time of the pipeline.
	Timestamp string `json:"timestamp"`

	// Models reports usage counters for every model exercised.
	Models []ModelUsageStats `json:"models"`

	// Scenarios identifies every scenario played.
	Scenarios []ScenarioMetadata `json:"scenarios"`

	// Evaluators identifies the scoring configuration.
	Evaluators []EvaluatorMetadata `json:"evaluators"`

	// Tools reports usage counters for every registered tool.
	Tools []ToolUsageStats `json:"tools"`

	// NumRuns is the repetition count per model/scenario pair.
	NumRuns int `json:"num_runs"`

	// Results groups run results by model id, then scenario id, in
	// run-number order.
	Results map[string]map[string][]RunResult `json:"results"`

	// Summary holds the per-model aggregates.
	Summary Summary `json:"summary"`

	// DurationMs is the wall-clock duration of the whole pipeline.
	DurationMs int64 `json:"duration_ms"`
}
