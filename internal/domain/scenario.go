package domain

// Scenario complexity levels. Complexity drives performance scoring
// thresholds, never behavior.
const (
	ComplexitySimple  = "simple"
	ComplexityMedium  = "medium"
	ComplexityComplex = "complex"
)

// ScenarioTurn is one scripted user message together with the tool calls
// a strong response to it would make.
type ScenarioTurn struct {
	// UserMessage is the scripted message injected for this turn.
	UserMessage string `json:"user_message" yaml:"user_message"`

	// ExpectedToolCalls lists the ground-truth tool invocations for this
	// turn. May be empty for turns answerable from context alone.
	ExpectedToolCalls []ExpectedToolCall `json:"expected_tool_calls,omitempty" yaml:"expected_tool_calls,omitempty"`
}

// ScenarioContext carries business framing used by tone scoring.
type ScenarioContext struct {
	CustomerType string `json:"customer_type,omitempty" yaml:"customer_type,omitempty"`
	Industry     string `json:"industry,omitempty" yaml:"industry,omitempty"`
}

// GroundTruth is the reference data evaluators score against. All fields
// are optional; evaluators degrade gracefully when a field is empty.
type GroundTruth struct {
	// ExpectedFacts are reference facts in "key: value" form, or bare
	// keys when any mention suffices.
	ExpectedFacts []string `json:"expected_facts,omitempty" yaml:"expected_facts,omitempty"`

	// RequiredElements are topics a complete response must cover.
	RequiredElements []string `json:"required_elements,omitempty" yaml:"required_elements,omitempty"`

	// QueryIntent is a short statement of what the user is asking for.
	QueryIntent string `json:"query_intent,omitempty" yaml:"query_intent,omitempty"`

	// ExpectedTone names the tone the response should strike.
	ExpectedTone string `json:"expected_tone,omitempty" yaml:"expected_tone,omitempty"`

	// ExpectedFormality is "formal", "informal", or empty for neutral.
	ExpectedFormality string `json:"expected_formality,omitempty" yaml:"expected_formality,omitempty"`

	// CommunicationGuidelines are free-form style rules, possibly
	// negative ("avoid jargon").
	CommunicationGuidelines []string `json:"communication_guidelines,omitempty" yaml:"communication_guidelines,omitempty"`

	// BusinessObjective is the outcome the conversation should advance.
	BusinessObjective string `json:"business_objective,omitempty" yaml:"business_objective,omitempty"`

	// ActionItems are concrete next steps a strong response proposes.
	ActionItems []string `json:"action_items,omitempty" yaml:"action_items,omitempty"`

	// DomainKnowledge lists terms demonstrating industry fluency.
	DomainKnowledge []string `json:"domain_knowledge,omitempty" yaml:"domain_knowledge,omitempty"`

	// ExpectedTools names every tool the scenario may exercise.
	ExpectedTools []string `json:"expected_tools,omitempty" yaml:"expected_tools,omitempty"`

	// RelevantTools names tools whose use earns business-value credit.
	RelevantTools []string `json:"relevant_tools,omitempty" yaml:"relevant_tools,omitempty"`
}

// ScenarioMetadata is the identifying slice of a scenario carried into
// run results so reports stay self-describing.
type ScenarioMetadata struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Complexity string `json:"complexity"`
}

// ScenarioSpec is the mutable description used to construct a Scenario.
// Loaders and tests build one of these; everything downstream sees only
// the immutable Scenario.
type ScenarioSpec struct {
	ID          string            `yaml:"id" validate:"required"`
	Name        string            `yaml:"name" validate:"required"`
	Description string            `yaml:"description"`
	Category    string            `yaml:"category"`
	Complexity  string            `yaml:"complexity" validate:"omitempty,oneof=simple medium complex"`
	Context     ScenarioContext   `yaml:"context"`
	Turns       []ScenarioTurn    `yaml:"turns" validate:"required,min=1"`
	GroundTruth GroundTruth       `yaml:"ground_truth"`
	Tools       []string          `yaml:"tools"`
	Metadata    map[string]string `yaml:"metadata"`
}

// Scenario is an immutable conversation script plus its ground truth.
// Construct via NewScenario; accessors return copies so shared scenarios
// stay safe across concurrent runs.
type Scenario struct {
	id          string
	name        string
	description string
	category    string
	complexity  string
	context     ScenarioContext
	turns       []ScenarioTurn
	groundTruth GroundTruth
	tools       []string
	metadata    map[string]string
}

// NewScenario builds an immutable Scenario from a spec, deep-copying
// every mutable field. Complexity defaults to medium when unset.
func NewScenario(spec ScenarioSpec) *Scenario {
	complexity := spec.Complexity
	if complexity == "" {
		complexity = ComplexityMedium
	}
	return &Scenario{
		id:          spec.ID,
		name:        spec.Name,
		description: spec.Description,
		category:    spec.Category,
		complexity:  complexity,
		context:     spec.Context,
		turns:       copyTurns(spec.Turns),
		groundTruth: copyGroundTruth(spec.GroundTruth),
		tools:       copyStrings(spec.Tools),
		metadata:    copyStringMap(spec.Metadata),
	}
}

// ID returns the scenario's unique identifier.
func (s *Scenario) ID() string { return s.id }

// Name returns the scenario's display name.
func (s *Scenario) Name() string { return s.name }

// Description returns the scenario's description.
func (s *Scenario) Description() string { return s.description }

// Category returns the scenario's category label.
func (s *Scenario) Category() string { return s.category }

// Complexity returns the scenario's complexity level.
func (s *Scenario) Complexity() string { return s.complexity }

// Context returns the scenario's business context.
func (s *Scenario) Context() ScenarioContext { return s.context }

// TurnCount returns the number of scripted turns.
func (s *Scenario) TurnCount() int { return len(s.turns) }

// InitialMessage returns the first scripted user message, or empty when
// the scenario has no turns.
func (s *Scenario) InitialMessage() string {
	if len(s.turns) == 0 {
		return ""
	}
	return s.turns[0].UserMessage
}

// FollowUpMessage returns the scripted user message that follows the
// given turn index and whether one exists. The last turn has no
// follow-up.
func (s *Scenario) FollowUpMessage(turnIndex int) (string, bool) {
	if turnIndex < 0 || turnIndex+1 >= len(s.turns) {
		return "", false
	}
	return s.turns[turnIndex+1].UserMessage, true
}

// ExpectedToolCalls returns a copy of the ground-truth tool calls for
// the given turn index. Out-of-range indexes yield nil.
func (s *Scenario) ExpectedToolCalls(turnIndex int) []ExpectedToolCall {
	if turnIndex < 0 || turnIndex >= len(s.turns) {
		return nil
	}
	return copyExpectedCalls(s.turns[turnIndex].ExpectedToolCalls)
}

// GroundTruth returns a deep copy of the scenario's reference data.
func (s *Scenario) GroundTruth() GroundTruth { return copyGroundTruth(s.groundTruth) }

// Tools returns a copy of the tool ids this scenario exposes.
func (s *Scenario) Tools() []string { return copyStrings(s.tools) }

// Metadata returns a copy of the scenario's free-form metadata.
func (s *Scenario) Metadata() map[string]string { return copyStringMap(s.metadata) }

// Meta returns the identifying slice of the scenario for embedding in
// results.
func (s *Scenario) Meta() ScenarioMetadata {
	return ScenarioMetadata{ID: s.id, Name: s.name, Category: s.category, Complexity: s.complexity}
}

func copyTurns(turns []ScenarioTurn) []ScenarioTurn {
	if turns == nil {
		return nil
	}
	out := make([]ScenarioTurn, len(turns))
	for i, t := range turns {
		out[i] = ScenarioTurn{
			UserMessage:       t.UserMessage,
			ExpectedToolCalls: copyExpectedCalls(t.ExpectedToolCalls),
		}
	}
	return out
}

func copyExpectedCalls(calls []ExpectedToolCall) []ExpectedToolCall {
	if calls == nil {
		return nil
	}
	out := make([]ExpectedToolCall, len(calls))
	for i, c := range calls {
		out[i] = ExpectedToolCall{ToolID: c.ToolID, Parameters: copyAnyMap(c.Parameters)}
	}
	return out
}

func copyGroundTruth(gt GroundTruth) GroundTruth {
	return GroundTruth{
		ExpectedFacts:           copyStrings(gt.ExpectedFacts),
		RequiredElements:        copyStrings(gt.RequiredElements),
		QueryIntent:             gt.QueryIntent,
		ExpectedTone:            gt.ExpectedTone,
		ExpectedFormality:       gt.ExpectedFormality,
		CommunicationGuidelines: copyStrings(gt.CommunicationGuidelines),
		BusinessObjective:       gt.BusinessObjective,
		ActionItems:             copyStrings(gt.ActionItems),
		DomainKnowledge:         copyStrings(gt.DomainKnowledge),
		ExpectedTools:           copyStrings(gt.ExpectedTools),
		RelevantTools:           copyStrings(gt.RelevantTools),
	}
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyAnyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
