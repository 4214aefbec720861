package scenarios

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olib-ai/bizcon/internal/domain"
)

const singleScenarioYAML = `
id: contract_renewal_001
name: Contract renewal negotiation
category: sales
complexity: complex
tools: [pricing_calculator, customer_history]
context:
  customer_type: enterprise
  industry: finance
turns:
  - user_message: "Our contract is up for renewal. What are our options?"
    expected_tool_calls:
      - tool_id: customer_history
        parameters:
          customer_id: CUST-1001
  - user_message: "What discount do we get on a 36-month term?"
ground_truth:
  expected_facts:
    - "term discount: 10 percent"
  expected_tone: professional
  expected_tools: [pricing_calculator]
`

const scenarioListYAML = `
scenarios:
  - id: list_a
    name: First
    turns:
      - user_message: "hello"
  - id: list_b
    name: Second
    complexity: simple
    turns:
      - user_message: "hi"
`

func TestParseSingleScenario(t *testing.T) {
	loaded, err := Parse([]byte(singleScenarioYAML))
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	scenario := loaded[0]
	assert.Equal(t, "contract_renewal_001", scenario.ID())
	assert.Equal(t, domain.ComplexityComplex, scenario.Complexity())
	assert.Equal(t, 2, scenario.TurnCount())
	assert.Equal(t, "enterprise", scenario.Context().CustomerType)

	expected := scenario.ExpectedToolCalls(0)
	require.Len(t, expected, 1)
	assert.Equal(t, "customer_history", expected[0].ToolID)
	assert.Equal(t, "CUST-1001", expected[0].Parameters["customer_id"])

	assert.Equal(t, []string{"term discount: 10 percent"}, scenario.GroundTruth().ExpectedFacts)
}

func TestParseScenarioList(t *testing.T) {
	loaded, err := Parse([]byte(scenarioListYAML))
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "list_a", loaded[0].ID())
	// Complexity defaults to medium when unset.
	assert.Equal(t, domain.ComplexityMedium, loaded[0].Complexity())
	assert.Equal(t, domain.ComplexitySimple, loaded[1].Complexity())
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "{{{"},
		{"empty", ""},
		{"missing id", "name: x\nturns:\n  - user_message: hi"},
		{"missing turns", "id: x\nname: x"},
		{"bad complexity", "id: x\nname: x\ncomplexity: extreme\nturns:\n  - user_message: hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "single.yaml"), []byte(singleScenarioYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "list.yml"), []byte(scenarioListYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	loaded, err := LoadPaths([]string{dir})
	require.NoError(t, err)
	assert.Len(t, loaded, 3)
}

func TestLoadPathsRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(scenarioListYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(scenarioListYAML), 0o644))

	_, err := LoadPaths([]string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate scenario id")
}

func TestLoadPathsMissing(t *testing.T) {
	_, err := LoadPaths([]string{filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestBuiltin(t *testing.T) {
	builtin := Builtin()
	require.Len(t, builtin, 3)

	ids := make(map[string]bool)
	for _, scenario := range builtin {
		assert.NotEmpty(t, scenario.ID())
		assert.GreaterOrEqual(t, scenario.TurnCount(), 2)
		assert.NotEmpty(t, scenario.Tools())
		ids[scenario.ID()] = true
	}
	assert.Len(t, ids, 3)

	// Built-in specs must pass the same validation as loaded ones.
	for _, spec := range []domain.ScenarioSpec{productInquirySpec(), appointmentSchedulingSpec(), supportEscalationSpec()} {
		assert.NoError(t, validate.Struct(spec))
	}
}
