package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olib-ai/bizcon/internal/ports"
)

func TestRegistryEvaluators(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterEvaluator("response_quality", func(weight float64) (ports.Evaluator, error) {
		return &stubEvaluator{name: "response_quality", weight: weight}, nil
	})

	evaluator, err := registry.BuildEvaluator("response_quality", 0.25)
	require.NoError(t, err)
	assert.Equal(t, "response_quality", evaluator.Name())
	assert.Equal(t, 0.25, evaluator.Weight())

	_, err = registry.BuildEvaluator("unknown", 0.5)
	require.ErrorIs(t, err, ports.ErrEvaluatorNotFound)

	assert.Equal(t, []string{"response_quality"}, registry.EvaluatorNames())
}

func TestRegistryTools(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterTool("scheduler", func(errorRate float64) (ports.Tool, error) {
		return &stubTool{id: "scheduler"}, nil
	})
	registry.RegisterTool("knowledge_base", func(errorRate float64) (ports.Tool, error) {
		return &stubTool{id: "knowledge_base"}, nil
	})

	tool, err := registry.BuildTool("scheduler", 0.05)
	require.NoError(t, err)
	assert.Equal(t, "scheduler", tool.ID())

	_, err = registry.BuildTool("unknown", 0)
	require.ErrorIs(t, err, ports.ErrToolNotFound)

	assert.Equal(t, []string{"knowledge_base", "scheduler"}, registry.ToolIDs())
}
