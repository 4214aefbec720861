package application

import (
	"fmt"
	"sort"

	"github.com/olib-ai/bizcon/internal/ports"
)

// EvaluatorFactory constructs an evaluator with the given category weight.
type EvaluatorFactory func(weight float64) (ports.Evaluator, error)

// ToolFactory constructs a tool with the given injected error rate.
type ToolFactory func(errorRate float64) (ports.Tool, error)

// Registry maps configured names to evaluator and tool factories. The
// entry point builds one explicitly and injects it into pipeline
// construction; nothing is discovered globally.
type Registry struct {
	evaluators map[string]EvaluatorFactory
	tools      map[string]ToolFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		evaluators: make(map[string]EvaluatorFactory),
		tools:      make(map[string]ToolFactory),
	}
}

// RegisterEvaluator binds a factory to an evaluator name, replacing any
// previous binding.
func (r *Registry) RegisterEvaluator(name string, factory EvaluatorFactory) {
	r.evaluators[name] = factory
}

// RegisterTool binds a factory to a tool id, replacing any previous
// binding.
func (r *Registry) RegisterTool(id string, factory ToolFactory) {
	r.tools[id] = factory
}

// BuildEvaluator constructs the named evaluator.
func (r *Registry) BuildEvaluator(name string, weight float64) (ports.Evaluator, error) {
	factory, ok := r.evaluators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (registered: %v)", ports.ErrEvaluatorNotFound, name, r.EvaluatorNames())
	}
	return factory(weight)
}

// BuildTool constructs the named tool.
func (r *Registry) BuildTool(id string, errorRate float64) (ports.Tool, error) {
	factory, ok := r.tools[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s (registered: %v)", ports.ErrToolNotFound, id, r.ToolIDs())
	}
	return factory(errorRate)
}

// EvaluatorNames returns the registered evaluator names, sorted.
func (r *Registry) EvaluatorNames() []string {
	names := make([]string, 0, len(r.evaluators))
	for name := range r.evaluators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ToolIDs returns the registered tool ids, sorted.
func (r *Registry) ToolIDs() []string {
	ids := make([]string, 0, len(r.tools))
	for id := range r.tools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
