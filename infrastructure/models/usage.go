package models

import (
	"sync"
	"sync/atomic"

	"github.com/olib-ai/bizcon/internal/domain"
)

// tokenPricing holds per-million-token list prices in USD.
type tokenPricing struct {
	input  float64
	output float64
}

// modelPricing covers the models the harness is commonly run against.
// Unknown models fall back to defaultPricing so relative cost figures
// stay plausible rather than zero.
var modelPricing = map[string]tokenPricing{
	"gpt-4o":                     {input: 2.50, output: 10.00},
	"gpt-4o-mini":                {input: 0.15, output: 0.60},
	"gpt-3.5-turbo":              {input: 0.50, output: 1.50},
	"claude-3-5-sonnet-20241022": {input: 3.00, output: 15.00},
	"claude-3-5-haiku-20241022":  {input: 0.80, output: 4.00},
	"gemini-2.0-flash-exp":       {input: 0.10, output: 0.40},
	"gemini-1.5-pro":             {input: 1.25, output: 5.00},
}

var defaultPricing = tokenPricing{input: 1.00, output: 3.00}

// usageTracker accumulates per-model usage across concurrent requests.
type usageTracker struct {
	model string

	apiCalls         atomic.Int64
	promptTokens     atomic.Int64
	completionTokens atomic.Int64
	totalTokens      atomic.Int64

	costMu sync.Mutex
	cost   float64
}

func newUsageTracker(model string) *usageTracker {
	return &usageTracker{model: model}
}

// record accumulates one completed request.
func (t *usageTracker) record(usage *domain.Usage) {
	t.apiCalls.Add(1)
	if usage == nil {
		return
	}
	t.promptTokens.Add(int64(usage.PromptTokens))
	t.completionTokens.Add(int64(usage.CompletionTokens))
	t.totalTokens.Add(int64(usage.TotalTokens))

	pricing, ok := modelPricing[t.model]
	if !ok {
		pricing = defaultPricing
	}
	cost := float64(usage.PromptTokens)/1e6*pricing.input +
		float64(usage.CompletionTokens)/1e6*pricing.output

	t.costMu.Lock()
	t.cost += cost
	t.costMu.Unlock()
}

func (t *usageTracker) stats() domain.ModelUsageStats {
	t.costMu.Lock()
	cost := t.cost
	t.costMu.Unlock()

	return domain.ModelUsageStats{
		Model:            t.model,
		APICalls:         t.apiCalls.Load(),
		PromptTokens:     t.promptTokens.Load(),
		CompletionTokens: t.completionTokens.Load(),
		TotalTokens:      t.totalTokens.Load(),
		TotalCost:        cost,
	}
}

func (t *usageTracker) reset() {
	t.apiCalls.Store(0)
	t.promptTokens.Store(0)
	t.completionTokens.Store(0)
	t.totalTokens.Store(0)

	t.costMu.Lock()
	t.cost = 0
	t.costMu.Unlock()
}
