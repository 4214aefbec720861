package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olib-ai/bizcon/internal/domain"
)

func TestBuiltins(t *testing.T) {
	all, err := Builtins(WithErrorRate(0))
	require.NoError(t, err)
	require.Len(t, all, 8)

	seen := map[string]bool{}
	for _, tool := range all {
		seen[tool.ID()] = true
		def := tool.Definition()
		assert.Equal(t, "function", def.Type)
		assert.Equal(t, tool.ID(), def.Function.Name)
		assert.NotEmpty(t, def.Function.Description)
	}
	for _, id := range []string{
		"knowledge_base", "scheduler", "product_catalog", "customer_history",
		"pricing_calculator", "order_management", "support_ticket", "document_retrieval",
	} {
		assert.True(t, seen[id], "missing builtin %s", id)
	}
}

func TestKnowledgeBaseSearch(t *testing.T) {
	kb, err := NewKnowledgeBase(WithErrorRate(0))
	require.NoError(t, err)

	t.Run("requires query", func(t *testing.T) {
		result := kb.Call(map[string]any{})
		require.Equal(t, domain.StatusError, result.Status)
		assert.Equal(t, domain.ErrCodeMissingParameters, result.Error)
	})

	t.Run("matches by content", func(t *testing.T) {
		result := kb.Call(map[string]any{"query": "implementation"})
		require.True(t, result.OK())
		payload := result.Result.(map[string]any)
		assert.Greater(t, payload["matches"].(int), 0)
	})

	t.Run("category filter", func(t *testing.T) {
		result := kb.Call(map[string]any{"query": "", "categories": []string{"policies"}})
		require.True(t, result.OK())
		payload := result.Result.(map[string]any)
		entries := payload["results"].([]kbEntry)
		for _, entry := range entries {
			assert.Equal(t, "policies", entry.Category)
		}
	})
}

func TestSchedulerAvailability(t *testing.T) {
	sched, err := NewScheduler(WithErrorRate(0))
	require.NoError(t, err)

	t.Run("requires meeting type", func(t *testing.T) {
		result := sched.Call(map[string]any{})
		require.Equal(t, domain.StatusError, result.Status)
		assert.Equal(t, "Missing required parameters: meeting_type", result.Message)
	})

	t.Run("slots carry the requested date", func(t *testing.T) {
		result := sched.Call(map[string]any{
			"meeting_type": "product_demo",
			"date":         "2026-09-15",
			"time_range":   "10:00-13:00",
		})
		require.True(t, result.OK())
		payload := result.Result.(map[string]any)
		slots := payload["available_slots"].([]string)
		require.Equal(t, []string{"2026-09-15 10:00", "2026-09-15 11:00", "2026-09-15 12:00"}, slots)
	})

	t.Run("booking returns confirmation", func(t *testing.T) {
		result := sched.Call(map[string]any{
			"meeting_type": "sales_call",
			"date":         "2026-09-15",
			"book":         true,
		})
		require.True(t, result.OK())
		payload := result.Result.(map[string]any)
		assert.Equal(t, true, payload["booked"])
		assert.Equal(t, "2026-09-15 09:00", payload["scheduled_slot"])
	})

	t.Run("bad time range rejected", func(t *testing.T) {
		result := sched.Call(map[string]any{"meeting_type": "sales_call", "time_range": "morning"})
		require.Equal(t, domain.StatusError, result.Status)
		assert.Equal(t, domain.ErrCodeInvalidParameters, result.Error)
	})
}

func TestPricingCalculator(t *testing.T) {
	pricer, err := NewPricingCalculator(WithErrorRate(0))
	require.NoError(t, err)

	t.Run("requires product id", func(t *testing.T) {
		result := pricer.Call(map[string]any{})
		require.Equal(t, domain.StatusError, result.Status)
		assert.Equal(t, domain.ErrCodeMissingParameters, result.Error)
	})

	t.Run("totals with term discount", func(t *testing.T) {
		result := pricer.Call(map[string]any{
			"product_id":  "data_insight",
			"tier":        "enterprise",
			"users":       100,
			"term_length": 24,
		})
		require.True(t, result.OK())
		payload := result.Result.(map[string]any)
		assert.InDelta(t, 12000.0, payload["subtotal"].(float64), 1e-9)
		assert.InDelta(t, 11400.0, payload["total_price"].(float64), 1e-9)
	})

	t.Run("unknown product", func(t *testing.T) {
		result := pricer.Call(map[string]any{"product_id": "mystery"})
		require.Equal(t, domain.StatusError, result.Status)
		assert.Equal(t, "ProductNotFound", result.Error)
	})
}

func TestProductCatalog(t *testing.T) {
	catalog, err := NewProductCatalog(WithErrorRate(0))
	require.NoError(t, err)

	t.Run("lookup by id", func(t *testing.T) {
		result := catalog.Call(map[string]any{"product_id": "cloud_suite"})
		require.True(t, result.OK())
		payload := result.Result.(map[string]any)
		assert.Equal(t, "CloudSuite Platform", payload["product"].(product).Name)
	})

	t.Run("filter by category", func(t *testing.T) {
		result := catalog.Call(map[string]any{"product_category": "data_analytics"})
		require.True(t, result.OK())
		payload := result.Result.(map[string]any)
		assert.Equal(t, 1, payload["matches"])
	})
}

func TestCustomerHistory(t *testing.T) {
	history, err := NewCustomerHistory(WithErrorRate(0))
	require.NoError(t, err)

	t.Run("needs an identifier", func(t *testing.T) {
		result := history.Call(map[string]any{})
		require.Equal(t, domain.StatusError, result.Status)
		assert.Equal(t, domain.ErrCodeInvalidParameters, result.Error)
	})

	t.Run("lookup by company name", func(t *testing.T) {
		result := history.Call(map[string]any{"company_name": "acme"})
		require.True(t, result.OK())
		payload := result.Result.(map[string]any)
		assert.Equal(t, "CUST-1001", payload["customer"].(customerRecord).CustomerID)
	})
}

func TestOrderManagement(t *testing.T) {
	mgr, err := NewOrderManagement(WithErrorRate(0))
	require.NoError(t, err)

	t.Run("lookup by order id", func(t *testing.T) {
		result := mgr.Call(map[string]any{"order_id": "ORD-48213"})
		require.True(t, result.OK())
	})

	t.Run("create requires customer and product", func(t *testing.T) {
		result := mgr.Call(map[string]any{"create_order": true})
		require.Equal(t, domain.StatusError, result.Status)
		assert.Equal(t, domain.ErrCodeInvalidParameters, result.Error)
	})

	t.Run("filter by status", func(t *testing.T) {
		result := mgr.Call(map[string]any{"status": "processing"})
		require.True(t, result.OK())
		payload := result.Result.(map[string]any)
		assert.Equal(t, 1, payload["matches"])
	})
}

func TestSupportTicket(t *testing.T) {
	desk, err := NewSupportTicket(WithErrorRate(0))
	require.NoError(t, err)

	t.Run("lookup unknown ticket", func(t *testing.T) {
		result := desk.Call(map[string]any{"ticket_id": "TCK-0000"})
		require.Equal(t, domain.StatusError, result.Status)
		assert.Equal(t, "TicketNotFound", result.Error)
	})

	t.Run("create needs description", func(t *testing.T) {
		result := desk.Call(map[string]any{"create_ticket": true})
		require.Equal(t, domain.StatusError, result.Status)
	})

	t.Run("create defaults severity", func(t *testing.T) {
		result := desk.Call(map[string]any{"create_ticket": true, "issue_description": "export fails"})
		require.True(t, result.OK())
		payload := result.Result.(map[string]any)
		assert.Equal(t, "medium", payload["severity"])
	})
}

func TestDocumentRetrieval(t *testing.T) {
	docs, err := NewDocumentRetrieval(WithErrorRate(0))
	require.NoError(t, err)

	t.Run("requires type and keywords", func(t *testing.T) {
		result := docs.Call(map[string]any{"document_type": "api_reference"})
		require.Equal(t, domain.StatusError, result.Status)
		assert.Equal(t, "Missing required parameters: keywords", result.Message)
	})

	t.Run("keyword match within type", func(t *testing.T) {
		result := docs.Call(map[string]any{
			"document_type": "technical_documentation",
			"keywords":      []string{"deployment"},
		})
		require.True(t, result.OK())
		payload := result.Result.(map[string]any)
		assert.Equal(t, 1, payload["matches"])
	})
}
