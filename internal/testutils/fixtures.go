package testutils

import (
	"github.com/olib-ai/bizcon/internal/domain"
)

// ProductInquirySpec returns a two-turn pricing conversation used across
// the test suites.
func ProductInquirySpec() domain.ScenarioSpec {
	return domain.ScenarioSpec{
		ID:          "product_inquiry_001",
		Name:        "Enterprise analytics inquiry",
		Description: "Prospect asks about the analytics platform and its pricing",
		Category:    "sales",
		Complexity:  domain.ComplexityMedium,
		Tools:       []string{"knowledge_base", "pricing_calculator"},
		Turns: []domain.ScenarioTurn{
			{
				UserMessage: "We are evaluating analytics platforms for about 100 users. What does DataInsight Enterprise offer?",
				ExpectedToolCalls: []domain.ExpectedToolCall{
					{ToolID: "knowledge_base", Parameters: map[string]any{"query": "DataInsight Enterprise"}},
				},
			},
			{
				UserMessage: "What would the enterprise tier cost us on a two-year term?",
				ExpectedToolCalls: []domain.ExpectedToolCall{
					{ToolID: "pricing_calculator", Parameters: map[string]any{"product_id": "data_insight"}},
				},
			},
		},
		Context: domain.ScenarioContext{
			CustomerType: "enterprise",
			Industry:     "technology",
		},
		GroundTruth: domain.GroundTruth{
			ExpectedFacts: []string{
				"product: DataInsight Enterprise",
				"users: 100",
			},
			RequiredElements:  []string{"dashboards", "pricing"},
			QueryIntent:       "pricing information for analytics platform",
			ExpectedTone:      "professional",
			ExpectedFormality: "formal",
			BusinessObjective: "provide pricing information for the analytics platform",
			ActionItems:       []string{"share enterprise tier pricing", "offer a product demo"},
			DomainKnowledge:   []string{"volume discounts apply on multi-year terms"},
			ExpectedTools:     []string{"knowledge_base", "pricing_calculator"},
			RelevantTools:     []string{"knowledge_base", "pricing_calculator"},
		},
	}
}

// ProductInquiryScenario builds the immutable scenario from
// ProductInquirySpec.
func ProductInquiryScenario() *domain.Scenario {
	return domain.NewScenario(ProductInquirySpec())
}
