package scenarios

import "github.com/olib-ai/bizcon/internal/domain"

// Builtin returns the programmatic scenario set used when no scenario
// paths are configured.
func Builtin() []*domain.Scenario {
	return []*domain.Scenario{
		domain.NewScenario(productInquirySpec()),
		domain.NewScenario(appointmentSchedulingSpec()),
		domain.NewScenario(supportEscalationSpec()),
	}
}

func productInquirySpec() domain.ScenarioSpec {
	return domain.ScenarioSpec{
		ID:          "builtin_product_inquiry",
		Name:        "Enterprise analytics product inquiry",
		Description: "An enterprise prospect evaluates the analytics platform and asks for pricing",
		Category:    "sales",
		Complexity:  domain.ComplexityMedium,
		Tools:       []string{"knowledge_base", "product_catalog", "pricing_calculator"},
		Context: domain.ScenarioContext{
			CustomerType: "enterprise",
			Industry:     "technology",
		},
		Turns: []domain.ScenarioTurn{
			{
				UserMessage: "We're evaluating analytics platforms for a 100-person data team. Can you tell me what DataInsight Enterprise offers?",
				ExpectedToolCalls: []domain.ExpectedToolCall{
					{ToolID: "knowledge_base", Parameters: map[string]any{"query": "DataInsight Enterprise"}},
				},
			},
			{
				UserMessage: "That sounds promising. What would the enterprise tier cost for 100 users on a 24-month term?",
				ExpectedToolCalls: []domain.ExpectedToolCall{
					{ToolID: "pricing_calculator", Parameters: map[string]any{
						"product_id": "data_insight", "tier": "enterprise", "users": 100, "term_length": 24,
					}},
				},
			},
			{
				UserMessage: "How long does a typical implementation take, and what training do you provide for administrators?",
				ExpectedToolCalls: []domain.ExpectedToolCall{
					{ToolID: "knowledge_base", Parameters: map[string]any{"query": "implementation timeline"}},
				},
			},
		},
		GroundTruth: domain.GroundTruth{
			ExpectedFacts: []string{
				"implementation timeline: six to eight weeks",
				"training: two-day virtual course",
			},
			RequiredElements:  []string{"pricing", "implementation", "training"},
			QueryIntent:       "pricing and implementation information for analytics platform",
			ExpectedTone:      "professional",
			ExpectedFormality: "formal",
			CommunicationGuidelines: []string{
				"avoid jargon",
				"provide concrete next steps",
			},
			BusinessObjective: "provide pricing and implementation details for the analytics platform",
			ActionItems: []string{
				"share enterprise tier pricing",
				"schedule a product demo",
				"outline the implementation plan",
			},
			DomainKnowledge: []string{
				"volume discounts on multi-year terms",
				"administrator training included",
			},
			ExpectedTools: []string{"knowledge_base", "pricing_calculator"},
			RelevantTools: []string{"knowledge_base", "product_catalog", "pricing_calculator"},
		},
	}
}

func appointmentSchedulingSpec() domain.ScenarioSpec {
	return domain.ScenarioSpec{
		ID:          "builtin_appointment_scheduling",
		Name:        "Technical consultation scheduling",
		Description: "A customer books a technical consultation for a deployment question",
		Category:    "scheduling",
		Complexity:  domain.ComplexitySimple,
		Tools:       []string{"scheduler", "customer_history"},
		Context: domain.ScenarioContext{
			CustomerType: "smb",
			Industry:     "manufacturing",
		},
		Turns: []domain.ScenarioTurn{
			{
				UserMessage: "Hi, we're Acme Manufacturing. We need a technical consultation about our warehouse connector setup. What slots do you have next week?",
				ExpectedToolCalls: []domain.ExpectedToolCall{
					{ToolID: "scheduler", Parameters: map[string]any{"meeting_type": "technical_consultation"}},
				},
			},
			{
				UserMessage: "The morning slot works. Please book it for 90 minutes and include a technical specialist.",
				ExpectedToolCalls: []domain.ExpectedToolCall{
					{ToolID: "scheduler", Parameters: map[string]any{
						"meeting_type": "technical_consultation", "book": true, "duration": 90,
					}},
				},
			},
		},
		GroundTruth: domain.GroundTruth{
			RequiredElements:  []string{"available slots", "confirmation"},
			QueryIntent:       "schedule a technical consultation",
			ExpectedTone:      "friendly",
			ExpectedFormality: "formal",
			BusinessObjective: "book a technical consultation appointment",
			ActionItems:       []string{"confirm the booked slot", "send a calendar invitation"},
			ExpectedTools:     []string{"scheduler"},
			RelevantTools:     []string{"scheduler", "customer_history"},
		},
	}
}

func supportEscalationSpec() domain.ScenarioSpec {
	return domain.ScenarioSpec{
		ID:          "builtin_support_escalation",
		Name:        "Failing export job escalation",
		Description: "An existing customer escalates a recurring nightly export failure",
		Category:    "support",
		Complexity:  domain.ComplexityComplex,
		Tools:       []string{"support_ticket", "customer_history", "document_retrieval"},
		Context: domain.ScenarioContext{
			CustomerType: "enterprise",
			Industry:     "healthcare",
		},
		Turns: []domain.ScenarioTurn{
			{
				UserMessage: "Our nightly export job has failed three nights in a row with a timeout. This is blocking our compliance reporting. Is there already a ticket for this?",
				ExpectedToolCalls: []domain.ExpectedToolCall{
					{ToolID: "support_ticket", Parameters: map[string]any{"ticket_id": "TCK-7301"}},
				},
			},
			{
				UserMessage: "Please raise the severity - we have a regulatory deadline on Friday. What's the workaround in the meantime?",
				ExpectedToolCalls: []domain.ExpectedToolCall{
					{ToolID: "document_retrieval", Parameters: map[string]any{
						"document_type": "technical_documentation", "keywords": []any{"export"},
					}},
				},
			},
			{
				UserMessage: "Understood. Who will keep us updated, and how often?",
			},
		},
		GroundTruth: domain.GroundTruth{
			ExpectedFacts: []string{
				"ticket: TCK-7301",
				"severity: high",
			},
			RequiredElements:  []string{"ticket status", "workaround", "escalation"},
			QueryIntent:       "escalate a recurring export failure",
			ExpectedTone:      "empathetic",
			ExpectedFormality: "formal",
			CommunicationGuidelines: []string{
				"acknowledge the compliance impact",
				"avoid speculative promises",
			},
			BusinessObjective: "escalate the export failure and communicate a remediation plan",
			ActionItems: []string{
				"raise the ticket severity",
				"share the export workaround",
				"commit to an update cadence",
			},
			DomainKnowledge: []string{
				"compliance reporting deadlines",
				"timeout during nightly export",
			},
			ExpectedTools: []string{"support_ticket", "document_retrieval"},
			RelevantTools: []string{"support_ticket", "customer_history", "document_retrieval"},
		},
	}
}
