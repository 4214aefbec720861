package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

// Builtins constructs the eight standard business tools with the given
// options applied to each. The default failure-injection rate is 5%.
func Builtins(opts ...Option) ([]ports.Tool, error) {
	constructors := []func(...Option) (*SimulatedTool, error){
		NewKnowledgeBase,
		NewScheduler,
		NewProductCatalog,
		NewCustomerHistory,
		NewPricingCalculator,
		NewOrderManagement,
		NewSupportTicket,
		NewDocumentRetrieval,
	}
	out := make([]ports.Tool, 0, len(constructors))
	for _, construct := range constructors {
		tool, err := construct(opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, tool)
	}
	return out, nil
}

const defaultErrorRate = 0.05

type kbEntry struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

var knowledgeBaseEntries = []kbEntry{
	{ID: "KB-001", Category: "products", Title: "DataInsight Enterprise overview", Content: "DataInsight Enterprise is our flagship analytics platform with role-based dashboards, anomaly detection, and native warehouse connectors."},
	{ID: "KB-002", Category: "implementation", Title: "Implementation timeline", Content: "A standard implementation takes six to eight weeks including data migration, configuration, and user acceptance testing."},
	{ID: "KB-003", Category: "policies", Title: "Data retention policy", Content: "Customer data is retained for the duration of the contract plus ninety days, after which it is permanently deleted."},
	{ID: "KB-004", Category: "training", Title: "Administrator training", Content: "Administrator training is a two-day virtual course covering user management, security policies, and report scheduling."},
	{ID: "KB-005", Category: "support", Title: "Support tiers", Content: "Standard support covers business hours; premium support adds 24/7 coverage with a one-hour response target for critical issues."},
}

// NewKnowledgeBase creates the company knowledge-base search tool.
func NewKnowledgeBase(opts ...Option) (*SimulatedTool, error) {
	cfg := Config{
		ID:          "knowledge_base",
		Name:        "Knowledge Base",
		Description: "Search the company knowledge base for information about products, services, policies, and procedures",
		Parameters: map[string]domain.ParameterSpec{
			"query":       {Type: "string", Description: "Search query string", Required: true},
			"categories":  {Type: "array", Description: "Categories to search within (e.g., 'products', 'policies', 'implementation', 'training', 'support')", Items: map[string]string{"type": "string"}},
			"max_results": {Type: "integer", Description: "Maximum number of results to return"},
		},
		ErrorRate: defaultErrorRate,
	}
	return NewSimulatedTool(cfg, func(params map[string]any) (any, error) {
		query := strings.ToLower(strParam(params, "query"))
		categories := strSliceParam(params, "categories")
		maxResults := intParam(params, "max_results", 3)

		var results []kbEntry
		for _, entry := range knowledgeBaseEntries {
			if len(categories) > 0 && !containsString(categories, entry.Category) {
				continue
			}
			if query != "" && !strings.Contains(strings.ToLower(entry.Title+" "+entry.Content), query) {
				continue
			}
			results = append(results, entry)
			if len(results) >= maxResults {
				break
			}
		}
		return map[string]any{
			"query":   strParam(params, "query"),
			"matches": len(results),
			"results": results,
		}, nil
	}, opts...)
}

// NewScheduler creates the appointment scheduler tool. Successful
// availability lookups always expose an available_slots list of
// "YYYY-MM-DD HH:MM" strings.
func NewScheduler(opts ...Option) (*SimulatedTool, error) {
	cfg := Config{
		ID:          "scheduler",
		Name:        "Appointment Scheduler",
		Description: "Check availability and schedule appointments with sales representatives, technical specialists, or support staff",
		Parameters: map[string]domain.ParameterSpec{
			"meeting_type": {Type: "string", Description: "Type of meeting to schedule (e.g., 'sales_call', 'product_demo', 'technical_consultation', 'support_session')", Required: true},
			"date":         {Type: "string", Description: "Preferred date (YYYY-MM-DD format)"},
			"time_range":   {Type: "string", Description: "Preferred time range (e.g., '09:00-17:00')"},
			"duration":     {Type: "integer", Description: "Duration in minutes (default is 60)"},
			"participants": {Type: "array", Description: "Types of staff needed (e.g., ['sales_rep', 'technical_specialist'])", Items: map[string]string{"type": "string"}},
			"book":         {Type: "boolean", Description: "Whether to book the first available slot"},
		},
		ErrorRate: defaultErrorRate,
	}
	return NewSimulatedTool(cfg, func(params map[string]any) (any, error) {
		date := strParam(params, "date")
		if date == "" {
			date = nextBusinessDay(time.Now()).Format("2006-01-02")
		}
		timeRange := strParam(params, "time_range")
		if timeRange == "" {
			timeRange = "09:00-17:00"
		}
		duration := intParam(params, "duration", 60)

		startHour, endHour, err := parseTimeRange(timeRange)
		if err != nil {
			return nil, &BusinessError{Code: domain.ErrCodeInvalidParameters, Message: err.Error()}
		}

		var slots []string
		for hour := startHour; hour+duration/60 <= endHour; hour++ {
			slots = append(slots, fmt.Sprintf("%s %02d:00", date, hour))
		}

		if boolParam(params, "book") && len(slots) > 0 {
			return map[string]any{
				"booked":           true,
				"confirmation_id":  fmt.Sprintf("APPT-%s-%02d", strings.ReplaceAll(date, "-", ""), startHour),
				"meeting_type":     strParam(params, "meeting_type"),
				"scheduled_slot":   slots[0],
				"duration_minutes": duration,
			}, nil
		}

		return map[string]any{
			"date":             date,
			"meeting_type":     strParam(params, "meeting_type"),
			"available_slots":  slots,
			"duration_minutes": duration,
		}, nil
	}, opts...)
}

type product struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Tiers    []string `json:"tiers"`
	Features []string `json:"features"`
}

var catalogProducts = []product{
	{ID: "data_insight", Name: "DataInsight Enterprise", Category: "data_analytics", Tiers: []string{"standard", "professional", "enterprise"}, Features: []string{"dashboards", "anomaly detection", "warehouse connectors"}},
	{ID: "cloud_suite", Name: "CloudSuite Platform", Category: "cloud_services", Tiers: []string{"standard", "enterprise"}, Features: []string{"autoscaling", "managed backups", "private networking"}},
	{ID: "service_desk", Name: "ServiceDesk Pro", Category: "support_tooling", Tiers: []string{"standard", "professional"}, Features: []string{"ticket routing", "sla tracking", "knowledge portal"}},
}

// NewProductCatalog creates the product catalog lookup tool.
func NewProductCatalog(opts ...Option) (*SimulatedTool, error) {
	cfg := Config{
		ID:          "product_catalog",
		Name:        "Product Catalog",
		Description: "Retrieve detailed information about products and services from the company catalog",
		Parameters: map[string]domain.ParameterSpec{
			"product_id":       {Type: "string", Description: "Specific product ID to look up"},
			"product_category": {Type: "string", Description: "Product category to search (e.g., 'data_analytics', 'cloud_services')"},
		},
		ErrorRate: defaultErrorRate,
	}
	return NewSimulatedTool(cfg, func(params map[string]any) (any, error) {
		productID := strParam(params, "product_id")
		category := strParam(params, "product_category")

		if productID != "" {
			for _, p := range catalogProducts {
				if p.ID == productID {
					return map[string]any{"product": p}, nil
				}
			}
			return nil, &BusinessError{Code: "ProductNotFound", Message: "No product with ID " + productID}
		}

		var matches []product
		for _, p := range catalogProducts {
			if category == "" || p.Category == category {
				matches = append(matches, p)
			}
		}
		return map[string]any{"matches": len(matches), "products": matches}, nil
	}, opts...)
}

type customerRecord struct {
	CustomerID string   `json:"customer_id"`
	Company    string   `json:"company"`
	Plan       string   `json:"plan"`
	Since      string   `json:"customer_since"`
	Purchases  []string `json:"purchases"`
	OpenIssues int      `json:"open_issues"`
}

var customers = []customerRecord{
	{CustomerID: "CUST-1001", Company: "Acme Manufacturing", Plan: "enterprise", Since: "2022-03-14", Purchases: []string{"data_insight", "service_desk"}, OpenIssues: 1},
	{CustomerID: "CUST-1002", Company: "Meridian Health", Plan: "professional", Since: "2023-11-02", Purchases: []string{"cloud_suite"}, OpenIssues: 0},
}

// NewCustomerHistory creates the customer account lookup tool.
func NewCustomerHistory(opts ...Option) (*SimulatedTool, error) {
	cfg := Config{
		ID:          "customer_history",
		Name:        "Customer History",
		Description: "Retrieve customer account information, purchase history, and support interactions",
		Parameters: map[string]domain.ParameterSpec{
			"customer_id":  {Type: "string", Description: "Customer ID to look up"},
			"company_name": {Type: "string", Description: "Company name to look up"},
		},
		ErrorRate: defaultErrorRate,
	}
	return NewSimulatedTool(cfg, func(params map[string]any) (any, error) {
		customerID := strParam(params, "customer_id")
		company := strings.ToLower(strParam(params, "company_name"))
		if customerID == "" && company == "" {
			return nil, &BusinessError{Code: domain.ErrCodeInvalidParameters, Message: "Provide customer_id or company_name"}
		}
		for _, c := range customers {
			if (customerID != "" && c.CustomerID == customerID) ||
				(company != "" && strings.Contains(strings.ToLower(c.Company), company)) {
				return map[string]any{"customer": c}, nil
			}
		}
		return nil, &BusinessError{Code: "CustomerNotFound", Message: "No matching customer record"}
	}, opts...)
}

// perUserPrice maps product tier to monthly list price per user.
var perUserPrice = map[string]map[string]float64{
	"data_insight": {"standard": 50, "professional": 80, "enterprise": 120},
	"cloud_suite":  {"standard": 40, "enterprise": 95},
	"service_desk": {"standard": 25, "professional": 45},
}

// termDiscount maps contract length in months to a discount rate.
var termDiscount = map[int]float64{12: 0.0, 24: 0.05, 36: 0.10}

// NewPricingCalculator creates the pricing calculator tool. Successful
// calls always expose a total_price number.
func NewPricingCalculator(opts ...Option) (*SimulatedTool, error) {
	cfg := Config{
		ID:          "pricing_calculator",
		Name:        "Pricing Calculator",
		Description: "Calculate pricing for products and services based on configuration options",
		Parameters: map[string]domain.ParameterSpec{
			"product_id":  {Type: "string", Description: "Product ID to calculate pricing for", Required: true},
			"users":       {Type: "integer", Description: "Number of users"},
			"term_length": {Type: "integer", Description: "Contract term length in months (12, 24, or 36)"},
			"tier":        {Type: "string", Description: "Product tier (e.g., 'standard', 'professional', 'enterprise')"},
		},
		ErrorRate: defaultErrorRate,
	}
	return NewSimulatedTool(cfg, func(params map[string]any) (any, error) {
		productID := strParam(params, "product_id")
		tiers, ok := perUserPrice[productID]
		if !ok {
			return nil, &BusinessError{Code: "ProductNotFound", Message: "No pricing for product " + productID}
		}

		tier := strParam(params, "tier")
		if tier == "" {
			tier = "standard"
		}
		basePrice, ok := tiers[tier]
		if !ok {
			return nil, &BusinessError{Code: domain.ErrCodeInvalidParameters, Message: "Unknown tier " + tier + " for product " + productID}
		}

		users := intParam(params, "users", 1)
		termLength := intParam(params, "term_length", 12)

		subtotal := basePrice * float64(users)
		discount := subtotal * termDiscount[termLength]
		total := subtotal - discount

		return map[string]any{
			"product_id":          productID,
			"tier":                tier,
			"users":               users,
			"term_length_months":  termLength,
			"base_price_per_user": basePrice,
			"subtotal":            subtotal,
			"term_discount":       discount,
			"total_price":         total,
			"currency":            "USD",
		}, nil
	}, opts...)
}

type order struct {
	OrderID  string `json:"order_id"`
	Customer string `json:"customer_id"`
	Product  string `json:"product_id"`
	Status   string `json:"status"`
	Placed   string `json:"placed"`
}

var orders = []order{
	{OrderID: "ORD-48213", Customer: "CUST-1001", Product: "data_insight", Status: "shipped", Placed: "2026-08-20"},
	{OrderID: "ORD-48214", Customer: "CUST-1002", Product: "cloud_suite", Status: "processing", Placed: "2026-08-28"},
}

// NewOrderManagement creates the order status and creation tool.
func NewOrderManagement(opts ...Option) (*SimulatedTool, error) {
	cfg := Config{
		ID:          "order_management",
		Name:        "Order Management",
		Description: "Check order status, create new orders, modify existing orders, and handle returns",
		Parameters: map[string]domain.ParameterSpec{
			"order_id":     {Type: "string", Description: "Order ID to look up"},
			"customer_id":  {Type: "string", Description: "Customer ID to look up orders for"},
			"status":       {Type: "string", Description: "Filter orders by status (e.g., 'pending', 'processing', 'shipped', 'delivered', 'cancelled')"},
			"create_order": {Type: "boolean", Description: "Whether to create a new order"},
			"product_id":   {Type: "string", Description: "Product ID for a new order"},
		},
		ErrorRate: defaultErrorRate,
	}
	return NewSimulatedTool(cfg, func(params map[string]any) (any, error) {
		if boolParam(params, "create_order") {
			customerID := strParam(params, "customer_id")
			productID := strParam(params, "product_id")
			if customerID == "" || productID == "" {
				return nil, &BusinessError{Code: domain.ErrCodeInvalidParameters, Message: "Creating an order requires customer_id and product_id"}
			}
			return map[string]any{
				"created":     true,
				"order_id":    "ORD-" + strings.TrimPrefix(customerID, "CUST-") + "0",
				"customer_id": customerID,
				"product_id":  productID,
				"status":      "pending",
			}, nil
		}

		if orderID := strParam(params, "order_id"); orderID != "" {
			for _, o := range orders {
				if o.OrderID == orderID {
					return map[string]any{"order": o}, nil
				}
			}
			return nil, &BusinessError{Code: "OrderNotFound", Message: "No order with ID " + orderID}
		}

		customerID := strParam(params, "customer_id")
		status := strParam(params, "status")
		var matches []order
		for _, o := range orders {
			if customerID != "" && o.Customer != customerID {
				continue
			}
			if status != "" && o.Status != status {
				continue
			}
			matches = append(matches, o)
		}
		return map[string]any{"matches": len(matches), "orders": matches}, nil
	}, opts...)
}

type ticket struct {
	TicketID string `json:"ticket_id"`
	Severity string `json:"severity"`
	Status   string `json:"status"`
	Summary  string `json:"summary"`
}

var openTickets = []ticket{
	{TicketID: "TCK-7301", Severity: "high", Status: "in_progress", Summary: "Nightly export job fails with timeout"},
}

// NewSupportTicket creates the support ticketing tool.
func NewSupportTicket(opts ...Option) (*SimulatedTool, error) {
	cfg := Config{
		ID:          "support_ticket",
		Name:        "Support Ticket",
		Description: "Look up existing support tickets or create new ones for customer issues",
		Parameters: map[string]domain.ParameterSpec{
			"ticket_id":         {Type: "string", Description: "Specific ticket ID to check"},
			"create_ticket":     {Type: "boolean", Description: "Whether to create a new ticket"},
			"issue_description": {Type: "string", Description: "Description of the issue for a new ticket"},
			"severity":          {Type: "string", Description: "Issue severity (e.g., 'low', 'medium', 'high', 'critical')"},
		},
		ErrorRate: defaultErrorRate,
	}
	return NewSimulatedTool(cfg, func(params map[string]any) (any, error) {
		if ticketID := strParam(params, "ticket_id"); ticketID != "" {
			for _, tk := range openTickets {
				if tk.TicketID == ticketID {
					return map[string]any{"ticket": tk}, nil
				}
			}
			return nil, &BusinessError{Code: "TicketNotFound", Message: "No ticket with ID " + ticketID}
		}

		if boolParam(params, "create_ticket") {
			description := strParam(params, "issue_description")
			if description == "" {
				return nil, &BusinessError{Code: domain.ErrCodeInvalidParameters, Message: "Creating a ticket requires issue_description"}
			}
			severity := strParam(params, "severity")
			if severity == "" {
				severity = "medium"
			}
			return map[string]any{
				"created":   true,
				"ticket_id": "TCK-7302",
				"severity":  severity,
				"status":    "open",
			}, nil
		}

		return map[string]any{"matches": len(openTickets), "tickets": openTickets}, nil
	}, opts...)
}

type document struct {
	DocumentID string `json:"document_id"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Summary    string `json:"summary"`
}

var documents = []document{
	{DocumentID: "DOC-201", Type: "technical_documentation", Title: "DataInsight deployment guide", Summary: "Step-by-step deployment covering sizing, networking, and warehouse connector setup."},
	{DocumentID: "DOC-202", Type: "legal_documentation", Title: "Master service agreement", Summary: "Standard contract terms including data processing addendum and uptime guarantee."},
	{DocumentID: "DOC-203", Type: "api_reference", Title: "Reporting API reference", Summary: "REST endpoints for exporting dashboards, schedules, and audit logs."},
}

// NewDocumentRetrieval creates the documentation retrieval tool.
func NewDocumentRetrieval(opts ...Option) (*SimulatedTool, error) {
	cfg := Config{
		ID:          "document_retrieval",
		Name:        "Document Retrieval",
		Description: "Retrieve company documentation including technical documentation, legal documents, and product guides",
		Parameters: map[string]domain.ParameterSpec{
			"document_type": {Type: "string", Description: "Type of document to retrieve (e.g., 'technical_documentation', 'legal_documentation', 'product_guide', 'api_reference')", Required: true},
			"keywords":      {Type: "array", Description: "Keywords to search for in documents", Items: map[string]string{"type": "string"}, Required: true},
		},
		ErrorRate: defaultErrorRate,
	}
	return NewSimulatedTool(cfg, func(params map[string]any) (any, error) {
		docType := strParam(params, "document_type")
		keywords := strSliceParam(params, "keywords")

		var matches []document
		for _, doc := range documents {
			if doc.Type != docType {
				continue
			}
			if len(keywords) == 0 {
				matches = append(matches, doc)
				continue
			}
			haystack := strings.ToLower(doc.Title + " " + doc.Summary)
			for _, kw := range keywords {
				if strings.Contains(haystack, strings.ToLower(kw)) {
					matches = append(matches, doc)
					break
				}
			}
		}
		return map[string]any{"matches": len(matches), "documents": matches}, nil
	}, opts...)
}

func nextBusinessDay(now time.Time) time.Time {
	next := now.AddDate(0, 0, 1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func parseTimeRange(timeRange string) (startHour, endHour int, err error) {
	var startMin, endMin int
	_, err = fmt.Sscanf(timeRange, "%d:%d-%d:%d", &startHour, &startMin, &endHour, &endMin)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time range format: %s, use format '09:00-17:00'", timeRange)
	}
	return startHour, endHour, nil
}

func strParam(params map[string]any, name string) string {
	if v, ok := params[name].(string); ok {
		return v
	}
	return ""
}

func intParam(params map[string]any, name string, fallback int) int {
	switch v := params[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func boolParam(params map[string]any, name string) bool {
	v, ok := params[name].(bool)
	return ok && v
}

func strSliceParam(params map[string]any, name string) []string {
	switch v := params[name].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
