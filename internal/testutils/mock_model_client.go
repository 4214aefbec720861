// Package testutils provides a scripted model client and scenario
// fixtures shared by the package test suites.
package testutils

import (
	"context"
	"sync"

	"github.com/olib-ai/bizcon/internal/domain"
	"github.com/olib-ai/bizcon/internal/ports"
)

// MockModelClient replays a fixed script of responses. Once the script is
// exhausted it keeps returning the final response, so scenarios with more
// turns than scripted responses still complete. Safe for concurrent use.
type MockModelClient struct {
	name string
	err  error

	mu        sync.Mutex
	responses []domain.ModelResponse
	index     int
	received  [][]domain.Message

	calls            int64
	promptTokens     int64
	completionTokens int64
	totalTokens      int64
}

var _ ports.ModelClient = (*MockModelClient)(nil)

// NewMockModelClient builds a client that replays the given responses in
// order.
func NewMockModelClient(name string, responses ...domain.ModelResponse) *MockModelClient {
	return &MockModelClient{name: name, responses: responses}
}

// FailWith makes every subsequent GenerateResponse return err.
func (m *MockModelClient) FailWith(err error) *MockModelClient {
	m.err = err
	return m
}

func (m *MockModelClient) Name() string { return m.name }

func (m *MockModelClient) GenerateResponse(_ context.Context, messages []domain.Message, _ []domain.ToolDefinition) (domain.ModelResponse, error) {
	if m.err != nil {
		return domain.ModelResponse{}, m.err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.received = append(m.received, append([]domain.Message(nil), messages...))

	if len(m.responses) == 0 {
		m.calls++
		return domain.ModelResponse{Content: "no scripted response"}, nil
	}

	response := m.responses[m.index]
	if m.index < len(m.responses)-1 {
		m.index++
	}

	m.calls++
	if response.Usage != nil {
		m.promptTokens += int64(response.Usage.PromptTokens)
		m.completionTokens += int64(response.Usage.CompletionTokens)
		m.totalTokens += int64(response.Usage.TotalTokens)
	}
	return response, nil
}

// Calls reports how many times GenerateResponse has been invoked.
func (m *MockModelClient) Calls() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Received returns the conversation history passed to the nth
// GenerateResponse call, or nil if that call never happened.
func (m *MockModelClient) Received(call int) []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if call < 0 || call >= len(m.received) {
		return nil
	}
	return m.received[call]
}

func (m *MockModelClient) UsageStats() domain.ModelUsageStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.ModelUsageStats{
		Model:            m.name,
		APICalls:         m.calls,
		PromptTokens:     m.promptTokens,
		CompletionTokens: m.completionTokens,
		TotalTokens:      m.totalTokens,
	}
}

func (m *MockModelClient) ResetStats() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = 0
	m.promptTokens = 0
	m.completionTokens = 0
	m.totalTokens = 0
	m.index = 0
}

// TextResponse builds a plain-content response with plausible usage and
// latency figures.
func TextResponse(content string) domain.ModelResponse {
	return domain.ModelResponse{
		Content: content,
		Usage:   &domain.Usage{PromptTokens: 200, CompletionTokens: 100, TotalTokens: 300},
		Metrics: domain.ResponseMetrics{ResponseTimeMs: 1200},
	}
}

// ToolCallResponse builds a response that requests a single tool call.
func ToolCallResponse(content, callID, toolID, arguments string) domain.ModelResponse {
	resp := TextResponse(content)
	resp.ToolCalls = []domain.ToolCallRequest{{
		ID: callID,
		Function: domain.FunctionCall{
			Name:      toolID,
			Arguments: arguments,
		},
	}}
	return resp
}
