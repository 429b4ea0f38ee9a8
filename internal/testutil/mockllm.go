// Package testutil provides deterministic fakes for model-dependent tests.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// ModelName is the reference under which the mock registers itself.
const ModelName = "mock/test-model"

// MockLLM provides deterministic model responses for testing. It matches
// the last user message against registered patterns and returns the
// corresponding response.
//
// A rule with tool requests drives a two-phase turn: the first model call
// returns the tool requests, and the follow-up call (carrying tool results
// in the conversation) returns the rule's text. This mirrors how a real
// model closes an agentic loop without looping until max turns.
//
// Thread-safe for concurrent use.
type MockLLM struct {
	mu       sync.Mutex
	rules    []mockRule
	fallback string
	calls    int
}

type mockRule struct {
	pattern  string            // substring match in user message, lowercase
	response string            // text response
	tools    []*ai.ToolRequest // tool calls to request first (nil = text only)
}

// NewMockLLM creates a mock with the given fallback response, returned when
// no pattern matches.
func NewMockLLM(fallback string) *MockLLM {
	return &MockLLM{fallback: fallback}
}

// AddResponse registers a pattern-response pair. Patterns are checked in
// registration order; first match wins.
func (m *MockLLM) AddResponse(pattern, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{
		pattern:  strings.ToLower(pattern),
		response: response,
	})
}

// AddToolResponse registers a pattern that first triggers the given tool
// calls and then, once their results are in the conversation, the text.
func (m *MockLLM) AddToolResponse(pattern string, tools []*ai.ToolRequest, textResponse string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{
		pattern:  strings.ToLower(pattern),
		response: textResponse,
		tools:    tools,
	})
}

// Calls returns how many times the model was invoked.
func (m *MockLLM) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Register registers the mock as a Genkit model under ModelName.
func (m *MockLLM) Register(g *genkit.Genkit) ai.Model {
	return genkit.DefineModel(g, ModelName, &ai.ModelOptions{
		Label: "Mock Test Model",
		Supports: &ai.ModelSupports{
			Multiturn:  true,
			Tools:      true,
			SystemRole: true,
		},
	}, m.generate)
}

func (m *MockLLM) generate(ctx context.Context, req *ai.ModelRequest, cb ai.ModelStreamCallback) (*ai.ModelResponse, error) {
	var userText string
	hasToolResults := false
	for i := len(req.Messages) - 1; i >= 0; i-- {
		switch req.Messages[i].Role {
		case ai.RoleUser:
			if userText == "" {
				userText = req.Messages[i].Text()
			}
		case ai.RoleTool:
			hasToolResults = true
		}
	}

	m.mu.Lock()
	m.calls++
	var matched *mockRule
	lower := strings.ToLower(userText)
	for i := range m.rules {
		if strings.Contains(lower, m.rules[i].pattern) {
			matched = &m.rules[i]
			break
		}
	}
	m.mu.Unlock()

	// Phase one of a tool rule: request the tools.
	if matched != nil && len(matched.tools) > 0 && !hasToolResults {
		var parts []*ai.Part
		for _, tr := range matched.tools {
			parts = append(parts, &ai.Part{
				Kind:        ai.PartToolRequest,
				ToolRequest: tr,
			})
		}
		return &ai.ModelResponse{
			Request: req,
			Message: &ai.Message{Role: ai.RoleModel, Content: parts},
		}, nil
	}

	responseText := m.fallback
	if matched != nil {
		responseText = matched.response
	}

	if cb != nil {
		if err := cb(ctx, &ai.ModelResponseChunk{
			Content: []*ai.Part{ai.NewTextPart(responseText)},
		}); err != nil {
			return nil, err
		}
	}

	return &ai.ModelResponse{
		Request: req,
		Message: &ai.Message{
			Role:    ai.RoleModel,
			Content: []*ai.Part{ai.NewTextPart(responseText)},
		},
	}, nil
}
