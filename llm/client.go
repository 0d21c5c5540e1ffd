package llm

import (
	"context"
	"fmt"

	"github.com/m4xw311/shortbot/session"
	"github.com/m4xw311/shortbot/tools"
)

// LLMClient is the interface for interacting with a Large Language Model.
// Implementations translate between the session message format and the
// provider's wire format. They report requested tool calls on the returned
// message instead of executing tools themselves; execution belongs to the
// agent loop.
type LLMClient interface {
	Chat(ctx context.Context, messages []session.Message, availableTools []tools.Tool) (*session.Message, error)
}

// MockLLMClient is a scriptable client for tests. If Responses is empty it
// parrots the last user message back.
type MockLLMClient struct {
	Responses []session.Message
	Calls     int
}

func (m *MockLLMClient) Chat(ctx context.Context, messages []session.Message, availableTools []tools.Tool) (*session.Message, error) {
	m.Calls++
	if len(m.Responses) > 0 {
		resp := m.Responses[0]
		m.Responses = m.Responses[1:]
		return &resp, nil
	}
	last := messages[len(messages)-1].Content
	return &session.Message{
		Role:    "assistant",
		Content: fmt.Sprintf("mock response to: %s", last),
	}, nil
}
