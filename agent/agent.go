package agent

import (
	"context"

	"github.com/m4xw311/shortbot/errors"
	"github.com/m4xw311/shortbot/llm"
	"github.com/m4xw311/shortbot/session"
	"github.com/m4xw311/shortbot/tools"
)

type Mode string

const (
	ModeAuto   Mode = "auto"
	ModePrompt Mode = "prompt"
)

type ToolVerbosity string

const (
	ToolVerbosityNone ToolVerbosity = "none"
	ToolVerbosityInfo ToolVerbosity = "info"
	ToolVerbosityAll  ToolVerbosity = "all"
)

// Agent drives a conversation between the user, the model and the tools of
// its definition.
type Agent struct {
	Definition *Definition
	Session    *session.Session
	LLMClient  llm.LLMClient
	Tools      []tools.Tool
	Mode       Mode
	Verbosity  ToolVerbosity
}

// ProcessCallbacks lets the caller observe and steer a turn. This keeps the
// loop independent of how it is surfaced (terminal, tests).
type ProcessCallbacks struct {
	OnAssistantMessage func(message string)
	OnToolCall         func(toolCall session.ToolCall)
	OnToolResult       func(toolCall session.ToolCall, result string)
	ShouldExecuteTool  func(toolCall session.ToolCall) bool
	OnWarning          func(warning string)
}

// New creates an agent from its definition. Extra tools beyond the
// definition's own (e.g. from MCP servers) may be appended.
func New(def *Definition, sess *session.Session, client llm.LLMClient, mode Mode, verbosity ToolVerbosity, extraTools ...tools.Tool) *Agent {
	active := make([]tools.Tool, 0, len(def.Tools)+len(extraTools))
	active = append(active, def.Tools...)
	active = append(active, extraTools...)
	return &Agent{
		Definition: def,
		Session:    sess,
		LLMClient:  client,
		Tools:      active,
		Mode:       mode,
		Verbosity:  verbosity,
	}
}

// ProcessUserInput runs one user turn: model and tool rounds alternate until
// the model answers with text only.
func (a *Agent) ProcessUserInput(ctx context.Context, userInput string, callbacks ProcessCallbacks) error {
	a.Session.AddMessage(session.Message{Role: "user", Content: userInput})

	for {
		reply, err := a.LLMClient.Chat(ctx, a.messagesWithInstruction(), a.Tools)
		if err != nil {
			return errors.Wrapf(err, "LLM chat failed")
		}
		a.Session.AddMessage(*reply)

		if reply.Content != "" && callbacks.OnAssistantMessage != nil {
			callbacks.OnAssistantMessage(reply.Content)
		}

		if len(reply.ToolCalls) == 0 {
			break
		}

		for _, toolCall := range reply.ToolCalls {
			if callbacks.OnToolCall != nil {
				callbacks.OnToolCall(toolCall)
			}
			result := a.runTool(ctx, toolCall, callbacks)
			a.Session.AddMessage(session.Message{
				Role:      "tool",
				Content:   result,
				ToolCalls: []session.ToolCall{toolCall},
			})
			if callbacks.OnToolResult != nil {
				callbacks.OnToolResult(toolCall, result)
			}
		}
	}

	if err := a.Session.Save(); err != nil && callbacks.OnWarning != nil {
		callbacks.OnWarning("failed to save session: " + err.Error())
	}
	return nil
}

func (a *Agent) runTool(ctx context.Context, toolCall session.ToolCall, callbacks ProcessCallbacks) string {
	if a.Mode == ModePrompt && callbacks.ShouldExecuteTool != nil && !callbacks.ShouldExecuteTool(toolCall) {
		return "Tool execution declined by the user."
	}

	var tool tools.Tool
	for _, t := range a.Tools {
		if t.Name() == toolCall.Name {
			tool = t
			break
		}
	}
	if tool == nil {
		return "Error: tool '" + toolCall.Name + "' is not available."
	}

	result, err := tool.Execute(ctx, toolCall.Args)
	if err != nil {
		return "Error executing tool '" + toolCall.Name + "': " + err.Error()
	}
	return result
}

// messagesWithInstruction prefixes the transcript with the instruction as a
// system message for providers that take it in-band. The Gemini client skips
// system messages and uses its SystemInstruction instead.
func (a *Agent) messagesWithInstruction() []session.Message {
	messages := make([]session.Message, 0, len(a.Session.Messages)+1)
	messages = append(messages, session.Message{Role: "system", Content: a.Definition.Instruction})
	messages = append(messages, a.Session.Messages...)
	return messages
}
