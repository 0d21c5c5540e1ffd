package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDir is where local chat transcripts are stored, relative to the
// working directory.
const DefaultDir = ".shortbot/sessions"

// ToolCall records a single tool invocation requested by the model.
type ToolCall struct {
	ToolCallID string                 `json:"tool_call_id,omitempty"`
	Name       string                 `json:"name"`
	Args       map[string]interface{} `json:"args,omitempty"`
}

// Message is one entry in a conversation transcript.
type Message struct {
	Role      string     `json:"role"` // "user", "assistant", "system" or "tool"
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Session is a locally persisted conversation with the agent. Remote agent
// engine sessions are a separate concept and never touch disk here.
type Session struct {
	Name      string    `json:"name"`
	Mode      string    `json:"mode,omitempty"`
	Verbosity string    `json:"tool_verbosity,omitempty"`
	Messages  []Message `json:"messages"`
	path      string
}

// New creates a new session stored under dir. An empty dir uses DefaultDir.
func New(dir, name string) (*Session, error) {
	path, err := sessionPath(dir, name)
	if err != nil {
		return nil, err
	}
	return &Session{Name: name, Messages: []Message{}, path: path}, nil
}

// Load reads an existing session from disk.
func Load(dir, name string) (*Session, error) {
	path, err := sessionPath(dir, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read session file %s: %w", path, err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("could not parse session file %s: %w", path, err)
	}
	s.path = path
	return &s, nil
}

// Save writes the current session state to disk.
func (s *Session) Save() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}
	return os.WriteFile(s.path, data, 0644)
}

// AddMessage appends a message to the session history.
func (s *Session) AddMessage(msg Message) {
	s.Messages = append(s.Messages, msg)
}

func sessionPath(dir, name string) (string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create session directory: %w", err)
	}
	return filepath.Join(dir, fmt.Sprintf("%s.json", name)), nil
}
