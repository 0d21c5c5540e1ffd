package tools

import (
	"context"
	"strings"

	"github.com/m4xw311/shortbot/errors"
	"github.com/m4xw311/shortbot/tools/mcp"
)

// Schema describes a tool's parameters in JSON-schema shape so LLM clients
// can send real function declarations instead of an opaque object.
type Schema struct {
	Properties map[string]Property
	Required   []string
}

// Property is a single named parameter of a tool.
type Property struct {
	Type        string
	Description string
}

// Tool defines the interface for any capability the agent can invoke.
type Tool interface {
	Name() string
	Description() string
	Schema() *Schema
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
}

// Registry holds all available tools by name.
type Registry struct {
	tools      map[string]Tool
	mcpClients map[string]*mcp.Client
}

// NewRegistry creates a registry populated with the built-in shortener tools.
func NewRegistry() *Registry {
	r := &Registry{
		tools:      make(map[string]Tool),
		mcpClients: make(map[string]*mcp.Client),
	}
	r.Register(&CharacterCountTool{})
	r.Register(&JSONFormatTool{})
	return r
}

func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// AttachMCPServer starts the given MCP server and registers every tool it
// advertises.
func (r *Registry) AttachMCPServer(name, command string, args []string) error {
	client, err := mcp.NewClient(name, command, args)
	if err != nil {
		return err
	}
	r.mcpClients[name] = client
	for _, t := range client.Tools() {
		r.Register(&mcpTool{t})
	}
	return nil
}

// Resolve returns the tool instances for the requested names. A name of the
// form "<server>:*" expands to every registered tool of that MCP server.
func (r *Registry) Resolve(names []string) ([]Tool, error) {
	var resolved []Tool
	for _, name := range names {
		if server, ok := strings.CutSuffix(name, ":*"); ok {
			client, found := r.mcpClients[server]
			if !found {
				return nil, errors.New("MCP server '%s' is not attached", server)
			}
			for _, t := range client.Tools() {
				resolved = append(resolved, &mcpTool{t})
			}
			continue
		}
		t, ok := r.Get(name)
		if !ok {
			return nil, errors.New("tool '%s' is not registered", name)
		}
		resolved = append(resolved, t)
	}
	return resolved, nil
}

// Close shuts down any attached MCP servers.
func (r *Registry) Close() {
	for _, client := range r.mcpClients {
		client.Close()
	}
}

// mcpTool adapts an MCP server tool to the Tool interface. MCP servers own
// their parameter schemas, so Schema reports nil and LLM clients fall back to
// a permissive object declaration.
type mcpTool struct {
	tool *mcp.Tool
}

func (t *mcpTool) Name() string        { return t.tool.Name() }
func (t *mcpTool) Description() string { return t.tool.Description() }
func (t *mcpTool) Schema() *Schema     { return nil }

func (t *mcpTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	return t.tool.Call(ctx, args)
}
