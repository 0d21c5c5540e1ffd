package mcp

import (
	"context"
	"os"
	"os/exec"

	"github.com/m4xw311/shortbot/errors"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Client manages the connection to a single MCP server subprocess and the
// tools it advertises.
type Client struct {
	Name  string
	cmd   *exec.Cmd
	conn  *mcpsdk.ClientSession
	tools []*Tool
}

// NewClient starts the MCP server subprocess, connects over stdio and
// discovers the tools the server provides.
func NewClient(name, command string, args []string) (*Client, error) {
	cmd := exec.Command(command, args...)
	cmd.Stderr = os.Stderr

	ctx := context.Background()
	mcpClient := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "shortbot", Version: "v0.1.0"}, nil)
	conn, err := mcpClient.Connect(ctx, mcpsdk.NewCommandTransport(cmd))
	if err != nil {
		cmd.Process.Kill()
		return nil, errors.Wrapf(err, "failed to connect to MCP server '%s'", name)
	}

	client := &Client{Name: name, cmd: cmd, conn: conn}
	params := &mcpsdk.ListToolsParams{}
	for {
		list, err := conn.ListTools(ctx, params)
		if err != nil {
			cmd.Process.Kill()
			return nil, errors.Wrapf(err, "failed to list tools from MCP server '%s'", name)
		}
		for _, t := range list.Tools {
			client.tools = append(client.tools, &Tool{
				server:      name,
				name:        t.Name,
				description: t.Description,
				client:      client,
			})
		}
		if list.NextCursor == "" {
			break
		}
		params.Cursor = list.NextCursor
	}
	return client, nil
}

// Tools returns every tool discovered on this server.
func (c *Client) Tools() []*Tool {
	return c.tools
}

// Close terminates the MCP server subprocess.
func (c *Client) Close() error {
	if c.conn != nil {
		c.conn.Close()
	}
	if c.cmd != nil && c.cmd.Process != nil {
		return c.cmd.Process.Kill()
	}
	return nil
}

// Tool is a single capability exported by an MCP server.
type Tool struct {
	server      string
	name        string
	description string
	client      *Client
}

func (t *Tool) Name() string { return t.name }

func (t *Tool) Description() string { return t.description }

// Call sends the arguments to the MCP server and concatenates the text
// content of the result.
func (t *Tool) Call(ctx context.Context, args map[string]interface{}) (string, error) {
	result, err := t.client.conn.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      t.name,
		Arguments: args,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to call MCP tool '%s:%s'", t.server, t.name)
	}
	var out string
	for _, c := range result.Content {
		if text, ok := c.(*mcpsdk.TextContent); ok {
			out += text.Text
		}
	}
	return out, nil
}
