package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/a2a-helpdesk/pkg/provider"
)

/*
Toolset is the agent side of an MCP server. It connects on first use,
describes the server's tools in provider terms, and executes the calls a
model asks for.
*/
type Toolset struct {
	mu      sync.Mutex
	url     string
	conn    *client.Client
	dial    func() (*client.Client, error)
	started bool
}

// NewToolset targets an MCP server speaking streamable HTTP at url.
func NewToolset(url string) *Toolset {
	return &Toolset{
		url: url,
		dial: func() (*client.Client, error) {
			return client.NewStreamableHttpClient(url)
		},
	}
}

// NewToolsetFromClient wraps an existing, not yet started, MCP client.
func NewToolsetFromClient(conn *client.Client) *Toolset {
	return &Toolset{
		url: "in-process",
		dial: func() (*client.Client, error) {
			return conn, nil
		},
	}
}

func (toolset *Toolset) connect(ctx context.Context) (*client.Client, error) {
	toolset.mu.Lock()
	defer toolset.mu.Unlock()

	if toolset.started {
		return toolset.conn, nil
	}

	conn, err := toolset.dial()

	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client for %s: %w", toolset.url, err)
	}

	if err := conn.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start MCP client for %s: %w", toolset.url, err)
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "a2a-helpdesk",
		Version: "0.1.0",
	}
	initRequest.Params.Capabilities = mcp.ClientCapabilities{}

	serverInfo, err := conn.Initialize(ctx, initRequest)

	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize MCP session with %s: %w", toolset.url, err)
	}

	log.Info(
		"connected to MCP server",
		"url", toolset.url,
		"server", serverInfo.ServerInfo.Name,
		"version", serverInfo.ServerInfo.Version,
	)

	toolset.conn = conn
	toolset.started = true

	return conn, nil
}

// Tools lists the server's tools as definitions a provider can offer.
func (toolset *Toolset) Tools(ctx context.Context) ([]provider.ToolDefinition, error) {
	conn, err := toolset.connect(ctx)

	if err != nil {
		return nil, err
	}

	result, err := conn.ListTools(ctx, mcp.ListToolsRequest{})

	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	definitions := make([]provider.ToolDefinition, 0, len(result.Tools))

	for _, tool := range result.Tools {
		parameters, err := inputSchema(tool)

		if err != nil {
			return nil, err
		}

		definitions = append(definitions, provider.ToolDefinition{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  parameters,
		})
	}

	return definitions, nil
}

/*
Call executes a tool with JSON-encoded arguments. A result flagged as an
error is not a Go error: its text comes back prefixed so the model can
read it and recover. The boolean reports that flag.
*/
func (toolset *Toolset) Call(ctx context.Context, name, args string) (string, bool, error) {
	conn, err := toolset.connect(ctx)

	if err != nil {
		return "", false, err
	}

	arguments := map[string]any{}

	if strings.TrimSpace(args) != "" {
		if err := json.Unmarshal([]byte(args), &arguments); err != nil {
			return "", false, fmt.Errorf("failed to unmarshal tool arguments '%s': %w", args, err)
		}
	}

	log.Info("calling tool", "tool", name, "args", arguments)

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = arguments

	result, err := conn.CallTool(ctx, request)

	if err != nil {
		return "", false, fmt.Errorf("failed to call tool %s: %w", name, err)
	}

	text := resultText(result)

	if result.IsError {
		return "tool error: " + text, true, nil
	}

	return text, false, nil
}

func (toolset *Toolset) Close() error {
	toolset.mu.Lock()
	defer toolset.mu.Unlock()

	if !toolset.started {
		return nil
	}

	toolset.started = false

	return toolset.conn.Close()
}

func inputSchema(tool mcp.Tool) (map[string]any, error) {
	raw, err := json.Marshal(tool)

	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool %s: %w", tool.Name, err)
	}

	var shape struct {
		InputSchema map[string]any `json:"inputSchema"`
	}

	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, fmt.Errorf("failed to read input schema of %s: %w", tool.Name, err)
	}

	return shape.InputSchema, nil
}

func resultText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "[empty tool result]"
	}

	parts := make([]string, 0, len(result.Content))

	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			parts = append(parts, text.Text)
			continue
		}

		raw, err := json.Marshal(content)

		if err != nil {
			log.Warn("failed to marshal tool result content", "error", err)
			continue
		}

		parts = append(parts, string(raw))
	}

	return strings.Join(parts, "\n")
}
