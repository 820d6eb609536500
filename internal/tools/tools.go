// Package tools implements the MCP tool handlers. Handlers parse typed
// inputs, default the workspace and user identifiers, invoke the workspace
// service, and serialize results back to JSON tool content.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/graphmem/graphmem/internal/workspace"
)

// DefaultWorkspace is used when a tool call omits workspace_id.
const DefaultWorkspace = "default"

// GraphTools holds references needed by the graph tool handlers.
type GraphTools struct {
	Service *workspace.Service
}

func workspaceOrDefault(id string) string {
	if id == "" {
		return DefaultWorkspace
	}
	return id
}

// --- Result helpers ---

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
