package toolserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"polycode/content-agent/core"
)

// NewServer exposes inbuilt tools from the registry as an MCP server. With
// no names every registered tool is served.
func NewServer(registry *core.ToolRegistry, names ...string) (*server.MCPServer, error) {
	if len(names) == 0 {
		names = registry.Names()
	}

	s := server.NewMCPServer(
		"content-agent-tools",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	for _, name := range names {
		executor := registry.GetTool(name)
		if executor == nil {
			return nil, fmt.Errorf("tool %s not found", name)
		}
		desc := executor.GetToolDescriptor()
		s.AddTool(mcp.NewToolWithRawSchema(desc.Name, desc.Description, desc.Parameters), handlerFor(executor))
	}
	return s, nil
}

func handlerFor(executor core.ToolExecutor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, err := executor.Execute(ctx, string(args))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

// ServeStdio blocks serving s on stdin/stdout.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// NewWebToolsServer serves the web search, page scrape and current date tools.
func NewWebToolsServer() (*server.MCPServer, error) {
	return NewServer(core.GetToolRegistry(), core.ToolSearchWeb, core.ToolScrapePage, core.ToolCurrentDate)
}
