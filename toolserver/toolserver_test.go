package toolserver

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polycode/content-agent/core"
)

func openInProcess(t *testing.T, s *server.MCPServer) *Session {
	t.Helper()
	c, err := client.NewInProcessClient(s)
	require.NoError(t, err)
	session, err := Open(context.Background(), c, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestWebToolsServerListsInbuiltTools(t *testing.T) {
	s, err := NewWebToolsServer()
	require.NoError(t, err)
	session := openInProcess(t, s)

	tools, err := session.ListTools(context.Background())
	require.NoError(t, err)

	byName := map[string]core.ToolDescriptor{}
	for _, tool := range tools {
		byName[tool.Name] = tool
	}
	require.Len(t, byName, 3)
	assert.Contains(t, string(byName[core.ToolSearchWeb].Parameters), "query")
	assert.Contains(t, string(byName[core.ToolScrapePage].Parameters), "url")
	assert.NotEmpty(t, byName[core.ToolCurrentDate].Description)
}

func TestSessionCallsInbuiltTool(t *testing.T) {
	s, err := NewServer(core.GetToolRegistry(), core.ToolCurrentDate, core.ToolSearchWeb)
	require.NoError(t, err)
	session := openInProcess(t, s)

	out, err := session.CallTool(context.Background(), core.ToolCurrentDate, map[string]any{"format": "2006"})
	require.NoError(t, err)
	assert.Contains(t, out, "currentTime")

	out, err = session.CallTool(context.Background(), core.ToolSearchWeb, map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, out, "query is required")

	_, err = session.CallTool(context.Background(), "does_not_exist", nil)
	assert.Error(t, err)
}

func TestSessionReportsToolErrors(t *testing.T) {
	s := server.NewMCPServer("test", "1.0", server.WithToolCapabilities(true))
	s.AddTool(mcp.NewTool("fail", mcp.WithDescription("always fails")), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("upstream unavailable"), nil
	})
	s.AddTool(mcp.NewTool("multi"), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent("a"), mcp.NewTextContent("b")}}, nil
	})
	session := openInProcess(t, s)

	_, err := session.CallTool(context.Background(), "fail", nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "upstream unavailable")

	out, err := session.CallTool(context.Background(), "multi", nil)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", out)
}

func TestNewServerRejectsUnknownTool(t *testing.T) {
	_, err := NewServer(core.GetToolRegistry(), "teleport")
	assert.Error(t, err)
}

func TestDialRejectsInvalidDescriptor(t *testing.T) {
	_, err := Dial(context.Background(), core.ToolServer{Transport: core.TransportHTTP, Connection: core.StdioConnection{Command: "x"}})
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))

	_, err = Dial(context.Background(), core.ToolServer{Transport: core.TransportSSE})
	assert.True(t, core.IsConfigError(err))
}
