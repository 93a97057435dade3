package toolserver

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polycode/content-agent/core"
)

// childEnv turns the test binary into a stdio tool server. Dial must pass
// the descriptor env to the process for this to take effect.
const childEnv = "CONTENT_AGENT_TOOLSERVER_CHILD"

func TestMain(m *testing.M) {
	if os.Getenv(childEnv) == "1" {
		s, err := NewWebToolsServer()
		if err != nil {
			os.Exit(2)
		}
		if err := ServeStdio(s); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func dialAndUse(t *testing.T, desc core.ToolServer) {
	t.Helper()
	ctx := context.Background()

	session, err := Dial(ctx, desc)
	require.NoError(t, err)

	tools, err := session.ListTools(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{core.ToolSearchWeb, core.ToolScrapePage, core.ToolCurrentDate}, names)

	out, err := session.CallTool(ctx, core.ToolCurrentDate, map[string]any{"format": "2006"})
	require.NoError(t, err)
	assert.Contains(t, out, "currentTime")

	assert.NoError(t, session.Close())
}

func TestDialSSE(t *testing.T) {
	s, err := NewWebToolsServer()
	require.NoError(t, err)
	ts := server.NewTestServer(s)
	t.Cleanup(ts.Close)

	dialAndUse(t, core.ToolServer{
		Transport:  core.TransportSSE,
		Connection: core.URLConnection{URL: ts.URL + "/sse"},
	})
}

func TestDialStreamableHTTP(t *testing.T) {
	s, err := NewWebToolsServer()
	require.NoError(t, err)
	ts := httptest.NewServer(server.NewStreamableHTTPServer(s))
	t.Cleanup(ts.Close)

	dialAndUse(t, core.ToolServer{
		Transport:  core.TransportHTTP,
		Connection: core.URLConnection{URL: ts.URL + "/mcp"},
	})
}

func TestDialStdioPassesEnv(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	dialAndUse(t, core.ToolServer{
		Transport:  core.TransportStdio,
		Connection: core.StdioConnection{Command: exe, Args: []string{"-test.run=^$"}},
		Env:        map[string]string{childEnv: "1"},
	})
}

func TestDialUnreachableServer(t *testing.T) {
	ts := httptest.NewServer(nil)
	url := ts.URL + "/sse"
	ts.Close()

	_, err := Dial(context.Background(), core.ToolServer{
		Transport:  core.TransportSSE,
		Connection: core.URLConnection{URL: url},
	})
	assert.Error(t, err)
}
