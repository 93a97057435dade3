// Package toolserver connects agent runs to MCP tool servers and serves the
// inbuilt tools as an MCP server of its own.
package toolserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"polycode/content-agent/core"
)

// Version is reported to tool servers during initialization.
var Version = "dev"

const clientName = "content-agent"

// Dial is the core.SessionDialer backed by mcp-go. The switch over the
// connection kind is exhaustive; stdio clients start their process on
// construction, URL clients are started explicitly.
func Dial(ctx context.Context, server core.ToolServer) (core.ToolSession, error) {
	if err := server.Validate(); err != nil {
		return nil, err
	}

	var (
		c     *client.Client
		err   error
		start bool
	)
	switch conn := server.Connection.(type) {
	case core.StdioConnection:
		c, err = client.NewStdioMCPClient(conn.Command, server.EnvList(), conn.Args...)
	case core.URLConnection:
		start = true
		switch server.Transport {
		case core.TransportHTTP:
			c, err = client.NewStreamableHttpClient(conn.URL)
		case core.TransportSSE:
			c, err = client.NewSSEMCPClient(conn.URL)
		default:
			return nil, core.NewConfigError(fmt.Sprintf("transport %s cannot use a URL connection", server.Transport), nil)
		}
	default:
		return nil, core.NewConfigError("tool server has no connection", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", server.Transport, err)
	}
	return Open(ctx, c, start)
}

// Open initializes an MCP client and wraps it as a session. The client is
// closed when initialization fails.
func Open(ctx context.Context, c *client.Client, start bool) (*Session, error) {
	if start {
		if err := c.Start(ctx); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("start client: %w", err)
		}
	}

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    clientName,
		Version: Version,
	}
	if _, err := c.Initialize(ctx, req); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("initialize: %w", err)
	}
	return &Session{client: c}, nil
}

// Session is an initialized MCP client.
type Session struct {
	client *client.Client
}

func (s *Session) ListTools(ctx context.Context) ([]core.ToolDescriptor, error) {
	var descs []core.ToolDescriptor
	req := mcp.ListToolsRequest{}
	for {
		res, err := s.client.ListTools(ctx, req)
		if err != nil {
			return nil, err
		}
		for _, t := range res.Tools {
			params, err := toolParameters(t)
			if err != nil {
				return nil, fmt.Errorf("tool %s schema: %w", t.Name, err)
			}
			descs = append(descs, core.ToolDescriptor{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			})
		}
		if res.NextCursor == "" {
			return descs, nil
		}
		req.Params.Cursor = res.NextCursor
	}
}

func toolParameters(t mcp.Tool) (json.RawMessage, error) {
	if len(t.RawInputSchema) > 0 {
		return t.RawInputSchema, nil
	}
	b, err := json.Marshal(t.InputSchema)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CallTool returns the text content of the result. A result flagged as an
// error is returned as a Go error.
func (s *Session) CallTool(ctx context.Context, name string, arguments map[string]any) (string, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = arguments

	res, err := s.client.CallTool(ctx, req)
	if err != nil {
		return "", err
	}
	text := contentText(res.Content)
	if res.IsError {
		return "", fmt.Errorf("tool %s failed: %s", name, text)
	}
	return text, nil
}

func contentText(contents []mcp.Content) string {
	parts := make([]string, 0, len(contents))
	for _, content := range contents {
		switch c := content.(type) {
		case mcp.TextContent:
			parts = append(parts, c.Text)
		case mcp.ImageContent:
			parts = append(parts, fmt.Sprintf("[image %s]", c.MIMEType))
		default:
			b, err := json.Marshal(c)
			if err == nil {
				parts = append(parts, string(b))
			}
		}
	}
	return strings.Join(parts, "\n")
}

func (s *Session) Close() error {
	return s.client.Close()
}
