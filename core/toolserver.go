package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
	TransportSSE   Transport = "sse"
)

// ToolServerConfig is the serialized descriptor as it arrives from flags,
// files, the environment or request bodies.
type ToolServerConfig struct {
	Transport  string            `json:"transport"`
	Connection json.RawMessage   `json:"connection"`
	Env        map[string]string `json:"env,omitempty"`
}

// Connection is one of StdioConnection or URLConnection.
type Connection interface {
	connection()
}

type StdioConnection struct {
	Command string
	Args    []string
}

type URLConnection struct {
	URL string
}

func (StdioConnection) connection() {}
func (URLConnection) connection()   {}

// ToolServer is a validated descriptor. Build it with NewToolServer.
type ToolServer struct {
	Transport  Transport
	Connection Connection
	Env        map[string]string
}

// NewToolServer validates the connection shape against the transport.
func NewToolServer(cfg ToolServerConfig) (ToolServer, error) {
	raw := bytes.TrimSpace(cfg.Connection)
	switch Transport(cfg.Transport) {
	case TransportHTTP, TransportSSE:
		if len(raw) == 0 || raw[0] != '"' {
			return ToolServer{}, NewConfigError(fmt.Sprintf("%s transport requires a URL string connection", cfg.Transport), nil)
		}
		var u string
		if err := json.Unmarshal(raw, &u); err != nil {
			return ToolServer{}, NewConfigError("invalid URL connection", err)
		}
		return ToolServer{Transport: Transport(cfg.Transport), Connection: URLConnection{URL: u}, Env: cfg.Env}, nil
	case TransportStdio:
		conn, err := parseStdioConnection(raw)
		if err != nil {
			return ToolServer{}, err
		}
		return ToolServer{Transport: TransportStdio, Connection: conn, Env: cfg.Env}, nil
	default:
		return ToolServer{}, NewConfigError(fmt.Sprintf("unknown transport %q, expected stdio, http or sse", cfg.Transport), nil)
	}
}

func parseStdioConnection(raw []byte) (StdioConnection, error) {
	shapeErr := NewConfigError("stdio transport requires a [command, [arguments...]] connection", nil)
	if len(raw) == 0 || raw[0] != '[' {
		return StdioConnection{}, shapeErr
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) != 2 {
		return StdioConnection{}, shapeErr
	}
	cmd, args := bytes.TrimSpace(parts[0]), bytes.TrimSpace(parts[1])
	if len(cmd) == 0 || cmd[0] != '"' || len(args) == 0 || args[0] != '[' {
		return StdioConnection{}, shapeErr
	}
	var conn StdioConnection
	if err := json.Unmarshal(cmd, &conn.Command); err != nil {
		return StdioConnection{}, shapeErr
	}
	if err := json.Unmarshal(args, &conn.Args); err != nil {
		return StdioConnection{}, shapeErr
	}
	if conn.Args == nil {
		conn.Args = []string{}
	}
	return conn, nil
}

// NewToolServers validates every descriptor and stops at the first failure.
func NewToolServers(cfgs []ToolServerConfig) ([]ToolServer, error) {
	servers := make([]ToolServer, 0, len(cfgs))
	for i, cfg := range cfgs {
		s, err := NewToolServer(cfg)
		if err != nil {
			return nil, fmt.Errorf("tool server %d: %w", i, err)
		}
		servers = append(servers, s)
	}
	return servers, nil
}

// ParseToolServers decodes a JSON descriptor object or array.
func ParseToolServers(data []byte) ([]ToolServer, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	var cfgs []ToolServerConfig
	if data[0] == '[' {
		if err := json.Unmarshal(data, &cfgs); err != nil {
			return nil, NewConfigError("invalid tool server list", err)
		}
	} else {
		var cfg ToolServerConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, NewConfigError("invalid tool server descriptor", err)
		}
		cfgs = append(cfgs, cfg)
	}
	return NewToolServers(cfgs)
}

// Validate re-checks a descriptor that was built by hand rather than
// through NewToolServer.
func (s ToolServer) Validate() error {
	switch s.Connection.(type) {
	case StdioConnection:
		if s.Transport != TransportStdio {
			return NewConfigError(fmt.Sprintf("%s transport cannot use a stdio connection", s.Transport), nil)
		}
	case URLConnection:
		if s.Transport != TransportHTTP && s.Transport != TransportSSE {
			return NewConfigError(fmt.Sprintf("%s transport cannot use a URL connection", s.Transport), nil)
		}
	default:
		return NewConfigError("tool server has no connection", nil)
	}
	return nil
}

// Name identifies the server in logs without leaking URL paths, which may
// carry API keys.
func (s ToolServer) Name() string {
	switch c := s.Connection.(type) {
	case StdioConnection:
		return "stdio:" + c.Command
	case URLConnection:
		u, err := url.Parse(c.URL)
		if err != nil || u.Host == "" {
			return string(s.Transport) + ":<invalid url>"
		}
		return string(s.Transport) + ":" + u.Scheme + "://" + u.Host
	}
	return string(s.Transport)
}

// EnvList renders Env as sorted KEY=VALUE pairs.
func (s ToolServer) EnvList() []string {
	if len(s.Env) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.Env))
	for k, v := range s.Env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

func (s ToolServer) String() string {
	switch c := s.Connection.(type) {
	case StdioConnection:
		return fmt.Sprintf("%s %s", c.Command, strings.Join(c.Args, " "))
	default:
		return s.Name()
	}
}

// ToolSession is an established connection to one tool server. Sessions
// live for exactly one agent run.
type ToolSession interface {
	ListTools(ctx context.Context) ([]ToolDescriptor, error)
	CallTool(ctx context.Context, name string, arguments map[string]any) (string, error)
	Close() error
}

// SessionDialer establishes a session for a validated descriptor.
type SessionDialer func(ctx context.Context, server ToolServer) (ToolSession, error)
