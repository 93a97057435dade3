package core

import (
	"context"
	"errors"
	"sync"
)

type scriptedLLM struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   int
	systems []string
	inputs  []string
	history [][]ChatContent
}

func (f *scriptedLLM) Name() string { return "fake:model" }

func (f *scriptedLLM) Generate(ctx context.Context, systemContext string, history []ChatContent, input LLMInput) (LLMOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.systems = append(f.systems, systemContext)
	f.inputs = append(f.inputs, input.Text)
	f.history = append(f.history, append([]ChatContent(nil), history...))
	if f.err != nil {
		return LLMOutput{}, f.err
	}
	if len(f.replies) == 0 {
		return LLMOutput{}, errors.New("no scripted reply left")
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return LLMOutput{Text: reply, Stats: Stats{InputTokenCount: 10, OutputTokenCount: 5, TotalTokenCount: 15}}, nil
}

type toolCallRecord struct {
	name string
	args map[string]any
}

type fakeSession struct {
	tools   []ToolDescriptor
	listErr error
	output  string
	callErr error
	calls   []toolCallRecord
	closed  bool
}

func (s *fakeSession) ListTools(ctx context.Context) ([]ToolDescriptor, error) {
	return s.tools, s.listErr
}

func (s *fakeSession) CallTool(ctx context.Context, name string, arguments map[string]any) (string, error) {
	s.calls = append(s.calls, toolCallRecord{name: name, args: arguments})
	return s.output, s.callErr
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

// fakeDialer hands out sessions in order; a nil entry fails the dial.
type fakeDialer struct {
	sessions []*fakeSession
	dialed   int
}

func (d *fakeDialer) Dial(ctx context.Context, server ToolServer) (ToolSession, error) {
	s := d.sessions[d.dialed]
	d.dialed++
	if s == nil {
		return nil, errors.New("connection refused")
	}
	return s, nil
}

func stdioServer(cmd string) ToolServer {
	return ToolServer{Transport: TransportStdio, Connection: StdioConnection{Command: cmd, Args: []string{}}}
}
