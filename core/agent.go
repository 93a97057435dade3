package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"polycode/content-agent/lib"
)

const DefaultMaxToolRounds = 8

// AgentRunner is the contract the orchestrator and the surfaces depend on.
type AgentRunner[T any] interface {
	Run(ctx context.Context, prompt Prompt) (Result[T], error)
}

type RunnerConfig struct {
	Name         string
	LLM          LLM
	SystemPrompt string
	ToolServers  []ToolServer
	// InbuiltTools names tools from the process-wide ToolRegistry.
	InbuiltTools  []string
	Dialer        SessionDialer
	MaxToolRounds int
	Logger        *slog.Logger
}

type Result[T any] struct {
	Output    T     `json:"output"`
	Stats     Stats `json:"stats"`
	ToolCalls int   `json:"tool_calls"`
}

// Runner binds a model, a system instruction, an output type and optional
// tool servers into one callable unit. A Runner keeps no state between runs
// and may be reused sequentially or concurrently.
type Runner[T any] struct {
	name          string
	llm           LLM
	systemPrompt  string
	systemContext string
	servers       []ToolServer
	inbuilt       []string
	dialer        SessionDialer
	maxRounds     int
	logger        *slog.Logger
	validator     *lib.Validator
}

func NewRunner[T any](cfg RunnerConfig) (*Runner[T], error) {
	if cfg.LLM == nil {
		return nil, NewConfigError("runner requires a model", nil)
	}
	for i, s := range cfg.ToolServers {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("tool server %d: %w", i, err)
		}
	}
	if len(cfg.ToolServers) > 0 && cfg.Dialer == nil {
		return nil, NewConfigError("runner has tool servers but no session dialer", nil)
	}
	reg := GetToolRegistry()
	for _, name := range cfg.InbuiltTools {
		if reg.GetTool(name) == nil {
			return nil, NewConfigError(fmt.Sprintf("unknown inbuilt tool %q", name), nil)
		}
	}

	outputPrompt, err := GetOutputPrompt(new(T))
	if err != nil {
		return nil, NewConfigError("reflect output schema", err)
	}

	name := cfg.Name
	if name == "" {
		name = "agent"
	}
	maxRounds := cfg.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxToolRounds
	}
	logger := cfg.Logger
	if logger == nil {
		logger = lib.DiscardLogger()
	}

	return &Runner[T]{
		name:          name,
		llm:           cfg.LLM,
		systemPrompt:  cfg.SystemPrompt,
		systemContext: strings.TrimSpace(cfg.SystemPrompt) + "\n" + outputPrompt,
		servers:       append([]ToolServer(nil), cfg.ToolServers...),
		inbuilt:       append([]string(nil), cfg.InbuiltTools...),
		dialer:        cfg.Dialer,
		maxRounds:     maxRounds,
		logger:        logger.With("runner", name),
		validator:     lib.NewValidator(),
	}, nil
}

func (r *Runner[T]) Name() string {
	return r.name
}

// SystemPrompt returns the role instruction the runner was built with.
func (r *Runner[T]) SystemPrompt() string {
	return r.systemPrompt
}

type openSession struct {
	server  ToolServer
	session ToolSession
}

// Run executes one request. Tool server sessions are opened before the first
// model call and closed before Run returns, whatever the outcome.
func (r *Runner[T]) Run(ctx context.Context, prompt Prompt) (Result[T], error) {
	var result Result[T]

	text, err := prompt.Render()
	if err != nil {
		return result, NewValidationError("render prompt", err)
	}

	sessions, err := r.openSessions(ctx)
	if err != nil {
		return result, err
	}
	defer r.closeSessions(sessions)

	repo, err := r.buildToolRepo(ctx, sessions)
	if err != nil {
		return result, err
	}

	systemContext := r.systemContext
	if repo.Len() > 0 {
		systemContext += "\n" + GetToolPrompt(repo.ListToolDescriptors())
	}

	r.logger.Info("agent run started", "model", r.llm.Name(), "tool_servers", len(sessions), "tools", repo.Len())

	var history []ChatContent
	input := LLMInput{Text: text}
	for round := 0; ; round++ {
		if err := ctx.Err(); err != nil {
			return result, NewAgentError("run cancelled", err)
		}
		out, err := r.llm.Generate(ctx, systemContext, history, input)
		if err != nil {
			return result, NewAgentError(fmt.Sprintf("model %s call failed", r.llm.Name()), err)
		}
		result.Stats.Add(out.Stats)
		history = append(history, NewContent("user", input.Text), NewContent("assistant", out.Text))

		toolCalls, err := ExtractToolCalls(out.Text)
		if err != nil {
			return result, NewAgentError("malformed tool call", err)
		}
		if len(toolCalls) == 0 {
			output, err := decodeOutput[T](out.Text, r.validator)
			if err != nil {
				r.logger.Warn("model output rejected", "error", err)
				return result, err
			}
			result.Output = output
			r.logger.Info("agent run finished",
				"rounds", round+1,
				"tool_calls", result.ToolCalls,
				"input_tokens", result.Stats.InputTokenCount,
				"output_tokens", result.Stats.OutputTokenCount)
			return result, nil
		}
		if round >= r.maxRounds {
			return result, NewAgentError(fmt.Sprintf("tool call limit of %d rounds exceeded", r.maxRounds), nil)
		}

		results := make([]ToolResult, 0, len(toolCalls))
		for _, call := range toolCalls {
			r.logger.Debug("tool call", "tool", call.ToolName, "round", round)
			ret, err := r.executeTool(ctx, repo, call)
			if err != nil {
				ret = "error: " + err.Error()
			}
			results = append(results, ToolResult{ToolName: call.ToolName, Output: ret})
			result.ToolCalls++
		}
		b, err := json.Marshal(results)
		if err != nil {
			return result, NewAgentError("encode tool results", err)
		}
		input = LLMInput{Text: "<tool_result>" + string(b) + "</tool_result>"}
	}
}

func (r *Runner[T]) executeTool(ctx context.Context, repo *ToolRepo, call ToolCall) (string, error) {
	executor := repo.GetTool(call.ToolName)
	if executor == nil {
		return "", fmt.Errorf("tool %s not found", call.ToolName)
	}
	b, err := json.Marshal(call.Parameters)
	if err != nil {
		return "", err
	}
	return executor.Execute(ctx, string(b))
}

func (r *Runner[T]) openSessions(ctx context.Context) ([]openSession, error) {
	sessions := make([]openSession, 0, len(r.servers))
	for _, server := range r.servers {
		session, err := r.dialer(ctx, server)
		if err != nil {
			r.closeSessions(sessions)
			return nil, NewAgentError(fmt.Sprintf("connect tool server %s", server.Name()), err)
		}
		r.logger.Debug("tool server session opened", "server", server.Name())
		sessions = append(sessions, openSession{server: server, session: session})
	}
	return sessions, nil
}

func (r *Runner[T]) closeSessions(sessions []openSession) {
	for i := len(sessions) - 1; i >= 0; i-- {
		if err := sessions[i].session.Close(); err != nil {
			r.logger.Warn("close tool server session", "server", sessions[i].server.Name(), "error", err)
			continue
		}
		r.logger.Debug("tool server session closed", "server", sessions[i].server.Name())
	}
}

func (r *Runner[T]) buildToolRepo(ctx context.Context, sessions []openSession) (*ToolRepo, error) {
	repo := NewToolRepo(GetToolRegistry())
	for _, name := range r.inbuilt {
		if err := repo.RegisterInbuilt(name); err != nil {
			return nil, NewConfigError("register inbuilt tool", err)
		}
	}
	for _, s := range sessions {
		descs, err := s.session.ListTools(ctx)
		if err != nil {
			return nil, NewAgentError(fmt.Sprintf("list tools of %s", s.server.Name()), err)
		}
		for _, desc := range descs {
			desc.ServerName = s.server.Name()
			if !repo.RegisterRemote(desc, s.session) {
				r.logger.Warn("duplicate tool name ignored", "tool", desc.Name, "server", s.server.Name())
			}
		}
	}
	return repo, nil
}

// decodeOutput reads the final answer into T. The answer is the content of
// the <response> tags when present, otherwise the whole text; a surrounding
// markdown code fence is tolerated.
func decodeOutput[T any](text string, v *lib.Validator) (T, error) {
	var out T
	payload, ok := extractTagContent(text, "response")
	if !ok {
		payload = text
	}
	payload = stripCodeFence(payload)

	dec := json.NewDecoder(strings.NewReader(payload))
	if err := dec.Decode(&out); err != nil {
		return out, NewSchemaValidationError("model output is not valid JSON for the declared schema", text, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return out, NewSchemaValidationError("model output has trailing content after the JSON document", text, nil)
	}
	if err := v.ValidateStruct(&out); err != nil {
		return out, NewSchemaValidationError("model output does not match the declared schema", text, err)
	}
	return out, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
