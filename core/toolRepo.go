package core

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
)

type ToolExecutor interface {
	GetName() string
	GetDescription() string
	Execute(ctx context.Context, input string) (string, error)
	GetToolDescriptor() ToolDescriptor
}

func NewToolRepo(registry *ToolRegistry) *ToolRepo {
	return &ToolRepo{
		registry: registry,
		tools:    make(map[string]ToolExecutor),
	}
}

// ToolRepo holds the tools visible to one agent run.
type ToolRepo struct {
	registry *ToolRegistry
	tools    map[string]ToolExecutor
	order    []string
}

func (repo *ToolRepo) add(executor ToolExecutor) bool {
	if _, exists := repo.tools[executor.GetName()]; exists {
		return false
	}
	repo.tools[executor.GetName()] = executor
	repo.order = append(repo.order, executor.GetName())
	return true
}

func (repo *ToolRepo) RegisterInbuilt(name string) error {
	tool := repo.registry.GetTool(name)
	if tool == nil {
		return fmt.Errorf("tool %s not found", name)
	}
	if !repo.add(tool) {
		return fmt.Errorf("tool %s already registered", name)
	}
	return nil
}

// RegisterRemote exposes a tool served by an open session. It reports false
// when another server already provides a tool with the same name.
func (repo *ToolRepo) RegisterRemote(desc ToolDescriptor, session ToolSession) bool {
	return repo.add(NewRemoteToolExecutor(desc, session))
}

func (repo *ToolRepo) ListToolDescriptors() []ToolDescriptor {
	list := make([]ToolDescriptor, 0, len(repo.order))
	for _, name := range repo.order {
		list = append(list, repo.tools[name].GetToolDescriptor())
	}
	return list
}

func (repo *ToolRepo) GetTool(name string) ToolExecutor {
	return repo.tools[name]
}

func (repo *ToolRepo) Len() int {
	return len(repo.order)
}

func NewRemoteToolExecutor(desc ToolDescriptor, session ToolSession) ToolExecutor {
	return &RemoteToolExecutor{Descriptor: desc, session: session}
}

// RemoteToolExecutor forwards calls to a tool server session.
type RemoteToolExecutor struct {
	Descriptor ToolDescriptor
	session    ToolSession
}

func (r *RemoteToolExecutor) GetName() string {
	return r.Descriptor.Name
}

func (r *RemoteToolExecutor) GetDescription() string {
	return r.Descriptor.Description
}

func (r *RemoteToolExecutor) Execute(ctx context.Context, input string) (string, error) {
	args := map[string]any{}
	if input != "" {
		if err := json.Unmarshal([]byte(input), &args); err != nil {
			return "", fmt.Errorf("failed to unmarshal JSON input: %w", err)
		}
	}
	return r.session.CallTool(ctx, r.Descriptor.Name, args)
}

func (r *RemoteToolExecutor) GetToolDescriptor() ToolDescriptor {
	return r.Descriptor
}

// NewInbuiltToolExecutor wraps a func(context.Context, In) (Out, error) as a
// tool whose parameter schema is reflected from In.
func NewInbuiltToolExecutor(name string, description string, handler any) (ToolExecutor, error) {
	handlerValue := reflect.ValueOf(handler)
	handlerType := handlerValue.Type()

	if handlerType.Kind() != reflect.Func {
		return nil, fmt.Errorf("handler is not a function")
	}
	if handlerType.NumIn() != 2 {
		return nil, fmt.Errorf("handler function must have two parameters")
	}
	if handlerType.NumOut() != 2 {
		return nil, fmt.Errorf("handler function must have two return values")
	}
	inputType := handlerType.In(1)

	schema, err := GetSchema(reflect.New(inputType).Interface())
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	return &InbuiltToolExecutor{
		toolDescriptor: ToolDescriptor{
			Name:        name,
			Description: description,
			Parameters:  json.RawMessage(b),
			Inbuilt:     true,
		},
		inputType: inputType,
		handler:   handlerValue,
	}, nil
}

type InbuiltToolExecutor struct {
	toolDescriptor ToolDescriptor
	inputType      reflect.Type
	handler        reflect.Value
}

func (i *InbuiltToolExecutor) GetName() string {
	return i.toolDescriptor.Name
}

func (i *InbuiltToolExecutor) GetDescription() string {
	return i.toolDescriptor.Description
}

func (i *InbuiltToolExecutor) GetToolDescriptor() ToolDescriptor {
	return i.toolDescriptor
}

// Execute decodes input into the handler's parameter type and returns the
// handler result as JSON. Handler errors are returned as result text so the
// model can react to them.
func (i *InbuiltToolExecutor) Execute(ctx context.Context, input string) (string, error) {
	inputPtr := reflect.New(i.inputType)
	if input != "" {
		if err := json.Unmarshal([]byte(input), inputPtr.Interface()); err != nil {
			return "", fmt.Errorf("failed to unmarshal JSON input: %w", err)
		}
	}

	results := i.handler.Call([]reflect.Value{reflect.ValueOf(ctx), inputPtr.Elem()})

	if errInterface := results[1].Interface(); errInterface != nil {
		err, ok := errInterface.(error)
		if !ok {
			return "", fmt.Errorf("handler function's second return value is not an error")
		}
		return "error: " + err.Error(), nil
	}

	b, err := json.Marshal(results[0].Interface())
	if err != nil {
		return "", err
	}
	return string(b), nil
}
