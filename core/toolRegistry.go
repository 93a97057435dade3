package core

import (
	"sort"
	"sync"

	"polycode/content-agent/tools"
)

const (
	ToolCurrentDate = "current_date"
	ToolSearchWeb   = "search_web"
	ToolScrapePage  = "scrape_page"
)

var (
	registry     *ToolRegistry
	registryOnce sync.Once
)

type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]ToolExecutor
}

// GetToolRegistry returns the process-wide registry of inbuilt tools.
func GetToolRegistry() *ToolRegistry {
	registryOnce.Do(func() {
		registry = &ToolRegistry{tools: make(map[string]ToolExecutor)}
		registerInbuiltTools(registry, tools.NewWeb())
	})
	return registry
}

func registerInbuiltTools(tr *ToolRegistry, web *tools.Web) {
	mustRegister(tr, ToolCurrentDate, "get the current date and time", tools.CurrentDate)
	mustRegister(tr, ToolSearchWeb, "search the web and return result titles, URLs and snippets", web.Search)
	mustRegister(tr, ToolScrapePage, "fetch a web page and return its headline and text sections", web.Scrape)
}

func mustRegister(tr *ToolRegistry, name, description string, handler any) {
	executor, err := NewInbuiltToolExecutor(name, description, handler)
	if err != nil {
		panic(err)
	}
	tr.RegisterTool(name, executor)
}

func (tr *ToolRegistry) RegisterTool(name string, executor ToolExecutor) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.tools[name] = executor
}

func (tr *ToolRegistry) GetTool(name string) ToolExecutor {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return tr.tools[name]
}

// Names lists the registered tool names in sorted order.
func (tr *ToolRegistry) Names() []string {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	names := make([]string, 0, len(tr.tools))
	for name := range tr.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
