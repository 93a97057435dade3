package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"polycode/content-agent/core"
)

const (
	DefaultModel     = "openai:gpt-4o-mini"
	DefaultOutputDir = "./outputs"
	DefaultPort      = ":8000"
	DefaultLogLevel  = "info"
)

type Config struct {
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	GeminiAPIKey    string
	FirecrawlAPIKey string
	Model           string
	ToolServers     []core.ToolServer
	OutputDir       string
	MaxToolRounds   int
	Port            string
	LogLevel        string
}

// Load reads .env (when present) and the process environment once.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a getenv-style lookup.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key string) string {
		return strings.TrimSpace(getenv(key))
	}

	cfg := &Config{
		OpenAIAPIKey:    get("OPENAI_API_KEY"),
		OpenAIBaseURL:   get("OPENAI_BASE_URL"),
		GeminiAPIKey:    firstNonEmpty(get("GEMINI_API_KEY"), get("GOOGLE_API_KEY")),
		FirecrawlAPIKey: get("FIRECRAWL_API_KEY"),
		Model:           firstNonEmpty(get("CONTENT_AGENT_MODEL"), DefaultModel),
		OutputDir:       firstNonEmpty(get("CONTENT_AGENT_OUTPUT_DIR"), DefaultOutputDir),
		MaxToolRounds:   core.DefaultMaxToolRounds,
		Port:            normalizePort(get("PORT")),
		LogLevel:        firstNonEmpty(get("LOG_LEVEL"), DefaultLogLevel),
	}

	if raw := get("CONTENT_AGENT_MAX_TOOL_ROUNDS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, core.NewConfigError(fmt.Sprintf("CONTENT_AGENT_MAX_TOOL_ROUNDS must be a positive integer, got %q", raw), err)
		}
		cfg.MaxToolRounds = n
	}

	if raw := get("CONTENT_AGENT_TOOL_SERVERS"); raw != "" {
		servers, err := core.ParseToolServers([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("CONTENT_AGENT_TOOL_SERVERS: %w", err)
		}
		cfg.ToolServers = servers
	}
	return cfg, nil
}

// FirecrawlServer is the hosted Firecrawl MCP endpoint for the configured key.
func (c *Config) FirecrawlServer() (core.ToolServer, bool) {
	if c.FirecrawlAPIKey == "" {
		return core.ToolServer{}, false
	}
	return core.ToolServer{
		Transport:  core.TransportSSE,
		Connection: core.URLConnection{URL: fmt.Sprintf("https://mcp.firecrawl.dev/%s/sse", c.FirecrawlAPIKey)},
	}, true
}

// LoadToolServersFile reads a descriptor object or list from a .json, .yaml
// or .yml file.
func LoadToolServersFile(path string) ([]core.ToolServer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewConfigError("read tool server file", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return core.ParseToolServers(data)
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, core.NewConfigError("invalid tool server yaml", err)
		}
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, core.NewConfigError("invalid tool server yaml", err)
		}
		return core.ParseToolServers(b)
	default:
		return nil, core.NewConfigError(fmt.Sprintf("unsupported tool server file %s", path), nil)
	}
}

func normalizePort(port string) string {
	if port == "" {
		return DefaultPort
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
