// Package provider resolves model identifiers such as "openai:gpt-4o-mini"
// or "google-gla:gemini-2.0-flash" to a model backend.
package provider

import (
	"context"
	"fmt"
	"strings"

	"polycode/content-agent/config"
	"polycode/content-agent/core"
	"polycode/content-agent/gemini"
	"polycode/content-agent/openai"
)

const (
	OpenAI = "openai"
	Gemini = "gemini"
)

var prefixes = map[string]string{
	"openai":     OpenAI,
	"gemini":     Gemini,
	"google":     Gemini,
	"google-gla": Gemini,
}

// ParseModel splits a model identifier into provider and model name. Bare
// names are inferred from their family prefix.
func ParseModel(id string) (string, string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "", core.NewConfigError("model identifier is empty", nil)
	}
	if prefix, name, ok := strings.Cut(id, ":"); ok {
		p, known := prefixes[strings.ToLower(prefix)]
		if !known {
			return "", "", core.NewConfigError(fmt.Sprintf("unknown model provider %q", prefix), nil)
		}
		if name == "" {
			return "", "", core.NewConfigError(fmt.Sprintf("model identifier %q has no model name", id), nil)
		}
		return p, name, nil
	}
	switch {
	case strings.HasPrefix(id, "gpt-"), strings.HasPrefix(id, "o1"), strings.HasPrefix(id, "o3"), strings.HasPrefix(id, "o4"):
		return OpenAI, id, nil
	case strings.HasPrefix(id, "gemini-"):
		return Gemini, id, nil
	}
	return "", "", core.NewConfigError(fmt.Sprintf("cannot infer provider of model %q", id), nil)
}

// NewFactory returns a model constructor bound to cfg.
func NewFactory(cfg *config.Config) func(ctx context.Context, model string) (core.LLM, error) {
	return func(ctx context.Context, model string) (core.LLM, error) {
		return New(ctx, cfg, model)
	}
}

func New(ctx context.Context, cfg *config.Config, model string) (core.LLM, error) {
	p, name, err := ParseModel(model)
	if err != nil {
		return nil, err
	}
	var llm core.LLM
	switch p {
	case OpenAI:
		llm, err = openai.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, name)
	case Gemini:
		llm, err = gemini.NewGemini(ctx, cfg.GeminiAPIKey, name)
	}
	if err != nil {
		return nil, core.NewConfigError(fmt.Sprintf("model %s", model), err)
	}
	return llm, nil
}
