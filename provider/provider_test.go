package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polycode/content-agent/config"
	"polycode/content-agent/core"
)

func TestParseModel(t *testing.T) {
	cases := []struct {
		id, provider, name string
	}{
		{"openai:gpt-4o-mini", OpenAI, "gpt-4o-mini"},
		{"google-gla:gemini-2.0-flash", Gemini, "gemini-2.0-flash"},
		{"gemini:gemini-1.5-pro", Gemini, "gemini-1.5-pro"},
		{"gpt-4o", OpenAI, "gpt-4o"},
		{"o3-mini", OpenAI, "o3-mini"},
		{"gemini-2.0-flash-exp", Gemini, "gemini-2.0-flash-exp"},
	}
	for _, c := range cases {
		p, name, err := ParseModel(c.id)
		require.NoError(t, err, c.id)
		assert.Equal(t, c.provider, p, c.id)
		assert.Equal(t, c.name, name, c.id)
	}

	for _, id := range []string{"", "anthropic:claude", "openai:", "llama3"} {
		_, _, err := ParseModel(id)
		assert.True(t, core.IsConfigError(err), id)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), &config.Config{}, "openai:gpt-4o-mini")
	assert.True(t, core.IsConfigError(err))

	_, err = New(context.Background(), &config.Config{}, "google-gla:gemini-2.0-flash")
	assert.True(t, core.IsConfigError(err))
}

func TestNewOpenAI(t *testing.T) {
	llm, err := NewFactory(&config.Config{OpenAIAPIKey: "sk-test"})(context.Background(), "openai:gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "openai:gpt-4o-mini", llm.Name())
}
