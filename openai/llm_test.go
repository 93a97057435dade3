package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polycode/content-agent/core"
)

func TestGenerateSendsRunHistory(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "<response>{}</response>"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
		}`)
	}))
	defer srv.Close()

	llm, err := NewOpenAI("sk-test", srv.URL+"/", "gpt-4o-mini")
	require.NoError(t, err)

	out, err := llm.Generate(context.Background(), "system", []core.ChatContent{
		core.NewContent("user", "first"),
		core.NewContent("assistant", "tool call"),
	}, core.LLMInput{Text: "tool result"})
	require.NoError(t, err)

	assert.Equal(t, "<response>{}</response>", out.Text)
	assert.Equal(t, core.Stats{InputTokenCount: 12, OutputTokenCount: 4, TotalTokenCount: 16}, out.Stats)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 4)
	var roles []string
	for _, m := range messages {
		roles = append(roles, m.(map[string]any)["role"].(string))
	}
	assert.Equal(t, []string{"system", "user", "assistant", "user"}, roles)
}

func TestNewOpenAIRequiresKeyAndModel(t *testing.T) {
	_, err := NewOpenAI("", "", "gpt-4o")
	assert.Error(t, err)
	_, err = NewOpenAI("sk", "", "")
	assert.Error(t, err)
}
