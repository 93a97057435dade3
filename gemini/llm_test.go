package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polycode/content-agent/core"
)

func TestToContentsMapsRoles(t *testing.T) {
	contents := toContents([]core.ChatContent{
		core.NewContent("user", "question"),
		core.NewContent("assistant", "tool call"),
		core.NewContent("system", "ignored"),
	}, core.LLMInput{Text: "tool result"})

	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "tool call", contents[1].Parts[0].Text)
	assert.Equal(t, "user", contents[2].Role)
	assert.Equal(t, "tool result", contents[2].Parts[0].Text)
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "gemini-2.0-flash")
	assert.Error(t, err)
}
