package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polycode/content-agent/config"
	"polycode/content-agent/core"
)

const (
	articleReply = `<response>{"headline":"Headline","teaser":"Teaser","body":[{"subheadline":"Part","text":"Body."}]}</response>`
	outlineReply = `<response>{"paragraphs":[{"subheadline":"Intro","text":"Summary."}]}</response>`
	reviewsReply = `<response>[{"metadata":{},"body":[{"text":"Great."}]}]</response>`
)

type scriptedLLM struct {
	mu      sync.Mutex
	replies []string
	inputs  []string
}

func (f *scriptedLLM) Name() string { return "fake" }

func (f *scriptedLLM) Generate(ctx context.Context, systemContext string, history []core.ChatContent, input core.LLMInput) (core.LLMOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input.Text)
	if len(f.replies) == 0 {
		return core.LLMOutput{}, errors.New("no reply scripted")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return core.LLMOutput{Text: reply}, nil
}

func run(t *testing.T, stdin string, llm *scriptedLLM, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &App{
		Config: &config.Config{Model: config.DefaultModel, OutputDir: t.TempDir(), LogLevel: "error"},
		NewLLM: func(ctx context.Context, model string) (core.LLM, error) { return llm, nil },
		In:     strings.NewReader(stdin),
		Out:    &out,
		Err:    io.Discard,
		Now:    func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
	root := NewRootCommand(app)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func sourceFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.md")
	require.NoError(t, os.WriteFile(path, []byte("# Source\n\nSome text.\n"), 0o644))
	return path
}

func TestFromFileInteractiveLoop(t *testing.T) {
	llm := &scriptedLLM{replies: []string{articleReply}}
	stdin := "missing.json\n" + sourceFile(t) + "\nsummarize\nexit\n"

	out, err := run(t, stdin, llm, "from-file")
	require.NoError(t, err)
	assert.Contains(t, out, "File does not exist. Please try again.")
	assert.Contains(t, out, "# Headline\n\n*Teaser*\n\n## Part\nBody.\n")
	require.Len(t, llm.inputs, 1)
	assert.Contains(t, llm.inputs[0], `"user_prompt": "summarize"`)
	assert.Contains(t, llm.inputs[0], `"headline": "Source"`)
}

func TestFromFileRetriesAfterModelError(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"not json", articleReply}}
	stdin := sourceFile(t) + "\nfirst\nsecond\n"

	out, err := run(t, stdin, llm, "from-file")
	require.NoError(t, err)
	assert.Contains(t, out, "Error: schema_validation_error")
	assert.Contains(t, out, "# Headline")
}

func TestFromFileWritesToFile(t *testing.T) {
	dir := t.TempDir()
	llm := &scriptedLLM{replies: []string{articleReply}}

	out, err := run(t, "summarize\n", llm, "from-file", "--source", sourceFile(t), "--write-to-file", "--output-dir", dir, "--format", "html")
	require.NoError(t, err)

	path := filepath.Join(dir, "2024-01-02_03-04-05.html")
	assert.Contains(t, out, "Output written to "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<h1>Headline</h1>")
}

func TestFromFileOutlineFirst(t *testing.T) {
	llm := &scriptedLLM{replies: []string{`<response>{"paragraphs":1}</response>`, outlineReply, articleReply}}
	stdin := sourceFile(t) + "\nbad outline\ngood outline\nwrite it\nexit\n"

	out, err := run(t, stdin, llm, "from-file", "--outline-first")
	require.NoError(t, err)
	assert.Contains(t, out, "Error: schema_validation_error")
	assert.Contains(t, out, "## Intro\nSummary.")
	assert.Contains(t, out, "# Headline")
	require.Len(t, llm.inputs, 3)
	assert.Contains(t, llm.inputs[2], `"user_prompt": "write it"`)
	assert.Contains(t, llm.inputs[2], `"outline"`)
}

func TestCreateOutlineOnly(t *testing.T) {
	llm := &scriptedLLM{replies: []string{outlineReply}}

	out, err := run(t, sourceFile(t)+"\nthree parts\nexit\n", llm, "create-outline-only")
	require.NoError(t, err)
	assert.Contains(t, out, "## Intro\nSummary.\n")
}

func TestFromWeb(t *testing.T) {
	llm := &scriptedLLM{replies: []string{articleReply}}

	out, err := run(t, "golang\nwrite an explainer\nexit\n", llm, "from-web")
	require.NoError(t, err)
	assert.Contains(t, out, "# Headline")
	assert.Contains(t, llm.inputs[0], "golang")
}

func TestWebReviews(t *testing.T) {
	dir := t.TempDir()
	titles := filepath.Join(t.TempDir(), "titles.txt")
	require.NoError(t, os.WriteFile(titles, []byte("Phone One\n\nBroken\n"), 0o644))
	llm := &scriptedLLM{replies: []string{reviewsReply, "nope"}}

	out, err := run(t, "", llm, "web-reviews", "--input", titles, "--output-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 2 product titles.")
	assert.Contains(t, out, "[OK] Phone One: 1 reviews saved to "+filepath.Join(dir, "Phone_One"))
	assert.Contains(t, out, "[ERROR] Broken:")
	assert.FileExists(t, filepath.Join(dir, "Phone_One", "review_1.json"))
}

func TestInvalidFlagsFailFast(t *testing.T) {
	_, err := run(t, "", &scriptedLLM{}, "from-web", "--tool-servers", `{"transport":"http","connection":["x",[]]}`)
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))

	_, err = run(t, "", &scriptedLLM{}, "from-web", "--format", "pdf")
	assert.True(t, core.IsConfigError(err))

	_, err = run(t, "", &scriptedLLM{}, "from-web", "--tool-servers-file", "missing.yaml")
	assert.True(t, core.IsConfigError(err))
}
