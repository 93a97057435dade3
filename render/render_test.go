package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polycode/content-agent/core"
)

var article = core.OutputText{
	Headline: core.StringPtr("Go at Scale"),
	Teaser:   core.StringPtr("How teams ship services"),
	Body: []core.Paragraph{
		{Text: "Opening paragraph."},
		{Subheadline: core.StringPtr("Tooling"), Text: "Build and test."},
	},
}

func TestMarkdown(t *testing.T) {
	want := "# Go at Scale\n\n*How teams ship services*\n\nOpening paragraph.\n\n## Tooling\nBuild and test.\n"
	assert.Equal(t, want, Markdown(article))
}

func TestMarkdownSkipsMissingHeadlineAndTeaser(t *testing.T) {
	got := Markdown(core.OutputText{Body: []core.Paragraph{{Text: "only"}}})
	assert.Equal(t, "only\n", got)
	assert.Equal(t, "", Markdown(core.OutputText{}))
}

func TestOutlineMarkdown(t *testing.T) {
	got := OutlineMarkdown(core.Outline{Paragraphs: []core.Paragraph{
		{Subheadline: core.StringPtr("Why"), Text: "motivation"},
		{Text: "wrap up"},
	}})
	assert.Equal(t, "## Why\nmotivation\n\nwrap up\n", got)
}

func TestHTML(t *testing.T) {
	html, err := HTML(Markdown(article))
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Go at Scale</h1>")
	assert.Contains(t, html, "<em>How teams ship services</em>")
	assert.Contains(t, html, "<h2>Tooling</h2>")
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outputs")
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	path, err := WriteFile(dir, FormatMarkdown, Markdown(article), now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2024-03-09_14-05-07.md"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Go at Scale"))

	path, err = WriteFile(dir, FormatHTML, Markdown(article), now)
	require.NoError(t, err)
	assert.Equal(t, ".html", filepath.Ext(path))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<h1>")
}

func TestWriteFileKeepsEarlierOutputsOfTheSameSecond(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	first, err := WriteFile(dir, FormatMarkdown, "first\n", now)
	require.NoError(t, err)
	second, err := WriteFile(dir, FormatMarkdown, "second\n", now)
	require.NoError(t, err)
	third, err := WriteFile(dir, FormatMarkdown, "third\n", now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "2024-03-09_14-05-07.md"), first)
	assert.Equal(t, filepath.Join(dir, "2024-03-09_14-05-07_1.md"), second)
	assert.Equal(t, filepath.Join(dir, "2024-03-09_14-05-07_2.md"), third)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(data))
	data, err = os.ReadFile(third)
	require.NoError(t, err)
	assert.Equal(t, "third\n", string(data))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)
	f, err = ParseFormat("HTML")
	require.NoError(t, err)
	assert.Equal(t, FormatHTML, f)
	_, err = ParseFormat("pdf")
	assert.True(t, core.IsConfigError(err))
}
