// Package render serializes generated documents to Markdown or HTML files.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"polycode/content-agent/core"
)

type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

const fileTimeLayout = "2006-01-02_15-04-05"

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatMarkdown, "markdown":
		return FormatMarkdown, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", core.NewConfigError(fmt.Sprintf("unknown output format %q", s), nil)
}

// Markdown renders the headline as "# ", the teaser in italics and each
// paragraph as an optional "## " subheadline followed by its text.
func Markdown(out core.OutputText) string {
	var blocks []string
	if out.Headline != nil && *out.Headline != "" {
		blocks = append(blocks, "# "+*out.Headline)
	}
	if out.Teaser != nil && *out.Teaser != "" {
		blocks = append(blocks, "*"+*out.Teaser+"*")
	}
	blocks = append(blocks, paragraphBlocks(out.Body)...)
	return joinBlocks(blocks)
}

func OutlineMarkdown(outline core.Outline) string {
	return joinBlocks(paragraphBlocks(outline.Paragraphs))
}

func paragraphBlocks(paragraphs []core.Paragraph) []string {
	blocks := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if p.Subheadline != nil && *p.Subheadline != "" {
			blocks = append(blocks, "## "+*p.Subheadline+"\n"+p.Text)
			continue
		}
		blocks = append(blocks, p.Text)
	}
	return blocks
}

func joinBlocks(blocks []string) string {
	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteFile writes markdown content into dir under a timestamp name and
// returns the path. HTML output is converted first. An existing file is
// never replaced: later writes within the same second get a numeric suffix.
func WriteFile(dir string, format Format, markdown string, now time.Time) (string, error) {
	content := markdown
	if format == FormatHTML {
		html, err := HTML(markdown)
		if err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
		content = html
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	f, err := createUnique(dir, now.Format(fileTimeLayout), "."+string(format))
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", f.Name(), err)
	}
	return f.Name(), nil
}

const maxNameAttempts = 1000

func createUnique(dir, base, ext string) (*os.File, error) {
	name := base + ext
	for i := 1; i <= maxNameAttempts; i++ {
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
		name = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
	return nil, fmt.Errorf("no free file name for %s%s in %s", base, ext, dir)
}
