// Package parser turns source files into InputText documents. Supported
// formats are JSON (one InputText or a list), Markdown and plain text.
package parser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"polycode/content-agent/core"
	"polycode/content-agent/lib"
)

var validate = lib.NewValidator()

// Supported reports whether path has an extension Parse understands.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".md", ".txt":
		return true
	}
	return false
}

// Parse reads a file, or every supported regular file directly inside a
// directory in name order. Symlinks to files count as files; broken links
// are skipped.
func Parse(path string) ([]core.InputText, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, core.NewParseError(fmt.Sprintf("cannot read %s", path), err)
	}
	if info.IsDir() {
		return parseDir(path)
	}
	return parseFile(path)
}

func parseDir(dir string) ([]core.InputText, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, core.NewParseError(fmt.Sprintf("cannot list %s", dir), err)
	}
	texts := []core.InputText{}
	for _, entry := range entries {
		if !Supported(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		// Stat follows symlinks.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		parsed, err := parseFile(path)
		if err != nil {
			return nil, err
		}
		texts = append(texts, parsed...)
	}
	return texts, nil
}

func parseFile(path string) ([]core.InputText, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(path) {
		return nil, core.NewUnsupportedFileType(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewParseError(fmt.Sprintf("cannot read %s", path), err)
	}
	switch ext {
	case ".json":
		texts, err := ParseJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return texts, nil
	case ".md":
		return []core.InputText{ParseMarkdown(string(data))}, nil
	default:
		return []core.InputText{ParseText(string(data))}, nil
	}
}

// ParseJSON decodes a single InputText object or a list of them and
// validates each one.
func ParseJSON(data []byte) ([]core.InputText, error) {
	data = bytes.TrimSpace(data)
	var texts []core.InputText
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &texts); err != nil {
			return nil, core.NewParseError("invalid JSON", err)
		}
	} else {
		var text core.InputText
		if err := json.Unmarshal(data, &text); err != nil {
			return nil, core.NewParseError("invalid JSON", err)
		}
		texts = append(texts, text)
	}
	for i := range texts {
		if err := validate.ValidateStruct(&texts[i]); err != nil {
			return nil, core.NewParseError(fmt.Sprintf("input text %d is not a valid InputText", i), err)
		}
	}
	if texts == nil {
		texts = []core.InputText{}
	}
	return texts, nil
}

// ParseMarkdown reads the headline from "# " lines and paragraphs separated
// by blank lines or "## " subheadlines.
func ParseMarkdown(content string) core.InputText {
	doc := core.InputText{Body: []core.Paragraph{}}

	var (
		subheadline *string
		lines       []string
	)
	flush := func() {
		text := strings.TrimSpace(strings.Join(lines, "\n"))
		if text != "" {
			doc.Body = append(doc.Body, core.Paragraph{Subheadline: subheadline, Text: text})
		}
		lines = nil
		subheadline = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case strings.HasPrefix(line, "# "):
			doc.Headline = core.StringPtr(strings.TrimSpace(line[2:]))
		case strings.HasPrefix(line, "## "):
			flush()
			subheadline = core.StringPtr(strings.TrimSpace(line[3:]))
		case strings.TrimSpace(line) == "":
			flush()
		default:
			lines = append(lines, line)
		}
	}
	flush()
	return doc
}

// ParseText wraps the whole content, unprocessed, in a single paragraph.
func ParseText(content string) core.InputText {
	return core.InputText{Body: []core.Paragraph{{Text: content}}}
}
