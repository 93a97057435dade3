package core

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Prompt is anything the agent runner can send as the user turn.
type Prompt interface {
	Render() (string, error)
}

// InputTextsPrompt packages a user instruction with source documents.
type InputTextsPrompt struct {
	UserPrompt string      `json:"user_prompt"`
	InputTexts []InputText `json:"input_texts"`
}

// OutlinePrompt packages a user instruction with an outline.
type OutlinePrompt struct {
	UserPrompt string  `json:"user_prompt"`
	Outline    Outline `json:"outline"`
}

// RawPrompt is passed to the model unmodified.
type RawPrompt string

func FromInputTexts(inputTexts []InputText, userPrompt string) InputTextsPrompt {
	if inputTexts == nil {
		inputTexts = []InputText{}
	}
	return InputTextsPrompt{UserPrompt: userPrompt, InputTexts: inputTexts}
}

func FromOutline(outline Outline, userPrompt string) OutlinePrompt {
	if outline.Paragraphs == nil {
		outline.Paragraphs = []Paragraph{}
	}
	return OutlinePrompt{UserPrompt: userPrompt, Outline: outline}
}

func (p InputTextsPrompt) Render() (string, error) {
	return renderEnvelope(p)
}

func (p OutlinePrompt) Render() (string, error) {
	return renderEnvelope(p)
}

func (p RawPrompt) Render() (string, error) {
	return string(p), nil
}

// renderEnvelope produces the canonical form: two-space indented JSON with
// keys in struct order and no HTML escaping.
func renderEnvelope(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
