package core

import "time"

// Paragraph is the atomic unit of content.
type Paragraph struct {
	Subheadline *string `json:"subheadline" jsonschema_description:"Optional subheadline introducing the paragraph"`
	Text        string  `json:"text" jsonschema_description:"Paragraph text"`
}

type InputTextMetadata struct {
	CreatedAt *time.Time `json:"created_at"`
	NumWords  *int       `json:"num_words"`
	Source    *string    `json:"source"`
}

// InputText is one source document.
type InputText struct {
	Metadata InputTextMetadata `json:"metadata"`
	Headline *string           `json:"headline"`
	Teaser   *string           `json:"teaser"`
	Body     []Paragraph       `json:"body" validate:"required,dive"`
}

// OutputText is the generated article.
type OutputText struct {
	Headline *string     `json:"headline" jsonschema_description:"Headline of the generated text"`
	Teaser   *string     `json:"teaser" jsonschema_description:"Short teaser shown below the headline"`
	Body     []Paragraph `json:"body" validate:"required,dive"`
}

// Outline is the intermediate artifact of the outline-first workflow. Each
// paragraph text is a condensed summary of the content it will become.
type Outline struct {
	Paragraphs []Paragraph `json:"paragraphs" validate:"required,dive"`
}

type FromFileRequest struct {
	InputTexts  []InputText        `json:"input_texts" validate:"required,dive"`
	UserPrompt  string             `json:"user_prompt" validate:"required"`
	Model       string             `json:"model,omitempty"`
	ToolServers []ToolServerConfig `json:"tool_servers,omitempty"`
}

type FromFileWithOutlineRequest struct {
	InputTexts    []InputText        `json:"input_texts" validate:"required,dive"`
	OutlinePrompt string             `json:"outline_prompt" validate:"required"`
	ContentPrompt string             `json:"content_prompt" validate:"required"`
	Model         string             `json:"model,omitempty"`
	ToolServers   []ToolServerConfig `json:"tool_servers,omitempty"`
}

type CreateOutlineOnlyRequest struct {
	InputTexts  []InputText        `json:"input_texts" validate:"required,dive"`
	UserPrompt  string             `json:"user_prompt" validate:"required"`
	Model       string             `json:"model,omitempty"`
	ToolServers []ToolServerConfig `json:"tool_servers,omitempty"`
}

type FromWebRequest struct {
	SearchTerms string             `json:"search_terms" validate:"required"`
	UserPrompt  string             `json:"user_prompt" validate:"required"`
	Model       string             `json:"model,omitempty"`
	ToolServers []ToolServerConfig `json:"tool_servers,omitempty"`
}

type OutlineFirstResponse struct {
	Outline Outline    `json:"outline"`
	Output  OutputText `json:"output"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
