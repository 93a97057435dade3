package core

import "context"

type LLMInput struct {
	Text string
}

type LLMOutput struct {
	Text  string
	Stats Stats
}

type Stats struct {
	InputTokenCount  int32 `json:"input_token_count,omitempty"`
	OutputTokenCount int32 `json:"output_token_count,omitempty"`
	TotalTokenCount  int32 `json:"total_token_count,omitempty"`
}

func (s *Stats) Add(o Stats) {
	s.InputTokenCount += o.InputTokenCount
	s.OutputTokenCount += o.OutputTokenCount
	s.TotalTokenCount += o.TotalTokenCount
}

type ChatContent struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func NewContent(role string, content string) ChatContent {
	return ChatContent{
		Role:    role,
		Content: content,
	}
}

// LLM is a single model backend. Generate sends the system instruction, the
// prior turns of the current run and the new input, and returns the reply.
type LLM interface {
	Name() string
	Generate(ctx context.Context, systemContext string, history []ChatContent, input LLMInput) (LLMOutput, error)
}
