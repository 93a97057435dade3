// Package openai is the chat-completions model backend, also usable against
// OpenAI-compatible endpoints through a base URL.
package openai

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"polycode/content-agent/core"
)

type OpenAI struct {
	ModelName string
	client    openai.Client
}

func NewOpenAI(apiKey, baseURL, modelName string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is not set")
	}
	if modelName == "" {
		return nil, errors.New("openai model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAI{
		ModelName: modelName,
		client:    openai.NewClient(opts...),
	}, nil
}

func (o *OpenAI) Name() string {
	return "openai:" + o.ModelName
}

func (o *OpenAI) Generate(ctx context.Context, systemContext string, history []core.ChatContent, input core.LLMInput) (core.LLMOutput, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.ModelName),
		Messages: toMessages(systemContext, history, input),
	})
	if err != nil {
		return core.LLMOutput{}, err
	}
	if len(resp.Choices) == 0 {
		return core.LLMOutput{}, errors.New("openai: empty choices")
	}
	return core.LLMOutput{
		Text: resp.Choices[0].Message.Content,
		Stats: core.Stats{
			InputTokenCount:  int32(resp.Usage.PromptTokens),
			OutputTokenCount: int32(resp.Usage.CompletionTokens),
			TotalTokenCount:  int32(resp.Usage.TotalTokens),
		},
	}, nil
}

func toMessages(systemContext string, history []core.ChatContent, input core.LLMInput) []openai.ChatCompletionMessageParamUnion {
	var msgs []openai.ChatCompletionMessageParamUnion
	if systemContext != "" {
		msgs = append(msgs, openai.SystemMessage(systemContext))
	}
	for _, h := range history {
		switch h.Role {
		case "assistant":
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(h.Content))
		default:
			msgs = append(msgs, openai.UserMessage(h.Content))
		}
	}
	if input.Text != "" {
		msgs = append(msgs, openai.UserMessage(input.Text))
	}
	return msgs
}
