package generator

import (
	"context"
	"iter"

	"ai_content_generator/errs"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAILLM implements LLMClient using the official openai-go SDK (streaming chat completions).
// It also serves OpenAI-compatible endpoints selected through BaseURL.
type OpenAILLM struct {
	Model string
	Opts  []option.RequestOption
}

func NewOpenAIClient(cfg *LLMSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errs.Configuration("llm config is nil", nil)
	}
	if cfg.APIKey == "" {
		return nil, errs.Configuration("openai api key missing; provide llm.api_key", nil)
	}
	if cfg.Model == "" {
		return nil, errs.Configuration("llm model is required", nil)
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAILLM{Model: cfg.Model, Opts: opts}, nil
}

func (o *OpenAILLM) Stream(ctx context.Context, prompt string) (iter.Seq2[string, error], error) {
	client := openai.NewClient(o.Opts...)

	stream := client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})

	return func(yield func(string, error) bool) {
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			text := chunk.Choices[0].Delta.Content
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield("", errs.Generation("openai stream failed", err))
		}
	}, nil
}
