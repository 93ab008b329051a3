package generator

import (
	"context"
	"iter"

	"ai_content_generator/errs"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiLLM implements LLMClient on the Gemini API's streaming endpoint.
type GeminiLLM struct {
	Model   string
	APIKey  string
	BaseURL string
}

func NewGeminiClient(cfg *LLMSettings) (*GeminiLLM, error) {
	if cfg == nil {
		return nil, errs.Configuration("llm config is nil", nil)
	}
	if cfg.APIKey == "" {
		return nil, errs.Configuration("gemini api key missing; set GEMINI_API_KEY or llm.api_key", nil)
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiLLM{Model: model, APIKey: cfg.APIKey, BaseURL: cfg.BaseURL}, nil
}

func (g *GeminiLLM) Stream(ctx context.Context, prompt string) (iter.Seq2[string, error], error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  g.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: g.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, errs.Configuration("create gemini client", err)
	}

	responses := client.Models.GenerateContentStream(ctx, g.Model, genai.Text(prompt), nil)

	return func(yield func(string, error) bool) {
		for resp, err := range responses {
			if err != nil {
				yield("", errs.Generation("gemini stream failed", err))
				return
			}
			text := responseText(resp)
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}, nil
}

// responseText joins the text parts of the first candidate. Thought parts are skipped.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}
	var text string
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		text += part.Text
	}
	return text
}
