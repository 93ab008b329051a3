package generator

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"ai_content_generator/errs"
)

// LLMClient streams a model's response to a single prompt.
//
// The returned error covers failures before any fragment is produced. The
// sequence yields non-empty fragments in emission order and ends either
// naturally or with one non-nil error, after which nothing more is yielded.
// The sequence is backed by one API call and must not be ranged twice.
type LLMClient interface {
	Stream(ctx context.Context, prompt string) (iter.Seq2[string, error], error)
}

// LLMSettings is the configuration shared by the concrete clients.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// NewLLM builds the client named by cfg.Provider. A missing credential or
// unknown provider is reported as a configuration error before any network use.
func NewLLM(cfg *LLMSettings) (LLMClient, error) {
	if cfg == nil || cfg.Provider == "" {
		return nil, errs.Configuration("llm provider missing; set llm.provider", nil)
	}
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini:
		g, err := NewGeminiClient(cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	case ProviderOpenAI, "deepseek":
		// DeepSeek speaks the OpenAI protocol but only at its own endpoint.
		if cfg.BaseURL == "" && !strings.EqualFold(cfg.Provider, ProviderOpenAI) {
			return nil, errs.Configuration("llm provider deepseek requires base_url (OpenAI-compatible endpoint)", nil)
		}
		o, err := NewOpenAIClient(cfg)
		if err != nil {
			return nil, err
		}
		return o, nil
	case ProviderMock:
		return MockLLM{}, nil
	default:
		return nil, errs.Configuration(fmt.Sprintf("llm provider %s not supported", cfg.Provider), nil)
	}
}
