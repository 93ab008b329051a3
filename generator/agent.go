package generator

import (
	"context"
	"strings"
	"time"

	"ai_content_generator/errs"
	"ai_content_generator/logger"
	"ai_content_generator/metrics"

	"github.com/google/uuid"
)

// MissingFieldsMessage is the validation message shown when topic or keywords are blank.
const MissingFieldsMessage = "please fill in all required fields (topic, keywords)"

// Agent turns a ContentRequest into a GenerationResult through the LLM.
// It holds no per-session state and can be shared between sessions.
type Agent struct {
	llm      LLMClient
	provider string
	now      func() time.Time
	newID    func() string
}

func NewAgent(llm LLMClient, provider string) (*Agent, error) {
	if llm == nil {
		return nil, errs.Configuration("llm client is required", nil)
	}
	if provider == "" {
		provider = "unknown"
	}
	return &Agent{
		llm:      llm,
		provider: provider,
		now:      time.Now,
		newID:    uuid.NewString,
	}, nil
}

// Validate checks the fields the pipeline cannot run without.
func Validate(req ContentRequest) error {
	if strings.TrimSpace(req.Topic) == "" || strings.TrimSpace(req.Keywords) == "" {
		return errs.Validation(MissingFieldsMessage)
	}
	return nil
}

// Generate validates req, builds the prompt, streams the response through
// onUpdate and returns the finished result. It does not record history; see Session.Run.
func (a *Agent) Generate(ctx context.Context, req ContentRequest, onUpdate func(partial string)) (GenerationResult, error) {
	if err := Validate(req); err != nil {
		metrics.GenerationTotal.WithLabelValues(a.provider, string(errs.CodeValidation)).Inc()
		return GenerationResult{}, err
	}

	log := logger.FromContext(ctx).With("provider", a.provider, "topic", req.Topic)
	log.Info("generation started",
		"content_type", req.ContentType,
		"word_count", req.WordCount,
	)

	metrics.InFlight.Inc()
	defer metrics.InFlight.Dec()
	start := time.Now()

	content, fragments, err := a.stream(ctx, BuildPrompt(req), onUpdate)
	if err != nil {
		code := errs.CodeOf(err)
		metrics.GenerationTotal.WithLabelValues(a.provider, string(code)).Inc()
		log.Error("generation failed", "code", code, "fragments", fragments, "error", err)
		return GenerationResult{}, err
	}

	elapsed := time.Since(start)
	metrics.GenerationTotal.WithLabelValues(a.provider, "success").Inc()
	metrics.GenerationDuration.WithLabelValues(a.provider).Observe(elapsed.Seconds())
	metrics.ContentBytes.Observe(float64(len(content)))
	log.Info("generation finished",
		"fragments", fragments,
		"bytes", len(content),
		"duration", elapsed,
	)

	title, digest := describe(content)
	return GenerationResult{
		ID:          a.newID(),
		Topic:       req.Topic,
		Title:       title,
		Digest:      digest,
		Content:     content,
		GeneratedAt: a.now(),
	}, nil
}

func (a *Agent) stream(ctx context.Context, prompt string, onUpdate func(string)) (string, int, error) {
	seq, err := a.llm.Stream(ctx, prompt)
	if err != nil {
		if errs.CodeOf(err) == "" {
			err = errs.Generation("start stream", err)
		}
		return "", 0, err
	}

	fragments := 0
	fragmentCounter := metrics.FragmentsTotal.WithLabelValues(a.provider)
	content, err := Aggregate(seq, func(partial string) {
		fragments++
		fragmentCounter.Inc()
		if onUpdate != nil {
			onUpdate(partial)
		}
	})
	if err != nil {
		return "", fragments, err
	}
	if strings.TrimSpace(content) == "" {
		return "", fragments, errs.Generation("model returned empty content", nil)
	}
	return content, fragments, nil
}
