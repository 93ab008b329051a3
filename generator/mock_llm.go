package generator

import (
	"context"
	"iter"
	"strings"
)

// MockLLM is an offline stand-in that streams a canned Markdown draft without calling a model.
type MockLLM struct{}

func (m MockLLM) Stream(_ context.Context, prompt string) (iter.Seq2[string, error], error) {
	topic := "Sample Topic"
	for _, line := range strings.Split(prompt, "\n") {
		if v, ok := strings.CutPrefix(line, "- **Topic:** "); ok && v != "" {
			topic = v
			break
		}
	}

	var sb strings.Builder
	sb.WriteString("# " + topic + "\n\n")
	sb.WriteString("This is an offline draft produced without contacting a model.\n\n")
	sb.WriteString("## Overview\n\n")
	sb.WriteString("### Background\n\n")
	sb.WriteString("The mock provider streams this text word by word.\n\n")
	sb.WriteString("### Details\n\n")
	sb.WriteString("Switch llm.provider to gemini or openai for real output.\n\n")
	sb.WriteString("## Conclusion\n\n")
	sb.WriteString("Nothing more to add.\n")
	doc := sb.String()

	return func(yield func(string, error) bool) {
		for _, frag := range strings.SplitAfter(doc, " ") {
			if frag == "" {
				continue
			}
			if !yield(frag, nil) {
				return
			}
		}
	}, nil
}
