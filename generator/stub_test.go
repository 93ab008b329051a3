package generator

import (
	"context"
	"iter"
)

// stubLLM replays fixed fragments, optionally failing after them.
type stubLLM struct {
	fragments []string
	streamErr error // yielded after the fragments
	startErr  error // returned before streaming
	calls     int
	prompts   []string
}

func (s *stubLLM) Stream(_ context.Context, prompt string) (iter.Seq2[string, error], error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.startErr != nil {
		return nil, s.startErr
	}
	return func(yield func(string, error) bool) {
		for _, f := range s.fragments {
			if !yield(f, nil) {
				return
			}
		}
		if s.streamErr != nil {
			yield("", s.streamErr)
		}
	}, nil
}

func seqOf(fragments []string, tail error) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, f := range fragments {
			if !yield(f, nil) {
				return
			}
		}
		if tail != nil {
			yield("", tail)
		}
	}
}

func espressoRequest() ContentRequest {
	return ContentRequest{
		Topic:       "Espresso Machines",
		Keywords:    "coffee, espresso, home brewing",
		WordCount:   500,
		Tone:        ToneProfessional,
		Audience:    AudienceIntermediate,
		ContentType: ContentBlogPost,
	}
}
