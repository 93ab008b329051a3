package generator

import (
	"iter"
	"strings"

	"ai_content_generator/errs"
)

// Aggregate concatenates fragments in order. After each non-empty fragment it
// calls onUpdate with the whole text so far, never just the delta. Empty
// fragments are ignored.
//
// If the sequence fails, Aggregate returns "" and the error, wrapped as a
// generation error unless it is already typed. onUpdate is not called again
// after a failure, but calls made before it have already shown the partial text.
func Aggregate(fragments iter.Seq2[string, error], onUpdate func(partial string)) (string, error) {
	var acc strings.Builder
	for frag, err := range fragments {
		if err != nil {
			if errs.CodeOf(err) == "" {
				err = errs.Generation("stream interrupted", err)
			}
			return "", err
		}
		if frag == "" {
			continue
		}
		acc.WriteString(frag)
		if onUpdate != nil {
			onUpdate(acc.String())
		}
	}
	return acc.String(), nil
}
