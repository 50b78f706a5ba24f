// Package suggest turns pinyin into ranked Chinese character candidates by
// asking an external conversion backend.
//
// The backend is reached through a Converter so callers and tests can swap the
// real HTTP binding for anything that maps text to candidates. Failures never
// surface as errors: an unreachable backend and a text with no conversion both
// come back as an empty list.
package suggest

import (
	"context"

	"github.com/bastiangx/pinserve/internal/utils"
	"github.com/bastiangx/pinserve/pkg/normalize"
)

// Converter maps backend-normalized pinyin to at most limit candidates.
type Converter interface {
	Convert(ctx context.Context, text string, limit int) []string
}

// ConverterFunc adapts a plain function to Converter.
type ConverterFunc func(ctx context.Context, text string, limit int) []string

// Convert calls f.
func (f ConverterFunc) Convert(ctx context.Context, text string, limit int) []string {
	return f(ctx, text, limit)
}

// candidateSlack is how many extra candidates are requested so that filtering
// still leaves n to return.
const candidateSlack = 4

// Suggester prepares user text for the backend and cleans up what comes back.
type Suggester struct {
	conv Converter
}

// New wraps conv.
func New(conv Converter) *Suggester {
	return &Suggester{conv: conv}
}

// Suggest returns up to n candidates for text, which should already be
// classified as pinyin. It makes at most one Converter call and returns nil
// when text normalizes to nothing or n < 1.
func (s *Suggester) Suggest(ctx context.Context, text string, n int) []string {
	if n < 1 || s.conv == nil {
		return nil
	}
	clean := normalize.ForBackend(text)
	if clean == "" {
		return nil
	}

	raw := s.conv.Convert(ctx, clean, n+candidateSlack)
	filter := utils.NewCandidateFilter(clean)
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if !utils.IsValidCandidate(c) || !filter.ShouldInclude(c) {
			continue
		}
		out = append(out, c)
		if len(out) == n {
			break
		}
	}
	return out
}
