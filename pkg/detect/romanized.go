/*
Package detect decides what kind of text a user typed: Chinese ideographs,
romanized Mandarin (pinyin), a mix of both, or something else.

Everything here is synchronous and allocation-light so it can run on every
keystroke. Nothing blocks and nothing is cached between calls; the only shared
state is the syllable table, which is built once and never written again.

	detect.IsRomanized("ni3hao3")      // true
	detect.DetectInputType("你好hello") // Mixed
*/
package detect

import (
	"strings"
	"unicode"

	"github.com/bastiangx/pinserve/pkg/normalize"
	"github.com/bastiangx/pinserve/pkg/syllable"
)

// Calibration values for the romanization check. They were tuned against the
// greedy matcher's behaviour and are kept literal; changing them changes which
// ambiguous strings classify as pinyin.
const (
	// MinLength rejects single letters, which are indistinguishable from noise.
	MinLength = 2
	// MinCoverage tolerates a stray typo while rejecting English words that
	// happen to contain short syllables.
	MinCoverage = 0.8
)

// tonedVowels are the precomposed tone-marked vowels allowed in input.
// ü variants are folded to v before this check.
const tonedVowels = "āáǎàēéěèīíǐìōóǒòūúǔù"

// IsRomanized reports whether text reads as pinyin.
func IsRomanized(text string) bool {
	_, ok := Score(text)
	return ok
}

// Score returns the syllable coverage summed over all tokens of text together
// with the acceptance verdict. The coverage is zero whenever text is rejected
// before matching (ideographs, disallowed characters, no tokens).
func Score(text string) (syllable.Coverage, bool) {
	tokens, ok := tokenize(text)
	if !ok {
		return syllable.Coverage{}, false
	}
	dict := syllable.Default()
	var cov syllable.Coverage
	for _, tok := range tokens {
		cov = cov.Add(dict.Cover(tok))
	}
	return cov, accept(cov)
}

// Segment returns the greedy syllable trace for every token of text, or nil
// when text is rejected before matching.
func Segment(text string) []syllable.Match {
	tokens, ok := tokenize(text)
	if !ok {
		return nil
	}
	dict := syllable.Default()
	var out []syllable.Match
	for _, tok := range tokens {
		out = append(out, dict.Segment(tok).Matches...)
	}
	return out
}

func accept(c syllable.Coverage) bool {
	return c.SyllableCount >= 1 && c.TotalLength >= MinLength && c.Ratio() >= MinCoverage
}

// tokenize runs the pre-match checks and returns the tone-free tokens.
func tokenize(text string) ([]string, bool) {
	if strings.TrimSpace(text) == "" || ContainsIdeograph(text) {
		return nil, false
	}
	folded := strings.TrimSpace(normalize.Fold(text))
	if folded == "" || !onlyPinyinChars(folded) {
		return nil, false
	}
	stripped := normalize.StripTones(folded)
	tokens := strings.FieldsFunc(stripped, func(r rune) bool {
		return r == '\'' || unicode.IsSpace(r)
	})
	return tokens, len(tokens) > 0
}

func onlyPinyinChars(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '5':
		case r == '\'' || unicode.IsSpace(r):
		case strings.ContainsRune(tonedVowels, r):
		default:
			return false
		}
	}
	return true
}
