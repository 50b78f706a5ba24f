// Package normalize folds user-typed romanized Mandarin into the plain
// lowercase form the syllable table is written in.
//
// The steps run in a fixed order. Lowercasing and the IME "u:" spelling come
// first, then NFC composition so that a u followed by a combining diaeresis
// becomes a single ü before the ü→v fold. Running the fold before NFC would
// let decomposed ü slip through untouched.
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	umlautFold = strings.NewReplacer(
		"ü", "v",
		"ǖ", "v",
		"ǘ", "v",
		"ǚ", "v",
		"ǜ", "v",
	)

	// lue/nue are spelled lve/nve by the conversion backend.
	backendSpelling = strings.NewReplacer("lue", "lve", "nue", "nve")

	// chained transformers keep internal buffers and are not safe to share
	stripPool = sync.Pool{
		New: func() any {
			return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		},
	}
)

// Fold lowercases s, rewrites "u:" to "v", composes to NFC and folds every
// ü variant to "v". Tone marks on other vowels are kept.
func Fold(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "u:", "v")
	s = norm.NFC.String(s)
	return umlautFold.Replace(s)
}

// StripTones removes combining marks and the tone digits 0-5 from an
// already folded string.
func StripTones(s string) string {
	t := stripPool.Get().(transform.Transformer)
	out, _, err := transform.String(t, s)
	stripPool.Put(t)
	if err != nil {
		// transform only fails on malformed chains; keep the input usable
		out = s
	}
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '5' {
			return -1
		}
		return r
	}, out)
}

// ForMatching applies Fold and StripTones.
func ForMatching(s string) string {
	return StripTones(Fold(s))
}

// ForBackend produces the compact spelling sent to the conversion backend:
// tone-free, ü as v, lue/nue as lve/nve, with spaces and apostrophes removed.
func ForBackend(s string) string {
	s = ForMatching(strings.TrimSpace(s))
	s = backendSpelling.Replace(s)
	return strings.Map(func(r rune) rune {
		if r == '\'' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
