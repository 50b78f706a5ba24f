package syllable

import "unicode/utf8"

// Match is one recognized syllable and its length in bytes.
type Match struct {
	Syllable string `msgpack:"s" json:"syllable"`
	Length   int    `msgpack:"l" json:"length"`
}

// Trace is the outcome of one segmentation pass over a single token.
type Trace struct {
	Matches []Match
	// Skipped holds the characters dropped because no syllable started there.
	Skipped []rune
}

// Coverage is the tally a trace produces. Ratio is MatchedChars / TotalLength.
type Coverage struct {
	TotalLength   int `msgpack:"total" json:"total"`
	MatchedChars  int `msgpack:"matched" json:"matched"`
	SyllableCount int `msgpack:"syllables" json:"syllables"`
}

// Add sums two coverages, used when a text is split into several tokens.
func (c Coverage) Add(o Coverage) Coverage {
	return Coverage{
		TotalLength:   c.TotalLength + o.TotalLength,
		MatchedChars:  c.MatchedChars + o.MatchedChars,
		SyllableCount: c.SyllableCount + o.SyllableCount,
	}
}

// Ratio returns the matched fraction, or 0 for an empty coverage.
func (c Coverage) Ratio() float64 {
	if c.TotalLength == 0 {
		return 0
	}
	return float64(c.MatchedChars) / float64(c.TotalLength)
}

// Segment splits token greedily: at each position it takes the longest
// syllable (MaxLen down to 1) and advances past it, or drops one character
// when nothing matches. There is no backtracking, so ambiguous input such as
// "xian" is read as one syllable and never as "xi"+"an".
//
// Token is expected to be normalized and space-free. Any other input still
// terminates since every iteration consumes at least one rune.
func (d *Dictionary) Segment(token string) Trace {
	var tr Trace
	rest := token
	for len(rest) > 0 {
		n := longest(d, rest)
		if n > 0 {
			tr.Matches = append(tr.Matches, Match{Syllable: rest[:n], Length: n})
			rest = rest[n:]
			continue
		}
		r, size := utf8.DecodeRuneInString(rest)
		tr.Skipped = append(tr.Skipped, r)
		rest = rest[size:]
	}
	return tr
}

// Cover runs Segment and returns only the tally.
func (d *Dictionary) Cover(token string) Coverage {
	return d.Segment(token).Coverage(token)
}

// Coverage tallies the trace against the token it was produced from.
func (t Trace) Coverage(token string) Coverage {
	c := Coverage{
		TotalLength:   utf8.RuneCountInString(token),
		SyllableCount: len(t.Matches),
	}
	for _, m := range t.Matches {
		c.MatchedChars += m.Length
	}
	return c
}

func longest(d *Dictionary, s string) int {
	n := MaxLen
	if len(s) < n {
		n = len(s)
	}
	for ; n >= 1; n-- {
		if d.Contains(s[:n]) {
			return n
		}
	}
	return 0
}
