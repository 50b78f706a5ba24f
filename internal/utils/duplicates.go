package utils

import (
	"strings"
)

// CandidateFilter drops repeated candidates and any candidate equal to the
// text that was converted. Not safe for concurrent use; make one per request.
type CandidateFilter struct {
	seen map[string]bool
}

// NewCandidateFilter creates a filter that will exclude the given input text
func NewCandidateFilter(input string) *CandidateFilter {
	seen := make(map[string]bool)
	seen[strings.ToLower(input)] = true
	return &CandidateFilter{seen: seen}
}

// ShouldInclude checks if a candidate should be kept (not a duplicate)
// Returns true the first time a candidate is seen, false afterwards
func (f *CandidateFilter) ShouldInclude(candidate string) bool {
	key := strings.ToLower(candidate)
	if f.seen[key] {
		return false
	}
	f.seen[key] = true
	return true
}
