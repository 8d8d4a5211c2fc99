package evidence

import (
	"strings"
	"unicode"
)

// DefaultMinTokenLength is the cutoff below which tokens are dropped.
// Short tokens are mostly noise ("a", "is", "of") and would inflate the
// overlap ratio of any question.
const DefaultMinTokenLength = 3

// Tokenize turns text into a normalized token sequence: lowercase, strip
// everything outside [a-z0-9], split on whitespace runs, drop tokens shorter
// than minLen. There is no stopword list; the heuristic is corpus-agnostic
// and language-naive on purpose.
func Tokenize(text string, minLen int) []string {
	if minLen <= 0 {
		minLen = DefaultMinTokenLength
	}

	normalized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, strings.ToLower(text))

	fields := strings.Fields(normalized)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= minLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// uniqueTokens deduplicates a token sequence, preserving first-occurrence order.
func uniqueTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	unique := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		unique = append(unique, tok)
	}
	return unique
}
