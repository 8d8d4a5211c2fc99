package evidence

import (
	"strings"

	"askdocs/internal/document"
)

// Default scorer bounds. Capping the haystack keeps the heuristic cheap and
// stable regardless of chunk size.
const (
	DefaultTopSources = 3
	DefaultCharCap    = 1600
)

// Score quantifies lexical overlap between a question and retrieved chunks.
type Score struct {
	MatchedTokens int     `json:"matched_tokens"`
	TotalTokens   int     `json:"total_tokens"`
	OverlapRatio  float64 `json:"overlap_ratio"`
}

// Scorer computes lexical overlap scores. It is a conservative guardrail,
// not a semantic similarity measure.
type Scorer struct {
	// TopSources is the number of leading chunks inspected.
	TopSources int
	// PerChunkCharCap truncates each chunk's content before matching.
	PerChunkCharCap int
	// MinTokenLength is the tokenizer cutoff.
	MinTokenLength int
}

// NewScorer returns a Scorer with the given bounds, substituting defaults
// for non-positive values.
func NewScorer(topSources, perChunkCharCap, minTokenLength int) Scorer {
	if topSources <= 0 {
		topSources = DefaultTopSources
	}
	if perChunkCharCap <= 0 {
		perChunkCharCap = DefaultCharCap
	}
	if minTokenLength <= 0 {
		minTokenLength = DefaultMinTokenLength
	}
	return Scorer{
		TopSources:      topSources,
		PerChunkCharCap: perChunkCharCap,
		MinTokenLength:  minTokenLength,
	}
}

// Score tokenizes the question into a unique token set and counts how many
// of those tokens appear as substrings in the top retrieved chunks. An empty
// or all-short-token question scores zero across the board and can never be
// grounded.
func (s Scorer) Score(question string, chunks []document.Chunk) Score {
	unique := uniqueTokens(Tokenize(question, s.MinTokenLength))
	total := len(unique)
	if total == 0 {
		return Score{}
	}

	haystack := s.buildHaystack(chunks)

	matched := 0
	for _, tok := range unique {
		if strings.Contains(haystack, tok) {
			matched++
		}
	}

	return Score{
		MatchedTokens: matched,
		TotalTokens:   total,
		OverlapRatio:  float64(matched) / float64(total),
	}
}

// buildHaystack concatenates the truncated content of the leading chunks,
// lowercased for case-insensitive matching.
func (s Scorer) buildHaystack(chunks []document.Chunk) string {
	top := chunks
	if len(top) > s.TopSources {
		top = top[:s.TopSources]
	}

	var b strings.Builder
	for i, chunk := range top {
		content := chunk.Content
		if runes := []rune(content); len(runes) > s.PerChunkCharCap {
			content = string(runes[:s.PerChunkCharCap])
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(content)
	}
	return strings.ToLower(b.String())
}
