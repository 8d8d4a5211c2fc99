package evidence

import "askdocs/internal/document"

// Default gate thresholds. Conservative by intent: the gate is the system's
// sole control against answering from weak evidence.
const (
	DefaultMinChunks        = 2
	DefaultMinMatchedTokens = 1
	DefaultMinOverlapRatio  = 0.45
)

// Gate decides whether retrieved evidence is strong enough to permit
// generation. The decision is pure and deterministic given its inputs.
type Gate struct {
	scorer Scorer

	// MinChunks is the floor on the number of retrieved chunks.
	MinChunks int
	// MinMatchedTokens is the floor on matched question tokens.
	MinMatchedTokens int
	// MinOverlapRatio is the floor on the overlap ratio.
	MinOverlapRatio float64
}

// NewGate builds a Gate over the given scorer, substituting defaults for
// out-of-range thresholds.
func NewGate(scorer Scorer, minChunks, minMatchedTokens int, minOverlapRatio float64) Gate {
	if minChunks <= 0 {
		minChunks = DefaultMinChunks
	}
	if minMatchedTokens <= 0 {
		minMatchedTokens = DefaultMinMatchedTokens
	}
	if minOverlapRatio <= 0 || minOverlapRatio > 1 {
		minOverlapRatio = DefaultMinOverlapRatio
	}
	return Gate{
		scorer:           scorer,
		MinChunks:        minChunks,
		MinMatchedTokens: minMatchedTokens,
		MinOverlapRatio:  minOverlapRatio,
	}
}

// Check scores the question against the retrieved chunks and reports whether
// the evidence is sufficient. Evidence is insufficient when fewer than
// MinChunks chunks were retrieved, or the matched-token count or overlap
// ratio falls below its floor.
func (g Gate) Check(question string, chunks []document.Chunk) (Score, bool) {
	score := g.scorer.Score(question, chunks)
	if len(chunks) < g.MinChunks {
		return score, false
	}
	if score.MatchedTokens < g.MinMatchedTokens {
		return score, false
	}
	if score.OverlapRatio < g.MinOverlapRatio {
		return score, false
	}
	return score, true
}
