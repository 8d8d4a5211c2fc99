package evidence

import (
	"strings"
	"testing"

	"askdocs/internal/document"
)

func chunksOf(contents ...string) []document.Chunk {
	chunks := make([]document.Chunk, len(contents))
	for i, c := range contents {
		chunks[i] = document.Chunk{Content: c, Metadata: map[string]any{}}
	}
	return chunks
}

func TestScorer_Score(t *testing.T) {
	scorer := NewScorer(0, 0, 0) // defaults

	tests := []struct {
		name        string
		question    string
		chunks      []document.Chunk
		wantMatched int
		wantTotal   int
		wantRatio   float64
	}{
		{
			name:        "empty question",
			question:    "",
			chunks:      chunksOf("water boils at 100 degrees"),
			wantMatched: 0,
			wantTotal:   0,
			wantRatio:   0,
		},
		{
			name:        "punctuation-only question",
			question:    "?! ...",
			chunks:      chunksOf("anything"),
			wantMatched: 0,
			wantTotal:   0,
			wantRatio:   0,
		},
		{
			name:        "all short tokens",
			question:    "is it a b",
			chunks:      chunksOf("is it"),
			wantMatched: 0,
			wantTotal:   0,
			wantRatio:   0,
		},
		{
			name:        "boiling point scenario",
			question:    "What is the boiling point of water",
			chunks:      chunksOf("water boils at 100 degrees celsius boiling point", "irrelevant"),
			wantMatched: 3, // boiling, point, water
			wantTotal:   5, // what, the, boiling, point, water
			wantRatio:   0.6,
		},
		{
			name:        "no overlap",
			question:    "airspeed velocity unladen swallow",
			chunks:      chunksOf("preheat the oven and whisk the eggs"),
			wantMatched: 0,
			wantTotal:   4,
			wantRatio:   0,
		},
		{
			name:        "duplicate question tokens counted once",
			question:    "water water water boiling",
			chunks:      chunksOf("water is everywhere"),
			wantMatched: 1,
			wantTotal:   2,
			wantRatio:   0.5,
		},
		{
			name:        "case-insensitive matching",
			question:    "BOILING POINT",
			chunks:      chunksOf("the Boiling Point of water", "x"),
			wantMatched: 2,
			wantTotal:   2,
			wantRatio:   1.0,
		},
		{
			name:        "no chunks",
			question:    "boiling point",
			chunks:      nil,
			wantMatched: 0,
			wantTotal:   2,
			wantRatio:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(tt.question, tt.chunks)
			if got.MatchedTokens != tt.wantMatched || got.TotalTokens != tt.wantTotal {
				t.Errorf("Score = %+v, want matched=%d total=%d", got, tt.wantMatched, tt.wantTotal)
			}
			if got.OverlapRatio != tt.wantRatio {
				t.Errorf("OverlapRatio = %v, want %v", got.OverlapRatio, tt.wantRatio)
			}
		})
	}
}

func TestScorer_OnlyTopSourcesInspected(t *testing.T) {
	scorer := NewScorer(3, DefaultCharCap, DefaultMinTokenLength)

	// The matching token lives in the 4th chunk, beyond the top 3.
	chunks := chunksOf("alpha", "bravo", "charlie", "boiling point of water")
	got := scorer.Score("boiling", chunks)
	if got.MatchedTokens != 0 {
		t.Errorf("MatchedTokens = %d, want 0 (4th chunk must not be inspected)", got.MatchedTokens)
	}

	// Same token inside the top 3 is seen.
	chunks = chunksOf("boiling point", "bravo", "charlie", "delta")
	got = scorer.Score("boiling", chunks)
	if got.MatchedTokens != 1 {
		t.Errorf("MatchedTokens = %d, want 1", got.MatchedTokens)
	}
}

func TestScorer_PerChunkCharCap(t *testing.T) {
	scorer := NewScorer(3, 100, DefaultMinTokenLength)

	// Token placed past the 100-rune cap must not match.
	padded := strings.Repeat("x", 150) + " boiling"
	got := scorer.Score("boiling", chunksOf(padded))
	if got.MatchedTokens != 0 {
		t.Errorf("MatchedTokens = %d, want 0 (token past the char cap)", got.MatchedTokens)
	}

	// Token inside the cap matches.
	padded = "boiling " + strings.Repeat("x", 150)
	got = scorer.Score("boiling", chunksOf(padded))
	if got.MatchedTokens != 1 {
		t.Errorf("MatchedTokens = %d, want 1", got.MatchedTokens)
	}
}
