package ingest

import "strings"

// Default chunking bounds. The overlap preserves context that straddles
// chunk boundaries.
const (
	DefaultChunkSize    = 1200
	DefaultChunkOverlap = 200
)

// Splitter cuts document content into overlapping fixed-size chunks.
// Sizes are measured in runes so multi-byte text is never cut mid-character.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

// NewSplitter returns a Splitter with the given bounds, substituting
// defaults for out-of-range values.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

// Split cuts text into chunks of at most ChunkSize runes where consecutive
// chunks share Overlap runes. The final chunk may be shorter. Chunks that
// contain only whitespace are dropped.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := s.ChunkSize - s.Overlap
	if step <= 0 {
		step = s.ChunkSize
	}

	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[start:end])
		if strings.TrimSpace(chunk) != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
