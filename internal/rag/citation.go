package rag

import (
	"fmt"

	"askdocs/internal/document"
)

// DefaultCitationLimit caps how many citations are surfaced with an answer.
const DefaultCitationLimit = 5

// unknownSource is the label substituted when chunk metadata carries no filename.
const unknownSource = "unknown"

// CitationLabel derives the display label for one chunk:
// "[<filename> p.<page>]" when a page number is present, "[<filename>]"
// otherwise, with "unknown" substituted for a missing filename.
func CitationLabel(meta map[string]any) string {
	filename, ok := document.StringValue(meta, document.KeyFilename)
	if !ok || filename == "" {
		filename = unknownSource
	}
	if page, ok := document.PageNumber(meta); ok {
		return fmt.Sprintf("[%s p.%d]", filename, page)
	}
	return fmt.Sprintf("[%s]", filename)
}

// ExtractCitations derives the citation list for an ordered chunk sequence:
// one label per chunk, deduplicated preserving first-occurrence order, then
// truncated to limit entries.
func ExtractCitations(chunks []document.Chunk, limit int) []string {
	if limit <= 0 {
		limit = DefaultCitationLimit
	}

	seen := make(map[string]struct{}, len(chunks))
	citations := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		label := CitationLabel(chunk.Metadata)
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		citations = append(citations, label)
	}

	if len(citations) > limit {
		citations = citations[:limit]
	}
	return citations
}
