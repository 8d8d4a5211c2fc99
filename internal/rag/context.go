package rag

import (
	"fmt"
	"strings"

	"askdocs/internal/document"
)

// BuildContext formats retrieved chunks into the prompt context block. Each
// chunk renders as a "Source <i> <citation>" header followed by its raw
// content; blocks are joined by blank lines in input order. The candidate
// set must already be bounded; no truncation happens here.
func BuildContext(chunks []document.Chunk) string {
	blocks := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		header := fmt.Sprintf("Source %d %s", i+1, CitationLabel(chunk.Metadata))
		blocks = append(blocks, header+"\n"+chunk.Content)
	}
	return strings.Join(blocks, "\n\n")
}
