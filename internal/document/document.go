package document

// Document is a unit of loaded source text with loader-supplied metadata.
// Loader metadata is untrusted and of unknown shape; it must pass through
// SanitizeMetadata before it is stored or displayed.
type Document struct {
	Content  string
	Metadata map[string]any
}

// Chunk is a bounded substring of a source document, the unit of retrieval.
// Its metadata is the parent document's sanitized metadata plus the chunk
// fields "filename", "source" and "page" (nil when not applicable).
type Chunk struct {
	Content  string
	Metadata map[string]any
}

// Metadata keys attached to every stored chunk.
const (
	KeyFilename = "filename"
	KeySource   = "source"
	KeyPage     = "page"
)
