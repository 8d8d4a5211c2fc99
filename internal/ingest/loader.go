package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"askdocs/internal/document"
)

// Loader reads a source file and yields one or more raw Documents.
// Loader metadata is loader-specific and untrusted; the pipeline sanitizes
// it before anything is stored.
type Loader interface {
	// Load reads the file at path. Paginated formats may return one
	// Document per page.
	Load(path string) ([]document.Document, error)

	// Extensions lists the lowercase file extensions this loader handles.
	Extensions() []string
}

// Registry dispatches files to loaders by extension.
type Registry struct {
	byExt map[string]Loader
}

// NewRegistry builds a Registry over the given loaders. Later loaders win on
// extension conflicts.
func NewRegistry(loaders ...Loader) *Registry {
	byExt := make(map[string]Loader)
	for _, l := range loaders {
		for _, ext := range l.Extensions() {
			byExt[ext] = l
		}
	}
	return &Registry{byExt: byExt}
}

// DefaultRegistry returns a Registry with the built-in PDF, text and
// markdown loaders.
func DefaultRegistry() *Registry {
	return NewRegistry(NewTextLoader(), NewMarkdownLoader(), NewPDFLoader())
}

// LoaderFor returns the loader for a path, or false when the extension is
// not supported.
func (r *Registry) LoaderFor(path string) (Loader, bool) {
	l, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return l, ok
}

// Supported reports whether any registered loader handles the path.
func (r *Registry) Supported(path string) bool {
	_, ok := r.LoaderFor(path)
	return ok
}

// TextLoader loads plain UTF-8 text files as a single Document.
type TextLoader struct{}

// NewTextLoader creates a new plain-text loader.
func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

// Extensions returns the extensions handled by the text loader.
func (l *TextLoader) Extensions() []string {
	return []string{".txt"}
}

// Load reads a text file into one Document. Binary content is rejected.
func (l *TextLoader) Load(path string) ([]document.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("file %s is not valid UTF-8 text", path)
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, nil
	}

	return []document.Document{{
		Content: text,
		Metadata: map[string]any{
			"filename": filepath.Base(path),
			"source":   path,
			"format":   "txt",
		},
	}}, nil
}
