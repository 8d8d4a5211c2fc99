package ingest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"askdocs/internal/document"
)

// PDFLoader loads PDF files, one Document per page so chunk metadata can
// carry a real page number.
type PDFLoader struct{}

// NewPDFLoader creates a new PDF loader.
func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

// Extensions returns the extensions handled by the PDF loader.
func (l *PDFLoader) Extensions() []string {
	return []string{".pdf"}
}

// Load extracts plain text from each page of a PDF. Pages that yield no
// text are skipped. Files whose pages cannot be parsed individually fall
// back to a whole-document printable-text pass with no page numbers.
func (l *PDFLoader) Load(path string) ([]document.Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	filename := filepath.Base(path)
	totalPages := reader.NumPage()

	var docs []document.Document
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single broken page should not sink the whole file.
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		docs = append(docs, document.Document{
			Content: text,
			Metadata: map[string]any{
				"filename":    filename,
				"source":      path,
				"format":      "pdf",
				"page":        pageNum,
				"total_pages": totalPages,
			},
		})
	}

	if len(docs) > 0 {
		return docs, nil
	}

	// Per-page extraction produced nothing; salvage printable text from the
	// whole document without page attribution.
	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from pdf %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return nil, fmt.Errorf("failed to read pdf text %s: %w", path, err)
	}

	text := strings.TrimSpace(printableText(buf.String()))
	if text == "" {
		return nil, nil
	}

	return []document.Document{{
		Content: text,
		Metadata: map[string]any{
			"filename": filename,
			"source":   path,
			"format":   "pdf",
			"page":     nil,
		},
	}}, nil
}

// printableText strips non-printable runes, keeping newlines and tabs.
func printableText(in string) string {
	var b strings.Builder
	b.Grow(len(in))
	for _, r := range in {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(r)
		case r >= 32 && r != utf8.RuneError:
			b.WriteRune(r)
		}
	}
	return b.String()
}
