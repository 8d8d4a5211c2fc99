package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"askdocs/internal/document"
)

// MarkdownLoader loads markdown files by parsing them with goldmark and
// extracting the plain text, so retrieval matches prose rather than syntax.
type MarkdownLoader struct {
	parser goldmark.Markdown
}

// NewMarkdownLoader creates a new markdown loader.
func NewMarkdownLoader() *MarkdownLoader {
	return &MarkdownLoader{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// Extensions returns the extensions handled by the markdown loader.
func (l *MarkdownLoader) Extensions() []string {
	return []string{".md", ".markdown"}
}

// Load parses a markdown file into one Document of plain text. The document
// title (first heading, or the filename when there is none) is carried in
// metadata.
func (l *MarkdownLoader) Load(path string) ([]document.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	doc := l.parser.Parser().Parse(text.NewReader(raw))
	plain := extractPlainText(doc, raw)
	if strings.TrimSpace(plain) == "" {
		return nil, nil
	}

	title := extractTitle(doc, raw)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return []document.Document{{
		Content: plain,
		Metadata: map[string]any{
			"filename": filepath.Base(path),
			"source":   path,
			"format":   "md",
			"title":    title,
		},
	}}, nil
}

// extractTitle returns the text of the first level-1 heading, falling back
// to the first level-2 heading.
func extractTitle(doc ast.Node, content []byte) string {
	var firstH1, firstH2 string

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok {
			headingText := nodeText(heading, content)
			if heading.Level == 1 && firstH1 == "" {
				firstH1 = headingText
			} else if heading.Level == 2 && firstH2 == "" && firstH1 == "" {
				firstH2 = headingText
			}
			if firstH1 != "" {
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})

	if firstH1 != "" {
		return firstH1
	}
	return firstH2
}

// extractPlainText walks the AST and collects text content, separating
// block-level nodes with newlines.
func extractPlainText(doc ast.Node, content []byte) string {
	var b strings.Builder

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(content))
			if node.HardLineBreak() || node.SoftLineBreak() {
				b.WriteString("\n")
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.CodeBlock:
			writeLines(&b, node, content)
		case *ast.FencedCodeBlock:
			writeLines(&b, node, content)
		case *ast.Heading, *ast.Paragraph, *ast.ListItem, *ast.Blockquote:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}

// writeLines appends the raw source lines of a block node.
func writeLines(b *strings.Builder, n ast.Node, content []byte) {
	if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(content))
	}
}

// nodeText extracts the text content of a node and its children.
func nodeText(n ast.Node, content []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
