package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScannedFile represents a supported corpus file found during scanning.
type ScannedFile struct {
	RelPath string // Relative path from the corpus root
	AbsPath string // Absolute file path
}

// Scanner walks a corpus directory collecting files the loader registry
// supports.
type Scanner struct {
	root     string
	registry *Registry
}

// NewScanner creates a Scanner over the given corpus root.
func NewScanner(root string, registry *Registry) *Scanner {
	return &Scanner{root: root, registry: registry}
}

// Scan walks the corpus root and returns every supported file. Hidden
// directories are skipped.
func (s *Scanner) Scan(ctx context.Context) ([]ScannedFile, error) {
	var files []ScannedFile

	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != s.root {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.registry.Supported(path) {
			return nil
		}

		relPath, err := filepath.Rel(s.root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		files = append(files, ScannedFile{
			RelPath: filepath.ToSlash(relPath),
			AbsPath: path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan corpus %s: %w", s.root, err)
	}

	return files, nil
}
