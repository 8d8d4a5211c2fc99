package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"askdocs/internal/contextutil"
	"askdocs/internal/document"
	"askdocs/internal/storage"
	"askdocs/internal/vectorstore"
)

// Embedder turns chunk texts into vectors. Implemented by llm.EmbeddingsClient.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Stats summarizes one ingestion run.
type Stats struct {
	Scanned int `json:"scanned"`
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
	Removed int `json:"removed"`
	Errors  int `json:"errors"`
}

// Pipeline transforms corpus files into sanitized, overlapping chunks and
// stores them as vector points. A SQLite ledger tracks content hashes so
// unchanged files are skipped and stale points are deleted on re-index.
type Pipeline struct {
	root        string
	registry    *Registry
	scanner     *Scanner
	splitter    *Splitter
	ledger      storage.Ledger
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
}

// NewPipeline creates a new ingestion pipeline over the corpus root.
func NewPipeline(
	root string,
	ledger storage.Ledger,
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	chunkSize, chunkOverlap int,
) *Pipeline {
	registry := DefaultRegistry()
	return &Pipeline{
		root:        root,
		registry:    registry,
		scanner:     NewScanner(root, registry),
		splitter:    NewSplitter(chunkSize, chunkOverlap),
		ledger:      ledger,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
	}
}

// IndexAll scans the corpus and indexes every supported file, then prunes
// ledger entries (and their vector points) for files that no longer exist.
// Errors for individual files are logged but don't stop the run.
func (p *Pipeline) IndexAll(ctx context.Context) (Stats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	files, err := p.scanner.Scan(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to scan corpus: %w", err)
	}

	stats := Stats{Scanned: len(files)}
	logger.InfoContext(ctx, "starting ingestion", "corpus", p.root, "files", len(files))

	present := make(map[string]struct{}, len(files))
	for _, file := range files {
		present[file.RelPath] = struct{}{}

		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		indexed, err := p.IndexFile(ctx, file)
		if err != nil {
			stats.Errors++
			logger.ErrorContext(ctx, "failed to index file", "rel_path", file.RelPath, "error", err)
			continue
		}
		if indexed {
			stats.Indexed++
		} else {
			stats.Skipped++
		}
	}

	removed, err := p.prune(ctx, present)
	if err != nil {
		logger.WarnContext(ctx, "failed to prune removed files", "error", err)
		stats.Errors++
	}
	stats.Removed = removed

	logger.InfoContext(ctx, "ingestion completed",
		"scanned", stats.Scanned,
		"indexed", stats.Indexed,
		"skipped", stats.Skipped,
		"removed", stats.Removed,
		"errors", stats.Errors,
	)

	if stats.Errors > 0 {
		return stats, fmt.Errorf("ingestion completed with %d errors", stats.Errors)
	}
	return stats, nil
}

// IndexFile indexes a single corpus file. It returns false when the file is
// unchanged since the last run and was skipped.
func (p *Pipeline) IndexFile(ctx context.Context, file ScannedFile) (bool, error) {
	logger := contextutil.LoggerFromContext(ctx)

	raw, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return false, fmt.Errorf("failed to read file %s: %w", file.AbsPath, err)
	}
	hashHex := fmt.Sprintf("%x", sha256.Sum256(raw))

	existing, err := p.ledger.GetByPath(ctx, file.RelPath)
	if err != nil && err != storage.ErrNotFound {
		return false, fmt.Errorf("failed to check ledger: %w", err)
	}
	if existing != nil && existing.Hash == hashHex {
		logger.DebugContext(ctx, "skipping unchanged file", "rel_path", file.RelPath, "hash", hashHex)
		return false, nil
	}

	loader, ok := p.registry.LoaderFor(file.AbsPath)
	if !ok {
		return false, fmt.Errorf("no loader for %s", file.AbsPath)
	}
	docs, err := loader.Load(file.AbsPath)
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", file.AbsPath, err)
	}

	chunks := p.chunkDocuments(docs, file)
	if len(chunks) == 0 {
		logger.WarnContext(ctx, "no chunks generated", "rel_path", file.RelPath)
		return false, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return false, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return false, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	documentID := uuid.New().String()
	if existing != nil {
		documentID = existing.ID

		// Changed file: remove the old points before upserting new ones.
		oldChunkIDs, err := p.ledger.ListChunkIDs(ctx, documentID)
		if err != nil {
			return false, fmt.Errorf("failed to list old chunk IDs: %w", err)
		}
		if len(oldChunkIDs) > 0 {
			if err := p.vectorStore.Delete(ctx, p.collection, oldChunkIDs); err != nil {
				logger.WarnContext(ctx, "failed to delete old points", "rel_path", file.RelPath, "count", len(oldChunkIDs), "error", err)
				// Continue anyway - new points overwrite by ID where they collide
			}
		}
	}

	points := make([]vectorstore.Point, len(chunks))
	chunkIDs := make([]string, len(chunks))
	for i, chunk := range chunks {
		chunkID := uuid.New().String()
		chunkIDs[i] = chunkID
		points[i] = vectorstore.Point{
			ID:      chunkID,
			Vec:     embeddings[i],
			Content: chunk.Content,
			Meta:    chunk.Metadata,
		}
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return false, fmt.Errorf("failed to upsert points: %w", err)
	}

	if err := p.ledger.Upsert(ctx, &storage.DocumentRecord{
		ID:       documentID,
		RelPath:  file.RelPath,
		Filename: filepath.Base(file.RelPath),
		Hash:     hashHex,
	}); err != nil {
		return false, fmt.Errorf("failed to record document: %w", err)
	}
	if err := p.ledger.ReplaceChunkIDs(ctx, documentID, chunkIDs); err != nil {
		return false, fmt.Errorf("failed to record chunk IDs: %w", err)
	}

	logger.InfoContext(ctx, "indexed file", "rel_path", file.RelPath, "documents", len(docs), "chunks", len(chunks))
	return true, nil
}

// chunkDocuments splits loaded documents and attaches sanitized chunk
// metadata: the parent's sanitized metadata plus filename, source, page
// (nil when not applicable) and chunk_index.
func (p *Pipeline) chunkDocuments(docs []document.Document, file ScannedFile) []document.Chunk {
	var chunks []document.Chunk
	index := 0
	for _, doc := range docs {
		parentMeta := document.SanitizeMetadata(doc.Metadata)

		for _, text := range p.splitter.Split(doc.Content) {
			meta := make(map[string]any, len(parentMeta)+4)
			for k, v := range parentMeta {
				meta[k] = v
			}
			if _, ok := document.StringValue(meta, document.KeyFilename); !ok {
				meta[document.KeyFilename] = filepath.Base(file.RelPath)
			}
			if _, ok := document.StringValue(meta, document.KeySource); !ok {
				meta[document.KeySource] = file.AbsPath
			}
			if _, ok := meta[document.KeyPage]; !ok {
				meta[document.KeyPage] = nil
			}
			meta["chunk_index"] = index

			chunks = append(chunks, document.Chunk{
				Content:  text,
				Metadata: meta,
			})
			index++
		}
	}
	return chunks
}

// prune deletes ledger entries and vector points for files no longer present
// in the corpus.
func (p *Pipeline) prune(ctx context.Context, present map[string]struct{}) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	paths, err := p.ledger.ListPaths(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list indexed paths: %w", err)
	}

	removed := 0
	for _, relPath := range paths {
		if _, ok := present[relPath]; ok {
			continue
		}

		rec, err := p.ledger.GetByPath(ctx, relPath)
		if err != nil {
			return removed, fmt.Errorf("failed to load record for %s: %w", relPath, err)
		}
		chunkIDs, err := p.ledger.ListChunkIDs(ctx, rec.ID)
		if err != nil {
			return removed, fmt.Errorf("failed to list chunk IDs for %s: %w", relPath, err)
		}
		if len(chunkIDs) > 0 {
			if err := p.vectorStore.Delete(ctx, p.collection, chunkIDs); err != nil {
				return removed, fmt.Errorf("failed to delete points for %s: %w", relPath, err)
			}
		}
		if err := p.ledger.Delete(ctx, rec.ID); err != nil {
			return removed, fmt.Errorf("failed to delete record for %s: %w", relPath, err)
		}

		removed++
		logger.InfoContext(ctx, "pruned removed file", "rel_path", relPath, "points", len(chunkIDs))
	}
	return removed, nil
}
