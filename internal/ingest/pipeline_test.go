package ingest

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/mock/gomock"

	"askdocs/internal/document"
	ragmocks "askdocs/internal/rag/mocks"
	"askdocs/internal/storage"
	storagemocks "askdocs/internal/storage/mocks"
	"askdocs/internal/vectorstore"
	vsmocks "askdocs/internal/vectorstore/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const testCollection = "docs"

func TestPipeline_IndexAll_FreshCorpus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	writeTestFile(t, dir, "notes.txt", "Go compiles quickly to machine code.")

	ledger := storagemocks.NewMockLedger(ctrl)
	embedder := ragmocks.NewMockEmbedder(ctrl)
	store := vsmocks.NewMockVectorStore(ctrl)

	ledger.EXPECT().
		GetByPath(gomock.Any(), "notes.txt").
		Return(nil, storage.ErrNotFound)
	embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Len(1)).
		Return([][]float32{{0.1, 0.2}}, nil)
	store.EXPECT().
		Upsert(gomock.Any(), testCollection, gomock.Len(1)).
		DoAndReturn(func(_ context.Context, _ string, points []vectorstore.Point) error {
			p := points[0]
			if p.Content != "Go compiles quickly to machine code." {
				t.Errorf("Upsert point content = %q", p.Content)
			}
			if name, _ := document.StringValue(p.Meta, document.KeyFilename); name != "notes.txt" {
				t.Errorf("Upsert point filename = %q", name)
			}
			if page, ok := p.Meta[document.KeyPage]; !ok || page != nil {
				t.Errorf("Upsert point page = %v, want explicit nil", page)
			}
			return nil
		})
	ledger.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *storage.DocumentRecord) error {
			if rec.RelPath != "notes.txt" || rec.Filename != "notes.txt" {
				t.Errorf("ledger record = %+v", rec)
			}
			if rec.Hash == "" {
				t.Error("ledger record has empty hash")
			}
			return nil
		})
	ledger.EXPECT().
		ReplaceChunkIDs(gomock.Any(), gomock.Any(), gomock.Len(1)).
		Return(nil)
	ledger.EXPECT().
		ListPaths(gomock.Any()).
		Return([]string{"notes.txt"}, nil)

	p := NewPipeline(dir, ledger, embedder, store, testCollection, 1200, 200)
	stats, err := p.IndexAll(context.Background())
	if err != nil {
		t.Fatalf("IndexAll() unexpected error: %v", err)
	}

	if stats.Scanned != 1 || stats.Indexed != 1 || stats.Skipped != 0 || stats.Removed != 0 {
		t.Errorf("IndexAll() stats = %+v", stats)
	}
}

func TestPipeline_IndexAll_SkipsUnchangedFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	content := "Unchanged body."
	writeTestFile(t, dir, "same.txt", content)
	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(content)))

	ledger := storagemocks.NewMockLedger(ctrl)
	embedder := ragmocks.NewMockEmbedder(ctrl)
	store := vsmocks.NewMockVectorStore(ctrl)

	ledger.EXPECT().
		GetByPath(gomock.Any(), "same.txt").
		Return(&storage.DocumentRecord{ID: "doc-1", RelPath: "same.txt", Hash: hash}, nil)
	ledger.EXPECT().
		ListPaths(gomock.Any()).
		Return([]string{"same.txt"}, nil)
	// No embedding, no upsert on an unchanged file.
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Times(0)
	store.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	p := NewPipeline(dir, ledger, embedder, store, testCollection, 1200, 200)
	stats, err := p.IndexAll(context.Background())
	if err != nil {
		t.Fatalf("IndexAll() unexpected error: %v", err)
	}

	if stats.Skipped != 1 || stats.Indexed != 0 {
		t.Errorf("IndexAll() stats = %+v, want 1 skipped", stats)
	}
}

func TestPipeline_IndexFile_ReplacesChangedFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	path := writeTestFile(t, dir, "changed.txt", "New revision of the document.")

	ledger := storagemocks.NewMockLedger(ctrl)
	embedder := ragmocks.NewMockEmbedder(ctrl)
	store := vsmocks.NewMockVectorStore(ctrl)

	ledger.EXPECT().
		GetByPath(gomock.Any(), "changed.txt").
		Return(&storage.DocumentRecord{ID: "doc-7", RelPath: "changed.txt", Hash: "stale-hash"}, nil)
	embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Len(1)).
		Return([][]float32{{0.3}}, nil)
	ledger.EXPECT().
		ListChunkIDs(gomock.Any(), "doc-7").
		Return([]string{"old-chunk-1", "old-chunk-2"}, nil)
	store.EXPECT().
		Delete(gomock.Any(), testCollection, []string{"old-chunk-1", "old-chunk-2"}).
		Return(nil)
	store.EXPECT().
		Upsert(gomock.Any(), testCollection, gomock.Len(1)).
		Return(nil)
	ledger.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *storage.DocumentRecord) error {
			// The existing document keeps its identity.
			if rec.ID != "doc-7" {
				t.Errorf("document ID = %q, want doc-7", rec.ID)
			}
			return nil
		})
	ledger.EXPECT().
		ReplaceChunkIDs(gomock.Any(), "doc-7", gomock.Len(1)).
		Return(nil)

	p := NewPipeline(dir, ledger, embedder, store, testCollection, 1200, 200)
	indexed, err := p.IndexFile(context.Background(), ScannedFile{RelPath: "changed.txt", AbsPath: path})
	if err != nil {
		t.Fatalf("IndexFile() unexpected error: %v", err)
	}
	if !indexed {
		t.Error("IndexFile() = false, want true for changed file")
	}
}

func TestPipeline_IndexAll_PrunesRemovedFiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir() // empty corpus

	ledger := storagemocks.NewMockLedger(ctrl)
	embedder := ragmocks.NewMockEmbedder(ctrl)
	store := vsmocks.NewMockVectorStore(ctrl)

	ledger.EXPECT().
		ListPaths(gomock.Any()).
		Return([]string{"gone.txt"}, nil)
	ledger.EXPECT().
		GetByPath(gomock.Any(), "gone.txt").
		Return(&storage.DocumentRecord{ID: "doc-9", RelPath: "gone.txt"}, nil)
	ledger.EXPECT().
		ListChunkIDs(gomock.Any(), "doc-9").
		Return([]string{"chunk-a"}, nil)
	store.EXPECT().
		Delete(gomock.Any(), testCollection, []string{"chunk-a"}).
		Return(nil)
	ledger.EXPECT().
		Delete(gomock.Any(), "doc-9").
		Return(nil)

	p := NewPipeline(dir, ledger, embedder, store, testCollection, 1200, 200)
	stats, err := p.IndexAll(context.Background())
	if err != nil {
		t.Fatalf("IndexAll() unexpected error: %v", err)
	}

	if stats.Removed != 1 {
		t.Errorf("IndexAll() removed = %d, want 1", stats.Removed)
	}
}

func TestPipeline_IndexAll_CountsPerFileErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	writeTestFile(t, dir, "bad.txt", "This file will fail to embed.")

	ledger := storagemocks.NewMockLedger(ctrl)
	embedder := ragmocks.NewMockEmbedder(ctrl)
	store := vsmocks.NewMockVectorStore(ctrl)

	ledger.EXPECT().
		GetByPath(gomock.Any(), "bad.txt").
		Return(nil, storage.ErrNotFound)
	embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("embeddings service down"))
	ledger.EXPECT().
		ListPaths(gomock.Any()).
		Return(nil, nil)

	p := NewPipeline(dir, ledger, embedder, store, testCollection, 1200, 200)
	stats, err := p.IndexAll(context.Background())
	if err == nil {
		t.Fatal("IndexAll() expected aggregate error")
	}
	if stats.Errors != 1 {
		t.Errorf("IndexAll() errors = %d, want 1", stats.Errors)
	}
}

func TestScanner_Scan(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "text")
	writeTestFile(t, dir, "b.md", "# md")
	writeTestFile(t, dir, "ignored.docx", "binary-ish")

	scanner := NewScanner(dir, DefaultRegistry())
	files, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() unexpected error: %v", err)
	}

	got := make(map[string]bool, len(files))
	for _, f := range files {
		got[f.RelPath] = true
	}
	if !got["a.txt"] || !got["b.md"] {
		t.Errorf("Scan() missing supported files: %v", got)
	}
	if got["ignored.docx"] {
		t.Error("Scan() included unsupported file")
	}
}

func TestScanner_Scan_SkipsHiddenDirs(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "visible.txt", "text")

	hidden := filepath.Join(dir, ".git")
	if err := os.Mkdir(hidden, 0755); err != nil {
		t.Fatalf("failed to create hidden dir: %v", err)
	}
	writeTestFile(t, hidden, "hidden.txt", "text")

	scanner := NewScanner(dir, DefaultRegistry())
	files, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() unexpected error: %v", err)
	}

	if len(files) != 1 || files[0].RelPath != "visible.txt" {
		t.Errorf("Scan() = %v, want only visible.txt", files)
	}
}
