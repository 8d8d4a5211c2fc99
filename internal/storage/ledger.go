package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ledger.go -package=mocks askdocs/internal/storage Ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DocumentRecord tracks one ingested source file in the ledger.
type DocumentRecord struct {
	ID        string // UUID
	RelPath   string // Relative path from the corpus root
	Filename  string // Base name of the source file
	Hash      string // SHA256 hex string of file content
	IndexedAt time.Time
}

// Ledger records which source files have been ingested and which vector
// points belong to each, so re-indexing can skip unchanged files and delete
// stale points. The corpus itself lives only in the vector store.
type Ledger interface {
	// GetByPath gets a document record by relative path. Returns ErrNotFound
	// if the file has never been indexed.
	GetByPath(ctx context.Context, relPath string) (*DocumentRecord, error)
	// Upsert inserts or replaces a document record by relative path.
	Upsert(ctx context.Context, rec *DocumentRecord) error
	// ListChunkIDs returns the vector point IDs recorded for a document.
	ListChunkIDs(ctx context.Context, documentID string) ([]string, error)
	// ReplaceChunkIDs replaces the recorded point IDs for a document.
	ReplaceChunkIDs(ctx context.Context, documentID string, chunkIDs []string) error
	// ListPaths returns every indexed relative path.
	ListPaths(ctx context.Context) ([]string, error)
	// Delete removes a document record and its chunk rows.
	Delete(ctx context.Context, documentID string) error
}

// SQLiteLedger implements Ledger over a SQLite database.
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger creates a new SQLiteLedger.
func NewSQLiteLedger(db *sql.DB) *SQLiteLedger {
	return &SQLiteLedger{db: db}
}

// GetByPath gets a document record by relative path.
func (l *SQLiteLedger) GetByPath(ctx context.Context, relPath string) (*DocumentRecord, error) {
	var rec DocumentRecord
	err := l.db.QueryRowContext(ctx,
		"SELECT id, rel_path, filename, hash, indexed_at FROM documents WHERE rel_path = ?",
		relPath,
	).Scan(&rec.ID, &rec.RelPath, &rec.Filename, &rec.Hash, &rec.IndexedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return &rec, nil
}

// Upsert inserts or replaces a document record by relative path.
func (l *SQLiteLedger) Upsert(ctx context.Context, rec *DocumentRecord) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO documents (id, rel_path, filename, hash, indexed_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(rel_path) DO UPDATE SET
		   filename = excluded.filename,
		   hash = excluded.hash,
		   indexed_at = CURRENT_TIMESTAMP`,
		rec.ID, rec.RelPath, rec.Filename, rec.Hash,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// ListChunkIDs returns the vector point IDs recorded for a document, ordered
// by chunk index. Returns an empty slice if none exist (not an error).
func (l *SQLiteLedger) ListChunkIDs(ctx context.Context, documentID string) ([]string, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT id FROM chunks WHERE document_id = ? ORDER BY chunk_index",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chunk ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, nil
}

// ReplaceChunkIDs replaces the recorded point IDs for a document.
func (l *SQLiteLedger) ReplaceChunkIDs(ctx context.Context, documentID string, chunkIDs []string) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("failed to delete old chunk rows: %w", err)
	}
	for i, id := range chunkIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO chunks (id, document_id, chunk_index) VALUES (?, ?, ?)",
			id, documentID, i,
		); err != nil {
			return fmt.Errorf("failed to insert chunk row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunk rows: %w", err)
	}
	return nil
}

// ListPaths returns every indexed relative path.
func (l *SQLiteLedger) ListPaths(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT rel_path FROM documents ORDER BY rel_path")
	if err != nil {
		return nil, fmt.Errorf("failed to query paths: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return paths, nil
}

// Delete removes a document record; chunk rows cascade.
func (l *SQLiteLedger) Delete(ctx context.Context, documentID string) error {
	_, err := l.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", documentID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
