package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks askdocs/internal/vectorstore VectorStore

import "context"

// payloadTextKey is the payload field carrying chunk content. The corpus has
// no other persistent home, so chunk text travels with its vector.
const payloadTextKey = "text"

// Point represents a vector point with chunk content and metadata.
type Point struct {
	ID      string
	Vec     []float32
	Content string
	Meta    map[string]any
}

// SearchResult represents a single similarity search hit, best-first.
type SearchResult struct {
	PointID string
	Score   float32
	Content string
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search, returning up to k results ranked
	// best-first.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// CollectionExists checks if a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
