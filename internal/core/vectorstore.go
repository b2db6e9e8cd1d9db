package core

import (
	"context"
	"errors"
)

// ErrDimensionMismatch is returned when the collection already exists with
// a different vector size than the embedding model produces. Switching
// embedding models requires recreating the collection; silently writing
// mis-sized vectors would corrupt search results.
var ErrDimensionMismatch = errors.New("collection vector dimension does not match embedding output")

// Point is the unit stored in the vector index: a deterministic id, a
// fixed-length vector and the chunk's display payload.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// SearchHit is one nearest-neighbor result, most similar first.
type SearchHit struct {
	Score   float32
	Payload map[string]any
}

// VectorStore abstracts the vector index (Qdrant or Postgres/pgvector) so
// higher layers never depend on a specific backend. One collection per
// store instance; cosine distance; dimensionality fixed at creation.
type VectorStore interface {
	// EnsureCollection creates the collection when missing. When it already
	// exists it verifies the stored dimension and returns
	// ErrDimensionMismatch on conflict; it never alters the collection.
	EnsureCollection(ctx context.Context, dim int) error

	// RecreateCollection drops and rebuilds the collection. Used for full
	// reprocessing runs.
	RecreateCollection(ctx context.Context, dim int) error

	// Upsert writes points with create-or-replace semantics keyed by id.
	Upsert(ctx context.Context, points []Point) error

	// Search returns up to limit hits ordered by cosine similarity.
	Search(ctx context.Context, vector []float32, limit int) ([]SearchHit, error)
}
