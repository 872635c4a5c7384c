package vectorDB

import (
	"context"
	"fmt"

	"github.com/akolanti/DocsChat/internal/domain/docModel"
)

// Match is one approximate-nearest-neighbor hit, already ranked by the index.
// Only the id comes back - the passage content is fetched from the document
// store so the two stay referentially consistent.
type Match struct {
	Id    string
	Score float32
}

// Index is the vector store seam. Upserting the same id twice with the same
// vector is harmless, which is what makes ingestion retries safe.
type Index interface {
	EnsureCollection(ctx context.Context) error
	UpsertBatch(ctx context.Context, docs []docModel.Document, vectors [][]float32) error
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
}

// VectorQueryError is fatal for the request that issued the query.
type VectorQueryError struct {
	Err error
}

func (e *VectorQueryError) Error() string { return fmt.Sprintf("vector query: %v", e.Err) }
func (e *VectorQueryError) Unwrap() error { return e.Err }
