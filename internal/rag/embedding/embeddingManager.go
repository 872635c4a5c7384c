package embedding

import (
	"context"
	"fmt"
)

// Embedder maps text to fixed-dimension vectors. EmbedDocuments is order- and
// length-preserving (result[i] belongs to texts[i]) and accepts any batch size
// the caller picks - batching is a throughput knob, not a correctness one.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingError is returned for an empty batch, inputs past the model's
// context limit, or a provider response that violates the calling convention
// (wrong count, empty vectors). A batch that errors must not be upserted.
type EmbeddingError struct {
	Reason string
	Err    error
}

func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding: %s: %v", e.Reason, e.Err)
	}
	return "embedding: " + e.Reason
}

func (e *EmbeddingError) Unwrap() error { return e.Err }
