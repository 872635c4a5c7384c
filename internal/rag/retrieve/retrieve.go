package retrieve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DocsChat/internal/config"
	"github.com/akolanti/DocsChat/internal/domain/docModel"
	"github.com/akolanti/DocsChat/internal/metrics"
	"github.com/akolanti/DocsChat/internal/rag/embedding"
	"github.com/akolanti/DocsChat/internal/rag/vectorDB"
	"github.com/akolanti/DocsChat/pkg/logger_i"
)

// Orchestrator turns a user query into the ordered grounding set: embed the
// query, ask the index for the nearest chunk ids, resolve each id to its
// stored passage. Index rank order is preserved end to end - it becomes the
// [k] citation numbering the model sees.
type Orchestrator struct {
	embedder embedding.Embedder
	index    vectorDB.Index
	docs     docModel.DocumentStore
	logger   *logger_i.Logger
}

func NewOrchestrator(e embedding.Embedder, index vectorDB.Index, docs docModel.DocumentStore) *Orchestrator {
	return &Orchestrator{
		embedder: e,
		index:    index,
		docs:     docs,
		logger:   logger_i.NewLogger("Retrieval"),
	}
}

// Retrieve returns up to topK passages ranked 1..N. An embedding or index
// failure aborts the request; a match whose document row is missing is
// dropped and the rest keep their relative order with re-numbered ranks.
func (o *Orchestrator) Retrieve(ctx context.Context, query string, topK int) ([]docModel.Retrieved, error) {
	log := o.logger.WithTrace(ctx)

	vector, err := o.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := o.search(ctx, vector, topK)
	if err != nil {
		return nil, err
	}

	retrieved := make([]docModel.Retrieved, 0, len(matches))
	for _, match := range matches {
		doc, err := o.lookup(ctx, match.Id)
		if errors.Is(err, docModel.ErrDocumentNotFound) {
			//index and store disagree - degrade instead of failing the request
			log.Warn("Vector match has no document row, dropping", "id", match.Id)
			continue
		}
		if err != nil {
			log.Warn("Document lookup failed, dropping match", "id", match.Id, "error", err)
			continue
		}
		retrieved = append(retrieved, docModel.Retrieved{
			Rank:     len(retrieved) + 1,
			Document: doc,
		})
	}

	log.Debug("Retrieval done", "matches", len(matches), "resolved", len(retrieved))
	return retrieved, nil
}

func (o *Orchestrator) embedQuery(ctx context.Context, query string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	callCtx, cancel := context.WithTimeout(ctx, config.EmbedCallTimeout)
	defer cancel()

	vector, err := o.embedder.EmbedQuery(callCtx, query)
	if err != nil {
		return nil, asTimeout(err)
	}
	return vector, nil
}

func (o *Orchestrator) search(ctx context.Context, vector []float32, topK int) ([]vectorDB.Match, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	callCtx, cancel := context.WithTimeout(ctx, config.VectorQueryTimeout)
	defer cancel()

	matches, err := o.index.Query(callCtx, vector, topK)
	if err != nil {
		return nil, asTimeout(err)
	}
	return matches, nil
}

func (o *Orchestrator) lookup(ctx context.Context, id string) (docModel.Document, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_lookup", time.Since(start)) }()

	callCtx, cancel := context.WithTimeout(ctx, config.DocumentGetTimeout)
	defer cancel()

	return o.docs.GetDocument(callCtx, id)
}

// asTimeout resurfaces a blown deadline as the retryable timeout condition
// instead of whatever the client library wrapped it in.
func asTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", docModel.ErrUpstreamTimeout, err)
	}
	return err
}
