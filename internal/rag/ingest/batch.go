package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/DocsChat/internal/config"
	"github.com/akolanti/DocsChat/internal/domain/docModel"
	"github.com/akolanti/DocsChat/internal/metrics"
)

// embedAndStore walks the corpus in embedding batches. For each batch every
// document row is written before the batch's vectors are upserted, so an id
// can only ever appear in the index once its content is resolvable - the
// referential consistency invariant. The first error aborts the whole run.
func (p *Pipeline) embedAndStore(ctx context.Context, docs []docModel.Document) error {
	log := p.logger.WithTrace(ctx)

	for i := 0; i < len(docs); i += config.EmbedBatchSize {
		end := min(i+config.EmbedBatchSize, len(docs))
		batch := docs[i:end]

		vectors, err := p.embedBatch(ctx, batch)
		if err != nil {
			return err
		}

		if err := p.writeDocuments(ctx, batch); err != nil {
			return err
		}

		if err := p.upsertBatch(ctx, batch, vectors); err != nil {
			return err
		}

		log.Debug("Batch ingested", "from", i, "to", end)
	}
	return nil
}

func (p *Pipeline) embedBatch(ctx context.Context, batch []docModel.Document) ([][]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	texts := make([]string, len(batch))
	for i, doc := range batch {
		texts[i] = doc.Content
	}

	callCtx, cancel := context.WithTimeout(ctx, config.EmbedCallTimeout)
	defer cancel()

	vectors, err := p.embedder.EmbedDocuments(callCtx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding batch failed: %w", asTimeout(err))
	}
	if len(vectors) != len(batch) {
		//must not upsert vectors we never computed
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
	}
	return vectors, nil
}

// writeDocuments fans the batch out over a small bounded worker set. All
// writes must land; the first failure wins and fails the run.
func (p *Pipeline) writeDocuments(ctx context.Context, batch []docModel.Document) error {
	jobs := make(chan docModel.Document)
	errc := make(chan error, config.IngestWriters)
	var wg sync.WaitGroup

	for range config.IngestWriters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				if err := p.docs.PutDocument(ctx, doc); err != nil {
					select {
					case errc <- err:
					default:
					}
					return
				}
			}
		}()
	}

	for _, doc := range batch {
		select {
		case err := <-errc:
			close(jobs)
			wg.Wait()
			return fmt.Errorf("document write failed: %w", asTimeout(err))
		case jobs <- doc:
		}
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errc:
		return fmt.Errorf("document write failed: %w", asTimeout(err))
	default:
		return nil
	}
}

func (p *Pipeline) upsertBatch(ctx context.Context, batch []docModel.Document, vectors [][]float32) error {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_upsert", time.Since(start)) }()

	callCtx, cancel := context.WithTimeout(ctx, config.VectorQueryTimeout)
	defer cancel()

	if err := p.index.UpsertBatch(callCtx, batch, vectors); err != nil {
		return fmt.Errorf("vector upsert failed: %w", asTimeout(err))
	}
	return nil
}

func asTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", docModel.ErrUpstreamTimeout, err)
	}
	return err
}
