package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/DocsChat/internal/config"
	"github.com/akolanti/DocsChat/internal/domain/docModel"
	"github.com/akolanti/DocsChat/internal/metrics"
	"github.com/akolanti/DocsChat/internal/rag/chunker"
	"github.com/akolanti/DocsChat/internal/rag/crawler"
	"github.com/akolanti/DocsChat/internal/rag/embedding"
	"github.com/akolanti/DocsChat/internal/rag/normalize"
	"github.com/akolanti/DocsChat/internal/rag/vectorDB"
	"github.com/akolanti/DocsChat/pkg/logger_i"
)

type Status string

const (
	StatusCompleted       Status = "completed"
	StatusAlreadyIngested Status = "already_ingested"
)

type Result struct {
	Status         Status
	ChunksIngested int
}

// ErrAlreadyRunning means another trigger in this process is mid-run. The
// caller retries after it finishes (and then hits the gate short-circuit).
var ErrAlreadyRunning = errors.New("ingestion already in progress")

// PageSource is the crawl seam, satisfied by crawler.Crawler.
type PageSource interface {
	Crawl(ctx context.Context, seedURL string) ([]crawler.Page, error)
}

// Pipeline runs the one-shot corpus ingestion: crawl, normalize, chunk, embed
// in batches, persist every chunk to BOTH the document store and the vector
// index, and only then flip the persisted gate. Any failure aborts the run
// with the gate unset, so the retry redoes the full corpus - there is no
// partial-completion bookkeeping, and the gate being irreversible is exactly
// why a half-written corpus must never reach it.
type Pipeline struct {
	source   PageSource
	embedder embedding.Embedder
	index    vectorDB.Index
	docs     docModel.DocumentStore
	gate     docModel.GateStore
	logger   *logger_i.Logger

	mu sync.Mutex //one run per process at a time
}

func NewPipeline(source PageSource, e embedding.Embedder, index vectorDB.Index, docs docModel.DocumentStore, gate docModel.GateStore) *Pipeline {
	return &Pipeline{
		source:   source,
		embedder: e,
		index:    index,
		docs:     docs,
		gate:     gate,
		logger:   logger_i.NewLogger("Ingestion"),
	}
}

// Run ingests the corpus once. Safe to invoke repeatedly: after the first
// completed run every call short-circuits on the gate.
func (p *Pipeline) Run(ctx context.Context, seedURL string) (Result, error) {
	if !p.mu.TryLock() {
		return Result{}, ErrAlreadyRunning
	}
	defer p.mu.Unlock()

	log := p.logger.WithTrace(ctx)

	ingested, err := p.gate.IsSet(ctx, config.IngestedGateKey)
	if err != nil {
		return Result{}, fmt.Errorf("reading ingestion gate: %w", err)
	}
	if ingested {
		log.Info("Documents already ingested, nothing to do")
		return Result{Status: StatusAlreadyIngested}, nil
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("ingestion_run", time.Since(start)) }()

	pages, err := p.source.Crawl(ctx, seedURL)
	if err != nil {
		return Result{}, fmt.Errorf("crawl failed: %w", err)
	}
	log.Info("Crawl complete", "pages", len(pages))

	docs := prepareChunks(pages)
	if len(docs) == 0 {
		return Result{}, errors.New("crawl produced no ingestable content")
	}
	log.Info("Chunking complete", "chunks", len(docs))

	if err := p.index.EnsureCollection(ctx); err != nil {
		return Result{}, fmt.Errorf("ensuring vector collection: %w", err)
	}

	if err := p.embedAndStore(ctx, docs); err != nil {
		//gate stays unset on purpose, the retry redoes everything
		return Result{}, err
	}

	// every chunk is durable in both stores - the CAS below is the single
	// linearization point for "the corpus exists"
	setByUs, err := p.gate.TrySet(ctx, config.IngestedGateKey)
	if err != nil {
		return Result{}, fmt.Errorf("setting ingestion gate: %w", err)
	}
	if !setByUs {
		//a concurrent run beat us to it; our writes were the same ids with
		//the same content, so nothing was harmed
		log.Warn("Gate was set concurrently, reporting already ingested")
		return Result{Status: StatusAlreadyIngested}, nil
	}

	metrics.AddChunksIngested(len(docs))
	log.Info("Ingestion completed", "chunks", len(docs), "took", time.Since(start))
	return Result{Status: StatusCompleted, ChunksIngested: len(docs)}, nil
}

// prepareChunks normalizes every fetched page and splits it into overlapping
// documents. Pages that normalize to nothing are dropped - fatal for that
// page only, never for the run.
func prepareChunks(pages []crawler.Page) []docModel.Document {
	var all []docModel.Document
	for _, page := range pages {
		text := normalize.HTMLToText(string(page.Body), config.PlainTextWrapWidth)
		if strings.TrimSpace(text) == "" {
			continue
		}
		all = append(all, chunker.ChunkPage(page.URL, page.Depth, text, config.ChunkSize, config.ChunkOverlap)...)
	}
	return all
}
