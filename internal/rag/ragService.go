package rag

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/akolanti/DocsChat/internal/config"
	"github.com/akolanti/DocsChat/internal/domain/docModel"
	"github.com/akolanti/DocsChat/internal/metrics"
	"github.com/akolanti/DocsChat/internal/rag/ingest"
	"github.com/akolanti/DocsChat/internal/rag/llm"
	"github.com/akolanti/DocsChat/internal/rag/retrieve"
	"github.com/akolanti/DocsChat/pkg/logger_i"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - This is the PUBLIC contract.
  - It defines the "behavior" (what the handlers can do).
  - We expose this to keep the HTTP layer decoupled from our specific logic.

2. service (Private Struct):
  - This is the PRIVATE implementation.
  - It holds the "state" (pipeline, retriever and LLM clients).
  - It is lowercase to prevent external packages from accessing our
    internal dependencies directly.

3. Pointer Receiver (*service):
  - By defining methods on (*service), the struct IMPLICITLY satisfies
    the Service interface.
  - if it quacks like a duck, -it's a duck (Duck Typing)

4. Dependency Injection (NewService):
  - This constructor links the private struct to the public interface.
  - It allows us to swap real DBs for mocks during testing without
    changing the handlers' code.
*/

var ErrEmptyConversation = errors.New("conversation has no user query")

// Service is all the handlers ever see - they don't need to know the llm,
// the vector index or the crawler.
type Service interface {
	Ingest(ctx context.Context) (ingest.Result, error)
	Chat(ctx context.Context, turns []docModel.Message) (iter.Seq2[string, error], error)
}

type service struct {
	pipeline    *ingest.Pipeline
	retriever   *retrieve.Orchestrator
	llmProvider llm.Provider
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(pipeline *ingest.Pipeline, retriever *retrieve.Orchestrator, llm llm.Provider) Service {
	return &service{
		pipeline:    pipeline,
		retriever:   retriever,
		llmProvider: llm,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

// Ingest triggers the one-shot corpus ingestion against the configured seed.
func (s *service) Ingest(ctx context.Context) (ingest.Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, config.IngestTimeout)
	defer cancel()
	return s.pipeline.Run(runCtx, config.DocsSeedURL)
}

// Chat resolves context for the newest user turn and returns the answer as a
// lazy fragment stream. Everything that can fail before any output exists
// (bad conversation, embedding, search, document fetch, a generation call
// that dies before its first fragment) fails HERE, so the transport can still
// answer with a structured error; the returned sequence only surfaces
// mid-stream generation errors.
func (s *service) Chat(ctx context.Context, turns []docModel.Message) (iter.Seq2[string, error], error) {
	log := s.logger.WithTrace(ctx)

	start := time.Now()
	defer func() { metrics.CaptureChatMetrics("resolve", time.Since(start)) }()

	query, err := latestQuery(turns)
	if err != nil {
		return nil, err
	}

	retrieved, err := s.retriever.Retrieve(ctx, query, config.RetrievalTopK)
	if err != nil {
		return nil, err
	}
	log.Info("Context resolved", "matches", len(retrieved))

	prompt := BuildPrompt(retrieved, turns)
	return s.startStream(ctx, prompt)
}

// startStream opens the completion call and pulls its first element. A
// failure with zero fragments delivered is still a pre-stream failure and
// comes back as an error; the returned sequence replays the first fragment
// and then hands the rest through unchanged. The whole generation runs under
// one generous deadline.
func (s *service) startStream(ctx context.Context, prompt []docModel.Message) (iter.Seq2[string, error], error) {
	genCtx, cancel := context.WithTimeout(ctx, config.GenerateCallTimeout)

	next, stop := iter.Pull2(s.llmProvider.Stream(genCtx, prompt))
	first, err, ok := next()
	if ok && err != nil {
		stop()
		cancel()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", docModel.ErrUpstreamTimeout, err)
		}
		return nil, err
	}

	return func(yield func(string, error) bool) {
		defer cancel()
		defer stop()
		if !ok {
			return
		}
		if !yield(first, nil) {
			return
		}
		for {
			fragment, err, more := next()
			if !more {
				return
			}
			if !yield(fragment, err) {
				return
			}
		}
	}, nil
}

// latestQuery picks the text to embed: the final turn, which must come from
// the user.
func latestQuery(turns []docModel.Message) (string, error) {
	if len(turns) == 0 {
		return "", ErrEmptyConversation
	}
	last := turns[len(turns)-1]
	if last.Role != docModel.RoleUser || last.Content == "" {
		return "", ErrEmptyConversation
	}
	return last.Content, nil
}
