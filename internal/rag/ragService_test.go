package rag

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/akolanti/DocsChat/internal/data/store"
	"github.com/akolanti/DocsChat/internal/domain/docModel"
	"github.com/akolanti/DocsChat/internal/rag/llm"
	"github.com/akolanti/DocsChat/internal/rag/retrieve"
	"github.com/akolanti/DocsChat/internal/rag/vectorDB"
)

type MockEmbedder struct {
	LastQuery string
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	m.LastQuery = text
	return []float32{1, 0}, nil
}

func (m *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}

type MockIndex struct {
	Matches []vectorDB.Match
}

func (m *MockIndex) EnsureCollection(ctx context.Context) error { return nil }
func (m *MockIndex) UpsertBatch(ctx context.Context, docs []docModel.Document, vectors [][]float32) error {
	return nil
}
func (m *MockIndex) Query(ctx context.Context, vector []float32, topK int) ([]vectorDB.Match, error) {
	return m.Matches, nil
}

type MockProvider struct {
	LastTurns []docModel.Message
	LastCtx   context.Context
	Fragments []string
	Err       error
}

func (m *MockProvider) Stream(ctx context.Context, turns []docModel.Message) iter.Seq2[string, error] {
	m.LastTurns = turns
	m.LastCtx = ctx
	return func(yield func(string, error) bool) {
		for _, f := range m.Fragments {
			if !yield(f, nil) {
				return
			}
		}
		if m.Err != nil {
			yield("", m.Err)
		}
	}
}

func newTestService(t *testing.T, idx *MockIndex, emb *MockEmbedder, provider *MockProvider) Service {
	t.Helper()
	docs := store.InitInMemoryDocumentStore()
	for _, m := range idx.Matches {
		err := docs.PutDocument(context.Background(), docModel.Document{Id: m.Id, Content: "passage " + m.Id})
		if err != nil {
			t.Fatalf("seeding store: %v", err)
		}
	}
	retriever := retrieve.NewOrchestrator(emb, idx, docs)
	return NewService(nil, retriever, provider)
}

func TestChat_StreamsGroundedAnswer(t *testing.T) {
	idx := &MockIndex{Matches: []vectorDB.Match{{Id: "auth", Score: 0.9}}}
	emb := &MockEmbedder{}
	provider := &MockProvider{Fragments: []string{"Use ", "tokens [1]."}}
	svc := newTestService(t, idx, emb, provider)

	turns := []docModel.Message{
		{Role: docModel.RoleUser, Content: "old question"},
		{Role: docModel.RoleAssistant, Content: "old answer"},
		{Role: docModel.RoleUser, Content: "how do I authenticate?"},
	}

	stream, err := svc.Chat(context.Background(), turns)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	var answer string
	for fragment, err := range stream {
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		answer += fragment
	}
	if answer != "Use tokens [1]." {
		t.Errorf("got answer %q", answer)
	}

	// only the newest user turn is embedded
	if emb.LastQuery != "how do I authenticate?" {
		t.Errorf("embedded %q instead of the latest query", emb.LastQuery)
	}

	// instructions, context, then the conversation verbatim
	if len(provider.LastTurns) != len(turns)+2 {
		t.Fatalf("prompt has %d turns, want %d", len(provider.LastTurns), len(turns)+2)
	}
	if provider.LastTurns[1].Role != docModel.RoleSystem {
		t.Error("context turn missing from prompt")
	}
}

func TestChat_NoMatchesOmitsContextTurn(t *testing.T) {
	provider := &MockProvider{Fragments: []string{"Hmm, I'm not sure."}}
	svc := newTestService(t, &MockIndex{}, &MockEmbedder{}, provider)

	stream, err := svc.Chat(context.Background(), []docModel.Message{
		{Role: docModel.RoleUser, Content: "unknowable"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	for range stream {
	}

	if len(provider.LastTurns) != 2 {
		t.Fatalf("prompt has %d turns, want instructions plus query", len(provider.LastTurns))
	}
}

func TestChat_RejectsBadConversations(t *testing.T) {
	svc := newTestService(t, &MockIndex{}, &MockEmbedder{}, &MockProvider{})

	testCases := []struct {
		name  string
		turns []docModel.Message
	}{
		{"Empty conversation", nil},
		{"Ends with assistant turn", []docModel.Message{
			{Role: docModel.RoleUser, Content: "q"},
			{Role: docModel.RoleAssistant, Content: "a"},
		}},
		{"Empty final content", []docModel.Message{
			{Role: docModel.RoleUser, Content: ""},
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Chat(context.Background(), tc.turns)
			if !errors.Is(err, ErrEmptyConversation) {
				t.Errorf("got %v, want ErrEmptyConversation", err)
			}
		})
	}
}

// An error before any output means the request can still fail cleanly
// instead of opening an empty stream.
func TestChat_FailsBeforeStreamingOnGenerationError(t *testing.T) {
	provider := &MockProvider{Err: &llm.GenerationError{Err: errors.New("invalid api key")}}
	svc := newTestService(t, &MockIndex{}, &MockEmbedder{}, provider)

	stream, err := svc.Chat(context.Background(), []docModel.Message{
		{Role: docModel.RoleUser, Content: "q"},
	})
	if stream != nil {
		t.Error("got a stream alongside the error")
	}
	var genErr *llm.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("got %v, want a GenerationError", err)
	}
}

func TestChat_MidStreamErrorReachesConsumer(t *testing.T) {
	provider := &MockProvider{
		Fragments: []string{"partial"},
		Err:       &llm.GenerationError{Err: errors.New("stream cut")},
	}
	svc := newTestService(t, &MockIndex{}, &MockEmbedder{}, provider)

	stream, err := svc.Chat(context.Background(), []docModel.Message{
		{Role: docModel.RoleUser, Content: "q"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	var fragments []string
	var streamErr error
	for fragment, err := range stream {
		if err != nil {
			streamErr = err
			break
		}
		fragments = append(fragments, fragment)
	}
	if len(fragments) != 1 || fragments[0] != "partial" {
		t.Errorf("got fragments %v, want the output before the failure", fragments)
	}
	if streamErr == nil {
		t.Error("the stream swallowed the generation error")
	}
}

func TestChat_BoundsGenerationTime(t *testing.T) {
	provider := &MockProvider{Fragments: []string{"ok"}}
	svc := newTestService(t, &MockIndex{}, &MockEmbedder{}, provider)

	stream, err := svc.Chat(context.Background(), []docModel.Message{
		{Role: docModel.RoleUser, Content: "q"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	for range stream {
	}

	if _, ok := provider.LastCtx.Deadline(); !ok {
		t.Error("generation call ran without a deadline")
	}
}

func TestChat_StopsWhenConsumerStops(t *testing.T) {
	provider := &MockProvider{Fragments: []string{"a", "b", "c", "d"}}
	svc := newTestService(t, &MockIndex{}, &MockEmbedder{}, provider)

	stream, err := svc.Chat(context.Background(), []docModel.Message{
		{Role: docModel.RoleUser, Content: "q"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	var got int
	for range stream {
		got++
		if got == 2 {
			break
		}
	}
	if got != 2 {
		t.Errorf("consumed %d fragments, want 2", got)
	}
}
