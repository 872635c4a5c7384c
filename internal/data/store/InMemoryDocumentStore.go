package store

import (
	"context"
	"sync"

	"github.com/akolanti/DocsChat/internal/domain/docModel"
)

// InMemoryDocumentStore is the fallback when Redis is offline and the fake the
// pipeline tests run against. Same contract as the Redis one.
type InMemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]docModel.Document
}

func InitInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{docs: make(map[string]docModel.Document)}
}

func (s *InMemoryDocumentStore) PutDocument(_ context.Context, doc docModel.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.Id] = doc
	return nil
}

func (s *InMemoryDocumentStore) GetDocument(_ context.Context, id string) (docModel.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return docModel.Document{}, docModel.ErrDocumentNotFound
	}
	return doc, nil
}

// Len reports the number of stored documents. Handy in tests.
func (s *InMemoryDocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// InMemoryGateStore mirrors the Redis gate with a mutex-guarded set.
type InMemoryGateStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func InitInMemoryGateStore() *InMemoryGateStore {
	return &InMemoryGateStore{keys: make(map[string]bool)}
}

func (s *InMemoryGateStore) IsSet(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *InMemoryGateStore) TrySet(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}
