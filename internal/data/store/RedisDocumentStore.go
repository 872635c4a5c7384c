package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/DocsChat/internal/config"
	"github.com/akolanti/DocsChat/internal/data/redisStore"
	"github.com/akolanti/DocsChat/internal/domain/docModel"
	"github.com/akolanti/DocsChat/pkg/logger_i"
)

// RedisDocumentStore keeps the ingested passages as one JSON value per id.
// No TTL - the corpus lives as long as the deployment.
type RedisDocumentStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisDocumentStore(ctx context.Context) *RedisDocumentStore {
	internal := redisStore.GetRedisStore(ctx, config.RedisDocumentStore)
	if internal == nil {
		return nil
	}
	return &RedisDocumentStore{
		store:  internal,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func (s *RedisDocumentStore) PutDocument(ctx context.Context, doc docModel.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return &docModel.StoreWriteError{Id: doc.Id, Err: err}
	}
	if err := s.store.Set(ctx, doc.Id, data, 0); err != nil {
		s.logger.WithTrace(ctx).Error("error saving document", "id", doc.Id, "error", err)
		return &docModel.StoreWriteError{Id: doc.Id, Err: err}
	}
	return nil
}

func (s *RedisDocumentStore) GetDocument(ctx context.Context, id string) (docModel.Document, error) {
	raw, err := s.store.Get(ctx, id)
	if s.store.IsNil(err) {
		return docModel.Document{}, docModel.ErrDocumentNotFound
	} else if err != nil {
		return docModel.Document{}, err
	}

	var doc docModel.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		//a row we cannot decode is as good as a missing row
		s.logger.WithTrace(ctx).Error("corrupt document row", "id", id, "error", err)
		return docModel.Document{}, docModel.ErrDocumentNotFound
	}
	return doc, nil
}

// Only for _test.go files
func TestDocumentStore(internal *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{store: internal, logger: logger_i.NewLogger("DocumentStore")}
}
