package store

import (
	"context"

	"github.com/akolanti/DocsChat/internal/config"
	"github.com/akolanti/DocsChat/internal/data/redisStore"
	"github.com/akolanti/DocsChat/pkg/logger_i"
)

// RedisGateStore persists the one-shot ingestion flag. SETNX gives us a real
// compare-and-set, so the absent->true transition happens exactly once even
// with concurrent triggers across processes.
type RedisGateStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisGateStore(ctx context.Context) *RedisGateStore {
	internal := redisStore.GetRedisStore(ctx, config.RedisGateStore)
	if internal == nil {
		return nil
	}
	return &RedisGateStore{
		store:  internal,
		logger: logger_i.NewLogger("GateStore"),
	}
}

func (s *RedisGateStore) IsSet(ctx context.Context, key string) (bool, error) {
	return s.store.Exists(ctx, key)
}

func (s *RedisGateStore) TrySet(ctx context.Context, key string) (bool, error) {
	set, err := s.store.SetNX(ctx, key, "true", 0)
	if err != nil {
		s.logger.WithTrace(ctx).Error("error setting gate", "key", key, "error", err)
		return false, err
	}
	return set, nil
}

// Only for _test.go files
func TestGateStore(internal *redisStore.Store) *RedisGateStore {
	return &RedisGateStore{store: internal, logger: logger_i.NewLogger("GateStore")}
}
