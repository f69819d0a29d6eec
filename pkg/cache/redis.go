package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RedisStore is a Gateway backed by Redis. Entries are durable: they are
// written without a TTL and this package manages no expiry or eviction.
type RedisStore struct {
	redis     *redis.Client
	namespace string
	logger    zerolog.Logger
}

// NewRedisStore creates a Redis-backed gateway. The namespace prefixes
// every key so several caches can share one Redis instance.
func NewRedisStore(redisClient *redis.Client, namespace string) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis:     redisClient,
		namespace: namespace,
		logger:    log.With().Str("component", "cache").Logger(),
	}
}

// Lookup retrieves the cached bytes for an identifier.
// Backend errors are logged and reported as a miss.
func (s *RedisStore) Lookup(ctx context.Context, identifier string) ([]byte, bool) {
	key := Key(s.namespace, identifier)

	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("identifier", identifier).Msg("Cache lookup error")
			CacheErrors.WithLabelValues("lookup").Inc()
		}
		CacheMisses.Inc()
		return nil, false
	}

	CacheHits.WithLabelValues("redis").Inc()
	s.logger.Debug().
		Str("identifier", identifier).
		Int("bytes", len(data)).
		Msg("Cache hit")

	return data, true
}

// Store writes the bytes for an identifier without a TTL.
func (s *RedisStore) Store(ctx context.Context, identifier string, data []byte) error {
	key := Key(s.namespace, identifier)

	if err := s.redis.Set(ctx, key, data, 0).Err(); err != nil {
		CacheErrors.WithLabelValues("store").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CacheStoredBytes.Add(float64(len(data)))
	s.logger.Debug().
		Str("identifier", identifier).
		Int("bytes", len(data)).
		Msg("Cached resource")

	return nil
}

// Delete removes a cache entry.
func (s *RedisStore) Delete(ctx context.Context, identifier string) error {
	if err := s.redis.Del(ctx, Key(s.namespace, identifier)).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
