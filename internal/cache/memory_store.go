package cache

import (
	"context"
	"time"

	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const memoryCacheName = "kv_memory"

// MemoryStore keeps values in process memory via go-cache
type MemoryStore struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewMemoryStore creates an in-memory store. A zero ttl keeps entries until restart.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	expiration := gocache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = ttl
	}

	return &MemoryStore{
		cache: gocache.New(expiration, cleanup),
		ttl:   expiration,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrKeyEmpty
	}

	data, found := s.cache.Get(key)
	if !found {
		metrics.CacheMisses.WithLabelValues(memoryCacheName).Inc()
		return "", false, nil
	}

	value, ok := data.(string)
	if !ok {
		logger.Error("Invalid key-value cache data type", zap.String("key", key))
		s.cache.Delete(key)
		metrics.CacheMisses.WithLabelValues(memoryCacheName).Inc()
		return "", false, nil
	}

	metrics.CacheHits.WithLabelValues(memoryCacheName).Inc()
	return value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrKeyEmpty
	}
	s.cache.Set(key, value, s.ttl)
	return nil
}

var _ KeyValueStore = (*MemoryStore)(nil)
