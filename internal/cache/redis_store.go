package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisCacheName = "kv_redis"

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TTL          time.Duration // zero means no expiry
}

// DefaultRedisConfig returns connection defaults for addr
func DefaultRedisConfig(addr string) RedisConfig {
	return RedisConfig{
		Addr:         addr,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// RedisStore keeps values in Redis
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(cfg RedisConfig) (*RedisStore, func() error, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("Redis key-value store initialized",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
	)

	return NewRedisStoreWithClient(client, cfg.TTL), client.Close, nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrKeyEmpty
	}

	start := time.Now()
	value, err := s.client.Get(ctx, key).Result()
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, redis.Nil) {
		metrics.CacheMisses.WithLabelValues(redisCacheName).Inc()
		return "", false, nil
	}
	if err != nil {
		logger.LogAPICall("redis", "get", "error", duration, zap.Error(err), zap.String("key", key))
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	metrics.CacheHits.WithLabelValues(redisCacheName).Inc()
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrKeyEmpty
	}

	start := time.Now()
	err := s.client.Set(ctx, key, value, s.ttl).Err()
	if err != nil {
		logger.LogAPICall("redis", "set", "error", metrics.MeasureDuration(start), zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

var _ KeyValueStore = (*RedisStore)(nil)
