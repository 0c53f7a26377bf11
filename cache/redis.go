package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultRedisPrefix namespaces response keys in a shared Redis.
const DefaultRedisPrefix = "lens:response:"

// RedisConfig holds the configuration for the Redis client.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
	Prefix   string
}

// Redis stores raw response bodies in Redis so several processes can share
// one response cache. Keys are hashed because cache keys carry the API key.
type Redis struct {
	client *redis.Client
	logger zerolog.Logger
	ttl    time.Duration
	prefix string
}

// NewRedis creates and connects a Redis store. It pings the server to ensure
// connectivity before returning.
func NewRedis(ctx context.Context, cfg *RedisConfig, logger zerolog.Logger) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info().Str("redis_address", cfg.Addr).Msg("Connected to Redis.")

	return NewRedisFromClient(rdb, cfg.CacheTTL, cfg.Prefix, logger), nil
}

// NewRedisFromClient wraps an existing client. An empty prefix uses
// DefaultRedisPrefix; a zero ttl keeps entries until Redis evicts them.
func NewRedisFromClient(client *redis.Client, ttl time.Duration, prefix string, logger zerolog.Logger) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{
		client: client,
		logger: logger.With().Str("component", "RedisCache").Logger(),
		ttl:    ttl,
		prefix: prefix,
	}
}

// Get retrieves a response body. A missing key is reported as ErrMiss.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		r.logger.Error().Err(err).Msg("Unexpected Redis error during get.")
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	r.logger.Debug().Msg("Redis cache hit.")
	return data, nil
}

// Set stores a response body with the configured TTL. Existing keys are left
// untouched.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.SetNX(ctx, r.redisKey(key), value, r.ttl).Err(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to set data in Redis cache.")
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

// Close closes the Redis client connection.
func (r *Redis) Close() error {
	if r.client != nil {
		r.logger.Info().Msg("Closing Redis client connection...")
		return r.client.Close()
	}
	return nil
}

func (r *Redis) redisKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return r.prefix + hex.EncodeToString(sum[:])
}

var _ Cache[[]byte] = (*Redis)(nil)
