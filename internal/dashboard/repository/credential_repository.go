package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/patrickmn/go-cache"
	goredis "github.com/redis/go-redis/v9"

	"market-dashboard/internal/dashboard/config"
	"market-dashboard/pkg/common"
	"market-dashboard/pkg/logger"
	"market-dashboard/pkg/redis"
)

type redisCredentialRepository struct {
	key   string
	log   *logger.Logger
	redis *redis.Client
}

type memoryCredentialRepository struct {
	key   string
	cache *cache.Cache
}

// NewCredentialRepository returns a Redis-backed credential store, or an in-process
// one when rdb is nil.
func NewCredentialRepository(cfg *config.Config, log *logger.Logger, rdb *redis.Client) CredentialRepository {
	key := cfg.Gemini.CredentialKey
	if key == "" {
		key = common.CredentialKeyDefault
	}
	if rdb == nil {
		return &memoryCredentialRepository{key: key, cache: cache.New(cache.NoExpiration, 0)}
	}
	return &redisCredentialRepository{key: key, log: log, redis: rdb}
}

func (r *redisCredentialRepository) Get(ctx context.Context) (string, error) {
	val, err := r.redis.Get(ctx, r.key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to read credential from redis", logger.ErrorField(err))
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
	return val, nil
}

func (r *redisCredentialRepository) Set(ctx context.Context, value string) error {
	if err := r.redis.Set(ctx, r.key, value, 0).Err(); err != nil {
		r.log.ErrorContext(ctx, "Failed to store credential in redis", logger.ErrorField(err))
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

func (r *redisCredentialRepository) Clear(ctx context.Context) error {
	if err := r.redis.Del(ctx, r.key).Err(); err != nil {
		r.log.ErrorContext(ctx, "Failed to delete credential from redis", logger.ErrorField(err))
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

func (r *memoryCredentialRepository) Get(_ context.Context) (string, error) {
	if v, ok := r.cache.Get(r.key); ok {
		return v.(string), nil
	}
	return "", nil
}

func (r *memoryCredentialRepository) Set(_ context.Context, value string) error {
	r.cache.Set(r.key, value, cache.NoExpiration)
	return nil
}

func (r *memoryCredentialRepository) Clear(_ context.Context) error {
	r.cache.Delete(r.key)
	return nil
}
