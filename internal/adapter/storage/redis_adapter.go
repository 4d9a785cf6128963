package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baedalgo/delivery/internal/core/domain"
)

const (
	popularKeyPrefix     = "popular:"
	popularCacheTTL      = 30 * time.Second
	idempotencyKeyPrefix = "idem:"
	idempotencyKeyTTL    = 24 * time.Hour
)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func popularKey(region string, limit int) string {
	return fmt.Sprintf("%s%s:%d", popularKeyPrefix, region, limit)
}

func (r *RedisAdapter) GetPopularSearches(ctx context.Context, region string, limit int) ([]domain.SearchPopularity, bool, error) {
	raw, err := r.client.Get(ctx, popularKey(region, limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entries []domain.SearchPopularity
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, fmt.Errorf("decode cached searches: %w", err)
	}
	return entries, true, nil
}

func (r *RedisAdapter) SetPopularSearches(ctx context.Context, region string, limit int, entries []domain.SearchPopularity) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode searches: %w", err)
	}
	return r.client.Set(ctx, popularKey(region, limit), raw, popularCacheTTL).Err()
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}
