package port

import (
	"context"

	"github.com/baedalgo/delivery/internal/core/domain"
)

type CacheRepository interface {
	// GetPopularSearches returns the cached top-N result for a region,
	// with false when the entry is absent or expired.
	GetPopularSearches(ctx context.Context, region string, limit int) ([]domain.SearchPopularity, bool, error)

	// SetPopularSearches caches a top-N result with a short TTL.
	SetPopularSearches(ctx context.Context, region string, limit int, entries []domain.SearchPopularity) error

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)
}
