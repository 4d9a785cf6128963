package port

import (
	"context"
	"time"

	"github.com/baedalgo/delivery/internal/core/domain"
)

type SearchRepository interface {
	// UpsertSearch atomically creates a (user, keyword, region) record
	// with count 1 or increments the existing count, refreshing the
	// updated-at timestamp either way.
	UpsertSearch(ctx context.Context, userID, keyword, region string, at time.Time) error

	// TopSearches returns up to limit records for region ordered by
	// count descending, ties broken by most recent update first.
	TopSearches(ctx context.Context, region string, limit int) ([]domain.SearchPopularity, error)
}
