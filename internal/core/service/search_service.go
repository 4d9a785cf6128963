package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/baedalgo/delivery/internal/core/domain"
	"github.com/baedalgo/delivery/internal/metrics"
	"github.com/baedalgo/delivery/internal/port"
)

var (
	ErrEmptyUser    = errors.New("user id must not be empty")
	ErrEmptyKeyword = errors.New("keyword must not be empty")
	ErrEmptyRegion  = errors.New("region must not be empty")
	ErrInvalidLimit = errors.New("limit must be a positive integer")
)

// SearchService aggregates search events per (user, keyword, region)
// and answers top-N popularity queries. The cache is optional; when
// nil every query goes to the repository.
type SearchService struct {
	searches port.SearchRepository
	cache    port.CacheRepository
	logger   zerolog.Logger
}

func NewSearchService(searches port.SearchRepository, cache port.CacheRepository, logger zerolog.Logger) *SearchService {
	return &SearchService{
		searches: searches,
		cache:    cache,
		logger:   logger,
	}
}

// RecordSearch normalizes the key and upserts the popularity record.
// The repository upsert is atomic, so concurrent identical searches
// all count.
func (s *SearchService) RecordSearch(ctx context.Context, userID, keyword, region string) error {
	keyword = domain.NormalizeKeyword(keyword)
	region = domain.NormalizeRegion(region)

	if userID == "" {
		return ErrEmptyUser
	}
	if keyword == "" {
		return ErrEmptyKeyword
	}
	if region == "" {
		return ErrEmptyRegion
	}

	if err := s.searches.UpsertSearch(ctx, userID, keyword, region, time.Now()); err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	metrics.SearchesRecorded.Inc()
	return nil
}

// TopN returns up to n popularity records for a region, most searched
// first, ties broken by most recent update. Cache failures degrade to
// a repository read.
func (s *SearchService) TopN(ctx context.Context, region string, n int) ([]domain.SearchPopularity, error) {
	region = domain.NormalizeRegion(region)
	if region == "" {
		return nil, ErrEmptyRegion
	}
	if n <= 0 {
		return nil, ErrInvalidLimit
	}

	if s.cache != nil {
		entries, ok, err := s.cache.GetPopularSearches(ctx, region, n)
		if err != nil {
			s.logger.Warn().Err(err).Str("region", region).Msg("popular search cache read failed")
		} else if ok {
			return entries, nil
		}
	}

	entries, err := s.searches.TopSearches(ctx, region, n)
	if err != nil {
		return nil, fmt.Errorf("query top searches: %w", err)
	}
	if entries == nil {
		entries = []domain.SearchPopularity{}
	}

	if s.cache != nil {
		if err := s.cache.SetPopularSearches(ctx, region, n, entries); err != nil {
			s.logger.Warn().Err(err).Str("region", region).Msg("popular search cache write failed")
		}
	}
	return entries, nil
}
