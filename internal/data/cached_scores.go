package data

import (
	"context"
	"fmt"
	"time"

	"github.com/investorcenter/icengine/internal/contracts"
	"github.com/investorcenter/icengine/pkg/logger"
	"github.com/investorcenter/icengine/pkg/redis"
)

// CachedScoreRepository decorates a ScoreRepository with a Redis
// read-through cache on the latest-score and ranking paths, which are the
// ones the API hammers. History and point-in-time reads always hit
// Postgres.
type CachedScoreRepository struct {
	inner contracts.ScoreRepository
	cache *redis.Cache
	ttl   time.Duration
	log   *logger.Logger
}

func NewCachedScoreRepository(inner contracts.ScoreRepository, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedScoreRepository {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedScoreRepository{inner: inner, cache: cache, ttl: ttl, log: log}
}

func (r *CachedScoreRepository) Save(ctx context.Context, record *contracts.ScoreRecord) error {
	if err := r.inner.Save(ctx, record); err != nil {
		return err
	}
	// A fresh score invalidates the cached latest and its sector ranking.
	if err := r.cache.Delete(ctx, latestKey(record.Ticker)); err != nil {
		r.log.WithError(err).Warn("latest score cache invalidation failed")
	}
	if err := r.cache.Delete(ctx, rankingKey(record.Sector)); err != nil {
		r.log.WithError(err).Warn("ranking cache invalidation failed")
	}
	return nil
}

func (r *CachedScoreRepository) GetLatest(ctx context.Context, ticker string) (*contracts.ScoreRecord, error) {
	var cached contracts.ScoreRecord
	found, err := r.cache.Get(ctx, latestKey(ticker), &cached)
	if err == nil && found {
		return &cached, nil
	}

	record, err := r.inner.GetLatest(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, latestKey(ticker), record, r.ttl); err != nil {
		r.log.WithError(err).Warn("latest score cache write failed")
	}
	return record, nil
}

func (r *CachedScoreRepository) GetLatestBefore(ctx context.Context, ticker string, asOf time.Time) (*contracts.ScoreRecord, error) {
	return r.inner.GetLatestBefore(ctx, ticker, asOf)
}

func (r *CachedScoreRepository) GetHistory(ctx context.Context, ticker string, from, to time.Time) ([]*contracts.ScoreRecord, error) {
	return r.inner.GetHistory(ctx, ticker, from, to)
}

func (r *CachedScoreRepository) GetSectorRanking(ctx context.Context, sector string, limit int) ([]*contracts.ScoreRecord, error) {
	var cached []*contracts.ScoreRecord
	found, err := r.cache.Get(ctx, rankingKey(sector), &cached)
	if err == nil && found && len(cached) >= limit {
		if limit > 0 && len(cached) > limit {
			cached = cached[:limit]
		}
		return cached, nil
	}

	records, err := r.inner.GetSectorRanking(ctx, sector, limit)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, rankingKey(sector), records, r.ttl); err != nil {
		r.log.WithError(err).Warn("ranking cache write failed")
	}
	return records, nil
}

func latestKey(ticker string) string {
	return fmt.Sprintf("score:latest:%s", ticker)
}

func rankingKey(sector string) string {
	return fmt.Sprintf("score:ranking:%s", sector)
}
