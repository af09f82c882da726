package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/investorcenter/icengine/internal/contracts"
)

// HistoricalScorer serves point-in-time scores from persisted score
// history. Universe membership is also point-in-time, so names that were
// later delisted still appear in the periods where they traded.
type HistoricalScorer struct {
	metrics contracts.MetricRepository
	scores  contracts.ScoreRepository

	// MaxStaleness rejects scores older than this relative to asOf. A
	// score from months ago says nothing about today's ranking.
	MaxStaleness time.Duration
}

func NewHistoricalScorer(metrics contracts.MetricRepository, scores contracts.ScoreRepository) *HistoricalScorer {
	return &HistoricalScorer{
		metrics:      metrics,
		scores:       scores,
		MaxStaleness: 45 * 24 * time.Hour,
	}
}

// ScoresAsOf returns the latest persisted score on or before asOf for each
// then-active ticker.
func (h *HistoricalScorer) ScoresAsOf(ctx context.Context, asOf time.Time) ([]*contracts.ScoreRecord, error) {
	tickers, err := h.metrics.ListActiveTickers(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("list universe as of %s: %w", asOf.Format("2006-01-02"), err)
	}

	// GetLatestBefore is exclusive of its bound; shift by a nanosecond so
	// a score calculated exactly on asOf counts.
	bound := asOf.Add(time.Nanosecond)

	var out []*contracts.ScoreRecord
	for _, ticker := range tickers {
		rec, err := h.scores.GetLatestBefore(ctx, ticker, bound)
		if err != nil {
			if errors.Is(err, contracts.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("score history %s: %w", ticker, err)
		}
		if h.MaxStaleness > 0 && asOf.Sub(rec.CalculatedAt) > h.MaxStaleness {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
