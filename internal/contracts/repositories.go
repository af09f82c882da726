package contracts

import (
	"context"
	"time"
)

// MetricRepository serves point-in-time metric snapshots. Every query is
// strict about asOf: implementations must never surface data observed after
// that date.
type MetricRepository interface {
	// GetTickerSnapshot assembles the full metric snapshot for one ticker
	// as of the given date.
	GetTickerSnapshot(ctx context.Context, ticker string, asOf time.Time) (*MetricSnapshot, error)

	// GetSectorUniverse returns snapshots for every active ticker in the
	// sector as of the given date.
	GetSectorUniverse(ctx context.Context, sector string, asOf time.Time) ([]*MetricSnapshot, error)

	// ListSectors returns all sectors with at least one active ticker.
	ListSectors(ctx context.Context) ([]string, error)

	// ListActiveTickers returns the full scoring universe as of the date,
	// including tickers later delisted (point-in-time membership).
	ListActiveTickers(ctx context.Context, asOf time.Time) ([]string, error)

	// GetPrice returns the closing price on or before the given date.
	GetPrice(ctx context.Context, ticker string, asOf time.Time) (float64, error)
}

// SectorStatsRepository persists and serves daily sector distributions.
type SectorStatsRepository interface {
	SaveStatSet(ctx context.Context, set *SectorStatSet) error

	// GetStatSet returns the most recent stat set on or before asOf, or
	// ErrNotFound when none exists.
	GetStatSet(ctx context.Context, asOf time.Time) (*SectorStatSet, error)
}

// ScoreRepository persists and serves score records.
type ScoreRepository interface {
	Save(ctx context.Context, record *ScoreRecord) error

	// GetLatest returns the most recent score for a ticker.
	GetLatest(ctx context.Context, ticker string) (*ScoreRecord, error)

	// GetLatestBefore returns the most recent score strictly before asOf,
	// used by the stabilizer and by point-in-time backtests.
	GetLatestBefore(ctx context.Context, ticker string, asOf time.Time) (*ScoreRecord, error)

	// GetHistory returns scores for a ticker between from and to,
	// ascending by date.
	GetHistory(ctx context.Context, ticker string, from, to time.Time) ([]*ScoreRecord, error)

	// GetSectorRanking returns the latest displayable scores for a sector,
	// descending by score.
	GetSectorRanking(ctx context.Context, sector string, limit int) ([]*ScoreRecord, error)
}

// EventRepository serves score-relevant market events.
type EventRepository interface {
	// GetEventsSince returns events for a ticker occurring in (since, until].
	GetEventsSince(ctx context.Context, ticker string, since, until time.Time) ([]*ScoreEvent, error)
}
