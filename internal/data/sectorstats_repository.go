package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/investorcenter/icengine/internal/contracts"
)

// SectorStatsRepository persists daily sector distributions, one row per
// sector and metric.
type SectorStatsRepository struct {
	pool *pgxpool.Pool
}

func NewSectorStatsRepository(pool *pgxpool.Pool) *SectorStatsRepository {
	return &SectorStatsRepository{pool: pool}
}

func (r *SectorStatsRepository) SaveStatSet(ctx context.Context, set *contracts.SectorStatSet) error {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO sector_stats
			(as_of, sector, metric, min_value, p10, p25, p50, p75, p90, max_value,
			 mean, std_dev, sample_count, degraded)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (as_of, sector, metric)
		DO UPDATE SET min_value = $4, p10 = $5, p25 = $6, p50 = $7, p75 = $8,
		              p90 = $9, max_value = $10, mean = $11, std_dev = $12,
		              sample_count = $13, degraded = $14
	`
	for _, d := range set.Distributions {
		batch.Queue(query,
			d.AsOf, d.Sector, d.Metric,
			d.Min, d.P10, d.P25, d.P50, d.P75, d.P90, d.Max,
			d.Mean, d.StdDev, d.SampleCount, d.Degraded,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range set.Distributions {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save sector stats: %w", err)
		}
	}
	return nil
}

// GetStatSet loads the most recent stat set on or before asOf.
func (r *SectorStatsRepository) GetStatSet(ctx context.Context, asOf time.Time) (*contracts.SectorStatSet, error) {
	// MAX over an empty table is NULL, so scan through a pointer.
	var latestPtr *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(as_of) FROM sector_stats WHERE as_of <= $1`, asOf,
	).Scan(&latestPtr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contracts.ErrNotFound
		}
		return nil, fmt.Errorf("latest sector stats date: %w", err)
	}
	if latestPtr == nil {
		return nil, contracts.ErrNotFound
	}
	latest := *latestPtr

	query := `
		SELECT sector, metric, min_value, p10, p25, p50, p75, p90, max_value,
		       mean, std_dev, sample_count, degraded
		FROM sector_stats
		WHERE as_of = $1
	`
	rows, err := r.pool.Query(ctx, query, latest)
	if err != nil {
		return nil, fmt.Errorf("load sector stats: %w", err)
	}
	defer rows.Close()

	var dists []*contracts.SectorDistribution
	for rows.Next() {
		d := &contracts.SectorDistribution{AsOf: latest}
		if err := rows.Scan(
			&d.Sector, &d.Metric, &d.Min, &d.P10, &d.P25, &d.P50, &d.P75, &d.P90, &d.Max,
			&d.Mean, &d.StdDev, &d.SampleCount, &d.Degraded,
		); err != nil {
			return nil, err
		}
		dists = append(dists, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(dists) == 0 {
		return nil, contracts.ErrNotFound
	}
	return contracts.NewSectorStatSet(latest, dists), nil
}
