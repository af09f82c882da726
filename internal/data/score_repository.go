package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/investorcenter/icengine/internal/contracts"
)

// ScoreRepository persists score records. The full record goes into a
// JSONB payload; the columns queried for ranking and history are broken
// out and indexed.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

func (r *ScoreRepository) Save(ctx context.Context, record *contracts.ScoreRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal score %s: %w", record.Ticker, err)
	}

	query := `
		INSERT INTO scores (ticker, sector, calculated_at, overall_score, confidence, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (ticker, calculated_at)
		DO UPDATE SET sector = $2, overall_score = $4, confidence = $5, payload = $6
	`
	_, err = r.pool.Exec(ctx, query,
		record.Ticker, record.Sector, record.CalculatedAt,
		record.OverallScore, string(record.Confidence), payload,
	)
	if err != nil {
		return fmt.Errorf("save score %s: %w", record.Ticker, err)
	}
	return nil
}

func (r *ScoreRepository) GetLatest(ctx context.Context, ticker string) (*contracts.ScoreRecord, error) {
	query := `
		SELECT payload
		FROM scores
		WHERE ticker = $1
		ORDER BY calculated_at DESC
		LIMIT 1
	`
	return r.queryOne(ctx, query, ticker)
}

func (r *ScoreRepository) GetLatestBefore(ctx context.Context, ticker string, asOf time.Time) (*contracts.ScoreRecord, error) {
	query := `
		SELECT payload
		FROM scores
		WHERE ticker = $1 AND calculated_at < $2
		ORDER BY calculated_at DESC
		LIMIT 1
	`
	return r.queryOne(ctx, query, ticker, asOf)
}

func (r *ScoreRepository) GetHistory(ctx context.Context, ticker string, from, to time.Time) ([]*contracts.ScoreRecord, error) {
	query := `
		SELECT payload
		FROM scores
		WHERE ticker = $1 AND calculated_at BETWEEN $2 AND $3
		ORDER BY calculated_at ASC
	`
	rows, err := r.pool.Query(ctx, query, ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("score history %s: %w", ticker, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (r *ScoreRepository) GetSectorRanking(ctx context.Context, sector string, limit int) ([]*contracts.ScoreRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	// Latest score per ticker in the sector, displayable only.
	query := `
		SELECT DISTINCT ON (ticker) payload
		FROM scores
		WHERE sector = $1 AND overall_score IS NOT NULL
		ORDER BY ticker, calculated_at DESC
	`
	rows, err := r.pool.Query(ctx, query, sector)
	if err != nil {
		return nil, fmt.Errorf("sector ranking %s: %w", sector, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	sortByScoreDesc(records)
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (r *ScoreRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*contracts.ScoreRecord, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, query, args...).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contracts.ErrNotFound
		}
		return nil, err
	}
	var record contracts.ScoreRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode score payload: %w", err)
	}
	return &record, nil
}

func scanRecords(rows pgx.Rows) ([]*contracts.ScoreRecord, error) {
	var records []*contracts.ScoreRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var record contracts.ScoreRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, fmt.Errorf("decode score payload: %w", err)
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}

func sortByScoreDesc(records []*contracts.ScoreRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return *records[i].OverallScore > *records[j].OverallScore
	})
}
