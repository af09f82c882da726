package data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/investorcenter/icengine/internal/contracts"
)

// EventRepository serves score-relevant market events from the events feed.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) GetEventsSince(ctx context.Context, ticker string, since, until time.Time) ([]*contracts.ScoreEvent, error) {
	query := `
		SELECT ticker, event_type, occurred_at, COALESCE(value_usd, 0), COALESCE(detail, '')
		FROM market_events
		WHERE ticker = $1 AND occurred_at > $2 AND occurred_at <= $3
		ORDER BY occurred_at ASC
	`
	rows, err := r.pool.Query(ctx, query, ticker, since, until)
	if err != nil {
		return nil, fmt.Errorf("events %s: %w", ticker, err)
	}
	defer rows.Close()

	var events []*contracts.ScoreEvent
	for rows.Next() {
		var e contracts.ScoreEvent
		var eventType string
		if err := rows.Scan(&e.Ticker, &eventType, &e.OccurredAt, &e.ValueUSD, &e.Detail); err != nil {
			return nil, err
		}
		e.Type = contracts.EventType(eventType)
		events = append(events, &e)
	}
	return events, rows.Err()
}
