// Package data implements the repository contracts against Postgres, with
// Redis read-through caching for the hot serving paths.
package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/investorcenter/icengine/internal/contracts"
	"github.com/investorcenter/icengine/pkg/logger"
)

// MetricRepository implements contracts.MetricRepository. Every query takes
// an as-of date and only surfaces rows observed on or before it.
type MetricRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewMetricRepository(pool *pgxpool.Pool, log *logger.Logger) *MetricRepository {
	return &MetricRepository{pool: pool, log: log}
}

// sectionFailed degrades a section query failure to a missing section. A
// missing row is expected and stays silent; anything else is a real
// repository failure and is logged with the ticker so the degraded score
// is traceable to its cause.
func (r *MetricRepository) sectionFailed(section, ticker string, err error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return
	}
	r.log.WithError(err).WithFields(map[string]interface{}{
		"ticker":  ticker,
		"section": section,
	}).Warn("metric section query failed, treating as unavailable")
}

// GetTickerSnapshot assembles the full snapshot for one ticker. Missing
// sections stay nil; only a missing company row is an error.
func (r *MetricRepository) GetTickerSnapshot(ctx context.Context, ticker string, asOf time.Time) (*contracts.MetricSnapshot, error) {
	snapshot := &contracts.MetricSnapshot{Ticker: ticker, AsOf: asOf}

	query := `
		SELECT sector
		FROM companies
		WHERE ticker = $1
	`
	if err := r.pool.QueryRow(ctx, query, ticker).Scan(&snapshot.Sector); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contracts.ErrNotFound
		}
		return nil, fmt.Errorf("company %s: %w", ticker, err)
	}

	snapshot.Fundamentals = r.fundamentals(ctx, ticker, asOf)
	snapshot.Technicals = r.technicals(ctx, ticker, asOf)
	snapshot.Revisions = r.revisions(ctx, ticker, asOf)
	snapshot.Ownership = r.ownership(ctx, ticker, asOf)
	snapshot.Sentiment = r.sentiment(ctx, ticker, asOf)
	snapshot.Dividends = r.dividends(ctx, ticker, asOf)
	snapshot.FairValue = r.fairValue(ctx, ticker, asOf)
	snapshot.ValuationHistory = r.valuationHistory(ctx, ticker, asOf)

	return snapshot, nil
}

func (r *MetricRepository) fundamentals(ctx context.Context, ticker string, asOf time.Time) *contracts.Fundamentals {
	query := `
		SELECT pe_ratio, ps_ratio, pb_ratio, ev_ebitda, peg_ratio,
		       gross_margin, operating_margin, net_margin, roe, roa, roic,
		       revenue_growth_yoy, eps_growth_yoy, fcf_growth_yoy,
		       debt_to_equity, current_ratio, quick_ratio, interest_coverage,
		       market_cap
		FROM fundamentals
		WHERE ticker = $1 AND as_of <= $2
		ORDER BY as_of DESC
		LIMIT 1
	`
	var f contracts.Fundamentals
	err := r.pool.QueryRow(ctx, query, ticker, asOf).Scan(
		&f.PERatio, &f.PSRatio, &f.PBRatio, &f.EVEBITDA, &f.PEGRatio,
		&f.GrossMargin, &f.OperatingMargin, &f.NetMargin, &f.ROE, &f.ROA, &f.ROIC,
		&f.RevenueGrowthYoY, &f.EPSGrowthYoY, &f.FCFGrowthYoY,
		&f.DebtToEquity, &f.CurrentRatio, &f.QuickRatio, &f.InterestCoverage,
		&f.MarketCap,
	)
	if err != nil {
		r.sectionFailed("fundamentals", ticker, err)
		return nil
	}
	return &f
}

func (r *MetricRepository) technicals(ctx context.Context, ticker string, asOf time.Time) *contracts.Technicals {
	query := `
		SELECT return_1m, return_3m, return_6m, return_12m,
		       rsi, macd_histogram, close_price, sma_50
		FROM daily_technicals
		WHERE ticker = $1 AND trade_date <= $2
		ORDER BY trade_date DESC
		LIMIT 1
	`
	var t contracts.Technicals
	err := r.pool.QueryRow(ctx, query, ticker, asOf).Scan(
		&t.Return1M, &t.Return3M, &t.Return6M, &t.Return12M,
		&t.RSI, &t.MACDHistogram, &t.Price, &t.SMA50,
	)
	if err != nil {
		r.sectionFailed("technicals", ticker, err)
		return nil
	}
	return &t
}

func (r *MetricRepository) revisions(ctx context.Context, ticker string, asOf time.Time) *contracts.RevisionData {
	query := `
		SELECT consensus_eps, num_analysts,
		       estimate_30d_ago, estimate_60d_ago, estimate_90d_ago,
		       upgrades_90d, downgrades_90d,
		       revision_pct_30d, revision_pct_90d
		FROM analyst_estimates
		WHERE ticker = $1 AND as_of <= $2
		ORDER BY as_of DESC
		LIMIT 1
	`
	var v contracts.RevisionData
	err := r.pool.QueryRow(ctx, query, ticker, asOf).Scan(
		&v.ConsensusEPS, &v.NumAnalysts,
		&v.Estimate30dAgo, &v.Estimate60dAgo, &v.Estimate90dAgo,
		&v.Upgrades90d, &v.Downgrades90d,
		&v.RevisionPct30d, &v.RevisionPct90d,
	)
	if err != nil {
		r.sectionFailed("revisions", ticker, err)
		return nil
	}
	return &v
}

func (r *MetricRepository) ownership(ctx context.Context, ticker string, asOf time.Time) *contracts.OwnershipData {
	query := `
		SELECT insider_net_buying_usd_90d, institution_count,
		       institutional_shares, prev_quarter_shares
		FROM ownership
		WHERE ticker = $1 AND as_of <= $2
		ORDER BY as_of DESC
		LIMIT 1
	`
	var o contracts.OwnershipData
	err := r.pool.QueryRow(ctx, query, ticker, asOf).Scan(
		&o.InsiderNetBuyingUSD90d, &o.InstitutionCount,
		&o.InstitutionalShares, &o.PrevQuarterShares,
	)
	if err != nil {
		r.sectionFailed("ownership", ticker, err)
		return nil
	}
	return &o
}

func (r *MetricRepository) sentiment(ctx context.Context, ticker string, asOf time.Time) *contracts.SentimentData {
	query := `
		SELECT COUNT(*), AVG(sentiment_score),
		       COUNT(*) FILTER (WHERE sentiment_score >= 60),
		       COUNT(*) FILTER (WHERE sentiment_score <= 40)
		FROM news_sentiment
		WHERE ticker = $1
		  AND published_at <= $2
		  AND published_at > $2 - INTERVAL '30 days'
	`
	var s contracts.SentimentData
	err := r.pool.QueryRow(ctx, query, ticker, asOf).Scan(
		&s.ArticleCount, &s.AvgSentiment, &s.PositiveCount, &s.NegativeCount,
	)
	if err != nil {
		r.sectionFailed("sentiment", ticker, err)
		return nil
	}
	if s.ArticleCount == 0 {
		return nil
	}
	return &s
}

func (r *MetricRepository) dividends(ctx context.Context, ticker string, asOf time.Time) *contracts.DividendData {
	query := `
		SELECT annual_dividend, dividend_yield, payout_ratio,
		       dividend_cagr_5y, consecutive_years_paid, consecutive_years_increased
		FROM dividend_profiles
		WHERE ticker = $1 AND as_of <= $2
		ORDER BY as_of DESC
		LIMIT 1
	`
	var d contracts.DividendData
	err := r.pool.QueryRow(ctx, query, ticker, asOf).Scan(
		&d.AnnualDividend, &d.DividendYield, &d.PayoutRatio,
		&d.DividendCAGR5Y, &d.ConsecutiveYearsPaid, &d.ConsecutiveYearsIncreased,
	)
	if err != nil {
		r.sectionFailed("dividends", ticker, err)
		return nil
	}
	return &d
}

func (r *MetricRepository) fairValue(ctx context.Context, ticker string, asOf time.Time) *contracts.FairValueData {
	query := `
		SELECT dcf_fair_value, graham_number, earnings_power_value, price
		FROM fair_values
		WHERE ticker = $1 AND as_of <= $2
		ORDER BY as_of DESC
		LIMIT 1
	`
	var fv contracts.FairValueData
	err := r.pool.QueryRow(ctx, query, ticker, asOf).Scan(
		&fv.DCFFairValue, &fv.GrahamNumber, &fv.EarningsPowerValue, &fv.Price,
	)
	if err != nil {
		r.sectionFailed("fair_value", ticker, err)
		return nil
	}
	return &fv
}

func (r *MetricRepository) valuationHistory(ctx context.Context, ticker string, asOf time.Time) []contracts.ValuationPoint {
	query := `
		SELECT month_end, pe_ratio, ps_ratio
		FROM monthly_valuations
		WHERE ticker = $1
		  AND month_end <= $2
		  AND month_end > $2 - INTERVAL '5 years'
		ORDER BY month_end ASC
	`
	rows, err := r.pool.Query(ctx, query, ticker, asOf)
	if err != nil {
		r.sectionFailed("valuation_history", ticker, err)
		return nil
	}
	defer rows.Close()

	var history []contracts.ValuationPoint
	for rows.Next() {
		var p contracts.ValuationPoint
		if err := rows.Scan(&p.Date, &p.PERatio, &p.PSRatio); err != nil {
			r.sectionFailed("valuation_history", ticker, err)
			return nil
		}
		history = append(history, p)
	}
	if err := rows.Err(); err != nil {
		r.sectionFailed("valuation_history", ticker, err)
		return nil
	}
	return history
}

// GetSectorUniverse loads snapshots for every then-active ticker in the
// sector.
func (r *MetricRepository) GetSectorUniverse(ctx context.Context, sector string, asOf time.Time) ([]*contracts.MetricSnapshot, error) {
	query := `
		SELECT ticker
		FROM companies
		WHERE sector = $1
		  AND listed_at <= $2
		  AND (delisted_at IS NULL OR delisted_at > $2)
		ORDER BY ticker
	`
	rows, err := r.pool.Query(ctx, query, sector, asOf)
	if err != nil {
		return nil, fmt.Errorf("sector universe %s: %w", sector, err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tickers = append(tickers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	snapshots := make([]*contracts.MetricSnapshot, 0, len(tickers))
	for _, ticker := range tickers {
		s, err := r.GetTickerSnapshot(ctx, ticker, asOf)
		if err != nil {
			if errors.Is(err, contracts.ErrNotFound) {
				continue
			}
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}

func (r *MetricRepository) ListSectors(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT sector
		FROM companies
		WHERE delisted_at IS NULL
		ORDER BY sector
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	defer rows.Close()

	var sectors []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		sectors = append(sectors, s)
	}
	return sectors, rows.Err()
}

func (r *MetricRepository) ListActiveTickers(ctx context.Context, asOf time.Time) ([]string, error) {
	query := `
		SELECT ticker
		FROM companies
		WHERE listed_at <= $1
		  AND (delisted_at IS NULL OR delisted_at > $1)
		ORDER BY ticker
	`
	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("list active tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// GetPrice returns the closing price on or before the date.
func (r *MetricRepository) GetPrice(ctx context.Context, ticker string, asOf time.Time) (float64, error) {
	query := `
		SELECT close_price
		FROM daily_prices
		WHERE ticker = $1 AND trade_date <= $2
		ORDER BY trade_date DESC
		LIMIT 1
	`
	var price float64
	err := r.pool.QueryRow(ctx, query, ticker, asOf).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, contracts.ErrNotFound
		}
		return 0, fmt.Errorf("price %s: %w", ticker, err)
	}
	return price, nil
}
