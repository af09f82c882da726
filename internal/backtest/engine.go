// Package backtest evaluates the scoring model by decile portfolios: if the
// score carries signal, high-decile baskets should outrun low-decile ones
// over time.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/investorcenter/icengine/internal/contracts"
	"github.com/investorcenter/icengine/pkg/logger"
)

// NumDeciles is fixed: decile 10 always holds the highest scores.
const NumDeciles = 10

// Scorer supplies point-in-time scores. Implementations must only use data
// observable on or before asOf; the engine verifies record timestamps and
// fails loud on violations.
type Scorer interface {
	ScoresAsOf(ctx context.Context, asOf time.Time) ([]*contracts.ScoreRecord, error)
}

// PriceSource supplies closing prices for return computation.
type PriceSource interface {
	GetPrice(ctx context.Context, ticker string, asOf time.Time) (float64, error)
}

// Config parameterizes one backtest run.
type Config struct {
	Start     time.Time
	End       time.Time
	Rebalance Frequency

	// TransactionCostBps and SlippageBps are charged on turnover at each
	// rebalance.
	TransactionCostBps float64
	SlippageBps        float64

	// Benchmark is the symbol used for the information ratio. Empty skips
	// benchmark-relative metrics.
	Benchmark string

	// Workers bounds parallel period evaluation.
	Workers int
}

// DecileStats summarizes one decile across the whole run.
type DecileStats struct {
	Decile           int     `json:"decile"`
	AnnualizedReturn float64 `json:"annualized_return"`
	TotalReturn      float64 `json:"total_return"`
	Volatility       float64 `json:"volatility"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	AvgTurnover      float64 `json:"avg_turnover"`
	AvgHoldings      float64 `json:"avg_holdings"`
}

// Result is the full backtest output.
type Result struct {
	Config  Config    `json:"config"`
	Periods int       `json:"periods"`
	RunAt   time.Time `json:"run_at"`

	Deciles []DecileStats `json:"deciles"`

	// TopMinusBottom is the annualized return spread between decile 10
	// and decile 1.
	TopMinusBottom float64 `json:"top_minus_bottom"`

	// Monotonicity is the share of adjacent decile pairs whose annualized
	// returns are correctly ordered.
	Monotonicity float64 `json:"monotonicity"`

	// HitRate is the share of periods where the top-half deciles
	// outreturned the bottom half.
	HitRate float64 `json:"hit_rate"`

	// InformationRatio is the top decile's annualized excess return over
	// the benchmark divided by its tracking error. Zero when no benchmark
	// was configured.
	InformationRatio float64 `json:"information_ratio"`
}

// periodOutcome holds one period's per-decile gross returns and holdings.
type periodOutcome struct {
	period    Period
	returns   [NumDeciles]float64
	counted   [NumDeciles]bool
	holdings  [NumDeciles][]string
	benchmark float64
	hasBench  bool
}

// Engine runs decile backtests.
type Engine struct {
	scorer Scorer
	prices PriceSource
	log    *logger.Logger
}

func NewEngine(scorer Scorer, prices PriceSource, log *logger.Logger) *Engine {
	return &Engine{scorer: scorer, prices: prices, log: log}
}

// Run executes the backtest over the configured window.
func (e *Engine) Run(ctx context.Context, cfg Config) (*Result, error) {
	periods, err := GeneratePeriods(cfg.Start, cfg.End, cfg.Rebalance)
	if err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}

	e.log.WithFields(map[string]interface{}{
		"start":   cfg.Start.Format("2006-01-02"),
		"end":     cfg.End.Format("2006-01-02"),
		"periods": len(periods),
		"freq":    string(cfg.Rebalance),
	}).Info("backtest starting")

	outcomes := make([]*periodOutcome, len(periods))
	var (
		wg       sync.WaitGroup
		firstErr error
		errOnce  sync.Once
	)
	sem := make(chan struct{}, workers)

	for i, p := range periods {
		wg.Add(1)
		go func(i int, p Period) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			out, err := e.evaluatePeriod(ctx, cfg, p)
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
			outcomes[i] = out
		}(i, p)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	// Periods with no scorable universe (early history) drop out.
	var kept []*periodOutcome
	for _, o := range outcomes {
		if o != nil {
			kept = append(kept, o)
		}
	}
	if len(kept) == 0 {
		return nil, contracts.ErrInsufficientData
	}

	return e.aggregate(cfg, kept), nil
}

// evaluatePeriod forms decile portfolios on the score date and measures
// their equal-weighted gross return to period end. Returns nil when fewer
// scored names exist than deciles.
func (e *Engine) evaluatePeriod(ctx context.Context, cfg Config, p Period) (*periodOutcome, error) {
	records, err := e.scorer.ScoresAsOf(ctx, p.ScoreDate)
	if err != nil {
		return nil, fmt.Errorf("scores as of %s: %w", p.ScoreDate.Format("2006-01-02"), err)
	}

	type scored struct {
		ticker string
		score  float64
	}
	var universe []scored
	for _, r := range records {
		if r.CalculatedAt.After(p.ScoreDate) {
			return nil, fmt.Errorf("%w: score for %s calculated %s, period scored %s",
				contracts.ErrLookAhead, r.Ticker,
				r.CalculatedAt.Format("2006-01-02"), p.ScoreDate.Format("2006-01-02"))
		}
		if r.Displayable() {
			universe = append(universe, scored{ticker: r.Ticker, score: *r.OverallScore})
		}
	}
	if len(universe) < NumDeciles {
		return nil, nil
	}

	// Ascending by score, ties broken by ticker for determinism. Decile 10
	// takes the top of the sorted order.
	sort.Slice(universe, func(i, j int) bool {
		if universe[i].score != universe[j].score {
			return universe[i].score < universe[j].score
		}
		return universe[i].ticker < universe[j].ticker
	})

	out := &periodOutcome{period: p}
	n := len(universe)
	for d := 0; d < NumDeciles; d++ {
		lo := d * n / NumDeciles
		hi := (d + 1) * n / NumDeciles
		var sum float64
		var count int
		for _, s := range universe[lo:hi] {
			ret, err := e.tickerReturn(ctx, s.ticker, p)
			if err != nil {
				// Delisted or missing price: skip the position, not the
				// period.
				continue
			}
			sum += ret
			count++
			out.holdings[d] = append(out.holdings[d], s.ticker)
		}
		if count > 0 {
			out.returns[d] = sum / float64(count)
			out.counted[d] = true
		}
	}

	if cfg.Benchmark != "" {
		ret, err := e.tickerReturn(ctx, cfg.Benchmark, p)
		if err == nil {
			out.benchmark = ret
			out.hasBench = true
		}
	}
	return out, nil
}

func (e *Engine) tickerReturn(ctx context.Context, ticker string, p Period) (float64, error) {
	entry, err := e.prices.GetPrice(ctx, ticker, p.ScoreDate)
	if err != nil {
		return 0, err
	}
	exit, err := e.prices.GetPrice(ctx, ticker, p.EndDate)
	if err != nil {
		return 0, err
	}
	if entry <= 0 {
		return 0, errors.New("non-positive entry price")
	}
	return exit/entry - 1, nil
}
