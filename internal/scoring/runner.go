package scoring

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/investorcenter/icengine/internal/contracts"
	"github.com/investorcenter/icengine/internal/sectorstats"
	"github.com/investorcenter/icengine/pkg/logger"
	"github.com/investorcenter/icengine/pkg/redis"
)

// RunnerOptions controls batch scoring.
type RunnerOptions struct {
	// Workers bounds the scoring goroutine pool.
	Workers int
}

// Runner orchestrates batch scoring: it guarantees sector distributions
// exist before any ticker is scored, fans tickers out across a bounded
// worker pool, and isolates per-ticker failures so one bad ticker never
// aborts the run.
type Runner struct {
	metrics    contracts.MetricRepository
	scores     contracts.ScoreRepository
	stats      contracts.SectorStatsRepository
	statsBuild *sectorstats.Builder
	aggregator *Aggregator
	stabilizer *Stabilizer
	cache      *redis.Cache
	opts       RunnerOptions
	log        *logger.Logger
}

func NewRunner(
	metrics contracts.MetricRepository,
	scores contracts.ScoreRepository,
	stats contracts.SectorStatsRepository,
	statsBuild *sectorstats.Builder,
	aggregator *Aggregator,
	stabilizer *Stabilizer,
	cache *redis.Cache,
	opts RunnerOptions,
	log *logger.Logger,
) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	return &Runner{
		metrics:    metrics,
		scores:     scores,
		stats:      stats,
		statsBuild: statsBuild,
		aggregator: aggregator,
		stabilizer: stabilizer,
		cache:      cache,
		opts:       opts,
		log:        log,
	}
}

// RunResult summarizes one batch run.
type RunResult struct {
	Scored   int
	Failed   int
	Skipped  int
	Duration time.Duration
}

// RunFullScore scores the entire active universe as of the given date,
// building the day's sector distributions first if they do not exist yet.
func (r *Runner) RunFullScore(ctx context.Context, asOf time.Time) (*RunResult, error) {
	set, err := r.ensureStats(ctx, asOf)
	if err != nil {
		return nil, err
	}

	tickers, err := r.metrics.ListActiveTickers(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("list active tickers: %w", err)
	}

	return r.run(ctx, tickers, asOf, set)
}

// RunPriceSensitiveRefresh reruns only the price-driven factors (momentum,
// technical) against fresh technicals and re-aggregates them with the rest
// of the day's factor results. It is the intraday path: fundamentals have
// not changed, so stale or missing distributions are an error rather than
// a rebuild, and tickers without a record to refresh fall back to a full
// recomputation.
func (r *Runner) RunPriceSensitiveRefresh(ctx context.Context, asOf time.Time) (*RunResult, error) {
	set, err := r.loadStats(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("price refresh needs existing sector stats: %w", err)
	}

	tickers, err := r.metrics.ListActiveTickers(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("list active tickers: %w", err)
	}

	return r.runWith(ctx, tickers, r.refreshOne, asOf, set)
}

// RunUniverse scores an explicit ticker list, building distributions if
// needed. Used by the CLI for ad-hoc scoring.
func (r *Runner) RunUniverse(ctx context.Context, tickers []string, asOf time.Time) (*RunResult, error) {
	set, err := r.ensureStats(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return r.run(ctx, tickers, asOf, set)
}

// ScoreTicker scores one ticker end to end and returns the record without
// persisting it. Serving paths use it for on-demand recomputation.
func (r *Runner) ScoreTicker(ctx context.Context, ticker string, asOf time.Time) (*contracts.ScoreRecord, error) {
	set, err := r.loadStats(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return r.scoreOne(ctx, ticker, asOf, set)
}

// scoreFn is one per-ticker scoring strategy: the full pipeline or the
// price-sensitive partial refresh.
type scoreFn func(ctx context.Context, ticker string, asOf time.Time, set *contracts.SectorStatSet) (*contracts.ScoreRecord, error)

func (r *Runner) run(ctx context.Context, tickers []string, asOf time.Time, set *contracts.SectorStatSet) (*RunResult, error) {
	return r.runWith(ctx, tickers, r.scoreOne, asOf, set)
}

func (r *Runner) runWith(ctx context.Context, tickers []string, score scoreFn, asOf time.Time, set *contracts.SectorStatSet) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{}

	type outcome struct {
		record *contracts.ScoreRecord
		err    error
	}
	jobs := make(chan string)
	outcomes := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < r.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range jobs {
				rec, err := score(ctx, ticker, asOf, set)
				if err != nil {
					r.log.WithError(err).WithField("ticker", ticker).Warn("ticker scoring failed")
				}
				outcomes <- outcome{record: rec, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, t := range tickers {
			select {
			case jobs <- t:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var records []*contracts.ScoreRecord
	for o := range outcomes {
		switch {
		case o.err != nil:
			result.Failed++
		case o.record == nil:
			result.Skipped++
		default:
			records = append(records, o.record)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assignSectorRanks(records)

	for _, rec := range records {
		if err := r.scores.Save(ctx, rec); err != nil {
			r.log.WithError(err).WithField("ticker", rec.Ticker).Error("score save failed")
			result.Failed++
			continue
		}
		result.Scored++
	}

	result.Duration = time.Since(start)
	r.log.WithFields(map[string]interface{}{
		"scored":   result.Scored,
		"failed":   result.Failed,
		"skipped":  result.Skipped,
		"duration": result.Duration.String(),
	}).Info("scoring run complete")
	return result, nil
}

func (r *Runner) scoreOne(ctx context.Context, ticker string, asOf time.Time, set *contracts.SectorStatSet) (*contracts.ScoreRecord, error) {
	snapshot, err := r.metrics.GetTickerSnapshot(ctx, ticker, asOf)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot %s: %w", ticker, err)
	}

	record := r.aggregator.Aggregate(snapshot, set, asOf)

	previous, err := r.scores.GetLatestBefore(ctx, ticker, asOf)
	if err != nil && !errors.Is(err, contracts.ErrNotFound) {
		return nil, fmt.Errorf("previous score %s: %w", ticker, err)
	}

	if err := r.stabilizer.Apply(ctx, record, previous); err != nil {
		return nil, err
	}
	ExplainChange(record, previous)
	return record, nil
}

// refreshOne is the partial path: reuse the day's record and recompute the
// price-sensitive factors only. Without a same-day record there is nothing
// to carry, so the ticker gets a full recomputation instead.
func (r *Runner) refreshOne(ctx context.Context, ticker string, asOf time.Time, set *contracts.SectorStatSet) (*contracts.ScoreRecord, error) {
	previous, err := r.scores.GetLatestBefore(ctx, ticker, asOf)
	if err != nil && !errors.Is(err, contracts.ErrNotFound) {
		return nil, fmt.Errorf("previous score %s: %w", ticker, err)
	}
	if previous == nil || !sameDay(previous.CalculatedAt, asOf) {
		return r.scoreOne(ctx, ticker, asOf, set)
	}

	snapshot, err := r.metrics.GetTickerSnapshot(ctx, ticker, asOf)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot %s: %w", ticker, err)
	}

	record := r.aggregator.Refresh(snapshot, set, previous, asOf)
	if err := r.stabilizer.Apply(ctx, record, previous); err != nil {
		return nil, err
	}
	ExplainChange(record, previous)
	return record, nil
}

// ensureStats loads the day's stat set, building and persisting it when
// absent. This is the barrier that keeps scoring from running against
// missing distributions.
func (r *Runner) ensureStats(ctx context.Context, asOf time.Time) (*contracts.SectorStatSet, error) {
	set, err := r.loadStats(ctx, asOf)
	if err == nil {
		return set, nil
	}
	if !errors.Is(err, contracts.ErrNotFound) {
		return nil, err
	}

	r.log.WithField("as_of", asOf.Format("2006-01-02")).Info("sector stats missing, building")
	set, err = r.statsBuild.Build(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("build sector stats: %w", err)
	}
	if err := r.stats.SaveStatSet(ctx, set); err != nil {
		return nil, fmt.Errorf("save sector stats: %w", err)
	}
	r.cacheStats(ctx, set)
	return set, nil
}

func (r *Runner) loadStats(ctx context.Context, asOf time.Time) (*contracts.SectorStatSet, error) {
	if r.cache != nil {
		var cached contracts.SectorStatSet
		found, err := r.cache.Get(ctx, statsCacheKey(asOf), &cached)
		if err == nil && found && sameDay(cached.AsOf, asOf) {
			return &cached, nil
		}
	}

	set, err := r.stats.GetStatSet(ctx, asOf)
	if err != nil {
		return nil, err
	}
	if !sameDay(set.AsOf, asOf) {
		return nil, contracts.ErrNotFound
	}
	r.cacheStats(ctx, set)
	return set, nil
}

func (r *Runner) cacheStats(ctx context.Context, set *contracts.SectorStatSet) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, statsCacheKey(set.AsOf), set, 26*time.Hour); err != nil {
		r.log.WithError(err).Warn("sector stats cache write failed")
	}
}

func statsCacheKey(asOf time.Time) string {
	return "sectorstats:" + asOf.Format("2006-01-02")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// assignSectorRanks ranks displayable scores within each sector,
// descending. Rank 1 is the sector's best score.
func assignSectorRanks(records []*contracts.ScoreRecord) {
	bySector := make(map[string][]*contracts.ScoreRecord)
	for _, rec := range records {
		if rec.Displayable() {
			bySector[rec.Sector] = append(bySector[rec.Sector], rec)
		}
	}
	for _, group := range bySector {
		sort.SliceStable(group, func(i, j int) bool {
			return *group[i].OverallScore > *group[j].OverallScore
		})
		total := len(group)
		for i, rec := range group {
			rec.SectorRank = i + 1
			rec.SectorTotal = total
			if total > 1 {
				rec.SectorPercentile = round1(float64(total-1-i) / float64(total-1) * 100)
			} else {
				rec.SectorPercentile = 100
			}
		}
	}
}
