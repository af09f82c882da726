// Package jobs defines the recurring scoring jobs: nightly sector
// distributions, the daily full-universe scoring run that depends on them,
// and the intraday price-sensitive refresh.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/investorcenter/icengine/internal/contracts"
	"github.com/investorcenter/icengine/internal/scoring"
	"github.com/investorcenter/icengine/internal/sectorstats"
	"github.com/investorcenter/icengine/pkg/logger"
)

// SectorStatsJob rebuilds sector distributions nightly, before the scoring
// run.
type SectorStatsJob struct {
	builder *sectorstats.Builder
	stats   contracts.SectorStatsRepository
	logger  *logger.Logger
}

func NewSectorStatsJob(builder *sectorstats.Builder, stats contracts.SectorStatsRepository, log *logger.Logger) *SectorStatsJob {
	return &SectorStatsJob{builder: builder, stats: stats, logger: log}
}

func (j *SectorStatsJob) Name() string { return "sector_stats" }

// 01:30 UTC, after the fundamentals pipelines settle.
func (j *SectorStatsJob) Schedule() string { return "0 30 1 * * *" }

func (j *SectorStatsJob) Run(ctx context.Context) error {
	asOf := time.Now().UTC()
	set, err := j.builder.Build(ctx, asOf)
	if err != nil {
		return fmt.Errorf("build sector stats: %w", err)
	}
	if err := j.stats.SaveStatSet(ctx, set); err != nil {
		return fmt.Errorf("save sector stats: %w", err)
	}
	j.logger.WithField("distributions", len(set.Distributions)).Info("Sector stats refreshed")
	return nil
}

// FullScoreJob runs the daily full-universe scoring pass. The runner itself
// guarantees distributions exist, so a missed stats job delays rather than
// corrupts this run.
type FullScoreJob struct {
	runner *scoring.Runner
	logger *logger.Logger
}

func NewFullScoreJob(runner *scoring.Runner, log *logger.Logger) *FullScoreJob {
	return &FullScoreJob{runner: runner, logger: log}
}

func (j *FullScoreJob) Name() string { return "full_score" }

// 02:30 UTC, one hour after sector stats.
func (j *FullScoreJob) Schedule() string { return "0 30 2 * * *" }

func (j *FullScoreJob) Run(ctx context.Context) error {
	res, err := j.runner.RunFullScore(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("full score run: %w", err)
	}
	j.logger.WithFields(map[string]interface{}{
		"scored": res.Scored,
		"failed": res.Failed,
	}).Info("Full scoring run finished")
	return nil
}

// PriceRefreshJob rescores hourly during US market hours so momentum and
// technical factors track intraday moves.
type PriceRefreshJob struct {
	runner *scoring.Runner
	logger *logger.Logger
}

func NewPriceRefreshJob(runner *scoring.Runner, log *logger.Logger) *PriceRefreshJob {
	return &PriceRefreshJob{runner: runner, logger: log}
}

func (j *PriceRefreshJob) Name() string { return "price_refresh" }

// Hourly at :05, 14:00-21:00 UTC (US trading hours).
func (j *PriceRefreshJob) Schedule() string { return "0 5 14-21 * * 1-5" }

func (j *PriceRefreshJob) Run(ctx context.Context) error {
	res, err := j.runner.RunPriceSensitiveRefresh(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("price refresh run: %w", err)
	}
	j.logger.WithFields(map[string]interface{}{
		"scored": res.Scored,
		"failed": res.Failed,
	}).Info("Price-sensitive refresh finished")
	return nil
}
