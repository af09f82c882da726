package commands

import (
	"fmt"

	"github.com/investorcenter/icengine/internal/backtest"
	"github.com/investorcenter/icengine/internal/data"
	"github.com/investorcenter/icengine/internal/factors"
	"github.com/investorcenter/icengine/internal/scoring"
	"github.com/investorcenter/icengine/internal/sectorstats"
	"github.com/investorcenter/icengine/pkg/config"
	"github.com/investorcenter/icengine/pkg/database"
	"github.com/investorcenter/icengine/pkg/logger"
	"github.com/investorcenter/icengine/pkg/redis"
)

// runtime bundles the wired application graph shared by the commands.
type runtime struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	rdb   *redis.Client
	cache *redis.Cache

	metrics    *data.MetricRepository
	scores     *data.CachedScoreRepository
	stats      *data.SectorStatsRepository
	events     *data.EventRepository
	statsBuild *sectorstats.Builder
	runner     *scoring.Runner
	backtester *backtest.Engine
}

// newRuntime loads configuration and wires the full graph.
func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(rdb, "icengine")

	metrics := data.NewMetricRepository(db.Pool, log)
	stats := data.NewSectorStatsRepository(db.Pool)
	events := data.NewEventRepository(db.Pool)
	scores := data.NewCachedScoreRepository(
		data.NewScoreRepository(db.Pool), cache, 0, log,
	)

	statsBuild := sectorstats.NewBuilder(metrics, sectorstats.Options{
		MinSampleSize:  cfg.Scoring.MinSampleSize,
		WinsorizeSigma: cfg.Scoring.WinsorizeSigma,
	}, log)

	aggregator := scoring.NewAggregator(factors.All(), scoring.AggregatorOptions{
		HighCompleteness:   cfg.Scoring.HighCompleteness,
		MediumCompleteness: cfg.Scoring.MediumCompleteness,
		LowCompleteness:    cfg.Scoring.LowCompleteness,
		MinQualityFactors:  cfg.Scoring.MinCoreQuality,
		MinCoreValuation:   cfg.Scoring.MinCoreValuation,
	})
	stabilizer := scoring.NewStabilizer(events, scoring.StabilizerOptions{
		Alpha:          cfg.Scoring.SmoothingAlpha,
		MinChangeFloor: cfg.Scoring.MinChangeFloor,
		EventLookback:  cfg.Scoring.EventLookback,
		MinInsiderUSD:  cfg.Scoring.InsiderEventUSD,
	}, log)

	runner := scoring.NewRunner(
		metrics, scores, stats, statsBuild, aggregator, stabilizer, cache,
		scoring.RunnerOptions{Workers: cfg.Scoring.Workers}, log,
	)

	backtester := backtest.NewEngine(
		backtest.NewHistoricalScorer(metrics, scores), metrics, log,
	)

	return &runtime{
		cfg:        cfg,
		log:        log,
		db:         db,
		rdb:        rdb,
		cache:      cache,
		metrics:    metrics,
		scores:     scores,
		stats:      stats,
		events:     events,
		statsBuild: statsBuild,
		runner:     runner,
		backtester: backtester,
	}, nil
}

func (rt *runtime) Close() {
	if rt.rdb != nil {
		_ = rt.rdb.Close()
	}
	if rt.db != nil {
		rt.db.Close()
	}
}
