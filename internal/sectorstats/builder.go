package sectorstats

import (
	"context"
	"fmt"
	"time"

	"github.com/investorcenter/icengine/internal/contracts"
	"github.com/investorcenter/icengine/pkg/logger"
)

// Builder assembles the daily sector stat set from raw metric snapshots.
type Builder struct {
	metrics contracts.MetricRepository
	opts    Options
	log     *logger.Logger
}

func NewBuilder(metrics contracts.MetricRepository, opts Options, log *logger.Logger) *Builder {
	return &Builder{metrics: metrics, opts: opts, log: log}
}

// Build computes distributions for every tracked metric in every sector as
// of the given date. Sectors that fail to load are skipped with a warning;
// one bad sector must not block the rest of the universe.
func (b *Builder) Build(ctx context.Context, asOf time.Time) (*contracts.SectorStatSet, error) {
	sectors, err := b.metrics.ListSectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}

	var dists []*contracts.SectorDistribution
	for _, sector := range sectors {
		snapshots, err := b.metrics.GetSectorUniverse(ctx, sector, asOf)
		if err != nil {
			b.log.WithError(err).WithField("sector", sector).Warn("skipping sector, universe load failed")
			continue
		}

		for _, metric := range contracts.TrackedMetrics {
			values := collect(snapshots, metric)
			d := ComputeDistribution(sector, metric, asOf, values, b.opts)
			if d == nil {
				continue
			}
			if d.Degraded {
				b.log.WithFields(map[string]interface{}{
					"sector": sector,
					"metric": metric,
					"count":  d.SampleCount,
				}).Debug("degraded distribution, small sample")
			}
			dists = append(dists, d)
		}
	}

	if len(dists) == 0 {
		return nil, contracts.ErrInsufficientData
	}

	b.log.WithFields(map[string]interface{}{
		"sectors":       len(sectors),
		"distributions": len(dists),
		"as_of":         asOf.Format("2006-01-02"),
	}).Info("sector distributions computed")

	return contracts.NewSectorStatSet(asOf, dists), nil
}

// collect extracts non-nil observations of one metric across snapshots.
func collect(snapshots []*contracts.MetricSnapshot, metric string) []float64 {
	var out []float64
	for _, s := range snapshots {
		if v, ok := metricValue(s, metric); ok {
			out = append(out, v)
		}
	}
	return out
}

func metricValue(s *contracts.MetricSnapshot, metric string) (float64, bool) {
	f := s.Fundamentals
	if f == nil {
		if metric == contracts.MetricDividendYield && s.Dividends != nil {
			return deref(s.Dividends.DividendYield)
		}
		return 0, false
	}
	switch metric {
	case contracts.MetricPERatio:
		return deref(f.PERatio)
	case contracts.MetricPSRatio:
		return deref(f.PSRatio)
	case contracts.MetricPBRatio:
		return deref(f.PBRatio)
	case contracts.MetricEVEBITDA:
		return deref(f.EVEBITDA)
	case contracts.MetricPEGRatio:
		return deref(f.PEGRatio)
	case contracts.MetricGrossMargin:
		return deref(f.GrossMargin)
	case contracts.MetricOperatingMargin:
		return deref(f.OperatingMargin)
	case contracts.MetricNetMargin:
		return deref(f.NetMargin)
	case contracts.MetricROE:
		return deref(f.ROE)
	case contracts.MetricROA:
		return deref(f.ROA)
	case contracts.MetricROIC:
		return deref(f.ROIC)
	case contracts.MetricRevenueGrowthYoY:
		return deref(f.RevenueGrowthYoY)
	case contracts.MetricEPSGrowthYoY:
		return deref(f.EPSGrowthYoY)
	case contracts.MetricFCFGrowthYoY:
		return deref(f.FCFGrowthYoY)
	case contracts.MetricDebtToEquity:
		return deref(f.DebtToEquity)
	case contracts.MetricCurrentRatio:
		return deref(f.CurrentRatio)
	case contracts.MetricQuickRatio:
		return deref(f.QuickRatio)
	case contracts.MetricInterestCoverage:
		return deref(f.InterestCoverage)
	case contracts.MetricDividendYield:
		if s.Dividends != nil {
			return deref(s.Dividends.DividendYield)
		}
		return 0, false
	}
	return 0, false
}

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
