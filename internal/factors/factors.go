// Package factors implements the twelve factor calculators. Each calculator
// turns a metric snapshot plus the day's sector distributions into a 0-100
// factor score with per-metric explanation.
package factors

import (
	"math"

	"github.com/investorcenter/icengine/internal/contracts"
)

// Calculator computes one factor score. Calculators never fail hard: when
// inputs are missing they return a result with Available=false and the
// aggregator redistributes the weight.
type Calculator interface {
	Name() string
	Category() contracts.FactorCategory
	Calculate(snapshot *contracts.MetricSnapshot, stats *contracts.SectorStatSet) contracts.FactorResult
}

// All returns the full calculator set in reporting order.
func All() []Calculator {
	return []Calculator{
		&GrowthCalculator{},
		&ProfitabilityCalculator{},
		&FinancialHealthCalculator{},
		&DividendQualityCalculator{},
		&ValueCalculator{},
		&IntrinsicValueCalculator{},
		&HistoricalValueCalculator{},
		&MomentumCalculator{},
		&TechnicalCalculator{},
		&SmartMoneyCalculator{},
		&EarningsRevisionsCalculator{},
		&SentimentCalculator{},
	}
}

// part is one weighted sub-metric contribution inside a factor.
type part struct {
	name     string
	weight   float64
	score    float64
	raw      float64
	pct      float64
	ok       bool
	degraded bool
}

// combine aggregates sub-metric parts into a factor result. Missing parts
// drop out and the remaining weights renormalize, so a factor with any
// usable input still scores. An all-missing factor is unavailable.
func combine(name string, parts []part) contracts.FactorResult {
	res := contracts.FactorResult{
		Name:     name,
		Category: contracts.FactorCategories[name],
		Metrics:  make(map[string]contracts.MetricDetail),
	}

	var weighted, total float64
	anyMissing := false
	for _, p := range parts {
		if !p.ok {
			anyMissing = true
			continue
		}
		weighted += p.score * p.weight
		total += p.weight
		if p.degraded {
			res.Degraded = true
		}
		res.Metrics[p.name] = contracts.MetricDetail{Raw: p.raw, Percentile: p.pct}
	}

	if total == 0 {
		res.Available = false
		return res
	}

	res.Available = true
	res.Score = clamp(weighted/total, 0, 100)
	if anyMissing {
		res.Degraded = true
	}
	return res
}

// sectorPart builds a part from a sector-percentile lookup. The percentile
// itself is the score; inversion for lower-is-better metrics happens inside
// the stat set.
func sectorPart(name string, weight float64, raw *float64, sector string, stats *contracts.SectorStatSet) part {
	p := part{name: name, weight: weight}
	if raw == nil {
		return p
	}
	pct, ok := stats.Percentile(sector, name, *raw)
	if !ok {
		return p
	}
	d := stats.Lookup(sector, name)
	p.ok = true
	p.raw = *raw
	p.pct = pct
	p.score = pct
	p.degraded = d != nil && d.Degraded
	return p
}

// scaledPart builds a part from an absolute linear mapping: lo maps to 0,
// mid to 50, hi to 100, clamped.
func scaledPart(name string, weight float64, raw *float64, lo, mid, hi float64) part {
	p := part{name: name, weight: weight}
	if raw == nil {
		return p
	}
	p.ok = true
	p.raw = *raw
	p.score = scaleAround(*raw, lo, mid, hi)
	p.pct = p.score
	return p
}

// scaleAround maps v onto 0-100 with lo->0, mid->50, hi->100, piecewise
// linear and clamped at the ends.
func scaleAround(v, lo, mid, hi float64) float64 {
	switch {
	case v <= lo:
		return 0
	case v >= hi:
		return 100
	case v <= mid:
		return 50 * (v - lo) / (mid - lo)
	default:
		return 50 + 50*(v-mid)/(hi-mid)
	}
}

// triangular scores v against an optimal band: 100 inside [optLo, optHi],
// falling linearly to 0 at min and max outside it.
func triangular(v, min, optLo, optHi, max float64) float64 {
	switch {
	case v >= optLo && v <= optHi:
		return 100
	case v <= min || v >= max:
		return 0
	case v < optLo:
		return 100 * (v - min) / (optLo - min)
	default:
		return 100 * (max - v) / (max - optHi)
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func unavailable(name string) contracts.FactorResult {
	return contracts.FactorResult{
		Name:     name,
		Category: contracts.FactorCategories[name],
	}
}
