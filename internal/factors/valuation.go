package factors

import (
	"sort"

	"github.com/investorcenter/icengine/internal/contracts"
)

// ValueCalculator scores the standard valuation ratios against sector
// peers. Lower ratios land higher percentiles via the stat-set inversion.
type ValueCalculator struct{}

func (c *ValueCalculator) Name() string                       { return contracts.FactorValue }
func (c *ValueCalculator) Category() contracts.FactorCategory { return contracts.CategoryValuation }

func (c *ValueCalculator) Calculate(s *contracts.MetricSnapshot, stats *contracts.SectorStatSet) contracts.FactorResult {
	f := s.Fundamentals
	if f == nil {
		return unavailable(c.Name())
	}
	return combine(c.Name(), []part{
		sectorPart(contracts.MetricPERatio, 0.30, f.PERatio, s.Sector, stats),
		sectorPart(contracts.MetricEVEBITDA, 0.25, f.EVEBITDA, s.Sector, stats),
		sectorPart(contracts.MetricPSRatio, 0.20, f.PSRatio, s.Sector, stats),
		sectorPart(contracts.MetricPBRatio, 0.15, f.PBRatio, s.Sector, stats),
		sectorPart(contracts.MetricPEGRatio, 0.10, f.PEGRatio, s.Sector, stats),
	})
}

// IntrinsicValueCalculator blends externally computed fair-value estimates
// into an upside-based score. Zero upside maps to 50, +50% to 100, -50%
// to 0.
type IntrinsicValueCalculator struct{}

func (c *IntrinsicValueCalculator) Name() string { return contracts.FactorIntrinsicValue }
func (c *IntrinsicValueCalculator) Category() contracts.FactorCategory {
	return contracts.CategoryValuation
}

func (c *IntrinsicValueCalculator) Calculate(s *contracts.MetricSnapshot, stats *contracts.SectorStatSet) contracts.FactorResult {
	fv := s.FairValue
	if fv == nil || fv.Price == nil || *fv.Price <= 0 {
		return unavailable(c.Name())
	}
	price := *fv.Price

	upsidePart := func(name string, weight float64, fair *float64) part {
		p := part{name: name, weight: weight}
		if fair == nil || *fair <= 0 {
			return p
		}
		upside := (*fair - price) / price * 100
		p.ok = true
		p.raw = *fair
		p.score = scaleAround(upside, -50, 0, 50)
		p.pct = p.score
		return p
	}

	return combine(c.Name(), []part{
		upsidePart("dcf_fair_value", 0.50, fv.DCFFairValue),
		upsidePart("graham_number", 0.25, fv.GrahamNumber),
		upsidePart("earnings_power_value", 0.25, fv.EarningsPowerValue),
	})
}

// HistoricalValueCalculator scores the company's current valuation against
// its own five-year history. A stock trading at the bottom of its own PE
// range scores high even when the whole sector is expensive.
//
// PE carries 70% of the weight normally. When net margin is under 5% the
// PE is barely meaningful and PS takes the 70%.
type HistoricalValueCalculator struct{}

func (c *HistoricalValueCalculator) Name() string { return contracts.FactorHistoricalValue }
func (c *HistoricalValueCalculator) Category() contracts.FactorCategory {
	return contracts.CategorySignals
}

func (c *HistoricalValueCalculator) Calculate(s *contracts.MetricSnapshot, stats *contracts.SectorStatSet) contracts.FactorResult {
	f := s.Fundamentals
	if f == nil || len(s.ValuationHistory) < 12 {
		return unavailable(c.Name())
	}

	peWeight, psWeight := 0.70, 0.30
	if f.NetMargin != nil && *f.NetMargin < 5 {
		peWeight, psWeight = 0.30, 0.70
	}

	pePart := ownHistoryPart("pe_vs_history", peWeight, f.PERatio, s.ValuationHistory, func(v contracts.ValuationPoint) *float64 { return v.PERatio })
	psPart := ownHistoryPart("ps_vs_history", psWeight, f.PSRatio, s.ValuationHistory, func(v contracts.ValuationPoint) *float64 { return v.PSRatio })

	return combine(c.Name(), []part{pePart, psPart})
}

// ownHistoryPart scores current against the company's own history: the
// lower the current ratio sits in its historical range, the higher the
// score.
func ownHistoryPart(name string, weight float64, current *float64, history []contracts.ValuationPoint, extract func(contracts.ValuationPoint) *float64) part {
	p := part{name: name, weight: weight}
	if current == nil || *current <= 0 {
		return p
	}

	var values []float64
	for _, h := range history {
		if v := extract(h); v != nil && *v > 0 {
			values = append(values, *v)
		}
	}
	if len(values) < 12 {
		return p
	}
	sort.Float64s(values)

	// Rank of current value within history, as a percentile.
	below := sort.SearchFloat64s(values, *current)
	pct := float64(below) / float64(len(values)) * 100

	p.ok = true
	p.raw = *current
	p.pct = pct
	p.score = 100 - pct
	return p
}
