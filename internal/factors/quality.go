package factors

import "github.com/investorcenter/icengine/internal/contracts"

// GrowthCalculator scores revenue, EPS and free-cash-flow growth against
// sector peers.
type GrowthCalculator struct{}

func (c *GrowthCalculator) Name() string                       { return contracts.FactorGrowth }
func (c *GrowthCalculator) Category() contracts.FactorCategory { return contracts.CategoryQuality }

func (c *GrowthCalculator) Calculate(s *contracts.MetricSnapshot, stats *contracts.SectorStatSet) contracts.FactorResult {
	f := s.Fundamentals
	if f == nil {
		return unavailable(c.Name())
	}
	return combine(c.Name(), []part{
		sectorPart(contracts.MetricRevenueGrowthYoY, 0.40, f.RevenueGrowthYoY, s.Sector, stats),
		sectorPart(contracts.MetricEPSGrowthYoY, 0.35, f.EPSGrowthYoY, s.Sector, stats),
		sectorPart(contracts.MetricFCFGrowthYoY, 0.25, f.FCFGrowthYoY, s.Sector, stats),
	})
}

// ProfitabilityCalculator scores margins and capital returns against sector
// peers.
type ProfitabilityCalculator struct{}

func (c *ProfitabilityCalculator) Name() string { return contracts.FactorProfitability }
func (c *ProfitabilityCalculator) Category() contracts.FactorCategory {
	return contracts.CategoryQuality
}

func (c *ProfitabilityCalculator) Calculate(s *contracts.MetricSnapshot, stats *contracts.SectorStatSet) contracts.FactorResult {
	f := s.Fundamentals
	if f == nil {
		return unavailable(c.Name())
	}
	return combine(c.Name(), []part{
		sectorPart(contracts.MetricNetMargin, 0.25, f.NetMargin, s.Sector, stats),
		sectorPart(contracts.MetricOperatingMargin, 0.20, f.OperatingMargin, s.Sector, stats),
		sectorPart(contracts.MetricGrossMargin, 0.15, f.GrossMargin, s.Sector, stats),
		sectorPart(contracts.MetricROE, 0.20, f.ROE, s.Sector, stats),
		sectorPart(contracts.MetricROIC, 0.20, f.ROIC, s.Sector, stats),
	})
}

// FinancialHealthCalculator scores balance-sheet strength. Leverage and
// coverage use sector percentiles; the current ratio uses an optimal band
// because both too little and too much liquidity are penalized.
type FinancialHealthCalculator struct{}

func (c *FinancialHealthCalculator) Name() string { return contracts.FactorFinancialHealth }
func (c *FinancialHealthCalculator) Category() contracts.FactorCategory {
	return contracts.CategoryQuality
}

func (c *FinancialHealthCalculator) Calculate(s *contracts.MetricSnapshot, stats *contracts.SectorStatSet) contracts.FactorResult {
	f := s.Fundamentals
	if f == nil {
		return unavailable(c.Name())
	}

	parts := []part{
		sectorPart(contracts.MetricDebtToEquity, 0.30, f.DebtToEquity, s.Sector, stats),
		sectorPart(contracts.MetricQuickRatio, 0.15, f.QuickRatio, s.Sector, stats),
		sectorPart(contracts.MetricInterestCoverage, 0.30, f.InterestCoverage, s.Sector, stats),
	}

	cr := part{name: contracts.MetricCurrentRatio, weight: 0.25}
	if f.CurrentRatio != nil {
		cr.ok = true
		cr.raw = *f.CurrentRatio
		cr.score = triangular(*f.CurrentRatio, 0.5, 1.5, 3.0, 6.0)
		cr.pct = cr.score
	}
	parts = append(parts, cr)

	return combine(c.Name(), parts)
}

// DividendQualityCalculator scores dividend yield, payout sustainability,
// growth and consistency. Non-payers are unavailable rather than zero so
// the weight redistributes instead of dragging growth names down.
type DividendQualityCalculator struct{}

func (c *DividendQualityCalculator) Name() string { return contracts.FactorDividendQuality }
func (c *DividendQualityCalculator) Category() contracts.FactorCategory {
	return contracts.CategoryQuality
}

func (c *DividendQualityCalculator) Calculate(s *contracts.MetricSnapshot, stats *contracts.SectorStatSet) contracts.FactorResult {
	d := s.Dividends
	if d == nil || d.AnnualDividend == nil || *d.AnnualDividend <= 0 {
		return unavailable(c.Name())
	}

	parts := []part{
		sectorPart(contracts.MetricDividendYield, 0.25, d.DividendYield, s.Sector, stats),
	}

	// Payout ratio: 30-60% is sustainable, near 0 or above 100 is not.
	payout := part{name: "payout_ratio", weight: 0.30}
	if d.PayoutRatio != nil {
		payout.ok = true
		payout.raw = *d.PayoutRatio
		payout.score = triangular(*d.PayoutRatio, 0, 30, 60, 120)
		payout.pct = payout.score
	}
	parts = append(parts, payout)

	// Five-year dividend CAGR: 0% -> 50, 15% -> 100.
	parts = append(parts, scaledPart("dividend_cagr_5y", 0.25, d.DividendCAGR5Y, -15, 0, 15))

	// Consistency: 25 consecutive years paid caps at 100.
	streak := part{name: "consecutive_years", weight: 0.20, ok: true}
	streak.raw = float64(d.ConsecutiveYearsPaid)
	streak.score = clamp(float64(d.ConsecutiveYearsPaid)*4, 0, 100)
	streak.pct = streak.score
	parts = append(parts, streak)

	return combine(c.Name(), parts)
}
