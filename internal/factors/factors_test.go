package factors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investorcenter/icengine/internal/contracts"
)

func uniformDist(sector, metric string) *contracts.SectorDistribution {
	return &contracts.SectorDistribution{
		Sector: sector, Metric: metric,
		Min: 0, P10: 10, P25: 25, P50: 50, P75: 75, P90: 90, Max: 100,
		SampleCount: 50,
	}
}

func testStats(metrics ...string) *contracts.SectorStatSet {
	var dists []*contracts.SectorDistribution
	for _, m := range metrics {
		dists = append(dists, uniformDist("Technology", m))
	}
	return contracts.NewSectorStatSet(time.Now(), dists)
}

func f(v float64) *float64 { return &v }

func TestScaleAround(t *testing.T) {
	assert.Equal(t, 0.0, scaleAround(-20, -10, 0, 10))
	assert.Equal(t, 0.0, scaleAround(-10, -10, 0, 10))
	assert.Equal(t, 25.0, scaleAround(-5, -10, 0, 10))
	assert.Equal(t, 50.0, scaleAround(0, -10, 0, 10))
	assert.Equal(t, 75.0, scaleAround(5, -10, 0, 10))
	assert.Equal(t, 100.0, scaleAround(10, -10, 0, 10))
	assert.Equal(t, 100.0, scaleAround(99, -10, 0, 10))
}

func TestTriangular(t *testing.T) {
	// Payout ratio band: optimal 30-60, dead at 0 and 120.
	assert.Equal(t, 100.0, triangular(45, 0, 30, 60, 120))
	assert.Equal(t, 100.0, triangular(30, 0, 30, 60, 120))
	assert.Equal(t, 100.0, triangular(60, 0, 30, 60, 120))
	assert.Equal(t, 50.0, triangular(15, 0, 30, 60, 120))
	assert.Equal(t, 50.0, triangular(90, 0, 30, 60, 120))
	assert.Equal(t, 0.0, triangular(0, 0, 30, 60, 120))
	assert.Equal(t, 0.0, triangular(150, 0, 30, 60, 120))
}

func TestCombineRenormalizesMissing(t *testing.T) {
	res := combine(contracts.FactorGrowth, []part{
		{name: "a", weight: 0.40, ok: true, score: 80},
		{name: "b", weight: 0.35, ok: false},
		{name: "c", weight: 0.25, ok: true, score: 40},
	})
	require.True(t, res.Available)
	assert.True(t, res.Degraded)
	// (80*.40 + 40*.25) / (.40+.25) = 42/0.65
	assert.InDelta(t, 64.615, res.Score, 0.01)
	assert.Len(t, res.Metrics, 2)
}

func TestCombineAllMissing(t *testing.T) {
	res := combine(contracts.FactorGrowth, []part{
		{name: "a", weight: 0.5},
		{name: "b", weight: 0.5},
	})
	assert.False(t, res.Available)
}

func TestGrowthCalculator(t *testing.T) {
	stats := testStats(
		contracts.MetricRevenueGrowthYoY,
		contracts.MetricEPSGrowthYoY,
		contracts.MetricFCFGrowthYoY,
	)
	s := &contracts.MetricSnapshot{
		Ticker: "GRW", Sector: "Technology",
		Fundamentals: &contracts.Fundamentals{
			RevenueGrowthYoY: f(75),
			EPSGrowthYoY:     f(50),
			FCFGrowthYoY:     f(25),
		},
	}
	res := (&GrowthCalculator{}).Calculate(s, stats)
	require.True(t, res.Available)
	assert.False(t, res.Degraded)
	// 75*.40 + 50*.35 + 25*.25 = 30 + 17.5 + 6.25
	assert.InDelta(t, 53.75, res.Score, 1e-9)
	assert.Equal(t, contracts.CategoryQuality, res.Category)
}

func TestGrowthCalculatorNoFundamentals(t *testing.T) {
	res := (&GrowthCalculator{}).Calculate(&contracts.MetricSnapshot{Ticker: "X"}, testStats())
	assert.False(t, res.Available)
}

func TestValueCalculatorInvertsRatios(t *testing.T) {
	stats := testStats(contracts.MetricPERatio)
	s := &contracts.MetricSnapshot{
		Ticker: "VAL", Sector: "Technology",
		Fundamentals: &contracts.Fundamentals{PERatio: f(10)},
	}
	res := (&ValueCalculator{}).Calculate(s, stats)
	require.True(t, res.Available)
	// PE at sector percentile 10 inverts to score 90. Only PE available,
	// weight renormalizes to it entirely.
	assert.InDelta(t, 90.0, res.Score, 1e-9)
	assert.True(t, res.Degraded)
}

func TestDividendQualityNonPayerUnavailable(t *testing.T) {
	s := &contracts.MetricSnapshot{
		Ticker: "NOPAY", Sector: "Technology",
		Dividends: &contracts.DividendData{AnnualDividend: f(0)},
	}
	res := (&DividendQualityCalculator{}).Calculate(s, testStats())
	assert.False(t, res.Available)
}

func TestIntrinsicValueUpside(t *testing.T) {
	s := &contracts.MetricSnapshot{
		Ticker: "DCF", Sector: "Technology",
		FairValue: &contracts.FairValueData{
			Price:        f(100),
			DCFFairValue: f(150), // +50% upside -> 100
		},
	}
	res := (&IntrinsicValueCalculator{}).Calculate(s, testStats())
	require.True(t, res.Available)
	assert.InDelta(t, 100.0, res.Score, 1e-9)

	s.FairValue.DCFFairValue = f(100) // no upside -> 50
	res = (&IntrinsicValueCalculator{}).Calculate(s, testStats())
	assert.InDelta(t, 50.0, res.Score, 1e-9)

	s.FairValue.Price = nil
	res = (&IntrinsicValueCalculator{}).Calculate(s, testStats())
	assert.False(t, res.Available)
}

func TestHistoricalValueCheapVsOwnHistory(t *testing.T) {
	history := make([]contracts.ValuationPoint, 0, 60)
	base := time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		pe := 20.0 + float64(i) // 20..79
		history = append(history, contracts.ValuationPoint{
			Date:    base.AddDate(0, i, 0),
			PERatio: f(pe),
			PSRatio: f(pe / 5),
		})
	}

	s := &contracts.MetricSnapshot{
		Ticker: "HIST", Sector: "Technology",
		Fundamentals: &contracts.Fundamentals{
			PERatio:   f(20), // bottom of own range
			PSRatio:   f(4),
			NetMargin: f(15),
		},
		ValuationHistory: history,
	}
	res := (&HistoricalValueCalculator{}).Calculate(s, testStats())
	require.True(t, res.Available)
	// Cheapest in own history scores 100 on both legs.
	assert.InDelta(t, 100.0, res.Score, 1e-9)

	// Most expensive in own history scores 0 on the PE leg.
	s.Fundamentals.PERatio = f(200)
	s.Fundamentals.PSRatio = f(40)
	res = (&HistoricalValueCalculator{}).Calculate(s, testStats())
	require.True(t, res.Available)
	assert.InDelta(t, 0.0, res.Score, 0.5)
}

func TestHistoricalValueThinMarginShiftsToPS(t *testing.T) {
	history := make([]contracts.ValuationPoint, 0, 24)
	base := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 24; i++ {
		history = append(history, contracts.ValuationPoint{
			Date:    base.AddDate(0, i, 0),
			PERatio: f(10 + float64(i)),
			PSRatio: f(1 + float64(i)*0.1),
		})
	}

	// Current PE at the top of its range (bad leg), PS at the bottom
	// (good leg). With thin margins PS dominates, so the score should be
	// closer to 100 than to 0.
	s := &contracts.MetricSnapshot{
		Ticker: "THIN", Sector: "Technology",
		Fundamentals: &contracts.Fundamentals{
			PERatio:   f(40),
			PSRatio:   f(1),
			NetMargin: f(2),
		},
		ValuationHistory: history,
	}
	res := (&HistoricalValueCalculator{}).Calculate(s, testStats())
	require.True(t, res.Available)
	assert.Greater(t, res.Score, 60.0)
}

func TestHistoricalValueNeedsHistory(t *testing.T) {
	s := &contracts.MetricSnapshot{
		Ticker: "NEW", Sector: "Technology",
		Fundamentals: &contracts.Fundamentals{PERatio: f(15)},
	}
	res := (&HistoricalValueCalculator{}).Calculate(s, testStats())
	assert.False(t, res.Available)
}

func TestMomentumCalculator(t *testing.T) {
	s := &contracts.MetricSnapshot{
		Ticker: "MOM", Sector: "Technology",
		Technicals: &contracts.Technicals{
			Return1M:  f(10),  // saturates 100
			Return3M:  f(0),   // 50
			Return6M:  f(-30), // 0
			Return12M: f(20),  // 75
		},
	}
	res := (&MomentumCalculator{}).Calculate(s, testStats())
	require.True(t, res.Available)
	// 100*.15 + 50*.25 + 0*.30 + 75*.30 = 15 + 12.5 + 0 + 22.5
	assert.InDelta(t, 50.0, res.Score, 1e-9)
}

func TestEarningsRevisions(t *testing.T) {
	s := &contracts.MetricSnapshot{
		Ticker: "REV", Sector: "Technology",
		Revisions: &contracts.RevisionData{
			NumAnalysts:    12,
			RevisionPct90d: f(15), // magnitude 100
			RevisionPct30d: f(0),  // acceleration 0-15 = -15 -> 0
			Upgrades90d:    3,
			Downgrades90d:  1, // net 0.5 -> 75
		},
	}
	res := (&EarningsRevisionsCalculator{}).Calculate(s, testStats())
	require.True(t, res.Available)
	// 100*.50 + 75*.30 + 0*.20 = 50 + 22.5 + 0
	assert.InDelta(t, 72.5, res.Score, 1e-9)
}

func TestEarningsRevisionsRecencyIsAcceleration(t *testing.T) {
	snap := func(r30, r90 float64) *contracts.MetricSnapshot {
		return &contracts.MetricSnapshot{
			Ticker: "ACC", Sector: "Technology",
			Revisions: &contracts.RevisionData{
				NumAnalysts:    5,
				RevisionPct30d: f(r30),
				RevisionPct90d: f(r90),
			},
		}
	}
	calc := &EarningsRevisionsCalculator{}

	recency := func(res contracts.FactorResult) contracts.MetricDetail {
		d, ok := res.Metrics["revision_recency"]
		require.True(t, ok)
		return d
	}

	// Both trends positive, but the 30-day leg lags the 90-day leg:
	// estimate momentum is fading, so recency lands below neutral.
	fading := calc.Calculate(snap(5, 15), testStats())
	require.True(t, fading.Available)
	assert.Less(t, recency(fading).Percentile, 50.0)
	assert.InDelta(t, -10.0, recency(fading).Raw, 1e-9)

	// Mirror image: the last month outruns the quarter.
	building := calc.Calculate(snap(15, 5), testStats())
	require.True(t, building.Available)
	assert.Greater(t, recency(building).Percentile, 50.0)

	// Flat acceleration is neutral regardless of the level.
	flat := calc.Calculate(snap(12, 12), testStats())
	assert.InDelta(t, 50.0, recency(flat).Percentile, 1e-9)
}

func TestEarningsRevisionsNoCoverage(t *testing.T) {
	s := &contracts.MetricSnapshot{
		Ticker: "NC", Sector: "Technology",
		Revisions: &contracts.RevisionData{NumAnalysts: 0},
	}
	res := (&EarningsRevisionsCalculator{}).Calculate(s, testStats())
	assert.False(t, res.Available)
}

func TestSentimentMinArticles(t *testing.T) {
	s := &contracts.MetricSnapshot{
		Ticker: "THIN", Sector: "Technology",
		Sentiment: &contracts.SentimentData{ArticleCount: 2, AvgSentiment: f(90)},
	}
	res := (&SentimentCalculator{}).Calculate(s, testStats())
	assert.False(t, res.Available)

	s.Sentiment.ArticleCount = 10
	s.Sentiment.PositiveCount = 8
	s.Sentiment.NegativeCount = 2
	res = (&SentimentCalculator{}).Calculate(s, testStats())
	require.True(t, res.Available)
	// 90*.70 + (50 + 0.6*50)*.30 = 63 + 24
	assert.InDelta(t, 87.0, res.Score, 1e-9)
}

func TestAllRegistryComplete(t *testing.T) {
	calcs := All()
	require.Len(t, calcs, 12)
	seen := make(map[string]bool)
	for _, c := range calcs {
		assert.False(t, seen[c.Name()], "duplicate calculator %s", c.Name())
		seen[c.Name()] = true
		assert.Equal(t, contracts.FactorCategories[c.Name()], c.Category())
	}
}

func TestScoresStayInRange(t *testing.T) {
	stats := testStats(contracts.TrackedMetrics...)
	s := &contracts.MetricSnapshot{
		Ticker: "FULL", Sector: "Technology",
		Fundamentals: &contracts.Fundamentals{
			PERatio: f(500), PSRatio: f(0.1), RevenueGrowthYoY: f(-90),
			EPSGrowthYoY: f(1000), NetMargin: f(-50), ROE: f(300),
			DebtToEquity: f(50), CurrentRatio: f(0.01),
		},
		Technicals: &contracts.Technicals{
			Return1M: f(500), Return12M: f(-99), RSI: f(99),
		},
	}
	for _, c := range All() {
		res := c.Calculate(s, stats)
		if res.Available {
			assert.GreaterOrEqual(t, res.Score, 0.0, c.Name())
			assert.LessOrEqual(t, res.Score, 100.0, c.Name())
		}
	}
}
