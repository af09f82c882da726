package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investorcenter/icengine/internal/contracts"
	"github.com/investorcenter/icengine/internal/factors"
)

// stubCalc is a calculator returning a fixed result, for exercising the
// aggregator without real metric plumbing.
type stubCalc struct {
	name      string
	score     float64
	available bool
}

func (c *stubCalc) Name() string                       { return c.name }
func (c *stubCalc) Category() contracts.FactorCategory { return contracts.FactorCategories[c.name] }
func (c *stubCalc) Calculate(*contracts.MetricSnapshot, *contracts.SectorStatSet) contracts.FactorResult {
	return contracts.FactorResult{
		Name:      c.name,
		Category:  c.Category(),
		Score:     c.score,
		Available: c.available,
	}
}

// allFactorNames in the order the real registry runs them.
var allFactorNames = []string{
	contracts.FactorGrowth, contracts.FactorProfitability,
	contracts.FactorFinancialHealth, contracts.FactorDividendQuality,
	contracts.FactorValue, contracts.FactorIntrinsicValue,
	contracts.FactorHistoricalValue, contracts.FactorMomentum,
	contracts.FactorTechnical, contracts.FactorSmartMoney,
	contracts.FactorEarningsRevisions, contracts.FactorSentiment,
}

func stubs(score float64, unavailable ...string) []factors.Calculator {
	missing := make(map[string]bool)
	for _, n := range unavailable {
		missing[n] = true
	}
	var calcs []factors.Calculator
	for _, n := range allFactorNames {
		calcs = append(calcs, &stubCalc{name: n, score: score, available: !missing[n]})
	}
	return calcs
}

func matureSnapshot() *contracts.MetricSnapshot {
	pe, margin, growth := 18.0, 12.0, 8.0
	return &contracts.MetricSnapshot{
		Ticker: "TEST", Sector: "Technology",
		Fundamentals: &contracts.Fundamentals{
			PERatio: &pe, NetMargin: &margin, RevenueGrowthYoY: &growth,
		},
	}
}

func TestAggregateAllAvailable(t *testing.T) {
	agg := NewAggregator(stubs(72), DefaultAggregatorOptions())
	rec := agg.Aggregate(matureSnapshot(), nil, time.Now())

	assert.Equal(t, contracts.StageMature, rec.Stage)
	assert.InDelta(t, 0.8, rec.StageConfidence, 1e-9)
	assert.InDelta(t, 72.0, rec.RawScore, 1e-9)
	assert.InDelta(t, 100.0, rec.Completeness, 1e-9)
	assert.Equal(t, contracts.ConfidenceHigh, rec.Confidence)
	assert.Len(t, rec.Factors, 12)

	// Renormalized weights across available factors sum to 1.
	var sum float64
	for _, f := range rec.Factors {
		sum += f.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	// All factors scored the same, so every category score matches.
	assert.InDelta(t, 72.0, rec.CategoryScores[contracts.CategoryQuality], 1e-9)
	assert.InDelta(t, 72.0, rec.CategoryScores[contracts.CategoryValuation], 1e-9)
	assert.InDelta(t, 72.0, rec.CategoryScores[contracts.CategorySignals], 1e-9)
}

func TestAggregateRedistributesWeight(t *testing.T) {
	// Sentiment missing: remaining factors renormalize and the score is
	// unchanged when all available factors agree.
	agg := NewAggregator(stubs(60, contracts.FactorSentiment), DefaultAggregatorOptions())
	rec := agg.Aggregate(matureSnapshot(), nil, time.Now())

	assert.InDelta(t, 60.0, rec.RawScore, 1e-9)
	assert.Less(t, rec.Completeness, 100.0)
	assert.Greater(t, rec.Completeness, 90.0)
	assert.Equal(t, contracts.ConfidenceHigh, rec.Confidence)
}

func TestCompletenessCountsFactors(t *testing.T) {
	// Completeness is a factor count, not covered weight: losing the
	// heavyweight value factor still leaves 11/12 = 91.7%, which clears
	// the high tier.
	agg := NewAggregator(stubs(60, contracts.FactorValue), DefaultAggregatorOptions())
	rec := agg.Aggregate(matureSnapshot(), nil, time.Now())
	assert.InDelta(t, 91.7, rec.Completeness, 1e-9)
	assert.Equal(t, contracts.ConfidenceHigh, rec.Confidence)
}

func TestRefreshRecomputesPriceFactorsOnly(t *testing.T) {
	prev := NewAggregator(stubs(60), DefaultAggregatorOptions()).
		Aggregate(matureSnapshot(), nil, time.Now().Add(-6*time.Hour))

	// Every calculator now returns 90; only momentum and technical may
	// pick that up, the rest carry the morning's 60.
	agg := NewAggregator(stubs(90), DefaultAggregatorOptions())
	rec := agg.Refresh(matureSnapshot(), nil, prev, time.Now())

	byName := make(map[string]contracts.FactorResult)
	for _, f := range rec.Factors {
		byName[f.Name] = f
	}
	assert.InDelta(t, 90.0, byName[contracts.FactorMomentum].Score, 1e-9)
	assert.InDelta(t, 90.0, byName[contracts.FactorTechnical].Score, 1e-9)
	assert.InDelta(t, 60.0, byName[contracts.FactorGrowth].Score, 1e-9)
	assert.InDelta(t, 60.0, byName[contracts.FactorValue].Score, 1e-9)
	assert.InDelta(t, 60.0, byName[contracts.FactorSentiment].Score, 1e-9)

	// Mature base weights put .10 on momentum and .09 on technical.
	assert.InDelta(t, 60*0.81+90*0.19, rec.RawScore, 0.05)

	// Stage and weights ride along from the morning record.
	assert.Equal(t, prev.Stage, rec.Stage)
	assert.InDelta(t, prev.StageConfidence, rec.StageConfidence, 1e-9)
	assert.Equal(t, prev.WeightsUsed, rec.WeightsUsed)
	assert.Equal(t, contracts.ConfidenceHigh, rec.Confidence)
}

func TestRefreshKeepsCarriedGapsUnavailable(t *testing.T) {
	prev := NewAggregator(stubs(60, contracts.FactorSentiment), DefaultAggregatorOptions()).
		Aggregate(matureSnapshot(), nil, time.Now().Add(-6*time.Hour))

	agg := NewAggregator(stubs(90), DefaultAggregatorOptions())
	rec := agg.Refresh(matureSnapshot(), nil, prev, time.Now())

	for _, f := range rec.Factors {
		if f.Name == contracts.FactorSentiment {
			assert.False(t, f.Available)
			assert.Zero(t, f.Weight)
		}
	}
	assert.InDelta(t, 91.7, rec.Completeness, 1e-9)
}

func TestConfidenceHardFloorQuality(t *testing.T) {
	// Only two of four quality factors available: insufficient no matter
	// how complete the rest is.
	agg := NewAggregator(
		stubs(60, contracts.FactorGrowth, contracts.FactorProfitability),
		DefaultAggregatorOptions(),
	)
	rec := agg.Aggregate(matureSnapshot(), nil, time.Now())
	assert.Equal(t, contracts.ConfidenceInsufficient, rec.Confidence)
}

func TestConfidenceHardFloorValuation(t *testing.T) {
	// Both core valuation factors missing: insufficient. Historical value
	// being a signal does not rescue it.
	agg := NewAggregator(
		stubs(60, contracts.FactorValue, contracts.FactorIntrinsicValue),
		DefaultAggregatorOptions(),
	)
	rec := agg.Aggregate(matureSnapshot(), nil, time.Now())
	assert.Equal(t, contracts.ConfidenceInsufficient, rec.Confidence)

	// One of two core valuation factors satisfies the floor.
	agg = NewAggregator(stubs(60, contracts.FactorValue), DefaultAggregatorOptions())
	rec = agg.Aggregate(matureSnapshot(), nil, time.Now())
	assert.NotEqual(t, contracts.ConfidenceInsufficient, rec.Confidence)
}

func TestConfidenceTiers(t *testing.T) {
	// Drop three signal factors to land at 9/12 = 75% while keeping the
	// hard floor satisfied.
	agg := NewAggregator(
		stubs(60, contracts.FactorMomentum, contracts.FactorTechnical, contracts.FactorSmartMoney),
		DefaultAggregatorOptions(),
	)
	rec := agg.Aggregate(matureSnapshot(), nil, time.Now())
	require.Less(t, rec.Completeness, 90.0)
	require.GreaterOrEqual(t, rec.Completeness, 70.0)
	assert.Equal(t, contracts.ConfidenceMedium, rec.Confidence)
}

func TestAggregateNothingAvailable(t *testing.T) {
	agg := NewAggregator(stubs(60, allFactorNames...), DefaultAggregatorOptions())
	rec := agg.Aggregate(matureSnapshot(), nil, time.Now())
	assert.Equal(t, contracts.ConfidenceInsufficient, rec.Confidence)
	assert.Zero(t, rec.Completeness)
	assert.Zero(t, rec.RawScore)
	assert.Nil(t, rec.OverallScore)
}

func TestAggregateWeightedMix(t *testing.T) {
	// Distinct scores verify the weighting actually applies. Quality
	// factors score 80, everything else 40, mature stage base weights:
	// quality weight is .12+.11+.09+.03 = .35.
	var calcs []factors.Calculator
	for _, n := range allFactorNames {
		score := 40.0
		if contracts.FactorCategories[n] == contracts.CategoryQuality {
			score = 80.0
		}
		calcs = append(calcs, &stubCalc{name: n, score: score, available: true})
	}
	agg := NewAggregator(calcs, DefaultAggregatorOptions())
	rec := agg.Aggregate(matureSnapshot(), nil, time.Now())

	want := 80*0.35 + 40*0.65
	assert.InDelta(t, want, rec.RawScore, 0.05)
	assert.InDelta(t, 80.0, rec.CategoryScores[contracts.CategoryQuality], 1e-9)
	assert.InDelta(t, 40.0, rec.CategoryScores[contracts.CategorySignals], 1e-9)
}
