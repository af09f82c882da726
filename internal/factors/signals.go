package factors

import "github.com/investorcenter/icengine/internal/contracts"

// MomentumCalculator scores trailing returns across four horizons on an
// absolute scale. Longer horizons carry more weight and get a wider band
// before saturating.
type MomentumCalculator struct{}

func (c *MomentumCalculator) Name() string                       { return contracts.FactorMomentum }
func (c *MomentumCalculator) Category() contracts.FactorCategory { return contracts.CategorySignals }

func (c *MomentumCalculator) Calculate(s *contracts.MetricSnapshot, stats *contracts.SectorStatSet) contracts.FactorResult {
	t := s.Technicals
	if t == nil {
		return unavailable(c.Name())
	}
	return combine(c.Name(), []part{
		scaledPart("return_1m", 0.15, t.Return1M, -10, 0, 10),
		scaledPart("return_3m", 0.25, t.Return3M, -20, 0, 20),
		scaledPart("return_6m", 0.30, t.Return6M, -30, 0, 30),
		scaledPart("return_12m", 0.30, t.Return12M, -40, 0, 40),
	})
}

// TechnicalCalculator scores near-term technical posture from RSI, the
// price's distance to its 50-day average and the MACD histogram sign.
type TechnicalCalculator struct{}

func (c *TechnicalCalculator) Name() string                       { return contracts.FactorTechnical }
func (c *TechnicalCalculator) Category() contracts.FactorCategory { return contracts.CategorySignals }

func (c *TechnicalCalculator) Calculate(s *contracts.MetricSnapshot, stats *contracts.SectorStatSet) contracts.FactorResult {
	t := s.Technicals
	if t == nil {
		return unavailable(c.Name())
	}

	parts := make([]part, 0, 3)

	// RSI: healthy trend zone 45-65 scores best, overbought and oversold
	// extremes fall off toward zero.
	rsi := part{name: "rsi", weight: 0.40}
	if t.RSI != nil {
		rsi.ok = true
		rsi.raw = *t.RSI
		rsi.score = triangular(*t.RSI, 10, 45, 65, 90)
		rsi.pct = rsi.score
	}
	parts = append(parts, rsi)

	// Price vs 50-day average: +/-10% from the average saturates.
	trend := part{name: "price_vs_sma50", weight: 0.40}
	if t.Price != nil && t.SMA50 != nil && *t.SMA50 > 0 {
		dist := (*t.Price - *t.SMA50) / *t.SMA50 * 100
		trend.ok = true
		trend.raw = dist
		trend.score = scaleAround(dist, -10, 0, 10)
		trend.pct = trend.score
	}
	parts = append(parts, trend)

	macd := part{name: "macd_histogram", weight: 0.20}
	if t.MACDHistogram != nil {
		macd.ok = true
		macd.raw = *t.MACDHistogram
		if *t.MACDHistogram > 0 {
			macd.score = 75
		} else if *t.MACDHistogram < 0 {
			macd.score = 25
		} else {
			macd.score = 50
		}
		macd.pct = macd.score
	}
	parts = append(parts, macd)

	return combine(c.Name(), parts)
}

// SmartMoneyCalculator scores insider and institutional positioning.
type SmartMoneyCalculator struct{}

func (c *SmartMoneyCalculator) Name() string                       { return contracts.FactorSmartMoney }
func (c *SmartMoneyCalculator) Category() contracts.FactorCategory { return contracts.CategorySignals }

func (c *SmartMoneyCalculator) Calculate(s *contracts.MetricSnapshot, stats *contracts.SectorStatSet) contracts.FactorResult {
	o := s.Ownership
	if o == nil {
		return unavailable(c.Name())
	}

	parts := make([]part, 0, 2)

	// Net insider buying over 90 days, $1M saturates either way.
	insider := part{name: "insider_net_buying", weight: 0.50}
	if o.InsiderNetBuyingUSD90d != nil {
		insider.ok = true
		insider.raw = *o.InsiderNetBuyingUSD90d
		insider.score = scaleAround(*o.InsiderNetBuyingUSD90d, -1_000_000, 0, 1_000_000)
		insider.pct = insider.score
	}
	parts = append(parts, insider)

	// Quarter-over-quarter change in institutional holdings, +/-10%
	// saturates.
	inst := part{name: "institutional_change", weight: 0.50}
	if o.InstitutionalShares != nil && o.PrevQuarterShares != nil && *o.PrevQuarterShares > 0 {
		change := (*o.InstitutionalShares - *o.PrevQuarterShares) / *o.PrevQuarterShares * 100
		inst.ok = true
		inst.raw = change
		inst.score = scaleAround(change, -10, 0, 10)
		inst.pct = inst.score
	}
	parts = append(parts, inst)

	return combine(c.Name(), parts)
}

// EarningsRevisionsCalculator scores analyst estimate momentum along three
// dimensions: how far estimates moved, how many analysts moved, and how
// recent the movement was.
type EarningsRevisionsCalculator struct{}

func (c *EarningsRevisionsCalculator) Name() string { return contracts.FactorEarningsRevisions }
func (c *EarningsRevisionsCalculator) Category() contracts.FactorCategory {
	return contracts.CategorySignals
}

func (c *EarningsRevisionsCalculator) Calculate(s *contracts.MetricSnapshot, stats *contracts.SectorStatSet) contracts.FactorResult {
	r := s.Revisions
	if r == nil || r.NumAnalysts == 0 {
		return unavailable(c.Name())
	}

	parts := make([]part, 0, 3)

	// Magnitude: 90-day estimate change, -15% -> 0, +15% -> 100.
	parts = append(parts, scaledPart("revision_magnitude", 0.50, r.RevisionPct90d, -15, 0, 15))

	// Breadth: upgrade/downgrade balance among covering analysts.
	breadth := part{name: "revision_breadth", weight: 0.30}
	if r.Upgrades90d+r.Downgrades90d > 0 {
		net := float64(r.Upgrades90d-r.Downgrades90d) / float64(r.Upgrades90d+r.Downgrades90d)
		breadth.ok = true
		breadth.raw = net
		breadth.score = 50 + net*50
		breadth.pct = breadth.score
	}
	parts = append(parts, breadth)

	// Recency: 30-day trend against the 90-day trend. Estimates moving
	// faster in the last month than over the quarter score above 50,
	// fading momentum scores below. +/-10% of acceleration saturates.
	recency := part{name: "revision_recency", weight: 0.20}
	if r.RevisionPct30d != nil || r.RevisionPct90d != nil {
		var r30, r90 float64
		if r.RevisionPct30d != nil {
			r30 = *r.RevisionPct30d
		}
		if r.RevisionPct90d != nil {
			r90 = *r.RevisionPct90d
		}
		accel := r30 - r90
		recency.ok = true
		recency.raw = accel
		recency.score = scaleAround(accel, -10, 0, 10)
		recency.pct = recency.score
	}
	parts = append(parts, recency)

	return combine(c.Name(), parts)
}

// SentimentCalculator scores aggregated news sentiment. Too few articles
// means no signal; the factor goes unavailable rather than guessing.
type SentimentCalculator struct{}

const minSentimentArticles = 3

func (c *SentimentCalculator) Name() string                       { return contracts.FactorSentiment }
func (c *SentimentCalculator) Category() contracts.FactorCategory { return contracts.CategorySignals }

func (c *SentimentCalculator) Calculate(s *contracts.MetricSnapshot, stats *contracts.SectorStatSet) contracts.FactorResult {
	sd := s.Sentiment
	if sd == nil || sd.ArticleCount < minSentimentArticles {
		return unavailable(c.Name())
	}

	parts := make([]part, 0, 2)

	// Upstream sentiment is already 0-100.
	avg := part{name: "avg_sentiment", weight: 0.70}
	if sd.AvgSentiment != nil {
		avg.ok = true
		avg.raw = *sd.AvgSentiment
		avg.score = clamp(*sd.AvgSentiment, 0, 100)
		avg.pct = avg.score
	}
	parts = append(parts, avg)

	breadth := part{name: "article_breadth", weight: 0.30}
	if sd.PositiveCount+sd.NegativeCount > 0 {
		net := float64(sd.PositiveCount-sd.NegativeCount) / float64(sd.PositiveCount+sd.NegativeCount)
		breadth.ok = true
		breadth.raw = net
		breadth.score = 50 + net*50
		breadth.pct = breadth.score
	}
	parts = append(parts, breadth)

	return combine(c.Name(), parts)
}
