package contracts

import "time"

// Metric names tracked for sector distributions. Factor calculators look up
// sector percentiles under these keys, so the sector-stats job and the
// calculators must agree on them.
const (
	// Valuation (lower is better)
	MetricPERatio  = "pe_ratio"
	MetricPSRatio  = "ps_ratio"
	MetricPBRatio  = "pb_ratio"
	MetricEVEBITDA = "ev_ebitda"
	MetricPEGRatio = "peg_ratio"

	// Profitability
	MetricGrossMargin     = "gross_margin"
	MetricOperatingMargin = "operating_margin"
	MetricNetMargin       = "net_margin"
	MetricROE             = "roe"
	MetricROA             = "roa"
	MetricROIC            = "roic"

	// Growth
	MetricRevenueGrowthYoY = "revenue_growth_yoy"
	MetricEPSGrowthYoY     = "eps_growth_yoy"
	MetricFCFGrowthYoY     = "fcf_growth_yoy"

	// Financial health
	MetricDebtToEquity     = "debt_to_equity"
	MetricCurrentRatio     = "current_ratio"
	MetricQuickRatio       = "quick_ratio"
	MetricInterestCoverage = "interest_coverage"

	// Market
	MetricDividendYield = "dividend_yield"
)

// TrackedMetrics is the full set computed by the sector-stats job each day.
var TrackedMetrics = []string{
	MetricPERatio, MetricPSRatio, MetricPBRatio, MetricEVEBITDA, MetricPEGRatio,
	MetricGrossMargin, MetricOperatingMargin, MetricNetMargin,
	MetricROE, MetricROA, MetricROIC,
	MetricRevenueGrowthYoY, MetricEPSGrowthYoY, MetricFCFGrowthYoY,
	MetricDebtToEquity, MetricCurrentRatio, MetricQuickRatio, MetricInterestCoverage,
	MetricDividendYield,
}

// LowerIsBetter marks metrics whose percentile must be inverted by callers
// so that a higher score always means "better".
var LowerIsBetter = map[string]bool{
	MetricPERatio:      true,
	MetricPSRatio:      true,
	MetricPBRatio:      true,
	MetricEVEBITDA:     true,
	MetricPEGRatio:     true,
	MetricDebtToEquity: true,
}

// Fundamentals holds point-in-time fundamental metrics for one ticker.
// Nil means the metric was not available as of the snapshot date; it must
// never be read as zero.
type Fundamentals struct {
	// Valuation
	PERatio  *float64 `json:"pe_ratio"`
	PSRatio  *float64 `json:"ps_ratio"`
	PBRatio  *float64 `json:"pb_ratio"`
	EVEBITDA *float64 `json:"ev_ebitda"`
	PEGRatio *float64 `json:"peg_ratio"`

	// Profitability
	GrossMargin     *float64 `json:"gross_margin"`
	OperatingMargin *float64 `json:"operating_margin"`
	NetMargin       *float64 `json:"net_margin"`
	ROE             *float64 `json:"roe"`
	ROA             *float64 `json:"roa"`
	ROIC            *float64 `json:"roic"`

	// Growth (percent, year over year)
	RevenueGrowthYoY *float64 `json:"revenue_growth_yoy"`
	EPSGrowthYoY     *float64 `json:"eps_growth_yoy"`
	FCFGrowthYoY     *float64 `json:"fcf_growth_yoy"`

	// Financial health
	DebtToEquity     *float64 `json:"debt_to_equity"`
	CurrentRatio     *float64 `json:"current_ratio"`
	QuickRatio       *float64 `json:"quick_ratio"`
	InterestCoverage *float64 `json:"interest_coverage"`

	MarketCap *float64 `json:"market_cap"`
}

// Technicals holds price-derived metrics for one ticker.
type Technicals struct {
	Return1M  *float64 `json:"return_1m"`
	Return3M  *float64 `json:"return_3m"`
	Return6M  *float64 `json:"return_6m"`
	Return12M *float64 `json:"return_12m"`

	RSI           *float64 `json:"rsi"`
	MACDHistogram *float64 `json:"macd_histogram"`
	Price         *float64 `json:"price"`
	SMA50         *float64 `json:"sma_50"`
}

// RevisionData holds consensus EPS estimate revision metrics.
type RevisionData struct {
	ConsensusEPS   *float64 `json:"consensus_eps"`
	NumAnalysts    int      `json:"num_analysts"`
	Estimate30dAgo *float64 `json:"estimate_30d_ago"`
	Estimate60dAgo *float64 `json:"estimate_60d_ago"`
	Estimate90dAgo *float64 `json:"estimate_90d_ago"`
	Upgrades90d    int      `json:"upgrades_90d"`
	Downgrades90d  int      `json:"downgrades_90d"`
	RevisionPct30d *float64 `json:"revision_pct_30d"`
	RevisionPct90d *float64 `json:"revision_pct_90d"`
}

// OwnershipData holds insider and institutional activity.
type OwnershipData struct {
	InsiderNetBuyingUSD90d *float64 `json:"insider_net_buying_usd_90d"`
	InstitutionCount       int      `json:"institution_count"`
	InstitutionalShares    *float64 `json:"institutional_shares"`
	PrevQuarterShares      *float64 `json:"prev_quarter_shares"`
}

// SentimentData holds aggregated news sentiment over the trailing 30 days.
// AvgSentiment is already on a 0-100 scale from the upstream pipeline.
type SentimentData struct {
	ArticleCount  int      `json:"article_count"`
	AvgSentiment  *float64 `json:"avg_sentiment"`
	PositiveCount int      `json:"positive_count"`
	NegativeCount int      `json:"negative_count"`
}

// DividendData holds dividend history metrics.
type DividendData struct {
	AnnualDividend            *float64 `json:"annual_dividend"`
	DividendYield             *float64 `json:"dividend_yield"`
	PayoutRatio               *float64 `json:"payout_ratio"`
	DividendCAGR5Y            *float64 `json:"dividend_cagr_5y"`
	ConsecutiveYearsPaid      int      `json:"consecutive_years_paid"`
	ConsecutiveYearsIncreased int      `json:"consecutive_years_increased"`
}

// FairValueData holds externally computed fair-value estimates. The fair
// value models themselves are pluggable collaborators; the engine only
// blends their outputs against the current price.
type FairValueData struct {
	DCFFairValue       *float64 `json:"dcf_fair_value"`
	GrahamNumber       *float64 `json:"graham_number"`
	EarningsPowerValue *float64 `json:"earnings_power_value"`
	Price              *float64 `json:"price"`
}

// ValuationPoint is one monthly observation of the company's own valuation
// ratios, used by the historical-valuation factor.
type ValuationPoint struct {
	Date    time.Time `json:"date"`
	PERatio *float64  `json:"pe_ratio"`
	PSRatio *float64  `json:"ps_ratio"`
}

// MetricSnapshot is everything the factor calculators need for one ticker,
// as of a single date. Sections are nil when the corresponding repository
// query failed or returned nothing; calculators degrade per the
// redistribution policy.
type MetricSnapshot struct {
	Ticker string    `json:"ticker"`
	Sector string    `json:"sector"`
	AsOf   time.Time `json:"as_of"`

	Fundamentals     *Fundamentals    `json:"fundamentals"`
	Technicals       *Technicals      `json:"technicals"`
	Revisions        *RevisionData    `json:"revisions"`
	Ownership        *OwnershipData   `json:"ownership"`
	Sentiment        *SentimentData   `json:"sentiment"`
	Dividends        *DividendData    `json:"dividends"`
	FairValue        *FairValueData   `json:"fair_value"`
	ValuationHistory []ValuationPoint `json:"valuation_history"`
}

// Float returns a pointer to v. Convenience for building snapshots.
func Float(v float64) *float64 {
	return &v
}
