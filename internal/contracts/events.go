package contracts

import "time"

// EventType identifies a market event that can reset temporal smoothing.
type EventType string

const (
	EventEarningsRelease      EventType = "earnings_release"
	EventAnalystRatingChange  EventType = "analyst_rating_change"
	EventInsiderTradeLarge    EventType = "insider_trade_large"
	EventDividendAnnouncement EventType = "dividend_announcement"
	EventAcquisitionNews      EventType = "acquisition_news"
	EventGuidanceUpdate       EventType = "guidance_update"
)

// ResetEventTypes is the set of events that bypass smoothing entirely,
// letting the new raw score take effect immediately.
var ResetEventTypes = map[EventType]bool{
	EventEarningsRelease:      true,
	EventAnalystRatingChange:  true,
	EventInsiderTradeLarge:    true,
	EventDividendAnnouncement: true,
	EventAcquisitionNews:      true,
	EventGuidanceUpdate:       true,
}

// ScoreEvent is one corporate or market event attached to a ticker.
type ScoreEvent struct {
	Ticker     string    `json:"ticker"`
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`

	// ValueUSD carries the transaction size for insider trades; zero for
	// event types where size is not meaningful.
	ValueUSD float64 `json:"value_usd,omitempty"`

	Detail string `json:"detail,omitempty"`
}

// IsReset reports whether the event should reset smoothing, applying the
// minimum size threshold for insider trades.
func (e *ScoreEvent) IsReset(minInsiderUSD float64) bool {
	if !ResetEventTypes[e.Type] {
		return false
	}
	if e.Type == EventInsiderTradeLarge && e.ValueUSD < minInsiderUSD {
		return false
	}
	return true
}
