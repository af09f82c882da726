package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investorcenter/icengine/internal/contracts"
	"github.com/investorcenter/icengine/pkg/logger"
)

// memEventRepo serves a fixed event list.
type memEventRepo struct {
	events []*contracts.ScoreEvent
}

func (m *memEventRepo) GetEventsSince(_ context.Context, ticker string, since, until time.Time) ([]*contracts.ScoreEvent, error) {
	var out []*contracts.ScoreEvent
	for _, e := range m.events {
		if e.Ticker == ticker && e.OccurredAt.After(since) && !e.OccurredAt.After(until) {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestStabilizer(events []*contracts.ScoreEvent) *Stabilizer {
	return NewStabilizer(&memEventRepo{events: events}, DefaultStabilizerOptions(), logger.NewNop())
}

func rawRecord(raw float64) *contracts.ScoreRecord {
	return &contracts.ScoreRecord{
		Ticker:       "TEST",
		CalculatedAt: time.Date(2026, 8, 28, 21, 0, 0, 0, time.UTC),
		RawScore:     raw,
		Confidence:   contracts.ConfidenceHigh,
	}
}

func prevRecord(score float64) *contracts.ScoreRecord {
	return &contracts.ScoreRecord{
		Ticker:       "TEST",
		CalculatedAt: time.Date(2026, 8, 27, 21, 0, 0, 0, time.UTC),
		OverallScore: &score,
	}
}

func TestStabilizerFirstScorePassesThrough(t *testing.T) {
	st := newTestStabilizer(nil)
	rec := rawRecord(73.4)

	require.NoError(t, st.Apply(context.Background(), rec, nil))
	require.NotNil(t, rec.OverallScore)
	assert.Equal(t, 73.4, *rec.OverallScore)
	assert.False(t, rec.SmoothingApplied)
	assert.Equal(t, contracts.RatingBuy, rec.Rating)
}

func TestStabilizerBlends(t *testing.T) {
	st := newTestStabilizer(nil)
	rec := rawRecord(70)

	require.NoError(t, st.Apply(context.Background(), rec, prevRecord(60)))
	require.NotNil(t, rec.OverallScore)
	// 0.7*70 + 0.3*60 = 67.0
	assert.Equal(t, 67.0, *rec.OverallScore)
	assert.True(t, rec.SmoothingApplied)
	require.NotNil(t, rec.PreviousScore)
	assert.Equal(t, 60.0, *rec.PreviousScore)
}

func TestStabilizerMinChangeFloor(t *testing.T) {
	st := newTestStabilizer(nil)
	rec := rawRecord(60.5)

	require.NoError(t, st.Apply(context.Background(), rec, prevRecord(60)))
	require.NotNil(t, rec.OverallScore)
	// Blend is 60.35, a 0.35 move, below the 0.5 floor: carry forward.
	assert.Equal(t, 60.0, *rec.OverallScore)
	assert.False(t, rec.SmoothingApplied)
}

func TestStabilizerRoundsToOneDecimal(t *testing.T) {
	st := newTestStabilizer(nil)
	rec := rawRecord(71.11)

	require.NoError(t, st.Apply(context.Background(), rec, prevRecord(55.5)))
	require.NotNil(t, rec.OverallScore)
	// 0.7*71.11 + 0.3*55.5 = 66.427 -> 66.4
	assert.Equal(t, 66.4, *rec.OverallScore)
}

func TestStabilizerEventReset(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 21, 0, 0, 0, time.UTC)
	st := newTestStabilizer([]*contracts.ScoreEvent{
		{Ticker: "TEST", Type: contracts.EventEarningsRelease, OccurredAt: asOf.Add(-2 * time.Hour)},
	})
	rec := rawRecord(80)

	require.NoError(t, st.Apply(context.Background(), rec, prevRecord(50)))
	require.NotNil(t, rec.OverallScore)
	// Earnings in the lookback window: raw passes through unsmoothed.
	assert.Equal(t, 80.0, *rec.OverallScore)
	assert.False(t, rec.SmoothingApplied)
	assert.Equal(t, []string{"earnings_release"}, rec.ResetEvents)
}

func TestStabilizerStaleEventDoesNotReset(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 21, 0, 0, 0, time.UTC)
	st := newTestStabilizer([]*contracts.ScoreEvent{
		{Ticker: "TEST", Type: contracts.EventEarningsRelease, OccurredAt: asOf.Add(-48 * time.Hour)},
	})
	rec := rawRecord(80)

	require.NoError(t, st.Apply(context.Background(), rec, prevRecord(50)))
	require.NotNil(t, rec.OverallScore)
	// 0.7*80 + 0.3*50 = 71.0
	assert.Equal(t, 71.0, *rec.OverallScore)
	assert.Empty(t, rec.ResetEvents)
}

func TestStabilizerSmallInsiderTradeDoesNotReset(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 21, 0, 0, 0, time.UTC)
	st := newTestStabilizer([]*contracts.ScoreEvent{
		{Ticker: "TEST", Type: contracts.EventInsiderTradeLarge, OccurredAt: asOf.Add(-time.Hour), ValueUSD: 40_000},
	})
	rec := rawRecord(80)

	require.NoError(t, st.Apply(context.Background(), rec, prevRecord(50)))
	assert.Equal(t, 71.0, *rec.OverallScore)
	assert.Empty(t, rec.ResetEvents)
}

func TestStabilizerInsufficientStaysNil(t *testing.T) {
	st := newTestStabilizer(nil)
	rec := rawRecord(70)
	rec.Confidence = contracts.ConfidenceInsufficient

	require.NoError(t, st.Apply(context.Background(), rec, prevRecord(60)))
	assert.Nil(t, rec.OverallScore)
	assert.Empty(t, rec.Rating)
}

func TestStabilizerPreviousWithoutScore(t *testing.T) {
	st := newTestStabilizer(nil)
	rec := rawRecord(70)
	prev := &contracts.ScoreRecord{Ticker: "TEST"} // insufficient yesterday

	require.NoError(t, st.Apply(context.Background(), rec, prev))
	require.NotNil(t, rec.OverallScore)
	assert.Equal(t, 70.0, *rec.OverallScore)
	assert.False(t, rec.SmoothingApplied)
}
