package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/investorcenter/icengine/internal/contracts"
	"github.com/investorcenter/icengine/pkg/logger"
)

// StabilizerOptions controls temporal smoothing.
type StabilizerOptions struct {
	// Alpha is the weight on the new raw score in the exponential blend.
	Alpha float64

	// MinChangeFloor suppresses moves smaller than this many points; the
	// previous score carries forward unchanged.
	MinChangeFloor float64

	// EventLookback is how far back to search for reset events.
	EventLookback time.Duration

	// MinInsiderUSD is the size floor for insider trades to count as a
	// reset event.
	MinInsiderUSD float64
}

// DefaultStabilizerOptions matches production configuration.
func DefaultStabilizerOptions() StabilizerOptions {
	return StabilizerOptions{
		Alpha:          0.7,
		MinChangeFloor: 0.5,
		EventLookback:  24 * time.Hour,
		MinInsiderUSD:  100_000,
	}
}

// Stabilizer applies exponential smoothing to raw scores so that day-to-day
// noise does not flap ratings, while material events bypass smoothing and
// let the new score land immediately.
type Stabilizer struct {
	events contracts.EventRepository
	opts   StabilizerOptions
	log    *logger.Logger
}

func NewStabilizer(events contracts.EventRepository, opts StabilizerOptions, log *logger.Logger) *Stabilizer {
	return &Stabilizer{events: events, opts: opts, log: log}
}

// Apply fills record.OverallScore from its RawScore and the previous
// displayable score. Records below the confidence floor stay nil and are
// never smoothed.
//
// The state machine, in order:
//  1. Insufficient confidence: no score, smoothing state untouched.
//  2. No usable previous score: raw score passes through.
//  3. Reset event in the lookback window: raw score passes through.
//  4. Blend alpha*raw + (1-alpha)*previous; if the move is smaller than
//     the floor, the previous score carries forward.
func (st *Stabilizer) Apply(ctx context.Context, record *contracts.ScoreRecord, previous *contracts.ScoreRecord) error {
	if record.Confidence == contracts.ConfidenceInsufficient {
		return nil
	}

	if previous == nil || previous.OverallScore == nil {
		score := round1(record.RawScore)
		record.OverallScore = &score
		record.Rating = contracts.RatingFor(score)
		return nil
	}

	prev := *previous.OverallScore
	record.PreviousScore = &prev

	resets, err := st.resetEvents(ctx, record.Ticker, record.CalculatedAt)
	if err != nil {
		return fmt.Errorf("load events for %s: %w", record.Ticker, err)
	}
	if len(resets) > 0 {
		score := round1(record.RawScore)
		record.OverallScore = &score
		record.Rating = contracts.RatingFor(score)
		record.ResetEvents = resets
		st.log.WithFields(map[string]interface{}{
			"ticker": record.Ticker,
			"events": resets,
			"score":  score,
		}).Debug("smoothing reset by event")
		return nil
	}

	smoothed := st.opts.Alpha*record.RawScore + (1-st.opts.Alpha)*prev
	if abs(smoothed-prev) < st.opts.MinChangeFloor {
		score := round1(prev)
		record.OverallScore = &score
		record.Rating = contracts.RatingFor(score)
		return nil
	}

	score := round1(smoothed)
	record.OverallScore = &score
	record.Rating = contracts.RatingFor(score)
	record.SmoothingApplied = true
	return nil
}

func (st *Stabilizer) resetEvents(ctx context.Context, ticker string, asOf time.Time) ([]string, error) {
	since := asOf.Add(-st.opts.EventLookback)
	events, err := st.events.GetEventsSince(ctx, ticker, since, asOf)
	if err != nil {
		return nil, err
	}
	var resets []string
	for _, e := range events {
		if e.IsReset(st.opts.MinInsiderUSD) {
			resets = append(resets, string(e.Type))
		}
	}
	return resets, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
