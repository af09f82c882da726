package scoring

import (
	"fmt"
	"sort"

	"github.com/investorcenter/icengine/internal/contracts"
)

// changeReasonThreshold is the minimum factor-score move worth mentioning.
const changeReasonThreshold = 5.0

// maxChangeReasons caps the explanation to the biggest movers.
const maxChangeReasons = 3

// ExplainChange fills record.ChangeReasons with the factor moves that drove
// the score change since the previous record. Factors that appeared or
// disappeared are called out as coverage changes.
func ExplainChange(record, previous *contracts.ScoreRecord) {
	if previous == nil {
		return
	}

	prevFactors := make(map[string]contracts.FactorResult, len(previous.Factors))
	for _, f := range previous.Factors {
		prevFactors[f.Name] = f
	}

	type mover struct {
		reason string
		delta  float64
	}
	var movers []mover

	for _, f := range record.Factors {
		p, had := prevFactors[f.Name]
		switch {
		case f.Available && (!had || !p.Available):
			movers = append(movers, mover{
				reason: fmt.Sprintf("%s data became available", f.Name),
				delta:  changeReasonThreshold,
			})
		case !f.Available && had && p.Available:
			movers = append(movers, mover{
				reason: fmt.Sprintf("%s data became unavailable", f.Name),
				delta:  changeReasonThreshold,
			})
		case f.Available && p.Available:
			d := f.Score - p.Score
			if abs(d) >= changeReasonThreshold {
				dir := "improved"
				if d < 0 {
					dir = "declined"
				}
				movers = append(movers, mover{
					reason: fmt.Sprintf("%s %s %.1f points", f.Name, dir, abs(d)),
					delta:  abs(d),
				})
			}
		}
	}

	if record.Stage != previous.Stage {
		movers = append(movers, mover{
			reason: fmt.Sprintf("lifecycle stage changed from %s to %s", previous.Stage, record.Stage),
			delta:  changeReasonThreshold,
		})
	}

	sort.SliceStable(movers, func(i, j int) bool { return movers[i].delta > movers[j].delta })
	if len(movers) > maxChangeReasons {
		movers = movers[:maxChangeReasons]
	}
	for _, m := range movers {
		record.ChangeReasons = append(record.ChangeReasons, m.reason)
	}
}
