package scoring

import "math"

// Trend directions. The metrics tracked here are pressure indicators, so a
// rise beyond the band reads as a declining environment and a drop as an
// improving one.
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// Trend is the outcome of comparing a metric across two periods. ChangePct
// is the magnitude of the change; the sign lives in Direction.
type Trend struct {
	Direction string  `json:"direction"`
	ChangePct float64 `json:"change_pct"`
}

// AnalyzeTrend compares current against previous and classifies the percent
// change against the stability band. A zero previous period yields a stable
// trend with zero change rather than a division blowup; a fresh region with
// no history is not deteriorating, it is unknown, and stable is the neutral
// reading.
func (e *Engine) AnalyzeTrend(current, previous float64) Trend {
	if previous == 0 {
		return Trend{Direction: TrendStable, ChangePct: 0}
	}

	change := round2((current - previous) / previous * 100)
	magnitude := math.Abs(change)

	switch {
	case change > e.params.TrendBand:
		return Trend{Direction: TrendDeclining, ChangePct: magnitude}
	case change < -e.params.TrendBand:
		return Trend{Direction: TrendImproving, ChangePct: magnitude}
	default:
		return Trend{Direction: TrendStable, ChangePct: magnitude}
	}
}
