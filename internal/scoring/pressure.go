package scoring

import (
	"sort"
)

// Pressure tiers, lowest to highest.
const (
	PressureLow      = "low"
	PressureMedium   = "medium"
	PressureHigh     = "high"
	PressureCritical = "critical"
)

// PressureInput carries one fishing area's windowed catch summary.
type PressureInput struct {
	Area              string
	CatchCount        int
	TotalVolume       float64
	AvgSustainability Optional
}

// PressureScore is the classified fishing pressure of one area, with the
// per-factor contributions that produced it.
type PressureScore struct {
	Area              string   `json:"area"`
	Score             float64  `json:"score"`
	Tier              string   `json:"tier"`
	Frequency         float64  `json:"frequency"`
	Volume            float64  `json:"volume"`
	Sustainability    float64  `json:"sustainability"`
	CatchCount        int      `json:"catch_count"`
	TotalVolume       float64  `json:"total_volume"`
	AvgSustainability Optional `json:"avg_sustainability"`
}

// ScorePressure buckets an area's catch frequency, total volume, and
// sustainability shortfall into additive contributions. The sustainability
// factor is inverse (lower assessed sustainability means more pressure) and
// contributes nothing when no event in the window was assessed.
func (e *Engine) ScorePressure(in PressureInput) PressureScore {
	out := PressureScore{
		Area:              in.Area,
		CatchCount:        in.CatchCount,
		TotalVolume:       in.TotalVolume,
		AvgSustainability: in.AvgSustainability,
	}

	switch {
	case in.CatchCount > 50:
		out.Frequency = 30
	case in.CatchCount > 25:
		out.Frequency = 20
	case in.CatchCount > 10:
		out.Frequency = 10
	}

	switch {
	case in.TotalVolume > 1000:
		out.Volume = 40
	case in.TotalVolume > 500:
		out.Volume = 25
	case in.TotalVolume > 100:
		out.Volume = 15
	}

	if in.AvgSustainability.Valid {
		switch {
		case in.AvgSustainability.Value < 30:
			out.Sustainability = 30
		case in.AvgSustainability.Value < 50:
			out.Sustainability = 20
		case in.AvgSustainability.Value < 70:
			out.Sustainability = 10
		}
	}

	out.Score = out.Frequency + out.Volume + out.Sustainability
	out.Tier = pressureTier(out.Score)
	return out
}

// RankPressure scores every area and orders them by descending pressure.
// Ties break alphabetically so the ranking is deterministic.
func (e *Engine) RankPressure(inputs []PressureInput) []PressureScore {
	scores := make([]PressureScore, 0, len(inputs))
	for _, in := range inputs {
		scores = append(scores, e.ScorePressure(in))
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Area < scores[j].Area
	})
	return scores
}

func pressureTier(score float64) string {
	switch {
	case score >= 80:
		return PressureCritical
	case score >= 60:
		return PressureHigh
	case score >= 40:
		return PressureMedium
	default:
		return PressureLow
	}
}
