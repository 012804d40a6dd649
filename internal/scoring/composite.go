package scoring

import (
	"math"
)

// Params holds the tunable weights and caps of the composite health score.
type Params struct {
	ThreatWeight       float64
	ThreatCap          float64
	BiodiversityWeight float64
	BiodiversityCap    float64
	AlertCap           float64
	TrendBand          float64
}

// DefaultParams returns the production defaults.
func DefaultParams() Params {
	return Params{
		ThreatWeight:       0.8,
		ThreatCap:          40,
		BiodiversityWeight: 0.3,
		BiodiversityCap:    30,
		AlertCap:           30,
		TrendBand:          10,
	}
}

// CompositeInput carries the features the health score is computed from.
type CompositeInput struct {
	TotalSpecies      int      `json:"total_species"`
	ThreatenedSpecies int      `json:"threatened_species"`
	Biodiversity      Optional `json:"biodiversity"`
	CriticalAlerts    int      `json:"critical_alerts"`
	HighAlerts        int      `json:"high_alerts"`
	MediumAlerts      int      `json:"medium_alerts"`
}

// ThreatenedPct returns the percentage of catalogued species that are
// threatened, zero when the catalog is empty.
func (in CompositeInput) ThreatenedPct() float64 {
	if in.TotalSpecies == 0 {
		return 0
	}
	return float64(in.ThreatenedSpecies) / float64(in.TotalSpecies) * 100
}

// Deductions breaks a composite score down by what was subtracted from the
// perfect 100.
type Deductions struct {
	Threat       float64 `json:"threat"`
	Biodiversity float64 `json:"biodiversity"`
	AlertLoad    float64 `json:"alert_load"`
}

// Engine computes the composite health score and its companion calculators.
type Engine struct {
	params Params
}

// NewEngine builds a scoring engine with the given parameters.
func NewEngine(params Params) *Engine {
	return &Engine{params: params}
}

// CompositeScore starts from 100 and subtracts three independently capped
// deductions: threatened-species pressure, biodiversity shortfall, and
// active alert load. The biodiversity deduction is skipped entirely when no
// assessment data is available, so missing surveys never read as perfect
// ecosystems or broken ones. The result is clamped to [0, 100] and rounded
// to two decimals.
func (e *Engine) CompositeScore(in CompositeInput) (float64, Deductions) {
	var d Deductions

	d.Threat = math.Min(in.ThreatenedPct()*e.params.ThreatWeight, e.params.ThreatCap)

	if in.Biodiversity.Valid {
		d.Biodiversity = math.Min((100-in.Biodiversity.Value)*e.params.BiodiversityWeight, e.params.BiodiversityCap)
	}

	alertLoad := float64(5*in.CriticalAlerts + 3*in.HighAlerts + 1*in.MediumAlerts)
	d.AlertLoad = math.Min(alertLoad, e.params.AlertCap)

	d.Threat = round2(d.Threat)
	d.Biodiversity = round2(d.Biodiversity)
	d.AlertLoad = round2(d.AlertLoad)

	score := clamp(100-d.Threat-d.Biodiversity-d.AlertLoad, 0, 100)
	return round2(score), d
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
