package scoring

import (
	"github.com/marine-watch/backend/internal/db/models"
)

// Optional is a float feature that may be absent. Absent features are
// skipped by the calculators rather than treated as zero.
type Optional struct {
	Value float64
	Valid bool
}

// Some wraps a present value.
func Some(v float64) Optional {
	return Optional{Value: v, Valid: true}
}

// None is the absent value.
func None() Optional {
	return Optional{}
}

// OceanSummary aggregates monitoring-station readings over a window.
// Averages are computed only over readings that carry the field; a summary
// over an empty window has Count zero and every average absent.
type OceanSummary struct {
	Count          int      `json:"count"`
	AvgTemperature Optional `json:"avg_temperature"`
	AvgSalinity    Optional `json:"avg_salinity"`
	AvgPH          Optional `json:"avg_ph"`
	AvgOxygen      Optional `json:"avg_oxygen"`
}

// SummarizeOcean averages the measurements that fall inside w.
func SummarizeOcean(measurements []models.OceanMeasurement, w Window) OceanSummary {
	var out OceanSummary
	var tempSum float64
	sal := &meanAcc{}
	ph := &meanAcc{}
	oxy := &meanAcc{}

	for i := range measurements {
		m := &measurements[i]
		if !w.Contains(m.RecordedAt) {
			continue
		}
		out.Count++
		tempSum += m.Temperature
		sal.addPtr(m.Salinity)
		ph.addPtr(m.PHLevel)
		oxy.addPtr(m.OxygenLevel)
	}

	if out.Count > 0 {
		out.AvgTemperature = Some(round2(tempSum / float64(out.Count)))
	}
	out.AvgSalinity = sal.mean()
	out.AvgPH = ph.mean()
	out.AvgOxygen = oxy.mean()
	return out
}

// CatchSummary aggregates catch events over a window for one fishing area
// or globally.
type CatchSummary struct {
	Events            int      `json:"events"`
	TotalVolume       float64  `json:"total_volume"`
	AvgQuota          Optional `json:"avg_quota"`
	AvgSustainability Optional `json:"avg_sustainability"`
}

// SummarizeCatches totals the events that fall inside w. The quota and
// sustainability averages skip events without the field and are absent when
// none of the windowed events carry it.
func SummarizeCatches(events []models.CatchEvent, w Window) CatchSummary {
	var out CatchSummary
	quota := &meanAcc{}
	sus := &meanAcc{}

	for i := range events {
		e := &events[i]
		if !w.Contains(e.CaughtAt) {
			continue
		}
		out.Events++
		out.TotalVolume += e.CatchAmount
		quota.addPtr(e.QuotaLimit)
		sus.addPtr(e.SustainabilityScore)
	}

	out.TotalVolume = round2(out.TotalVolume)
	out.AvgQuota = quota.mean()
	out.AvgSustainability = sus.mean()
	return out
}

// AverageBiodiversity averages the scored assessments inside w. Unscored
// assessments are skipped; the result is absent when no windowed assessment
// carries a score.
func AverageBiodiversity(assessments []models.BiodiversityAssessment, w Window) Optional {
	acc := &meanAcc{}
	for i := range assessments {
		a := &assessments[i]
		if !w.Contains(a.AssessedAt) {
			continue
		}
		acc.addPtr(a.BiodiversityScore)
	}
	return acc.mean()
}

// meanAcc accumulates a null-skipping mean.
type meanAcc struct {
	sum   float64
	count int
}

func (a *meanAcc) addPtr(v *float64) {
	if v == nil {
		return
	}
	a.sum += *v
	a.count++
}

func (a *meanAcc) mean() Optional {
	if a.count == 0 {
		return None()
	}
	return Some(round2(a.sum / float64(a.count)))
}
