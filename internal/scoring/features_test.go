package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marine-watch/backend/internal/db/models"
)

func f(v float64) *float64 { return &v }

func TestWindow_HalfOpen(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	w, err := NewWindow(start, end)
	require.NoError(t, err)

	assert.True(t, w.Contains(start), "record at start belongs to the window")
	assert.True(t, w.Contains(end.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(end), "record at end belongs to the next window")
	assert.False(t, w.Contains(start.Add(-time.Nanosecond)))
}

func TestNewWindow_RejectsInverted(t *testing.T) {
	now := time.Now()

	_, err := NewWindow(now, now)
	assert.Error(t, err)

	_, err = NewWindow(now, now.Add(-time.Hour))
	assert.Error(t, err)
}

func TestWindow_Previous(t *testing.T) {
	w := Window{
		Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
	}
	prev := w.Previous()

	assert.Equal(t, time.Date(2025, 5, 25, 0, 0, 0, 0, time.UTC), prev.Start)
	assert.Equal(t, w.Start, prev.End)
	assert.Equal(t, w.Duration(), prev.Duration())
}

func TestMonthOf(t *testing.T) {
	w := MonthOf(time.Date(2025, 6, 17, 14, 30, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), w.End)
}

func TestSummarizeOcean(t *testing.T) {
	w := Window{
		Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	in := w.Start.Add(time.Hour)

	got := SummarizeOcean([]models.OceanMeasurement{
		{Temperature: 10, Salinity: f(35), PHLevel: f(8.0), RecordedAt: in},
		{Temperature: 14, Salinity: nil, PHLevel: f(8.2), RecordedAt: in},
		// outside the window, must be ignored
		{Temperature: 99, Salinity: f(99), RecordedAt: w.End},
	}, w)

	assert.Equal(t, 2, got.Count)
	assert.Equal(t, Some(12.0), got.AvgTemperature)
	assert.Equal(t, Some(35.0), got.AvgSalinity, "null salinity skipped, not averaged as zero")
	assert.Equal(t, Some(8.1), got.AvgPH)
	assert.False(t, got.AvgOxygen.Valid, "no reading carried oxygen")
}

func TestSummarizeOcean_EmptyWindow(t *testing.T) {
	w := Window{
		Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	got := SummarizeOcean(nil, w)

	assert.Equal(t, 0, got.Count)
	assert.False(t, got.AvgTemperature.Valid)
	assert.False(t, got.AvgSalinity.Valid)
}

func TestSummarizeCatches(t *testing.T) {
	w := Window{
		Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	in := w.Start.Add(48 * time.Hour)

	got := SummarizeCatches([]models.CatchEvent{
		{CatchAmount: 100, QuotaLimit: f(120), SustainabilityScore: f(40), CaughtAt: in},
		{CatchAmount: 50, QuotaLimit: nil, SustainabilityScore: nil, CaughtAt: in},
		{CatchAmount: 30, QuotaLimit: f(80), SustainabilityScore: f(60), CaughtAt: in},
		{CatchAmount: 999, QuotaLimit: f(999), CaughtAt: w.End.Add(time.Hour)},
	}, w)

	assert.Equal(t, 3, got.Events)
	assert.Equal(t, 180.0, got.TotalVolume)
	assert.Equal(t, Some(100.0), got.AvgQuota, "unquota'd event skipped, not averaged as zero")
	assert.Equal(t, Some(50.0), got.AvgSustainability)
}

func TestSummarizeCatches_NoneAssessed(t *testing.T) {
	w := Lookback(time.Now(), 30)

	got := SummarizeCatches([]models.CatchEvent{
		{CatchAmount: 10, CaughtAt: w.Start.Add(time.Hour)},
	}, w)

	assert.Equal(t, 1, got.Events)
	assert.False(t, got.AvgQuota.Valid)
	assert.False(t, got.AvgSustainability.Valid)
}

func TestAverageBiodiversity(t *testing.T) {
	w := Window{
		Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	in := w.Start.Add(time.Hour)

	got := AverageBiodiversity([]models.BiodiversityAssessment{
		{BiodiversityScore: f(70), AssessedAt: in},
		{BiodiversityScore: nil, AssessedAt: in},
		{BiodiversityScore: f(50), AssessedAt: in},
	}, w)

	assert.Equal(t, Some(60.0), got)
}

func TestAverageBiodiversity_AllUnscored(t *testing.T) {
	w := Lookback(time.Now(), 30)

	got := AverageBiodiversity([]models.BiodiversityAssessment{
		{AssessedAt: w.Start.Add(time.Hour)},
	}, w)

	assert.False(t, got.Valid)
}
