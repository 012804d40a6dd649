package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marine-watch/backend/internal/db/models"
	"github.com/marine-watch/backend/internal/db/repository"
	"github.com/marine-watch/backend/internal/scoring"
	"github.com/marine-watch/backend/internal/services"
	"github.com/marine-watch/backend/internal/testutil"
	"github.com/marine-watch/backend/internal/utils"
)

func TestFisheriesService_ReportCatchValidation(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	repos := repository.NewRepositoryFactory(ts.DB.DB)
	svc := services.NewFisheriesService(repos, &ts.Config.Scoring, ts.Logger)
	cod := ts.SeedSpecies("Gadus morhua", models.ThreatLow)

	tests := []struct {
		name  string
		event models.CatchEvent
	}{
		{"missing species", models.CatchEvent{CatchAmount: 10, FishingArea: "North Sea"}},
		{"non-positive amount", models.CatchEvent{SpeciesID: cod.ID, CatchAmount: 0, FishingArea: "North Sea"}},
		{"missing area", models.CatchEvent{SpeciesID: cod.ID, CatchAmount: 10}},
		{"negative quota", models.CatchEvent{SpeciesID: cod.ID, CatchAmount: 10, FishingArea: "North Sea", QuotaLimit: ptr(-1)}},
		{"sustainability out of range", models.CatchEvent{SpeciesID: cod.ID, CatchAmount: 10, FishingArea: "North Sea", SustainabilityScore: ptr(120)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := tt.event
			assert.ErrorIs(t, svc.ReportCatch(&event), utils.ErrValidation)
		})
	}

	t.Run("unknown species is not found", func(t *testing.T) {
		err := svc.ReportCatch(&models.CatchEvent{SpeciesID: 9999, CatchAmount: 10, FishingArea: "North Sea"})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("valid event persists and defaults the timestamp", func(t *testing.T) {
		event := models.CatchEvent{SpeciesID: cod.ID, CatchAmount: 10, FishingArea: "North Sea"}
		require.NoError(t, svc.ReportCatch(&event))
		assert.NotZero(t, event.ID)
		assert.False(t, event.CaughtAt.IsZero())
	})
}

func TestFisheriesService_EvaluateFishingPressure(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	repos := repository.NewRepositoryFactory(ts.DB.DB)
	svc := services.NewFisheriesService(repos, &ts.Config.Scoring, ts.Logger)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cod := ts.SeedSpecies("Gadus morhua", models.ThreatLow)

	// North Atlantic: 12 events, 1200t, avg sustainability 20 -> 10+40+30 = 80
	for i := 0; i < 12; i++ {
		require.NoError(t, repos.Catch().Create(&models.CatchEvent{
			SpeciesID:           cod.ID,
			CatchAmount:         100,
			FishingArea:         "North Atlantic",
			SustainabilityScore: ptr(20),
			CaughtAt:            now.AddDate(0, 0, -i-1),
		}))
	}

	// Ross Sea: 2 quiet events
	for i := 0; i < 2; i++ {
		require.NoError(t, repos.Catch().Create(&models.CatchEvent{
			SpeciesID:   cod.ID,
			CatchAmount: 5,
			FishingArea: "Ross Sea",
			CaughtAt:    now.AddDate(0, 0, -i-1),
		}))
	}

	// stale activity outside the 90 day window must not count
	require.NoError(t, repos.Catch().Create(&models.CatchEvent{
		SpeciesID:   cod.ID,
		CatchAmount: 9999,
		FishingArea: "Ross Sea",
		CaughtAt:    now.AddDate(0, -6, 0),
	}))

	report, err := svc.EvaluateFishingPressure(now)
	require.NoError(t, err)

	require.Len(t, report.Areas, 2)
	assert.Equal(t, "North Atlantic", report.Areas[0].Area)
	assert.Equal(t, 80.0, report.Areas[0].Score)
	assert.Equal(t, scoring.PressureCritical, report.Areas[0].Tier)
	assert.Equal(t, "Ross Sea", report.Areas[1].Area)
	assert.Equal(t, 0.0, report.Areas[1].Score)
	assert.Equal(t, scoring.PressureLow, report.Areas[1].Tier)
}

func TestFisheriesService_CatchBySpecies(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	repos := repository.NewRepositoryFactory(ts.DB.DB)
	svc := services.NewFisheriesService(repos, &ts.Config.Scoring, ts.Logger)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cod := ts.SeedSpecies("Gadus morhua", models.ThreatLow)
	tuna := ts.SeedSpecies("Thunnus thynnus", models.ThreatHigh)

	require.NoError(t, repos.Catch().Create(&models.CatchEvent{SpeciesID: cod.ID, CatchAmount: 100, FishingArea: "North Sea", CaughtAt: now.AddDate(0, 0, -1)}))
	require.NoError(t, repos.Catch().Create(&models.CatchEvent{SpeciesID: tuna.ID, CatchAmount: 400, FishingArea: "Mediterranean", CaughtAt: now.AddDate(0, 0, -1)}))

	totals, err := svc.CatchBySpecies(now, 10)
	require.NoError(t, err)

	require.Len(t, totals, 2)
	assert.Equal(t, "Thunnus thynnus", totals[0].ScientificName)
}

func TestSustainabilityService_ComputeRegionalTrend(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	repos := repository.NewRepositoryFactory(ts.DB.DB)
	svc := services.NewSustainabilityService(repos, &ts.Config.Scoring, ts.Logger)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cod := ts.SeedSpecies("Gadus morhua", models.ThreatLow)

	// previous month: 10 events, current month: 12 -> +20%, declining
	for i := 0; i < 10; i++ {
		require.NoError(t, repos.Catch().Create(&models.CatchEvent{
			SpeciesID: cod.ID, CatchAmount: 5, FishingArea: "North Sea",
			CaughtAt: time.Date(2025, 5, i+1, 10, 0, 0, 0, time.UTC),
		}))
	}
	for i := 0; i < 12; i++ {
		require.NoError(t, repos.Catch().Create(&models.CatchEvent{
			SpeciesID: cod.ID, CatchAmount: 5, FishingArea: "North Sea",
			CaughtAt: time.Date(2025, 6, i+1, 10, 0, 0, 0, time.UTC),
		}))
	}

	trend, err := svc.ComputeRegionalTrend("North Sea", now)
	require.NoError(t, err)

	assert.Equal(t, 12, trend.CurrentMonth)
	assert.Equal(t, 10, trend.PreviousMonth)
	assert.Equal(t, scoring.TrendDeclining, trend.Trend.Direction)
	assert.Equal(t, 20.0, trend.Trend.ChangePct)

	t.Run("area with no history is stable", func(t *testing.T) {
		trend, err := svc.ComputeRegionalTrend("Sargasso Sea", now)
		require.NoError(t, err)
		assert.Equal(t, scoring.TrendStable, trend.Trend.Direction)
		assert.Zero(t, trend.Trend.ChangePct)
	})

	t.Run("empty area name is rejected", func(t *testing.T) {
		_, err := svc.ComputeRegionalTrend("", now)
		assert.ErrorIs(t, err, utils.ErrValidation)
	})
}

func TestSustainabilityService_ComputeSustainabilityMetrics(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	repos := repository.NewRepositoryFactory(ts.DB.DB)
	svc := services.NewSustainabilityService(repos, &ts.Config.Scoring, ts.Logger)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cod := ts.SeedSpecies("Gadus morhua", models.ThreatLow)

	// current 30 day window: 2 events
	require.NoError(t, repos.Catch().Create(&models.CatchEvent{SpeciesID: cod.ID, CatchAmount: 30, SustainabilityScore: ptr(60), FishingArea: "North Sea", CaughtAt: now.AddDate(0, 0, -5)}))
	require.NoError(t, repos.Catch().Create(&models.CatchEvent{SpeciesID: cod.ID, CatchAmount: 20, SustainabilityScore: ptr(40), FishingArea: "North Sea", CaughtAt: now.AddDate(0, 0, -10)}))
	// preceding window: 4 events, so activity halved
	for i := 0; i < 4; i++ {
		require.NoError(t, repos.Catch().Create(&models.CatchEvent{SpeciesID: cod.ID, CatchAmount: 10, FishingArea: "North Sea", CaughtAt: now.AddDate(0, 0, -35-i)}))
	}

	report, err := svc.ComputeSustainabilityMetrics(now)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Events)
	assert.Equal(t, 50.0, report.TotalVolume)
	require.NotNil(t, report.AvgSustainability)
	assert.Equal(t, 50.0, *report.AvgSustainability)
	assert.Equal(t, scoring.TrendImproving, report.ActivityTrend.Direction)
	assert.Equal(t, 50.0, report.ActivityTrend.ChangePct)
	assert.Zero(t, report.QuotaViolations)
	assert.Zero(t, report.AtRiskSpecies)
}

func TestSustainabilityService_QuotaAndRiskCounts(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	repos := repository.NewRepositoryFactory(ts.DB.DB)
	svc := services.NewSustainabilityService(repos, &ts.Config.Scoring, ts.Logger)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cod := ts.SeedSpecies("Gadus morhua", models.ThreatLow)
	herring := ts.SeedSpecies("Clupea harengus", models.ThreatLow)

	events := []models.CatchEvent{
		// over quota and badly scored: one violation, cod at risk (avg 25)
		{SpeciesID: cod.ID, CatchAmount: 150, QuotaLimit: ptr(100), SustainabilityScore: ptr(25), FishingArea: "North Sea", CaughtAt: now.AddDate(0, 0, -3)},
		// within quota, healthy score keeps herring off the risk list
		{SpeciesID: herring.ID, CatchAmount: 50, QuotaLimit: ptr(100), SustainabilityScore: ptr(80), FishingArea: "Baltic Sea", CaughtAt: now.AddDate(0, 0, -4)},
		// unscored and unquota'd event counts toward neither
		{SpeciesID: herring.ID, CatchAmount: 10, FishingArea: "Baltic Sea", CaughtAt: now.AddDate(0, 0, -5)},
	}
	for i := range events {
		require.NoError(t, repos.Catch().Create(&events[i]))
	}

	report, err := svc.ComputeSustainabilityMetrics(now)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Events)
	assert.Equal(t, 1, report.QuotaViolations)
	assert.Equal(t, 1, report.AtRiskSpecies)
}
