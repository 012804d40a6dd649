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

func TestMetricsService_ComputeHealthReport(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	repos := repository.NewRepositoryFactory(ts.DB.DB)
	svc := services.NewMetricsService(repos, &ts.Config.Scoring, ts.Logger)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// 1 of 3 species threatened
	ts.SeedSpecies("Thunnus thynnus", models.ThreatHigh)
	ts.SeedSpecies("Gadus morhua", models.ThreatLow)
	ts.SeedSpecies("Clupea harengus", models.ThreatLow)

	// windowed biodiversity average of 60
	assessments := []models.BiodiversityAssessment{
		{RegionName: "Coral Triangle", BiodiversityScore: ptr(70), AssessedAt: now.AddDate(0, 0, -3)},
		{RegionName: "Baltic Sea", BiodiversityScore: ptr(50), AssessedAt: now.AddDate(0, 0, -4)},
		// outside the 30 day window, ignored
		{RegionName: "Ross Sea", BiodiversityScore: ptr(5), AssessedAt: now.AddDate(0, -3, 0)},
	}
	for i := range assessments {
		require.NoError(t, repos.Biodiversity().Create(&assessments[i]))
	}

	// sightings: 2 this month, 3 last month, all inside the 30 day window
	cod, err := repos.Species().GetByScientificName("Gadus morhua")
	require.NoError(t, err)
	observed := []time.Time{
		now.AddDate(0, 0, -3),
		now.AddDate(0, 0, -5),
		time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 5, 21, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 5, 22, 10, 0, 0, 0, time.UTC),
	}
	for _, at := range observed {
		require.NoError(t, repos.Species().CreateObservation(&models.SpeciesObservation{
			SpeciesID:  cod.ID,
			Latitude:   56.5,
			Longitude:  3.2,
			ObservedAt: at,
		}))
	}

	// one active high alert deducts 3
	require.NoError(t, repos.Alert().Create(&models.Alert{
		AlertType: models.AlertOverfishing,
		Severity:  models.SeverityHigh,
		Title:     "x",
		Location:  "North Sea",
		IsActive:  true,
	}))

	report, err := svc.ComputeHealthReport(now)
	require.NoError(t, err)

	// threat: 33.33% * 0.8 = 26.67; biodiversity: (100-60)*0.3 = 12; alerts: 3
	assert.Equal(t, 26.67, report.Deductions.Threat)
	assert.Equal(t, 12.0, report.Deductions.Biodiversity)
	assert.Equal(t, 3.0, report.Deductions.AlertLoad)
	assert.Equal(t, 58.33, report.Score)
	require.NotNil(t, report.AvgBiodiversity)
	assert.Equal(t, 60.0, *report.AvgBiodiversity)

	// sightings fell from 3 to 2 month over month, which reads as improving
	assert.Equal(t, 5, report.RecentObservations)
	assert.Equal(t, scoring.TrendImproving, report.ObservationTrend.Direction)
	assert.Equal(t, 33.33, report.ObservationTrend.ChangePct)
}

func TestMetricsService_EmptyDataScoresClean(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	repos := repository.NewRepositoryFactory(ts.DB.DB)
	svc := services.NewMetricsService(repos, &ts.Config.Scoring, ts.Logger)

	report, err := svc.ComputeHealthReport(time.Now().UTC())
	require.NoError(t, err)

	assert.Equal(t, 100.0, report.Score)
	assert.Nil(t, report.AvgBiodiversity)
	assert.Zero(t, report.TotalSpecies)
	assert.Zero(t, report.RecentObservations)
	assert.Equal(t, scoring.TrendStable, report.ObservationTrend.Direction)
}

func TestMetricsService_RegionReport(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	repos := repository.NewRepositoryFactory(ts.DB.DB)
	svc := services.NewMetricsService(repos, &ts.Config.Scoring, ts.Logger)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	seed := []models.BiodiversityAssessment{
		{RegionName: "Coral Triangle", BiodiversityScore: ptr(70), AssessedAt: now.AddDate(0, 0, -20)},
		{RegionName: "Coral Triangle", BiodiversityScore: ptr(50), AssessedAt: now.AddDate(0, 0, -2)},
	}
	for i := range seed {
		require.NoError(t, repos.Biodiversity().Create(&seed[i]))
	}

	report, err := svc.RegionReport("Coral Triangle", now)
	require.NoError(t, err)

	assert.Equal(t, 50.0, *report.Latest.BiodiversityScore)
	assert.Equal(t, 2, report.AssessmentCount)
	require.NotNil(t, report.WindowAvg)
	assert.Equal(t, 60.0, *report.WindowAvg)

	_, err = svc.RegionReport("Sargasso Sea", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.RegionReport("", now)
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestMetricsService_RecordAssessmentValidation(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	repos := repository.NewRepositoryFactory(ts.DB.DB)
	svc := services.NewMetricsService(repos, &ts.Config.Scoring, ts.Logger)

	err := svc.RecordAssessment(&models.BiodiversityAssessment{})
	assert.ErrorIs(t, err, utils.ErrValidation)

	err = svc.RecordAssessment(&models.BiodiversityAssessment{
		RegionName:        "Coral Triangle",
		BiodiversityScore: ptr(150),
	})
	assert.ErrorIs(t, err, utils.ErrValidation)

	err = svc.RecordAssessment(&models.BiodiversityAssessment{
		RegionName:        "Coral Triangle",
		BiodiversityScore: ptr(70),
	})
	assert.NoError(t, err)
}
