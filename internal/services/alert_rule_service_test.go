package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marine-watch/backend/internal/db/models"
	"github.com/marine-watch/backend/internal/db/repository"
	"github.com/marine-watch/backend/internal/services"
	"github.com/marine-watch/backend/internal/testutil"
)

func newRuleService(ts *testutil.TestSetup) (*services.AlertRuleService, *repository.RepositoryFactory) {
	repos := repository.NewRepositoryFactory(ts.DB.DB)
	svc := services.NewAlertRuleService(repos, &ts.Config.Scoring, nil, nil, ts.Logger)
	return svc, repos
}

func ptr(v float64) *float64 { return &v }

func TestAlertRuleService_BiodiversityRiskSeverities(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	svc, repos := newRuleService(ts)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	seed := []models.BiodiversityAssessment{
		{RegionName: "Coral Triangle", BiodiversityScore: ptr(20), AssessedAt: now.AddDate(0, 0, -2)},
		{RegionName: "Baltic Sea", BiodiversityScore: ptr(30), AssessedAt: now.AddDate(0, 0, -2)},
		{RegionName: "Ross Sea", BiodiversityScore: ptr(45), AssessedAt: now.AddDate(0, 0, -2)},
		{RegionName: "Sargasso Sea", BiodiversityScore: nil, AssessedAt: now.AddDate(0, 0, -2)},
	}
	for i := range seed {
		require.NoError(t, repos.Biodiversity().Create(&seed[i]))
	}

	result, err := svc.RunAlertRules(now)
	require.NoError(t, err)

	require.Len(t, result.Created, 2)
	bySubject := map[string]models.Alert{}
	for _, a := range result.Created {
		assert.Equal(t, models.AlertBiodiversityRisk, a.AlertType)
		bySubject[a.Location] = a
	}
	assert.Equal(t, models.SeverityCritical, bySubject["Coral Triangle"].Severity)
	assert.Equal(t, models.SeverityHigh, bySubject["Baltic Sea"].Severity)
}

func TestAlertRuleService_BiodiversityUsesLatestAssessment(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	svc, repos := newRuleService(ts)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// old assessment was risky, the newer one recovered
	old := models.BiodiversityAssessment{RegionName: "North Sea", BiodiversityScore: ptr(30), AssessedAt: now.AddDate(0, -2, 0)}
	recovered := models.BiodiversityAssessment{RegionName: "North Sea", BiodiversityScore: ptr(70), AssessedAt: now.AddDate(0, 0, -1)}
	require.NoError(t, repos.Biodiversity().Create(&old))
	require.NoError(t, repos.Biodiversity().Create(&recovered))

	result, err := svc.RunAlertRules(now)
	require.NoError(t, err)
	assert.Empty(t, result.Created)
}

func TestAlertRuleService_SpeciesThreatRatio(t *testing.T) {
	t.Run("ratio above 0.3 raises a high alert", func(t *testing.T) {
		ts := testutil.NewTestSetup(t)
		defer ts.Cleanup()
		ts.SetupMarineDatabase()
		svc, _ := newRuleService(ts)

		ts.SeedSpecies("Thunnus thynnus", models.ThreatHigh)
		ts.SeedSpecies("Chelonia mydas", models.ThreatCritical)
		ts.SeedSpecies("Gadus morhua", models.ThreatLow)
		ts.SeedSpecies("Clupea harengus", models.ThreatLow)
		ts.SeedSpecies("Scomber scombrus", models.ThreatLow)

		result, err := svc.RunAlertRules(time.Now().UTC())
		require.NoError(t, err)

		require.Len(t, result.Created, 1)
		assert.Equal(t, models.AlertSpeciesThreat, result.Created[0].AlertType)
		assert.Equal(t, models.SeverityHigh, result.Created[0].Severity)
		assert.Equal(t, "Global", result.Created[0].Location)
		assert.Empty(t, result.Created[0].SubjectKey)
	})

	t.Run("ratio above 0.5 is critical", func(t *testing.T) {
		ts := testutil.NewTestSetup(t)
		defer ts.Cleanup()
		ts.SetupMarineDatabase()
		svc, _ := newRuleService(ts)

		ts.SeedSpecies("Thunnus thynnus", models.ThreatHigh)
		ts.SeedSpecies("Chelonia mydas", models.ThreatCritical)
		ts.SeedSpecies("Gadus morhua", models.ThreatLow)

		result, err := svc.RunAlertRules(time.Now().UTC())
		require.NoError(t, err)

		require.Len(t, result.Created, 1)
		assert.Equal(t, models.SeverityCritical, result.Created[0].Severity)
	})

	t.Run("ratio at the threshold stays quiet", func(t *testing.T) {
		ts := testutil.NewTestSetup(t)
		defer ts.Cleanup()
		ts.SetupMarineDatabase()
		svc, _ := newRuleService(ts)

		// 3 of 10 is exactly 0.3, not above it
		ts.SeedSpecies("a", models.ThreatHigh)
		ts.SeedSpecies("b", models.ThreatHigh)
		ts.SeedSpecies("c", models.ThreatCritical)
		for _, name := range []string{"d", "e", "f", "g", "h", "i", "j"} {
			ts.SeedSpecies(name, models.ThreatLow)
		}

		result, err := svc.RunAlertRules(time.Now().UTC())
		require.NoError(t, err)
		assert.Empty(t, result.Created)
	})

	t.Run("empty catalog stays quiet", func(t *testing.T) {
		ts := testutil.NewTestSetup(t)
		defer ts.Cleanup()
		ts.SetupMarineDatabase()
		svc, _ := newRuleService(ts)

		result, err := svc.RunAlertRules(time.Now().UTC())
		require.NoError(t, err)
		assert.Empty(t, result.Created)
	})
}

func TestAlertRuleService_Overfishing(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	svc, repos := newRuleService(ts)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tuna := ts.SeedSpecies("Thunnus thynnus", models.ThreatLow)
	cod := ts.SeedSpecies("Gadus morhua", models.ThreatLow)

	events := []models.CatchEvent{
		// cod in the North Sea totals 330t against an average quota of
		// 100t, clearing the 1.5x bar for a high alert
		{SpeciesID: cod.ID, CatchAmount: 130, QuotaLimit: ptr(100), FishingArea: "North Sea", CaughtAt: now.AddDate(0, 0, -5)},
		{SpeciesID: cod.ID, CatchAmount: 200, QuotaLimit: ptr(100), FishingArea: "North Sea", CaughtAt: now.AddDate(0, 0, -3)},
		// 110t against 100t stays inside the 1.2x tolerance
		{SpeciesID: tuna.ID, CatchAmount: 110, QuotaLimit: ptr(100), FishingArea: "Mediterranean", CaughtAt: now.AddDate(0, 0, -3)},
		// no quota anywhere in the group, nothing to compare against
		{SpeciesID: tuna.ID, CatchAmount: 5000, FishingArea: "Barents Sea", CaughtAt: now.AddDate(0, 0, -3)},
	}
	for i := range events {
		require.NoError(t, repos.Catch().Create(&events[i]))
	}

	result, err := svc.RunAlertRules(now)
	require.NoError(t, err)

	require.Len(t, result.Created, 1)
	alert := result.Created[0]
	assert.Equal(t, models.AlertOverfishing, alert.AlertType)
	assert.Equal(t, models.SeverityHigh, alert.Severity)
	assert.Equal(t, "North Sea", alert.Location)
	assert.Equal(t, "Gadus morhua", alert.SubjectKey)
}

func TestAlertRuleService_OverfishingAggregatesSubQuotaEvents(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	svc, repos := newRuleService(ts)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cod := ts.SeedSpecies("Gadus morhua", models.ThreatLow)

	// each haul sits below the 100t quota, but together they total 150t,
	// above 1.2x the average quota
	for i := 0; i < 3; i++ {
		require.NoError(t, repos.Catch().Create(&models.CatchEvent{
			SpeciesID:   cod.ID,
			CatchAmount: 50,
			QuotaLimit:  ptr(100),
			FishingArea: "North Sea",
			CaughtAt:    now.AddDate(0, 0, -i-1),
		}))
	}

	result, err := svc.RunAlertRules(now)
	require.NoError(t, err)

	require.Len(t, result.Created, 1)
	alert := result.Created[0]
	assert.Equal(t, models.AlertOverfishing, alert.AlertType)
	assert.Equal(t, models.SeverityMedium, alert.Severity)
	assert.Equal(t, "North Sea", alert.Location)
	assert.Equal(t, "Gadus morhua", alert.SubjectKey)
}

func TestAlertRuleService_SustainabilityRisk(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	svc, repos := newRuleService(ts)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cod := ts.SeedSpecies("Gadus morhua", models.ThreatLow)
	herring := ts.SeedSpecies("Clupea harengus", models.ThreatLow)

	events := []models.CatchEvent{
		// avg 20, critical
		{SpeciesID: cod.ID, CatchAmount: 10, SustainabilityScore: ptr(15), FishingArea: "North Sea", CaughtAt: now.AddDate(0, 0, -10)},
		{SpeciesID: cod.ID, CatchAmount: 10, SustainabilityScore: ptr(25), FishingArea: "North Sea", CaughtAt: now.AddDate(0, 0, -8)},
		// avg 35, high
		{SpeciesID: herring.ID, CatchAmount: 10, SustainabilityScore: ptr(35), FishingArea: "Baltic Sea", CaughtAt: now.AddDate(0, 0, -8)},
		// unassessed events never count as zero
		{SpeciesID: herring.ID, CatchAmount: 10, FishingArea: "Barents Sea", CaughtAt: now.AddDate(0, 0, -8)},
	}
	for i := range events {
		require.NoError(t, repos.Catch().Create(&events[i]))
	}

	result, err := svc.RunAlertRules(now)
	require.NoError(t, err)

	require.Len(t, result.Created, 2)
	byLocation := map[string]models.Alert{}
	for _, a := range result.Created {
		assert.Equal(t, models.AlertSustainabilityRisk, a.AlertType)
		byLocation[a.Location] = a
	}
	assert.Equal(t, models.SeverityCritical, byLocation["North Sea"].Severity)
	assert.Equal(t, "Gadus morhua", byLocation["North Sea"].SubjectKey)
	assert.Equal(t, models.SeverityHigh, byLocation["Baltic Sea"].Severity)
}

func TestAlertRuleService_RunIsIdempotent(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	svc, repos := newRuleService(ts)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	risky := models.BiodiversityAssessment{RegionName: "Coral Triangle", BiodiversityScore: ptr(20), AssessedAt: now.AddDate(0, 0, -2)}
	require.NoError(t, repos.Biodiversity().Create(&risky))

	first, err := svc.RunAlertRules(now)
	require.NoError(t, err)
	require.Len(t, first.Created, 1)

	second, err := svc.RunAlertRules(now)
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Equal(t, 1, second.SkippedExisting)

	// resolving frees the triple for the next run
	_, err = svc.ResolveAlert(first.Created[0].ID)
	require.NoError(t, err)

	third, err := svc.RunAlertRules(now)
	require.NoError(t, err)
	require.Len(t, third.Created, 1)
	assert.NotEqual(t, first.Created[0].ID, third.Created[0].ID)
}

func TestAlertRuleService_ResolveUnknownAlert(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	svc, _ := newRuleService(ts)

	_, err := svc.ResolveAlert(12345)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
