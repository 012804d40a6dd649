package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marine-watch/backend/internal/db/models"
	"github.com/marine-watch/backend/internal/db/repository"
	"github.com/marine-watch/backend/internal/testutil"
)

func TestBiodiversityRepository_LatestPerRegion(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	repo := repository.NewBiodiversityRepository(ts.DB.DB)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	score := func(v float64) *float64 { return &v }

	seed := []models.BiodiversityAssessment{
		{RegionName: "Coral Triangle", BiodiversityScore: score(70), AssessedAt: base},
		{RegionName: "Coral Triangle", BiodiversityScore: score(55), AssessedAt: base.AddDate(0, 3, 0)},
		{RegionName: "Great Barrier Reef", BiodiversityScore: score(62), AssessedAt: base.AddDate(0, 1, 0)},
	}
	for i := range seed {
		require.NoError(t, repo.Create(&seed[i]))
	}

	t.Run("LatestByRegion picks the newest assessment", func(t *testing.T) {
		got, err := repo.LatestByRegion("Coral Triangle")

		assert.NoError(t, err)
		assert.Equal(t, 55.0, *got.BiodiversityScore)
	})

	t.Run("LatestByRegion on an unsurveyed region is not found", func(t *testing.T) {
		_, err := repo.LatestByRegion("Sargasso Sea")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("LatestPerRegion returns one row per region", func(t *testing.T) {
		latest, err := repo.LatestPerRegion()

		assert.NoError(t, err)
		assert.Len(t, latest, 2)
		assert.Equal(t, "Coral Triangle", latest[0].RegionName)
		assert.Equal(t, 55.0, *latest[0].BiodiversityScore)
		assert.Equal(t, "Great Barrier Reef", latest[1].RegionName)
	})

	t.Run("ListInWindow honors half-open bounds", func(t *testing.T) {
		start := base
		end := base.AddDate(0, 1, 0)

		got, err := repo.ListInWindow(start, end)

		assert.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, "Coral Triangle", got[0].RegionName)
	})
}
