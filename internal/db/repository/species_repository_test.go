package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/marine-watch/backend/internal/db/models"
	"github.com/marine-watch/backend/internal/db/repository"
	"github.com/marine-watch/backend/internal/testutil"
)

func TestSpeciesRepository_CRUD(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	repo := repository.NewSpeciesRepository(ts.DB.DB)

	t.Run("Should create species with valid data", func(t *testing.T) {
		species := &models.Species{
			ScientificName: "Thunnus thynnus",
			CommonName:     "Atlantic bluefin tuna",
			SpeciesType:    "fish",
			ThreatLevel:    models.ThreatHigh,
		}

		err := repo.Create(species)

		assert.NoError(t, err)
		assert.NotZero(t, species.ID)
	})

	t.Run("Should get species by scientific name", func(t *testing.T) {
		got, err := repo.GetByScientificName("Thunnus thynnus")

		assert.NoError(t, err)
		assert.Equal(t, "Atlantic bluefin tuna", got.CommonName)
	})

	t.Run("Should return not found for unknown species", func(t *testing.T) {
		_, err := repo.GetByID(99999)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		_, err = repo.GetByScientificName("Nonexistus fabricatus")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("Should list species filtered by threat level", func(t *testing.T) {
		ts.SeedSpecies("Gadus morhua", models.ThreatMedium)
		ts.SeedSpecies("Epinephelus itajara", models.ThreatCritical)

		species, total, err := repo.List(0, 20, "", models.ThreatCritical)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Epinephelus itajara", species[0].ScientificName)
	})

	t.Run("Should count threatened species", func(t *testing.T) {
		// high + critical count, medium does not
		threatened, err := repo.CountThreatened()
		assert.NoError(t, err)
		assert.Equal(t, int64(2), threatened)

		total, err := repo.Count()
		assert.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("Should soft delete species", func(t *testing.T) {
		species := ts.SeedSpecies("Delphinus delphis", models.ThreatLow)

		err := repo.Delete(species.ID)
		assert.NoError(t, err)

		_, err = repo.GetByID(species.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		err = repo.Delete(species.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestSpeciesRepository_FindOrCreate(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	repo := repository.NewSpeciesRepository(ts.DB.DB)

	t.Run("Should create when species is unknown", func(t *testing.T) {
		species := &models.Species{
			ScientificName: "Chelonia mydas",
			CommonName:     "Green sea turtle",
			ThreatLevel:    models.ThreatHigh,
		}

		created, err := repo.FindOrCreate(species)

		assert.NoError(t, err)
		assert.True(t, created)
		assert.NotZero(t, species.ID)
	})

	t.Run("Should refresh mutable fields on a hit", func(t *testing.T) {
		incoming := &models.Species{
			ScientificName:     "Chelonia mydas",
			CommonName:         "Green turtle",
			ConservationStatus: "EN",
			ThreatLevel:        models.ThreatCritical,
		}

		created, err := repo.FindOrCreate(incoming)

		assert.NoError(t, err)
		assert.False(t, created)

		got, err := repo.GetByScientificName("Chelonia mydas")
		assert.NoError(t, err)
		assert.Equal(t, "Green turtle", got.CommonName)
		assert.Equal(t, models.ThreatCritical, got.ThreatLevel)

		// caller sees the persisted record, including its existing ID
		assert.Equal(t, got.ID, incoming.ID)
	})
}

func TestSpeciesRepository_Observations(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	ts.SetupMarineDatabase()

	repo := repository.NewSpeciesRepository(ts.DB.DB)
	species := ts.SeedSpecies("Orcinus orca", models.ThreatMedium)

	confidence := 92.5
	err := repo.CreateObservation(&models.SpeciesObservation{
		SpeciesID:       species.ID,
		Latitude:        59.9,
		Longitude:       10.7,
		ConfidenceLevel: &confidence,
		ObserverType:    "ai_system",
		ObservedAt:      time.Now().UTC(),
	})
	assert.NoError(t, err)

	err = repo.CreateObservation(&models.SpeciesObservation{
		SpeciesID:    species.ID,
		Latitude:     60.1,
		Longitude:    10.9,
		ObserverType: "researcher",
		ObservedAt:   time.Now().UTC().Add(-time.Hour),
	})
	assert.NoError(t, err)

	obs, err := repo.ListObservations(species.ID, 10)
	assert.NoError(t, err)
	assert.Len(t, obs, 2)
	// newest first
	assert.Equal(t, "ai_system", obs[0].ObserverType)
}
