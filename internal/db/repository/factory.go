package repository

import "gorm.io/gorm"

// RepositoryFactory creates and manages all repositories
type RepositoryFactory struct {
	db               *gorm.DB
	speciesRepo      SpeciesRepository
	catchRepo        CatchRepository
	biodiversityRepo BiodiversityRepository
	oceanRepo        OceanRepository
	alertRepo        AlertRepository
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(db *gorm.DB) *RepositoryFactory {
	return &RepositoryFactory{
		db: db,
	}
}

// Species returns the species repository
func (f *RepositoryFactory) Species() SpeciesRepository {
	if f.speciesRepo == nil {
		f.speciesRepo = NewSpeciesRepository(f.db)
	}
	return f.speciesRepo
}

// Catch returns the catch event repository
func (f *RepositoryFactory) Catch() CatchRepository {
	if f.catchRepo == nil {
		f.catchRepo = NewCatchRepository(f.db)
	}
	return f.catchRepo
}

// Biodiversity returns the biodiversity assessment repository
func (f *RepositoryFactory) Biodiversity() BiodiversityRepository {
	if f.biodiversityRepo == nil {
		f.biodiversityRepo = NewBiodiversityRepository(f.db)
	}
	return f.biodiversityRepo
}

// Ocean returns the ocean measurement repository
func (f *RepositoryFactory) Ocean() OceanRepository {
	if f.oceanRepo == nil {
		f.oceanRepo = NewOceanRepository(f.db)
	}
	return f.oceanRepo
}

// Alert returns the alert repository
func (f *RepositoryFactory) Alert() AlertRepository {
	if f.alertRepo == nil {
		f.alertRepo = NewAlertRepository(f.db)
	}
	return f.alertRepo
}
