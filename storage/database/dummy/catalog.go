package dummydb

import (
	"context"

	"github.com/trezcool/facultypref/core/catalog"
)

type catalogRepository struct {
	db *catalogTables
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{db: db.catalog}
}

func (repo *catalogRepository) ReplaceSubjects(_ context.Context, subjects []catalog.Subject) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.subjects = append([]catalog.Subject(nil), subjects...)
	return nil
}

func (repo *catalogRepository) QuerySubjects(_ context.Context) ([]catalog.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]catalog.Subject(nil), repo.db.subjects...), nil
}

func (repo *catalogRepository) ReplaceFaculty(_ context.Context, faculty []catalog.Faculty) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.faculty = append([]catalog.Faculty(nil), faculty...)
	return nil
}

func (repo *catalogRepository) QueryFaculty(_ context.Context) ([]catalog.Faculty, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]catalog.Faculty(nil), repo.db.faculty...), nil
}

func (repo *catalogRepository) QueryAvailability(_ context.Context) ([]catalog.Availability, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]catalog.Availability(nil), repo.db.availability...), nil
}

func (repo *catalogRepository) SaveAvailability(_ context.Context, avail ...catalog.Availability) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.availability = catalog.MergeAvailability(repo.db.availability, avail)
	return nil
}

func (repo *catalogRepository) ReplaceAvailability(_ context.Context, avail []catalog.Availability) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.availability = append([]catalog.Availability(nil), avail...)
	return nil
}
