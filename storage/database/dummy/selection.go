package dummydb

import (
	"context"

	"github.com/trezcool/facultypref/core"
	"github.com/trezcool/facultypref/core/selection"
)

type selectionRepository struct {
	db *selectionTable
}

var _ selection.FilterStore = (*selectionRepository)(nil) // interface compliance check

func NewSelectionRepository(db *DB) selection.FilterStore {
	return &selectionRepository{db: db.selection}
}

func (repo *selectionRepository) query() []selection.Selection {
	sels := make([]selection.Selection, len(repo.db.rows))
	copy(sels, repo.db.rows)
	return sels
}

func (repo *selectionRepository) AppendSelections(_ context.Context, sels ...selection.Selection) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.rows = append(repo.db.rows, sels...)
	return nil
}

func (repo *selectionRepository) QueryAllSelections(_ context.Context) ([]selection.Selection, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *selectionRepository) FilterSelections(_ context.Context, filter selection.QueryFilter, orderings ...core.DBOrdering) ([]selection.Selection, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sels := repo.query()
	if !filter.IsEmpty() {
		filtered := make([]selection.Selection, 0, len(sels))
		for _, sel := range sels {
			if filter.Match(sel) {
				filtered = append(filtered, sel)
			}
		}
		sels = filtered
	}
	selection.Sort(sels, orderings...)
	return sels, nil
}

func (repo *selectionRepository) DeleteAllSelections(_ context.Context) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.rows = nil
	return nil
}
