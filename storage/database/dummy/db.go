package dummydb

import (
	"sync"

	"github.com/trezcool/facultypref/core/catalog"
	"github.com/trezcool/facultypref/core/selection"
)

type (
	// DB is an in-memory database, for tests & demos.
	DB struct {
		selection *selectionTable
		catalog   *catalogTables
	}

	selectionTable struct {
		sync.RWMutex
		rows []selection.Selection
	}

	catalogTables struct {
		sync.RWMutex
		subjects     []catalog.Subject
		faculty      []catalog.Faculty
		availability []catalog.Availability
	}
)

func Open() (*DB, error) {
	db := &DB{
		selection: &selectionTable{},
		catalog:   &catalogTables{},
	}
	return db, nil
}
