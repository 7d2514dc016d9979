// Package storage opens the store engine selected by the configuration.
package storage

import (
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/facultypref/core"
	"github.com/trezcool/facultypref/core/catalog"
	"github.com/trezcool/facultypref/core/selection"
	"github.com/trezcool/facultypref/storage/csvstore"
	"github.com/trezcool/facultypref/storage/database"
	dummydb "github.com/trezcool/facultypref/storage/database/dummy"
	sqlxrepos "github.com/trezcool/facultypref/storage/database/sqlx"
)

// supported store engines, besides the database ones
const (
	CSV    = "csv"
	Memory = "memory"
)

type Stores struct {
	Selection selection.Store
	Catalog   catalog.Repository
	DB        *sqlx.DB // nil unless backed by a database
}

func (s Stores) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// Open opens the store engine of `conf`. Databases are created if needed but not migrated.
func Open(conf *core.Config) (Stores, error) {
	switch conf.Store.Engine {
	case CSV:
		db, err := csvstore.Open(conf.Store.DataDir)
		if err != nil {
			return Stores{}, errors.Wrap(err, "opening csv store")
		}
		return Stores{
			Selection: csvstore.NewSelectionRepository(db),
			Catalog:   csvstore.NewCatalogRepository(db),
		}, nil

	case Memory:
		db, err := dummydb.Open()
		if err != nil {
			return Stores{}, errors.Wrap(err, "opening memory store")
		}
		return Stores{
			Selection: dummydb.NewSelectionRepository(db),
			Catalog:   dummydb.NewCatalogRepository(db),
		}, nil

	case database.Postgres, database.SQLite:
		if conf.Store.Engine == database.SQLite {
			if err := os.MkdirAll(conf.Store.DataDir, 0o755); err != nil {
				return Stores{}, errors.Wrap(err, "creating data dir")
			}
		}
		if err := database.CreateIfNotExist(conf); err != nil {
			return Stores{}, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return Stores{}, err
		}
		return Stores{
			Selection: sqlxrepos.NewSelectionRepository(db),
			Catalog:   sqlxrepos.NewCatalogRepository(db),
			DB:        db,
		}, nil

	default:
		return Stores{}, errors.Errorf("unsupported store engine %q", conf.Store.Engine)
	}
}
