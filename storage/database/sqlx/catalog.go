package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/facultypref/core/catalog"
)

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) catalog.Repository {
	return &catalogRepository{db: db}
}

// replace deletes all rows of `table` then inserts `rows` with the named query `insert`, in a transaction.
func (repo *catalogRepository) replace(ctx context.Context, table, insert string, rows []interface{}) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return errors.Wrapf(err, "clearing %s", table)
	}
	for _, row := range rows {
		if _, err = tx.NamedExecContext(ctx, insert, row); err != nil {
			return errors.Wrapf(err, "inserting into %s", table)
		}
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (repo *catalogRepository) ReplaceSubjects(ctx context.Context, subjects []catalog.Subject) error {
	rows := make([]interface{}, 0, len(subjects))
	for _, s := range subjects {
		rows = append(rows, s)
	}
	return repo.replace(ctx, "subject", "INSERT INTO subject (year, code, name) VALUES (:year, :code, :name)", rows)
}

func (repo *catalogRepository) QuerySubjects(ctx context.Context) ([]catalog.Subject, error) {
	subjects := make([]catalog.Subject, 0)
	err := repo.db.SelectContext(ctx, &subjects, "SELECT year, code, name FROM subject ORDER BY year, code")
	return subjects, errors.Wrap(err, "selecting subjects")
}

func (repo *catalogRepository) ReplaceFaculty(ctx context.Context, faculty []catalog.Faculty) error {
	rows := make([]interface{}, 0, len(faculty))
	for _, f := range faculty {
		rows = append(rows, f)
	}
	return repo.replace(ctx, "faculty", "INSERT INTO faculty (name) VALUES (:name)", rows)
}

func (repo *catalogRepository) QueryFaculty(ctx context.Context) ([]catalog.Faculty, error) {
	faculty := make([]catalog.Faculty, 0)
	err := repo.db.SelectContext(ctx, &faculty, "SELECT name FROM faculty ORDER BY name")
	return faculty, errors.Wrap(err, "selecting faculty")
}

func (repo *catalogRepository) QueryAvailability(ctx context.Context) ([]catalog.Availability, error) {
	avail := make([]catalog.Availability, 0)
	err := repo.db.SelectContext(ctx, &avail,
		"SELECT faculty, subject_code, subject_name, available FROM faculty_availability ORDER BY faculty, subject_code")
	return avail, errors.Wrap(err, "selecting availability")
}

// SaveAvailability upserts on (faculty, subject_code); supported by both Postgres & SQLite.
func (repo *catalogRepository) SaveAvailability(ctx context.Context, avail ...catalog.Availability) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	q := `INSERT INTO faculty_availability (faculty, subject_code, subject_name, available)
		VALUES (:faculty, :subject_code, :subject_name, :available)
		ON CONFLICT (faculty, subject_code)
		DO UPDATE SET subject_name = excluded.subject_name, available = excluded.available`
	for _, a := range avail {
		if _, err = tx.NamedExecContext(ctx, q, a); err != nil {
			return errors.Wrap(err, "upserting availability")
		}
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (repo *catalogRepository) ReplaceAvailability(ctx context.Context, avail []catalog.Availability) error {
	rows := make([]interface{}, 0, len(avail))
	for _, a := range avail {
		rows = append(rows, a)
	}
	return repo.replace(ctx, "faculty_availability",
		`INSERT INTO faculty_availability (faculty, subject_code, subject_name, available)
		VALUES (:faculty, :subject_code, :subject_name, :available)`, rows)
}
