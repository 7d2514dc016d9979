package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/facultypref/core"
	"github.com/trezcool/facultypref/core/selection"
)

const selectionColumns = "id, student_id, student_name, year, section, subject, subject_name, faculty, created_at"

type selectionRepository struct {
	db *sqlx.DB
}

var _ selection.FilterStore = (*selectionRepository)(nil) // interface compliance check

func NewSelectionRepository(db *sqlx.DB) selection.FilterStore {
	return &selectionRepository{db: db}
}

// AppendSelections inserts all rows in a single transaction.
func (repo *selectionRepository) AppendSelections(ctx context.Context, sels ...selection.Selection) error {
	if len(sels) == 0 {
		return nil
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	q := `INSERT INTO selection (` + selectionColumns + `)
		VALUES (:id, :student_id, :student_name, :year, :section, :subject, :subject_name, :faculty, :created_at)`
	stmt, err := tx.PrepareNamedContext(ctx, q)
	if err != nil {
		return errors.Wrap(err, "preparing insert")
	}
	defer func() { _ = stmt.Close() }()

	for _, sel := range sels {
		sel.CreatedAt = sel.CreatedAt.UTC()
		if _, err = stmt.ExecContext(ctx, sel); err != nil {
			return errors.Wrap(err, "inserting selection")
		}
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (repo *selectionRepository) QueryAllSelections(ctx context.Context) ([]selection.Selection, error) {
	return repo.FilterSelections(ctx, selection.QueryFilter{})
}

func (repo *selectionRepository) FilterSelections(ctx context.Context, filter selection.QueryFilter, orderings ...core.DBOrdering) ([]selection.Selection, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.StudentID != "" {
		where = append(where, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.Faculty != "" {
		where = append(where, "faculty = ?")
		args = append(args, filter.Faculty)
	}
	if filter.Subject != "" {
		where = append(where, "subject = ?")
		args = append(args, filter.Subject)
	}
	if filter.Year != 0 {
		where = append(where, "year = ?")
		args = append(args, filter.Year)
	}

	q := "SELECT " + selectionColumns + " FROM selection"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + orderBy(orderings)

	sels := make([]selection.Selection, 0)
	if err := repo.db.SelectContext(ctx, &sels, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting selections")
	}
	for i := range sels {
		sels[i].CreatedAt = sels[i].CreatedAt.UTC()
	}
	return sels, nil
}

func (repo *selectionRepository) DeleteAllSelections(ctx context.Context) error {
	_, err := repo.db.ExecContext(ctx, "DELETE FROM selection")
	return errors.Wrap(err, "deleting selections")
}

// orderBy builds a safe ORDER BY clause; unknown fields are ignored.
func orderBy(orderings []core.DBOrdering) string {
	clauses := make([]string, 0, len(orderings)+1)
	for _, ord := range orderings {
		for _, f := range selection.OrderingFields {
			if ord.Field == f {
				clauses = append(clauses, ord.String())
				break
			}
		}
	}
	if len(clauses) == 0 {
		clauses = append(clauses, "created_at ASC")
	}
	// stable results for equal keys
	clauses = append(clauses, "id ASC")
	return strings.Join(clauses, ", ")
}
