package csvstore

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/facultypref/core/selection"
)

// choices file columns, current name first then legacy aliases
var (
	colStudentID   = []string{"student_id", "regd_no"}
	colStudentName = []string{"student_name", "name"}
	colSubject     = []string{"subject", "subject_code"}
	colFaculty     = []string{"faculty", "faculty_selected"}
	colCreatedAt   = []string{"timestamp", "created_at"}
)

type selectionRepository struct {
	db *DB
}

var _ selection.Store = (*selectionRepository)(nil) // interface compliance check

func NewSelectionRepository(db *DB) selection.Store {
	return &selectionRepository{db: db}
}

// AppendSelections appends to the choices file following its own header row,
// so rows added to a file with legacy headers land in the right columns.
func (repo *selectionRepository) AppendSelections(_ context.Context, sels ...selection.Selection) error {
	if len(sels) == 0 {
		return nil
	}
	path := repo.db.path(SelectionsFile)

	repo.db.selMu.Lock()
	defer repo.db.selMu.Unlock()

	headers, err := readHeaders(path)
	if err != nil {
		return errors.Wrap(err, "reading headers of "+SelectionsFile)
	}
	if len(headers) == 0 {
		headers = selectionHeaders
	}
	records := make([][]string, 0, len(sels))
	for _, sel := range sels {
		records = append(records, layout(headers, selectionFields(sel)))
	}
	return errors.Wrap(appendAll(path, headers, records), "appending to "+SelectionsFile)
}

func selectionFields(sel selection.Selection) map[string]string {
	fields := map[string]string{
		"id":           sel.ID,
		"year":         strconv.Itoa(sel.Year),
		"section":      sel.Section,
		"subject_name": sel.SubjectName,
	}
	set := func(cols []string, value string) {
		for _, col := range cols {
			fields[col] = value
		}
	}
	set(colStudentID, sel.StudentID)
	set(colStudentName, sel.StudentName)
	set(colSubject, sel.Subject)
	set(colFaculty, sel.Faculty)
	set(colCreatedAt, sel.CreatedAt.UTC().Format(time.RFC3339Nano))
	return fields
}

// QueryAllSelections reads every row of the choices file.
// Files written with the legacy headers (Regd_No, Subject_Code, Faculty_Selected...) are understood too.
// Unparsable years or timestamps are read as zero values so that the row still counts.
func (repo *selectionRepository) QueryAllSelections(_ context.Context) ([]selection.Selection, error) {
	repo.db.selMu.RLock()
	t, err := readAll(repo.db.path(SelectionsFile))
	repo.db.selMu.RUnlock()
	if err != nil {
		return nil, errors.Wrapf(selection.ErrStoreUnavailable, "reading %s: %v", SelectionsFile, err)
	}

	sels := make([]selection.Selection, 0, len(t.records))
	for _, rec := range t.records {
		year, _ := strconv.Atoi(t.get(rec, "year"))
		createdAt, _ := time.Parse(time.RFC3339Nano, t.get(rec, colCreatedAt...))
		sels = append(sels, selection.Selection{
			ID:          t.get(rec, "id"),
			StudentID:   t.get(rec, colStudentID...),
			StudentName: t.get(rec, colStudentName...),
			Year:        year,
			Section:     t.get(rec, "section"),
			Subject:     t.get(rec, colSubject...),
			SubjectName: t.get(rec, "subject_name"),
			Faculty:     t.get(rec, colFaculty...),
			CreatedAt:   createdAt.UTC(),
		})
	}
	return sels, nil
}

// DeleteAllSelections truncates the choices file, keeping its headers.
func (repo *selectionRepository) DeleteAllSelections(_ context.Context) error {
	repo.db.selMu.Lock()
	defer repo.db.selMu.Unlock()
	return errors.Wrap(writeAll(repo.db.path(SelectionsFile), selectionHeaders, nil), "truncating "+SelectionsFile)
}
