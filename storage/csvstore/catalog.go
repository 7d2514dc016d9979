package csvstore

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/facultypref/core/catalog"
)

type catalogRepository struct {
	db *DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) read(name string) (table, error) {
	repo.db.catMu.RLock()
	defer repo.db.catMu.RUnlock()
	t, err := readAll(repo.db.path(name))
	return t, errors.Wrap(err, "reading "+name)
}

func (repo *catalogRepository) write(name string, headers []string, records [][]string) error {
	repo.db.catMu.Lock()
	defer repo.db.catMu.Unlock()
	return errors.Wrap(writeAll(repo.db.path(name), headers, records), "writing "+name)
}

func (repo *catalogRepository) ReplaceSubjects(_ context.Context, subjects []catalog.Subject) error {
	records := make([][]string, 0, len(subjects))
	for _, s := range subjects {
		records = append(records, []string{strconv.Itoa(s.Year), s.Code, s.Name})
	}
	return repo.write(SubjectsFile, subjectHeaders, records)
}

func (repo *catalogRepository) QuerySubjects(_ context.Context) ([]catalog.Subject, error) {
	t, err := repo.read(SubjectsFile)
	if err != nil {
		return nil, err
	}
	subjects := make([]catalog.Subject, 0, len(t.records))
	for _, rec := range t.records {
		year, err := strconv.Atoi(t.get(rec, "year"))
		if err != nil {
			continue
		}
		subjects = append(subjects, catalog.Subject{
			Year: year,
			Code: t.get(rec, "subject_code"),
			Name: t.get(rec, "subject_name"),
		})
	}
	return subjects, nil
}

func (repo *catalogRepository) ReplaceFaculty(_ context.Context, faculty []catalog.Faculty) error {
	records := make([][]string, 0, len(faculty))
	for _, f := range faculty {
		records = append(records, []string{f.Name})
	}
	return repo.write(FacultyFile, facultyHeaders, records)
}

func (repo *catalogRepository) QueryFaculty(_ context.Context) ([]catalog.Faculty, error) {
	t, err := repo.read(FacultyFile)
	if err != nil {
		return nil, err
	}
	faculty := make([]catalog.Faculty, 0, len(t.records))
	for _, rec := range t.records {
		if name := t.get(rec, "faculty_name"); name != "" {
			faculty = append(faculty, catalog.Faculty{Name: name})
		}
	}
	return faculty, nil
}

func (repo *catalogRepository) QueryAvailability(_ context.Context) ([]catalog.Availability, error) {
	t, err := repo.read(AvailabilityFile)
	if err != nil {
		return nil, err
	}
	return parseAvailability(t), nil
}

func (repo *catalogRepository) SaveAvailability(_ context.Context, avail ...catalog.Availability) error {
	repo.db.catMu.Lock()
	defer repo.db.catMu.Unlock()

	path := repo.db.path(AvailabilityFile)
	t, err := readAll(path)
	if err != nil {
		return errors.Wrap(err, "reading "+AvailabilityFile)
	}
	merged := catalog.MergeAvailability(parseAvailability(t), avail)
	return errors.Wrap(writeAll(path, availabilityHeaders, availabilityRecords(merged)), "writing "+AvailabilityFile)
}

func (repo *catalogRepository) ReplaceAvailability(_ context.Context, avail []catalog.Availability) error {
	return repo.write(AvailabilityFile, availabilityHeaders, availabilityRecords(avail))
}

func parseAvailability(t table) []catalog.Availability {
	avail := make([]catalog.Availability, 0, len(t.records))
	for _, rec := range t.records {
		avail = append(avail, catalog.Availability{
			Faculty:     t.get(rec, "faculty_name"),
			SubjectCode: t.get(rec, "subject_code"),
			SubjectName: t.get(rec, "subject_name"),
			Available:   strings.EqualFold(t.get(rec, "available"), "yes"),
		})
	}
	return avail
}

func availabilityRecords(avail []catalog.Availability) [][]string {
	records := make([][]string, 0, len(avail))
	for _, a := range avail {
		yesNo := "No"
		if a.Available {
			yesNo = "Yes"
		}
		records = append(records, []string{a.Faculty, a.SubjectCode, a.SubjectName, yesNo})
	}
	return records
}
