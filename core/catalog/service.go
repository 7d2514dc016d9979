package catalog

import (
	"context"
	"io"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/facultypref/core"
)

var (
	// errors
	ErrNotFound = errors.New("faculty not found")
)

type (
	Repository interface {
		ReplaceSubjects(ctx context.Context, subjects []Subject) error
		QuerySubjects(ctx context.Context) ([]Subject, error)
		ReplaceFaculty(ctx context.Context, faculty []Faculty) error
		QueryFaculty(ctx context.Context) ([]Faculty, error)
		QueryAvailability(ctx context.Context) ([]Availability, error)
		// SaveAvailability updates or creates the availability of each (faculty, subject code).
		SaveAvailability(ctx context.Context, avail ...Availability) error
		ReplaceAvailability(ctx context.Context, avail []Availability) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Subjects returns the subjects of `year` ordered by code, or all subjects when year is 0.
func (svc *Service) Subjects(ctx context.Context, year int) ([]Subject, error) {
	all, err := svc.repo.QuerySubjects(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]Subject, 0, len(all))
	for _, s := range all {
		if year == 0 || s.Year == year {
			subjects = append(subjects, s)
		}
	}
	sort.SliceStable(subjects, func(i, j int) bool {
		if subjects[i].Year != subjects[j].Year {
			return subjects[i].Year < subjects[j].Year
		}
		return subjects[i].Code < subjects[j].Code
	})
	return subjects, nil
}

func (svc *Service) Faculty(ctx context.Context) ([]Faculty, error) {
	faculty, err := svc.repo.QueryFaculty(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying faculty")
	}
	if faculty == nil {
		faculty = []Faculty{}
	}
	sort.SliceStable(faculty, func(i, j int) bool { return faculty[i].Name < faculty[j].Name })
	return faculty, nil
}

// HasFaculty reports whether `name` is in the faculty list.
func (svc *Service) HasFaculty(ctx context.Context, name string) (bool, error) {
	faculty, err := svc.repo.QueryFaculty(ctx)
	if err != nil {
		return false, errors.Wrap(err, "querying faculty")
	}
	name = core.CleanString(name)
	for _, f := range faculty {
		if f.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// ImportSubjects replaces the subject list with the content of a subjects CSV.
func (svc *Service) ImportSubjects(ctx context.Context, r io.Reader) ([]Subject, error) {
	subjects, err := ParseSubjects(r)
	if err != nil {
		return nil, err
	}
	if err = svc.repo.ReplaceSubjects(ctx, subjects); err != nil {
		return nil, errors.Wrap(err, "replacing subjects")
	}
	if err = svc.initAvailability(ctx); err != nil {
		return nil, err
	}
	return subjects, nil
}

// ImportFaculty replaces the faculty list with the content of a faculty CSV.
// Names that look alike are returned as warnings; they are imported anyway.
func (svc *Service) ImportFaculty(ctx context.Context, r io.Reader) ([]Faculty, []Warning, error) {
	faculty, err := ParseFaculty(r)
	if err != nil {
		return nil, nil, err
	}
	if err = svc.repo.ReplaceFaculty(ctx, faculty); err != nil {
		return nil, nil, errors.Wrap(err, "replacing faculty")
	}
	if err = svc.initAvailability(ctx); err != nil {
		return nil, nil, err
	}
	return faculty, similarFaculty(faculty), nil
}

// Availability returns the availability entries, only those of `faculty` if set.
// A known faculty member without entries is first made available for every subject.
func (svc *Service) Availability(ctx context.Context, faculty string) ([]Availability, error) {
	all, err := svc.repo.QueryAvailability(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying availability")
	}
	faculty = core.CleanString(faculty)
	avail := make([]Availability, 0, len(all))
	for _, a := range all {
		if faculty == "" || a.Faculty == faculty {
			avail = append(avail, a)
		}
	}
	if faculty != "" && len(avail) == 0 {
		if avail, err = svc.defaultAvailability(ctx, faculty); err != nil {
			return nil, err
		}
	}
	sort.SliceStable(avail, func(i, j int) bool {
		if avail[i].Faculty != avail[j].Faculty {
			return avail[i].Faculty < avail[j].Faculty
		}
		return avail[i].SubjectCode < avail[j].SubjectCode
	})
	return avail, nil
}

// UpdateAvailability saves the availability of a faculty member for the given subjects.
func (svc *Service) UpdateAvailability(ctx context.Context, faculty string, au AvailabilityUpdate) ([]Availability, error) {
	faculty = core.CleanString(faculty)
	ok, err := svc.HasFaculty(ctx, faculty)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	for i := range au.Subjects {
		au.Subjects[i].SubjectCode = core.CleanString(au.Subjects[i].SubjectCode)
	}
	if err = svc.validate.Struct(au); err != nil {
		return nil, err
	}

	// seeds the defaults of a first-time editor
	if _, err = svc.Availability(ctx, faculty); err != nil {
		return nil, err
	}

	subjects, err := svc.Subjects(ctx, 0)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(subjects))
	for _, s := range subjects {
		names[s.Code] = s.Name
	}

	avail := make([]Availability, 0, len(au.Subjects))
	var fldErrs []core.FieldError
	for _, s := range au.Subjects {
		name, known := names[s.SubjectCode]
		if !known {
			fldErrs = append(fldErrs, core.FieldError{Field: s.SubjectCode, Error: "unknown subject"})
			continue
		}
		avail = append(avail, Availability{
			Faculty:     faculty,
			SubjectCode: s.SubjectCode,
			SubjectName: name,
			Available:   s.Available,
		})
	}
	if len(fldErrs) > 0 {
		return nil, core.NewValidationError(errors.New("unknown subjects"), fldErrs...)
	}

	if err = svc.repo.SaveAvailability(ctx, avail...); err != nil {
		return nil, errors.Wrap(err, "saving availability")
	}
	return svc.Availability(ctx, faculty)
}

// ResetAvailability marks every faculty member available for every subject.
func (svc *Service) ResetAvailability(ctx context.Context) ([]Availability, error) {
	faculty, err := svc.Faculty(ctx)
	if err != nil {
		return nil, err
	}
	subjects, err := svc.Subjects(ctx, 0)
	if err != nil {
		return nil, err
	}

	avail := make([]Availability, 0, len(faculty)*len(subjects))
	for _, f := range faculty {
		avail = append(avail, allAvailable(f.Name, subjects)...)
	}
	if err = svc.repo.ReplaceAvailability(ctx, avail); err != nil {
		return nil, errors.Wrap(err, "replacing availability")
	}
	return avail, nil
}

// initAvailability resets the availability once both lists are known, unless some already exists.
func (svc *Service) initAvailability(ctx context.Context) error {
	avail, err := svc.repo.QueryAvailability(ctx)
	if err != nil {
		return errors.Wrap(err, "querying availability")
	}
	if len(avail) > 0 {
		return nil
	}
	_, err = svc.ResetAvailability(ctx)
	return err
}

func (svc *Service) defaultAvailability(ctx context.Context, faculty string) ([]Availability, error) {
	ok, err := svc.HasFaculty(ctx, faculty)
	if err != nil || !ok {
		return []Availability{}, err
	}
	subjects, err := svc.Subjects(ctx, 0)
	if err != nil {
		return nil, err
	}
	avail := allAvailable(faculty, subjects)
	if len(avail) == 0 {
		return avail, nil
	}
	if err = svc.repo.SaveAvailability(ctx, avail...); err != nil {
		return nil, errors.Wrap(err, "saving default availability")
	}
	return avail, nil
}

func allAvailable(faculty string, subjects []Subject) []Availability {
	avail := make([]Availability, 0, len(subjects))
	for _, s := range subjects {
		avail = append(avail, Availability{Faculty: faculty, SubjectCode: s.Code, SubjectName: s.Name, Available: true})
	}
	return avail
}

func (svc *Service) AvailabilityPivot(ctx context.Context) (AvailabilityPivot, error) {
	avail, err := svc.Availability(ctx, "")
	if err != nil {
		return AvailabilityPivot{}, err
	}

	pivot := AvailabilityPivot{Matrix: make(map[string]map[string]bool)}
	subjects := make(map[string]struct{})
	for _, a := range avail {
		row, ok := pivot.Matrix[a.Faculty]
		if !ok {
			row = make(map[string]bool)
			pivot.Matrix[a.Faculty] = row
			pivot.Faculty = append(pivot.Faculty, a.Faculty)
		}
		row[a.SubjectCode] = a.Available
		if _, ok = subjects[a.SubjectCode]; !ok {
			subjects[a.SubjectCode] = struct{}{}
			pivot.Subjects = append(pivot.Subjects, a.SubjectCode)
		}
	}
	sort.Strings(pivot.Subjects)
	return pivot, nil
}
