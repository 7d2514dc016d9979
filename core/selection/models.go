package selection

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/facultypref/core"
)

const (
	MinYear = 1
	MaxYear = 4
)

// Selection is one (student, subject, faculty) choice persisted as a row.
type Selection struct {
	ID          string    `json:"id" db:"id"`
	StudentID   string    `json:"student_id" db:"student_id"`
	StudentName string    `json:"student_name,omitempty" db:"student_name"`
	Year        int       `json:"year" db:"year"`
	Section     string    `json:"section,omitempty" db:"section"`
	Subject     string    `json:"subject" db:"subject"`
	SubjectName string    `json:"subject_name,omitempty" db:"subject_name"`
	Faculty     string    `json:"faculty" db:"faculty"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
}

// Choice is a single (subject, faculty) pair of a submission.
type Choice struct {
	Subject     string `json:"subject" validate:"notblank,max=64"`
	SubjectName string `json:"subject_name" validate:"max=255"`
	Faculty     string `json:"faculty" validate:"notblank,max=255"`
}

// NewSubmission contains what a student submits through the preference form.
type NewSubmission struct {
	StudentID   string   `json:"student_id" validate:"notblank,max=64"`
	StudentName string   `json:"student_name" validate:"max=255"`
	Year        int      `json:"year" validate:"required,year"`
	Section     string   `json:"section" validate:"max=32"`
	Choices     []Choice `json:"choices" validate:"required,min=1,dive"`
}

func (ns *NewSubmission) Clean() {
	ns.StudentID = core.CleanString(ns.StudentID)
	ns.StudentName = core.CleanString(ns.StudentName)
	ns.Section = core.CleanString(ns.Section)
	for i := range ns.Choices {
		ns.Choices[i].Subject = core.CleanString(ns.Choices[i].Subject)
		ns.Choices[i].SubjectName = core.CleanString(ns.Choices[i].SubjectName)
		ns.Choices[i].Faculty = core.CleanString(ns.Choices[i].Faculty)
	}
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.Clean()
	return validate.Struct(ns)
}

// QueryFilter applies an AND on all set fields.
type QueryFilter struct {
	StudentID string `query:"student_id"`
	Faculty   string `query:"faculty"`
	Subject   string `query:"subject"`
	Year      int    `query:"year"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Faculty = core.CleanString(qf.Faculty)
	qf.Subject = core.CleanString(qf.Subject)
}

func (qf QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.Faculty == "" && qf.Subject == "" && qf.Year == 0
}

func (qf QueryFilter) Match(sel Selection) bool {
	return (qf.StudentID == "" || sel.StudentID == qf.StudentID) &&
		(qf.Faculty == "" || sel.Faculty == qf.Faculty) &&
		(qf.Subject == "" || sel.Subject == qf.Subject) &&
		(qf.Year == 0 || sel.Year == qf.Year)
}

// Orderable fields of a Selection.
var OrderingFields = []string{"created_at", "student_id", "year", "subject", "faculty"}
