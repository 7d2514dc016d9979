package catalog

import (
	"github.com/trezcool/facultypref/core"
)

// Subject is a course of the curriculum of a given year.
type Subject struct {
	Year int    `json:"year" db:"year"`
	Code string `json:"code" db:"code"`
	Name string `json:"name" db:"name"`
}

type Faculty struct {
	Name string `json:"name" db:"name"`
}

// Availability tells whether a faculty member can take a subject.
type Availability struct {
	Faculty     string `json:"faculty" db:"faculty" validate:"notblank"`
	SubjectCode string `json:"subject_code" db:"subject_code" validate:"notblank"`
	SubjectName string `json:"subject_name" db:"subject_name"`
	Available   bool   `json:"available" db:"available"`
}

func (a *Availability) Clean() {
	a.Faculty = core.CleanString(a.Faculty)
	a.SubjectCode = core.CleanString(a.SubjectCode)
	a.SubjectName = core.CleanString(a.SubjectName)
}

// AvailabilityUpdate is what a faculty member submits for their own subjects.
type AvailabilityUpdate struct {
	Subjects []SubjectAvailability `json:"subjects" validate:"required,dive"`
}

type SubjectAvailability struct {
	SubjectCode string `json:"subject_code" validate:"notblank"`
	Available   bool   `json:"available"`
}

// AvailabilityPivot is a faculty x subject matrix of availability.
type AvailabilityPivot struct {
	Faculty  []string                   `json:"faculty"`
	Subjects []string                   `json:"subjects"`
	Matrix   map[string]map[string]bool `json:"matrix"` // {faculty: {subject_code: available}}
}

// Warning is a non-blocking import notice.
type Warning struct {
	Row     int    `json:"row,omitempty"`
	Message string `json:"message"`
}

// MergeAvailability updates or appends each entry of `updates`, keyed by (faculty, subject code).
func MergeAvailability(current, updates []Availability) []Availability {
	merged := append([]Availability(nil), current...)
	for _, u := range updates {
		found := false
		for i, a := range merged {
			if a.Faculty == u.Faculty && a.SubjectCode == u.SubjectCode {
				merged[i] = u
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, u)
		}
	}
	return merged
}
