package catalog

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/facultypref/core"
	"github.com/trezcool/facultypref/core/selection"
)

var (
	uniqueCodeTag  = "uniquecode"
	uniqueCodeText = "subject code listed more than once"

	// faculty names at least this similar are reported as possible duplicates
	facultyMaxSim = .85
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(availabilityUpdateValidation, AvailabilityUpdate{})
	core.RegisterCustomTranslation(validate, translator, uniqueCodeTag, uniqueCodeText)
}

func availabilityUpdateValidation(sl validator.StructLevel) {
	au, ok := sl.Current().Interface().(AvailabilityUpdate)
	if !ok {
		return
	}
	seen := make(map[string]struct{}, len(au.Subjects))
	for _, s := range au.Subjects {
		if _, dup := seen[s.SubjectCode]; dup {
			sl.ReportError(au.Subjects, "subjects", "Subjects", uniqueCodeTag, s.SubjectCode)
			return
		}
		seen[s.SubjectCode] = struct{}{}
	}
}

func validYear(year int) bool {
	return year >= selection.MinYear && year <= selection.MaxYear
}

// similarFaculty reports pairs of faculty names that look like the same person
// spelled differently, e.g. "Dr. A. Rao" and "Dr A Rao".
func similarFaculty(faculty []Faculty) []Warning {
	var warnings []Warning
	for i := 0; i < len(faculty); i++ {
		a := strings.ToLower(faculty[i].Name)
		for j := i + 1; j < len(faculty); j++ {
			b := strings.ToLower(faculty[j].Name)
			ratio := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
			if ratio >= facultyMaxSim {
				warnings = append(warnings, Warning{
					Row:     j + 2, // 1-based, after the header
					Message: "\"" + faculty[j].Name + "\" looks like a duplicate of \"" + faculty[i].Name + "\"",
				})
			}
		}
	}
	return warnings
}
