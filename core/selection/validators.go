package selection

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/facultypref/core"
)

var (
	yearTag  = "year"
	yearText = "year must be between 1 and 4"

	uniqueSubjectTag  = "uniquesubject"
	uniqueSubjectText = "subject chosen more than once"

	topTag  = "top"
	topText = "top must be a positive number"
)

// InitValidators registers the selection validators on `validate`.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(yearTag, yearValidation)
	core.RegisterCustomTranslation(validate, translator, yearTag, yearText)

	_ = validate.RegisterValidation(topTag, topValidation)
	core.RegisterCustomTranslation(validate, translator, topTag, topText)

	validate.RegisterStructValidation(submissionStructValidation, NewSubmission{})
	core.RegisterCustomTranslation(validate, translator, uniqueSubjectTag, uniqueSubjectText)
}

// yearValidation checks that the year of study is in [MinYear, MaxYear].
func yearValidation(fl validator.FieldLevel) bool {
	year := fl.Field().Int()
	return year >= MinYear && year <= MaxYear
}

func topValidation(fl validator.FieldLevel) bool {
	return fl.Field().Int() >= 0
}

// submissionStructValidation allows a single faculty choice per subject.
func submissionStructValidation(sl validator.StructLevel) {
	ns, ok := sl.Current().Interface().(NewSubmission)
	if !ok {
		return
	}
	seen := make(map[string]struct{}, len(ns.Choices))
	for _, c := range ns.Choices {
		if c.Subject == "" {
			continue
		}
		if _, dup := seen[c.Subject]; dup {
			sl.ReportError(ns.Choices, "choices", "Choices", uniqueSubjectTag, c.Subject)
			return
		}
		seen[c.Subject] = struct{}{}
	}
}
