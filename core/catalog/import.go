package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/facultypref/core"
)

// subjects.csv headers
var subjectHeaders = []string{"Year", "Subject_Code", "Subject_Name"}

// ParseSubjects reads a subjects CSV with the headers Year, Subject_Code & Subject_Name (any order).
func ParseSubjects(r io.Reader) ([]Subject, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, core.NewValidationError(errors.New("empty file"), core.FieldError{Field: "file", Error: "empty file"})
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading headers")
	}
	idx := headerIndex(headers)

	var missing []string
	for _, h := range subjectHeaders {
		if _, ok := idx[strings.ToLower(h)]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		msg := "missing columns: " + strings.Join(missing, ", ")
		return nil, core.NewValidationError(errors.New(msg), core.FieldError{Field: "file", Error: msg})
	}

	var (
		subjects []Subject
		fldErrs  []core.FieldError
		seen     = make(map[string]struct{})
	)
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading row %d", row)
		}
		if isBlank(record) {
			continue
		}

		rawYear := cell(record, idx, "year")
		year, err := strconv.Atoi(rawYear)
		if err != nil || !validYear(year) {
			fldErrs = append(fldErrs, core.FieldError{Field: fmt.Sprintf("row %d", row), Error: fmt.Sprintf("invalid year %q", rawYear)})
			continue
		}
		code := cell(record, idx, "subject_code")
		if code == "" {
			fldErrs = append(fldErrs, core.FieldError{Field: fmt.Sprintf("row %d", row), Error: "subject code is required"})
			continue
		}
		key := strconv.Itoa(year) + "/" + code
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		subjects = append(subjects, Subject{Year: year, Code: code, Name: cell(record, idx, "subject_name")})
	}

	if len(fldErrs) > 0 {
		return nil, core.NewValidationError(errors.New("invalid subjects file"), fldErrs...)
	}
	return subjects, nil
}

// ParseFaculty reads a faculty list CSV.
// The names are taken from the first column whose header contains "name", else from the first column.
func ParseFaculty(r io.Reader) ([]Faculty, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, core.NewValidationError(errors.New("empty file"), core.FieldError{Field: "file", Error: "empty file"})
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading headers")
	}

	col := 0
	for i, h := range headers {
		if strings.Contains(strings.ToLower(h), "name") {
			col = i
			break
		}
	}

	var (
		faculty []Faculty
		seen    = make(map[string]struct{})
	)
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading row %d", row)
		}
		if col >= len(record) {
			continue
		}
		name := core.CleanString(record[col])
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		faculty = append(faculty, Faculty{Name: name})
	}
	return faculty, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.ToLower(core.CleanString(strings.TrimPrefix(h, "\ufeff")))
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}
	return idx
}

func cell(record []string, idx map[string]int, header string) string {
	i, ok := idx[header]
	if !ok || i >= len(record) {
		return ""
	}
	return core.CleanString(record[i])
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
