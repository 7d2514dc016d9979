package csvstore

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// data files
const (
	SelectionsFile   = "student_choices.csv"
	SubjectsFile     = "subjects.csv"
	FacultyFile      = "faculty_list.csv"
	AvailabilityFile = "faculty_availability.csv"
)

var (
	selectionHeaders    = []string{"student_id", "year", "subject", "faculty", "timestamp", "student_name", "section", "subject_name", "id"}
	subjectHeaders      = []string{"Year", "Subject_Code", "Subject_Name"}
	facultyHeaders      = []string{"Faculty_Name"}
	availabilityHeaders = []string{"Faculty_Name", "Subject_Code", "Subject_Name", "Available"}
)

// DB is a directory of CSV files, one per table.
type DB struct {
	dir string

	selMu sync.RWMutex
	catMu sync.RWMutex
}

// Open makes sure `dir` and all data files exist, creating files with their headers if needed.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating data dir")
	}
	db := &DB{dir: dir}
	files := map[string][]string{
		SelectionsFile:   selectionHeaders,
		SubjectsFile:     subjectHeaders,
		FacultyFile:      facultyHeaders,
		AvailabilityFile: availabilityHeaders,
	}
	for name, headers := range files {
		if err := ensureFile(db.path(name), headers); err != nil {
			return nil, errors.Wrapf(err, "creating %s", name)
		}
	}
	return db, nil
}

func (db *DB) Dir() string { return db.dir }

func (db *DB) path(name string) string {
	return filepath.Join(db.dir, name)
}

func ensureFile(path string, headers []string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return writeAll(path, headers, nil)
}

// writeAll replaces the file content atomically.
func writeAll(path string, headers []string, records [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := csv.NewWriter(tmp)
	if err = w.Write(headers); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = w.WriteAll(records); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// appendAll appends records to the file, writing the headers first if the file is empty.
// Records must follow the column order of the file's own headers, see readHeaders.
func appendAll(path string, headers []string, records [][]string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	if fi.Size() == 0 {
		if err = w.Write(headers); err != nil {
			_ = f.Close()
			return err
		}
	} else if err = endLine(f, fi.Size()); err != nil {
		_ = f.Close()
		return err
	}
	if err = w.WriteAll(records); err != nil { // flushes
		_ = f.Close()
		return err
	}
	return f.Close()
}

// endLine terminates the last line of a file edited by hand, so that appended records start on their own line.
func endLine(f *os.File, size int64) error {
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return err
	}
	if last[0] == '\n' {
		return nil
	}
	_, err := f.Write([]byte("\n"))
	return err
}

// readHeaders returns the header row of the file, or nil if it is missing or empty.
func readHeaders(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	headers, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	return headers, err
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

// layout lays `fields` out in the order of `headers`, keyed by normalized header. Unknown columns stay blank.
func layout(headers []string, fields map[string]string) []string {
	rec := make([]string, len(headers))
	for i, h := range headers {
		rec[i] = fields[normalizeHeader(h)]
	}
	return rec
}

type table struct {
	index   map[string]int
	records [][]string
}

func (t table) get(record []string, cols ...string) string {
	for _, col := range cols {
		if i, ok := t.index[col]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
	}
	return ""
}

// readAll reads a whole CSV file. A missing file reads as an empty table.
func readAll(path string) (table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return table{}, nil
		}
		return table{}, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	headers, err := r.Read()
	if err == io.EOF {
		return table{}, nil
	}
	if err != nil {
		return table{}, err
	}

	t := table{index: make(map[string]int, len(headers))}
	for i, h := range headers {
		h = normalizeHeader(h)
		if _, ok := t.index[h]; !ok {
			t.index[h] = i
		}
	}
	if t.records, err = r.ReadAll(); err != nil {
		return table{}, err
	}
	return t, nil
}
