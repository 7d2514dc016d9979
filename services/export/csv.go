package exportsvc

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/facultypref/core/selection"
)

var (
	selectionHeaders = []string{"Regd_No", "Name", "Year", "Section", "Subject_Code", "Subject_Name", "Faculty_Selected", "Timestamp"}
	summaryHeaders   = []string{"Subject_Code", "Subject_Name", "Faculty_Selected", "No_of_Students"}
)

func selectionRecord(sel selection.Selection) []string {
	return []string{
		sel.StudentID,
		sel.StudentName,
		strconv.Itoa(sel.Year),
		sel.Section,
		sel.Subject,
		sel.SubjectName,
		sel.Faculty,
		sel.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func summaryRecord(row selection.SummaryRow) []string {
	return []string{row.Subject, row.SubjectName, row.Faculty, strconv.Itoa(row.Students)}
}

// WriteSelectionsCSV writes the selections table as CSV.
func WriteSelectionsCSV(w io.Writer, sels []selection.Selection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(selectionHeaders); err != nil {
		return errors.Wrap(err, "writing headers")
	}
	for _, sel := range sels {
		if err := cw.Write(selectionRecord(sel)); err != nil {
			return errors.Wrap(err, "writing selection")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}

// WriteSummaryCSV writes the per subject & faculty counts as CSV.
func WriteSummaryCSV(w io.Writer, rows []selection.SummaryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeaders); err != nil {
		return errors.Wrap(err, "writing headers")
	}
	for _, row := range rows {
		if err := cw.Write(summaryRecord(row)); err != nil {
			return errors.Wrap(err, "writing summary")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}
