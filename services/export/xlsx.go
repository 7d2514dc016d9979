package exportsvc

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/facultypref/core/selection"
)

const (
	pivotSheet      = "Pivot"
	summarySheet    = "Summary"
	selectionsSheet = "Selections"
)

// WritePivotXLSX writes an Excel workbook with the subject x faculty pivot and the summary.
func WritePivotXLSX(w io.Writer, pivot selection.Pivot, summary []selection.SummaryRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", pivotSheet); err != nil {
		return errors.Wrap(err, "naming pivot sheet")
	}

	header := make([]interface{}, 0, len(pivot.Faculty)+1)
	header = append(header, "Subject_Code")
	for _, fac := range pivot.Faculty {
		header = append(header, fac)
	}
	if err := setRow(f, pivotSheet, 1, header); err != nil {
		return err
	}
	for i, subject := range pivot.Subjects {
		row := make([]interface{}, 0, len(pivot.Faculty)+1)
		row = append(row, subject)
		for _, fac := range pivot.Faculty {
			row = append(row, pivot.Count(subject, fac))
		}
		if err := setRow(f, pivotSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return errors.Wrap(err, "creating summary sheet")
	}
	if err := setRow(f, summarySheet, 1, toRow(summaryHeaders)); err != nil {
		return err
	}
	for i, r := range summary {
		if err := setRow(f, summarySheet, i+2, []interface{}{r.Subject, r.SubjectName, r.Faculty, r.Students}); err != nil {
			return err
		}
	}

	return errors.Wrap(f.Write(w), "writing workbook")
}

// WriteSelectionsXLSX writes the selections table as an Excel workbook.
func WriteSelectionsXLSX(w io.Writer, sels []selection.Selection) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", selectionsSheet); err != nil {
		return errors.Wrap(err, "naming selections sheet")
	}
	if err := setRow(f, selectionsSheet, 1, toRow(selectionHeaders)); err != nil {
		return err
	}
	for i, sel := range sels {
		if err := setRow(f, selectionsSheet, i+2, toRow(selectionRecord(sel))); err != nil {
			return err
		}
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.Wrap(err, "computing cell name")
	}
	return errors.Wrapf(f.SetSheetRow(sheet, cell, &values), "writing %s row %d", sheet, row)
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
