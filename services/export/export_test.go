package exportsvc

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/facultypref/core/selection"
)

var (
	t0   = time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	sels = []selection.Selection{
		{ID: "1", StudentID: "S1", StudentName: "Doe, Jane", Year: 1, Section: "A", Subject: "MATH", SubjectName: "Mathematics", Faculty: "Alice", CreatedAt: t0},
		{ID: "2", StudentID: "S2", Year: 1, Subject: "MATH", SubjectName: "Mathematics", Faculty: "Bob", CreatedAt: t0.Add(time.Minute)},
		{ID: "3", StudentID: "S3", Year: 2, Subject: "PHY", Faculty: "Alice", CreatedAt: t0.Add(2 * time.Minute)},
	}
)

func TestWriteSelectionsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSelectionsCSV(&buf, sels[:2]))

	want := "Regd_No,Name,Year,Section,Subject_Code,Subject_Name,Faculty_Selected,Timestamp\n" +
		"S1,\"Doe, Jane\",1,A,MATH,Mathematics,Alice,2024-07-01T09:00:00Z\n" +
		"S2,,1,,MATH,Mathematics,Bob,2024-07-01T09:01:00Z\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, WriteSelectionsCSV(&buf, nil))
	assert.Equal(t, "Regd_No,Name,Year,Section,Subject_Code,Subject_Name,Faculty_Selected,Timestamp\n", buf.String())
}

func TestWriteSummaryCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, selection.Summarize(sels)))

	want := "Subject_Code,Subject_Name,Faculty_Selected,No_of_Students\n" +
		"MATH,Mathematics,Alice,1\n" +
		"MATH,Mathematics,Bob,1\n" +
		"PHY,,Alice,1\n"
	assert.Equal(t, want, buf.String())
}

func TestWritePivotXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePivotXLSX(&buf, selection.NewPivot(sels), selection.Summarize(sels)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{pivotSheet, summarySheet}, f.GetSheetList())

	rows, err := f.GetRows(pivotSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Subject_Code", "Alice", "Bob"},
		{"MATH", "1", "1"},
		{"PHY", "1", "0"},
	}, rows)

	rows, err = f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, summaryHeaders, rows[0])
	assert.Equal(t, []string{"PHY", "", "Alice", "1"}, rows[3])
}

func TestWriteSelectionsXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSelectionsXLSX(&buf, sels))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(selectionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, selectionHeaders, rows[0])
	assert.Equal(t, []string{"S1", "Doe, Jane", "1", "A", "MATH", "Mathematics", "Alice", "2024-07-01T09:00:00Z"}, rows[1])
}
