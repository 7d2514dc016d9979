package selection_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/facultypref/core"
	"github.com/trezcool/facultypref/core/selection"
	logsvc "github.com/trezcool/facultypref/services/logger"
	dummydb "github.com/trezcool/facultypref/storage/database/dummy"
	"github.com/trezcool/facultypref/tests"
)

// spyRenderer records the charts it is asked to draw.
type spyRenderer struct {
	titles []string
	counts [][]selection.FacultyCount
}

func (r *spyRenderer) RenderBarChart(w io.Writer, title string, counts []selection.FacultyCount) error {
	r.titles = append(r.titles, title)
	r.counts = append(r.counts, counts)
	_, err := fmt.Fprintf(w, "<%s>", title)
	return err
}

// plainStore only implements selection.Store, forcing the in-service filtering.
type plainStore struct {
	rows []selection.Selection
	err  error
}

func (s *plainStore) AppendSelections(_ context.Context, sels ...selection.Selection) error {
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, sels...)
	return nil
}

func (s *plainStore) QueryAllSelections(_ context.Context) ([]selection.Selection, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]selection.Selection(nil), s.rows...), nil
}

func (s *plainStore) DeleteAllSelections(_ context.Context) error {
	s.rows = nil
	return s.err
}

func newService(t *testing.T, store selection.Store) *selection.Service {
	t.Helper()
	validate, _ := testutil.NewValidator()
	return selection.NewService(store, validate, logsvc.NewTestLogger())
}

func newMemoryStore(t *testing.T) selection.FilterStore {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)
	return dummydb.NewSelectionRepository(db)
}

func TestService_Record(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		ns      selection.NewSubmission
		wantErr bool
	}{
		{
			name:    "empty student id",
			ns:      selection.NewSubmission{StudentID: "  ", Year: 1, Choices: []selection.Choice{{Subject: "MATH", Faculty: "Alice"}}},
			wantErr: true,
		},
		{
			name:    "empty faculty",
			ns:      selection.NewSubmission{StudentID: "S1", Year: 1, Choices: []selection.Choice{{Subject: "MATH", Faculty: "Alice"}, {Subject: "PHY", Faculty: ""}}},
			wantErr: true,
		},
		{
			name:    "empty subject",
			ns:      selection.NewSubmission{StudentID: "S1", Year: 1, Choices: []selection.Choice{{Subject: "", Faculty: "Alice"}}},
			wantErr: true,
		},
		{
			name:    "student id too long",
			ns:      selection.NewSubmission{StudentID: strings.Repeat("9", 65), Year: 1, Choices: []selection.Choice{{Subject: "MATH", Faculty: "Alice"}}},
			wantErr: true,
		},
		{
			name:    "subject too long",
			ns:      selection.NewSubmission{StudentID: "S1", Year: 1, Choices: []selection.Choice{{Subject: strings.Repeat("M", 65), Faculty: "Alice"}}},
			wantErr: true,
		},
		{
			name:    "faculty too long",
			ns:      selection.NewSubmission{StudentID: "S1", Year: 1, Choices: []selection.Choice{{Subject: "MATH", Faculty: strings.Repeat("A", 256)}}},
			wantErr: true,
		},
		{
			name:    "year too low",
			ns:      selection.NewSubmission{StudentID: "S1", Choices: []selection.Choice{{Subject: "MATH", Faculty: "Alice"}}},
			wantErr: true,
		},
		{
			name:    "year too high",
			ns:      selection.NewSubmission{StudentID: "S1", Year: 5, Choices: []selection.Choice{{Subject: "MATH", Faculty: "Alice"}}},
			wantErr: true,
		},
		{
			name:    "no choices",
			ns:      selection.NewSubmission{StudentID: "S1", Year: 1},
			wantErr: true,
		},
		{
			name:    "subject chosen twice",
			ns:      selection.NewSubmission{StudentID: "S1", Year: 1, Choices: []selection.Choice{{Subject: "MATH", Faculty: "Alice"}, {Subject: "MATH", Faculty: "Bob"}}},
			wantErr: true,
		},
		{
			name: "success",
			ns: selection.NewSubmission{
				StudentID:   " S1 ",
				StudentName: "Jane",
				Year:        2,
				Section:     "A",
				Choices: []selection.Choice{
					{Subject: "MATH", SubjectName: "Mathematics", Faculty: " Alice "},
					{Subject: "PHY", Faculty: "Carol"},
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore(t)
			svc := newService(t, store)

			got, err := svc.Record(ctx, tt.ns)
			stored, qErr := store.QueryAllSelections(ctx)
			require.NoError(t, qErr)

			if tt.wantErr {
				require.Error(t, err)
				assert.IsType(t, validator.ValidationErrors{}, err)
				assert.Empty(t, stored, "nothing must be written")
				return
			}

			require.NoError(t, err)
			require.Len(t, got, len(tt.ns.Choices))
			assert.Equal(t, got, stored)
			assert.NotEqual(t, got[0].ID, got[1].ID)
			for i, sel := range got {
				assert.Equal(t, "S1", sel.StudentID)
				assert.Equal(t, "Jane", sel.StudentName)
				assert.Equal(t, 2, sel.Year)
				assert.Equal(t, "A", sel.Section)
				assert.Equal(t, tt.ns.Choices[i].Subject, sel.Subject)
				assert.Equal(t, time.UTC, sel.CreatedAt.Location())
				assert.Equal(t, got[0].CreatedAt, sel.CreatedAt, "one timestamp per submission")
			}
			assert.Equal(t, "Alice", got[0].Faculty)
			assert.Equal(t, "Mathematics", got[0].SubjectName)
		})
	}
}

func TestService_Record_storeError(t *testing.T) {
	store := &plainStore{err: errors.New("disk full")}
	svc := newService(t, store)

	_, err := svc.Record(context.Background(), selection.NewSubmission{
		StudentID: "S1", Year: 1, Choices: []selection.Choice{{Subject: "MATH", Faculty: "Alice"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestService_Report(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	svc := newService(t, store)

	t.Run("empty store", func(t *testing.T) {
		report, err := svc.Report(ctx, selection.ReportOptions{})
		require.NoError(t, err)
		assert.Empty(t, report)

		spy := &spyRenderer{}
		var buf bytes.Buffer
		assert.Equal(t, selection.ErrNoData, svc.RenderCharts(ctx, selection.ReportOptions{}, spy, &buf))
		assert.Empty(t, spy.titles, "nothing must be rendered")
		assert.Zero(t, buf.Len())
	})

	t0 := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	testutil.CreateSelection(t, store, "S1", 1, "MATH", "Alice", t0)
	testutil.CreateSelection(t, store, "S2", 1, "MATH", "Bob", t0.Add(time.Minute))
	testutil.CreateSelection(t, store, "S3", 1, "MATH", "Alice", t0.Add(2*time.Minute))
	testutil.CreateSelection(t, store, "S1", 2, "PHY", "Carol", t0.Add(3*time.Minute))
	testutil.CreateSelection(t, store, "S4", 2, "PHY", "Dave", t0.Add(4*time.Minute))
	testutil.CreateSelection(t, store, "S2", 1, "MATH", "Alice", t0.Add(5*time.Minute))

	tests := []struct {
		name string
		opts selection.ReportOptions
		want selection.Report
	}{
		{
			name: "all",
			want: selection.Report{
				"MATH": {{Faculty: "Alice", Count: 3}, {Faculty: "Bob", Count: 1}},
				"PHY":  {{Faculty: "Carol", Count: 1}, {Faculty: "Dave", Count: 1}},
			},
		},
		{
			name: "top 1",
			opts: selection.ReportOptions{TopN: 1},
			want: selection.Report{
				"MATH": {{Faculty: "Alice", Count: 3}},
				"PHY":  {{Faculty: "Carol", Count: 1}},
			},
		},
		{
			name: "top larger than faculty count",
			opts: selection.ReportOptions{TopN: 10},
			want: selection.Report{
				"MATH": {{Faculty: "Alice", Count: 3}, {Faculty: "Bob", Count: 1}},
				"PHY":  {{Faculty: "Carol", Count: 1}, {Faculty: "Dave", Count: 1}},
			},
		},
		{
			name: "year",
			opts: selection.ReportOptions{Year: 2},
			want: selection.Report{
				"PHY": {{Faculty: "Carol", Count: 1}, {Faculty: "Dave", Count: 1}},
			},
		},
		{
			name: "latest",
			opts: selection.ReportOptions{Latest: true},
			want: selection.Report{
				"MATH": {{Faculty: "Alice", Count: 3}},
				"PHY":  {{Faculty: "Carol", Count: 1}, {Faculty: "Dave", Count: 1}},
			},
		},
		{
			name: "year without selections",
			opts: selection.ReportOptions{Year: 4},
			want: selection.Report{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Report(ctx, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := svc.Report(ctx, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, got, again, "reports must be reproducible")
		})
	}

	t.Run("counts add up to the rows", func(t *testing.T) {
		report, err := svc.Report(ctx, selection.ReportOptions{})
		require.NoError(t, err)
		total := 0
		for _, counts := range report {
			for _, fc := range counts {
				total += fc.Count
			}
		}
		assert.Equal(t, 6, total)
	})

	t.Run("charts", func(t *testing.T) {
		spy := &spyRenderer{}
		var buf bytes.Buffer
		require.NoError(t, svc.RenderCharts(ctx, selection.ReportOptions{TopN: 1}, spy, &buf))
		assert.Equal(t, []string{"MATH", "PHY"}, spy.titles)
		assert.Equal(t, []selection.FacultyCount{{Faculty: "Alice", Count: 3}}, spy.counts[0])
		assert.Equal(t, "<MATH><PHY>", buf.String())
	})

	t.Run("single chart", func(t *testing.T) {
		spy := &spyRenderer{}
		require.NoError(t, svc.RenderChart(ctx, "PHY", selection.ReportOptions{}, spy, io.Discard))
		assert.Equal(t, []string{"PHY"}, spy.titles)

		spy = &spyRenderer{}
		assert.Equal(t, selection.ErrNoData, svc.RenderChart(ctx, "CHEM", selection.ReportOptions{}, spy, io.Discard))
		assert.Empty(t, spy.titles)
	})
}

func TestService_Report_worked(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	svc := newService(t, store)

	for _, ns := range []selection.NewSubmission{
		{StudentID: "S1", Year: 3, Choices: []selection.Choice{{Subject: "DS", Faculty: "Alice"}}},
		{StudentID: "S2", Year: 3, Choices: []selection.Choice{{Subject: "DS", Faculty: "Bob"}}},
		{StudentID: "S3", Year: 3, Choices: []selection.Choice{{Subject: "DS", Faculty: "Alice"}}},
	} {
		_, err := svc.Record(ctx, ns)
		require.NoError(t, err)
	}

	report, err := svc.Report(ctx, selection.ReportOptions{TopN: 5})
	require.NoError(t, err)
	assert.Equal(t, selection.Report{"DS": {{Faculty: "Alice", Count: 2}, {Faculty: "Bob", Count: 1}}}, report)
}

func TestService_Report_incompleteRows(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, &plainStore{rows: []selection.Selection{
		{StudentID: "S1", Year: 1, Subject: "MATH", Faculty: "Alice"},
		{StudentID: "S2", Year: 1, Subject: "MATH"},
		{StudentID: "S3", Year: 1, Faculty: "Bob"},
		{StudentID: "S4"},
	}})

	report, err := svc.Report(ctx, selection.ReportOptions{})
	require.NoError(t, err)
	assert.Equal(t, selection.Report{"MATH": {{Faculty: "Alice", Count: 1}}}, report)

	workload, err := svc.Workload(ctx, selection.ReportOptions{})
	require.NoError(t, err)
	assert.Equal(t, []selection.FacultyCount{{Faculty: "Alice", Count: 1}}, workload)

	spy := &spyRenderer{}
	require.NoError(t, svc.RenderCharts(ctx, selection.ReportOptions{}, spy, io.Discard))
	assert.Equal(t, []string{"MATH"}, spy.titles)
}

func TestService_unavailableStore(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, &plainStore{err: errors.Wrap(selection.ErrStoreUnavailable, "open selections.csv")})

	sels, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, sels)

	report, err := svc.Report(ctx, selection.ReportOptions{})
	require.NoError(t, err)
	assert.Empty(t, report)

	spy := &spyRenderer{}
	assert.Equal(t, selection.ErrNoData, svc.RenderCharts(ctx, selection.ReportOptions{}, spy, io.Discard))
	assert.Empty(t, spy.titles)

	svc = newService(t, &plainStore{err: errors.New("permission denied")})
	_, err = svc.Report(ctx, selection.ReportOptions{})
	assert.Error(t, err, "other store errors are reported")
}

func TestService_Filter(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

	stores := map[string]selection.Store{
		"filter store": newMemoryStore(t),
		"plain store":  &plainStore{},
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			svc := newService(t, store)
			s1 := testutil.CreateSelection(t, store, "S1", 1, "MATH", "Alice", t0)
			s2 := testutil.CreateSelection(t, store, "S2", 2, "MATH", "Bob", t0.Add(time.Minute))
			s3 := testutil.CreateSelection(t, store, "S1", 1, "PHY", "Bob", t0.Add(2*time.Minute))

			tests := []struct {
				name      string
				filter    selection.QueryFilter
				orderings []core.DBOrdering
				want      []selection.Selection
			}{
				{name: "no filter", want: []selection.Selection{s1, s2, s3}},
				{name: "student", filter: selection.QueryFilter{StudentID: " S1 "}, want: []selection.Selection{s1, s3}},
				{name: "faculty", filter: selection.QueryFilter{Faculty: "Bob"}, want: []selection.Selection{s2, s3}},
				{name: "subject & year", filter: selection.QueryFilter{Subject: "MATH", Year: 2}, want: []selection.Selection{s2}},
				{name: "no match", filter: selection.QueryFilter{Faculty: "Zed"}, want: []selection.Selection{}},
				{
					name:      "ordering",
					orderings: []core.DBOrdering{{Field: "faculty", Ascending: false}, {Field: "created_at", Ascending: false}},
					want:      []selection.Selection{s3, s2, s1},
				},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := svc.Filter(ctx, tt.filter, tt.orderings...)
					require.NoError(t, err)
					assert.Equal(t, tt.want, got)
				})
			}
		})
	}
}

func TestService_Clear(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	svc := newService(t, store)

	testutil.CreateSelection(t, store, "S1", 1, "MATH", "Alice")
	require.NoError(t, svc.Clear(ctx))

	report, err := svc.Report(ctx, selection.ReportOptions{})
	require.NoError(t, err)
	assert.Empty(t, report)
}
