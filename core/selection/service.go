package selection

import (
	"context"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/facultypref/core"
)

var (
	// errors
	ErrNoData = errors.New("no selections recorded yet")
	// ErrStoreUnavailable is returned by stores whose backing data is missing or unreadable.
	ErrStoreUnavailable = errors.New("selection store unavailable")
)

type (
	// Store is where selections are persisted. Rows are only ever appended, or all cleared at once.
	Store interface {
		AppendSelections(ctx context.Context, sels ...Selection) error
		QueryAllSelections(ctx context.Context) ([]Selection, error)
		DeleteAllSelections(ctx context.Context) error
	}

	// FilterStore is implemented by stores able to filter & order selections themselves.
	FilterStore interface {
		Store
		FilterSelections(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Selection, error)
	}

	// ChartRenderer draws the faculty counts of one subject.
	ChartRenderer interface {
		RenderBarChart(w io.Writer, title string, counts []FacultyCount) error
	}

	Service struct {
		store    Store
		validate *validator.Validate
		logger   core.Logger
		now      func() time.Time
	}
)

func NewService(store Store, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{
		store:    store,
		validate: validate,
		logger:   logger,
		now:      time.Now,
	}
}

// Record validates the submission and appends one selection per choice.
// Nothing is written if the submission is invalid.
func (svc *Service) Record(ctx context.Context, ns NewSubmission) ([]Selection, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return nil, err
	}

	now := svc.now().UTC()
	sels := make([]Selection, 0, len(ns.Choices))
	for _, c := range ns.Choices {
		sels = append(sels, Selection{
			ID:          uuid.New().String(),
			StudentID:   ns.StudentID,
			StudentName: ns.StudentName,
			Year:        ns.Year,
			Section:     ns.Section,
			Subject:     c.Subject,
			SubjectName: c.SubjectName,
			Faculty:     c.Faculty,
			CreatedAt:   now,
		})
	}
	if err := svc.store.AppendSelections(ctx, sels...); err != nil {
		return nil, errors.Wrap(err, "appending selections")
	}
	return sels, nil
}

// QueryAll returns every stored selection; an unavailable store reads as empty.
func (svc *Service) QueryAll(ctx context.Context) ([]Selection, error) {
	sels, err := svc.store.QueryAllSelections(ctx)
	if err != nil {
		if errors.Cause(err) == ErrStoreUnavailable {
			svc.logger.Warn("selection store unavailable, treating as empty", err)
			return []Selection{}, nil
		}
		return nil, errors.Wrap(err, "querying selections")
	}
	if sels == nil {
		sels = []Selection{}
	}
	return sels, nil
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Selection, error) {
	filter.Clean()
	if fs, ok := svc.store.(FilterStore); ok {
		sels, err := fs.FilterSelections(ctx, filter, orderings...)
		if err != nil {
			return nil, errors.Wrap(err, "filtering selections")
		}
		if sels == nil {
			sels = []Selection{}
		}
		return sels, nil
	}

	all, err := svc.QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	sels := make([]Selection, 0, len(all))
	for _, sel := range all {
		if filter.Match(sel) {
			sels = append(sels, sel)
		}
	}
	Sort(sels, orderings...)
	return sels, nil
}

func (svc *Service) prepared(ctx context.Context, opts ReportOptions) ([]Selection, error) {
	rows, err := svc.QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	return Prepare(rows, opts), nil
}

// Report aggregates all selections per subject & faculty.
// An empty or unavailable store yields an empty Report.
func (svc *Service) Report(ctx context.Context, opts ReportOptions) (Report, error) {
	rows, err := svc.prepared(ctx, opts)
	if err != nil {
		return nil, err
	}
	return Aggregate(rows, opts.TopN), nil
}

func (svc *Service) Summary(ctx context.Context, opts ReportOptions) ([]SummaryRow, error) {
	rows, err := svc.prepared(ctx, opts)
	if err != nil {
		return nil, err
	}
	return Summarize(rows), nil
}

func (svc *Service) Pivot(ctx context.Context, opts ReportOptions) (Pivot, error) {
	rows, err := svc.prepared(ctx, opts)
	if err != nil {
		return Pivot{}, err
	}
	return NewPivot(rows), nil
}

func (svc *Service) Workload(ctx context.Context, opts ReportOptions) ([]FacultyCount, error) {
	rows, err := svc.prepared(ctx, opts)
	if err != nil {
		return nil, err
	}
	return Workload(rows), nil
}

// RenderCharts renders one bar chart per subject, in subject order.
// The renderer is never called when there is nothing to draw: ErrNoData is returned instead.
func (svc *Service) RenderCharts(ctx context.Context, opts ReportOptions, renderer ChartRenderer, w io.Writer) error {
	report, err := svc.Report(ctx, opts)
	if err != nil {
		return err
	}
	if len(report) == 0 {
		return ErrNoData
	}
	for _, subject := range report.Subjects() {
		if err = renderer.RenderBarChart(w, subject, report[subject]); err != nil {
			return errors.Wrapf(err, "rendering %s chart", subject)
		}
	}
	return nil
}

// RenderChart renders the bar chart of a single subject.
func (svc *Service) RenderChart(ctx context.Context, subject string, opts ReportOptions, renderer ChartRenderer, w io.Writer) error {
	report, err := svc.Report(ctx, opts)
	if err != nil {
		return err
	}
	counts, ok := report[core.CleanString(subject)]
	if !ok {
		return ErrNoData
	}
	return errors.Wrapf(renderer.RenderBarChart(w, subject, counts), "rendering %s chart", subject)
}

// Clear deletes every recorded selection.
func (svc *Service) Clear(ctx context.Context) error {
	return errors.Wrap(svc.store.DeleteAllSelections(ctx), "deleting selections")
}
