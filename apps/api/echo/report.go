package echoapi

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/facultypref/core/selection"
	exportsvc "github.com/trezcool/facultypref/services/export"
)

var (
	//go:embed templates/*.gohtml
	templatesFS embed.FS

	dashboardTmpl = template.Must(template.ParseFS(templatesFS, "templates/dashboard.gohtml"))
)

type reportApi struct {
	svc  *selection.Service
	deps ServerDeps
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := reportApi{svc: deps.SelectionSvc, deps: deps}

	rg := g.Group("/reports", jwt, adminMiddleware())
	rg.GET("", api.report)
	rg.GET("/summary", api.summary)
	rg.GET("/pivot", api.pivot)
	rg.GET("/workload", api.workload)
	rg.GET("/workload/chart", api.workloadChart)
	rg.GET("/charts", api.groupedChart)
	rg.GET("/charts/:subject", api.subjectChart)
	rg.GET("/dashboard", api.dashboard)
}

func (api *reportApi) report(ctx echo.Context) error {
	opts, err := bindReportOptions(ctx, api.deps)
	if err != nil {
		return err
	}
	report, err := api.svc.Report(ctx.Request().Context(), opts)
	if err != nil {
		return errors.Wrap(err, "building report")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *reportApi) summary(ctx echo.Context) error {
	format, err := bindFormat(ctx, "json", "json", "csv")
	if err != nil {
		return err
	}
	opts, err := bindReportOptions(ctx, api.deps)
	if err != nil {
		return err
	}
	rows, err := api.svc.Summary(ctx.Request().Context(), opts)
	if err != nil {
		return errors.Wrap(err, "summarizing selections")
	}

	if format == "csv" {
		var buf bytes.Buffer
		if err = exportsvc.WriteSummaryCSV(&buf, rows); err != nil {
			return errors.Wrap(err, "exporting summary")
		}
		return attachment(ctx, "summary_report.csv", mimeCSV, buf.Bytes())
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *reportApi) pivot(ctx echo.Context) error {
	format, err := bindFormat(ctx, "json", "json", "xlsx")
	if err != nil {
		return err
	}
	opts, err := bindReportOptions(ctx, api.deps)
	if err != nil {
		return err
	}
	pivot, err := api.svc.Pivot(ctx.Request().Context(), opts)
	if err != nil {
		return errors.Wrap(err, "pivoting selections")
	}

	if format == "xlsx" {
		rows, err := api.svc.Summary(ctx.Request().Context(), opts)
		if err != nil {
			return errors.Wrap(err, "summarizing selections")
		}
		var buf bytes.Buffer
		if err = exportsvc.WritePivotXLSX(&buf, pivot, rows); err != nil {
			return errors.Wrap(err, "exporting pivot")
		}
		return attachment(ctx, "faculty_subject_report.xlsx", mimeXLSX, buf.Bytes())
	}
	return ctx.JSON(http.StatusOK, pivot)
}

func (api *reportApi) workload(ctx echo.Context) error {
	opts, err := bindReportOptions(ctx, api.deps)
	if err != nil {
		return err
	}
	counts, err := api.svc.Workload(ctx.Request().Context(), opts)
	if err != nil {
		return errors.Wrap(err, "computing workload")
	}
	return ctx.JSON(http.StatusOK, counts)
}

func (api *reportApi) workloadChart(ctx echo.Context) error {
	opts, err := bindReportOptions(ctx, api.deps)
	if err != nil {
		return err
	}
	counts, err := api.svc.Workload(ctx.Request().Context(), opts)
	if err != nil {
		return errors.Wrap(err, "computing workload")
	}
	if len(counts) == 0 {
		return selection.ErrNoData
	}

	var buf bytes.Buffer
	if err = api.deps.Charts.RenderPieChart(&buf, "Faculty workload", counts); err != nil {
		return errors.Wrap(err, "rendering workload chart")
	}
	return ctx.Blob(http.StatusOK, mimeSVG, buf.Bytes())
}

// groupedChart draws all subjects on one chart, bars coloured by faculty.
func (api *reportApi) groupedChart(ctx echo.Context) error {
	opts, err := bindReportOptions(ctx, api.deps)
	if err != nil {
		return err
	}
	report, err := api.svc.Report(ctx.Request().Context(), opts)
	if err != nil {
		return errors.Wrap(err, "building report")
	}
	if len(report) == 0 {
		return selection.ErrNoData
	}

	var buf bytes.Buffer
	if err = api.deps.Charts.RenderGroupedBarChart(&buf, "Faculty selections per subject", report); err != nil {
		return errors.Wrap(err, "rendering grouped chart")
	}
	return ctx.Blob(http.StatusOK, mimeSVG, buf.Bytes())
}

func (api *reportApi) subjectChart(ctx echo.Context) error {
	opts, err := bindReportOptions(ctx, api.deps)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err = api.svc.RenderChart(ctx.Request().Context(), ctx.Param("subject"), opts, api.deps.Charts, &buf); err != nil {
		return errors.Wrap(err, "rendering subject chart")
	}
	return ctx.Blob(http.StatusOK, mimeSVG, buf.Bytes())
}

type (
	figure struct {
		Subject string
		SVG     template.HTML
		Counts  []selection.FacultyCount
	}

	// figureCollector renders each chart into its own figure.
	figureCollector struct {
		charts  selection.ChartRenderer
		figures []figure
	}

	dashboardData struct {
		Title   string
		Options selection.ReportOptions
		Empty   bool
		Total   int
		Figures []figure
	}
)

func (fc *figureCollector) RenderBarChart(_ io.Writer, title string, counts []selection.FacultyCount) error {
	var buf bytes.Buffer
	if err := fc.charts.RenderBarChart(&buf, title, counts); err != nil {
		return err
	}
	// SVG produced by our own renderer
	fc.figures = append(fc.figures, figure{Subject: title, SVG: template.HTML(buf.String()), Counts: counts})
	return nil
}

func (api *reportApi) dashboard(ctx echo.Context) error {
	opts, err := bindReportOptions(ctx, api.deps)
	if err != nil {
		return err
	}

	data := dashboardData{Title: api.deps.Conf.AppName + " - Faculty preferences", Options: opts}
	collector := &figureCollector{charts: api.deps.Charts}
	err = api.svc.RenderCharts(ctx.Request().Context(), opts, collector, io.Discard)
	switch errors.Cause(err) {
	case nil:
	case selection.ErrNoData:
		data.Empty = true
	default:
		return errors.Wrap(err, "rendering charts")
	}

	data.Figures = collector.figures
	for _, f := range collector.figures {
		for _, c := range f.Counts {
			data.Total += c.Count
		}
	}

	var buf bytes.Buffer
	if err = dashboardTmpl.Execute(&buf, data); err != nil {
		return errors.Wrap(err, "executing dashboard template")
	}
	return ctx.HTMLBlob(http.StatusOK, buf.Bytes())
}
