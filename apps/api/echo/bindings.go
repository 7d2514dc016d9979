package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/facultypref/core"
	"github.com/trezcool/facultypref/core/selection"
)

const (
	orderingParam = "ordering"
	formatParam   = "format"
	topParam      = "top"
)

// bindOrdering reads `?ordering=field,-other` keeping only the `allowed` fields.
func bindOrdering(ctx echo.Context, allowed ...string) []core.DBOrdering {
	return core.ParseOrderings(ctx.QueryParam(orderingParam), allowed...)
}

// bindFormat returns the requested `?format=`, `def` if none.
func bindFormat(ctx echo.Context, def string, supported ...string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(ctx.QueryParam(formatParam)))
	if format == "" {
		return def, nil
	}
	for _, f := range supported {
		if f == format {
			return format, nil
		}
	}
	return "", errUnsupportedFormat
}

// bindReportOptions reads `?top=&year=&latest=`; `top` defaults to the configured one.
func bindReportOptions(ctx echo.Context, deps ServerDeps) (selection.ReportOptions, error) {
	var opts selection.ReportOptions
	if err := ctx.Bind(&opts); err != nil {
		return opts, errors.Wrap(err, "binding to ReportOptions")
	}
	if _, ok := ctx.QueryParams()[topParam]; !ok {
		opts.TopN = deps.Conf.Report.TopN
	}
	if err := deps.Validate.Struct(opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// bindYear reads an optional `?year=`.
func bindYear(ctx echo.Context) (int, error) {
	s := ctx.QueryParam("year")
	if s == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < selection.MinYear || year > selection.MaxYear {
		return 0, core.NewValidationError(errors.New("invalid year"), core.FieldError{Field: "year", Error: "year must be between 1 and 4"})
	}
	return year, nil
}
