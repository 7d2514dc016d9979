package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/facultypref/core/selection"
	exportsvc "github.com/trezcool/facultypref/services/export"
)

const (
	mimeCSV  = "text/csv; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeSVG  = "image/svg+xml"
)

type selectionApi struct {
	svc  *selection.Service
	deps ServerDeps
}

func registerSelectionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := selectionApi{svc: deps.SelectionSvc, deps: deps}
	limit := rateLimitMiddleware(deps.Conf.Server.SubmitRateLimit, deps.Conf.Server.SubmitBurst)

	sg := g.Group("/selections")
	sg.POST("", api.submit, limit)
	sg.GET("", api.query, jwt, adminMiddleware())
	sg.DELETE("", api.clear, jwt, adminMiddleware())
	sg.GET("/export", api.export, jwt, adminMiddleware())
}

func (api *selectionApi) submit(ctx echo.Context) error {
	var data selection.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}

	sels, err := api.svc.Record(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording selections")
	}
	return ctx.JSON(http.StatusCreated, sels)
}

func (api *selectionApi) filter(ctx echo.Context) ([]selection.Selection, error) {
	var filter selection.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return nil, errors.Wrap(err, "binding to QueryFilter")
	}
	orderings := bindOrdering(ctx, selection.OrderingFields...)
	return api.svc.Filter(ctx.Request().Context(), filter, orderings...)
}

func (api *selectionApi) query(ctx echo.Context) error {
	sels, err := api.filter(ctx)
	if err != nil {
		return errors.Wrap(err, "filtering selections")
	}
	return ctx.JSON(http.StatusOK, sels)
}

func (api *selectionApi) export(ctx echo.Context) error {
	format, err := bindFormat(ctx, "csv", "csv", "xlsx")
	if err != nil {
		return err
	}
	sels, err := api.filter(ctx)
	if err != nil {
		return errors.Wrap(err, "filtering selections")
	}

	var buf bytes.Buffer
	if format == "xlsx" {
		if err = exportsvc.WriteSelectionsXLSX(&buf, sels); err != nil {
			return errors.Wrap(err, "exporting selections")
		}
		return attachment(ctx, "student_choices.xlsx", mimeXLSX, buf.Bytes())
	}
	if err = exportsvc.WriteSelectionsCSV(&buf, sels); err != nil {
		return errors.Wrap(err, "exporting selections")
	}
	return attachment(ctx, "student_choices.csv", mimeCSV, buf.Bytes())
}

func (api *selectionApi) clear(ctx echo.Context) error {
	if err := api.svc.Clear(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "clearing selections")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func attachment(ctx echo.Context, filename, contentType string, b []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.Blob(http.StatusOK, contentType, b)
}
