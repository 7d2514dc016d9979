package echoapi

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/facultypref/core/catalog"
	"github.com/trezcool/facultypref/core/selection"
	exportsvc "github.com/trezcool/facultypref/services/export"
)

// facultyApi is the self-service of faculty members: who picked them & what they can teach.
type facultyApi struct {
	selectionSvc *selection.Service
	catalogSvc   *catalog.Service
}

func registerFacultyAPI(g *echo.Group, deps ServerDeps) {
	api := facultyApi{selectionSvc: deps.SelectionSvc, catalogSvc: deps.CatalogSvc}

	fg := g.Group("/faculty/:name")
	fg.GET("/selections", api.selections)
	fg.GET("/availability", api.availability)
	fg.PUT("/availability", api.updateAvailability)
}

func (api *facultyApi) member(ctx echo.Context) (string, error) {
	name := ctx.Param("name")
	ok, err := api.catalogSvc.HasFaculty(ctx.Request().Context(), name)
	if err != nil {
		return "", errors.Wrap(err, "checking faculty")
	}
	if !ok {
		return "", catalog.ErrNotFound
	}
	return name, nil
}

// selections lists the students who picked the faculty member, as JSON or as a `?format=csv|xlsx` download.
func (api *facultyApi) selections(ctx echo.Context) error {
	name, err := api.member(ctx)
	if err != nil {
		return err
	}
	format, err := bindFormat(ctx, "json", "json", "csv", "xlsx")
	if err != nil {
		return err
	}
	orderings := bindOrdering(ctx, selection.OrderingFields...)
	sels, err := api.selectionSvc.Filter(ctx.Request().Context(), selection.QueryFilter{Faculty: name}, orderings...)
	if err != nil {
		return errors.Wrap(err, "filtering selections")
	}

	filename := strings.ReplaceAll(name, " ", "_") + "_students"
	var buf bytes.Buffer
	switch format {
	case "csv":
		if err = exportsvc.WriteSelectionsCSV(&buf, sels); err != nil {
			return errors.Wrap(err, "exporting selections")
		}
		return attachment(ctx, filename+".csv", mimeCSV, buf.Bytes())
	case "xlsx":
		if err = exportsvc.WriteSelectionsXLSX(&buf, sels); err != nil {
			return errors.Wrap(err, "exporting selections")
		}
		return attachment(ctx, filename+".xlsx", mimeXLSX, buf.Bytes())
	}
	return ctx.JSON(http.StatusOK, sels)
}

func (api *facultyApi) availability(ctx echo.Context) error {
	name, err := api.member(ctx)
	if err != nil {
		return err
	}
	avail, err := api.catalogSvc.Availability(ctx.Request().Context(), name)
	if err != nil {
		return errors.Wrap(err, "querying availability")
	}
	return ctx.JSON(http.StatusOK, avail)
}

func (api *facultyApi) updateAvailability(ctx echo.Context) error {
	var data catalog.AvailabilityUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AvailabilityUpdate")
	}
	avail, err := api.catalogSvc.UpdateAvailability(ctx.Request().Context(), ctx.Param("name"), data)
	if err != nil {
		return errors.Wrap(err, "updating availability")
	}
	return ctx.JSON(http.StatusOK, avail)
}
