package echoapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/facultypref/core/catalog"
)

const uploadField = "file"

type catalogApi struct {
	svc *catalog.Service
}

type facultyImportResponse struct {
	Faculty  []catalog.Faculty `json:"faculty"`
	Warnings []catalog.Warning `json:"warnings"`
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := catalogApi{svc: deps.CatalogSvc}
	admin := adminMiddleware()

	cg := g.Group("/catalog")
	cg.GET("/subjects", api.subjects)
	cg.GET("/faculty", api.faculty)
	cg.PUT("/subjects", api.importSubjects, jwt, admin)
	cg.PUT("/faculty", api.importFaculty, jwt, admin)
	cg.GET("/availability", api.availability, jwt, admin)
	cg.GET("/availability/pivot", api.availabilityPivot, jwt, admin)
	cg.POST("/availability/reset", api.resetAvailability, jwt, admin)
}

func (api *catalogApi) subjects(ctx echo.Context) error {
	year, err := bindYear(ctx)
	if err != nil {
		return err
	}
	subjects, err := api.svc.Subjects(ctx.Request().Context(), year)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *catalogApi) faculty(ctx echo.Context) error {
	faculty, err := api.svc.Faculty(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying faculty")
	}
	return ctx.JSON(http.StatusOK, faculty)
}

// openUpload opens the uploaded CSV file of the multipart form.
func openUpload(ctx echo.Context) (io.ReadCloser, error) {
	fh, err := ctx.FormFile(uploadField)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return nil, errMissingFile
		}
		return nil, errors.Wrap(err, "reading form file")
	}
	f, err := fh.Open()
	return f, errors.Wrap(err, "opening form file")
}

func (api *catalogApi) importSubjects(ctx echo.Context) error {
	f, err := openUpload(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	subjects, err := api.svc.ImportSubjects(ctx.Request().Context(), f)
	if err != nil {
		return errors.Wrap(err, "importing subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *catalogApi) importFaculty(ctx echo.Context) error {
	f, err := openUpload(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	faculty, warnings, err := api.svc.ImportFaculty(ctx.Request().Context(), f)
	if err != nil {
		return errors.Wrap(err, "importing faculty")
	}
	if warnings == nil {
		warnings = []catalog.Warning{}
	}
	return ctx.JSON(http.StatusOK, facultyImportResponse{Faculty: faculty, Warnings: warnings})
}

func (api *catalogApi) availability(ctx echo.Context) error {
	avail, err := api.svc.Availability(ctx.Request().Context(), ctx.QueryParam("faculty"))
	if err != nil {
		return errors.Wrap(err, "querying availability")
	}
	return ctx.JSON(http.StatusOK, avail)
}

func (api *catalogApi) availabilityPivot(ctx echo.Context) error {
	pivot, err := api.svc.AvailabilityPivot(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "pivoting availability")
	}
	return ctx.JSON(http.StatusOK, pivot)
}

func (api *catalogApi) resetAvailability(ctx echo.Context) error {
	avail, err := api.svc.ResetAvailability(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "resetting availability")
	}
	return ctx.JSON(http.StatusOK, avail)
}
