package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core/importer"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

type importApi struct {
	ServerDeps
}

func registerImportAPI(g *echo.Group, deps ServerDeps) {
	api := importApi{deps}

	ig := g.Group("/import", rolesMiddleware(user.RolePrimaryAdmin))
	ig.POST("/staff", api.importStaff)
	ig.POST("/students", api.importStudents)
}

func (api importApi) importStaff(ctx echo.Context) error {
	var data importer.StaffRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StaffRequest")
	}
	report, err := api.Svcs.Importer.ImportStaff(ctx.Request().Context(), getContextSchool(ctx).ID, data)
	if err != nil {
		return errors.Wrap(err, "importing staff")
	}
	return ctx.JSON(importStatus(report), report)
}

func (api importApi) importStudents(ctx echo.Context) error {
	var data importer.StudentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentRequest")
	}
	report, err := api.Svcs.Importer.ImportStudents(ctx.Request().Context(), getContextSchool(ctx).ID, data)
	if err != nil {
		return errors.Wrap(err, "importing students")
	}
	return ctx.JSON(importStatus(report), report)
}

func importStatus(report importer.Report) int {
	if report.DryRun || report.Created == 0 {
		return http.StatusOK
	}
	return http.StatusCreated
}
