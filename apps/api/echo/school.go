package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core/license"
	"github.com/acfjba/platformdigital-sub000/core/school"
)

type schoolApi struct {
	ServerDeps
}

func registerSchoolAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := schoolApi{deps}

	sg := g.Group("/schools", authed, systemAdminMiddleware())
	sg.POST("", api.create)
	sg.GET("", api.query)

	g.GET("/licenses", api.queryLicenses, authed, systemAdminMiddleware())
}

// registerSchoolDetailAPI registers the routes of the tenant group that skip the license gate.
func registerSchoolDetailAPI(g *echo.Group, deps ServerDeps) {
	api := schoolApi{deps}

	g.GET("", api.retrieve)
	g.PUT("", api.update, systemAdminMiddleware())
	g.DELETE("", api.destroy, systemAdminMiddleware())

	lg := g.Group("/license")
	lg.GET("", api.retrieveLicense)
	lg.POST("", api.issueLicense, systemAdminMiddleware())
	lg.POST("/renew", api.renewLicense, systemAdminMiddleware())
	lg.POST("/suspend", api.suspendLicense, systemAdminMiddleware())
	lg.POST("/reactivate", api.reactivateLicense, systemAdminMiddleware())
	lg.DELETE("", api.destroyLicense, systemAdminMiddleware())
}

func (api schoolApi) create(ctx echo.Context) error {
	var data school.NewSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchool")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	sch, err := api.Svcs.Schools.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating school")
	}
	return ctx.JSON(http.StatusCreated, sch)
}

func (api schoolApi) query(ctx echo.Context) error {
	filter := new(school.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return paginated(ctx, []school.School{})
	}
	schools, err := api.Svcs.Schools.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying schools")
	}
	return paginated(ctx, schools)
}

func (api schoolApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, getContextSchool(ctx))
}

func (api schoolApi) update(ctx echo.Context) error {
	var data school.UpdateSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSchool")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	sch, err := api.Svcs.Schools.Update(ctx.Request().Context(), getContextSchool(ctx), data)
	if err != nil {
		return errors.Wrap(err, "updating school")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api schoolApi) destroy(ctx echo.Context) error {
	if err := api.Svcs.Schools.Delete(ctx.Request().Context(), getContextSchool(ctx).ID); err != nil {
		return errors.Wrap(err, "deleting school")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api schoolApi) queryLicenses(ctx echo.Context) error {
	filter := new(license.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return paginated(ctx, []license.License{})
	}
	licenses, err := api.Svcs.Licenses.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying licenses")
	}
	return paginated(ctx, licenses)
}

func (api schoolApi) retrieveLicense(ctx echo.Context) error {
	lic, err := api.Svcs.Licenses.Get(ctx.Request().Context(), getContextSchool(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "getting license")
	}
	return ctx.JSON(http.StatusOK, lic)
}

func (api schoolApi) issueLicense(ctx echo.Context) error {
	var data license.NewLicense
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLicense")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	lic, err := api.Svcs.Licenses.Issue(ctx.Request().Context(), getContextSchool(ctx).ID, data)
	if err != nil {
		return errors.Wrap(err, "issuing license")
	}
	return ctx.JSON(http.StatusCreated, lic)
}

func (api schoolApi) renewLicense(ctx echo.Context) error {
	var data license.Renewal
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Renewal")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	lic, err := api.Svcs.Licenses.Renew(ctx.Request().Context(), getContextSchool(ctx).ID, data.Months)
	if err != nil {
		return errors.Wrap(err, "renewing license")
	}
	return ctx.JSON(http.StatusOK, lic)
}

func (api schoolApi) suspendLicense(ctx echo.Context) error {
	lic, err := api.Svcs.Licenses.Suspend(ctx.Request().Context(), getContextSchool(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "suspending license")
	}
	return ctx.JSON(http.StatusOK, lic)
}

func (api schoolApi) reactivateLicense(ctx echo.Context) error {
	lic, err := api.Svcs.Licenses.Reactivate(ctx.Request().Context(), getContextSchool(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "reactivating license")
	}
	return ctx.JSON(http.StatusOK, lic)
}

func (api schoolApi) destroyLicense(ctx echo.Context) error {
	if err := api.Svcs.Licenses.Delete(ctx.Request().Context(), getContextSchool(ctx).ID); err != nil {
		return errors.Wrap(err, "deleting license")
	}
	return ctx.NoContent(http.StatusNoContent)
}
