package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type dashboardApi struct {
	ServerDeps
}

// registerDashboardAPI registers the platform dashboard on v1 and the school dashboard on the tenant group.
// The school dashboard skips the license gate so that admins can still see why their license lapsed.
func registerDashboardAPI(v1, sg *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := dashboardApi{deps}

	v1.GET("/dashboard", api.platform, authed, systemAdminMiddleware())
	sg.GET("/dashboard", api.school)
}

func (api dashboardApi) platform(ctx echo.Context) error {
	dash, err := api.Svcs.Dashboard.Platform(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building platform dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api dashboardApi) school(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	dash, err := api.Svcs.Dashboard.School(ctx.Request().Context(), getContextSchool(ctx), actor)
	if err != nil {
		return errors.Wrap(err, "building school dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}
