package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core/emailconfig"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

type emailConfigApi struct {
	ServerDeps
}

func registerEmailConfigAPI(g *echo.Group, deps ServerDeps) {
	api := emailConfigApi{deps}

	eg := g.Group("/email-config", rolesMiddleware(user.RolePrimaryAdmin))
	eg.GET("", api.retrieve)
	eg.PUT("", api.upsert)
	eg.POST("/test", api.sendTest)
}

func (api emailConfigApi) retrieve(ctx echo.Context) error {
	conf, err := api.Svcs.EmailConfig.Get(ctx.Request().Context(), getContextSchool(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "getting email config")
	}
	return ctx.JSON(http.StatusOK, conf)
}

func (api emailConfigApi) upsert(ctx echo.Context) error {
	var data emailconfig.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to emailconfig.Input")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	conf, err := api.Svcs.EmailConfig.Upsert(ctx.Request().Context(), getContextSchool(ctx).ID, claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "saving email config")
	}
	return ctx.JSON(http.StatusOK, conf)
}

func (api emailConfigApi) sendTest(ctx echo.Context) error {
	var data emailconfig.TestRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TestRequest")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	sch := getContextSchool(ctx)
	if err := api.Svcs.EmailConfig.SendTest(ctx.Request().Context(), sch.ID, sch.Name, data.To); err != nil {
		return errors.Wrap(err, "sending test email")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Test email sent to " + data.To + "."})
}
