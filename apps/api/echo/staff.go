package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core/staff"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

type staffApi struct {
	ServerDeps
}

func registerStaffAPI(g *echo.Group, deps ServerDeps) {
	api := staffApi{deps}

	sg := g.Group("/staff")
	sg.POST("", api.create, rolesMiddleware(user.ManagerRoles...))
	sg.GET("", api.query)

	dg := sg.Group("/:id", api.ctxStaffMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, rolesMiddleware(user.ManagerRoles...))
	dg.DELETE("", api.destroy, rolesMiddleware(user.ManagerRoles...))
}

func (api staffApi) ctxStaffMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		st, err := api.Svcs.Staff.Get(ctx.Request().Context(), getContextSchool(ctx).ID, ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "getting staff")
		}
		ctx.Set(contextObjectKey, st)
		return next(ctx)
	}
}

func (api staffApi) create(ctx echo.Context) error {
	var data staff.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to staff.Input")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	st, err := api.Svcs.Staff.Create(ctx.Request().Context(), getContextSchool(ctx).ID, data)
	if err != nil {
		return errors.Wrap(err, "creating staff")
	}
	return ctx.JSON(http.StatusCreated, st)
}

func (api staffApi) query(ctx echo.Context) error {
	filter := new(staff.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return paginated(ctx, []staff.Staff{})
	}
	filter.SchoolID = getContextSchool(ctx).ID
	members, err := api.Svcs.Staff.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying staff")
	}
	return paginated(ctx, members)
}

func (api staffApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, ctx.Get(contextObjectKey))
}

func (api staffApi) update(ctx echo.Context) error {
	st := ctx.Get(contextObjectKey).(staff.Staff)
	var data staff.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to staff.Input")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	st, err := api.Svcs.Staff.Update(ctx.Request().Context(), st, data)
	if err != nil {
		return errors.Wrap(err, "updating staff")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api staffApi) destroy(ctx echo.Context) error {
	st := ctx.Get(contextObjectKey).(staff.Staff)
	if err := api.Svcs.Staff.Delete(ctx.Request().Context(), st.SchoolID, st.ID); err != nil {
		return errors.Wrap(err, "deleting staff")
	}
	return ctx.NoContent(http.StatusNoContent)
}
