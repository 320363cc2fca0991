package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/discipline"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

type disciplineApi struct {
	ServerDeps
}

func registerDisciplineAPI(g *echo.Group, deps ServerDeps) {
	api := disciplineApi{deps}

	ig := g.Group("/incidents", rolesMiddleware(AttendanceWriteRoles...))
	ig.POST("", api.create)
	ig.GET("", api.query)

	dg := ig.Group("/:id", api.ctxIncidentMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, api.reporterOrManagerMiddleware)
	dg.POST("/resolve", api.resolve, api.reporterOrManagerMiddleware)
	dg.DELETE("", api.destroy, rolesMiddleware(user.ManagerRoles...))
}

func (api disciplineApi) ctxIncidentMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		actor, err := getContextUser(ctx, api.Svcs.Users)
		if err != nil {
			return err
		}
		inc, err := api.Svcs.Discipline.Get(ctx.Request().Context(), getContextSchool(ctx).ID, ctx.Param("id"), actor)
		if err != nil {
			return errors.Wrap(err, "getting incident")
		}
		ctx.Set(contextObjectKey, inc)
		return next(ctx)
	}
}

// reporterOrManagerMiddleware restricts changes to the school managers and the reporter of the incident.
func (api disciplineApi) reporterOrManagerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		actor, err := getContextUser(ctx, api.Svcs.Users)
		if err != nil {
			return err
		}
		inc := ctx.Get(contextObjectKey).(discipline.Incident)
		if actor.IsSystemAdmin() || user.HasAnyRole(actor.Role, user.ManagerRoles...) || inc.ReportedBy == actor.ID {
			return next(ctx)
		}
		return errHttpForbidden
	}
}

func (api disciplineApi) create(ctx echo.Context) error {
	var data discipline.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to discipline.Input")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	inc, err := api.Svcs.Discipline.Create(ctx.Request().Context(), getContextSchool(ctx).ID, actor, data)
	if err != nil {
		return errors.Wrap(err, "creating incident")
	}
	return ctx.JSON(http.StatusCreated, inc)
}

func (api disciplineApi) query(ctx echo.Context) error {
	filter := new(discipline.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return core.NewValidationError(err)
	}
	filter.SchoolID = getContextSchool(ctx).ID
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	incs, err := api.Svcs.Discipline.Query(ctx.Request().Context(), actor, *filter)
	if err != nil {
		return errors.Wrap(err, "querying incidents")
	}
	return paginated(ctx, incs)
}

func (api disciplineApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, ctx.Get(contextObjectKey))
}

func (api disciplineApi) update(ctx echo.Context) error {
	inc := ctx.Get(contextObjectKey).(discipline.Incident)
	var data discipline.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to discipline.Input")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	inc, err := api.Svcs.Discipline.Update(ctx.Request().Context(), inc, data)
	if err != nil {
		return errors.Wrap(err, "updating incident")
	}
	return ctx.JSON(http.StatusOK, inc)
}

func (api disciplineApi) resolve(ctx echo.Context) error {
	inc := ctx.Get(contextObjectKey).(discipline.Incident)
	var data discipline.Resolution
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Resolution")
	}
	if err := api.Validate.Struct(data); err != nil {
		return err
	}
	inc, err := api.Svcs.Discipline.Resolve(ctx.Request().Context(), inc, data)
	if err != nil {
		return errors.Wrap(err, "resolving incident")
	}
	return ctx.JSON(http.StatusOK, inc)
}

func (api disciplineApi) destroy(ctx echo.Context) error {
	inc := ctx.Get(contextObjectKey).(discipline.Incident)
	if err := api.Svcs.Discipline.Delete(ctx.Request().Context(), inc.SchoolID, inc.ID); err != nil {
		return errors.Wrap(err, "deleting incident")
	}
	return ctx.NoContent(http.StatusNoContent)
}
