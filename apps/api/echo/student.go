package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core/student"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

type studentApi struct {
	ServerDeps
}

func registerStudentAPI(g *echo.Group, deps ServerDeps) {
	api := studentApi{deps}

	sg := g.Group("/students")
	sg.POST("", api.create, rolesMiddleware(user.ManagerRoles...))
	sg.GET("", api.query)

	dg := sg.Group("/:id", api.ctxStudentMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, rolesMiddleware(user.ManagerRoles...))
	dg.DELETE("", api.destroy, rolesMiddleware(user.ManagerRoles...))
}

func (api studentApi) ctxStudentMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		std, err := api.Svcs.Students.Get(ctx.Request().Context(), getContextSchool(ctx).ID, ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "getting student")
		}
		ctx.Set(contextObjectKey, std)
		return next(ctx)
	}
}

func (api studentApi) create(ctx echo.Context) error {
	var data student.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to student.Input")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	std, err := api.Svcs.Students.Create(ctx.Request().Context(), getContextSchool(ctx).ID, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return paginated(ctx, []student.Student{})
	}
	filter.SchoolID = getContextSchool(ctx).ID
	students, err := api.Svcs.Students.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return paginated(ctx, students)
}

func (api studentApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, ctx.Get(contextObjectKey))
}

func (api studentApi) update(ctx echo.Context) error {
	std := ctx.Get(contextObjectKey).(student.Student)
	var data student.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to student.Input")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	std, err := api.Svcs.Students.Update(ctx.Request().Context(), std, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api studentApi) destroy(ctx echo.Context) error {
	std := ctx.Get(contextObjectKey).(student.Student)
	if err := api.Svcs.Students.Delete(ctx.Request().Context(), std.SchoolID, std.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}
