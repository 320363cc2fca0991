package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/attendance"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

// AttendanceWriteRoles may mark class registers.
var AttendanceWriteRoles = []string{user.RolePrimaryAdmin, user.RoleHeadTeacher, user.RoleTeacher}

type attendanceApi struct {
	ServerDeps
}

func registerAttendanceAPI(g *echo.Group, deps ServerDeps) {
	api := attendanceApi{deps}

	ag := g.Group("/attendance")
	ag.POST("", api.mark, rolesMiddleware(AttendanceWriteRoles...))
	ag.GET("", api.query)
	ag.GET("/summary", api.summary)
	ag.GET("/export", api.export)
}

func (api attendanceApi) bindFilter(ctx echo.Context) (attendance.QueryFilter, error) {
	var filter attendance.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return filter, core.NewValidationError(err)
	}
	filter.SchoolID = getContextSchool(ctx).ID
	filter.Clean()
	return filter, filter.Validate()
}

func (api attendanceApi) mark(ctx echo.Context) error {
	var data attendance.ClassMark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassMark")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	recs, err := api.Svcs.Attendance.MarkClass(ctx.Request().Context(), getContextSchool(ctx).ID, actor, data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api attendanceApi) query(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	recs, err := api.Svcs.Attendance.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return paginated(ctx, recs)
}

func (api attendanceApi) summary(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	sum, err := api.Svcs.Attendance.Summary(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "summarizing attendance")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api attendanceApi) export(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	csvAttachment(ctx, "attendance.csv")
	return errors.Wrap(api.Svcs.Attendance.ExportCSV(ctx.Request().Context(), ctx.Response(), filter), "exporting attendance")
}
