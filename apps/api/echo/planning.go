package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/planning"
)

type planningApi struct {
	ServerDeps
}

func registerPlanningAPI(g *echo.Group, deps ServerDeps) {
	api := planningApi{deps}

	lg := g.Group("/lessons", rolesMiddleware(AttendanceWriteRoles...))
	lg.POST("", api.createLesson)
	lg.GET("", api.queryLessons)
	ld := lg.Group("/:id", api.ctxLessonMiddleware)
	ld.GET("", api.retrieve)
	ld.PUT("", api.updateLesson)
	ld.DELETE("", api.destroyLesson)
	ld.POST("/submit", api.submitLesson)
	ld.POST("/review", api.reviewLesson, rolesMiddleware(planning.ReviewerRoles...))

	wg := g.Group("/workbooks", rolesMiddleware(AttendanceWriteRoles...))
	wg.POST("", api.createWorkbook)
	wg.GET("", api.queryWorkbooks)
	wd := wg.Group("/:id", api.ctxWorkbookMiddleware)
	wd.GET("", api.retrieve)
	wd.PUT("", api.updateWorkbook)
	wd.DELETE("", api.destroyWorkbook)
	wd.PUT("/progress", api.updateProgress)
	wd.POST("/submit", api.submitWorkbook)
	wd.POST("/review", api.reviewWorkbook, rolesMiddleware(planning.ReviewerRoles...))
}

func (api planningApi) ctxLessonMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		actor, err := getContextUser(ctx, api.Svcs.Users)
		if err != nil {
			return err
		}
		lp, err := api.Svcs.Planning.GetLesson(ctx.Request().Context(), getContextSchool(ctx).ID, ctx.Param("id"), actor)
		if err != nil {
			return errors.Wrap(err, "getting lesson plan")
		}
		ctx.Set(contextObjectKey, lp)
		return next(ctx)
	}
}

func (api planningApi) ctxWorkbookMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		actor, err := getContextUser(ctx, api.Svcs.Users)
		if err != nil {
			return err
		}
		wp, err := api.Svcs.Planning.GetWorkbook(ctx.Request().Context(), getContextSchool(ctx).ID, ctx.Param("id"), actor)
		if err != nil {
			return errors.Wrap(err, "getting workbook plan")
		}
		ctx.Set(contextObjectKey, wp)
		return next(ctx)
	}
}

func (api planningApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, ctx.Get(contextObjectKey))
}

func (api planningApi) bindFilter(ctx echo.Context) (planning.QueryFilter, error) {
	var filter planning.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return filter, core.NewValidationError(err)
	}
	filter.SchoolID = getContextSchool(ctx).ID
	return filter, nil
}

func (api planningApi) bindReview(ctx echo.Context) (planning.Review, error) {
	var data planning.Review
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to Review")
	}
	return data, data.Validate(api.Validate)
}

// Lessons

func (api planningApi) createLesson(ctx echo.Context) error {
	var data planning.LessonInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LessonInput")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	lp, err := api.Svcs.Planning.CreateLesson(ctx.Request().Context(), getContextSchool(ctx).ID, actor, data)
	if err != nil {
		return errors.Wrap(err, "creating lesson plan")
	}
	return ctx.JSON(http.StatusCreated, lp)
}

func (api planningApi) queryLessons(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	plans, err := api.Svcs.Planning.QueryLessons(ctx.Request().Context(), actor, filter)
	if err != nil {
		return errors.Wrap(err, "querying lesson plans")
	}
	return paginated(ctx, plans)
}

func (api planningApi) updateLesson(ctx echo.Context) error {
	lp := ctx.Get(contextObjectKey).(planning.LessonPlan)
	var data planning.LessonInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LessonInput")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	if lp, err = api.Svcs.Planning.UpdateLesson(ctx.Request().Context(), lp, actor, data); err != nil {
		return errors.Wrap(err, "updating lesson plan")
	}
	return ctx.JSON(http.StatusOK, lp)
}

func (api planningApi) destroyLesson(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	lp := ctx.Get(contextObjectKey).(planning.LessonPlan)
	if err := api.Svcs.Planning.DeleteLesson(ctx.Request().Context(), lp, actor); err != nil {
		return errors.Wrap(err, "deleting lesson plan")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api planningApi) submitLesson(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	lp, err := api.Svcs.Planning.SubmitLesson(ctx.Request().Context(), ctx.Get(contextObjectKey).(planning.LessonPlan), actor)
	if err != nil {
		return errors.Wrap(err, "submitting lesson plan")
	}
	return ctx.JSON(http.StatusOK, lp)
}

func (api planningApi) reviewLesson(ctx echo.Context) error {
	data, err := api.bindReview(ctx)
	if err != nil {
		return err
	}
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	lp, err := api.Svcs.Planning.ReviewLesson(ctx.Request().Context(), ctx.Get(contextObjectKey).(planning.LessonPlan), actor, data)
	if err != nil {
		return errors.Wrap(err, "reviewing lesson plan")
	}
	return ctx.JSON(http.StatusOK, lp)
}

// Workbooks

func (api planningApi) createWorkbook(ctx echo.Context) error {
	var data planning.WorkbookInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to WorkbookInput")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	wp, err := api.Svcs.Planning.CreateWorkbook(ctx.Request().Context(), getContextSchool(ctx).ID, actor, data)
	if err != nil {
		return errors.Wrap(err, "creating workbook plan")
	}
	return ctx.JSON(http.StatusCreated, wp)
}

func (api planningApi) queryWorkbooks(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	plans, err := api.Svcs.Planning.QueryWorkbooks(ctx.Request().Context(), actor, filter)
	if err != nil {
		return errors.Wrap(err, "querying workbook plans")
	}
	return paginated(ctx, plans)
}

func (api planningApi) updateWorkbook(ctx echo.Context) error {
	wp := ctx.Get(contextObjectKey).(planning.WorkbookPlan)
	var data planning.WorkbookInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to WorkbookInput")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	if wp, err = api.Svcs.Planning.UpdateWorkbook(ctx.Request().Context(), wp, actor, data); err != nil {
		return errors.Wrap(err, "updating workbook plan")
	}
	return ctx.JSON(http.StatusOK, wp)
}

func (api planningApi) updateProgress(ctx echo.Context) error {
	wp := ctx.Get(contextObjectKey).(planning.WorkbookPlan)
	var data planning.Progress
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Progress")
	}
	if err := api.Validate.Struct(data); err != nil {
		return err
	}
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	if wp, err = api.Svcs.Planning.UpdateProgress(ctx.Request().Context(), wp, actor, data); err != nil {
		return errors.Wrap(err, "updating workbook progress")
	}
	return ctx.JSON(http.StatusOK, wp)
}

func (api planningApi) destroyWorkbook(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	wp := ctx.Get(contextObjectKey).(planning.WorkbookPlan)
	if err := api.Svcs.Planning.DeleteWorkbook(ctx.Request().Context(), wp, actor); err != nil {
		return errors.Wrap(err, "deleting workbook plan")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api planningApi) submitWorkbook(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	wp, err := api.Svcs.Planning.SubmitWorkbook(ctx.Request().Context(), ctx.Get(contextObjectKey).(planning.WorkbookPlan), actor)
	if err != nil {
		return errors.Wrap(err, "submitting workbook plan")
	}
	return ctx.JSON(http.StatusOK, wp)
}

func (api planningApi) reviewWorkbook(ctx echo.Context) error {
	data, err := api.bindReview(ctx)
	if err != nil {
		return err
	}
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	wp, err := api.Svcs.Planning.ReviewWorkbook(ctx.Request().Context(), ctx.Get(contextObjectKey).(planning.WorkbookPlan), actor, data)
	if err != nil {
		return errors.Wrap(err, "reviewing workbook plan")
	}
	return ctx.JSON(http.StatusOK, wp)
}
