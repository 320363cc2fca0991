package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/exam"
)

type examApi struct {
	ServerDeps
}

func registerExamAPI(g *echo.Group, deps ServerDeps) {
	api := examApi{deps}

	eg := g.Group("/results")
	eg.POST("", api.record, rolesMiddleware(AttendanceWriteRoles...))
	eg.POST("/batch", api.recordBatch, rolesMiddleware(AttendanceWriteRoles...))
	eg.GET("", api.query)
	eg.GET("/summary", api.summary)
	eg.GET("/export", api.export)
	eg.GET("/:id", api.retrieve)
	eg.DELETE("/:id", api.destroy, rolesMiddleware(AttendanceWriteRoles...))
}

func (api examApi) bindFilter(ctx echo.Context) (exam.QueryFilter, error) {
	var filter exam.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return filter, core.NewValidationError(err)
	}
	filter.SchoolID = getContextSchool(ctx).ID
	return filter, nil
}

func (api examApi) record(ctx echo.Context) error {
	var data exam.NewResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResult")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	res, err := api.Svcs.Exams.Record(ctx.Request().Context(), getContextSchool(ctx).ID, actor, data)
	if err != nil {
		return errors.Wrap(err, "recording result")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api examApi) recordBatch(ctx echo.Context) error {
	var data exam.Batch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Batch")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	results, err := api.Svcs.Exams.RecordBatch(ctx.Request().Context(), getContextSchool(ctx).ID, actor, data)
	if err != nil {
		return errors.Wrap(err, "recording results")
	}
	return ctx.JSON(http.StatusCreated, results)
}

func (api examApi) query(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	results, err := api.Svcs.Exams.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying results")
	}
	return paginated(ctx, results)
}

func (api examApi) summary(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	sum, err := api.Svcs.Exams.Summary(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "summarizing results")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api examApi) export(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	csvAttachment(ctx, "results.csv")
	return errors.Wrap(api.Svcs.Exams.ExportCSV(ctx.Request().Context(), ctx.Response(), filter), "exporting results")
}

func (api examApi) retrieve(ctx echo.Context) error {
	res, err := api.Svcs.Exams.Get(ctx.Request().Context(), getContextSchool(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting result")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api examApi) destroy(ctx echo.Context) error {
	if err := api.Svcs.Exams.Delete(ctx.Request().Context(), getContextSchool(ctx).ID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting result")
	}
	return ctx.NoContent(http.StatusNoContent)
}
