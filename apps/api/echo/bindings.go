package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/acfjba/platformdigital-sub000/core"
)

const (
	pageParam     = "page"
	pageSizeParam = "page_size"
)

// PageResponse is the envelope of every list endpoint.
type PageResponse[T any] struct {
	Count    int `json:"count"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Results  []T `json:"results"`
}

func bindPage(ctx echo.Context) core.Page {
	var p core.Page
	p.Number, _ = strconv.Atoi(ctx.QueryParam(pageParam))
	p.Size, _ = strconv.Atoi(ctx.QueryParam(pageSizeParam))
	p.Clean()
	return p
}

// paginated responds with the requested page of items.
func paginated[T any](ctx echo.Context, items []T) error {
	p := bindPage(ctx)
	results, total := core.Paginate(items, p)
	if results == nil {
		results = []T{}
	}
	return ctx.JSON(http.StatusOK, PageResponse[T]{Count: total, Page: p.Number, PageSize: p.Size, Results: results})
}

// csvAttachment sets the headers of a CSV download named filename.
func csvAttachment(ctx echo.Context, filename string) {
	h := ctx.Response().Header()
	h.Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	h.Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	ctx.Response().WriteHeader(http.StatusOK)
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}

	DeletedResponse struct {
		Deleted int `json:"deleted"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}
