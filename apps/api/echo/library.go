package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/library"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

var (
	// LibraryWriteRoles may manage the catalogue and lend books.
	LibraryWriteRoles = []string{user.RolePrimaryAdmin, user.RoleLibrarian}
	libraryReadRoles  = []string{user.RolePrimaryAdmin, user.RoleHeadTeacher, user.RoleLibrarian}
)

type libraryApi struct {
	ServerDeps
}

func registerLibraryAPI(g *echo.Group, deps ServerDeps) {
	api := libraryApi{deps}

	lg := g.Group("/library")
	lg.GET("/inventory", api.inventory, rolesMiddleware(libraryReadRoles...))

	bg := lg.Group("/books")
	bg.POST("", api.addBook, rolesMiddleware(LibraryWriteRoles...))
	bg.GET("", api.queryBooks)
	bg.GET("/:id", api.retrieveBook)
	bg.PUT("/:id", api.updateBook, rolesMiddleware(LibraryWriteRoles...))
	bg.DELETE("/:id", api.destroyBook, rolesMiddleware(LibraryWriteRoles...))

	loans := lg.Group("/loans", rolesMiddleware(libraryReadRoles...))
	loans.GET("", api.queryLoans)
	loans.GET("/overdue", api.overdue)
	loans.POST("", api.issue, rolesMiddleware(LibraryWriteRoles...))
	loans.GET("/:id", api.retrieveLoan)
	loans.POST("/:id/return", api.returnLoan, rolesMiddleware(LibraryWriteRoles...))
}

func (api libraryApi) addBook(ctx echo.Context) error {
	var data library.BookInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BookInput")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	book, err := api.Svcs.Library.AddBook(ctx.Request().Context(), getContextSchool(ctx).ID, data)
	if err != nil {
		return errors.Wrap(err, "adding book")
	}
	return ctx.JSON(http.StatusCreated, book)
}

func (api libraryApi) queryBooks(ctx echo.Context) error {
	filter := new(library.BookFilter)
	if err := ctx.Bind(filter); err != nil {
		return paginated(ctx, []library.Book{})
	}
	filter.SchoolID = getContextSchool(ctx).ID
	books, err := api.Svcs.Library.QueryBooks(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying books")
	}
	return paginated(ctx, books)
}

func (api libraryApi) retrieveBook(ctx echo.Context) error {
	book, err := api.Svcs.Library.GetBook(ctx.Request().Context(), getContextSchool(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting book")
	}
	return ctx.JSON(http.StatusOK, book)
}

func (api libraryApi) updateBook(ctx echo.Context) error {
	book, err := api.Svcs.Library.GetBook(ctx.Request().Context(), getContextSchool(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting book")
	}
	var data library.BookInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BookInput")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	if book, err = api.Svcs.Library.UpdateBook(ctx.Request().Context(), book, data); err != nil {
		return errors.Wrap(err, "updating book")
	}
	return ctx.JSON(http.StatusOK, book)
}

func (api libraryApi) destroyBook(ctx echo.Context) error {
	if err := api.Svcs.Library.DeleteBook(ctx.Request().Context(), getContextSchool(ctx).ID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting book")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api libraryApi) issue(ctx echo.Context) error {
	var data library.NewLoan
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLoan")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	actor, err := getContextUser(ctx, api.Svcs.Users)
	if err != nil {
		return err
	}
	loan, err := api.Svcs.Library.Issue(ctx.Request().Context(), getContextSchool(ctx).ID, actor, data)
	if err != nil {
		return errors.Wrap(err, "issuing loan")
	}
	return ctx.JSON(http.StatusCreated, loan)
}

func (api libraryApi) returnLoan(ctx echo.Context) error {
	loan, err := api.Svcs.Library.Return(ctx.Request().Context(), getContextSchool(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "returning loan")
	}
	return ctx.JSON(http.StatusOK, loan)
}

func (api libraryApi) queryLoans(ctx echo.Context) error {
	filter := new(library.LoanFilter)
	if err := ctx.Bind(filter); err != nil {
		return paginated(ctx, []library.Loan{})
	}
	filter.SchoolID = getContextSchool(ctx).ID
	loans, err := api.Svcs.Library.QueryLoans(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying loans")
	}
	return paginated(ctx, loans)
}

func (api libraryApi) overdue(ctx echo.Context) error {
	loans, err := api.Svcs.Library.Overdue(ctx.Request().Context(), getContextSchool(ctx).ID, core.NowFunc().UTC())
	if err != nil {
		return errors.Wrap(err, "listing overdue loans")
	}
	return paginated(ctx, loans)
}

func (api libraryApi) retrieveLoan(ctx echo.Context) error {
	loan, err := api.Svcs.Library.GetLoan(ctx.Request().Context(), getContextSchool(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting loan")
	}
	return ctx.JSON(http.StatusOK, loan)
}

func (api libraryApi) inventory(ctx echo.Context) error {
	inv, err := api.Svcs.Library.Inventory(ctx.Request().Context(), getContextSchool(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "computing inventory")
	}
	return ctx.JSON(http.StatusOK, inv)
}
