package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/acfjba/platformdigital-sub000/core/library"
	testutil "github.com/acfjba/platformdigital-sub000/tests"
)

func Test_libraryApi(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "lib")
	base := "/v1/schools/" + tn.school.ID + "/library"

	ana := testutil.CreateStudent(t, app.Env, tn.school.ID, "A1", "Ana", "P1")
	jane := testutil.CreateStaff(t, app.Env, tn.school.ID, "T1", "Jane")

	var book library.Book
	t.Run("add book", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base+"/books", &tn.librarian, library.BookInput{Title: "Things Fall Apart", TotalCopies: 1})
		assert.Equal(t, http.StatusCreated, rec.Code)
		unmarshal(t, rec, &book)
		assert.Equal(t, 1, book.AvailableCopies)
		assert.Equal(t, "General", book.Category)
	})

	var loan library.Loan
	t.Run("issue", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base+"/loans", &tn.librarian, library.NewLoan{BookID: book.ID, BorrowerID: ana.ID, BorrowerType: library.BorrowerStudent})
		assert.Equal(t, http.StatusCreated, rec.Code)
		unmarshal(t, rec, &loan)
		assert.Equal(t, "Ana", loan.BorrowerName)
		assert.Equal(t, book.Title, loan.BookTitle)
		assert.Equal(t, tn.librarian.ID, loan.IssuedBy)
	})

	t.Run("no copies left", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base+"/loans", &tn.admin, library.NewLoan{BookID: book.ID, BorrowerID: jane.ID, BorrowerType: library.BorrowerStaff})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error": "no copies available"}`, rec.Body.String())
	})

	t.Run("unknown borrower", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base+"/loans", &tn.admin, library.NewLoan{BookID: book.ID, BorrowerID: ana.ID, BorrowerType: library.BorrowerStaff})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("add copies", func(t *testing.T) {
		rec := app.do(t, http.MethodPut, base+"/books/"+book.ID, &tn.librarian, library.BookInput{Title: book.Title, TotalCopies: 2})
		assert.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &book)
		assert.Equal(t, 1, book.AvailableCopies)

		rec = app.do(t, http.MethodPut, base+"/books/"+book.ID, &tn.teacher, library.BookInput{Title: book.Title, TotalCopies: 1})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = app.do(t, http.MethodPut, base+"/books/"+book.ID, &tn.librarian, library.BookInput{Title: book.Title, TotalCopies: 1})
		assert.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &book)
		assert.Equal(t, 0, book.AvailableCopies)
	})

	t.Run("due date in the past", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base+"/loans", &tn.librarian, library.NewLoan{
			BookID: book.ID, BorrowerID: jane.ID, BorrowerType: library.BorrowerStaff, DueDate: "2020-01-01",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "due_date")
	})

	t.Run("cannot delete a book on loan", func(t *testing.T) {
		rec := app.do(t, http.MethodDelete, base+"/books/"+book.ID, &tn.librarian, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("overdue", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base+"/loans/overdue", &tn.librarian, nil)
		var resp page[library.Loan]
		unmarshal(t, rec, &resp)
		assert.Equal(t, 0, resp.Count)

		testutil.FreezeTime(t, time.Now().Add(library.DefaultLoanPeriod+time.Hour))
		rec = app.do(t, http.MethodGet, base+"/loans/overdue", &tn.librarian, nil)
		unmarshal(t, rec, &resp)
		if assert.Equal(t, 1, resp.Count) {
			assert.Equal(t, loan.ID, resp.Results[0].ID)
		}

		rec = app.do(t, http.MethodGet, base+"/inventory", &tn.headTeacher, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var inv library.Inventory
		unmarshal(t, rec, &inv)
		assert.Equal(t, 1, inv.Titles)
		assert.Equal(t, 1, inv.OnLoan)
		assert.Equal(t, 1, inv.Overdue)
	})

	t.Run("return", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base+"/loans/"+loan.ID+"/return", &tn.librarian, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = app.do(t, http.MethodPost, base+"/loans/"+loan.ID+"/return", &tn.librarian, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = app.do(t, http.MethodGet, base+"/books/"+book.ID, &tn.teacher, nil)
		unmarshal(t, rec, &book)
		assert.Equal(t, 1, book.AvailableCopies)

		rec = app.do(t, http.MethodDelete, base+"/books/"+book.ID, &tn.librarian, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("loans: teachers cannot list", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base+"/loans", &tn.teacher, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
