package library_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/acfjba/platformdigital-sub000/core/library"
	"github.com/acfjba/platformdigital-sub000/core/user"
	testutil "github.com/acfjba/platformdigital-sub000/tests"
)

func TestService_UpdateBook_copiesOut(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := env.Svcs.Library
	ctx := context.Background()
	lib := user.User{ID: "lib", Role: user.RoleLibrarian}

	sch := testutil.CreateSchool(t, env, "Shelf School", "shf", "shf@school.test")
	std := testutil.CreateStudent(t, env, sch.ID, "S1", "Ana", "P4")
	book := testutil.CreateBook(t, env, sch.ID, "Kintu", 1)

	read, err := svc.GetBook(ctx, sch.ID, book.ID)
	if !assert.NoError(t, err) {
		return
	}
	_, err = svc.Issue(ctx, sch.ID, lib, library.NewLoan{BookID: book.ID, BorrowerID: std.ID, BorrowerType: library.BorrowerStudent})
	if !assert.NoError(t, err) {
		return
	}

	// read is stale: it still counts the copy now out
	in := library.BookInput{Title: "Kintu", Category: "Fiction", TotalCopies: 1}
	updated, err := svc.UpdateBook(ctx, read, in)
	if assert.NoError(t, err) {
		assert.Equal(t, 0, updated.AvailableCopies)
		assert.Equal(t, "Fiction", updated.Category)
	}
	_, err = svc.Issue(ctx, sch.ID, lib, library.NewLoan{BookID: book.ID, BorrowerID: std.ID, BorrowerType: library.BorrowerStudent})
	assert.Equal(t, library.ErrNoCopies, err)

	in.TotalCopies = 3
	updated, err = svc.UpdateBook(ctx, read, in)
	if assert.NoError(t, err) {
		assert.Equal(t, 3, updated.TotalCopies)
		assert.Equal(t, 2, updated.AvailableCopies)
	}

	in.TotalCopies = 0
	_, err = svc.UpdateBook(ctx, read, in)
	assert.Equal(t, library.ErrCopiesOnLoan, err)

	stored, _ := svc.GetBook(ctx, sch.ID, book.ID)
	assert.Equal(t, 3, stored.TotalCopies)
	assert.Equal(t, 2, stored.AvailableCopies)
}

func TestService_DeleteBook(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := env.Svcs.Library
	ctx := context.Background()
	lib := user.User{ID: "lib", Role: user.RoleLibrarian}

	sch := testutil.CreateSchool(t, env, "Shelf School", "shf", "shf@school.test")
	std := testutil.CreateStudent(t, env, sch.ID, "S1", "Ana", "P4")
	book := testutil.CreateBook(t, env, sch.ID, "Kintu", 2)

	loan, err := svc.Issue(ctx, sch.ID, lib, library.NewLoan{BookID: book.ID, BorrowerID: std.ID, BorrowerType: library.BorrowerStudent})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, library.ErrBookOnLoan, svc.DeleteBook(ctx, sch.ID, book.ID))

	_, err = svc.Return(ctx, sch.ID, loan.ID)
	assert.NoError(t, err)
	assert.NoError(t, svc.DeleteBook(ctx, sch.ID, book.ID))
	assert.Equal(t, library.ErrBookNotFound, svc.DeleteBook(ctx, sch.ID, book.ID))
}
