package sqlxrepos

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/acfjba/platformdigital-sub000/core/library"
)

var bookCols = []string{"id", "school_id", "isbn", "title", "author", "category", "total_copies", "available_copies", "created_at", "updated_at"}

var loanCols = []string{"id", "school_id", "book_id", "book_title", "borrower_id", "borrower_name", "borrower_type", "issued_by", "issued_at", "due_at"}

func Test_libraryRepository_IssueLoan(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	schoolID, bookID := newID(), newID()
	loan := library.Loan{
		SchoolID:     schoolID,
		BookID:       bookID,
		BookTitle:    "Things Fall Apart",
		BorrowerID:   newID(),
		BorrowerName: "Amani",
		BorrowerType: library.BorrowerStudent,
		IssuedBy:     "lib",
		IssuedAt:     now,
		DueAt:        now.Add(library.DefaultLoanPeriod),
	}

	t.Run("ok", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM books WHERE school_id = $1 AND id = $2 FOR UPDATE")).
			WithArgs(schoolID, bookID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(bookID))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE books SET available_copies = available_copies - 1, updated_at = $1 WHERE id = $2 AND available_copies > 0")).
			WithArgs(now, bookID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO loans")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		l, err := NewLibraryRepository(db).IssueLoan(ctx, loan)
		assert.Nil(t, err)
		assert.True(t, isUUID(l.ID))
		assertExpectations(t, mock)
	})

	t.Run("no copies left", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(bookID))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE books SET available_copies = available_copies - 1")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := NewLibraryRepository(db).IssueLoan(ctx, loan)
		assert.Equal(t, library.ErrNoCopies, err)
		assertExpectations(t, mock)
	})

	t.Run("unknown book", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err := NewLibraryRepository(db).IssueLoan(ctx, loan)
		assert.Equal(t, library.ErrBookNotFound, err)
		assertExpectations(t, mock)
	})
}

func Test_libraryRepository_ReturnLoan(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	schoolID, bookID, loanID := newID(), newID(), newID()

	t.Run("ok", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM loans WHERE school_id = $1 AND id = $2 RETURNING")).
			WithArgs(schoolID, loanID).
			WillReturnRows(sqlmock.NewRows(loanCols).
				AddRow(loanID, schoolID, bookID, "Title", newID(), "Amani", library.BorrowerStudent, "lib", now, now))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE books SET available_copies = available_copies + 1, updated_at = $1 WHERE id = $2 AND available_copies < total_copies")).
			WithArgs(sqlmock.AnyArg(), bookID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		l, err := NewLibraryRepository(db).ReturnLoan(ctx, schoolID, loanID)
		assert.Nil(t, err)
		assert.Equal(t, bookID, l.BookID)
		assertExpectations(t, mock)
	})

	t.Run("unknown loan", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM loans")).
			WillReturnRows(sqlmock.NewRows(loanCols))
		mock.ExpectRollback()

		_, err := NewLibraryRepository(db).ReturnLoan(ctx, schoolID, loanID)
		assert.Equal(t, library.ErrLoanNotFound, err)
		assertExpectations(t, mock)
	})
}

func Test_libraryRepository_QueryLoans(t *testing.T) {
	db, mock := newMock(t)
	schoolID := newID()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM loans WHERE school_id = $1 AND due_at < $2 ORDER BY due_at")).
		WithArgs(schoolID, now).
		WillReturnRows(sqlmock.NewRows(loanCols))

	loans, err := NewLibraryRepository(db).QueryLoans(context.Background(), library.LoanFilter{SchoolID: schoolID, OverdueOnly: true, Now: now})
	assert.Nil(t, err)
	assert.Len(t, loans, 0)
	assertExpectations(t, mock)
}

func Test_libraryRepository_UpdateBook(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	schoolID, bookID := newID(), newID()
	lockQuery := regexp.QuoteMeta("SELECT " + bookColumns + " FROM books WHERE school_id = $1 AND id = $2 FOR UPDATE")

	// read before a loan was issued: one copy still looks available
	read := library.Book{ID: bookID, SchoolID: schoolID, Title: "Kintu", Category: "Fiction", TotalCopies: 1, AvailableCopies: 1, UpdatedAt: now}

	t.Run("shifts the stored copies", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).
			WithArgs(schoolID, bookID).
			WillReturnRows(sqlmock.NewRows(bookCols).AddRow(bookID, schoolID, "", "Kintu", "", "Fiction", 1, 0, now, now))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE books SET isbn = $1")).
			WithArgs("", "Kintu", "", "Fiction", 2, 1, now, schoolID, bookID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		b := read
		b.TotalCopies = 2
		got, err := NewLibraryRepository(db).UpdateBook(ctx, b)
		assert.Nil(t, err)
		assert.Equal(t, 1, got.AvailableCopies)
		assertExpectations(t, mock)
	})

	t.Run("copies on loan", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).
			WillReturnRows(sqlmock.NewRows(bookCols).AddRow(bookID, schoolID, "", "Kintu", "", "Fiction", 2, 0, now, now))
		mock.ExpectRollback()

		_, err := NewLibraryRepository(db).UpdateBook(ctx, read)
		assert.Equal(t, library.ErrCopiesOnLoan, err)
		assertExpectations(t, mock)
	})

	t.Run("unknown book", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WillReturnRows(sqlmock.NewRows(bookCols))
		mock.ExpectRollback()

		_, err := NewLibraryRepository(db).UpdateBook(ctx, read)
		assert.Equal(t, library.ErrBookNotFound, err)
		assertExpectations(t, mock)
	})
}

func Test_libraryRepository_DeleteBook(t *testing.T) {
	ctx := context.Background()
	schoolID, bookID := newID(), newID()

	tests := []struct {
		name  string
		loans int
		want  error
	}{
		{"no loans", 0, nil},
		{"open loans", 2, library.ErrBookOnLoan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM books WHERE school_id = $1 AND id = $2 FOR UPDATE")).
				WithArgs(schoolID, bookID).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(bookID))
			mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM loans WHERE book_id = $1")).
				WithArgs(bookID).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.loans))
			if tt.want == nil {
				mock.ExpectExec(regexp.QuoteMeta("DELETE FROM books WHERE school_id = $1 AND id = $2")).
					WithArgs(schoolID, bookID).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			err := NewLibraryRepository(db).DeleteBook(ctx, schoolID, bookID)
			assert.Equal(t, tt.want, err)
			assertExpectations(t, mock)
		})
	}
}
