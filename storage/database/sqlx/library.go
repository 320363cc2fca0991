package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/library"
)

const (
	bookColumns = "id, school_id, isbn, title, author, category, total_copies, available_copies, created_at, updated_at"
	loanColumns = "id, school_id, book_id, book_title, borrower_id, borrower_name, borrower_type, issued_by, issued_at, due_at"
)

type libraryRepository struct {
	db *sqlx.DB
}

var _ library.Repository = (*libraryRepository)(nil) // interface compliance check

func NewLibraryRepository(db *sqlx.DB) *libraryRepository {
	return &libraryRepository{db: db}
}

func (repo *libraryRepository) CreateBook(ctx context.Context, b library.Book) (library.Book, error) {
	b.ID = newID()
	q := "INSERT INTO books (" + bookColumns + ") VALUES " +
		"(:id, :school_id, :isbn, :title, :author, :category, :total_copies, :available_copies, :created_at, :updated_at)"
	if _, err := repo.db.NamedExecContext(ctx, q, b); err != nil {
		return library.Book{}, errors.Wrap(err, "inserting book")
	}
	return b, nil
}

func (repo *libraryRepository) QueryBooks(ctx context.Context, filter library.BookFilter) ([]library.Book, error) {
	w := where{}
	if !w.school(filter.SchoolID) {
		return []library.Book{}, nil
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		w.add("(title ILIKE ? OR author ILIKE ? OR isbn ILIKE ?)", p, p, p)
	}
	if filter.Category != "" {
		w.add("lower(category) = lower(?)", filter.Category)
	}
	if filter.AvailableOnly {
		w.add("available_copies > 0")
	}
	books, err := selectAll[library.Book](ctx, repo.db, "SELECT "+bookColumns+" FROM books"+w.String()+" ORDER BY title", w.args...)
	return books, errors.Wrap(err, "querying books")
}

func (repo *libraryRepository) GetBook(ctx context.Context, schoolID, id string) (library.Book, error) {
	if !isUUID(id) || !isUUID(schoolID) {
		return library.Book{}, library.ErrBookNotFound
	}
	return getOne[library.Book](ctx, repo.db, library.ErrBookNotFound, "SELECT "+bookColumns+" FROM books WHERE school_id = ? AND id = ?", schoolID, id)
}

// UpdateBook locks the book row and shifts its available copies by the change of the total.
func (repo *libraryRepository) UpdateBook(ctx context.Context, b library.Book) (library.Book, error) {
	if !isUUID(b.ID) || !isUUID(b.SchoolID) {
		return library.Book{}, library.ErrBookNotFound
	}

	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		q := "SELECT " + bookColumns + " FROM books WHERE school_id = ? AND id = ? FOR UPDATE"
		cur, err := getOne[library.Book](ctx, tx, library.ErrBookNotFound, q, b.SchoolID, b.ID)
		if err != nil {
			return err
		}
		b.AvailableCopies = cur.AvailableCopies + b.TotalCopies - cur.TotalCopies
		if b.AvailableCopies < 0 {
			return library.ErrCopiesOnLoan
		}
		b.CreatedAt = cur.CreatedAt

		q = `UPDATE books SET isbn = :isbn, title = :title, author = :author, category = :category, total_copies = :total_copies,
			available_copies = :available_copies, updated_at = :updated_at WHERE school_id = :school_id AND id = :id`
		return namedExecOne(ctx, tx, library.ErrBookNotFound, q, b)
	})
	if err != nil {
		return library.Book{}, err
	}
	return b, nil
}

// DeleteBook locks the book row so no loan can be issued while the open ones are counted.
func (repo *libraryRepository) DeleteBook(ctx context.Context, schoolID, id string) error {
	if !isUUID(id) || !isUUID(schoolID) {
		return library.ErrBookNotFound
	}

	return inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if _, err := getOne[string](ctx, tx, library.ErrBookNotFound, "SELECT id FROM books WHERE school_id = ? AND id = ? FOR UPDATE", schoolID, id); err != nil {
			return err
		}
		open, err := getOne[int](ctx, tx, nil, "SELECT count(*) FROM loans WHERE book_id = ?", id)
		if err != nil {
			return errors.Wrap(err, "counting loans")
		}
		if open > 0 {
			return library.ErrBookOnLoan
		}
		return execOne(ctx, tx, library.ErrBookNotFound, "DELETE FROM books WHERE school_id = ? AND id = ?", schoolID, id)
	})
}

// IssueLoan locks the book row, takes a copy only if one is left, then stores the loan.
func (repo *libraryRepository) IssueLoan(ctx context.Context, l library.Loan) (library.Loan, error) {
	if !isUUID(l.BookID) || !isUUID(l.SchoolID) {
		return library.Loan{}, library.ErrBookNotFound
	}

	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if _, err := getOne[string](ctx, tx, library.ErrBookNotFound, "SELECT id FROM books WHERE school_id = ? AND id = ? FOR UPDATE", l.SchoolID, l.BookID); err != nil {
			return err
		}
		q := "UPDATE books SET available_copies = available_copies - 1, updated_at = ? WHERE id = ? AND available_copies > 0"
		if err := execOne(ctx, tx, library.ErrNoCopies, q, l.IssuedAt, l.BookID); err != nil {
			return err
		}

		l.ID = newID()
		q = "INSERT INTO loans (" + loanColumns + ") VALUES " +
			"(:id, :school_id, :book_id, :book_title, :borrower_id, :borrower_name, :borrower_type, :issued_by, :issued_at, :due_at)"
		_, err := tx.NamedExecContext(ctx, q, l)
		return errors.Wrap(err, "inserting loan")
	})
	if err != nil {
		return library.Loan{}, err
	}
	return l, nil
}

// ReturnLoan deletes the loan and puts the copy back, never above the total.
func (repo *libraryRepository) ReturnLoan(ctx context.Context, schoolID, loanID string) (library.Loan, error) {
	if !isUUID(loanID) || !isUUID(schoolID) {
		return library.Loan{}, library.ErrLoanNotFound
	}

	var l library.Loan
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) (err error) {
		q := "DELETE FROM loans WHERE school_id = ? AND id = ? RETURNING " + loanColumns
		if l, err = getOne[library.Loan](ctx, tx, library.ErrLoanNotFound, q, schoolID, loanID); err != nil {
			return err
		}
		q = "UPDATE books SET available_copies = available_copies + 1, updated_at = ? WHERE id = ? AND available_copies < total_copies"
		_, err = exec(ctx, tx, q, core.NowFunc().UTC(), l.BookID)
		return errors.Wrap(err, "restocking book")
	})
	if err != nil {
		return library.Loan{}, err
	}
	return l, nil
}

func (repo *libraryRepository) QueryLoans(ctx context.Context, filter library.LoanFilter) ([]library.Loan, error) {
	w := where{}
	if !w.school(filter.SchoolID) {
		return []library.Loan{}, nil
	}
	if filter.BookID != "" {
		if !isUUID(filter.BookID) {
			return []library.Loan{}, nil
		}
		w.add("book_id = ?", filter.BookID)
	}
	if filter.BorrowerID != "" {
		if !isUUID(filter.BorrowerID) {
			return []library.Loan{}, nil
		}
		w.add("borrower_id = ?", filter.BorrowerID)
	}
	if filter.OverdueOnly {
		w.add("due_at < ?", filter.Now)
	}
	loans, err := selectAll[library.Loan](ctx, repo.db, "SELECT "+loanColumns+" FROM loans"+w.String()+" ORDER BY due_at", w.args...)
	return loans, errors.Wrap(err, "querying loans")
}

func (repo *libraryRepository) GetLoan(ctx context.Context, schoolID, id string) (library.Loan, error) {
	if !isUUID(id) || !isUUID(schoolID) {
		return library.Loan{}, library.ErrLoanNotFound
	}
	return getOne[library.Loan](ctx, repo.db, library.ErrLoanNotFound, "SELECT "+loanColumns+" FROM loans WHERE school_id = ? AND id = ?", schoolID, id)
}
