package inmemdb

import (
	"context"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/library"
)

type libraryRepository struct {
	books *table[library.Book]
	loans *table[library.Loan]
}

var _ library.Repository = (*libraryRepository)(nil) // interface compliance check

func NewLibraryRepository(db *DB) *libraryRepository {
	return &libraryRepository{books: db.book, loans: db.loan}
}

func (repo *libraryRepository) CreateBook(_ context.Context, b library.Book) (library.Book, error) {
	b.ID = newID()
	return repo.books.put(b.ID, b), nil
}

func (repo *libraryRepository) QueryBooks(_ context.Context, filter library.BookFilter) ([]library.Book, error) {
	return repo.books.query(filter.Match), nil
}

func (repo *libraryRepository) GetBook(_ context.Context, schoolID, id string) (library.Book, error) {
	b, ok := repo.books.get(id, func(b library.Book) bool { return b.SchoolID == schoolID })
	if !ok {
		return library.Book{}, library.ErrBookNotFound
	}
	return b, nil
}

// UpdateBook shifts the stored available copies by the change of the total under the books lock.
func (repo *libraryRepository) UpdateBook(_ context.Context, b library.Book) (library.Book, error) {
	repo.books.Lock()
	defer repo.books.Unlock()

	cur, ok := repo.books.rows[b.ID]
	if !ok || cur.SchoolID != b.SchoolID {
		return library.Book{}, library.ErrBookNotFound
	}
	b.AvailableCopies = cur.AvailableCopies + b.TotalCopies - cur.TotalCopies
	if b.AvailableCopies < 0 {
		return library.Book{}, library.ErrCopiesOnLoan
	}
	b.CreatedAt = cur.CreatedAt
	repo.books.rows[b.ID] = b
	return b, nil
}

// DeleteBook holds both tables (books first) so no loan is issued while the open ones are counted.
func (repo *libraryRepository) DeleteBook(_ context.Context, schoolID, id string) error {
	repo.books.Lock()
	defer repo.books.Unlock()
	repo.loans.Lock()
	defer repo.loans.Unlock()

	b, ok := repo.books.rows[id]
	if !ok || b.SchoolID != schoolID {
		return library.ErrBookNotFound
	}
	if len(repo.loans.filter(func(l library.Loan) bool { return l.BookID == id })) > 0 {
		return library.ErrBookOnLoan
	}
	delete(repo.books.rows, id)
	return nil
}

// IssueLoan holds both tables (books first) for the whole transaction.
func (repo *libraryRepository) IssueLoan(_ context.Context, l library.Loan) (library.Loan, error) {
	repo.books.Lock()
	defer repo.books.Unlock()
	repo.loans.Lock()
	defer repo.loans.Unlock()

	b, ok := repo.books.rows[l.BookID]
	if !ok || b.SchoolID != l.SchoolID {
		return library.Loan{}, library.ErrBookNotFound
	}
	if b.AvailableCopies <= 0 {
		return library.Loan{}, library.ErrNoCopies
	}
	b.AvailableCopies--
	b.UpdatedAt = l.IssuedAt
	repo.books.rows[b.ID] = b

	l.ID = newID()
	repo.loans.rows[l.ID] = l
	return l, nil
}

func (repo *libraryRepository) ReturnLoan(_ context.Context, schoolID, loanID string) (library.Loan, error) {
	repo.books.Lock()
	defer repo.books.Unlock()
	repo.loans.Lock()
	defer repo.loans.Unlock()

	l, ok := repo.loans.rows[loanID]
	if !ok || l.SchoolID != schoolID {
		return library.Loan{}, library.ErrLoanNotFound
	}
	if b, ok := repo.books.rows[l.BookID]; ok {
		if b.AvailableCopies < b.TotalCopies {
			b.AvailableCopies++
		}
		b.UpdatedAt = core.NowFunc().UTC()
		repo.books.rows[b.ID] = b
	}
	delete(repo.loans.rows, loanID)
	return l, nil
}

func (repo *libraryRepository) QueryLoans(_ context.Context, filter library.LoanFilter) ([]library.Loan, error) {
	return repo.loans.query(filter.Match), nil
}

func (repo *libraryRepository) GetLoan(_ context.Context, schoolID, id string) (library.Loan, error) {
	l, ok := repo.loans.get(id, func(l library.Loan) bool { return l.SchoolID == schoolID })
	if !ok {
		return library.Loan{}, library.ErrLoanNotFound
	}
	return l, nil
}
