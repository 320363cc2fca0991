package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/library"
)

type libraryRepository struct {
	client *firestore.Client
	books  collection[library.Book]
	loans  collection[library.Loan]
}

var _ library.Repository = (*libraryRepository)(nil) // interface compliance check

func NewLibraryRepository(client *firestore.Client) *libraryRepository {
	return &libraryRepository{
		client: client,
		books:  newCollection(client, booksCol, func(b *library.Book, id string) { b.ID = id }),
		loans:  newCollection(client, loansCol, func(l *library.Loan, id string) { l.ID = id }),
	}
}

func bookOf(schoolID string) func(library.Book) bool {
	return func(b library.Book) bool { return b.SchoolID == schoolID }
}

func loanOf(schoolID string) func(library.Loan) bool {
	return func(l library.Loan) bool { return l.SchoolID == schoolID }
}

func (repo *libraryRepository) CreateBook(ctx context.Context, b library.Book) (library.Book, error) {
	b.ID = newID()
	if err := repo.books.create(ctx, b.ID, b); err != nil {
		return library.Book{}, err
	}
	return b, nil
}

func (repo *libraryRepository) QueryBooks(ctx context.Context, filter library.BookFilter) ([]library.Book, error) {
	return repo.books.all(ctx, repo.books.inSchool(filter.SchoolID), filter.Match)
}

func (repo *libraryRepository) GetBook(ctx context.Context, schoolID, id string) (library.Book, error) {
	return repo.books.get(ctx, id, library.ErrBookNotFound, bookOf(schoolID))
}

// UpdateBook reads the stored copies and writes the shifted ones in one transaction.
func (repo *libraryRepository) UpdateBook(ctx context.Context, b library.Book) (library.Book, error) {
	if b.ID == "" {
		return library.Book{}, library.ErrBookNotFound
	}

	err := repo.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		bookRef := repo.books.ref.Doc(b.ID)
		cur, err := repo.getBook(tx, bookRef, b.SchoolID)
		if err != nil {
			return err
		}
		b.AvailableCopies = cur.AvailableCopies + b.TotalCopies - cur.TotalCopies
		if b.AvailableCopies < 0 {
			return library.ErrCopiesOnLoan
		}
		b.CreatedAt = cur.CreatedAt
		return tx.Set(bookRef, b)
	})
	if err != nil {
		return library.Book{}, err
	}
	return b, nil
}

// DeleteBook reads the book and its loans in the delete transaction, so a concurrent issue forces a retry.
func (repo *libraryRepository) DeleteBook(ctx context.Context, schoolID, id string) error {
	if id == "" {
		return library.ErrBookNotFound
	}

	return repo.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		bookRef := repo.books.ref.Doc(id)
		if _, err := repo.getBook(tx, bookRef, schoolID); err != nil {
			return err
		}
		open, err := tx.Documents(repo.loans.inSchool(schoolID).Where("bookId", "==", id).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(open) > 0 {
			return library.ErrBookOnLoan
		}
		return tx.Delete(bookRef)
	})
}

// getBook reads a book within tx.
func (repo *libraryRepository) getBook(tx *firestore.Transaction, ref *firestore.DocumentRef, schoolID string) (library.Book, error) {
	doc, err := tx.Get(ref)
	if isNotFound(err) {
		return library.Book{}, library.ErrBookNotFound
	} else if err != nil {
		return library.Book{}, err
	}
	b, err := repo.books.decode(doc)
	if err != nil {
		return library.Book{}, err
	}
	if b.SchoolID != schoolID {
		return library.Book{}, library.ErrBookNotFound
	}
	return b, nil
}

// IssueLoan takes a copy and creates the loan in one transaction; concurrent issues of the last copy are retried and fail.
func (repo *libraryRepository) IssueLoan(ctx context.Context, l library.Loan) (library.Loan, error) {
	if l.BookID == "" {
		return library.Loan{}, library.ErrBookNotFound
	}
	l.ID = newID()

	err := repo.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		bookRef := repo.books.ref.Doc(l.BookID)
		b, err := repo.getBook(tx, bookRef, l.SchoolID)
		if err != nil {
			return err
		}
		if b.AvailableCopies <= 0 {
			return library.ErrNoCopies
		}

		b.AvailableCopies--
		b.UpdatedAt = l.IssuedAt
		if err = tx.Set(bookRef, b); err != nil {
			return err
		}
		return tx.Create(repo.loans.ref.Doc(l.ID), l)
	})
	if err != nil {
		return library.Loan{}, err
	}
	return l, nil
}

// ReturnLoan deletes the loan and puts the copy back in one transaction.
func (repo *libraryRepository) ReturnLoan(ctx context.Context, schoolID, loanID string) (library.Loan, error) {
	if loanID == "" {
		return library.Loan{}, library.ErrLoanNotFound
	}

	var l library.Loan
	err := repo.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		loanRef := repo.loans.ref.Doc(loanID)
		doc, err := tx.Get(loanRef)
		if isNotFound(err) {
			return library.ErrLoanNotFound
		} else if err != nil {
			return err
		}
		if l, err = repo.loans.decode(doc); err != nil {
			return err
		}
		if l.SchoolID != schoolID {
			return library.ErrLoanNotFound
		}

		bookRef := repo.books.ref.Doc(l.BookID)
		bookDoc, err := tx.Get(bookRef)
		if err != nil && !isNotFound(err) {
			return err
		}
		if err == nil {
			b, err := repo.books.decode(bookDoc)
			if err != nil {
				return err
			}
			if b.AvailableCopies < b.TotalCopies {
				b.AvailableCopies++
			}
			b.UpdatedAt = core.NowFunc().UTC()
			if err = tx.Set(bookRef, b); err != nil {
				return err
			}
		}
		return tx.Delete(loanRef)
	})
	if err != nil {
		return library.Loan{}, err
	}
	return l, nil
}

func (repo *libraryRepository) QueryLoans(ctx context.Context, filter library.LoanFilter) ([]library.Loan, error) {
	q := repo.loans.inSchool(filter.SchoolID)
	if filter.BookID != "" {
		q = q.Where("bookId", "==", filter.BookID)
	}
	return repo.loans.all(ctx, q, filter.Match)
}

func (repo *libraryRepository) GetLoan(ctx context.Context, schoolID, id string) (library.Loan, error) {
	return repo.loans.get(ctx, id, library.ErrLoanNotFound, loanOf(schoolID))
}
