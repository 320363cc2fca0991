package library

import (
	"context"
	"sort"
	"time"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/staff"
	"github.com/acfjba/platformdigital-sub000/core/student"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

var (
	// errors
	ErrBookNotFound = core.NewNotFoundError("book")
	ErrLoanNotFound = core.NewNotFoundError("loan")
	ErrNoCopies     = core.NewConflictError("no copies available")
	ErrBookOnLoan   = core.NewConflictError("book has copies on loan")
	ErrCopiesOnLoan = core.NewFieldError("total_copies", errCopiesOnLoan)
)

const (
	errCopiesOnLoan    = "cannot be lower than the number of copies on loan"
	errDueDateInPast   = "due date must be in the future"
	errBorrowerUnknown = "borrower not found"
)

type (
	Repository interface {
		CreateBook(ctx context.Context, b Book) (Book, error)
		QueryBooks(ctx context.Context, filter BookFilter) ([]Book, error)
		GetBook(ctx context.Context, schoolID, id string) (Book, error)
		// UpdateBook stores the details of b. The stored available copies shift by the change
		// of b.TotalCopies within the same transaction as the write; ErrCopiesOnLoan is returned
		// when the new total is lower than the copies out.
		UpdateBook(ctx context.Context, b Book) (Book, error)
		// DeleteBook returns ErrBookOnLoan while a loan of the book is open.
		DeleteBook(ctx context.Context, schoolID, id string) error

		// IssueLoan atomically takes one available copy of the loan's book and stores the loan.
		// It returns ErrNoCopies when every copy is out.
		IssueLoan(ctx context.Context, l Loan) (Loan, error)
		// ReturnLoan atomically deletes the loan and puts its copy back on the shelf.
		ReturnLoan(ctx context.Context, schoolID, loanID string) (Loan, error)
		QueryLoans(ctx context.Context, filter LoanFilter) ([]Loan, error)
		GetLoan(ctx context.Context, schoolID, id string) (Loan, error)
	}

	StudentGetter interface {
		Get(ctx context.Context, schoolID, id string) (student.Student, error)
	}

	StaffGetter interface {
		Get(ctx context.Context, schoolID, id string) (staff.Staff, error)
	}

	Service struct {
		repo     Repository
		students StudentGetter
		staff    StaffGetter
	}
)

func NewService(repo Repository, students StudentGetter, staffGetter StaffGetter) *Service {
	return &Service{repo: repo, students: students, staff: staffGetter}
}

func (svc *Service) AddBook(ctx context.Context, schoolID string, in BookInput) (Book, error) {
	now := core.NowFunc().UTC()
	return svc.repo.CreateBook(ctx, Book{
		SchoolID:        schoolID,
		ISBN:            in.ISBN,
		Title:           in.Title,
		Author:          in.Author,
		Category:        in.Category,
		TotalCopies:     in.TotalCopies,
		AvailableCopies: in.TotalCopies,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

// QueryBooks returns the matching books ordered by title.
func (svc *Service) QueryBooks(ctx context.Context, filter BookFilter) ([]Book, error) {
	filter.Clean()
	books, err := svc.repo.QueryBooks(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	return books, nil
}

func (svc *Service) GetBook(ctx context.Context, schoolID, id string) (Book, error) {
	return svc.repo.GetBook(ctx, schoolID, id)
}

// UpdateBook replaces the details of b. Changing the number of copies shifts the available ones.
func (svc *Service) UpdateBook(ctx context.Context, b Book, in BookInput) (Book, error) {
	b.ISBN = in.ISBN
	b.Title = in.Title
	b.Author = in.Author
	b.Category = in.Category
	b.TotalCopies = in.TotalCopies
	b.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateBook(ctx, b)
}

// DeleteBook removes a book that has no copies out.
func (svc *Service) DeleteBook(ctx context.Context, schoolID, id string) error {
	return svc.repo.DeleteBook(ctx, schoolID, id)
}

func (svc *Service) borrowerName(ctx context.Context, schoolID, id, kind string) (string, error) {
	var (
		name string
		err  error
	)
	if kind == BorrowerStaff {
		var st staff.Staff
		st, err = svc.staff.Get(ctx, schoolID, id)
		name = st.Name
	} else {
		var std student.Student
		std, err = svc.students.Get(ctx, schoolID, id)
		name = std.Name
	}
	if core.IsNotFound(err) {
		return "", core.NewFieldError("borrower_id", errBorrowerUnknown)
	}
	return name, err
}

// Issue lends one copy of a book.
func (svc *Service) Issue(ctx context.Context, schoolID string, actor user.User, nl NewLoan) (Loan, error) {
	now := core.NowFunc().UTC()
	due := now.Add(DefaultLoanPeriod)
	if nl.DueDate != "" {
		d, err := core.ParseDate(nl.DueDate)
		if err != nil {
			return Loan{}, core.NewFieldError("due_date", err.Error())
		}
		due = d.Add(24*time.Hour - time.Second) // end of day
		if !due.After(now) {
			return Loan{}, core.NewFieldError("due_date", errDueDateInPast)
		}
	}

	book, err := svc.repo.GetBook(ctx, schoolID, nl.BookID)
	if err != nil {
		return Loan{}, err
	}
	name, err := svc.borrowerName(ctx, schoolID, nl.BorrowerID, nl.BorrowerType)
	if err != nil {
		return Loan{}, err
	}

	return svc.repo.IssueLoan(ctx, Loan{
		SchoolID:     schoolID,
		BookID:       book.ID,
		BookTitle:    book.Title,
		BorrowerID:   nl.BorrowerID,
		BorrowerName: name,
		BorrowerType: nl.BorrowerType,
		IssuedBy:     actor.ID,
		IssuedAt:     now,
		DueAt:        due,
	})
}

// Return closes a loan and puts the copy back.
func (svc *Service) Return(ctx context.Context, schoolID, loanID string) (Loan, error) {
	return svc.repo.ReturnLoan(ctx, schoolID, loanID)
}

// QueryLoans returns the matching loans, soonest due first.
func (svc *Service) QueryLoans(ctx context.Context, filter LoanFilter) ([]Loan, error) {
	if filter.Now.IsZero() {
		filter.Now = core.NowFunc().UTC()
	}
	loans, err := svc.repo.QueryLoans(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(loans, func(i, j int) bool { return loans[i].DueAt.Before(loans[j].DueAt) })
	return loans, nil
}

func (svc *Service) GetLoan(ctx context.Context, schoolID, id string) (Loan, error) {
	return svc.repo.GetLoan(ctx, schoolID, id)
}

// Overdue returns the loans of the school due before now.
func (svc *Service) Overdue(ctx context.Context, schoolID string, now time.Time) ([]Loan, error) {
	return svc.QueryLoans(ctx, LoanFilter{SchoolID: schoolID, OverdueOnly: true, Now: now})
}

// Inventory aggregates the stock of the school.
func (svc *Service) Inventory(ctx context.Context, schoolID string) (Inventory, error) {
	books, err := svc.repo.QueryBooks(ctx, BookFilter{SchoolID: schoolID})
	if err != nil {
		return Inventory{}, err
	}
	overdue, err := svc.Overdue(ctx, schoolID, core.NowFunc().UTC())
	if err != nil {
		return Inventory{}, err
	}
	inv := Summarize(books)
	inv.Overdue = len(overdue)
	return inv, nil
}

// Summarize aggregates books in total and per category, categories ordered by name.
func Summarize(books []Book) Inventory {
	var inv Inventory
	byCategory := make(map[string]*CategoryStock)
	for _, b := range books {
		inv.Titles++
		inv.TotalCopies += b.TotalCopies
		inv.Available += b.AvailableCopies
		inv.OnLoan += b.OnLoan()

		cs, ok := byCategory[b.Category]
		if !ok {
			cs = &CategoryStock{Category: b.Category}
			byCategory[b.Category] = cs
		}
		cs.Titles++
		cs.TotalCopies += b.TotalCopies
		cs.Available += b.AvailableCopies
		cs.OnLoan += b.OnLoan()
	}
	inv.ByCategory = make([]CategoryStock, 0, len(byCategory))
	for _, cs := range byCategory {
		inv.ByCategory = append(inv.ByCategory, *cs)
	}
	sort.Slice(inv.ByCategory, func(i, j int) bool { return inv.ByCategory[i].Category < inv.ByCategory[j].Category })
	return inv
}
