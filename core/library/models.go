package library

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/acfjba/platformdigital-sub000/core"
)

// Borrower types
const (
	BorrowerStudent = "student"
	BorrowerStaff   = "staff"
)

const (
	// DefaultLoanPeriod applies when a loan is issued without a due date.
	DefaultLoanPeriod = 14 * 24 * time.Hour
	defaultCategory   = "General"
)

type Book struct {
	ID              string    `json:"id" firestore:"-" db:"id"`
	SchoolID        string    `json:"school_id" firestore:"schoolId" db:"school_id"`
	ISBN            string    `json:"isbn" firestore:"isbn" db:"isbn"`
	Title           string    `json:"title" firestore:"title" db:"title"`
	Author          string    `json:"author" firestore:"author" db:"author"`
	Category        string    `json:"category" firestore:"category" db:"category"`
	TotalCopies     int       `json:"total_copies" firestore:"totalCopies" db:"total_copies"`
	AvailableCopies int       `json:"available_copies" firestore:"availableCopies" db:"available_copies"`
	CreatedAt       time.Time `json:"created_at" firestore:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" firestore:"updatedAt" db:"updated_at"`
}

// OnLoan returns the number of copies currently lent.
func (b Book) OnLoan() int {
	return b.TotalCopies - b.AvailableCopies
}

type Loan struct {
	ID           string    `json:"id" firestore:"-" db:"id"`
	SchoolID     string    `json:"school_id" firestore:"schoolId" db:"school_id"`
	BookID       string    `json:"book_id" firestore:"bookId" db:"book_id"`
	BookTitle    string    `json:"book_title" firestore:"bookTitle" db:"book_title"`
	BorrowerID   string    `json:"borrower_id" firestore:"borrowerId" db:"borrower_id"`
	BorrowerName string    `json:"borrower_name" firestore:"borrowerName" db:"borrower_name"`
	BorrowerType string    `json:"borrower_type" firestore:"borrowerType" db:"borrower_type"`
	IssuedBy     string    `json:"issued_by" firestore:"issuedBy" db:"issued_by"`
	IssuedAt     time.Time `json:"issued_at" firestore:"issuedAt" db:"issued_at"`
	DueAt        time.Time `json:"due_at" firestore:"dueAt" db:"due_at"`
}

func (l Loan) IsOverdue(now time.Time) bool {
	return l.DueAt.Before(now)
}

// BookInput holds the writable fields of a book.
type BookInput struct {
	ISBN        string `json:"isbn" validate:"max=20"`
	Title       string `json:"title" validate:"required,notblank,max=300"`
	Author      string `json:"author" validate:"max=200"`
	Category    string `json:"category" validate:"max=100"`
	TotalCopies int    `json:"total_copies" validate:"gte=1,lte=10000"`
}

func (in *BookInput) Validate(validate *validator.Validate) error {
	in.ISBN = core.CleanString(in.ISBN)
	in.Title = core.CleanString(in.Title)
	in.Author = core.CleanString(in.Author)
	in.Category = core.CleanString(in.Category)
	if in.Category == "" {
		in.Category = defaultCategory
	}
	return validate.Struct(in)
}

// NewLoan contains information needed to lend a book.
type NewLoan struct {
	BookID       string `json:"book_id" validate:"required"`
	BorrowerID   string `json:"borrower_id" validate:"required"`
	BorrowerType string `json:"borrower_type" validate:"required,oneof=student staff"`
	DueDate      string `json:"due_date" validate:"omitempty,isodate"` // YYYY-MM-DD; defaults to 14 days
}

func (nl *NewLoan) Validate(validate *validator.Validate) error {
	nl.BookID = core.CleanString(nl.BookID)
	nl.BorrowerID = core.CleanString(nl.BorrowerID)
	nl.BorrowerType = core.CleanString(nl.BorrowerType, true /* lower */)
	nl.DueDate = core.CleanString(nl.DueDate)
	return validate.Struct(nl)
}

type BookFilter struct {
	SchoolID      string `query:"-"`
	Search        string `query:"search"`
	Category      string `query:"category"`
	AvailableOnly bool   `query:"available"`
}

func (bf *BookFilter) Clean() {
	bf.Search = core.CleanString(bf.Search)
	bf.Category = core.CleanString(bf.Category)
}

// Match applies the filter to b, for backends filtering in memory.
func (bf *BookFilter) Match(b Book) bool {
	if bf.SchoolID != "" && b.SchoolID != bf.SchoolID {
		return false
	}
	if !core.ContainsFold(bf.Search, b.Title, b.Author, b.ISBN) {
		return false
	}
	if bf.Category != "" && !core.EqualFold(b.Category, bf.Category) {
		return false
	}
	return !bf.AvailableOnly || b.AvailableCopies > 0
}

type LoanFilter struct {
	SchoolID    string    `query:"-"`
	BookID      string    `query:"book_id"`
	BorrowerID  string    `query:"borrower_id"`
	OverdueOnly bool      `query:"overdue"`
	Now         time.Time `query:"-"` // reference time of OverdueOnly
}

// Match applies the filter to l, for backends filtering in memory.
func (lf *LoanFilter) Match(l Loan) bool {
	if lf.SchoolID != "" && l.SchoolID != lf.SchoolID {
		return false
	}
	if lf.BookID != "" && l.BookID != lf.BookID {
		return false
	}
	if lf.BorrowerID != "" && l.BorrowerID != lf.BorrowerID {
		return false
	}
	return !lf.OverdueOnly || l.IsOverdue(lf.Now)
}

type CategoryStock struct {
	Category    string `json:"category"`
	Titles      int    `json:"titles"`
	TotalCopies int    `json:"total_copies"`
	Available   int    `json:"available"`
	OnLoan      int    `json:"on_loan"`
}

type Inventory struct {
	Titles      int             `json:"titles"`
	TotalCopies int             `json:"total_copies"`
	Available   int             `json:"available"`
	OnLoan      int             `json:"on_loan"`
	Overdue     int             `json:"overdue"`
	ByCategory  []CategoryStock `json:"by_category"`
}
