package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	books := []Book{
		{Title: "Reader", Category: "General", TotalCopies: 3, AvailableCopies: 1},
		{Title: "Atlas", Category: "Geography", TotalCopies: 2, AvailableCopies: 2},
		{Title: "Dictionary", Category: "General", TotalCopies: 1, AvailableCopies: 0},
	}
	inv := Summarize(books)
	assert.Equal(t, 3, inv.Titles)
	assert.Equal(t, 6, inv.TotalCopies)
	assert.Equal(t, 3, inv.Available)
	assert.Equal(t, 3, inv.OnLoan)

	assert.Equal(t, []CategoryStock{
		{Category: "General", Titles: 2, TotalCopies: 4, Available: 1, OnLoan: 3},
		{Category: "Geography", Titles: 1, TotalCopies: 2, Available: 2, OnLoan: 0},
	}, inv.ByCategory)
}

func TestLoan_IsOverdue(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		due  time.Time
		want bool
	}{
		{name: "due later", due: now.Add(time.Hour), want: false},
		{name: "due now", due: now, want: false},
		{name: "past due", due: now.Add(-time.Second), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Loan{DueAt: tt.due}.IsOverdue(now))
		})
	}
}

func TestLoanFilter_Match(t *testing.T) {
	now := time.Now()
	overdue := Loan{SchoolID: "s", BookID: "b1", BorrowerID: "u1", DueAt: now.Add(-time.Hour)}
	current := Loan{SchoolID: "s", BookID: "b2", BorrowerID: "u1", DueAt: now.Add(time.Hour)}

	filter := LoanFilter{SchoolID: "s", OverdueOnly: true, Now: now}
	assert.True(t, filter.Match(overdue))
	assert.False(t, filter.Match(current))

	filter = LoanFilter{SchoolID: "other"}
	assert.False(t, filter.Match(current))

	filter = LoanFilter{SchoolID: "s", BookID: "b2"}
	assert.True(t, filter.Match(current))
	assert.False(t, filter.Match(overdue))
}
