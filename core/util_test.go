package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		n, total int
		want     float64
	}{
		{0, 0, 0},
		{1, 3, 0.33},
		{2, 3, 0.67},
		{5, 5, 1},
	}
	for _, tt := range tests {
		if got := Ratio(tt.n, tt.total); got != tt.want {
			t.Errorf("Ratio(%d, %d) = %v, want %v", tt.n, tt.total, got, tt.want)
		}
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  Jane  Doe ", "Jane Doe"},
		{"Hill\t Side\n", "Hill Side"},
		{"Ana", "Ana"},
	}
	for _, tt := range tests {
		if got := CleanName(tt.in); got != tt.want {
			t.Errorf("CleanName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	assert.Equal(t, "jane  doe", CleanString(" Jane  Doe ", true))
}

func TestInDateRange(t *testing.T) {
	tests := []struct {
		name           string
		date, from, to string
		want           bool
	}{
		{name: "open", date: "2024-03-04", want: true},
		{name: "on from", date: "2024-03-04", from: "2024-03-04", want: true},
		{name: "on to", date: "2024-03-04", to: "2024-03-04", want: true},
		{name: "before", date: "2024-03-03", from: "2024-03-04", want: false},
		{name: "after", date: "2024-03-05", from: "2024-03-01", to: "2024-03-04", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InDateRange(tt.date, tt.from, tt.to))
		})
	}
}

func TestValidateDateRange(t *testing.T) {
	tests := []struct {
		name      string
		from, to  string
		wantField string
	}{
		{name: "empty"},
		{name: "valid", from: "2024-03-01", to: "2024-03-31"},
		{name: "bad from", from: "01/03/2024", wantField: "from"},
		{name: "bad to", to: "2024-13-01", wantField: "to"},
		{name: "reversed", from: "2024-03-31", to: "2024-03-01", wantField: "to"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDateRange(tt.from, tt.to)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			if assert.True(t, errors.As(err, &vErr)) && assert.Len(t, vErr.Fields, 1) {
				assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
			}
		})
	}
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("", "anything"))
	assert.True(t, ContainsFold("ACH", "Achebe", "Things"))
	assert.False(t, ContainsFold("zz", "Achebe", "Things"))
}

func TestErrorKinds(t *testing.T) {
	notFound := NewNotFoundError("book")
	assert.EqualError(t, notFound, "book not found")
	assert.True(t, IsNotFound(errors.Wrap(notFound, "getting book")))
	assert.False(t, IsConflict(notFound))

	conflict := errors.Wrap(NewConflictError("no copies available"), "issuing loan")
	assert.True(t, IsConflict(conflict))
	assert.True(t, IsPermission(NewPermissionError("nope")))
	assert.True(t, IsValidation(NewFieldError("note", "required")))
}
