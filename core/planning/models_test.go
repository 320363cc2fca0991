package planning

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/acfjba/platformdigital-sub000/core"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusDraft, StatusSubmitted, true},
		{StatusDraft, StatusApproved, false},
		{StatusSubmitted, StatusApproved, true},
		{StatusSubmitted, StatusRejected, true},
		{StatusSubmitted, StatusDraft, false},
		{StatusRejected, StatusSubmitted, true},
		{StatusApproved, StatusSubmitted, false},
		{StatusApproved, StatusRejected, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}

	assert.True(t, IsEditable(StatusDraft))
	assert.True(t, IsEditable(StatusRejected))
	assert.False(t, IsEditable(StatusSubmitted))
	assert.False(t, IsEditable(StatusApproved))
}

func TestReview_Validate(t *testing.T) {
	validate := validator.New()

	tests := []struct {
		name      string
		review    Review
		wantField string
		wantErr   bool
	}{
		{name: "approve without note", review: Review{Decision: " Approved "}},
		{name: "reject with note", review: Review{Decision: "rejected", Note: "Add activities"}},
		{name: "reject without note", review: Review{Decision: "rejected", Note: "  "}, wantField: "note"},
		{name: "unknown decision", review: Review{Decision: "maybe"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.review.Validate(validate)
			switch {
			case tt.wantField != "":
				var vErr *core.ValidationError
				if assert.ErrorAs(t, err, &vErr) {
					assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
				}
			case tt.wantErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestWorkbookPlan_Progress(t *testing.T) {
	assert.Equal(t, 0.0, WorkbookPlan{}.Progress())
	assert.Equal(t, 0.33, WorkbookPlan{PlannedPages: 3, CompletedPages: 1}.Progress())
}
