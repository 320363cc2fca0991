package license

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/acfjba/platformdigital-sub000/core"
)

// Plans
const (
	PlanBasic    = "basic"
	PlanStandard = "standard"
	PlanPremium  = "premium"
)

// Statuses
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusExpired   = "expired"
)

var (
	Plans    = []string{PlanBasic, PlanStandard, PlanPremium}
	Statuses = []string{StatusActive, StatusSuspended, StatusExpired}

	defaultSeats = map[string]int{
		PlanBasic:    25,
		PlanStandard: 100,
		PlanPremium:  500,
	}
)

// DefaultSeats returns the number of seats included in plan.
func DefaultSeats(plan string) int {
	return defaultSeats[plan]
}

type License struct {
	ID        string    `json:"id" firestore:"-" db:"id"`
	SchoolID  string    `json:"school_id" firestore:"schoolId" db:"school_id"`
	Plan      string    `json:"plan" firestore:"plan" db:"plan"`
	Seats     int       `json:"seats" firestore:"seats" db:"seats"`
	StartsAt  time.Time `json:"starts_at" firestore:"startsAt" db:"starts_at"`    // UTC
	ExpiresAt time.Time `json:"expires_at" firestore:"expiresAt" db:"expires_at"` // UTC
	Status    string    `json:"status" firestore:"status" db:"status"`
	Notes     string    `json:"notes" firestore:"notes" db:"notes"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt" db:"updated_at"` // UTC
}

// IsUsable reports whether the school may use the platform at now.
func (l License) IsUsable(now time.Time) bool {
	return l.Status == StatusActive && now.Before(l.ExpiresAt)
}

// DaysLeft returns the number of whole days before the license expires (0 when past).
func (l License) DaysLeft(now time.Time) int {
	if !now.Before(l.ExpiresAt) {
		return 0
	}
	return int(l.ExpiresAt.Sub(now).Hours() / 24)
}

// NewLicense contains information needed to issue a license.
type NewLicense struct {
	Plan   string `json:"plan" validate:"required,oneof=basic standard premium"`
	Seats  int    `json:"seats" validate:"gte=0,lte=100000"`
	Months int    `json:"months" validate:"required,min=1,max=60"`
	Notes  string `json:"notes" validate:"max=1000"`
}

func (nl *NewLicense) Validate(validate *validator.Validate) error {
	nl.Plan = core.CleanString(nl.Plan, true /* lower */)
	nl.Notes = core.CleanString(nl.Notes)
	return validate.Struct(nl)
}

type Renewal struct {
	Months int `json:"months" validate:"required,min=1,max=60"`
}

func (r *Renewal) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

type QueryFilter struct {
	Status string `query:"status"`
	Plan   string `query:"plan"`
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Plan = core.CleanString(qf.Plan, true /* lower */)
}

// Match applies the filter to lic, for backends filtering in memory.
func (qf *QueryFilter) Match(lic License) bool {
	if qf.Status != "" && lic.Status != qf.Status {
		return false
	}
	return qf.Plan == "" || lic.Plan == qf.Plan
}
