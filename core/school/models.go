package school

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/acfjba/platformdigital-sub000/core"
)

type School struct {
	ID        string    `json:"id" firestore:"-" db:"id"`
	Name      string    `json:"name" firestore:"name" db:"name"`
	Code      string    `json:"code" firestore:"code" db:"code"`
	Address   string    `json:"address" firestore:"address" db:"address"`
	Email     string    `json:"email" firestore:"email" db:"email"`
	Phone     string    `json:"phone" firestore:"phone" db:"phone"`
	IsActive  bool      `json:"is_active" firestore:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt" db:"updated_at"` // UTC
}

// NewSchool contains information needed to register a school.
type NewSchool struct {
	Name    string `json:"name" validate:"required,notblank,max=200"`
	Code    string `json:"code" validate:"required,max=20,alphanum_"`
	Address string `json:"address" validate:"max=500"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=30"`
}

func (ns *NewSchool) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanName(ns.Name)
	ns.Code = normalizeCode(ns.Code)
	ns.Address = core.CleanString(ns.Address)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	return validate.Struct(ns)
}

// UpdateSchool defines what may be changed on a school. Empty fields keep their value.
type UpdateSchool struct {
	Name     string  `json:"name" validate:"max=200"`
	Code     string  `json:"code" validate:"omitempty,max=20,alphanum_"`
	Address  *string `json:"address"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"is_active"`
}

func (us *UpdateSchool) Validate(validate *validator.Validate) error {
	us.Name = core.CleanName(us.Name)
	us.Code = normalizeCode(us.Code)
	if us.Email != nil {
		email := core.CleanString(*us.Email, true /* lower */)
		us.Email = &email
		if email != "" {
			if err := validate.Var(email, "email"); err != nil {
				return core.NewFieldError("email", "must be a valid email address")
			}
		}
	}
	return validate.Struct(us)
}

func (us UpdateSchool) apply(sch School) School {
	if us.Name != "" {
		sch.Name = us.Name
	}
	if us.Code != "" {
		sch.Code = us.Code
	}
	if us.Address != nil {
		sch.Address = core.CleanString(*us.Address)
	}
	if us.Email != nil {
		sch.Email = *us.Email
	}
	if us.Phone != nil {
		sch.Phone = core.CleanString(*us.Phone)
	}
	if us.IsActive != nil {
		sch.IsActive = *us.IsActive
	}
	return sch
}

type QueryFilter struct {
	Search   string `query:"search"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Match applies the filter to sch, for backends filtering in memory.
func (qf *QueryFilter) Match(sch School) bool {
	if !core.ContainsFold(qf.Search, sch.Name, sch.Code) {
		return false
	}
	return qf.IsActive == nil || sch.IsActive == *qf.IsActive
}

func normalizeCode(code string) string {
	return strings.ToUpper(core.CleanString(code))
}
