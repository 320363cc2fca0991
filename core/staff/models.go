package staff

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/acfjba/platformdigital-sub000/core"
)

// Statuses
const (
	StatusActive   = "active"
	StatusOnLeave  = "on_leave"
	StatusResigned = "resigned"
)

var Statuses = []string{StatusActive, StatusOnLeave, StatusResigned}

type Staff struct {
	ID            string    `json:"id" firestore:"-" db:"id"`
	SchoolID      string    `json:"school_id" firestore:"schoolId" db:"school_id"`
	StaffNo       string    `json:"staff_no" firestore:"staffNo" db:"staff_no"`
	Name          string    `json:"name" firestore:"name" db:"name"`
	Email         string    `json:"email" firestore:"email" db:"email"`
	Phone         string    `json:"phone" firestore:"phone" db:"phone"`
	Position      string    `json:"position" firestore:"position" db:"position"`
	Department    string    `json:"department" firestore:"department" db:"department"`
	Qualification string    `json:"qualification" firestore:"qualification" db:"qualification"`
	Status        string    `json:"status" firestore:"status" db:"status"`
	HiredOn       string    `json:"hired_on" firestore:"hiredOn" db:"hired_on"` // YYYY-MM-DD
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" firestore:"updatedAt" db:"updated_at"`
}

// Input holds the writable fields of a staff record, used to create and to replace one.
type Input struct {
	StaffNo       string `json:"staff_no" validate:"required,max=30,alphanum_"`
	Name          string `json:"name" validate:"required,notblank,max=200"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"max=30"`
	Position      string `json:"position" validate:"max=100"`
	Department    string `json:"department" validate:"max=100"`
	Qualification string `json:"qualification" validate:"max=200"`
	Status        string `json:"status" validate:"omitempty,oneof=active on_leave resigned"`
	HiredOn       string `json:"hired_on" validate:"omitempty,isodate"`
}

// Clean normalizes the input before validation.
func (in *Input) Clean() {
	in.StaffNo = core.CleanString(in.StaffNo)
	in.Name = core.CleanName(in.Name)
	in.Email = core.CleanString(in.Email, true /* lower */)
	in.Phone = core.CleanString(in.Phone)
	in.Position = core.CleanString(in.Position)
	in.Department = core.CleanString(in.Department)
	in.Qualification = core.CleanString(in.Qualification)
	in.Status = core.CleanString(in.Status, true /* lower */)
	in.HiredOn = core.CleanString(in.HiredOn)
	if in.Status == "" {
		in.Status = StatusActive
	}
}

func (in *Input) Validate(validate *validator.Validate) error {
	in.Clean()
	return validate.Struct(in)
}

func (in Input) apply(st Staff) Staff {
	st.StaffNo = in.StaffNo
	st.Name = in.Name
	st.Email = in.Email
	st.Phone = in.Phone
	st.Position = in.Position
	st.Department = in.Department
	st.Qualification = in.Qualification
	st.Status = in.Status
	st.HiredOn = in.HiredOn
	return st
}

type QueryFilter struct {
	SchoolID   string `query:"-"`
	Search     string `query:"search"`
	Department string `query:"department"`
	Status     string `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Department = core.CleanString(qf.Department)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

// Match applies the filter to st, for backends filtering in memory.
func (qf *QueryFilter) Match(st Staff) bool {
	if qf.SchoolID != "" && st.SchoolID != qf.SchoolID {
		return false
	}
	if !core.ContainsFold(qf.Search, st.Name, st.StaffNo, st.Email) {
		return false
	}
	if qf.Department != "" && !core.EqualFold(st.Department, qf.Department) {
		return false
	}
	return qf.Status == "" || st.Status == qf.Status
}
