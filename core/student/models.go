package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/acfjba/platformdigital-sub000/core"
)

// Statuses
const (
	StatusEnrolled    = "enrolled"
	StatusTransferred = "transferred"
	StatusGraduated   = "graduated"
)

// Genders
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

type Student struct {
	ID            string    `json:"id" firestore:"-" db:"id"`
	SchoolID      string    `json:"school_id" firestore:"schoolId" db:"school_id"`
	AdmissionNo   string    `json:"admission_no" firestore:"admissionNo" db:"admission_no"`
	Name          string    `json:"name" firestore:"name" db:"name"`
	ClassName     string    `json:"class_name" firestore:"className" db:"class_name"`
	Gender        string    `json:"gender" firestore:"gender" db:"gender"`
	DateOfBirth   string    `json:"date_of_birth" firestore:"dateOfBirth" db:"date_of_birth"` // YYYY-MM-DD
	GuardianName  string    `json:"guardian_name" firestore:"guardianName" db:"guardian_name"`
	GuardianPhone string    `json:"guardian_phone" firestore:"guardianPhone" db:"guardian_phone"`
	Status        string    `json:"status" firestore:"status" db:"status"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" firestore:"updatedAt" db:"updated_at"`
}

// Input holds the writable fields of a student, used to create and to replace one.
type Input struct {
	AdmissionNo   string `json:"admission_no" validate:"required,max=30,alphanum_"`
	Name          string `json:"name" validate:"required,notblank,max=200"`
	ClassName     string `json:"class_name" validate:"required,notblank,max=50"`
	Gender        string `json:"gender" validate:"omitempty,oneof=male female other"`
	DateOfBirth   string `json:"date_of_birth" validate:"omitempty,isodate"`
	GuardianName  string `json:"guardian_name" validate:"max=200"`
	GuardianPhone string `json:"guardian_phone" validate:"max=30"`
	Status        string `json:"status" validate:"omitempty,oneof=enrolled transferred graduated"`
}

// Clean normalizes the input before validation.
func (in *Input) Clean() {
	in.AdmissionNo = core.CleanString(in.AdmissionNo)
	in.Name = core.CleanName(in.Name)
	in.ClassName = core.CleanString(in.ClassName)
	in.Gender = core.CleanString(in.Gender, true /* lower */)
	in.DateOfBirth = core.CleanString(in.DateOfBirth)
	in.GuardianName = core.CleanName(in.GuardianName)
	in.GuardianPhone = core.CleanString(in.GuardianPhone)
	in.Status = core.CleanString(in.Status, true /* lower */)
	if in.Status == "" {
		in.Status = StatusEnrolled
	}
}

func (in *Input) Validate(validate *validator.Validate) error {
	in.Clean()
	return validate.Struct(in)
}

func (in Input) apply(std Student) Student {
	std.AdmissionNo = in.AdmissionNo
	std.Name = in.Name
	std.ClassName = in.ClassName
	std.Gender = in.Gender
	std.DateOfBirth = in.DateOfBirth
	std.GuardianName = in.GuardianName
	std.GuardianPhone = in.GuardianPhone
	std.Status = in.Status
	return std
}

type QueryFilter struct {
	SchoolID  string `query:"-"`
	Search    string `query:"search"`
	ClassName string `query:"class_name"`
	Status    string `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ClassName = core.CleanString(qf.ClassName)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

// Match applies the filter to std, for backends filtering in memory.
func (qf *QueryFilter) Match(std Student) bool {
	if qf.SchoolID != "" && std.SchoolID != qf.SchoolID {
		return false
	}
	if !core.ContainsFold(qf.Search, std.Name, std.AdmissionNo) {
		return false
	}
	if qf.ClassName != "" && !core.EqualFold(std.ClassName, qf.ClassName) {
		return false
	}
	return qf.Status == "" || std.Status == qf.Status
}
