package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/acfjba/platformdigital-sub000/core"
)

// Statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

var (
	Statuses  = []string{StatusPresent, StatusAbsent, StatusLate, StatusExcused}
	CSVHeader = []string{"date", "class", "admission_no", "student", "status", "remarks"}
)

type Record struct {
	ID          string    `json:"id" firestore:"-" db:"id"`
	SchoolID    string    `json:"school_id" firestore:"schoolId" db:"school_id"`
	StudentID   string    `json:"student_id" firestore:"studentId" db:"student_id"`
	AdmissionNo string    `json:"admission_no" firestore:"admissionNo" db:"admission_no"`
	StudentName string    `json:"student_name" firestore:"studentName" db:"student_name"`
	ClassName   string    `json:"class_name" firestore:"className" db:"class_name"`
	Date        string    `json:"date" firestore:"date" db:"date"` // YYYY-MM-DD
	Status      string    `json:"status" firestore:"status" db:"status"`
	Remarks     string    `json:"remarks" firestore:"remarks" db:"remarks"`
	RecordedBy  string    `json:"recorded_by" firestore:"recordedBy" db:"recorded_by"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt" db:"updated_at"`
}

func (rec Record) CSVRow() []string {
	return []string{rec.Date, rec.ClassName, rec.AdmissionNo, rec.StudentName, rec.Status, rec.Remarks}
}

type Entry struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=present absent late excused"`
	Remarks   string `json:"remarks" validate:"max=500"`
}

// ClassMark is the register of one class for one day.
type ClassMark struct {
	Date      string  `json:"date" validate:"required,isodate"`
	ClassName string  `json:"class_name" validate:"required,notblank"`
	Entries   []Entry `json:"entries" validate:"required,min=1,max=500,dive"`
}

func (cm *ClassMark) Validate(validate *validator.Validate) error {
	cm.Date = core.CleanString(cm.Date)
	cm.ClassName = core.CleanString(cm.ClassName)
	for i := range cm.Entries {
		cm.Entries[i].StudentID = core.CleanString(cm.Entries[i].StudentID)
		cm.Entries[i].Status = core.CleanString(cm.Entries[i].Status, true /* lower */)
		cm.Entries[i].Remarks = core.CleanString(cm.Entries[i].Remarks)
	}
	return validate.Struct(cm)
}

type QueryFilter struct {
	SchoolID  string `query:"-"`
	ClassName string `query:"class_name"`
	StudentID string `query:"student_id"`
	Status    string `query:"status"`
	From      string `query:"from"` // YYYY-MM-DD, inclusive
	To        string `query:"to"`   // YYYY-MM-DD, inclusive
}

func (qf *QueryFilter) Clean() {
	qf.ClassName = core.CleanString(qf.ClassName)
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.From = core.CleanString(qf.From)
	qf.To = core.CleanString(qf.To)
}

func (qf *QueryFilter) Validate() error {
	return core.ValidateDateRange(qf.From, qf.To)
}

// Match applies the filter to rec, for backends filtering in memory.
func (qf *QueryFilter) Match(rec Record) bool {
	if qf.SchoolID != "" && rec.SchoolID != qf.SchoolID {
		return false
	}
	if qf.ClassName != "" && !core.EqualFold(rec.ClassName, qf.ClassName) {
		return false
	}
	if qf.StudentID != "" && rec.StudentID != qf.StudentID {
		return false
	}
	if qf.Status != "" && rec.Status != qf.Status {
		return false
	}
	return core.InDateRange(rec.Date, qf.From, qf.To)
}

// StudentSummary holds the attendance counts of one student.
type StudentSummary struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	ClassName   string  `json:"class_name"`
	Present     int     `json:"present"`
	Absent      int     `json:"absent"`
	Late        int     `json:"late"`
	Excused     int     `json:"excused"`
	Total       int     `json:"total"`
	Rate        float64 `json:"rate"`
}

type Summary struct {
	Students    []StudentSummary `json:"students"`
	Total       int              `json:"total"`
	Attended    int              `json:"attended"`
	OverallRate float64          `json:"overall_rate"`
}
