package exam

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/acfjba/platformdigital-sub000/core"
)

// PassMark is the minimum percentage of a pass.
const PassMark = 50.0

var (
	Grades    = []string{"A", "B", "C", "D", "F"}
	CSVHeader = []string{"year", "exam", "class", "subject", "admission_no", "student", "score", "max_score", "percentage", "grade", "remarks"}
)

// GradeFor returns the letter grade of a percentage.
func GradeFor(pct float64) string {
	switch {
	case pct >= 80:
		return "A"
	case pct >= 70:
		return "B"
	case pct >= 60:
		return "C"
	case pct >= 50:
		return "D"
	default:
		return "F"
	}
}

type Result struct {
	ID          string    `json:"id" firestore:"-" db:"id"`
	SchoolID    string    `json:"school_id" firestore:"schoolId" db:"school_id"`
	StudentID   string    `json:"student_id" firestore:"studentId" db:"student_id"`
	AdmissionNo string    `json:"admission_no" firestore:"admissionNo" db:"admission_no"`
	StudentName string    `json:"student_name" firestore:"studentName" db:"student_name"`
	ClassName   string    `json:"class_name" firestore:"className" db:"class_name"`
	Subject     string    `json:"subject" firestore:"subject" db:"subject"`
	Exam        string    `json:"exam" firestore:"exam" db:"exam"`
	Year        int       `json:"year" firestore:"year" db:"year"`
	Score       float64   `json:"score" firestore:"score" db:"score"`
	MaxScore    float64   `json:"max_score" firestore:"maxScore" db:"max_score"`
	Percentage  float64   `json:"percentage" firestore:"percentage" db:"percentage"`
	Grade       string    `json:"grade" firestore:"grade" db:"grade"`
	Remarks     string    `json:"remarks" firestore:"remarks" db:"remarks"`
	RecordedBy  string    `json:"recorded_by" firestore:"recordedBy" db:"recorded_by"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt" db:"updated_at"`
}

// Key identifies a result: one per student, subject, exam and year. Subject and exam are matched case-insensitively.
func (res Result) Key() string {
	return res.StudentID + "|" + strings.ToLower(res.Subject) + "|" + strings.ToLower(res.Exam) + "|" + strconv.Itoa(res.Year)
}

func (res Result) CSVRow() []string {
	fmtFloat := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
	return []string{
		strconv.Itoa(res.Year), res.Exam, res.ClassName, res.Subject, res.AdmissionNo, res.StudentName,
		fmtFloat(res.Score), fmtFloat(res.MaxScore), strconv.FormatFloat(res.Percentage, 'f', 2, 64), res.Grade, res.Remarks,
	}
}

// NewResult contains information needed to record the result of a student.
type NewResult struct {
	StudentID string  `json:"student_id" validate:"required"`
	Subject   string  `json:"subject" validate:"required,notblank,max=100"`
	Exam      string  `json:"exam" validate:"required,notblank,max=100"`
	Year      int     `json:"year" validate:"required,min=2000,max=2100"`
	Score     float64 `json:"score" validate:"gte=0,ltefield=MaxScore"`
	MaxScore  float64 `json:"max_score" validate:"required,gt=0"`
	Remarks   string  `json:"remarks" validate:"max=500"`
}

func (nr *NewResult) Clean() {
	nr.StudentID = core.CleanString(nr.StudentID)
	nr.Subject = core.CleanName(nr.Subject)
	nr.Exam = core.CleanName(nr.Exam)
	nr.Remarks = core.CleanString(nr.Remarks)
}

func (nr *NewResult) Validate(validate *validator.Validate) error {
	nr.Clean()
	return validate.Struct(nr)
}

// Batch records many results at once, all or nothing.
type Batch struct {
	Results []NewResult `json:"results" validate:"required,min=1,max=1000,dive"`
}

func (b *Batch) Validate(validate *validator.Validate) error {
	for i := range b.Results {
		b.Results[i].Clean()
	}
	return validate.Struct(b)
}

type QueryFilter struct {
	SchoolID  string `query:"-"`
	ClassName string `query:"class_name"`
	Subject   string `query:"subject"`
	Exam      string `query:"exam"`
	Year      int    `query:"year"`
	StudentID string `query:"student_id"`
}

func (qf *QueryFilter) Clean() {
	qf.ClassName = core.CleanString(qf.ClassName)
	qf.Subject = core.CleanString(qf.Subject)
	qf.Exam = core.CleanString(qf.Exam)
	qf.StudentID = core.CleanString(qf.StudentID)
}

// Match applies the filter to res, for backends filtering in memory.
func (qf *QueryFilter) Match(res Result) bool {
	if qf.SchoolID != "" && res.SchoolID != qf.SchoolID {
		return false
	}
	if qf.ClassName != "" && !core.EqualFold(res.ClassName, qf.ClassName) {
		return false
	}
	if qf.Subject != "" && !core.EqualFold(res.Subject, qf.Subject) {
		return false
	}
	if qf.Exam != "" && !core.EqualFold(res.Exam, qf.Exam) {
		return false
	}
	if qf.Year != 0 && res.Year != qf.Year {
		return false
	}
	return qf.StudentID == "" || res.StudentID == qf.StudentID
}

// Group aggregates the results sharing a key (a subject or a class).
type Group struct {
	Key      string         `json:"key"`
	Count    int            `json:"count"`
	Mean     float64        `json:"mean"`
	Min      float64        `json:"min"`
	Max      float64        `json:"max"`
	PassRate float64        `json:"pass_rate"`
	Grades   map[string]int `json:"grades"`
}

type Summary struct {
	Count     int     `json:"count"`
	Mean      float64 `json:"mean"`
	PassRate  float64 `json:"pass_rate"`
	BySubject []Group `json:"by_subject"`
	ByClass   []Group `json:"by_class"`
}
