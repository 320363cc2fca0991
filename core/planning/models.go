package planning

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/acfjba/platformdigital-sub000/core"
)

// Statuses
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

var Statuses = []string{StatusDraft, StatusSubmitted, StatusApproved, StatusRejected}

// transitions lists the statuses reachable from each status.
var transitions = map[string][]string{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusRejected},
	StatusRejected:  {StatusSubmitted},
}

// CanTransition reports whether a plan may go from status `from` to status `to`.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsEditable reports whether the owner may still edit or delete a plan in status.
func IsEditable(status string) bool {
	return status == StatusDraft || status == StatusRejected
}

type LessonPlan struct {
	ID          string    `json:"id" firestore:"-" db:"id"`
	SchoolID    string    `json:"school_id" firestore:"schoolId" db:"school_id"`
	TeacherID   string    `json:"teacher_id" firestore:"teacherId" db:"teacher_id"`
	TeacherName string    `json:"teacher_name" firestore:"teacherName" db:"teacher_name"`
	ClassName   string    `json:"class_name" firestore:"className" db:"class_name"`
	Subject     string    `json:"subject" firestore:"subject" db:"subject"`
	WeekOf      string    `json:"week_of" firestore:"weekOf" db:"week_of"` // YYYY-MM-DD
	Topic       string    `json:"topic" firestore:"topic" db:"topic"`
	Objectives  string    `json:"objectives" firestore:"objectives" db:"objectives"`
	Activities  string    `json:"activities" firestore:"activities" db:"activities"`
	Resources   string    `json:"resources" firestore:"resources" db:"resources"`
	Status      string    `json:"status" firestore:"status" db:"status"`
	ReviewNote  string    `json:"review_note" firestore:"reviewNote" db:"review_note"`
	ReviewedBy  string    `json:"reviewed_by" firestore:"reviewedBy" db:"reviewed_by"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt" db:"updated_at"`
}

type WorkbookPlan struct {
	ID             string    `json:"id" firestore:"-" db:"id"`
	SchoolID       string    `json:"school_id" firestore:"schoolId" db:"school_id"`
	TeacherID      string    `json:"teacher_id" firestore:"teacherId" db:"teacher_id"`
	TeacherName    string    `json:"teacher_name" firestore:"teacherName" db:"teacher_name"`
	ClassName      string    `json:"class_name" firestore:"className" db:"class_name"`
	Subject        string    `json:"subject" firestore:"subject" db:"subject"`
	Term           string    `json:"term" firestore:"term" db:"term"`
	Title          string    `json:"title" firestore:"title" db:"title"`
	PlannedPages   int       `json:"planned_pages" firestore:"plannedPages" db:"planned_pages"`
	CompletedPages int       `json:"completed_pages" firestore:"completedPages" db:"completed_pages"`
	DueDate        string    `json:"due_date" firestore:"dueDate" db:"due_date"` // YYYY-MM-DD
	Status         string    `json:"status" firestore:"status" db:"status"`
	ReviewNote     string    `json:"review_note" firestore:"reviewNote" db:"review_note"`
	ReviewedBy     string    `json:"reviewed_by" firestore:"reviewedBy" db:"reviewed_by"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" firestore:"updatedAt" db:"updated_at"`
}

// Progress returns the share of planned pages completed.
func (wp WorkbookPlan) Progress() float64 {
	return core.Ratio(wp.CompletedPages, wp.PlannedPages)
}

type LessonInput struct {
	ClassName  string `json:"class_name" validate:"required,notblank,max=50"`
	Subject    string `json:"subject" validate:"required,notblank,max=100"`
	WeekOf     string `json:"week_of" validate:"required,isodate"`
	Topic      string `json:"topic" validate:"required,notblank,max=300"`
	Objectives string `json:"objectives" validate:"max=5000"`
	Activities string `json:"activities" validate:"max=5000"`
	Resources  string `json:"resources" validate:"max=5000"`
}

func (in *LessonInput) Validate(validate *validator.Validate) error {
	in.ClassName = core.CleanString(in.ClassName)
	in.Subject = core.CleanString(in.Subject)
	in.WeekOf = core.CleanString(in.WeekOf)
	in.Topic = core.CleanString(in.Topic)
	in.Objectives = core.CleanString(in.Objectives)
	in.Activities = core.CleanString(in.Activities)
	in.Resources = core.CleanString(in.Resources)
	return validate.Struct(in)
}

type WorkbookInput struct {
	ClassName      string `json:"class_name" validate:"required,notblank,max=50"`
	Subject        string `json:"subject" validate:"required,notblank,max=100"`
	Term           string `json:"term" validate:"required,notblank,max=50"`
	Title          string `json:"title" validate:"required,notblank,max=300"`
	PlannedPages   int    `json:"planned_pages" validate:"required,min=1,max=10000"`
	CompletedPages int    `json:"completed_pages" validate:"gte=0,ltefield=PlannedPages"`
	DueDate        string `json:"due_date" validate:"omitempty,isodate"`
}

func (in *WorkbookInput) Validate(validate *validator.Validate) error {
	in.ClassName = core.CleanString(in.ClassName)
	in.Subject = core.CleanString(in.Subject)
	in.Term = core.CleanString(in.Term)
	in.Title = core.CleanString(in.Title)
	in.DueDate = core.CleanString(in.DueDate)
	return validate.Struct(in)
}

type Progress struct {
	CompletedPages int `json:"completed_pages" validate:"gte=0"`
}

// Review is the decision of a reviewer on a submitted plan.
type Review struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Note     string `json:"note" validate:"max=2000"`
}

func (r *Review) Validate(validate *validator.Validate) error {
	r.Decision = core.CleanString(r.Decision, true /* lower */)
	r.Note = core.CleanString(r.Note)
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.Decision == StatusRejected && r.Note == "" {
		return core.NewFieldError("note", "a note is required to reject a plan")
	}
	return nil
}

type QueryFilter struct {
	SchoolID  string `query:"-"`
	TeacherID string `query:"teacher_id"`
	ClassName string `query:"class_name"`
	Subject   string `query:"subject"`
	Status    string `query:"status"`
	Term      string `query:"term"` // workbooks only
}

func (qf *QueryFilter) Clean() {
	qf.TeacherID = core.CleanString(qf.TeacherID)
	qf.ClassName = core.CleanString(qf.ClassName)
	qf.Subject = core.CleanString(qf.Subject)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Term = core.CleanString(qf.Term)
}

func (qf *QueryFilter) match(schoolID, teacherID, className, subject, status string) bool {
	if qf.SchoolID != "" && schoolID != qf.SchoolID {
		return false
	}
	if qf.TeacherID != "" && teacherID != qf.TeacherID {
		return false
	}
	if qf.ClassName != "" && !core.EqualFold(className, qf.ClassName) {
		return false
	}
	if qf.Subject != "" && !core.EqualFold(subject, qf.Subject) {
		return false
	}
	return qf.Status == "" || status == qf.Status
}

// MatchLesson applies the filter to lp, for backends filtering in memory.
func (qf *QueryFilter) MatchLesson(lp LessonPlan) bool {
	return qf.match(lp.SchoolID, lp.TeacherID, lp.ClassName, lp.Subject, lp.Status)
}

// MatchWorkbook applies the filter to wp, for backends filtering in memory.
func (qf *QueryFilter) MatchWorkbook(wp WorkbookPlan) bool {
	if qf.Term != "" && !core.EqualFold(wp.Term, qf.Term) {
		return false
	}
	return qf.match(wp.SchoolID, wp.TeacherID, wp.ClassName, wp.Subject, wp.Status)
}

// Counts holds the number of plans per status.
type Counts map[string]int
