package discipline

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/acfjba/platformdigital-sub000/core"
)

// Kinds
const (
	KindDisciplinary = "disciplinary"
	KindCounselling  = "counselling"
)

// Severities
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Statuses
const (
	StatusOpen     = "open"
	StatusFollowUp = "follow_up"
	StatusResolved = "resolved"
)

type Incident struct {
	ID           string     `json:"id" firestore:"-"`
	SchoolID     string     `json:"school_id" firestore:"schoolId"`
	StudentID    string     `json:"student_id" firestore:"studentId"`
	StudentName  string     `json:"student_name" firestore:"studentName"`
	ClassName    string     `json:"class_name" firestore:"className"`
	Kind         string     `json:"kind" firestore:"kind"`
	Category     string     `json:"category" firestore:"category"`
	Description  string     `json:"description" firestore:"description"`
	ActionTaken  string     `json:"action_taken" firestore:"actionTaken"`
	Severity     string     `json:"severity" firestore:"severity"`
	Status       string     `json:"status" firestore:"status"`
	IncidentDate string     `json:"incident_date" firestore:"incidentDate"` // YYYY-MM-DD
	ReportedBy   string     `json:"reported_by" firestore:"reportedBy"`
	ResolvedAt   *time.Time `json:"resolved_at" firestore:"resolvedAt"`
	CreatedAt    time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt    time.Time  `json:"updated_at" firestore:"updatedAt"`
}

func (inc Incident) IsConfidential() bool {
	return inc.Kind == KindCounselling
}

// Input holds the writable fields of an incident, used to create and to replace one.
type Input struct {
	StudentID    string `json:"student_id" validate:"required"`
	Kind         string `json:"kind" validate:"required,oneof=disciplinary counselling"`
	Category     string `json:"category" validate:"max=100"`
	Description  string `json:"description" validate:"required,notblank,max=5000"`
	ActionTaken  string `json:"action_taken" validate:"max=5000"`
	Severity     string `json:"severity" validate:"omitempty,oneof=low medium high"`
	Status       string `json:"status" validate:"omitempty,oneof=open follow_up"`
	IncidentDate string `json:"incident_date" validate:"omitempty,isodate"`
}

func (in *Input) Validate(validate *validator.Validate) error {
	in.StudentID = core.CleanString(in.StudentID)
	in.Kind = core.CleanString(in.Kind, true /* lower */)
	in.Category = core.CleanString(in.Category)
	in.Description = core.CleanString(in.Description)
	in.ActionTaken = core.CleanString(in.ActionTaken)
	in.Severity = core.CleanString(in.Severity, true /* lower */)
	in.Status = core.CleanString(in.Status, true /* lower */)
	in.IncidentDate = core.CleanString(in.IncidentDate)
	if in.Severity == "" {
		in.Severity = SeverityLow
	}
	if in.Status == "" {
		in.Status = StatusOpen
	}
	if in.IncidentDate == "" {
		in.IncidentDate = core.Today()
	}
	return validate.Struct(in)
}

// Resolution closes an incident.
type Resolution struct {
	ActionTaken string `json:"action_taken" validate:"max=5000"`
}

type QueryFilter struct {
	SchoolID  string `query:"-"`
	Kind      string `query:"kind"`
	Status    string `query:"status"`
	Severity  string `query:"severity"`
	StudentID string `query:"student_id"`
	From      string `query:"from"`
	To        string `query:"to"`

	// set by the service from the caller
	ExcludeConfidential bool   `query:"-"`
	ConfidentialTo      string `query:"-"` // counselling entries of this reporter stay visible
}

func (qf *QueryFilter) Clean() {
	qf.Kind = core.CleanString(qf.Kind, true /* lower */)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Severity = core.CleanString(qf.Severity, true /* lower */)
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.From = core.CleanString(qf.From)
	qf.To = core.CleanString(qf.To)
}

// Match applies the filter to inc, for backends filtering in memory.
func (qf *QueryFilter) Match(inc Incident) bool {
	if qf.SchoolID != "" && inc.SchoolID != qf.SchoolID {
		return false
	}
	if qf.ExcludeConfidential && inc.IsConfidential() && inc.ReportedBy != qf.ConfidentialTo {
		return false
	}
	if qf.Kind != "" && inc.Kind != qf.Kind {
		return false
	}
	if qf.Status != "" && inc.Status != qf.Status {
		return false
	}
	if qf.Severity != "" && inc.Severity != qf.Severity {
		return false
	}
	if qf.StudentID != "" && inc.StudentID != qf.StudentID {
		return false
	}
	return core.InDateRange(inc.IncidentDate, qf.From, qf.To)
}
