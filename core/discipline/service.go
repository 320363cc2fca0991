package discipline

import (
	"context"
	"sort"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/student"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("incident")
	ErrAlreadyResolved = core.NewConflictError("incident is already resolved")
)

// ConfidentialRoles may read every counselling entry of their school.
var ConfidentialRoles = []string{user.RoleSystemAdmin, user.RolePrimaryAdmin, user.RoleHeadTeacher}

type (
	Repository interface {
		CreateIncident(ctx context.Context, inc Incident) (Incident, error)
		QueryIncidents(ctx context.Context, filter QueryFilter) ([]Incident, error)
		GetIncident(ctx context.Context, schoolID, id string) (Incident, error)
		UpdateIncident(ctx context.Context, inc Incident) (Incident, error)
		DeleteIncident(ctx context.Context, schoolID, id string) error
	}

	StudentGetter interface {
		Get(ctx context.Context, schoolID, id string) (student.Student, error)
	}

	Service struct {
		repo     Repository
		students StudentGetter
	}
)

func NewService(repo Repository, students StudentGetter) *Service {
	return &Service{repo: repo, students: students}
}

// CanRead reports whether actor may see inc.
func CanRead(actor user.User, inc Incident) bool {
	if !inc.IsConfidential() {
		return true
	}
	return user.HasAnyRole(actor.Role, ConfidentialRoles...) || inc.ReportedBy == actor.ID
}

func (svc *Service) Create(ctx context.Context, schoolID string, actor user.User, in Input) (Incident, error) {
	std, err := svc.students.Get(ctx, schoolID, in.StudentID)
	if core.IsNotFound(err) {
		return Incident{}, core.NewFieldError("student_id", "student not found")
	} else if err != nil {
		return Incident{}, err
	}

	now := core.NowFunc().UTC()
	return svc.repo.CreateIncident(ctx, Incident{
		SchoolID:     schoolID,
		StudentID:    std.ID,
		StudentName:  std.Name,
		ClassName:    std.ClassName,
		Kind:         in.Kind,
		Category:     in.Category,
		Description:  in.Description,
		ActionTaken:  in.ActionTaken,
		Severity:     in.Severity,
		Status:       in.Status,
		IncidentDate: in.IncidentDate,
		ReportedBy:   actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Query returns the incidents visible to actor, latest first.
func (svc *Service) Query(ctx context.Context, actor user.User, filter QueryFilter) ([]Incident, error) {
	filter.Clean()
	if err := core.ValidateDateRange(filter.From, filter.To); err != nil {
		return nil, err
	}
	if !user.HasAnyRole(actor.Role, ConfidentialRoles...) {
		filter.ExcludeConfidential = true
		filter.ConfidentialTo = actor.ID
	}
	incs, err := svc.repo.QueryIncidents(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(incs, func(i, j int) bool {
		if incs[i].IncidentDate != incs[j].IncidentDate {
			return incs[i].IncidentDate > incs[j].IncidentDate
		}
		return incs[i].CreatedAt.After(incs[j].CreatedAt)
	})
	return incs, nil
}

// Get returns the incident, hiding confidential entries actor may not read.
func (svc *Service) Get(ctx context.Context, schoolID, id string, actor user.User) (Incident, error) {
	inc, err := svc.repo.GetIncident(ctx, schoolID, id)
	if err != nil {
		return Incident{}, err
	}
	if !CanRead(actor, inc) {
		return Incident{}, ErrNotFound
	}
	return inc, nil
}

func (svc *Service) Update(ctx context.Context, inc Incident, in Input) (Incident, error) {
	if inc.Status == StatusResolved {
		return Incident{}, ErrAlreadyResolved
	}
	if in.StudentID != inc.StudentID {
		std, err := svc.students.Get(ctx, inc.SchoolID, in.StudentID)
		if core.IsNotFound(err) {
			return Incident{}, core.NewFieldError("student_id", "student not found")
		} else if err != nil {
			return Incident{}, err
		}
		inc.StudentID, inc.StudentName, inc.ClassName = std.ID, std.Name, std.ClassName
	}
	inc.Kind = in.Kind
	inc.Category = in.Category
	inc.Description = in.Description
	inc.ActionTaken = in.ActionTaken
	inc.Severity = in.Severity
	inc.Status = in.Status
	inc.IncidentDate = in.IncidentDate
	inc.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateIncident(ctx, inc)
}

// Resolve closes inc. A resolved incident cannot be resolved again.
func (svc *Service) Resolve(ctx context.Context, inc Incident, res Resolution) (Incident, error) {
	if inc.Status == StatusResolved {
		return Incident{}, ErrAlreadyResolved
	}
	now := core.NowFunc().UTC()
	if action := core.CleanString(res.ActionTaken); action != "" {
		inc.ActionTaken = action
	}
	inc.Status = StatusResolved
	inc.ResolvedAt = &now
	inc.UpdatedAt = now
	return svc.repo.UpdateIncident(ctx, inc)
}

func (svc *Service) Delete(ctx context.Context, schoolID, id string) error {
	return svc.repo.DeleteIncident(ctx, schoolID, id)
}

// CountOpen returns the number of unresolved incidents of the school.
func (svc *Service) CountOpen(ctx context.Context, schoolID string) (int, error) {
	incs, err := svc.repo.QueryIncidents(ctx, QueryFilter{SchoolID: schoolID})
	if err != nil {
		return 0, err
	}
	var n int
	for _, inc := range incs {
		if inc.Status != StatusResolved {
			n++
		}
	}
	return n, nil
}
