package planning

import (
	"context"
	"sort"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

var (
	// errors
	ErrLessonNotFound   = core.NewNotFoundError("lesson plan")
	ErrWorkbookNotFound = core.NewNotFoundError("workbook plan")
	ErrNotEditable      = core.NewConflictError("only draft or rejected plans can be changed")
	ErrNotOwner         = core.NewPermissionError("only the owner of a plan can change it")
	ErrSelfReview       = core.NewPermissionError("you cannot review your own plan")
	ErrNotReviewer      = core.NewPermissionError("only head teachers and primary admins review plans")
)

// ReviewerRoles may see every plan of their school and review submitted ones.
var ReviewerRoles = []string{user.RoleSystemAdmin, user.RolePrimaryAdmin, user.RoleHeadTeacher}

func errTransition(from, to string) error {
	return core.NewConflictError("a " + from + " plan cannot be " + to)
}

type (
	Repository interface {
		CreateLessonPlan(ctx context.Context, lp LessonPlan) (LessonPlan, error)
		QueryLessonPlans(ctx context.Context, filter QueryFilter) ([]LessonPlan, error)
		GetLessonPlan(ctx context.Context, schoolID, id string) (LessonPlan, error)
		UpdateLessonPlan(ctx context.Context, lp LessonPlan) (LessonPlan, error)
		DeleteLessonPlan(ctx context.Context, schoolID, id string) error

		CreateWorkbookPlan(ctx context.Context, wp WorkbookPlan) (WorkbookPlan, error)
		QueryWorkbookPlans(ctx context.Context, filter QueryFilter) ([]WorkbookPlan, error)
		GetWorkbookPlan(ctx context.Context, schoolID, id string) (WorkbookPlan, error)
		UpdateWorkbookPlan(ctx context.Context, wp WorkbookPlan) (WorkbookPlan, error)
		DeleteWorkbookPlan(ctx context.Context, schoolID, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func isReviewer(actor user.User) bool {
	return user.HasAnyRole(actor.Role, ReviewerRoles...)
}

// scope restricts filter to the plans actor may see.
func scope(actor user.User, filter QueryFilter) QueryFilter {
	filter.Clean()
	if !isReviewer(actor) {
		filter.TeacherID = actor.ID
	}
	return filter
}

// checkOwnerEdit fails unless actor owns the plan and it is still editable.
func checkOwnerEdit(actor user.User, teacherID, status string) error {
	if actor.ID != teacherID {
		return ErrNotOwner
	}
	if !IsEditable(status) {
		return ErrNotEditable
	}
	return nil
}

// review applies the decision of actor to a plan owned by teacherID.
func review(actor user.User, teacherID, status string, r Review) error {
	if !isReviewer(actor) {
		return ErrNotReviewer
	}
	if actor.ID == teacherID {
		return ErrSelfReview
	}
	if !CanTransition(status, r.Decision) {
		return errTransition(status, r.Decision)
	}
	return nil
}

// Lesson plans

func (svc *Service) CreateLesson(ctx context.Context, schoolID string, actor user.User, in LessonInput) (LessonPlan, error) {
	now := core.NowFunc().UTC()
	return svc.repo.CreateLessonPlan(ctx, LessonPlan{
		SchoolID:    schoolID,
		TeacherID:   actor.ID,
		TeacherName: actor.Name,
		ClassName:   in.ClassName,
		Subject:     in.Subject,
		WeekOf:      in.WeekOf,
		Topic:       in.Topic,
		Objectives:  in.Objectives,
		Activities:  in.Activities,
		Resources:   in.Resources,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// QueryLessons returns the lesson plans visible to actor, latest week first.
func (svc *Service) QueryLessons(ctx context.Context, actor user.User, filter QueryFilter) ([]LessonPlan, error) {
	plans, err := svc.repo.QueryLessonPlans(ctx, scope(actor, filter))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(plans, func(i, j int) bool {
		if plans[i].WeekOf != plans[j].WeekOf {
			return plans[i].WeekOf > plans[j].WeekOf
		}
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})
	return plans, nil
}

// GetLesson returns the plan if actor may see it.
func (svc *Service) GetLesson(ctx context.Context, schoolID, id string, actor user.User) (LessonPlan, error) {
	lp, err := svc.repo.GetLessonPlan(ctx, schoolID, id)
	if err != nil {
		return LessonPlan{}, err
	}
	if !isReviewer(actor) && lp.TeacherID != actor.ID {
		return LessonPlan{}, ErrLessonNotFound
	}
	return lp, nil
}

func (svc *Service) UpdateLesson(ctx context.Context, lp LessonPlan, actor user.User, in LessonInput) (LessonPlan, error) {
	if err := checkOwnerEdit(actor, lp.TeacherID, lp.Status); err != nil {
		return LessonPlan{}, err
	}
	lp.ClassName = in.ClassName
	lp.Subject = in.Subject
	lp.WeekOf = in.WeekOf
	lp.Topic = in.Topic
	lp.Objectives = in.Objectives
	lp.Activities = in.Activities
	lp.Resources = in.Resources
	lp.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateLessonPlan(ctx, lp)
}

func (svc *Service) DeleteLesson(ctx context.Context, lp LessonPlan, actor user.User) error {
	if err := checkOwnerEdit(actor, lp.TeacherID, lp.Status); err != nil {
		return err
	}
	return svc.repo.DeleteLessonPlan(ctx, lp.SchoolID, lp.ID)
}

// SubmitLesson sends a draft or rejected plan for review.
func (svc *Service) SubmitLesson(ctx context.Context, lp LessonPlan, actor user.User) (LessonPlan, error) {
	if actor.ID != lp.TeacherID {
		return LessonPlan{}, ErrNotOwner
	}
	if !CanTransition(lp.Status, StatusSubmitted) {
		return LessonPlan{}, errTransition(lp.Status, StatusSubmitted)
	}
	lp.Status = StatusSubmitted
	lp.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateLessonPlan(ctx, lp)
}

func (svc *Service) ReviewLesson(ctx context.Context, lp LessonPlan, actor user.User, r Review) (LessonPlan, error) {
	if err := review(actor, lp.TeacherID, lp.Status, r); err != nil {
		return LessonPlan{}, err
	}
	lp.Status = r.Decision
	lp.ReviewNote = r.Note
	lp.ReviewedBy = actor.ID
	lp.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateLessonPlan(ctx, lp)
}

// Workbook plans

func (svc *Service) CreateWorkbook(ctx context.Context, schoolID string, actor user.User, in WorkbookInput) (WorkbookPlan, error) {
	now := core.NowFunc().UTC()
	return svc.repo.CreateWorkbookPlan(ctx, WorkbookPlan{
		SchoolID:       schoolID,
		TeacherID:      actor.ID,
		TeacherName:    actor.Name,
		ClassName:      in.ClassName,
		Subject:        in.Subject,
		Term:           in.Term,
		Title:          in.Title,
		PlannedPages:   in.PlannedPages,
		CompletedPages: in.CompletedPages,
		DueDate:        in.DueDate,
		Status:         StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

// QueryWorkbooks returns the workbook plans visible to actor, by term then title.
func (svc *Service) QueryWorkbooks(ctx context.Context, actor user.User, filter QueryFilter) ([]WorkbookPlan, error) {
	plans, err := svc.repo.QueryWorkbookPlans(ctx, scope(actor, filter))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(plans, func(i, j int) bool {
		if plans[i].Term != plans[j].Term {
			return plans[i].Term < plans[j].Term
		}
		return plans[i].Title < plans[j].Title
	})
	return plans, nil
}

func (svc *Service) GetWorkbook(ctx context.Context, schoolID, id string, actor user.User) (WorkbookPlan, error) {
	wp, err := svc.repo.GetWorkbookPlan(ctx, schoolID, id)
	if err != nil {
		return WorkbookPlan{}, err
	}
	if !isReviewer(actor) && wp.TeacherID != actor.ID {
		return WorkbookPlan{}, ErrWorkbookNotFound
	}
	return wp, nil
}

func (svc *Service) UpdateWorkbook(ctx context.Context, wp WorkbookPlan, actor user.User, in WorkbookInput) (WorkbookPlan, error) {
	if err := checkOwnerEdit(actor, wp.TeacherID, wp.Status); err != nil {
		return WorkbookPlan{}, err
	}
	wp.ClassName = in.ClassName
	wp.Subject = in.Subject
	wp.Term = in.Term
	wp.Title = in.Title
	wp.PlannedPages = in.PlannedPages
	wp.CompletedPages = in.CompletedPages
	wp.DueDate = in.DueDate
	wp.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateWorkbookPlan(ctx, wp)
}

// UpdateProgress records the pages done. The owner may do so at any status.
func (svc *Service) UpdateProgress(ctx context.Context, wp WorkbookPlan, actor user.User, p Progress) (WorkbookPlan, error) {
	if actor.ID != wp.TeacherID {
		return WorkbookPlan{}, ErrNotOwner
	}
	if p.CompletedPages < 0 || p.CompletedPages > wp.PlannedPages {
		return WorkbookPlan{}, core.NewFieldError("completed_pages", "must be between 0 and the planned pages")
	}
	wp.CompletedPages = p.CompletedPages
	wp.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateWorkbookPlan(ctx, wp)
}

func (svc *Service) DeleteWorkbook(ctx context.Context, wp WorkbookPlan, actor user.User) error {
	if err := checkOwnerEdit(actor, wp.TeacherID, wp.Status); err != nil {
		return err
	}
	return svc.repo.DeleteWorkbookPlan(ctx, wp.SchoolID, wp.ID)
}

func (svc *Service) SubmitWorkbook(ctx context.Context, wp WorkbookPlan, actor user.User) (WorkbookPlan, error) {
	if actor.ID != wp.TeacherID {
		return WorkbookPlan{}, ErrNotOwner
	}
	if !CanTransition(wp.Status, StatusSubmitted) {
		return WorkbookPlan{}, errTransition(wp.Status, StatusSubmitted)
	}
	wp.Status = StatusSubmitted
	wp.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateWorkbookPlan(ctx, wp)
}

func (svc *Service) ReviewWorkbook(ctx context.Context, wp WorkbookPlan, actor user.User, r Review) (WorkbookPlan, error) {
	if err := review(actor, wp.TeacherID, wp.Status, r); err != nil {
		return WorkbookPlan{}, err
	}
	wp.Status = r.Decision
	wp.ReviewNote = r.Note
	wp.ReviewedBy = actor.ID
	wp.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateWorkbookPlan(ctx, wp)
}

// Counts returns the number of lesson and workbook plans per status visible to actor.
func (svc *Service) Counts(ctx context.Context, schoolID string, actor user.User) (lessons, workbooks Counts, err error) {
	filter := scope(actor, QueryFilter{SchoolID: schoolID})
	lps, err := svc.repo.QueryLessonPlans(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	wps, err := svc.repo.QueryWorkbookPlans(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	lessons, workbooks = emptyCounts(), emptyCounts()
	for _, lp := range lps {
		lessons[lp.Status]++
	}
	for _, wp := range wps {
		workbooks[wp.Status]++
	}
	return lessons, workbooks, nil
}

func emptyCounts() Counts {
	c := make(Counts, len(Statuses))
	for _, s := range Statuses {
		c[s] = 0
	}
	return c
}
