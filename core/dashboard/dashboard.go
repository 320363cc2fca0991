// Package dashboard builds the platform and the role-shaped school summaries.
package dashboard

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/attendance"
	"github.com/acfjba/platformdigital-sub000/core/discipline"
	"github.com/acfjba/platformdigital-sub000/core/library"
	"github.com/acfjba/platformdigital-sub000/core/license"
	"github.com/acfjba/platformdigital-sub000/core/planning"
	"github.com/acfjba/platformdigital-sub000/core/school"
	"github.com/acfjba/platformdigital-sub000/core/staff"
	"github.com/acfjba/platformdigital-sub000/core/student"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

type (
	Platform struct {
		Schools          int               `json:"schools"`
		ActiveSchools    int               `json:"active_schools"`
		LicensesByStatus map[string]int    `json:"licenses_by_status"`
		ExpiringSoon     []license.License `json:"expiring_soon"`
	}

	LicenseInfo struct {
		Plan      string    `json:"plan"`
		Status    string    `json:"status"`
		ExpiresAt time.Time `json:"expires_at"`
		Usable    bool      `json:"usable"`
	}

	School struct {
		SchoolID   string       `json:"school_id"`
		SchoolName string       `json:"school_name"`
		Role       string       `json:"role"`
		License    *LicenseInfo `json:"license"`

		// managers
		StaffCount         *int     `json:"staff_count,omitempty"`
		EnrolledStudents   *int     `json:"enrolled_students,omitempty"`
		OpenIncidents      *int     `json:"open_incidents,omitempty"`
		PendingPlanReviews *int     `json:"pending_plan_reviews,omitempty"`
		BooksOnLoan        *int     `json:"books_on_loan,omitempty"`
		OverdueLoans       *int     `json:"overdue_loans,omitempty"`
		AttendanceToday    *float64 `json:"attendance_rate_today,omitempty"`

		// teachers
		LessonPlans   planning.Counts `json:"lesson_plans,omitempty"`
		WorkbookPlans planning.Counts `json:"workbook_plans,omitempty"`

		// librarians
		Inventory *library.Inventory `json:"inventory,omitempty"`
		Overdue   []library.Loan     `json:"overdue,omitempty"`
	}

	Deps struct {
		Schools    *school.Service
		Licenses   *license.Service
		Staff      *staff.Service
		Students   *student.Service
		Attendance *attendance.Service
		Discipline *discipline.Service
		Planning   *planning.Service
		Library    *library.Service
	}

	Service struct {
		Deps
		expiringAhead time.Duration
	}
)

func NewService(deps Deps, conf *core.Config) *Service {
	ahead := conf.Scheduler.ExpiringAhead
	if ahead <= 0 {
		ahead = 30 * 24 * time.Hour
	}
	return &Service{Deps: deps, expiringAhead: ahead}
}

func (svc *Service) Platform(ctx context.Context) (Platform, error) {
	schools, err := svc.Schools.Query(ctx, school.QueryFilter{})
	if err != nil {
		return Platform{}, errors.Wrap(err, "querying schools")
	}
	licenses, err := svc.Licenses.Query(ctx, license.QueryFilter{})
	if err != nil {
		return Platform{}, errors.Wrap(err, "querying licenses")
	}
	expiring, err := svc.Licenses.ExpiringWithin(ctx, core.NowFunc().UTC(), svc.expiringAhead)
	if err != nil {
		return Platform{}, errors.Wrap(err, "querying expiring licenses")
	}

	dash := Platform{
		Schools:          len(schools),
		LicensesByStatus: make(map[string]int, len(license.Statuses)),
		ExpiringSoon:     expiring,
	}
	for _, sch := range schools {
		if sch.IsActive {
			dash.ActiveSchools++
		}
	}
	for _, s := range license.Statuses {
		dash.LicensesByStatus[s] = 0
	}
	for _, lic := range licenses {
		dash.LicensesByStatus[lic.Status]++
	}
	return dash, nil
}

// School returns the summary of sch shaped by the role of actor.
func (svc *Service) School(ctx context.Context, sch school.School, actor user.User) (School, error) {
	dash := School{SchoolID: sch.ID, SchoolName: sch.Name, Role: actor.Role}
	now := core.NowFunc().UTC()

	lic, err := svc.Licenses.Get(ctx, sch.ID)
	if err == nil {
		dash.License = &LicenseInfo{Plan: lic.Plan, Status: lic.Status, ExpiresAt: lic.ExpiresAt, Usable: lic.IsUsable(now)}
	} else if !core.IsNotFound(err) {
		return School{}, errors.Wrap(err, "getting license")
	}

	switch actor.Role {
	case user.RoleSystemAdmin, user.RolePrimaryAdmin, user.RoleHeadTeacher:
		err = svc.fillManager(ctx, &dash, sch.ID, actor)
	case user.RoleTeacher:
		err = svc.fillTeacher(ctx, &dash, sch.ID, actor)
	case user.RoleLibrarian:
		err = svc.fillLibrarian(ctx, &dash, sch.ID, now)
	}
	if err != nil {
		return School{}, err
	}
	return dash, nil
}

func (svc *Service) fillManager(ctx context.Context, dash *School, schoolID string, actor user.User) error {
	members, err := svc.Staff.Query(ctx, staff.QueryFilter{SchoolID: schoolID, Status: staff.StatusActive})
	if err != nil {
		return errors.Wrap(err, "counting staff")
	}
	students, err := svc.Students.Query(ctx, student.QueryFilter{SchoolID: schoolID, Status: student.StatusEnrolled})
	if err != nil {
		return errors.Wrap(err, "counting students")
	}
	rate, err := svc.Attendance.TodayRate(ctx, schoolID)
	if err != nil {
		return errors.Wrap(err, "computing attendance rate")
	}
	openIncs, err := svc.Discipline.CountOpen(ctx, schoolID)
	if err != nil {
		return errors.Wrap(err, "counting incidents")
	}
	lessons, workbooks, err := svc.Planning.Counts(ctx, schoolID, actor)
	if err != nil {
		return errors.Wrap(err, "counting plans")
	}
	inv, err := svc.Library.Inventory(ctx, schoolID)
	if err != nil {
		return errors.Wrap(err, "computing inventory")
	}

	staffCount, enrolled := len(members), len(students)
	pending := lessons[planning.StatusSubmitted] + workbooks[planning.StatusSubmitted]
	dash.StaffCount = &staffCount
	dash.EnrolledStudents = &enrolled
	dash.AttendanceToday = &rate
	dash.OpenIncidents = &openIncs
	dash.PendingPlanReviews = &pending
	dash.BooksOnLoan = &inv.OnLoan
	dash.OverdueLoans = &inv.Overdue
	return nil
}

func (svc *Service) fillTeacher(ctx context.Context, dash *School, schoolID string, actor user.User) error {
	lessons, workbooks, err := svc.Planning.Counts(ctx, schoolID, actor)
	if err != nil {
		return errors.Wrap(err, "counting plans")
	}
	rate, err := svc.Attendance.TodayRate(ctx, schoolID)
	if err != nil {
		return errors.Wrap(err, "computing attendance rate")
	}
	dash.LessonPlans = lessons
	dash.WorkbookPlans = workbooks
	dash.AttendanceToday = &rate
	return nil
}

func (svc *Service) fillLibrarian(ctx context.Context, dash *School, schoolID string, now time.Time) error {
	inv, err := svc.Library.Inventory(ctx, schoolID)
	if err != nil {
		return errors.Wrap(err, "computing inventory")
	}
	overdue, err := svc.Library.Overdue(ctx, schoolID, now)
	if err != nil {
		return errors.Wrap(err, "listing overdue loans")
	}
	dash.Inventory = &inv
	dash.Overdue = overdue
	return nil
}
