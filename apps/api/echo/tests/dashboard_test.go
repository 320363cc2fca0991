package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/acfjba/platformdigital-sub000/core/dashboard"
	"github.com/acfjba/platformdigital-sub000/core/library"
	"github.com/acfjba/platformdigital-sub000/core/license"
	"github.com/acfjba/platformdigital-sub000/core/planning"
	"github.com/acfjba/platformdigital-sub000/core/user"
	testutil "github.com/acfjba/platformdigital-sub000/tests"
)

func Test_platformDashboard(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "pd1")
	other := app.newTenant(t, "pd2")
	if _, err := app.Svcs.Licenses.Suspend(context.Background(), other.school.ID); err != nil {
		t.Fatalf("Suspend(): %v", err)
	}

	rec := app.do(t, http.MethodGet, "/v1/dashboard", &tn.admin, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodGet, "/v1/dashboard", &tn.sysAdmin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var dash dashboard.Platform
	unmarshal(t, rec, &dash)
	assert.Equal(t, 2, dash.Schools)
	assert.Equal(t, 2, dash.ActiveSchools)
	assert.Equal(t, 1, dash.LicensesByStatus[license.StatusActive])
	assert.Equal(t, 1, dash.LicensesByStatus[license.StatusSuspended])
	assert.Empty(t, dash.ExpiringSoon)

	testutil.FreezeTime(t, time.Now().AddDate(0, 11, 20))
	rec = app.do(t, http.MethodGet, "/v1/dashboard", &tn.sysAdmin, nil)
	unmarshal(t, rec, &dash)
	if assert.Len(t, dash.ExpiringSoon, 1) {
		assert.Equal(t, tn.school.ID, dash.ExpiringSoon[0].SchoolID)
	}
}

func Test_schoolDashboard(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "sd")
	path := "/v1/schools/" + tn.school.ID + "/dashboard"

	testutil.CreateStaff(t, app.Env, tn.school.ID, "T1", "Jane")
	ana := testutil.CreateStudent(t, app.Env, tn.school.ID, "A1", "Ana", "P1")
	testutil.CreateStudent(t, app.Env, tn.school.ID, "A2", "Bob", "P1")
	book := testutil.CreateBook(t, app.Env, tn.school.ID, "Reader", 3)
	if _, err := app.Svcs.Library.Issue(context.Background(), tn.school.ID, tn.librarian, library.NewLoan{
		BookID: book.ID, BorrowerID: ana.ID, BorrowerType: library.BorrowerStudent,
	}); err != nil {
		t.Fatalf("Issue(): %v", err)
	}
	lp, err := app.Svcs.Planning.CreateLesson(context.Background(), tn.school.ID, tn.teacher, planning.LessonInput{
		ClassName: "P1", Subject: "Maths", WeekOf: "2024-03-04", Topic: "Fractions",
	})
	if err != nil {
		t.Fatalf("CreateLesson(): %v", err)
	}
	if _, err = app.Svcs.Planning.SubmitLesson(context.Background(), lp, tn.teacher); err != nil {
		t.Fatalf("SubmitLesson(): %v", err)
	}

	t.Run("manager", func(t *testing.T) {
		for _, usr := range []user.User{tn.admin, tn.headTeacher} {
			rec := app.do(t, http.MethodGet, path, &usr, nil)
			assert.Equal(t, http.StatusOK, rec.Code)

			var dash dashboard.School
			unmarshal(t, rec, &dash)
			assert.Equal(t, usr.Role, dash.Role)
			if assert.NotNil(t, dash.License) {
				assert.True(t, dash.License.Usable)
			}
			if assert.NotNil(t, dash.StaffCount) {
				assert.Equal(t, 1, *dash.StaffCount)
			}
			if assert.NotNil(t, dash.EnrolledStudents) {
				assert.Equal(t, 2, *dash.EnrolledStudents)
			}
			if assert.NotNil(t, dash.PendingPlanReviews) {
				assert.Equal(t, 1, *dash.PendingPlanReviews)
			}
			if assert.NotNil(t, dash.BooksOnLoan) {
				assert.Equal(t, 1, *dash.BooksOnLoan)
			}
			assert.Nil(t, dash.Inventory)
		}
	})

	t.Run("teacher", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, path, &tn.teacher, nil)
		var dash dashboard.School
		unmarshal(t, rec, &dash)
		assert.Nil(t, dash.StaffCount)
		assert.Equal(t, 1, dash.LessonPlans[planning.StatusSubmitted])
		assert.Equal(t, 0, dash.WorkbookPlans[planning.StatusDraft])
	})

	t.Run("librarian", func(t *testing.T) {
		testutil.FreezeTime(t, time.Now().Add(library.DefaultLoanPeriod+time.Hour))
		rec := app.do(t, http.MethodGet, path, &tn.librarian, nil)
		var dash dashboard.School
		unmarshal(t, rec, &dash)
		assert.Nil(t, dash.StaffCount)
		if assert.NotNil(t, dash.Inventory) {
			assert.Equal(t, 3, dash.Inventory.TotalCopies)
			assert.Equal(t, 2, dash.Inventory.Available)
		}
		assert.Len(t, dash.Overdue, 1)
	})

	t.Run("still served when the license lapsed", func(t *testing.T) {
		if _, err := app.Svcs.Licenses.Suspend(context.Background(), tn.school.ID); err != nil {
			t.Fatalf("Suspend(): %v", err)
		}
		rec := app.do(t, http.MethodGet, path, &tn.teacher, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var dash dashboard.School
		unmarshal(t, rec, &dash)
		if assert.NotNil(t, dash.License) {
			assert.Equal(t, license.StatusSuspended, dash.License.Status)
			assert.False(t, dash.License.Usable)
		}
	})
}
