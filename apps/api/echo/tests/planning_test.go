package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/acfjba/platformdigital-sub000/core/planning"
	"github.com/acfjba/platformdigital-sub000/core/user"
	testutil "github.com/acfjba/platformdigital-sub000/tests"
)

func Test_lessonPlanApi(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "les")
	other := testutil.CreateUser(t, app.Repos.Users, tn.school.ID, "Other Teacher", "lesother", "", "Pwd@1234", user.RoleTeacher, true)
	base := "/v1/schools/" + tn.school.ID + "/lessons"

	in := planning.LessonInput{ClassName: "P1", Subject: "Maths", WeekOf: "2024-03-04", Topic: "Fractions"}

	var lp planning.LessonPlan
	t.Run("create", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base, &tn.librarian, in)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = app.do(t, http.MethodPost, base, &tn.teacher, planning.LessonInput{ClassName: "P1", Subject: "Maths", WeekOf: "04/03/2024", Topic: "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = app.do(t, http.MethodPost, base, &tn.teacher, in)
		assert.Equal(t, http.StatusCreated, rec.Code)
		unmarshal(t, rec, &lp)
		assert.Equal(t, planning.StatusDraft, lp.Status)
		assert.Equal(t, tn.teacher.ID, lp.TeacherID)
	})

	t.Run("visibility", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base+"/"+lp.ID, &other, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		var resp page[planning.LessonPlan]
		rec = app.do(t, http.MethodGet, base, &other, nil)
		unmarshal(t, rec, &resp)
		assert.Equal(t, 0, resp.Count)

		rec = app.do(t, http.MethodGet, base+"/"+lp.ID, &tn.headTeacher, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("review requires submission", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base+"/"+lp.ID+"/review", &tn.headTeacher, planning.Review{Decision: planning.StatusApproved})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("submit", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base+"/"+lp.ID+"/submit", &tn.headTeacher, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = app.do(t, http.MethodPost, base+"/"+lp.ID+"/submit", &tn.teacher, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &lp)
		assert.Equal(t, planning.StatusSubmitted, lp.Status)

		rec = app.do(t, http.MethodPut, base+"/"+lp.ID, &tn.teacher, in)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("reject", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base+"/"+lp.ID+"/review", &tn.teacher, planning.Review{Decision: planning.StatusApproved})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = app.do(t, http.MethodPost, base+"/"+lp.ID+"/review", &tn.headTeacher, planning.Review{Decision: planning.StatusRejected})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "note")

		rec = app.do(t, http.MethodPost, base+"/"+lp.ID+"/review", &tn.headTeacher, planning.Review{Decision: planning.StatusRejected, Note: "Add activities"})
		assert.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &lp)
		assert.Equal(t, planning.StatusRejected, lp.Status)
		assert.Equal(t, "Add activities", lp.ReviewNote)
		assert.Equal(t, tn.headTeacher.ID, lp.ReviewedBy)
	})

	t.Run("edit and approve", func(t *testing.T) {
		in.Activities = "Pizza slices"
		rec := app.do(t, http.MethodPut, base+"/"+lp.ID, &tn.teacher, in)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = app.do(t, http.MethodPost, base+"/"+lp.ID+"/submit", &tn.teacher, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = app.do(t, http.MethodPost, base+"/"+lp.ID+"/review", &tn.admin, planning.Review{Decision: planning.StatusApproved})
		assert.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &lp)
		assert.Equal(t, planning.StatusApproved, lp.Status)
		assert.Equal(t, "Pizza slices", lp.Activities)

		rec = app.do(t, http.MethodDelete, base+"/"+lp.ID, &tn.teacher, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("self review", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base, &tn.headTeacher, in)
		var own planning.LessonPlan
		unmarshal(t, rec, &own)

		rec = app.do(t, http.MethodPost, base+"/"+own.ID+"/submit", &tn.headTeacher, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = app.do(t, http.MethodPost, base+"/"+own.ID+"/review", &tn.headTeacher, planning.Review{Decision: planning.StatusApproved})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"error": "you cannot review your own plan"}`, rec.Body.String())
	})

	t.Run("delete draft", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base, &other, in)
		var draft planning.LessonPlan
		unmarshal(t, rec, &draft)

		rec = app.do(t, http.MethodDelete, base+"/"+draft.ID, &other, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = app.do(t, http.MethodGet, base+"/"+draft.ID, &tn.admin, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_workbookPlanApi(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "wkb")
	base := "/v1/schools/" + tn.school.ID + "/workbooks"

	in := planning.WorkbookInput{ClassName: "P2", Subject: "English", Term: "Term 1", Title: "Reader", PlannedPages: 40}

	t.Run("completed above planned", func(t *testing.T) {
		bad := in
		bad.CompletedPages = 41
		rec := app.do(t, http.MethodPost, base, &tn.teacher, bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	var wp planning.WorkbookPlan
	t.Run("create", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base, &tn.teacher, in)
		assert.Equal(t, http.StatusCreated, rec.Code)
		unmarshal(t, rec, &wp)
		assert.Equal(t, 0, wp.CompletedPages)
	})

	t.Run("progress", func(t *testing.T) {
		rec := app.do(t, http.MethodPut, base+"/"+wp.ID+"/progress", &tn.teacher, planning.Progress{CompletedPages: 50})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "completed_pages")

		rec = app.do(t, http.MethodPut, base+"/"+wp.ID+"/progress", &tn.headTeacher, planning.Progress{CompletedPages: 10})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = app.do(t, http.MethodPut, base+"/"+wp.ID+"/progress", &tn.teacher, planning.Progress{CompletedPages: 10})
		assert.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &wp)
		assert.Equal(t, 10, wp.CompletedPages)
		assert.InDelta(t, 0.25, wp.Progress(), 1e-9)
	})

	t.Run("query", func(t *testing.T) {
		var resp page[planning.WorkbookPlan]
		rec := app.do(t, http.MethodGet, base+"?term=term%201", &tn.admin, nil)
		unmarshal(t, rec, &resp)
		assert.Equal(t, 1, resp.Count)

		rec = app.do(t, http.MethodGet, base+"?status=approved", &tn.admin, nil)
		unmarshal(t, rec, &resp)
		assert.Equal(t, 0, resp.Count)
	})

	t.Run("submit and approve", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base+"/"+wp.ID+"/submit", &tn.teacher, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = app.do(t, http.MethodPost, base+"/"+wp.ID+"/review", &tn.headTeacher, planning.Review{Decision: planning.StatusApproved})
		assert.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &wp)
		assert.Equal(t, planning.StatusApproved, wp.Status)

		rec = app.do(t, http.MethodPost, base+"/"+wp.ID+"/review", &tn.headTeacher, planning.Review{Decision: planning.StatusRejected, Note: "late"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
