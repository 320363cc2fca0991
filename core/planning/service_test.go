package planning_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/planning"
	"github.com/acfjba/platformdigital-sub000/core/user"
	testutil "github.com/acfjba/platformdigital-sub000/tests"
)

func TestService_lessonWorkflow(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := env.Svcs.Planning
	ctx := context.Background()

	sch := testutil.CreateSchool(t, env, "Plan School", "pln", "pln@school.test")
	teacher := testutil.CreateUser(t, env.Repos.Users, sch.ID, "Teacher", "plnteacher", "", "pwd", user.RoleTeacher, true)
	peer := testutil.CreateUser(t, env.Repos.Users, sch.ID, "Peer", "plnpeer", "", "pwd", user.RoleTeacher, true)
	head := testutil.CreateUser(t, env.Repos.Users, sch.ID, "Head", "plnhead", "", "pwd", user.RoleHeadTeacher, true)

	in := planning.LessonInput{ClassName: "P1", Subject: "Maths", WeekOf: "2024-03-04", Topic: "Fractions"}
	lp, err := svc.CreateLesson(ctx, sch.ID, teacher, in)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "Teacher", lp.TeacherName)

	_, err = svc.GetLesson(ctx, sch.ID, lp.ID, peer)
	assert.True(t, core.IsNotFound(err))

	_, err = svc.UpdateLesson(ctx, lp, peer, in)
	assert.Equal(t, planning.ErrNotOwner, err)

	lp, err = svc.SubmitLesson(ctx, lp, teacher)
	assert.NoError(t, err)

	_, err = svc.UpdateLesson(ctx, lp, teacher, in)
	assert.Equal(t, planning.ErrNotEditable, err)
	assert.Equal(t, planning.ErrNotEditable, svc.DeleteLesson(ctx, lp, teacher))

	_, err = svc.ReviewLesson(ctx, lp, peer, planning.Review{Decision: planning.StatusApproved})
	assert.Equal(t, planning.ErrNotReviewer, err)

	lp, err = svc.ReviewLesson(ctx, lp, head, planning.Review{Decision: planning.StatusApproved})
	if assert.NoError(t, err) {
		assert.Equal(t, planning.StatusApproved, lp.Status)
		assert.Equal(t, head.ID, lp.ReviewedBy)
	}

	_, err = svc.ReviewLesson(ctx, lp, head, planning.Review{Decision: planning.StatusRejected, Note: "x"})
	assert.True(t, core.IsConflict(err))

	lessons, workbooks, err := svc.Counts(ctx, sch.ID, teacher)
	if assert.NoError(t, err) {
		assert.Equal(t, 1, lessons[planning.StatusApproved])
		assert.Equal(t, 0, lessons[planning.StatusDraft])
		assert.Equal(t, 0, workbooks[planning.StatusDraft])
	}
	lessons, _, _ = svc.Counts(ctx, sch.ID, peer)
	assert.Equal(t, 0, lessons[planning.StatusApproved])
}

func TestService_selfReview(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := env.Svcs.Planning
	ctx := context.Background()

	sch := testutil.CreateSchool(t, env, "Plan School", "slf", "slf@school.test")
	head := testutil.CreateUser(t, env.Repos.Users, sch.ID, "Head", "slfhead", "", "pwd", user.RoleHeadTeacher, true)

	wp, err := svc.CreateWorkbook(ctx, sch.ID, head, planning.WorkbookInput{
		ClassName: "P2", Subject: "English", Term: "Term 1", Title: "Reader", PlannedPages: 20,
	})
	if !assert.NoError(t, err) {
		return
	}
	wp, err = svc.SubmitWorkbook(ctx, wp, head)
	assert.NoError(t, err)

	_, err = svc.ReviewWorkbook(ctx, wp, head, planning.Review{Decision: planning.StatusApproved})
	assert.Equal(t, planning.ErrSelfReview, err)

	// progress is recorded whatever the status
	wp, err = svc.UpdateProgress(ctx, wp, head, planning.Progress{CompletedPages: 20})
	if assert.NoError(t, err) {
		assert.Equal(t, 1.0, wp.Progress())
	}
	_, err = svc.UpdateProgress(ctx, wp, head, planning.Progress{CompletedPages: 21})
	assert.True(t, core.IsValidation(err))
}
