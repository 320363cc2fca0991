package exam_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/acfjba/platformdigital-sub000/core/exam"
	"github.com/acfjba/platformdigital-sub000/core/user"
	testutil "github.com/acfjba/platformdigital-sub000/tests"
)

func TestService_Record_replacesAnyCase(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := env.Svcs.Exams
	ctx := context.Background()
	teacher := user.User{ID: "tch", Role: user.RoleTeacher}

	sch := testutil.CreateSchool(t, env, "Exam School", "exm", "exm@school.test")
	std := testutil.CreateStudent(t, env, sch.ID, "S1", "Ana", "P4")

	first, err := svc.Record(ctx, sch.ID, teacher, exam.NewResult{StudentID: std.ID, Subject: "Maths", Exam: "Term 1", Year: 2024, Score: 40, MaxScore: 100})
	if !assert.NoError(t, err) {
		return
	}
	second, err := svc.Record(ctx, sch.ID, teacher, exam.NewResult{StudentID: std.ID, Subject: " maths ", Exam: "TERM  1", Year: 2024, Score: 85, MaxScore: 100})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, first.ID, second.ID)

	results, err := svc.Query(ctx, exam.QueryFilter{SchoolID: sch.ID, Subject: "MATHS"})
	if assert.NoError(t, err) && assert.Len(t, results, 1) {
		assert.Equal(t, "A", results[0].Grade)
	}

	_, err = svc.RecordBatch(ctx, sch.ID, teacher, exam.Batch{Results: []exam.NewResult{
		{StudentID: std.ID, Subject: "English", Exam: "Term 1", Year: 2024, Score: 50, MaxScore: 100},
		{StudentID: std.ID, Subject: "english", Exam: "term 1", Year: 2024, Score: 60, MaxScore: 100},
	}})
	assert.Error(t, err)
}
