package tests

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/acfjba/platformdigital-sub000/core/attendance"
	"github.com/acfjba/platformdigital-sub000/core/discipline"
	"github.com/acfjba/platformdigital-sub000/core/exam"
	"github.com/acfjba/platformdigital-sub000/core/staff"
	"github.com/acfjba/platformdigital-sub000/core/student"
	testutil "github.com/acfjba/platformdigital-sub000/tests"
)

func Test_staffApi(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "stf")
	base := "/v1/schools/" + tn.school.ID + "/staff"

	var st staff.Staff
	t.Run("create", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base, &tn.headTeacher, staff.Input{StaffNo: "T001", Name: " Jane  Doe ", Department: "Science"})
		assert.Equal(t, http.StatusCreated, rec.Code)
		unmarshal(t, rec, &st)
		assert.Equal(t, "Jane Doe", st.Name)
		assert.Equal(t, staff.StatusActive, st.Status)
	})

	t.Run("create: duplicate staff number", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base, &tn.admin, staff.Input{StaffNo: "T001", Name: "Other"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "staff_no")
	})

	t.Run("query", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base+"?department=science", &tn.teacher, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var resp page[staff.Staff]
		unmarshal(t, rec, &resp)
		if assert.Equal(t, 1, resp.Count) {
			assert.Equal(t, st.ID, resp.Results[0].ID)
		}
	})

	t.Run("update", func(t *testing.T) {
		rec := app.do(t, http.MethodPut, base+"/"+st.ID, &tn.admin, staff.Input{StaffNo: "T001", Name: "Jane Doe", Status: staff.StatusOnLeave})
		assert.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &st)
		assert.Equal(t, staff.StatusOnLeave, st.Status)
	})

	t.Run("delete", func(t *testing.T) {
		rec := app.do(t, http.MethodDelete, base+"/"+st.ID, &tn.admin, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = app.do(t, http.MethodGet, base+"/"+st.ID, &tn.admin, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_studentApi(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "std")
	other := app.newTenant(t, "oth")
	base := "/v1/schools/" + tn.school.ID + "/students"

	foreign := testutil.CreateStudent(t, app.Env, other.school.ID, "A100", "Foreign", "P1")

	var std student.Student
	t.Run("create", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base, &tn.admin, student.Input{AdmissionNo: "A100", Name: "Ana", ClassName: "P1", Gender: "female"})
		assert.Equal(t, http.StatusCreated, rec.Code, "admission numbers are unique per school")
		unmarshal(t, rec, &std)
		assert.Equal(t, student.StatusEnrolled, std.Status)
	})

	t.Run("invalid fields", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base, &tn.admin, student.Input{AdmissionNo: "A101", Name: "Bo", ClassName: "P1", DateOfBirth: "01/02/2015"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "date_of_birth")
	})

	t.Run("students of other schools are hidden", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base+"/"+foreign.ID, &tn.admin, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("query by class", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base+"?class_name=p1", &tn.teacher, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var resp page[student.Student]
		unmarshal(t, rec, &resp)
		if assert.Equal(t, 1, resp.Count) {
			assert.Equal(t, std.ID, resp.Results[0].ID)
		}
	})
}

func Test_attendanceApi(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "att")
	base := "/v1/schools/" + tn.school.ID + "/attendance"

	ana := testutil.CreateStudent(t, app.Env, tn.school.ID, "A1", "Ana", "P1")
	bob := testutil.CreateStudent(t, app.Env, tn.school.ID, "A2", "Bob", "P1")
	cid := testutil.CreateStudent(t, app.Env, tn.school.ID, "A3", "Cid", "P2")

	mark := func(date string, entries ...attendance.Entry) attendance.ClassMark {
		return attendance.ClassMark{Date: date, ClassName: "P1", Entries: entries}
	}

	t.Run("student of another class", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base, &tn.teacher, mark("2024-03-04", attendance.Entry{StudentID: cid.ID, Status: "present"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "not in class")
	})

	t.Run("mark and overwrite", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base, &tn.teacher, mark("2024-03-04",
			attendance.Entry{StudentID: ana.ID, Status: "present"},
			attendance.Entry{StudentID: bob.ID, Status: "absent"},
		))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = app.do(t, http.MethodPost, base, &tn.teacher, mark("2024-03-04",
			attendance.Entry{StudentID: bob.ID, Status: "LATE", Remarks: "bus"},
		))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = app.do(t, http.MethodGet, base+"?from=2024-03-01&to=2024-03-31", &tn.headTeacher, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var resp page[attendance.Record]
		unmarshal(t, rec, &resp)
		if assert.Equal(t, 2, resp.Count, "one record per student per day") {
			assert.Equal(t, "Ana", resp.Results[0].StudentName)
			assert.Equal(t, attendance.StatusLate, resp.Results[1].Status)
			assert.Equal(t, "bus", resp.Results[1].Remarks)
		}
	})

	t.Run("invalid range", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base+"?from=2024-03-31&to=2024-03-01", &tn.headTeacher, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("summary", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base+"/summary?class_name=P1", &tn.headTeacher, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var sum attendance.Summary
		unmarshal(t, rec, &sum)
		assert.Equal(t, 2, sum.Total)
		assert.Equal(t, 2, sum.Attended)
		assert.Equal(t, 1.0, sum.OverallRate)
	})

	t.Run("csv export", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base+"/export?class_name=P1", &tn.admin, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attendance.csv")

		rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
		if assert.NoError(t, err) && assert.Len(t, rows, 3) {
			assert.Equal(t, attendance.CSVHeader, rows[0])
			assert.Equal(t, []string{"2024-03-04", "P1", "A1", "Ana", "present", ""}, rows[1])
		}
	})
}

func Test_examApi(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "exm")
	base := "/v1/schools/" + tn.school.ID + "/results"

	ana := testutil.CreateStudent(t, app.Env, tn.school.ID, "A1", "Ana", "P1")
	bob := testutil.CreateStudent(t, app.Env, tn.school.ID, "A2", "Bob", "P1")

	t.Run("score above max", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base, &tn.teacher, exam.NewResult{StudentID: ana.ID, Subject: "Maths", Exam: "Term 1", Year: 2024, Score: 120, MaxScore: 100})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "score")
	})

	var res exam.Result
	t.Run("record", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base, &tn.teacher, exam.NewResult{StudentID: ana.ID, Subject: "Maths", Exam: "Term 1", Year: 2024, Score: 41, MaxScore: 60})
		assert.Equal(t, http.StatusCreated, rec.Code)
		unmarshal(t, rec, &res)
		assert.Equal(t, 68.33, res.Percentage)
		assert.Equal(t, "C", res.Grade)
	})

	t.Run("batch replaces previous results", func(t *testing.T) {
		batch := exam.Batch{Results: []exam.NewResult{
			{StudentID: ana.ID, Subject: "Maths", Exam: "Term 1", Year: 2024, Score: 85, MaxScore: 100},
			{StudentID: bob.ID, Subject: "Maths", Exam: "Term 1", Year: 2024, Score: 30, MaxScore: 100},
		}}
		rec := app.do(t, http.MethodPost, base+"/batch", &tn.headTeacher, batch)
		assert.Equal(t, http.StatusCreated, rec.Code)

		rec = app.do(t, http.MethodGet, base+"?subject=maths&year=2024", &tn.headTeacher, nil)
		var resp page[exam.Result]
		unmarshal(t, rec, &resp)
		if assert.Equal(t, 2, resp.Count) {
			assert.Equal(t, "A", resp.Results[0].Grade)
			assert.Equal(t, "F", resp.Results[1].Grade)
		}
	})

	t.Run("summary", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base+"/summary", &tn.admin, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var sum exam.Summary
		unmarshal(t, rec, &sum)
		assert.Equal(t, 2, sum.Count)
		assert.Equal(t, 0.5, sum.PassRate)
		if assert.Len(t, sum.BySubject, 1) {
			assert.Equal(t, "Maths", sum.BySubject[0].Key)
		}
	})

	t.Run("csv export", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base+"/export", &tn.admin, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
		if assert.NoError(t, err) {
			assert.Len(t, rows, 3)
			assert.Equal(t, exam.CSVHeader, rows[0])
		}
	})
}

func Test_disciplineApi(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "dsc")
	base := "/v1/schools/" + tn.school.ID + "/incidents"
	ana := testutil.CreateStudent(t, app.Env, tn.school.ID, "A1", "Ana", "P1")

	var counselling discipline.Incident
	t.Run("create", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base, &tn.headTeacher, discipline.Input{StudentID: ana.ID, Kind: discipline.KindCounselling, Description: "Family matters"})
		assert.Equal(t, http.StatusCreated, rec.Code)
		unmarshal(t, rec, &counselling)
		assert.Equal(t, discipline.StatusOpen, counselling.Status)

		rec = app.do(t, http.MethodPost, base, &tn.teacher, discipline.Input{StudentID: ana.ID, Kind: discipline.KindDisciplinary, Description: "Late again"})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("counselling entries are confidential", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base, &tn.teacher, nil)
		var resp page[discipline.Incident]
		unmarshal(t, rec, &resp)
		if assert.Equal(t, 1, resp.Count) {
			assert.Equal(t, discipline.KindDisciplinary, resp.Results[0].Kind)
		}

		rec = app.do(t, http.MethodGet, base+"/"+counselling.ID, &tn.teacher, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = app.do(t, http.MethodGet, base, &tn.admin, nil)
		unmarshal(t, rec, &resp)
		assert.Equal(t, 2, resp.Count)
	})

	t.Run("resolve once", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base+"/"+counselling.ID+"/resolve", &tn.headTeacher, discipline.Resolution{ActionTaken: "Met the parents"})
		assert.Equal(t, http.StatusOK, rec.Code)
		var inc discipline.Incident
		unmarshal(t, rec, &inc)
		assert.Equal(t, discipline.StatusResolved, inc.Status)
		assert.NotNil(t, inc.ResolvedAt)

		rec = app.do(t, http.MethodPost, base+"/"+counselling.ID+"/resolve", &tn.headTeacher, discipline.Resolution{})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("delete: managers only", func(t *testing.T) {
		rec := app.do(t, http.MethodDelete, base+"/"+counselling.ID, &tn.headTeacher, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
