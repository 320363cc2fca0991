package exam

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/student"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

var ErrNotFound = core.NewNotFoundError("exam result")

type (
	Repository interface {
		// UpsertResults stores results, replacing the result with the same Key in the school if any.
		UpsertResults(ctx context.Context, results []Result) ([]Result, error)
		QueryResults(ctx context.Context, filter QueryFilter) ([]Result, error)
		GetResult(ctx context.Context, schoolID, id string) (Result, error)
		DeleteResult(ctx context.Context, schoolID, id string) error
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

func (svc *Service) Record(ctx context.Context, schoolID string, actor user.User, nr NewResult) (Result, error) {
	results, err := svc.RecordBatch(ctx, schoolID, actor, Batch{Results: []NewResult{nr}})
	if err != nil {
		return Result{}, err
	}
	return results[0], nil
}

// RecordBatch records every result of b or none. Recording a result again replaces it.
func (svc *Service) RecordBatch(ctx context.Context, schoolID string, actor user.User, b Batch) ([]Result, error) {
	now := core.NowFunc().UTC()
	students := make(map[string]student.Student)
	seen := make(map[string]bool, len(b.Results))
	results := make([]Result, 0, len(b.Results))

	for i, nr := range b.Results {
		nr.Clean()
		fld := fmt.Sprintf("results[%d].student_id", i)
		if len(b.Results) == 1 {
			fld = "student_id"
		}

		std, ok := students[nr.StudentID]
		if !ok {
			var err error
			std, err = svc.students.Get(ctx, schoolID, nr.StudentID)
			if core.IsNotFound(err) {
				return nil, core.NewFieldError(fld, "student not found")
			} else if err != nil {
				return nil, err
			}
			students[nr.StudentID] = std
		}

		pct := core.Round2(nr.Score / nr.MaxScore * 100)
		res := Result{
			SchoolID:    schoolID,
			StudentID:   std.ID,
			AdmissionNo: std.AdmissionNo,
			StudentName: std.Name,
			ClassName:   std.ClassName,
			Subject:     nr.Subject,
			Exam:        nr.Exam,
			Year:        nr.Year,
			Score:       nr.Score,
			MaxScore:    nr.MaxScore,
			Percentage:  pct,
			Grade:       GradeFor(pct),
			Remarks:     nr.Remarks,
			RecordedBy:  actor.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if seen[res.Key()] {
			return nil, core.NewFieldError(fld, "result is listed more than once")
		}
		seen[res.Key()] = true
		results = append(results, res)
	}
	return svc.repo.UpsertResults(ctx, results)
}

// Query returns the matching results ordered by class, subject then student name.
func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Result, error) {
	filter.Clean()
	results, err := svc.repo.QueryResults(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.ClassName != b.ClassName {
			return a.ClassName < b.ClassName
		}
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		return a.StudentName < b.StudentName
	})
	return results, nil
}

func (svc *Service) Get(ctx context.Context, schoolID, id string) (Result, error) {
	return svc.repo.GetResult(ctx, schoolID, id)
}

func (svc *Service) Delete(ctx context.Context, schoolID, id string) error {
	return svc.repo.DeleteResult(ctx, schoolID, id)
}

func (svc *Service) Summary(ctx context.Context, filter QueryFilter) (Summary, error) {
	results, err := svc.Query(ctx, filter)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(results), nil
}

// Summarize aggregates results per subject and per class, groups ordered by key.
func Summarize(results []Result) Summary {
	sum := Summary{
		Count:     len(results),
		BySubject: groupBy(results, func(r Result) string { return r.Subject }),
		ByClass:   groupBy(results, func(r Result) string { return r.ClassName }),
	}
	if sum.Count == 0 {
		return sum
	}
	var total float64
	var passed int
	for _, res := range results {
		total += res.Percentage
		if res.Percentage >= PassMark {
			passed++
		}
	}
	sum.Mean = core.Round2(total / float64(sum.Count))
	sum.PassRate = core.Ratio(passed, sum.Count)
	return sum
}

func groupBy(results []Result, keyFn func(Result) string) []Group {
	type acc struct {
		Group
		total  float64
		passed int
	}
	groups := make(map[string]*acc)
	for _, res := range results {
		key := keyFn(res)
		g, ok := groups[key]
		if !ok {
			g = &acc{Group: Group{Key: key, Min: math.Inf(1), Max: math.Inf(-1), Grades: emptyGrades()}}
			groups[key] = g
		}
		g.Count++
		g.total += res.Percentage
		g.Min = math.Min(g.Min, res.Percentage)
		g.Max = math.Max(g.Max, res.Percentage)
		g.Grades[res.Grade]++
		if res.Percentage >= PassMark {
			g.passed++
		}
	}

	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		g.Mean = core.Round2(g.total / float64(g.Count))
		g.PassRate = core.Ratio(g.passed, g.Count)
		out = append(out, g.Group)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func emptyGrades() map[string]int {
	grades := make(map[string]int, len(Grades))
	for _, g := range Grades {
		grades[g] = 0
	}
	return grades
}

// ExportCSV writes the matching results to w.
func (svc *Service) ExportCSV(ctx context.Context, w io.Writer, filter QueryFilter) error {
	results, err := svc.Query(ctx, filter)
	if err != nil {
		return err
	}
	return core.WriteCSV(w, CSVHeader, results)
}
