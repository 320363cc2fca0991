package attendance

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/student"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

type (
	Repository interface {
		// UpsertRecords stores recs, replacing the record of the same (school, student, date) if any.
		UpsertRecords(ctx context.Context, recs []Record) ([]Record, error)
		QueryRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
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

// MarkClass records the register of a class. Marking a student twice for the same day overwrites.
func (svc *Service) MarkClass(ctx context.Context, schoolID string, actor user.User, cm ClassMark) ([]Record, error) {
	now := core.NowFunc().UTC()
	seen := make(map[string]bool, len(cm.Entries))
	recs := make([]Record, 0, len(cm.Entries))

	for i, entry := range cm.Entries {
		fld := fmt.Sprintf("entries[%d].student_id", i)
		if seen[entry.StudentID] {
			return nil, core.NewFieldError(fld, "student is listed more than once")
		}
		seen[entry.StudentID] = true

		std, err := svc.students.Get(ctx, schoolID, entry.StudentID)
		if core.IsNotFound(err) {
			return nil, core.NewFieldError(fld, "student not found")
		} else if err != nil {
			return nil, err
		}
		if !core.EqualFold(std.ClassName, cm.ClassName) {
			return nil, core.NewFieldError(fld, "student is not in class "+cm.ClassName)
		}

		recs = append(recs, Record{
			SchoolID:    schoolID,
			StudentID:   std.ID,
			AdmissionNo: std.AdmissionNo,
			StudentName: std.Name,
			ClassName:   std.ClassName,
			Date:        cm.Date,
			Status:      entry.Status,
			Remarks:     entry.Remarks,
			RecordedBy:  actor.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return svc.repo.UpsertRecords(ctx, recs)
}

// Query returns the matching records ordered by date, class then student name.
func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Record, error) {
	filter.Clean()
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	recs, err := svc.repo.QueryRecords(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.ClassName != b.ClassName {
			return a.ClassName < b.ClassName
		}
		return a.StudentName < b.StudentName
	})
	return recs, nil
}

// Summary aggregates the matching records per student.
func (svc *Service) Summary(ctx context.Context, filter QueryFilter) (Summary, error) {
	recs, err := svc.Query(ctx, filter)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(recs), nil
}

// Summarize aggregates recs per student, ordered by class then name.
func Summarize(recs []Record) Summary {
	byStudent := make(map[string]*StudentSummary)
	var sum Summary

	for _, rec := range recs {
		ss, ok := byStudent[rec.StudentID]
		if !ok {
			ss = &StudentSummary{StudentID: rec.StudentID, StudentName: rec.StudentName, ClassName: rec.ClassName}
			byStudent[rec.StudentID] = ss
		}
		switch rec.Status {
		case StatusPresent:
			ss.Present++
		case StatusAbsent:
			ss.Absent++
		case StatusLate:
			ss.Late++
		case StatusExcused:
			ss.Excused++
		}
		ss.Total++
	}

	sum.Students = make([]StudentSummary, 0, len(byStudent))
	for _, ss := range byStudent {
		attended := ss.Present + ss.Late
		ss.Rate = core.Ratio(attended, ss.Total)
		sum.Total += ss.Total
		sum.Attended += attended
		sum.Students = append(sum.Students, *ss)
	}
	sort.Slice(sum.Students, func(i, j int) bool {
		a, b := sum.Students[i], sum.Students[j]
		if a.ClassName != b.ClassName {
			return a.ClassName < b.ClassName
		}
		if a.StudentName != b.StudentName {
			return a.StudentName < b.StudentName
		}
		return a.StudentID < b.StudentID
	})
	sum.OverallRate = core.Ratio(sum.Attended, sum.Total)
	return sum
}

// TodayRate returns the attendance rate of the school for the current day.
func (svc *Service) TodayRate(ctx context.Context, schoolID string) (float64, error) {
	today := core.Today()
	sum, err := svc.Summary(ctx, QueryFilter{SchoolID: schoolID, From: today, To: today})
	if err != nil {
		return 0, err
	}
	return sum.OverallRate, nil
}

// ExportCSV writes the matching records to w.
func (svc *Service) ExportCSV(ctx context.Context, w io.Writer, filter QueryFilter) error {
	recs, err := svc.Query(ctx, filter)
	if err != nil {
		return err
	}
	return core.WriteCSV(w, CSVHeader, recs)
}
