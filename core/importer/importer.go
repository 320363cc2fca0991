// Package importer creates staff and student records in bulk from JSON rows.
package importer

import (
	"context"
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/staff"
	"github.com/acfjba/platformdigital-sub000/core/student"
)

// MaxRows is the maximum number of rows accepted per request.
const MaxRows = 1000

var ErrTooManyRows = core.NewFieldError("rows", fmt.Sprintf("at most %d rows can be imported at once", MaxRows))

type (
	Request[T any] struct {
		DryRun bool `json:"dry_run"`
		Rows   []T  `json:"rows"`
	}

	StaffRequest   = Request[staff.Input]
	StudentRequest = Request[student.Input]

	RowError struct {
		Row    int               `json:"row"` // 1-based
		Fields map[string]string `json:"fields"`
	}

	Report struct {
		DryRun  bool       `json:"dry_run"`
		Total   int        `json:"total"`
		Created int        `json:"created"` // or would be, on a dry run
		Skipped int        `json:"skipped"`
		Errors  []RowError `json:"errors"`
	}

	StaffService interface {
		CheckStaffNo(ctx context.Context, schoolID, staffNo, excludedID string) error
		Create(ctx context.Context, schoolID string, in staff.Input) (staff.Staff, error)
	}

	StudentService interface {
		CheckAdmissionNo(ctx context.Context, schoolID, admissionNo, excludedID string) error
		Create(ctx context.Context, schoolID string, in student.Input) (student.Student, error)
	}

	Service struct {
		validate   *validator.Validate
		translator ut.Translator
		staff      StaffService
		students   StudentService
	}

	// rowHandler describes how to import one kind of row.
	rowHandler[T any] struct {
		validate    func(*T) error
		number      func(T) string
		numberField string
		checkNumber func(ctx context.Context, number string) error
		create      func(ctx context.Context, row T) error
	}
)

func NewService(validate *validator.Validate, translator ut.Translator, staffSvc StaffService, studentSvc StudentService) *Service {
	return &Service{validate: validate, translator: translator, staff: staffSvc, students: studentSvc}
}

func (svc *Service) ImportStaff(ctx context.Context, schoolID string, req StaffRequest) (Report, error) {
	return run(ctx, svc, req, rowHandler[staff.Input]{
		validate:    func(in *staff.Input) error { return in.Validate(svc.validate) },
		number:      func(in staff.Input) string { return in.StaffNo },
		numberField: "staff_no",
		checkNumber: func(ctx context.Context, no string) error { return svc.staff.CheckStaffNo(ctx, schoolID, no, "") },
		create: func(ctx context.Context, in staff.Input) error {
			_, err := svc.staff.Create(ctx, schoolID, in)
			return err
		},
	})
}

func (svc *Service) ImportStudents(ctx context.Context, schoolID string, req StudentRequest) (Report, error) {
	return run(ctx, svc, req, rowHandler[student.Input]{
		validate:    func(in *student.Input) error { return in.Validate(svc.validate) },
		number:      func(in student.Input) string { return in.AdmissionNo },
		numberField: "admission_no",
		checkNumber: func(ctx context.Context, no string) error { return svc.students.CheckAdmissionNo(ctx, schoolID, no, "") },
		create: func(ctx context.Context, in student.Input) error {
			_, err := svc.students.Create(ctx, schoolID, in)
			return err
		},
	})
}

func run[T any](ctx context.Context, svc *Service, req Request[T], h rowHandler[T]) (Report, error) {
	if len(req.Rows) == 0 {
		return Report{}, core.NewFieldError("rows", "at least one row is required")
	}
	if len(req.Rows) > MaxRows {
		return Report{}, ErrTooManyRows
	}

	report := Report{DryRun: req.DryRun, Total: len(req.Rows), Errors: make([]RowError, 0)}
	seen := make(map[string]int, len(req.Rows)) // number: row

	for i := range req.Rows {
		row := req.Rows[i]
		rowNum := i + 1

		fields, err := svc.rowErrors(h.validate(&row))
		if err != nil {
			return report, errors.Wrapf(err, "validating row %d", rowNum)
		}
		if fields == nil {
			no := h.number(row)
			if first, ok := seen[no]; ok {
				fields = map[string]string{h.numberField: fmt.Sprintf("duplicates row %d", first)}
			} else {
				seen[no] = rowNum
				if fields, err = svc.rowErrors(h.checkNumber(ctx, no)); err != nil {
					return report, errors.Wrapf(err, "checking row %d", rowNum)
				}
			}
		}
		if fields != nil {
			report.Skipped++
			report.Errors = append(report.Errors, RowError{Row: rowNum, Fields: fields})
			continue
		}

		if !req.DryRun {
			if err := h.create(ctx, row); err != nil {
				if fields, err = svc.rowErrors(err); err != nil {
					return report, errors.Wrapf(err, "creating row %d", rowNum)
				}
				report.Skipped++
				report.Errors = append(report.Errors, RowError{Row: rowNum, Fields: fields})
				continue
			}
		}
		report.Created++
	}
	return report, nil
}

// rowErrors turns validation errors into a field map. Other errors are returned as is.
func (svc *Service) rowErrors(err error) (map[string]string, error) {
	if err == nil {
		return nil, nil
	}
	switch e := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		return core.TranslateErrors(e, svc.translator), nil
	case *core.ValidationError:
		fields := make(map[string]string, len(e.Fields))
		for _, f := range e.Fields {
			fields[f.Field] = f.Error
		}
		if len(fields) == 0 {
			fields["row"] = e.Error()
		}
		return fields, nil
	}
	return nil, err
}
