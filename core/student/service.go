package student

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core"
)

var (
	// errors
	ErrNotFound          = core.NewNotFoundError("student")
	ErrAdmissionNoExists = errors.New("a student with this admission number already exists")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		QueryStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		GetStudent(ctx context.Context, schoolID, id string) (Student, error)
		GetStudentByAdmissionNo(ctx context.Context, schoolID, admissionNo string) (Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		DeleteStudent(ctx context.Context, schoolID, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CheckAdmissionNo fails with a validation error when admissionNo is taken by a record other than excludedID.
func (svc *Service) CheckAdmissionNo(ctx context.Context, schoolID, admissionNo, excludedID string) error {
	std, err := svc.repo.GetStudentByAdmissionNo(ctx, schoolID, admissionNo)
	switch {
	case core.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case std.ID != excludedID:
		return core.NewValidationError(ErrAdmissionNoExists, core.FieldError{Field: "admission_no", Error: ErrAdmissionNoExists.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, schoolID string, in Input) (Student, error) {
	if err := svc.CheckAdmissionNo(ctx, schoolID, in.AdmissionNo, ""); err != nil {
		return Student{}, err
	}
	now := core.NowFunc().UTC()
	std := in.apply(Student{SchoolID: schoolID, CreatedAt: now, UpdatedAt: now})
	return svc.repo.CreateStudent(ctx, std)
}

// Query returns the matching students ordered by class then name.
func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Student, error) {
	filter.Clean()
	students, err := svc.repo.QueryStudents(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].ClassName != students[j].ClassName {
			return students[i].ClassName < students[j].ClassName
		}
		return students[i].Name < students[j].Name
	})
	return students, nil
}

func (svc *Service) Get(ctx context.Context, schoolID, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, schoolID, id)
}

func (svc *Service) Update(ctx context.Context, std Student, in Input) (Student, error) {
	if in.AdmissionNo != std.AdmissionNo {
		if err := svc.CheckAdmissionNo(ctx, std.SchoolID, in.AdmissionNo, std.ID); err != nil {
			return Student{}, err
		}
	}
	std = in.apply(std)
	std.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *Service) Delete(ctx context.Context, schoolID, id string) error {
	return svc.repo.DeleteStudent(ctx, schoolID, id)
}
