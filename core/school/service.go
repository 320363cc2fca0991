package school

import (
	"context"

	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core"
)

var (
	// errors
	ErrNotFound   = core.NewNotFoundError("school")
	ErrCodeExists = errors.New("a school with this code already exists")
	ErrHasUsers   = core.NewConflictError("school still has users")
)

type (
	Repository interface {
		CreateSchool(ctx context.Context, sch School) (School, error)
		QuerySchools(ctx context.Context, filter QueryFilter) ([]School, error)
		GetSchool(ctx context.Context, id string) (School, error)
		GetSchoolByCode(ctx context.Context, code string) (School, error)
		UpdateSchool(ctx context.Context, sch School) (School, error)
		DeleteSchool(ctx context.Context, id string) error
	}

	// UserCounter counts the users registered in a school.
	UserCounter interface {
		CountUsers(ctx context.Context, schoolID string) (int, error)
	}

	Service struct {
		repo  Repository
		users UserCounter
	}
)

func NewService(repo Repository, users UserCounter) *Service {
	return &Service{repo: repo, users: users}
}

func (svc *Service) checkCode(ctx context.Context, code string, excludedID string) error {
	sch, err := svc.repo.GetSchoolByCode(ctx, code)
	switch {
	case core.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case sch.ID != excludedID:
		return core.NewValidationError(ErrCodeExists, core.FieldError{Field: "code", Error: ErrCodeExists.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewSchool) (School, error) {
	if err := svc.checkCode(ctx, ns.Code, ""); err != nil {
		return School{}, err
	}
	now := core.NowFunc().UTC()
	return svc.repo.CreateSchool(ctx, School{
		Name:      ns.Name,
		Code:      ns.Code,
		Address:   ns.Address,
		Email:     ns.Email,
		Phone:     ns.Phone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]School, error) {
	filter.Clean()
	return svc.repo.QuerySchools(ctx, filter)
}

func (svc *Service) Get(ctx context.Context, id string) (School, error) {
	return svc.repo.GetSchool(ctx, id)
}

func (svc *Service) Update(ctx context.Context, sch School, us UpdateSchool) (School, error) {
	if us.Code != "" && us.Code != sch.Code {
		if err := svc.checkCode(ctx, us.Code, sch.ID); err != nil {
			return School{}, err
		}
	}
	sch = us.apply(sch)
	sch.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateSchool(ctx, sch)
}

// Delete removes a school that has no users left.
func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := svc.repo.GetSchool(ctx, id); err != nil {
		return err
	}
	count, err := svc.users.CountUsers(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting school users")
	}
	if count > 0 {
		return ErrHasUsers
	}
	return svc.repo.DeleteSchool(ctx, id)
}
