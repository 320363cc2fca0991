package staff

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("staff")
	ErrStaffNoExists = errors.New("a staff member with this number already exists")
)

type (
	Repository interface {
		CreateStaff(ctx context.Context, st Staff) (Staff, error)
		QueryStaff(ctx context.Context, filter QueryFilter) ([]Staff, error)
		GetStaff(ctx context.Context, schoolID, id string) (Staff, error)
		GetStaffByNo(ctx context.Context, schoolID, staffNo string) (Staff, error)
		UpdateStaff(ctx context.Context, st Staff) (Staff, error)
		DeleteStaff(ctx context.Context, schoolID, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CheckStaffNo fails with a validation error when staffNo is taken by a record other than excludedID.
func (svc *Service) CheckStaffNo(ctx context.Context, schoolID, staffNo, excludedID string) error {
	st, err := svc.repo.GetStaffByNo(ctx, schoolID, staffNo)
	switch {
	case core.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case st.ID != excludedID:
		return core.NewValidationError(ErrStaffNoExists, core.FieldError{Field: "staff_no", Error: ErrStaffNoExists.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, schoolID string, in Input) (Staff, error) {
	if err := svc.CheckStaffNo(ctx, schoolID, in.StaffNo, ""); err != nil {
		return Staff{}, err
	}
	now := core.NowFunc().UTC()
	st := in.apply(Staff{SchoolID: schoolID, CreatedAt: now, UpdatedAt: now})
	return svc.repo.CreateStaff(ctx, st)
}

// Query returns the matching staff ordered by name.
func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Staff, error) {
	filter.Clean()
	members, err := svc.repo.QueryStaff(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members, nil
}

func (svc *Service) Get(ctx context.Context, schoolID, id string) (Staff, error) {
	return svc.repo.GetStaff(ctx, schoolID, id)
}

func (svc *Service) Update(ctx context.Context, st Staff, in Input) (Staff, error) {
	if in.StaffNo != st.StaffNo {
		if err := svc.CheckStaffNo(ctx, st.SchoolID, in.StaffNo, st.ID); err != nil {
			return Staff{}, err
		}
	}
	st = in.apply(st)
	st.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateStaff(ctx, st)
}

func (svc *Service) Delete(ctx context.Context, schoolID, id string) error {
	return svc.repo.DeleteStaff(ctx, schoolID, id)
}
