package license

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/school"
)

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("license")
	ErrExists           = core.NewConflictError("school already has a license")
	ErrInactive         = errors.New("school license is not active")
	ErrExpired          = core.NewConflictError("license is expired; renew it instead")
	ErrNotSuspended     = core.NewConflictError("license is not suspended")
	ErrNotActive        = core.NewConflictError("license is not active")
	errNoSeatsAvailable = errors.New("all license seats are taken")
	errNoLicense        = errors.New("school has no license")
)

type (
	Repository interface {
		CreateLicense(ctx context.Context, lic License) (License, error)
		// GetLicense returns the license of the school.
		GetLicense(ctx context.Context, schoolID string) (License, error)
		QueryLicenses(ctx context.Context, filter QueryFilter) ([]License, error)
		UpdateLicense(ctx context.Context, lic License) (License, error)
		DeleteLicense(ctx context.Context, schoolID string) error
	}

	SchoolGetter interface {
		GetSchool(ctx context.Context, id string) (school.School, error)
	}

	Service struct {
		repo    Repository
		schools SchoolGetter
	}
)

func NewService(repo Repository, schools SchoolGetter) *Service {
	return &Service{repo: repo, schools: schools}
}

// Issue creates the license of a school. A school holds one license at most.
func (svc *Service) Issue(ctx context.Context, schoolID string, nl NewLicense) (License, error) {
	if _, err := svc.schools.GetSchool(ctx, schoolID); err != nil {
		return License{}, err
	}
	if _, err := svc.repo.GetLicense(ctx, schoolID); err == nil {
		return License{}, ErrExists
	} else if !core.IsNotFound(err) {
		return License{}, err
	}

	seats := nl.Seats
	if seats == 0 {
		seats = DefaultSeats(nl.Plan)
	}
	now := core.NowFunc().UTC()
	return svc.repo.CreateLicense(ctx, License{
		SchoolID:  schoolID,
		Plan:      nl.Plan,
		Seats:     seats,
		StartsAt:  now,
		ExpiresAt: now.AddDate(0, nl.Months, 0),
		Status:    StatusActive,
		Notes:     nl.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) Get(ctx context.Context, schoolID string) (License, error) {
	return svc.repo.GetLicense(ctx, schoolID)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]License, error) {
	filter.Clean()
	return svc.repo.QueryLicenses(ctx, filter)
}

// Renew extends the license by months, counting from now when it already lapsed.
func (svc *Service) Renew(ctx context.Context, schoolID string, months int) (License, error) {
	lic, err := svc.repo.GetLicense(ctx, schoolID)
	if err != nil {
		return License{}, err
	}
	now := core.NowFunc().UTC()
	base := lic.ExpiresAt
	if now.After(base) {
		base = now
	}
	lic.ExpiresAt = base.AddDate(0, months, 0)
	if lic.Status == StatusExpired {
		lic.Status = StatusActive
	}
	lic.UpdatedAt = now
	return svc.repo.UpdateLicense(ctx, lic)
}

func (svc *Service) Suspend(ctx context.Context, schoolID string) (License, error) {
	lic, err := svc.repo.GetLicense(ctx, schoolID)
	if err != nil {
		return License{}, err
	}
	if lic.Status != StatusActive {
		return License{}, ErrNotActive
	}
	lic.Status = StatusSuspended
	lic.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateLicense(ctx, lic)
}

func (svc *Service) Reactivate(ctx context.Context, schoolID string) (License, error) {
	lic, err := svc.repo.GetLicense(ctx, schoolID)
	if err != nil {
		return License{}, err
	}
	now := core.NowFunc().UTC()
	switch {
	case lic.Status == StatusExpired, !now.Before(lic.ExpiresAt):
		return License{}, ErrExpired
	case lic.Status != StatusSuspended:
		return License{}, ErrNotSuspended
	}
	lic.Status = StatusActive
	lic.UpdatedAt = now
	return svc.repo.UpdateLicense(ctx, lic)
}

func (svc *Service) Delete(ctx context.Context, schoolID string) error {
	return svc.repo.DeleteLicense(ctx, schoolID)
}

// CheckUsable returns ErrInactive unless the school holds a usable license.
func (svc *Service) CheckUsable(ctx context.Context, schoolID string) error {
	lic, err := svc.repo.GetLicense(ctx, schoolID)
	if core.IsNotFound(err) {
		return ErrInactive
	} else if err != nil {
		return err
	}
	if !lic.IsUsable(core.NowFunc().UTC()) {
		return ErrInactive
	}
	return nil
}

// CheckSeat fails when the school already uses every seat of its license.
func (svc *Service) CheckSeat(ctx context.Context, schoolID string, used int) error {
	lic, err := svc.repo.GetLicense(ctx, schoolID)
	if core.IsNotFound(err) {
		return core.NewValidationError(errNoLicense, core.FieldError{Field: "role", Error: errNoLicense.Error()})
	} else if err != nil {
		return err
	}
	if used >= lic.Seats {
		return core.NewValidationError(errNoSeatsAvailable, core.FieldError{Field: "role", Error: errNoSeatsAvailable.Error()})
	}
	return nil
}

// ExpireDue marks every active license whose expiry is past as expired and returns them.
func (svc *Service) ExpireDue(ctx context.Context, now time.Time) ([]License, error) {
	active, err := svc.repo.QueryLicenses(ctx, QueryFilter{Status: StatusActive})
	if err != nil {
		return nil, err
	}
	expired := make([]License, 0)
	for _, lic := range active {
		if now.Before(lic.ExpiresAt) {
			continue
		}
		lic.Status = StatusExpired
		lic.UpdatedAt = now.UTC()
		updated, err := svc.repo.UpdateLicense(ctx, lic)
		if err != nil {
			return expired, errors.Wrapf(err, "expiring license of school %s", lic.SchoolID)
		}
		expired = append(expired, updated)
	}
	return expired, nil
}

// ExpiringWithin returns the active licenses expiring in (now, now+d], soonest first.
func (svc *Service) ExpiringWithin(ctx context.Context, now time.Time, d time.Duration) ([]License, error) {
	active, err := svc.repo.QueryLicenses(ctx, QueryFilter{Status: StatusActive})
	if err != nil {
		return nil, err
	}
	limit := now.Add(d)
	expiring := make([]License, 0)
	for _, lic := range active {
		if lic.ExpiresAt.After(now) && !lic.ExpiresAt.After(limit) {
			expiring = append(expiring, lic)
		}
	}
	sort.Slice(expiring, func(i, j int) bool { return expiring[i].ExpiresAt.Before(expiring[j].ExpiresAt) })
	return expiring, nil
}
