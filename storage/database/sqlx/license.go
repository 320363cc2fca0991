package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core/license"
)

const licenseColumns = "id, school_id, plan, seats, starts_at, expires_at, status, notes, created_at, updated_at"

type licenseRepository struct {
	db *sqlx.DB
}

var _ license.Repository = (*licenseRepository)(nil) // interface compliance check

func NewLicenseRepository(db *sqlx.DB) *licenseRepository {
	return &licenseRepository{db: db}
}

func (repo *licenseRepository) CreateLicense(ctx context.Context, lic license.License) (license.License, error) {
	lic.ID = newID()
	q := "INSERT INTO licenses (" + licenseColumns + ") VALUES " +
		"(:id, :school_id, :plan, :seats, :starts_at, :expires_at, :status, :notes, :created_at, :updated_at)"
	if _, err := repo.db.NamedExecContext(ctx, q, lic); err != nil {
		if isUniqueViolation(err) {
			return license.License{}, license.ErrExists
		}
		return license.License{}, errors.Wrap(err, "inserting license")
	}
	return lic, nil
}

func (repo *licenseRepository) GetLicense(ctx context.Context, schoolID string) (license.License, error) {
	if !isUUID(schoolID) {
		return license.License{}, license.ErrNotFound
	}
	return getOne[license.License](ctx, repo.db, license.ErrNotFound, "SELECT "+licenseColumns+" FROM licenses WHERE school_id = ?", schoolID)
}

func (repo *licenseRepository) QueryLicenses(ctx context.Context, filter license.QueryFilter) ([]license.License, error) {
	w := where{}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.Plan != "" {
		w.add("plan = ?", filter.Plan)
	}
	lics, err := selectAll[license.License](ctx, repo.db, "SELECT "+licenseColumns+" FROM licenses"+w.String()+" ORDER BY expires_at", w.args...)
	return lics, errors.Wrap(err, "querying licenses")
}

func (repo *licenseRepository) UpdateLicense(ctx context.Context, lic license.License) (license.License, error) {
	q := `UPDATE licenses SET plan = :plan, seats = :seats, starts_at = :starts_at, expires_at = :expires_at,
		status = :status, notes = :notes, updated_at = :updated_at WHERE school_id = :school_id`
	if !isUUID(lic.SchoolID) {
		return license.License{}, license.ErrNotFound
	}
	if err := namedExecOne(ctx, repo.db, license.ErrNotFound, q, lic); err != nil {
		return license.License{}, err
	}
	return lic, nil
}

func (repo *licenseRepository) DeleteLicense(ctx context.Context, schoolID string) error {
	if !isUUID(schoolID) {
		return license.ErrNotFound
	}
	return execOne(ctx, repo.db, license.ErrNotFound, "DELETE FROM licenses WHERE school_id = ?", schoolID)
}
