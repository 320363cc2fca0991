package inmemdb

import (
	"context"

	"github.com/acfjba/platformdigital-sub000/core/license"
)

type licenseRepository struct {
	db *table[license.License]
}

var _ license.Repository = (*licenseRepository)(nil) // interface compliance check

func NewLicenseRepository(db *DB) *licenseRepository {
	return &licenseRepository{db: db.license}
}

func (repo *licenseRepository) CreateLicense(_ context.Context, lic license.License) (license.License, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.rows[lic.SchoolID]; ok {
		return license.License{}, license.ErrExists
	}
	lic.ID = newID()
	repo.db.rows[lic.SchoolID] = lic
	return lic, nil
}

func (repo *licenseRepository) GetLicense(_ context.Context, schoolID string) (license.License, error) {
	if lic, ok := repo.db.get(schoolID, nil); ok {
		return lic, nil
	}
	return license.License{}, license.ErrNotFound
}

func (repo *licenseRepository) QueryLicenses(_ context.Context, filter license.QueryFilter) ([]license.License, error) {
	return repo.db.query(filter.Match), nil
}

func (repo *licenseRepository) UpdateLicense(_ context.Context, lic license.License) (license.License, error) {
	if !repo.db.replace(lic.SchoolID, lic) {
		return license.License{}, license.ErrNotFound
	}
	return lic, nil
}

func (repo *licenseRepository) DeleteLicense(_ context.Context, schoolID string) error {
	if !repo.db.remove(schoolID, nil) {
		return license.ErrNotFound
	}
	return nil
}
