package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/acfjba/platformdigital-sub000/core/license"
)

// licenseRepository stores the license of a school under the school ID, which is also the license ID.
type licenseRepository struct {
	client   *firestore.Client
	licenses collection[license.License]
}

var _ license.Repository = (*licenseRepository)(nil) // interface compliance check

func NewLicenseRepository(client *firestore.Client) *licenseRepository {
	return &licenseRepository{
		client:   client,
		licenses: newCollection(client, licensesCol, func(l *license.License, id string) { l.ID = id }),
	}
}

func (repo *licenseRepository) CreateLicense(ctx context.Context, lic license.License) (license.License, error) {
	lic.ID = lic.SchoolID
	if err := repo.licenses.create(ctx, lic.SchoolID, lic); err != nil {
		if isAlreadyExists(err) {
			return license.License{}, license.ErrExists
		}
		return license.License{}, err
	}
	return lic, nil
}

func (repo *licenseRepository) GetLicense(ctx context.Context, schoolID string) (license.License, error) {
	return repo.licenses.get(ctx, schoolID, license.ErrNotFound, nil)
}

func (repo *licenseRepository) QueryLicenses(ctx context.Context, filter license.QueryFilter) ([]license.License, error) {
	q := repo.licenses.ref.Query
	if filter.Status != "" {
		q = q.Where("status", "==", filter.Status)
	}
	return repo.licenses.all(ctx, q, filter.Match)
}

func (repo *licenseRepository) UpdateLicense(ctx context.Context, lic license.License) (license.License, error) {
	lic.ID = lic.SchoolID
	if err := repo.licenses.replace(ctx, repo.client, lic.SchoolID, lic, license.ErrNotFound, nil); err != nil {
		return license.License{}, err
	}
	return lic, nil
}

func (repo *licenseRepository) DeleteLicense(ctx context.Context, schoolID string) error {
	return repo.licenses.remove(ctx, repo.client, schoolID, license.ErrNotFound, nil)
}
