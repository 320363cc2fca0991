package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/acfjba/platformdigital-sub000/core/school"
)

type schoolRepository struct {
	client  *firestore.Client
	schools collection[school.School]
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(client *firestore.Client) *schoolRepository {
	return &schoolRepository{
		client:  client,
		schools: newCollection(client, schoolsCol, func(s *school.School, id string) { s.ID = id }),
	}
}

func (repo *schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	if _, err := repo.GetSchoolByCode(ctx, sch.Code); err == nil {
		return school.School{}, school.ErrCodeExists
	} else if err != school.ErrNotFound {
		return school.School{}, err
	}
	sch.ID = newID()
	if err := repo.schools.create(ctx, sch.ID, sch); err != nil {
		return school.School{}, err
	}
	return sch, nil
}

func (repo *schoolRepository) QuerySchools(ctx context.Context, filter school.QueryFilter) ([]school.School, error) {
	return repo.schools.all(ctx, repo.schools.ref.OrderBy("name", firestore.Asc), filter.Match)
}

func (repo *schoolRepository) GetSchool(ctx context.Context, id string) (school.School, error) {
	return repo.schools.get(ctx, id, school.ErrNotFound, nil)
}

func (repo *schoolRepository) GetSchoolByCode(ctx context.Context, code string) (school.School, error) {
	schools, err := repo.schools.all(ctx, repo.schools.ref.Where("code", "==", code).Limit(1), nil)
	if err != nil {
		return school.School{}, err
	}
	if len(schools) == 0 {
		return school.School{}, school.ErrNotFound
	}
	return schools[0], nil
}

func (repo *schoolRepository) UpdateSchool(ctx context.Context, sch school.School) (school.School, error) {
	if err := repo.schools.replace(ctx, repo.client, sch.ID, sch, school.ErrNotFound, nil); err != nil {
		return school.School{}, err
	}
	return sch, nil
}

func (repo *schoolRepository) DeleteSchool(ctx context.Context, id string) error {
	return repo.schools.remove(ctx, repo.client, id, school.ErrNotFound, nil)
}
